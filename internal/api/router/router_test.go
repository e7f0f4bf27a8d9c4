package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gorillaws "github.com/gorilla/websocket"

	"legal-relay-backend/internal/api"
	internaljwt "legal-relay-backend/internal/jwt"
	"legal-relay-backend/internal/queue"
	"legal-relay-backend/internal/relay"
	authsvc "legal-relay-backend/internal/service/auth"
	"legal-relay-backend/internal/service/notification"
	"legal-relay-backend/internal/websocket"
)

const prefix = "/api/ws/v1"

type wsServer struct {
	*httptest.Server
	relay      *relay.Relay
	adminToken string
}

func newWSServer(t *testing.T) *wsServer {
	t.Helper()

	adminHash, err := internaljwt.HashAPIKey("admin-key")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	issuer := internaljwt.NewIssuer("svc-secret", "adm-secret")
	auth := authsvc.New(authsvc.Credentials{AdminKeyHash: adminHash}, issuer)

	r := relay.New()
	hub := websocket.NewHub(r)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	rqm := queue.NewRequestQueueManager(10, 2)
	server := api.NewAPIServer(":0", rqm, api.Dependencies{
		Relay:         r,
		Handler:       websocket.NewHandler(hub, websocket.Options{}),
		Notifications: notification.New(notification.NewLocalDispatcher(r), nil),
		Auth:          auth,
	},
		UtilsRoutes(prefix),
		AuthRoutes(prefix),
		WebsocketRoutes(prefix),
		PresenceRoutes(prefix),
		NotificationRoutes(prefix),
	)

	srv := httptest.NewServer(server.Routes())
	t.Cleanup(func() {
		srv.Close()
		cancel()
		rqm.Shutdown()
	})

	tok, err := issuer.CreateToken(internaljwt.Principal{ID: "ops"}, internaljwt.RoleAdmin, 0)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	return &wsServer{Server: srv, relay: r, adminToken: tok.AccessToken}
}

func (s *wsServer) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var payload io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		payload = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, s.URL+path, payload)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do %s: %v", path, err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestHealthAndMetrics(t *testing.T) {
	s := newWSServer(t)

	resp := s.do(t, http.MethodGet, prefix+"/health", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health: expected 200, got %d", resp.StatusCode)
	}

	s.do(t, http.MethodGet, prefix+"/presence/rooms/case-42", "", nil)

	resp = s.do(t, http.MethodGet, "/metrics", "", nil)
	body, _ := io.ReadAll(resp.Body)
	out := string(body)
	if !strings.Contains(out, "legal_relay_http_requests_total") {
		t.Fatalf("metrics output missing request counter")
	}
	if !strings.Contains(out, `path="/api/ws/v1/presence/rooms/{id}"`) {
		t.Fatalf("requests should be labelled by route pattern")
	}
	if strings.Contains(out, "case-42") {
		t.Fatalf("path parameters must not become label values")
	}
}

func TestSocketUpgradeThroughRoutes(t *testing.T) {
	s := newWSServer(t)

	url := "ws" + strings.TrimPrefix(s.URL, "http") + prefix + "/socket"
	conn, resp, err := gorillaws.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	_ = resp.Body.Close()
	defer conn.Close()

	if err := conn.WriteJSON(map[string]any{"event": "join", "data": map[string]string{"userId": "client-1"}}); err != nil {
		t.Fatalf("write: %v", err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var frame struct {
		Event string `json:"event"`
	}
	if err := conn.ReadJSON(&frame); err != nil {
		t.Fatalf("read: %v", err)
	}
	if frame.Event != relay.EventConnected {
		t.Fatalf("expected connected, got %s", frame.Event)
	}

	// Admin tokens satisfy service routes.
	resp = s.do(t, http.MethodGet, prefix+"/presence/users/client-1", s.adminToken, nil)
	var presence struct {
		Online bool `json:"online"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&presence); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !presence.Online {
		t.Fatalf("expected client-1 online")
	}

	resp = s.do(t, http.MethodPost, prefix+"/notifications/broadcast", s.adminToken, map[string]string{"event": "maintenance"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("broadcast: expected 200, got %d", resp.StatusCode)
	}
	if err := conn.ReadJSON(&frame); err != nil {
		t.Fatalf("read broadcast: %v", err)
	}
	if frame.Event != "maintenance" {
		t.Fatalf("expected maintenance event, got %s", frame.Event)
	}
}

func TestTokenRouteIssuesAdminToken(t *testing.T) {
	s := newWSServer(t)

	resp := s.do(t, http.MethodPost, prefix+"/auth/token", "", map[string]string{"serviceId": "ops", "apiKey": "admin-key"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var tok struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if tok.Role != "admin" {
		t.Fatalf("expected admin role, got %q", tok.Role)
	}
}
