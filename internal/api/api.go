package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"legal-relay-backend/internal/api/middleware"
	"legal-relay-backend/internal/logger"
	"legal-relay-backend/internal/queue"
	"legal-relay-backend/internal/relay"
	authsvc "legal-relay-backend/internal/service/auth"
	"legal-relay-backend/internal/service/notification"
	"legal-relay-backend/internal/websocket"
)

const shutdownTimeout = 10 * time.Second

type RouteRegistrar func(mux *http.ServeMux, s *APIServer)

// Dependencies are the collaborators route registrars can reach. Fields a
// server does not use may be nil.
type Dependencies struct {
	Relay          *relay.Relay
	Handler        *websocket.Handler
	Notifications  *notification.Service
	Auth           *authsvc.Service
	AllowedOrigins []string
}

type APIServer struct {
	listenAddr          string
	requestQueueManager *queue.RequestQueueManager
	deps                Dependencies
	routeRegistrars     []RouteRegistrar
	metrics             *metrics
	cors                middleware.CORSConfig
	logger              *logger.Logger
}

func NewAPIServer(listenAddr string, rqm *queue.RequestQueueManager, deps Dependencies, registrars ...RouteRegistrar) *APIServer {
	return &APIServer{
		listenAddr:          listenAddr,
		requestQueueManager: rqm,
		deps:                deps,
		routeRegistrars:     registrars,
		metrics:             newMetrics(prometheus.DefaultRegisterer, listenAddr, rqm),
		cors: middleware.CORSConfig{
			AllowedOrigins:   deps.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Content-Type", "X-Requested-With", "Authorization", "X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           600,
		},
		logger: logger.New("api").WithField("listenAddr", listenAddr),
	}
}

// Routes builds the instrumented handler with every registered route.
func (s *APIServer) Routes() http.Handler {
	mux := http.NewServeMux()

	for _, reg := range s.routeRegistrars {
		reg(mux, s)
	}

	mux.Handle("/metrics", s.metrics.metricsHandler())

	return s.metrics.instrument(mux)
}

// Run serves until ctx is cancelled and then shuts down gracefully.
func (s *APIServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.listenAddr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Infof("server listening on http://localhost%s", s.listenAddr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}

func (s *APIServer) Relay() *relay.Relay {
	return s.deps.Relay
}

func (s *APIServer) Handler() *websocket.Handler {
	return s.deps.Handler
}

func (s *APIServer) Notifications() *notification.Service {
	return s.deps.Notifications
}

func (s *APIServer) Auth() *authsvc.Service {
	return s.deps.Auth
}
