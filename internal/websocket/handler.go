package websocket

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"legal-relay-backend/internal/bus"
	"legal-relay-backend/internal/logger"
)

type Handler struct {
	hub        *Hub
	upgrader   websocket.Upgrader
	sendBuffer int
	maxFrame   int64
	logger     *logger.Logger
}

func NewHandler(h *Hub, opts Options) *Handler {
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = defaultSendBuffer
	}
	if opts.MaxFrameBytes <= 0 {
		opts.MaxFrameBytes = defaultMaxFrameBytes
	}

	log := logger.New("websocket")
	origins := newOriginPolicy(opts.AllowedOrigins)

	return &Handler{
		hub: h,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if origins.allows(r.Header.Get("Origin")) {
					return true
				}
				log.Warnf("blocked websocket upgrade from origin %q", r.Header.Get("Origin"))
				return false
			},
		},
		sendBuffer: opts.SendBuffer,
		maxFrame:   opts.MaxFrameBytes,
		logger:     log,
	}
}

// ServeWS upgrades the request and attaches the new connection to the hub.
// The connection is unjoined until it sends a join event.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		h.logger.Debugf("upgrade failed: %v", err)
		return
	}

	cl := newClient(conn, uuid.NewString(), h.sendBuffer, h.maxFrame)
	if !h.hub.register(cl) {
		_ = conn.Close()
		return
	}
	cl.logger.Debugf("connection opened from %s", r.RemoteAddr)

	go cl.keepAlive()
	go cl.writeMessage()
	go cl.readMessage(h.hub)
}

// SubscribeBus applies envelopes published by other processes to the relay
// until ctx is cancelled.
func (h *Handler) SubscribeBus(ctx context.Context, b bus.Bus, channel string) error {
	return b.Subscribe(ctx, channel, func(env bus.Envelope) {
		n, err := env.ApplyTo(h.hub.relay)
		if err != nil {
			countEnvelope(env.Kind, "rejected")
			h.logger.Warnf("rejected bus envelope: %v", err)
			return
		}
		countEnvelope(env.Kind, "applied")
		h.logger.Debugf("applied %s envelope (%d recipients)", env.Kind, n)
	})
}
