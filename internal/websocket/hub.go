package websocket

import (
	"context"

	"legal-relay-backend/internal/logger"
	"legal-relay-backend/internal/relay"
)

type inboundFrame struct {
	client *WSClient
	event  relay.Inbound
}

// Hub serializes connection lifecycle and inbound events from every socket
// through one loop, so events reach the relay in arrival order.
type Hub struct {
	Register   chan *WSClient
	Unregister chan *WSClient

	relay   *relay.Relay
	inbound chan inboundFrame
	clients map[string]*WSClient
	done    chan struct{}
	logger  *logger.Logger
}

func NewHub(r *relay.Relay) *Hub {
	return &Hub{
		Register:   make(chan *WSClient),
		Unregister: make(chan *WSClient),
		relay:      r,
		inbound:    make(chan inboundFrame),
		clients:    make(map[string]*WSClient),
		done:       make(chan struct{}),
		logger:     logger.New("hub"),
	}
}

func (h *Hub) Relay() *relay.Relay { return h.relay }

// Run processes hub events until ctx is cancelled, then disconnects every
// remaining client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for _, client := range h.clients {
				h.remove(client)
				_ = client.Conn.Close()
			}
			h.logger.Info("hub stopped")
			return

		case client := <-h.Register:
			h.clients[client.ID()] = client
			h.relay.Connect(client)
			incConnections()

		case client := <-h.Unregister:
			h.remove(client)

		case frame := <-h.inbound:
			if _, ok := h.clients[frame.client.ID()]; !ok {
				continue
			}
			h.relay.Handle(frame.client.ID(), frame.event)
		}
	}
}

func (h *Hub) remove(client *WSClient) {
	if _, ok := h.clients[client.ID()]; !ok {
		return
	}
	delete(h.clients, client.ID())
	h.relay.Disconnect(client.ID())
	client.closeSend()
	decConnections()
}

func (h *Hub) register(client *WSClient) bool {
	select {
	case h.Register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) unregister(client *WSClient) {
	select {
	case h.Unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) dispatch(client *WSClient, ev relay.Inbound) bool {
	select {
	case h.inbound <- inboundFrame{client: client, event: ev}:
		return true
	case <-h.done:
		return false
	}
}
