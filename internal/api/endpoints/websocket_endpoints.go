package endpoints

import (
	"net/http"

	"legal-relay-backend/internal/websocket"
)

type WebsocketEndpoints interface {
	Socket(http.ResponseWriter, *http.Request) error
}

type websocketEndpoints struct {
	handler *websocket.Handler
}

func NewWebsocketEndpoints(handler *websocket.Handler) WebsocketEndpoints {
	return &websocketEndpoints{handler: handler}
}

func (h *websocketEndpoints) Socket(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet: func(w http.ResponseWriter, r *http.Request) error {
			h.handler.ServeWS(w, r)
			return nil
		},
	})
}
