package endpoints

import (
	"errors"
	"net/http"
	"strings"

	"legal-relay-backend/internal/dto"
	"legal-relay-backend/internal/relay"
)

type PresenceEndpoints interface {
	Summary(http.ResponseWriter, *http.Request) error
	User(http.ResponseWriter, *http.Request) error
	Room(http.ResponseWriter, *http.Request) error
}

type presenceEndpoints struct {
	relay *relay.Relay
}

func NewPresenceEndpoints(r *relay.Relay) PresenceEndpoints {
	return &presenceEndpoints{relay: r}
}

func (h *presenceEndpoints) Summary(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet: func(w http.ResponseWriter, r *http.Request) error {
			stats := h.relay.Snapshot()
			return WriteJSON(w, http.StatusOK, dto.PresenceResponse{
				Connections: stats.Connections,
				OnlineUsers: stats.OnlineUsers,
				Rooms:       stats.Rooms,
			})
		},
	})
}

func (h *presenceEndpoints) User(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet: func(w http.ResponseWriter, r *http.Request) error {
			userID, err := pathID(r)
			if err != nil {
				return err
			}
			return WriteJSON(w, http.StatusOK, dto.UserPresenceResponse{
				UserID: userID,
				Online: h.relay.IsUserOnline(userID),
			})
		},
	})
}

func (h *presenceEndpoints) Room(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet: func(w http.ResponseWriter, r *http.Request) error {
			roomID, err := pathID(r)
			if err != nil {
				return err
			}
			members := h.relay.RoomMembers(roomID)
			return WriteJSON(w, http.StatusOK, dto.RoomPresenceResponse{
				RoomID:  roomID,
				Members: len(members),
				Conns:   members,
			})
		},
	})
}

func pathID(r *http.Request) (string, error) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		return "", &HTTPError{StatusCode: http.StatusBadRequest, Message: "Missing id", ErrorLog: errors.New("missing path id")}
	}
	return id, nil
}
