package websocket

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"legal-relay-backend/internal/logger"
	"legal-relay-backend/internal/relay"
)

// WSClient is one websocket session. It implements relay.Connection.
type WSClient struct {
	Conn *websocket.Conn

	id       string
	send     chan relay.Outbound
	done     chan struct{} // closed when the read pump exits
	maxFrame int64
	logger   *logger.Logger

	mu       sync.Mutex // guards send channel state
	writeMu  sync.Mutex // serializes writes to Conn
	isClosed bool
}

func newClient(conn *websocket.Conn, id string, buffer int, maxFrame int64) *WSClient {
	return &WSClient{
		Conn:     conn,
		id:       id,
		send:     make(chan relay.Outbound, buffer),
		done:     make(chan struct{}),
		maxFrame: maxFrame,
		logger:   logger.New("websocket").WithField("connectionId", id),
	}
}

func (cl *WSClient) ID() string { return cl.id }

// Send queues ev without blocking. A full buffer closes the connection and
// the read pump then drives the normal disconnect.
func (cl *WSClient) Send(ev relay.Outbound) error {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	if cl.isClosed {
		return relay.ErrConnectionClosed
	}
	select {
	case cl.send <- ev:
		return nil
	default:
		cl.logger.Warnf("send buffer full, closing slow connection")
		_ = cl.Conn.Close()
		return relay.ErrSlowConsumer
	}
}

// closeSend stops further sends and lets the write pump drain and exit.
func (cl *WSClient) closeSend() {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	if cl.isClosed {
		return
	}
	cl.isClosed = true
	close(cl.send)
}

func (cl *WSClient) keepAlive() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-cl.done:
			return
		case <-ticker.C:
			cl.writeMu.Lock()
			_ = cl.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := cl.Conn.WriteMessage(websocket.PingMessage, nil)
			cl.writeMu.Unlock()

			if err != nil {
				cl.logger.Debugf("ping failed: %v", err)
				return
			}
		}
	}
}

func (cl *WSClient) writeMessage() {
	defer cl.Conn.Close()

	for ev := range cl.send {
		cl.writeMu.Lock()
		_ = cl.Conn.SetWriteDeadline(time.Now().Add(writeWait))
		err := cl.Conn.WriteJSON(relay.NewFrame(ev))
		cl.writeMu.Unlock()

		if err != nil {
			cl.logger.Debugf("write %s failed: %v", ev.EventName(), err)
			return
		}
		countWritten()
	}

	cl.writeMu.Lock()
	_ = cl.Conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = cl.Conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	cl.writeMu.Unlock()
}

func (cl *WSClient) readMessage(hub *Hub) {
	defer func() {
		if r := recover(); r != nil {
			cl.logger.Errorf("recovered from panic in read pump: %v", r)
		}
		close(cl.done)
		hub.unregister(cl)
	}()

	cl.Conn.SetReadLimit(cl.maxFrame)
	_ = cl.Conn.SetReadDeadline(time.Now().Add(pongWait))
	cl.Conn.SetPongHandler(func(string) error {
		return cl.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := cl.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				cl.logger.Debugf("read failed: %v", err)
			}
			return
		}

		ev, err := relay.DecodeInbound(message)
		if err != nil {
			var verr *relay.ValidationError
			event := ""
			if errors.As(err, &verr) && verr.Field != "event" {
				event = verr.Event
			}
			countFrame(event, "rejected")
			cl.logger.Warnf("rejected frame: %v", err)
			_ = cl.Send(relay.ErrorEvent{Code: "invalid_payload", Message: err.Error()})
			continue
		}
		countFrame(ev.EventName(), "accepted")

		if !hub.dispatch(cl, ev) {
			return
		}
	}
}
