// Package relay tracks live connections, user presence and room membership,
// and fans typed events out to them. Delivery is best effort: nothing is
// queued for offline users and nothing is persisted.
package relay

import (
	"errors"
	"sort"
	"sync"
	"time"

	"legal-relay-backend/internal/logger"
)

var (
	ErrUnknownConnection = errors.New("relay: unknown connection")
	ErrSlowConsumer      = errors.New("relay: connection send buffer full")
	ErrConnectionClosed  = errors.New("relay: connection closed")
)

// Connection is one live transport session. Send must not block; it hands
// the event to the transport or reports why it could not.
type Connection interface {
	ID() string
	Send(Outbound) error
}

type memberSet map[string]struct{}

// Relay owns the presence registry and room membership. All state lives
// behind a single mutex; fan-out also runs under it so a broadcast sees a
// consistent member set.
type Relay struct {
	mu       sync.Mutex
	conns    map[string]Connection
	users    map[string]string    // user identity -> connection id
	channels map[string]memberSet // personal channel -> connection ids
	rooms    map[string]memberSet // room id -> connection ids

	ids    *messageIDs
	now    func() time.Time
	logger *logger.Logger
}

type Option func(*Relay)

// WithClock injects the time source used for event timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Relay) {
		if now != nil {
			r.now = now
		}
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(r *Relay) {
		if l != nil {
			r.logger = l
		}
	}
}

func New(opts ...Option) *Relay {
	r := &Relay{
		conns:    make(map[string]Connection),
		users:    make(map[string]string),
		channels: make(map[string]memberSet),
		rooms:    make(map[string]memberSet),
		ids:      newMessageIDs(),
		now:      time.Now,
		logger:   logger.New("relay"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Connect attaches a transport connection in the unjoined state.
func (r *Relay) Connect(conn Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[conn.ID()] = conn
	r.updateGauges()
	r.logger.Debugf("connection %s attached", conn.ID())
}

// Join maps userID to the connection, subscribes the connection to the
// user's personal channel and confirms with a connected event. A later
// join for the same user overwrites the mapping.
func (r *Relay) Join(connID, userID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, ok := r.conns[connID]
	if !ok {
		r.logger.Warnf("join from unknown connection %s", connID)
		return 0
	}

	if prev, ok := r.users[userID]; ok && prev != connID {
		r.logger.Debugf("user %s moved from connection %s to %s", userID, prev, connID)
	}
	r.users[userID] = connID
	r.subscribe(r.channels, userID, connID)
	r.updateGauges()
	r.logger.Infof("user %s joined on connection %s", userID, connID)

	return r.deliver(conn, Connected{Message: connectedMessage, UserID: userID})
}

// JoinRoom adds the connection to roomID and tells the other members.
// Joining a room the connection is already in changes nothing.
func (r *Relay) JoinRoom(connID, roomID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conns[connID]; !ok {
		r.logger.Warnf("joinRoom %s from unknown connection %s", roomID, connID)
		return 0
	}
	if !r.subscribe(r.rooms, roomID, connID) {
		return 0
	}
	r.updateGauges()
	r.logger.Infof("connection %s joined room %s", connID, roomID)

	return r.fanout(r.rooms[roomID], connID, UserJoined{
		ConnectionID: connID,
		RoomID:       roomID,
		Timestamp:    r.now(),
	})
}

// LeaveRoom removes the connection from roomID. Leaving a room the
// connection is not in is a no-op.
func (r *Relay) LeaveRoom(connID, roomID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.unsubscribe(r.rooms, roomID, connID) {
		return 0
	}
	r.updateGauges()
	r.logger.Infof("connection %s left room %s", connID, roomID)

	return r.fanout(r.rooms[roomID], connID, UserLeft{
		ConnectionID: connID,
		RoomID:       roomID,
		Timestamp:    r.now(),
	})
}

// RelayMessage stamps a chat message with a fresh id and timestamp and
// delivers it to every member of roomID, sender included.
func (r *Relay) RelayMessage(connID, roomID, message, userID, userName string) (ChatMessage, int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	msg := ChatMessage{
		ID:           r.ids.next(now),
		Message:      message,
		UserID:       userID,
		UserName:     userName,
		Timestamp:    now,
		ConnectionID: connID,
	}
	n := r.fanout(r.rooms[roomID], "", msg)
	r.logger.Debugf("message %s relayed to room %s (%d recipients)", msg.ID, roomID, n)
	return msg, n
}

// RelayTyping tells the other members of roomID about a typing state change.
func (r *Relay) RelayTyping(connID, roomID, userID, userName string, isTyping bool) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.fanout(r.rooms[roomID], connID, UserTyping{
		UserID:    userID,
		UserName:  userName,
		IsTyping:  isTyping,
		Timestamp: r.now(),
	})
}

// NotifyAppointmentChange pushes an appointment notification to the user's
// personal channel and, when set, to the lawyer's.
func (r *Relay) NotifyAppointmentChange(update AppointmentUpdate) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	note := Notification{
		Kind:          KindAppointment,
		Message:       update.Message,
		AppointmentID: update.AppointmentID,
		Status:        update.Status,
		Timestamp:     r.now(),
	}
	n := r.fanout(r.channels[update.UserID], "", note)
	if update.LawyerID != "" {
		n += r.fanout(r.channels[update.LawyerID], "", note)
	}
	r.logger.Infof("appointment %s update %s sent (%d recipients)", update.AppointmentID, update.Status, n)
	return n
}

// NotifyDocumentAnalysis pushes analysis progress to the user's personal
// channel. A completed analysis also raises a document notification.
func (r *Relay) NotifyDocumentAnalysis(status DocumentAnalysisStatus) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	members := r.channels[status.UserID]
	n := r.fanout(members, "", DocumentAnalysisUpdate{
		DocumentID: status.DocumentID,
		Status:     status.Status,
		Progress:   status.Progress,
		Result:     status.Result,
		Timestamp:  now,
	})
	if status.Status == DocumentStatusCompleted {
		n += r.fanout(members, "", Notification{
			Kind:       KindDocument,
			Message:    documentCompleteMessage,
			DocumentID: status.DocumentID,
			Timestamp:  now,
		})
	}
	r.logger.Infof("document %s analysis %s sent (%d recipients)", status.DocumentID, status.Status, n)
	return n
}

// Disconnect removes every trace of the connection and tells the rooms it
// was in. It is the only cleanup path.
func (r *Relay) Disconnect(connID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conns[connID]; !ok {
		return 0
	}
	delete(r.conns, connID)

	for userID, id := range r.users {
		if id == connID {
			delete(r.users, userID)
			r.logger.Infof("user %s went offline", userID)
		}
	}
	for channel := range r.channels {
		r.unsubscribe(r.channels, channel, connID)
	}

	n := 0
	now := r.now()
	for _, roomID := range r.sortedRooms() {
		if !r.unsubscribe(r.rooms, roomID, connID) {
			continue
		}
		n += r.fanout(r.rooms[roomID], connID, UserLeft{
			ConnectionID: connID,
			RoomID:       roomID,
			Timestamp:    now,
		})
	}

	r.updateGauges()
	r.logger.Infof("connection %s disconnected", connID)
	return n
}

// Handle applies one validated inbound event from connID.
func (r *Relay) Handle(connID string, ev Inbound) int {
	switch e := ev.(type) {
	case JoinEvent:
		return r.Join(connID, e.UserID)
	case JoinRoomEvent:
		return r.JoinRoom(connID, e.RoomID)
	case LeaveRoomEvent:
		return r.LeaveRoom(connID, e.RoomID)
	case ChatMessageEvent:
		_, n := r.RelayMessage(connID, e.RoomID, e.Message, e.UserID, e.UserName)
		return n
	case TypingEvent:
		return r.RelayTyping(connID, e.RoomID, e.UserID, e.UserName, e.IsTyping)
	case AppointmentUpdate:
		return r.NotifyAppointmentChange(e)
	case DocumentAnalysisStatus:
		return r.NotifyDocumentAnalysis(e)
	default:
		r.logger.Warnf("unhandled inbound event %T from %s", ev, connID)
		return 0
	}
}

// Broadcast delivers ev to every attached connection.
func (r *Relay) Broadcast(ev Outbound) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, conn := range r.conns {
		n += r.deliver(conn, ev)
	}
	return n
}

// SendToRoom delivers ev to every member of roomID.
func (r *Relay) SendToRoom(roomID string, ev Outbound) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fanout(r.rooms[roomID], "", ev)
}

func (r *Relay) OnlineUsersCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

func (r *Relay) IsUserOnline(userID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.users[userID]
	return ok
}

// UserConnection returns the connection currently mapped to userID.
func (r *Relay) UserConnection(userID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.users[userID]
	return id, ok
}

func (r *Relay) RoomMembersCount(roomID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms[roomID])
}

// RoomMembers returns the connection ids in roomID, sorted.
func (r *Relay) RoomMembers(roomID string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	members := make([]string, 0, len(r.rooms[roomID]))
	for id := range r.rooms[roomID] {
		members = append(members, id)
	}
	sort.Strings(members)
	return members
}

// HasRoom reports whether roomID currently has an entry.
func (r *Relay) HasRoom(roomID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.rooms[roomID]
	return ok
}

type Stats struct {
	Connections int `json:"connections"`
	OnlineUsers int `json:"onlineUsers"`
	Rooms       int `json:"rooms"`
}

func (r *Relay) Snapshot() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Stats{
		Connections: len(r.conns),
		OnlineUsers: len(r.users),
		Rooms:       len(r.rooms),
	}
}

// subscribe adds connID to set key, creating it, and reports whether it
// was newly added. Callers hold r.mu.
func (r *Relay) subscribe(sets map[string]memberSet, key, connID string) bool {
	members, ok := sets[key]
	if !ok {
		members = make(memberSet)
		sets[key] = members
	}
	if _, ok := members[connID]; ok {
		return false
	}
	members[connID] = struct{}{}
	return true
}

// unsubscribe removes connID from set key, dropping the set when it
// empties, and reports whether connID was a member. Callers hold r.mu.
func (r *Relay) unsubscribe(sets map[string]memberSet, key, connID string) bool {
	members, ok := sets[key]
	if !ok {
		return false
	}
	if _, ok := members[connID]; !ok {
		return false
	}
	delete(members, connID)
	if len(members) == 0 {
		delete(sets, key)
	}
	return true
}

// fanout delivers ev to members except the one matching except.
// Callers hold r.mu.
func (r *Relay) fanout(members memberSet, except string, ev Outbound) int {
	n := 0
	for id := range members {
		if id == except {
			continue
		}
		conn, ok := r.conns[id]
		if !ok {
			continue
		}
		n += r.deliver(conn, ev)
	}
	return n
}

func (r *Relay) deliver(conn Connection, ev Outbound) int {
	if err := conn.Send(ev); err != nil {
		addDropped(ev.EventName())
		r.logger.Warnf("dropped %s for connection %s: %v", ev.EventName(), conn.ID(), err)
		return 0
	}
	addDelivered(ev.EventName())
	return 1
}

func (r *Relay) sortedRooms() []string {
	ids := make([]string, 0, len(r.rooms))
	for id := range r.rooms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (r *Relay) updateGauges() {
	setGauges(len(r.conns), len(r.users), len(r.rooms))
}
