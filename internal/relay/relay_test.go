package relay

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

type fakeConn struct {
	id     string
	mu     sync.Mutex
	events []Outbound
	err    error
}

func newFakeConn(id string) *fakeConn {
	return &fakeConn{id: id}
}

func (c *fakeConn) ID() string { return c.id }

func (c *fakeConn) Send(ev Outbound) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.events = append(c.events, ev)
	return nil
}

func (c *fakeConn) received() []Outbound {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Outbound, len(c.events))
	copy(out, c.events)
	return out
}

func (c *fakeConn) reset() {
	c.mu.Lock()
	c.events = nil
	c.mu.Unlock()
}

func (c *fakeConn) names() []string {
	var names []string
	for _, ev := range c.received() {
		names = append(names, ev.EventName())
	}
	return names
}

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func newTestRelay(conns ...*fakeConn) *Relay {
	r := New(WithClock(func() time.Time { return fixedNow }))
	for _, c := range conns {
		r.Connect(c)
	}
	return r
}

func TestJoinSendsConnectedAndRegistersUser(t *testing.T) {
	c := newFakeConn("c1")
	r := newTestRelay(c)

	if n := r.Join("c1", "u1"); n != 1 {
		t.Fatalf("expected 1 delivery, got %d", n)
	}
	got := c.received()
	if len(got) != 1 {
		t.Fatalf("expected 1 event, got %d", len(got))
	}
	ev, ok := got[0].(Connected)
	if !ok {
		t.Fatalf("expected Connected, got %T", got[0])
	}
	if ev.UserID != "u1" || ev.Message != "Successfully connected to real-time updates" {
		t.Fatalf("unexpected connected payload: %+v", ev)
	}
	if !r.IsUserOnline("u1") {
		t.Fatalf("expected u1 online")
	}
	if id, _ := r.UserConnection("u1"); id != "c1" {
		t.Fatalf("expected u1 mapped to c1, got %q", id)
	}
}

func TestJoinUnknownConnectionIsIgnored(t *testing.T) {
	r := newTestRelay()
	if n := r.Join("ghost", "u1"); n != 0 {
		t.Fatalf("expected 0 deliveries, got %d", n)
	}
	if r.IsUserOnline("u1") {
		t.Fatalf("unknown connection must not register a user")
	}
}

func TestJoinIsIdempotent(t *testing.T) {
	c := newFakeConn("c1")
	r := newTestRelay(c)

	r.Join("c1", "u1")
	r.Join("c1", "u1")

	if got := r.OnlineUsersCount(); got != 1 {
		t.Fatalf("expected 1 online user, got %d", got)
	}
	c.reset()
	if n := r.NotifyAppointmentChange(AppointmentUpdate{UserID: "u1", AppointmentID: "a1", Status: "confirmed"}); n != 1 {
		t.Fatalf("repeated join must not duplicate channel membership, got %d deliveries", n)
	}
}

func TestLaterJoinOverwritesMapping(t *testing.T) {
	c1 := newFakeConn("c1")
	c2 := newFakeConn("c2")
	r := newTestRelay(c1, c2)

	r.Join("c1", "u1")
	r.Join("c2", "u1")

	if id, _ := r.UserConnection("u1"); id != "c2" {
		t.Fatalf("expected latest join to win, got %q", id)
	}

	// Both connections stay on the personal channel until they disconnect.
	c1.reset()
	c2.reset()
	if n := r.NotifyAppointmentChange(AppointmentUpdate{UserID: "u1", AppointmentID: "a1", Status: "pending"}); n != 2 {
		t.Fatalf("expected 2 deliveries, got %d", n)
	}

	// Disconnecting the older connection leaves the newer mapping alone.
	r.Disconnect("c1")
	if !r.IsUserOnline("u1") {
		t.Fatalf("u1 should still be online through c2")
	}
}

func TestJoinRoomNotifiesOtherMembersOnly(t *testing.T) {
	a := newFakeConn("a")
	b := newFakeConn("b")
	r := newTestRelay(a, b)

	if n := r.JoinRoom("a", "room"); n != 0 {
		t.Fatalf("first member has nobody to notify, got %d", n)
	}
	if n := r.JoinRoom("b", "room"); n != 1 {
		t.Fatalf("expected 1 delivery, got %d", n)
	}

	if len(b.received()) != 0 {
		t.Fatalf("joining connection must not receive its own userJoined")
	}
	got := a.received()
	if len(got) != 1 {
		t.Fatalf("expected a to receive 1 event, got %d", len(got))
	}
	ev := got[0].(UserJoined)
	if ev.ConnectionID != "b" || ev.RoomID != "room" || !ev.Timestamp.Equal(fixedNow) {
		t.Fatalf("unexpected userJoined: %+v", ev)
	}
	if r.RoomMembersCount("room") != 2 {
		t.Fatalf("expected 2 members")
	}
}

func TestJoinRoomTwiceDoesNotRebroadcast(t *testing.T) {
	a := newFakeConn("a")
	b := newFakeConn("b")
	r := newTestRelay(a, b)
	r.JoinRoom("a", "room")
	r.JoinRoom("b", "room")
	a.reset()

	if n := r.JoinRoom("b", "room"); n != 0 {
		t.Fatalf("expected no deliveries on repeated join, got %d", n)
	}
	if r.RoomMembersCount("room") != 2 {
		t.Fatalf("membership must stay a set")
	}
}

func TestLeaveRoomNotMemberIsNoop(t *testing.T) {
	a := newFakeConn("a")
	b := newFakeConn("b")
	r := newTestRelay(a, b)
	r.JoinRoom("a", "room")
	a.reset()

	if n := r.LeaveRoom("b", "room"); n != 0 {
		t.Fatalf("expected 0 deliveries, got %d", n)
	}
	if len(a.received()) != 0 {
		t.Fatalf("non-member leave must not emit userLeft")
	}
	if r.RoomMembersCount("room") != 1 {
		t.Fatalf("membership changed on no-op leave")
	}
}

func TestLeaveRoomDeletesEmptyRoom(t *testing.T) {
	a := newFakeConn("a")
	b := newFakeConn("b")
	r := newTestRelay(a, b)
	r.JoinRoom("a", "room")
	r.JoinRoom("b", "room")
	b.reset()

	if n := r.LeaveRoom("a", "room"); n != 1 {
		t.Fatalf("expected userLeft to b, got %d", n)
	}
	if ev, ok := b.received()[0].(UserLeft); !ok || ev.ConnectionID != "a" {
		t.Fatalf("unexpected event %+v", b.received())
	}

	r.LeaveRoom("b", "room")
	if r.HasRoom("room") {
		t.Fatalf("empty room must be removed")
	}
	if r.Snapshot().Rooms != 0 {
		t.Fatalf("expected 0 rooms in snapshot")
	}
}

func TestRelayMessageReachesEveryMemberIncludingSender(t *testing.T) {
	a := newFakeConn("a")
	b := newFakeConn("b")
	outsider := newFakeConn("x")
	r := newTestRelay(a, b, outsider)
	r.JoinRoom("a", "room")
	r.JoinRoom("b", "room")
	a.reset()

	msg, n := r.RelayMessage("a", "room", "hello", "u1", "Ann")
	if n != 2 {
		t.Fatalf("expected 2 deliveries, got %d", n)
	}
	if msg.ID == "" || msg.ConnectionID != "a" || msg.UserName != "Ann" || !msg.Timestamp.Equal(fixedNow) {
		t.Fatalf("unexpected message: %+v", msg)
	}
	for _, c := range []*fakeConn{a, b} {
		got := c.received()
		last, ok := got[len(got)-1].(ChatMessage)
		if !ok || last.ID != msg.ID {
			t.Fatalf("%s did not receive the stamped message: %+v", c.id, got)
		}
	}
	if len(outsider.received()) != 0 {
		t.Fatalf("non-member received a room message")
	}
}

func TestRelayMessageIDsAreUniqueAndOrdered(t *testing.T) {
	a := newFakeConn("a")
	r := newTestRelay(a)
	r.JoinRoom("a", "room")

	first, _ := r.RelayMessage("a", "room", "one", "u1", "Ann")
	second, _ := r.RelayMessage("a", "room", "two", "u1", "Ann")
	if first.ID == second.ID {
		t.Fatalf("message ids must be unique")
	}
	if first.ID >= second.ID {
		t.Fatalf("expected increasing ids, got %s then %s", first.ID, second.ID)
	}
}

func TestRelayMessageEmptyRoom(t *testing.T) {
	a := newFakeConn("a")
	r := newTestRelay(a)

	if _, n := r.RelayMessage("a", "nowhere", "hello", "u1", "Ann"); n != 0 {
		t.Fatalf("expected 0 deliveries, got %d", n)
	}
	if r.HasRoom("nowhere") {
		t.Fatalf("relaying must not create a room")
	}
}

func TestRelayTypingSkipsSender(t *testing.T) {
	a := newFakeConn("a")
	b := newFakeConn("b")
	r := newTestRelay(a, b)
	r.JoinRoom("a", "room")
	r.JoinRoom("b", "room")
	a.reset()
	b.reset()

	if n := r.RelayTyping("a", "room", "u1", "Ann", true); n != 1 {
		t.Fatalf("expected 1 delivery, got %d", n)
	}
	if len(a.received()) != 0 {
		t.Fatalf("sender must not receive its own typing event")
	}
	ev := b.received()[0].(UserTyping)
	if !ev.IsTyping || ev.UserID != "u1" {
		t.Fatalf("unexpected typing payload: %+v", ev)
	}
}

func TestNotifyAppointmentChangeUserAndLawyer(t *testing.T) {
	user := newFakeConn("cu")
	lawyer := newFakeConn("cl")
	r := newTestRelay(user, lawyer)
	r.Join("cu", "u1")
	r.Join("cl", "l1")
	user.reset()
	lawyer.reset()

	n := r.NotifyAppointmentChange(AppointmentUpdate{
		UserID:        "u1",
		LawyerID:      "l1",
		AppointmentID: "a1",
		Status:        "confirmed",
		Message:       "Your appointment was confirmed",
	})
	if n != 2 {
		t.Fatalf("expected 2 deliveries, got %d", n)
	}
	for _, c := range []*fakeConn{user, lawyer} {
		got := c.received()
		if len(got) != 1 {
			t.Fatalf("%s: expected 1 event, got %d", c.id, len(got))
		}
		note := got[0].(Notification)
		if note.Kind != KindAppointment || note.AppointmentID != "a1" || note.Status != "confirmed" {
			t.Fatalf("%s: unexpected notification %+v", c.id, note)
		}
	}
}

func TestNotifyAppointmentChangeOfflineUser(t *testing.T) {
	r := newTestRelay()
	if n := r.NotifyAppointmentChange(AppointmentUpdate{UserID: "u1", AppointmentID: "a1", Status: "pending"}); n != 0 {
		t.Fatalf("expected 0 deliveries for offline user, got %d", n)
	}
}

func TestNotifyDocumentAnalysisCompleted(t *testing.T) {
	c := newFakeConn("c1")
	r := newTestRelay(c)
	r.Join("c1", "u1")
	c.reset()

	progress := 100.0
	n := r.NotifyDocumentAnalysis(DocumentAnalysisStatus{
		UserID:     "u1",
		DocumentID: "d1",
		Status:     DocumentStatusCompleted,
		Progress:   &progress,
		Result:     json.RawMessage(`{"summary":"ok"}`),
	})
	if n != 2 {
		t.Fatalf("expected 2 deliveries, got %d", n)
	}
	names := c.names()
	if len(names) != 2 || names[0] != EventDocumentAnalysisUpdate || names[1] != EventNotification {
		t.Fatalf("unexpected event order: %v", names)
	}
	note := c.received()[1].(Notification)
	if note.Kind != KindDocument || note.Message != "Your document analysis is complete!" || note.DocumentID != "d1" {
		t.Fatalf("unexpected completion notification: %+v", note)
	}
}

func TestNotifyDocumentAnalysisInProgress(t *testing.T) {
	c := newFakeConn("c1")
	r := newTestRelay(c)
	r.Join("c1", "u1")
	c.reset()

	if n := r.NotifyDocumentAnalysis(DocumentAnalysisStatus{UserID: "u1", DocumentID: "d1", Status: "processing"}); n != 1 {
		t.Fatalf("expected 1 delivery, got %d", n)
	}
	if names := c.names(); len(names) != 1 || names[0] != EventDocumentAnalysisUpdate {
		t.Fatalf("unexpected events: %v", names)
	}
}

func TestDisconnectCleansEverything(t *testing.T) {
	a := newFakeConn("a")
	b := newFakeConn("b")
	r := newTestRelay(a, b)
	r.Join("a", "u1")
	r.JoinRoom("a", "r1")
	r.JoinRoom("a", "r2")
	r.JoinRoom("b", "r1")
	b.reset()

	if n := r.Disconnect("a"); n != 1 {
		t.Fatalf("expected one userLeft to b, got %d", n)
	}
	if r.IsUserOnline("u1") {
		t.Fatalf("u1 must be offline")
	}
	if r.HasRoom("r2") {
		t.Fatalf("r2 must be removed once empty")
	}
	if members := r.RoomMembers("r1"); len(members) != 1 || members[0] != "b" {
		t.Fatalf("unexpected r1 members: %v", members)
	}
	if ev, ok := b.received()[0].(UserLeft); !ok || ev.RoomID != "r1" {
		t.Fatalf("unexpected event for b: %+v", b.received())
	}
	if n := r.NotifyAppointmentChange(AppointmentUpdate{UserID: "u1", AppointmentID: "a1", Status: "pending"}); n != 0 {
		t.Fatalf("personal channel must be gone, got %d deliveries", n)
	}

	stats := r.Snapshot()
	if stats.Connections != 1 || stats.OnlineUsers != 0 || stats.Rooms != 1 {
		t.Fatalf("unexpected snapshot %+v", stats)
	}
	if n := r.Disconnect("a"); n != 0 {
		t.Fatalf("second disconnect must be a no-op")
	}
}

func TestFailedSendDoesNotStopFanout(t *testing.T) {
	a := newFakeConn("a")
	broken := newFakeConn("broken")
	c := newFakeConn("c")
	r := newTestRelay(a, broken, c)
	for _, id := range []string{"a", "broken", "c"} {
		r.JoinRoom(id, "room")
	}
	broken.err = ErrSlowConsumer

	before := testutil.ToFloat64(relayDropped.WithLabelValues(EventChatMessage))
	if _, n := r.RelayMessage("a", "room", "hi", "u1", "Ann"); n != 2 {
		t.Fatalf("expected 2 deliveries past the broken connection, got %d", n)
	}
	after := testutil.ToFloat64(relayDropped.WithLabelValues(EventChatMessage))
	if after-before != 1 {
		t.Fatalf("expected one dropped chatMessage, got %v", after-before)
	}
}

func TestBroadcastAndSendToRoom(t *testing.T) {
	a := newFakeConn("a")
	b := newFakeConn("b")
	r := newTestRelay(a, b)
	r.JoinRoom("a", "room")
	a.reset()

	maintenance := Custom{Name: "maintenance", Data: json.RawMessage(`{"in":"5m"}`)}
	if n := r.Broadcast(maintenance); n != 2 {
		t.Fatalf("expected broadcast to 2 connections, got %d", n)
	}
	if n := r.SendToRoom("room", Custom{Name: "pinned"}); n != 1 {
		t.Fatalf("expected 1 room delivery, got %d", n)
	}
	if names := a.names(); len(names) != 2 || names[1] != "pinned" {
		t.Fatalf("unexpected events for a: %v", names)
	}
	if names := b.names(); len(names) != 1 || names[0] != "maintenance" {
		t.Fatalf("unexpected events for b: %v", names)
	}
}

func TestHandleDispatchesInbound(t *testing.T) {
	a := newFakeConn("a")
	b := newFakeConn("b")
	r := newTestRelay(a, b)

	r.Handle("a", JoinEvent{UserID: "u1"})
	r.Handle("a", JoinRoomEvent{RoomID: "room"})
	r.Handle("b", JoinRoomEvent{RoomID: "room"})
	if n := r.Handle("b", ChatMessageEvent{RoomID: "room", Message: "hi"}); n != 2 {
		t.Fatalf("expected 2 deliveries, got %d", n)
	}
	if n := r.Handle("b", TypingEvent{RoomID: "room", IsTyping: true}); n != 1 {
		t.Fatalf("expected 1 delivery, got %d", n)
	}
	if n := r.Handle("b", AppointmentUpdate{UserID: "u1", AppointmentID: "a1", Status: "cancelled"}); n != 1 {
		t.Fatalf("expected 1 delivery, got %d", n)
	}
	if n := r.Handle("b", LeaveRoomEvent{RoomID: "room"}); n != 1 {
		t.Fatalf("expected 1 delivery, got %d", n)
	}
}

func TestMetricsTrackState(t *testing.T) {
	a := newFakeConn("a")
	r := newTestRelay(a)
	r.Join("a", "u1")
	r.JoinRoom("a", "room")

	if got := testutil.ToFloat64(relayOnlineUsers); got != 1 {
		t.Fatalf("expected online users gauge 1, got %v", got)
	}
	if got := testutil.ToFloat64(relayRooms); got != 1 {
		t.Fatalf("expected rooms gauge 1, got %v", got)
	}
	r.Disconnect("a")
	if got := testutil.ToFloat64(relayConnections); got != 0 {
		t.Fatalf("expected connections gauge 0, got %v", got)
	}
}

func TestConcurrentOperations(t *testing.T) {
	r := newTestRelay()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c := newFakeConn(string(rune('a' + i)))
			r.Connect(c)
			r.Join(c.id, c.id)
			r.JoinRoom(c.id, "shared")
			r.RelayMessage(c.id, "shared", "hi", c.id, c.id)
			r.Disconnect(c.id)
		}(i)
	}
	wg.Wait()

	if stats := r.Snapshot(); stats != (Stats{}) {
		t.Fatalf("expected empty relay, got %+v", stats)
	}
}
