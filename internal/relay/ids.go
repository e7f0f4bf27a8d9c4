package relay

import (
	"crypto/rand"
	"io"
	"time"

	"github.com/oklog/ulid/v2"
)

// messageIDs hands out ULIDs that are strictly increasing within a
// millisecond and time-ordered across milliseconds. Not safe for concurrent
// use; the relay only calls next with its own lock held.
type messageIDs struct {
	entropy io.Reader
}

func newMessageIDs() *messageIDs {
	return &messageIDs{entropy: ulid.Monotonic(rand.Reader, 0)}
}

func (m *messageIDs) next(t time.Time) string {
	return ulid.MustNew(ulid.Timestamp(t), m.entropy).String()
}
