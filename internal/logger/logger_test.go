package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestComponentLoggerWritesStructuredLine(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, zerolog.DebugLevel)
	t.Cleanup(func() { SetOutput(&bytes.Buffer{}, zerolog.InfoLevel) })

	New("relay").WithField("roomId", "r1").Infof("joined %s", "c1")

	var line map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if line["component"] != "relay" {
		t.Fatalf("expected component relay, got %v", line["component"])
	}
	if line["roomId"] != "r1" {
		t.Fatalf("expected roomId field, got %v", line["roomId"])
	}
	if line["message"] != "joined c1" {
		t.Fatalf("unexpected message %v", line["message"])
	}
}

func TestLevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, zerolog.InfoLevel)
	t.Cleanup(func() { SetOutput(&bytes.Buffer{}, zerolog.InfoLevel) })

	New("relay").Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug line should be filtered, got %q", buf.String())
	}
}

func TestNopDiscards(t *testing.T) {
	Nop().Errorf("nothing %d", 1)
}
