package websocket

import (
	"net/url"
	"strings"
	"time"
)

const (
	defaultSendBuffer    = 64
	defaultMaxFrameBytes = 64 * 1024
	pingInterval         = 30 * time.Second
	pongWait             = 2 * pingInterval
	writeWait            = 10 * time.Second
)

// Options configures the websocket transport.
type Options struct {
	// AllowedOrigins lists browser origins allowed to upgrade. "*" allows
	// any origin. Requests without an Origin header (server-side clients)
	// are always accepted.
	AllowedOrigins []string
	SendBuffer     int
	MaxFrameBytes  int64
}

type originPolicy struct {
	allowAll bool
	allowed  map[string]struct{}
}

func newOriginPolicy(origins []string) originPolicy {
	p := originPolicy{allowed: make(map[string]struct{})}
	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed == "*" {
			p.allowAll = true
			continue
		}
		if normalized, ok := normalizeOrigin(trimmed); ok {
			p.allowed[normalized] = struct{}{}
		}
	}
	return p
}

func (p originPolicy) allows(origin string) bool {
	if origin == "" || p.allowAll {
		return true
	}
	normalized, ok := normalizeOrigin(origin)
	if !ok {
		return false
	}
	_, exists := p.allowed[normalized]
	return exists
}

func normalizeOrigin(origin string) (string, bool) {
	parsed, err := url.Parse(origin)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", false
	}
	return strings.ToLower(parsed.Scheme) + "://" + strings.ToLower(parsed.Host), true
}
