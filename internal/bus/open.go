package bus

import (
	"context"
	"fmt"

	"legal-relay-backend/internal/env"
)

// Open connects the driver selected in cfg.
func Open(ctx context.Context, cfg env.Config, clientName string) (Bus, error) {
	switch cfg.BusDriver {
	case env.BusDriverNATS:
		return NewNATS(cfg.NatsURL, clientName)
	case env.BusDriverRedis:
		return NewRedis(ctx, cfg.RedisURL, cfg.RedisPass)
	default:
		return nil, fmt.Errorf("bus: unsupported driver %q", cfg.BusDriver)
	}
}
