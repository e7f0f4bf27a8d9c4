package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"legal-relay-backend/internal/api"
	"legal-relay-backend/internal/api/router"
	"legal-relay-backend/internal/bus"
	"legal-relay-backend/internal/directory"
	"legal-relay-backend/internal/env"
	internaljwt "legal-relay-backend/internal/jwt"
	"legal-relay-backend/internal/logger"
	"legal-relay-backend/internal/queue"
	authsvc "legal-relay-backend/internal/service/auth"
	"legal-relay-backend/internal/service/notification"
)

const prefix = "/api/public/v1"

func main() {
	log := logger.New("public-server")

	if err := env.Load(); err != nil {
		log.Fatalf("%v", err)
	}
	cfg, err := env.LoadConfig()
	if err != nil {
		log.Fatalf("%v", err)
	}
	logger.Init(cfg.Log)
	log = logger.New("public-server")

	if err := env.Require(env.ServiceSecretKey, env.AdminSecretKey, env.ServiceKeyHash); err != nil {
		log.Fatalf("%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// This process holds no sockets, so every notification goes over the bus.
	b, err := bus.Open(ctx, cfg, "legal-relay-public")
	if err != nil {
		log.Fatalf("bus init failed: %v", err)
	}
	defer b.Close()

	notifications := notification.New(notification.NewBusDispatcher(b, cfg.BusChannel), directory.FromEnv(ctx, log))
	auth := authsvc.New(authsvc.Credentials{
		ServiceKeyHash: cfg.ServiceKeyHash,
		AdminKeyHash:   cfg.AdminKeyHash,
	}, internaljwt.NewIssuer(cfg.ServiceSecret, cfg.AdminSecret))

	queueManager := queue.NewRequestQueueManager(cfg.QueueSize, cfg.QueueWorkers)
	defer queueManager.Shutdown()

	server := api.NewAPIServer(
		cfg.PublicListenAddr,
		queueManager,
		api.Dependencies{
			Notifications:  notifications,
			Auth:           auth,
			AllowedOrigins: cfg.AllowedOrigins,
		},
		router.UtilsRoutes(prefix),
		router.AuthRoutes(prefix),
		router.NotificationRoutes(prefix),
	)

	if err := server.Run(ctx); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
