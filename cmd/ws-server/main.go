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
	"legal-relay-backend/internal/relay"
	authsvc "legal-relay-backend/internal/service/auth"
	"legal-relay-backend/internal/service/notification"
	"legal-relay-backend/internal/websocket"
)

const prefix = "/api/ws/v1"

func main() {
	log := logger.New("ws-server")

	if err := env.Load(); err != nil {
		log.Fatalf("%v", err)
	}
	cfg, err := env.LoadConfig()
	if err != nil {
		log.Fatalf("%v", err)
	}
	logger.Init(cfg.Log)
	log = logger.New("ws-server")

	if err := env.Require(env.ServiceSecretKey, env.AdminSecretKey); err != nil {
		log.Fatalf("%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := relay.New()
	hub := websocket.NewHub(r)
	go hub.Run(ctx)

	handler := websocket.NewHandler(hub, websocket.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		SendBuffer:     cfg.SendBuffer,
		MaxFrameBytes:  cfg.MaxFrameBytes,
	})

	notifications := notification.New(notification.NewLocalDispatcher(r), directory.FromEnv(ctx, log))
	auth := authsvc.New(authsvc.Credentials{
		ServiceKeyHash: cfg.ServiceKeyHash,
		AdminKeyHash:   cfg.AdminKeyHash,
	}, internaljwt.NewIssuer(cfg.ServiceSecret, cfg.AdminSecret))

	b, err := bus.Open(ctx, cfg, "legal-relay-ws")
	if err != nil {
		log.Warnf("bus unavailable, only local notifications will be delivered: %v", err)
	} else {
		defer b.Close()
		go func() {
			if err := handler.SubscribeBus(ctx, b, cfg.BusChannel); err != nil {
				log.Err(err, "bus subscription ended")
			}
		}()
	}

	queueManager := queue.NewRequestQueueManager(cfg.QueueSize, cfg.QueueWorkers)
	defer queueManager.Shutdown()

	server := api.NewAPIServer(
		cfg.WSListenAddr,
		queueManager,
		api.Dependencies{
			Relay:          r,
			Handler:        handler,
			Notifications:  notifications,
			Auth:           auth,
			AllowedOrigins: cfg.AllowedOrigins,
		},
		router.UtilsRoutes(prefix),
		router.WebsocketRoutes(prefix),
		router.PresenceRoutes(prefix),
		router.NotificationRoutes(prefix),
	)

	if err := server.Run(ctx); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
