package env

import (
	"fmt"
	"strings"

	"legal-relay-backend/internal/logger"
)

const (
	BusDriverRedis = "redis"
	BusDriverNATS  = "nats"
)

// Config is the typed view of the process environment shared by the servers.
type Config struct {
	WSListenAddr     string
	PublicListenAddr string
	AllowedOrigins   []string
	SendBuffer       int
	MaxFrameBytes    int64

	BusDriver  string
	BusChannel string
	RedisURL   string
	RedisPass  string
	NatsURL    string

	ServiceSecret  string
	AdminSecret    string
	ServiceKeyHash string
	AdminKeyHash   string

	QueueSize    int
	QueueWorkers int

	Log logger.Config
}

// LoadConfig builds a Config from the environment, applying defaults.
func LoadConfig() (Config, error) {
	logCfg := logger.DefaultConfig()
	logCfg.Level = GetOrDefault(LogLevel, logCfg.Level)
	logCfg.Format = GetOrDefault(LogFormat, logCfg.Format)
	logCfg.FilePath = Get(LogFile)
	logCfg.MaxSize = GetInt(LogFileMaxSizeMB, logCfg.MaxSize)
	logCfg.MaxBackups = GetInt(LogFileMaxBackups, logCfg.MaxBackups)
	logCfg.MaxAge = GetInt(LogFileMaxAgeDays, logCfg.MaxAge)

	cfg := Config{
		WSListenAddr:     GetOrDefault(WSListenAddr, ":83"),
		PublicListenAddr: GetOrDefault(PublicListenAddr, ":82"),
		AllowedOrigins:   GetList(AllowedOrigins, []string{"http://localhost:5173"}),
		SendBuffer:       GetInt(SendBufferSize, 64),
		MaxFrameBytes:    int64(GetInt(MaxFrameBytes, 64*1024)),
		BusDriver:        strings.ToLower(GetOrDefault(BusDriver, BusDriverRedis)),
		BusChannel:       GetOrDefault(BusChannel, "relay:notifications"),
		RedisURL:         Get(RelayRedisURL),
		RedisPass:        Get(RelayRedisPass),
		NatsURL:          Get(NatsURL),
		ServiceSecret:    Get(ServiceSecretKey),
		AdminSecret:      Get(AdminSecretKey),
		ServiceKeyHash:   Get(ServiceKeyHash),
		AdminKeyHash:     Get(AdminKeyHash),
		QueueSize:        GetInt(QueueSize, 10),
		QueueWorkers:     GetInt(QueueWorkers, 10),
		Log:              logCfg,
	}

	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = 64
	}
	if cfg.MaxFrameBytes <= 0 {
		cfg.MaxFrameBytes = 64 * 1024
	}
	if cfg.QueueWorkers <= 0 {
		cfg.QueueWorkers = 1
	}
	if cfg.QueueSize < 0 {
		cfg.QueueSize = 0
	}

	switch cfg.BusDriver {
	case BusDriverRedis, BusDriverNATS:
	default:
		return cfg, fmt.Errorf("env: unsupported %s %q", BusDriver, cfg.BusDriver)
	}

	return cfg, nil
}

// BusAddress returns the connection address for the configured bus driver.
func (c Config) BusAddress() string {
	if c.BusDriver == BusDriverNATS {
		return c.NatsURL
	}
	return c.RedisURL
}
