package env

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	AWSRegion         = "AWS_REGION"
	AWSID             = "AWS_ID"
	AWSSecret         = "AWS_SECRET"
	AWSToken          = "AWS_TOKEN"
	DynamoDBEndpoint  = "DYNAMODB_ENDPOINT"
	ServiceSecretKey  = "SERVICE_SECRET"
	AdminSecretKey    = "ADMIN_SECRET"
	ServiceKeyHash    = "SERVICE_API_KEY_HASH"
	AdminKeyHash      = "ADMIN_API_KEY_HASH"
	BusDriver         = "BUS_DRIVER"
	BusChannel        = "BUS_CHANNEL"
	RelayRedisURL     = "RELAY_REDIS_URL"
	RelayRedisPass    = "RELAY_REDIS_PASS"
	NatsURL           = "NATS_URL"
	WSListenAddr      = "WS_LISTEN_ADDR"
	PublicListenAddr  = "PUBLIC_LISTEN_ADDR"
	AllowedOrigins    = "ALLOWED_ORIGINS"
	SendBufferSize    = "WS_SEND_BUFFER"
	MaxFrameBytes     = "WS_MAX_FRAME_BYTES"
	QueueSize         = "REQUEST_QUEUE_SIZE"
	QueueWorkers      = "REQUEST_QUEUE_WORKERS"
	LogLevel          = "LOG_LEVEL"
	LogFormat         = "LOG_FORMAT"
	LogFile           = "LOG_FILE"
	LogFileMaxSizeMB  = "LOG_FILE_MAX_SIZE_MB"
	LogFileMaxBackups = "LOG_FILE_MAX_BACKUPS"
	LogFileMaxAgeDays = "LOG_FILE_MAX_AGE_DAYS"
)

// Load reads a .env file from the working directory when one is present.
// Variables already set in the process environment win.
func Load(files ...string) error {
	err := godotenv.Load(files...)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("env: load dotenv: %w", err)
	}
	return nil
}

// Require returns an error naming every key that is unset.
func Require(keys ...string) error {
	var missing []string
	for _, key := range keys {
		if strings.TrimSpace(os.Getenv(key)) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("env: required environment variables not set: %s", strings.Join(missing, ", "))
	}
	return nil
}

func Get(key string) string {
	return os.Getenv(key)
}

func GetOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func MustGet(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic("env: required environment variable not set: " + key)
	}
	return val
}

// GetInt parses key as an integer, falling back to defaultVal when unset or invalid.
func GetInt(key string, defaultVal int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return defaultVal
	}
	return n
}

// GetList splits a comma-separated variable, dropping empty entries.
func GetList(key string, defaultVal []string) []string {
	raw := os.Getenv(key)
	if strings.TrimSpace(raw) == "" {
		return append([]string(nil), defaultVal...)
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
