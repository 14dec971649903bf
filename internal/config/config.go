// Package config centralises configuration parsing for motionlog.
package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Sensor modes.
const (
	SensorModePush  = "push"
	SensorModeKafka = "kafka"
	SensorModeNone  = "none"
)

// Config captures runtime configuration values for the service.
type Config struct {
	HTTPAddress     string
	CORSOrigin      string
	AuthEnabled     bool
	JWTSecret       string
	JWTIssuer       string
	SensorMode      string
	KafkaBrokers    []string
	SampleTopic     string
	SampleGroupID   string
	SessionTopic    string
	PublishSessions bool
	PublishBuffer   int
	DefaultLiveName string
	LogFile         string // Rotating log file; empty logs to stderr only.
	LogMaxSizeMB    int
	LogMaxBackups   int
	ShutdownTimeout time.Duration
}

// Load reads an optional .env file and then environment variables into Config,
// applying defaults for local dev.
func Load() (Config, error) {
	if err := loadDotEnv(getEnv("ENV_FILE", ".env")); err != nil {
		return Config{}, err
	}

	cfg := Config{
		HTTPAddress:     getEnv("HTTP_ADDRESS", ":8080"),
		CORSOrigin:      getEnv("CORS_ORIGIN", "http://localhost:5173"),
		AuthEnabled:     getBoolEnv("AUTH_ENABLED", true),
		JWTSecret:       getEnv("JWT_SECRET", "dev-secret-change-me"),
		JWTIssuer:       getEnv("JWT_ISSUER", "motionlog.identity"),
		SensorMode:      strings.ToLower(getEnv("SENSOR_MODE", SensorModePush)),
		KafkaBrokers:    splitAndTrim(getEnv("KAFKA_BROKERS", "kafka:9092")),
		SampleTopic:     getEnv("SAMPLE_TOPIC", "accelerometer_samples"),
		SampleGroupID:   getEnv("SAMPLE_GROUP_ID", "motionlog-live"),
		SessionTopic:    getEnv("SESSION_TOPIC", "session_events"),
		PublishSessions: getBoolEnv("PUBLISH_SESSIONS", false),
		PublishBuffer:   getIntEnv("PUBLISH_BUFFER", 64),
		DefaultLiveName: getEnv("DEFAULT_LIVE_NAME", "Live session"),
		LogFile:         getEnv("LOG_FILE", ""),
		LogMaxSizeMB:    getIntEnv("LOG_MAX_SIZE_MB", 10),
		LogMaxBackups:   getIntEnv("LOG_MAX_BACKUPS", 3),
		ShutdownTimeout: getDurationEnv("SHUTDOWN_TIMEOUT", 15*time.Second),
	}

	switch cfg.SensorMode {
	case SensorModePush, SensorModeKafka, SensorModeNone:
	default:
		return Config{}, errors.New("SENSOR_MODE must be one of push, kafka, none")
	}
	if cfg.SensorMode == SensorModeKafka && len(cfg.KafkaBrokers) == 0 {
		return Config{}, errors.New("KAFKA_BROKERS is required when SENSOR_MODE=kafka")
	}
	return cfg, nil
}

// loadDotEnv loads path if it exists. Variables already in the environment win.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func splitAndTrim(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBoolEnv(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}
