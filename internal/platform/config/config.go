package config

import (
	"os"
	"strings"
	"time"
)

// StoreBackend selects the participant persistence implementation.
type StoreBackend string

const (
	StoreFile     StoreBackend = "file"
	StoreMemory   StoreBackend = "memory"
	StorePostgres StoreBackend = "postgres"
	StoreRedis    StoreBackend = "redis"
	StoreBadger   StoreBackend = "badger"
)

// Server captures process-level configuration.
type Server struct {
	Addr         string
	StoreBackend StoreBackend
	DataFile     string
	BadgerDir    string
	PostgresDSN  string
	RedisURL     string
	KafkaBrokers []string
	KafkaTopic   string

	ShutdownTimeout time.Duration
}

// FromEnv builds a Server config from environment variables so main stays
// lean. Defaults match a single-process file-backed deployment.
func FromEnv() Server {
	cfg := Server{
		Addr:            envOr("ROLLCALL_ADDR", ":4000"),
		StoreBackend:    StoreBackend(envOr("ROLLCALL_STORE_BACKEND", string(StoreFile))),
		DataFile:        envOr("ROLLCALL_DATA_FILE", "participants.json"),
		BadgerDir:       envOr("ROLLCALL_BADGER_DIR", "participants.badger"),
		PostgresDSN:     os.Getenv("ROLLCALL_POSTGRES_DSN"),
		RedisURL:        os.Getenv("ROLLCALL_REDIS_URL"),
		KafkaTopic:      envOr("ROLLCALL_KAFKA_TOPIC", "rollcall.participants"),
		ShutdownTimeout: 10 * time.Second,
	}
	if brokers := os.Getenv("ROLLCALL_KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
