package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is centralized process configuration. Keep infra values here and
// pass typed config into builders.
type Config struct {
	ServiceName string
	HTTPPort    string
	PostgresDSN string

	EventBus      string // "inprocess" or "kafka"
	KafkaBrokers  []string
	EventTopic    string
	ConsumerGroup string
	RedisAddr     string

	StaleThreshold      time.Duration
	StaleCheckInterval  time.Duration
	HeartbeatInterval   time.Duration
	StreamBuffer        int
	EnableStaleDetector bool

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	GatewayPort        string
	IncidentServiceURL string
	ActivityServiceURL string
	EvidenceServiceURL string
	SecretsServiceURL  string
	VerifyTimeout      time.Duration
}

func Load() (Config, error) {
	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "pulseops"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}

	bus := strings.TrimSpace(strings.ToLower(os.Getenv("EVENT_BUS")))
	if bus == "" {
		bus = "inprocess"
	}

	var brokers []string
	for _, value := range strings.Split(os.Getenv("KAFKA_BROKERS"), ",") {
		value = strings.TrimSpace(value)
		if value != "" {
			brokers = append(brokers, value)
		}
	}
	if len(brokers) == 0 {
		brokers = []string{"localhost:9092"}
	}

	topic := os.Getenv("EVENT_TOPIC")
	if topic == "" {
		topic = "pulseops.domain-events"
	}

	group := os.Getenv("CONSUMER_GROUP")
	if group == "" {
		group = "activity-service-cg"
	}

	bucket := os.Getenv("MINIO_BUCKET")
	if bucket == "" {
		bucket = "pulseops-evidence"
	}

	return Config{
		ServiceName: service,
		HTTPPort:    port,
		PostgresDSN: os.Getenv("POSTGRES_DSN"),

		EventBus:      bus,
		KafkaBrokers:  brokers,
		EventTopic:    topic,
		ConsumerGroup: group,
		RedisAddr:     os.Getenv("REDIS_ADDR"),

		StaleThreshold:      envDuration("STALE_THRESHOLD", 30*time.Minute),
		StaleCheckInterval:  envDuration("STALE_CHECK_INTERVAL", 5*time.Minute),
		HeartbeatInterval:   envDuration("HEARTBEAT_INTERVAL", 30*time.Second),
		StreamBuffer:        envInt("STREAM_BUFFER", 64),
		EnableStaleDetector: envBool("ENABLE_STALE_DETECTOR", true),

		MinioEndpoint:  os.Getenv("MINIO_ENDPOINT"),
		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:    bucket,
		MinioUseSSL:    envBool("MINIO_USE_SSL", false),

		GatewayPort:        envDefault("GATEWAY_PORT", "8090"),
		IncidentServiceURL: envDefault("INCIDENT_SERVICE_URL", "http://localhost:8082"),
		ActivityServiceURL: envDefault("ACTIVITY_SERVICE_URL", "http://localhost:8084"),
		EvidenceServiceURL: envDefault("EVIDENCE_SERVICE_URL", "http://localhost:8083"),
		SecretsServiceURL:  envDefault("SECRETS_SERVICE_URL", "http://localhost:8081"),
		VerifyTimeout:      envDuration("VERIFY_TIMEOUT", 3*time.Second),
	}, nil
}

func envDefault(name, fallback string) string {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	return value
}

func envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}

func envInt(name string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func envDuration(name string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return value
}
