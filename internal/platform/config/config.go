package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the full runtime configuration of the indexer.
type Config struct {
	Server   Server
	Postgres PostgresConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Search   SearchConfig
	Clients  ClientsConfig
	Index    IndexConfig
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr          string
	JWTSigningKey string
	JWTIssuer     string
	LogLevel      string
	WriteTimeout  time.Duration
}

// PostgresConfig holds the durable store connection. An empty URL selects
// in-memory stores.
type PostgresConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
}

// RedisConfig configures the queue transport. An empty URL selects the
// in-memory queue.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures domain event publishing and inbound change events.
// No brokers means events are only logged.
type KafkaConfig struct {
	Brokers       []string
	EventsTopic   string
	InboundTopic  string
	ConsumerGroup string
}

// SearchConfig configures the document store.
type SearchConfig struct {
	URL         string
	Username    string
	Password    string
	IndexPrefix string
}

// ClientsConfig holds base URLs of the source of record and enrichment APIs.
type ClientsConfig struct {
	PrisonAPIURL             string
	IncentivesAPIURL         string
	RestrictedPatientsAPIURL string
	AlertsAPIURL             string
	ComplexityOfNeedAPIURL   string
	Token                    string
	Timeout                  time.Duration
}

// IndexConfig tunes the pipelines.
type IndexConfig struct {
	QueueName           string
	PageSize            int
	Workers             int
	VisibilityTimeout   time.Duration
	MaxReceives         int
	ScrollBatchSize     int
	ScrollKeepAlive     time.Duration
	DifferenceRetention time.Duration
	SweepInterval       time.Duration
	OutboxRelayInterval time.Duration
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	return Config{
		Server: Server{
			Addr: getEnv("INDEXER_ADDR", ":8080"),
			// Use a default for development - should be overridden in production
			JWTSigningKey: getEnv("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
			JWTIssuer:     os.Getenv("JWT_ISSUER"),
			LogLevel:      getEnv("LOG_LEVEL", "info"),
			WriteTimeout:  getDuration("HTTP_WRITE_TIMEOUT", 5*time.Minute),
		},
		Postgres: PostgresConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: getInt("DATABASE_MAX_OPEN_CONNS", 20),
			MaxIdleConns: getInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getInt("REDIS_POOL_SIZE", 20),
			MinIdleConns: getInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:       splitList(os.Getenv("KAFKA_BROKERS")),
			EventsTopic:   getEnv("KAFKA_EVENTS_TOPIC", "prisoner-search.domain-events"),
			InboundTopic:  getEnv("KAFKA_INBOUND_TOPIC", "hmpps.domain-events"),
			ConsumerGroup: getEnv("KAFKA_CONSUMER_GROUP", "prisoner-search-indexer"),
		},
		Search: SearchConfig{
			URL:         os.Getenv("OPENSEARCH_URL"),
			Username:    os.Getenv("OPENSEARCH_USERNAME"),
			Password:    os.Getenv("OPENSEARCH_PASSWORD"),
			IndexPrefix: getEnv("OPENSEARCH_INDEX_PREFIX", "prisoner-search"),
		},
		Clients: ClientsConfig{
			PrisonAPIURL:             os.Getenv("PRISON_API_URL"),
			IncentivesAPIURL:         os.Getenv("INCENTIVES_API_URL"),
			RestrictedPatientsAPIURL: os.Getenv("RESTRICTED_PATIENTS_API_URL"),
			AlertsAPIURL:             os.Getenv("ALERTS_API_URL"),
			ComplexityOfNeedAPIURL:   os.Getenv("COMPLEXITY_OF_NEED_API_URL"),
			Token:                    os.Getenv("CLIENT_TOKEN"),
			Timeout:                  getDuration("CLIENT_TIMEOUT", 10*time.Second),
		},
		Index: IndexConfig{
			QueueName:           getEnv("INDEX_QUEUE_NAME", "prisoner-index"),
			PageSize:            getInt("INDEX_PAGE_SIZE", 1000),
			Workers:             getInt("INDEX_WORKERS", 8),
			VisibilityTimeout:   getDuration("QUEUE_VISIBILITY_TIMEOUT", 60*time.Second),
			MaxReceives:         getInt("QUEUE_MAX_RECEIVES", 5),
			ScrollBatchSize:     getInt("RECONCILE_BATCH_SIZE", 2000),
			ScrollKeepAlive:     getDuration("RECONCILE_SCROLL_KEEPALIVE", 2*time.Minute),
			DifferenceRetention: getDuration("DIFF_RETENTION", 30*24*time.Hour),
			SweepInterval:       getDuration("DIFF_SWEEP_INTERVAL", time.Hour),
			OutboxRelayInterval: getDuration("OUTBOX_RELAY_INTERVAL", 10*time.Second),
		},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
