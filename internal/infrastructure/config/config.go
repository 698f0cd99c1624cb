package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage drivers.
const (
	StoragePostgres = "postgres"
	StorageSQLite   = "sqlite"
)

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int
}

type KafkaConfig struct {
	Brokers         []string
	ConsumerGroup   string
	EventsTopic     string
	HealthCardTopic string
	TLS             bool
	SASLMechanism   string
	SASLUsername    string
	SASLPassword    string
}

// Enabled reports whether any broker is configured.
func (k KafkaConfig) Enabled() bool { return len(k.Brokers) > 0 }

type RedisConfig struct {
	Addr           string
	Password       string
	DB             int
	CAFile         string
	IdempotencyTTL time.Duration
}

type AuthConfig struct {
	JWTSecret        string
	JWTPublicKey     string
	JWTPublicKeyFile string
	Issuer           string
}

type ServerConfig struct {
	GRPCTLSCertFile string
	GRPCTLSKeyFile  string
	GRPCReflection  bool
	// HTTPRateLimitRPS <= 0 disables the REST rate limiter.
	HTTPRateLimitRPS int
}

type OutboxConfig struct {
	PollInterval time.Duration
	BatchSize    int
}

type Config struct {
	ServiceName   string
	Environment   string
	GRPCPort      int
	HTTPPort      int
	StorageDriver string
	SQLitePath    string
	LogLevel      string
	LogFormat     string
	OTLPEndpoint  string
	// StubCreditScore > 0 replaces the simulated bureau with a fixed score.
	StubCreditScore int
	DB              DatabaseConfig
	Kafka           KafkaConfig
	Redis           RedisConfig
	Auth            AuthConfig
	Outbox          OutboxConfig
	Server          ServerConfig
}

// Load reads configuration from the environment, after merging envFiles
// (missing files are ignored; real environment variables win).
func Load(envFiles ...string) Config {
	for _, f := range envFiles {
		if _, err := os.Stat(f); err == nil {
			_ = godotenv.Load(f)
		}
	}

	return Config{
		ServiceName:     getEnv("SERVICE_NAME", "lending-service"),
		Environment:     getEnv("ENVIRONMENT", "development"),
		GRPCPort:        getEnvInt("GRPC_PORT", 9087),
		HTTPPort:        getEnvInt("HTTP_PORT", 8087),
		StorageDriver:   strings.ToLower(getEnv("STORAGE_DRIVER", StoragePostgres)),
		SQLitePath:      getEnv("SQLITE_PATH", "lending.db"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "json"),
		OTLPEndpoint:    os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		StubCreditScore: getEnvInt("STUB_CREDIT_SCORE", 0),
		DB: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "ricare"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "ricare_lending"),
			SSLMode:  getEnv("DB_SSLMODE", "require"),
			MaxConns: getEnvInt("DB_MAX_CONNS", 10),
		},
		Kafka: KafkaConfig{
			Brokers:         getEnvList("KAFKA_BROKERS"),
			ConsumerGroup:   getEnv("KAFKA_CONSUMER_GROUP", "lending-service"),
			EventsTopic:     getEnv("KAFKA_EVENTS_TOPIC", "lending.events"),
			HealthCardTopic: getEnv("KAFKA_HEALTHCARD_TOPIC", "healthcard.status_changed"),
			TLS:             getEnvBool("KAFKA_TLS", false),
			SASLMechanism:   os.Getenv("KAFKA_SASL_MECHANISM"),
			SASLUsername:    os.Getenv("KAFKA_SASL_USERNAME"),
			SASLPassword:    os.Getenv("KAFKA_SASL_PASSWORD"),
		},
		Redis: RedisConfig{
			Addr:           os.Getenv("REDIS_ADDR"),
			Password:       os.Getenv("REDIS_PASSWORD"),
			DB:             getEnvInt("REDIS_DB", 0),
			CAFile:         os.Getenv("REDIS_CA_FILE"),
			IdempotencyTTL: getEnvDuration("IDEMPOTENCY_TTL", 24*time.Hour),
		},
		Auth: AuthConfig{
			JWTSecret:        os.Getenv("JWT_SECRET"),
			JWTPublicKey:     os.Getenv("JWT_PUBLIC_KEY"),
			JWTPublicKeyFile: os.Getenv("JWT_PUBLIC_KEY_FILE"),
			Issuer:           getEnv("JWT_ISSUER", "ricare-gateway"),
		},
		Outbox: OutboxConfig{
			PollInterval: getEnvDuration("OUTBOX_POLL_INTERVAL", time.Second),
			BatchSize:    getEnvInt("OUTBOX_BATCH_SIZE", 100),
		},
		Server: ServerConfig{
			GRPCTLSCertFile:  os.Getenv("GRPC_TLS_CERT_FILE"),
			GRPCTLSKeyFile:   os.Getenv("GRPC_TLS_KEY_FILE"),
			GRPCReflection:   getEnvBool("GRPC_REFLECTION", false),
			HTTPRateLimitRPS: getEnvInt("HTTP_RATE_LIMIT_RPS", 100),
		},
	}
}

// Validate reports every misconfiguration at once.
func (c Config) Validate() error {
	var errs []error
	switch c.StorageDriver {
	case StoragePostgres:
		if c.DB.Password == "" {
			errs = append(errs, errors.New("DB_PASSWORD environment variable is required"))
		}
	case StorageSQLite:
		if c.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH must not be empty"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORAGE_DRIVER %q is not one of %s, %s", c.StorageDriver, StoragePostgres, StorageSQLite))
	}
	if c.Auth.JWTSecret == "" && c.Auth.JWTPublicKey == "" && c.Auth.JWTPublicKeyFile == "" {
		errs = append(errs, errors.New("one of JWT_SECRET, JWT_PUBLIC_KEY or JWT_PUBLIC_KEY_FILE is required"))
	}
	if c.GRPCPort == c.HTTPPort {
		errs = append(errs, fmt.Errorf("GRPC_PORT and HTTP_PORT must differ (both %d)", c.GRPCPort))
	}
	if c.Outbox.BatchSize <= 0 {
		errs = append(errs, errors.New("OUTBOX_BATCH_SIZE must be positive"))
	}
	if c.Outbox.PollInterval <= 0 {
		errs = append(errs, errors.New("OUTBOX_POLL_INTERVAL must be positive"))
	}
	if (c.Server.GRPCTLSCertFile == "") != (c.Server.GRPCTLSKeyFile == "") {
		errs = append(errs, errors.New("GRPC_TLS_CERT_FILE and GRPC_TLS_KEY_FILE must be set together"))
	}
	return errors.Join(errs...)
}

func (c Config) GRPCAddr() string {
	return fmt.Sprintf(":%d", c.GRPCPort)
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
