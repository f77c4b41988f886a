package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	// DebugModeEnv is the environment variable for debug mode.
	DebugModeEnv = "DEBUG_MODE"

	// DBHostEnv is the environment variable for database host.
	DBHostEnv = "DB_HOST"

	// DBPortEnv is the environment variable for database port.
	DBPortEnv = "DB_PORT"

	// DBUserEnv is the environment variable for database user.
	DBUserEnv = "DB_USER"

	// DBPassEnv is the environment variable for database password.
	DBPassEnv = "DB_PASS"

	// DBNameEnv is the environment variable for database name.
	DBNameEnv = "DB_NAME"

	// HTTPServerPortEnv is the environment variable for HTTP server port.
	HTTPServerPortEnv = "HTTP_SERVER_PORT"

	// MetricsServerPortEnv is the environment variable for metrics server port.
	MetricsServerPortEnv = "METRICS_SERVER_PORT"

	// EnvFilePath is the environment variable for .env file path (only for local/test environment).
	EnvFilePath = "ENV_PATH"

	// DefaultEnvFilePath is the default path to the .env file.
	DefaultEnvFilePath = ".env"

	// AWSRegionEnv is the environment variable for AWS region.
	AWSRegionEnv = "AWS_REGION"

	// AWSEndpointEnv is the environment variable for AWS endpoint.
	AWSEndpointEnv = "AWS_ENDPOINT"

	// SQSQueueURLEnv is the environment variable for the price alert queue URL.
	// The push relay is disabled when it is empty.
	SQSQueueURLEnv = "SQS_QUEUE_URL"

	// RedisAddrEnv is the environment variable for the Redis address.
	// Session preferences are kept in memory when it is empty.
	RedisAddrEnv = "REDIS_ADDR"

	// RedisPasswordEnv is the environment variable for the Redis password.
	RedisPasswordEnv = "REDIS_PASSWORD"

	// RedisDBEnv is the environment variable for the Redis database index.
	RedisDBEnv = "REDIS_DB"

	// SessionTTLEnv is the environment variable for session preference lifetime.
	SessionTTLEnv = "SESSION_TTL"

	// VAPIDPublicKeyEnv is the environment variable for the Web Push application server key.
	VAPIDPublicKeyEnv = "VAPID_PUBLIC_KEY"

	// VAPIDPrivateKeyEnv is the environment variable for the Web Push signing key.
	VAPIDPrivateKeyEnv = "VAPID_PRIVATE_KEY"

	// VAPIDSubscriberEnv is the environment variable for the Web Push contact (mailto: or https: URL).
	VAPIDSubscriberEnv = "VAPID_SUBSCRIBER"

	// HistoryLimitEnv is the environment variable for the default number of history rows.
	HistoryLimitEnv = "HISTORY_LIMIT"

	// FetchTimeoutEnv is the environment variable for the per-query timeout.
	FetchTimeoutEnv = "FETCH_TIMEOUT"

	// CacheVersionEnv is the environment variable for the background script cache name.
	CacheVersionEnv = "CACHE_VERSION"
)

const (
	defaultRedisDB      = 0
	defaultSessionTTL   = 30 * 24 * time.Hour
	defaultHistoryLimit = 100
	defaultFetchTimeout = 10 * time.Second
	defaultCacheVersion = "price-alerts-v1"
	defaultSubscriber   = "mailto:alerts@example.com"
)

var (
	// ErrMissingConfig is returned when required configuration values are missing.
	ErrMissingConfig = errors.New("missing config data")
)

// Config represents the application configuration.
type Config struct {
	DebugMode     bool
	Database      DB
	HTTPServer    Server
	MetricsServer Server
	AWS           AWSConfig
	Redis         RedisConfig
	Push          PushConfig
	Dashboard     DashboardConfig
}

// AWSConfig represents AWS-specific configuration settings.
type AWSConfig struct {
	Region      string
	Endpoint    string
	SQSQueueURL string
}

// DB represents database configuration settings.
type DB struct {
	Host     string
	User     string
	Password string
	Name     string
	Port     string
}

// Server represents server configuration settings.
type Server struct {
	Port string
}

// RedisConfig represents the session preference store settings.
type RedisConfig struct {
	Addr       string
	Password   string
	DB         int
	SessionTTL time.Duration
}

// PushConfig holds the VAPID key pair used for Web Push.
type PushConfig struct {
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	Subscriber      string
}

// DashboardConfig holds query and background script tunables.
type DashboardConfig struct {
	HistoryLimit int
	FetchTimeout time.Duration
	CacheVersion string
}

func allNonEmpty(keyValues map[string]string) error {
	for key, value := range keyValues {
		if value == "" {
			slog.Error("configuration validation failed", slog.String("key", key), slog.String("error", "value is empty"))
			return fmt.Errorf("%w for key: %s", ErrMissingConfig, key)
		}
	}
	return nil
}

func allNumbers(keyValues map[string]string) error {
	for key, value := range keyValues {
		_, err := strconv.Atoi(value)
		if err != nil {
			slog.Error("configuration validation failed", slog.String("key", key), slog.String("value", value), slog.String("error", err.Error()))
			return fmt.Errorf("invalid number for key %s: %w", key, err)
		}
	}
	return nil
}

func (c *Config) validate() error {
	// Validate database configuration
	if err := allNonEmpty(map[string]string{
		DBHostEnv: c.Database.Host,
		DBUserEnv: c.Database.User,
		DBNameEnv: c.Database.Name,
	}); err != nil {
		return fmt.Errorf("database configuration incomplete: %w", err)
	}

	// Validate server ports
	if err := allNonEmpty(map[string]string{
		HTTPServerPortEnv:    c.HTTPServer.Port,
		MetricsServerPortEnv: c.MetricsServer.Port,
	}); err != nil {
		return fmt.Errorf("server port configuration incomplete: %w", err)
	}

	// Validate port numbers
	if err := allNumbers(map[string]string{
		DBPortEnv:            c.Database.Port,
		HTTPServerPortEnv:    c.HTTPServer.Port,
		MetricsServerPortEnv: c.MetricsServer.Port,
	}); err != nil {
		return fmt.Errorf("invalid port number: %w", err)
	}

	// Both halves of the VAPID pair or neither
	if (c.Push.VAPIDPublicKey == "") != (c.Push.VAPIDPrivateKey == "") {
		return fmt.Errorf("push configuration incomplete: %w", errors.Join(ErrMissingConfig,
			fmt.Errorf("%s and %s must be set together", VAPIDPublicKeyEnv, VAPIDPrivateKeyEnv)))
	}

	if c.Dashboard.HistoryLimit <= 0 {
		return fmt.Errorf("invalid %s: must be positive", HistoryLimitEnv)
	}
	if c.Dashboard.FetchTimeout <= 0 {
		return fmt.Errorf("invalid %s: must be positive", FetchTimeoutEnv)
	}

	return nil
}

func getEnvAsBool(name string, defaultValue bool) bool {
	if val, err := strconv.ParseBool(os.Getenv(name)); err == nil {
		return val
	}
	return defaultValue
}

func getEnvAsInt(name string, defaultValue int) int {
	if val, err := strconv.Atoi(os.Getenv(name)); err == nil {
		return val
	}
	return defaultValue
}

func getEnvAsDuration(name string, defaultValue time.Duration) time.Duration {
	if val, err := time.ParseDuration(os.Getenv(name)); err == nil {
		return val
	}
	return defaultValue
}

func getEnv(name, defaultValue string) string {
	if val := os.Getenv(name); val != "" {
		return val
	}
	return defaultValue
}

// ApplyEnvFile loads environment variables from the specified .env files.
func ApplyEnvFile(files ...string) error {
	err := godotenv.Load(files...)
	if err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// LoadFromEnv loads configuration from environment variables and validates it.
func LoadFromEnv() (*Config, error) {
	envPath := os.Getenv(EnvFilePath)
	if envPath == "" {
		envPath = DefaultEnvFilePath
	}
	err := ApplyEnvFile(envPath)
	if err != nil {
		// just log the error, maybe all envs are set in another way
		slog.Info("failed to load from .env", slog.Any("err", err))
	}

	conf := &Config{
		DebugMode: getEnvAsBool(DebugModeEnv, false),
		Database: DB{
			Host:     os.Getenv(DBHostEnv),
			User:     os.Getenv(DBUserEnv),
			Password: os.Getenv(DBPassEnv),
			Name:     os.Getenv(DBNameEnv),
			Port:     os.Getenv(DBPortEnv),
		},
		HTTPServer: Server{
			Port: os.Getenv(HTTPServerPortEnv),
		},
		MetricsServer: Server{
			Port: os.Getenv(MetricsServerPortEnv),
		},
		AWS: AWSConfig{
			Region:      os.Getenv(AWSRegionEnv),
			Endpoint:    os.Getenv(AWSEndpointEnv),
			SQSQueueURL: os.Getenv(SQSQueueURLEnv),
		},
		Redis: RedisConfig{
			Addr:       os.Getenv(RedisAddrEnv),
			Password:   os.Getenv(RedisPasswordEnv),
			DB:         getEnvAsInt(RedisDBEnv, defaultRedisDB),
			SessionTTL: getEnvAsDuration(SessionTTLEnv, defaultSessionTTL),
		},
		Push: PushConfig{
			VAPIDPublicKey:  os.Getenv(VAPIDPublicKeyEnv),
			VAPIDPrivateKey: os.Getenv(VAPIDPrivateKeyEnv),
			Subscriber:      getEnv(VAPIDSubscriberEnv, defaultSubscriber),
		},
		Dashboard: DashboardConfig{
			HistoryLimit: getEnvAsInt(HistoryLimitEnv, defaultHistoryLimit),
			FetchTimeout: getEnvAsDuration(FetchTimeoutEnv, defaultFetchTimeout),
			CacheVersion: getEnv(CacheVersionEnv, defaultCacheVersion),
		},
	}

	if err := conf.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return conf, nil
}

// PushEnabled reports whether a VAPID key pair is configured.
func (c *Config) PushEnabled() bool {
	return c.Push.VAPIDPublicKey != "" && c.Push.VAPIDPrivateKey != ""
}

// RelayEnabled reports whether the SQS price alert relay should run.
func (c *Config) RelayEnabled() bool {
	return c.AWS.SQSQueueURL != ""
}

// LoadQueueFromEnv loads only the AWS settings, for tools that publish to the
// price alert queue without touching the database.
func LoadQueueFromEnv() (*AWSConfig, error) {
	envPath := os.Getenv(EnvFilePath)
	if envPath == "" {
		envPath = DefaultEnvFilePath
	}
	if err := ApplyEnvFile(envPath); err != nil {
		slog.Info("failed to load from .env", slog.Any("err", err))
	}

	conf := &AWSConfig{
		Region:      os.Getenv(AWSRegionEnv),
		Endpoint:    os.Getenv(AWSEndpointEnv),
		SQSQueueURL: os.Getenv(SQSQueueURLEnv),
	}
	if err := allNonEmpty(map[string]string{
		AWSRegionEnv:   conf.Region,
		SQSQueueURLEnv: conf.SQSQueueURL,
	}); err != nil {
		return nil, fmt.Errorf("queue configuration incomplete: %w", err)
	}
	return conf, nil
}
