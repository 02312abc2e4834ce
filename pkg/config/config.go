package config

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"time"

	"gymdesk/pkg/client"
	"gymdesk/pkg/logger"
)

var pinPattern = regexp.MustCompile(`^[0-9]{4}$`)

type Config struct {
	Service string
	Port    string

	RemoteStoreURL      string
	RemoteLoginTimeout  time.Duration
	RemoteDataTimeout   time.Duration
	RemoteActionTimeout time.Duration

	BulkOperationDelay time.Duration
	ActivityLogLimit   int
	MirrorPath         string

	JWTSecret string
	TokenTTL  time.Duration

	MongoURI             string
	MongoDatabaseName    string
	MongoConnTimeout     time.Duration
	ActivityLogRetention int
	KafkaEnabled         bool
	KafkaActionsTopic    string
	KafkaActionsDLQTopic string

	// Seed* create the first master account during migration. Empty ID
	// skips seeding.
	SeedMasterID       string
	SeedMasterName     string
	SeedMasterPassword string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	Log    *logger.Logger
	Client *client.Client
}

// Load reads the environment for serviceName and exits on invalid values.
func Load(serviceName string) *Config {
	cfg, err := New(serviceName)
	if err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

// New is Load without the exit, for callers that report errors themselves.
// The returned Config is non-nil even when validation fails so its logger
// can be used.
func New(serviceName string) (*Config, error) {
	cfg := &Config{
		Service: serviceName,
		Port:    getEnvStr(EnvPort, DefaultPort),

		RemoteStoreURL:      getEnvStr(EnvRemoteStoreURL, DefaultRemoteStoreURL),
		RemoteLoginTimeout:  getEnvDuration(EnvRemoteLoginTimeout, DefaultRemoteLoginTimeout),
		RemoteDataTimeout:   getEnvDuration(EnvRemoteDataTimeout, DefaultRemoteDataTimeout),
		RemoteActionTimeout: getEnvDuration(EnvRemoteActionTimeout, DefaultRemoteActionTimeout),

		BulkOperationDelay: getEnvDuration(EnvBulkOperationDelay, DefaultBulkOperationDelay),
		ActivityLogLimit:   getEnvNum(EnvActivityLogLimit, DefaultActivityLogLimit),
		MirrorPath:         getEnvStr(EnvMirrorPath, DefaultMirrorPath),

		JWTSecret: getEnvStr(EnvJWTSecret, ""),
		TokenTTL:  getEnvDuration(EnvTokenTTL, DefaultTokenTTL),

		MongoURI:             getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName:    getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:     getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),
		ActivityLogRetention: getEnvNum(EnvActivityLogRetention, DefaultActivityLogRetention),
		KafkaEnabled:         getEnvBool(EnvKafkaEnabled, DefaultKafkaEnabled),
		KafkaActionsTopic:    getEnvStr(EnvKafkaActionsTopic, DefaultKafkaActionsTopic),
		KafkaActionsDLQTopic: getEnvStr(EnvKafkaActionsDLQTopic, DefaultKafkaActionsDLQTopic),

		SeedMasterID:       getEnvStr(EnvSeedMasterID, ""),
		SeedMasterName:     getEnvStr(EnvSeedMasterName, DefaultSeedMasterName),
		SeedMasterPassword: getEnvStr(EnvSeedMasterPassword, ""),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    logger.JSON,
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}

	return cfg, cfg.Validate()
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

func (cfg *Config) usesMongo() bool {
	return cfg.Service == ServiceSheetStore || cfg.Service == JobMigrate
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.Service == ServiceCore || cfg.Service == ToolCLI {
		if u, err := url.Parse(cfg.RemoteStoreURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errors = append(errors, fmt.Sprintf("RemoteStoreURL must be an absolute http(s) URL, got: %s", cfg.RemoteStoreURL))
		}
	}
	if cfg.Service == ServiceCore {
		if len(cfg.JWTSecret) < 16 {
			errors = append(errors, "JWTSecret must be at least 16 characters")
		}
		if cfg.TokenTTL <= 0 {
			errors = append(errors, fmt.Sprintf("TokenTTL must be positive, got: %s", cfg.TokenTTL))
		}
	}

	if cfg.RemoteLoginTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("RemoteLoginTimeout must be positive, got: %s", cfg.RemoteLoginTimeout))
	}
	if cfg.RemoteDataTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("RemoteDataTimeout must be positive, got: %s", cfg.RemoteDataTimeout))
	}
	if cfg.RemoteActionTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("RemoteActionTimeout must be positive, got: %s", cfg.RemoteActionTimeout))
	}
	if cfg.BulkOperationDelay < 0 {
		errors = append(errors, fmt.Sprintf("BulkOperationDelay cannot be negative, got: %s", cfg.BulkOperationDelay))
	}
	if cfg.ActivityLogLimit <= 0 {
		errors = append(errors, fmt.Sprintf("ActivityLogLimit must be positive, got: %d", cfg.ActivityLogLimit))
	}

	if cfg.usesMongo() {
		if cfg.MongoURI == "" {
			errors = append(errors, "MongoURI cannot be empty")
		} else if len(cfg.MongoURI) < 10 || !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
			errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactMongoURI(cfg.MongoURI)))
		}
		if cfg.MongoDatabaseName == "" {
			errors = append(errors, "MongoDatabaseName cannot be empty")
		}
		if cfg.MongoConnTimeout <= 0 {
			errors = append(errors, fmt.Sprintf("MongoConnTimeout must be positive, got: %s", cfg.MongoConnTimeout))
		}
		if cfg.ActivityLogRetention < cfg.ActivityLogLimit {
			errors = append(errors, fmt.Sprintf("ActivityLogRetention (%d) must be >= ActivityLogLimit (%d)", cfg.ActivityLogRetention, cfg.ActivityLogLimit))
		}
		if cfg.Service == JobMigrate && cfg.SeedMasterID != "" && !pinPattern.MatchString(cfg.SeedMasterPassword) {
			errors = append(errors, "SeedMasterPassword must be exactly 4 digits when SeedMasterID is set")
		}
		if cfg.KafkaEnabled && cfg.KafkaActionsTopic == "" {
			errors = append(errors, "KafkaActionsTopic cannot be empty when Kafka is enabled")
		}
	}

	if cfg.RateLimitWindow <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitWindow must be positive, got: %s", cfg.RateLimitWindow))
	}
	if cfg.RateLimitRequests <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.RequestTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("RequestTimeout must be positive, got: %s", cfg.RequestTimeout))
	}
	if cfg.IdempotencyTTL <= 0 {
		errors = append(errors, fmt.Sprintf("IdempotencyTTL must be positive, got: %s", cfg.IdempotencyTTL))
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}
	if cfg.ReadTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ReadTimeout must be positive, got: %s", cfg.ReadTimeout))
	}
	if cfg.WriteTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("WriteTimeout must be positive, got: %s", cfg.WriteTimeout))
	}
	if cfg.IdleTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("IdleTimeout must be positive, got: %s", cfg.IdleTimeout))
	}
	if cfg.ShutdownTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ShutdownTimeout must be positive, got: %s", cfg.ShutdownTimeout))
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"service", cfg.Service,
		"port", cfg.Port,
		"remote_store_url", cfg.RemoteStoreURL,
		"remote_login_timeout", cfg.RemoteLoginTimeout,
		"remote_data_timeout", cfg.RemoteDataTimeout,
		"remote_action_timeout", cfg.RemoteActionTimeout,
		"bulk_operation_delay", cfg.BulkOperationDelay,
		"activity_log_limit", cfg.ActivityLogLimit,
		"mirror_path", cfg.MirrorPath,
		"jwt_secret_set", cfg.JWTSecret != "",
		"token_ttl", cfg.TokenTTL,
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"activity_log_retention", cfg.ActivityLogRetention,
		"kafka_enabled", cfg.KafkaEnabled,
		"kafka_actions_topic", cfg.KafkaActionsTopic,
		"seed_master_id", cfg.SeedMasterID,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
	)
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown(cfg.Log)
}
