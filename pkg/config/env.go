package config

const (
	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRemoteStoreURL      = "REMOTE_STORE_URL"
	EnvRemoteLoginTimeout  = "REMOTE_LOGIN_TIMEOUT"
	EnvRemoteDataTimeout   = "REMOTE_DATA_TIMEOUT"
	EnvRemoteActionTimeout = "REMOTE_ACTION_TIMEOUT"

	EnvBulkOperationDelay = "BULK_OPERATION_DELAY"
	EnvActivityLogLimit   = "ACTIVITY_LOG_LIMIT"
	EnvMirrorPath         = "MIRROR_PATH"

	EnvJWTSecret = "JWT_SECRET"
	EnvTokenTTL  = "TOKEN_TTL"

	EnvMongoURI             = "MONGO_URI"
	EnvMongoDatabaseName    = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout     = "MONGO_CONN_TIMEOUT"
	EnvActivityLogRetention = "ACTIVITY_LOG_RETENTION"
	EnvKafkaEnabled         = "KAFKA_ENABLED"
	EnvKafkaActionsTopic    = "KAFKA_ACTIONS_TOPIC"
	EnvKafkaActionsDLQTopic = "KAFKA_ACTIONS_DLQ_TOPIC"

	EnvSeedMasterID       = "SEED_MASTER_ID"
	EnvSeedMasterName     = "SEED_MASTER_NAME"
	EnvSeedMasterPassword = "SEED_MASTER_PASSWORD"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"
)
