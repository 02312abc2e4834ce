package config

import "time"

const (
	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRemoteStoreURL      = "http://localhost:8090/exec"
	DefaultRemoteLoginTimeout  = 8 * time.Second
	DefaultRemoteDataTimeout   = 10 * time.Second
	DefaultRemoteActionTimeout = 10 * time.Second

	DefaultBulkOperationDelay = 300 * time.Millisecond
	DefaultActivityLogLimit   = 20
	DefaultMirrorPath         = "./data/mirror"

	DefaultTokenTTL = 12 * time.Hour

	DefaultMongoURI             = "mongodb://localhost:27017"
	DefaultMongoDatabaseName    = "gymdesk"
	DefaultMongoConnTimeout     = 10 * time.Second
	DefaultActivityLogRetention = 500
	DefaultKafkaEnabled         = false
	DefaultKafkaActionsTopic    = "gymdesk.sheet.actions"
	DefaultKafkaActionsDLQTopic = "gymdesk.sheet.actions.dlq"

	DefaultSeedMasterName = "관리자"

	DefaultRateLimitRequests = 120
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
)

const (
	ServiceCore       = "gymdesk"
	ServiceSheetStore = "sheetstore"
	JobMigrate        = "mongo-migration"
	// ToolCLI is the one-shot gymdesk subcommands: they reach the remote
	// store but issue no tokens.
	ToolCLI = "gymdesk-cli"
)
