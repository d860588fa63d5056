// Where: internal/constants/env.go
// What: Environment variable naming constants.
// Why: Centralize environment variable names to avoid typos and inconsistencies.
package constants

const (
	// Seed Configuration
	EnvSeedboxEnv         = "SEEDBOX_ENV"
	EnvSeedboxContentRoot = "SEEDBOX_CONTENT_ROOT"
	EnvSeedboxImportedBy  = "SEEDBOX_IMPORTED_BY"
	EnvSeedboxSeedCount   = "SEEDBOX_SEED_COUNT"

	// Logging Configuration
	EnvSeedboxLogLevel  = "SEEDBOX_LOG_LEVEL"
	EnvSeedboxLogFormat = "SEEDBOX_LOG_FORMAT"

	// Port Configuration (emulator override, 0 = discover via Docker)
	EnvPortDatabase = "SEEDBOX_PORT_DATABASE"
	EnvPortStorage  = "SEEDBOX_PORT_STORAGE"
	EnvPortQueue    = "SEEDBOX_PORT_QUEUE"

	// Readiness Configuration
	EnvWaitTimeout = "SEEDBOX_WAIT_TIMEOUT"

	// Docker Compose project used for published-port discovery
	EnvComposeProject = "SEEDBOX_COMPOSE_PROJECT"

	// AWS Configuration
	EnvAWSRegion = "AWS_REGION"

	// Emulator Credentials
	EnvDatabaseAccessKey = "SEEDBOX_DATABASE_ACCESS_KEY"
	EnvDatabaseSecretKey = "SEEDBOX_DATABASE_SECRET_KEY"
	EnvStorageAccessKey  = "SEEDBOX_STORAGE_ACCESS_KEY"
	EnvStorageSecretKey  = "SEEDBOX_STORAGE_SECRET_KEY"
)
