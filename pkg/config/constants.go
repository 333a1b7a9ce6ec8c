package config

const (
	EnvPrefix = "VENDORVERSE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	ChangeFeedRedis  = "redis"
	ChangeFeedMemory = "memory"

	DefaultSQLiteDSN = "file:vendorverse.db?cache=shared&_foreign_keys=on"
)

const (
	EnvAppEnv                 = "VENDORVERSE_APP_ENV"
	EnvPort                   = "VENDORVERSE_APP_PORT"
	EnvDBDSN                  = "VENDORVERSE_DB_DSN"
	EnvDBHost                 = "VENDORVERSE_DB_HOST"
	EnvDBUser                 = "VENDORVERSE_DB_USER"
	EnvDBName                 = "VENDORVERSE_DB_NAME"
	EnvRedisURL               = "VENDORVERSE_REDIS_URL"
	EnvJWTSecret              = "VENDORVERSE_JWT_SECRET"
	EnvJWTIssuer              = "VENDORVERSE_JWT_ISSUER"
	EnvJWTExpMins             = "VENDORVERSE_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "VENDORVERSE_REFRESH_TOKEN_TTL_MINUTES"
	EnvUseSQLite              = "VENDORVERSE_USE_SQLITE"
	EnvChangeFeed             = "VENDORVERSE_CHANGEFEED"
	EnvCartMergeDuplicates    = "VENDORVERSE_FEATURE_CART_MERGE_DUPLICATES"
	EnvSearchDebounce         = "VENDORVERSE_CATALOG_SEARCH_DEBOUNCE"
	EnvClearCartOnConfirm     = "VENDORVERSE_CHECKOUT_CLEAR_CART_ON_CONFIRM"
)

var discreteDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
