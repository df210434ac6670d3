package config

const (
	EnvPrefix = "STOREFRONT"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv      = "STOREFRONT_APP_ENV"
	EnvPort        = "STOREFRONT_APP_PORT"
	EnvCartBackend = "STOREFRONT_CART_BACKEND"
	EnvRedisURL    = "STOREFRONT_REDIS_URL"
	EnvRedisAddr   = "STOREFRONT_REDIS_ADDR"
	EnvDBDSN       = "STOREFRONT_DB_DSN"
	EnvDBDriver    = "STOREFRONT_DB_DRIVER"
	EnvDBHost      = "STOREFRONT_DB_HOST"
	EnvDBUser      = "STOREFRONT_DB_USER"
	EnvDBName      = "STOREFRONT_DB_NAME"
	EnvShopAPIBase = "STOREFRONT_SHOP_API_BASE_URL"

	CartBackendRedis  = "redis"
	CartBackendSQL    = "sql"
	CartBackendMemory = "memory"
	CartBackendNone   = "none"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	defaultSQLiteDSN = "file:storefront.db?cache=shared"
)

var postgresDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
