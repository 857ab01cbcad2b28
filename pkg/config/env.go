package config

// EnvPrefix is empty because every variable carries its full ITS27_ name.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv          = "ITS27_APP_ENV"
	EnvPort            = "ITS27_APP_PORT"
	EnvLogLevel        = "ITS27_LOG_LEVEL"
	EnvDBDSN           = "ITS27_DB_DSN"
	EnvDBHost          = "ITS27_DB_HOST"
	EnvDBPort          = "ITS27_DB_PORT"
	EnvDBUser          = "ITS27_DB_USER"
	EnvDBPassword      = "ITS27_DB_PASSWORD"
	EnvDBName          = "ITS27_DB_NAME"
	EnvRedisURL        = "ITS27_REDIS_URL"
	EnvJWTSecret       = "ITS27_JWT_SECRET"
	EnvJWTIssuer       = "ITS27_JWT_ISSUER"
	EnvJWTExpMins      = "ITS27_JWT_EXPIRATION_MINUTES"
	EnvGCSBucket       = "ITS27_GCS_BUCKET_NAME"
	EnvUseSQLite       = "ITS27_USE_SQLITE"
	EnvCartTTL         = "ITS27_CART_TTL"
	EnvFlatShippingFee = "ITS27_FLAT_SHIPPING_FEE"
	EnvCORSOrigins     = "ITS27_CORS_ALLOWED_ORIGINS"
	EnvCheckoutLockTTL = "ITS27_CHECKOUT_LOCK_TTL"
	EnvEmailJSService  = "ITS27_EMAILJS_SERVICE_ID"
	EnvEmailJSTemplate = "ITS27_EMAILJS_ORDER_TEMPLATE_ID"
	EnvEmailJSKey      = "ITS27_EMAILJS_PUBLIC_KEY"
	EnvEmailJSTimeout  = "ITS27_EMAILJS_TIMEOUT"
	EnvEmailJSRetries  = "ITS27_EMAILJS_RETRIES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
