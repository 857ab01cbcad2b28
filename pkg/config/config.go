package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	CORS          CORSConfig
	GCP           GCPConfig
	GCS           GCSConfig
	Media         MediaConfig
	PubSub        PubSubConfig
	EmailJS       EmailJSConfig
	Store         StoreConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	if err := cfg.checkCheckoutLock(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"ITS27_APP_ENV" required:"true"`
	Port         string `envconfig:"ITS27_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"ITS27_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ITS27_LOG_WARN_STACK" default:"false"`
	LogFormat    string `envconfig:"ITS27_LOG_FORMAT" default:"json"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"ITS27_DB_DSN"`
	Driver string `envconfig:"ITS27_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"ITS27_DB_HOST"`
	LegacyPort     int    `envconfig:"ITS27_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ITS27_DB_USER"`
	LegacyPassword string `envconfig:"ITS27_DB_PASSWORD"`
	LegacyName     string `envconfig:"ITS27_DB_NAME"`
	LegacySSLMode  string `envconfig:"ITS27_DB_SSLMODE" default:"disable"`

	SQLitePath string `envconfig:"ITS27_SQLITE_PATH" default:"its27.db"`

	MaxOpenConns    int           `envconfig:"ITS27_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ITS27_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ITS27_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ITS27_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	SlowQuery       time.Duration `envconfig:"ITS27_DB_SLOW_QUERY" default:"200ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ITS27_REDIS_URL" required:"true"`
	Address      string        `envconfig:"ITS27_REDIS_ADDR"`
	Password     string        `envconfig:"ITS27_REDIS_PASSWORD"`
	DB           int           `envconfig:"ITS27_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ITS27_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ITS27_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ITS27_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ITS27_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ITS27_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"ITS27_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"ITS27_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"ITS27_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"ITS27_REFRESH_TOKEN_TTL_MINUTES" default:"10080"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"ITS27_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"ITS27_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"ITS27_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"ITS27_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"ITS27_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"ITS27_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit int           `envconfig:"ITS27_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"ITS27_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	ContactWindow   time.Duration `envconfig:"ITS27_RATE_LIMIT_CONTACT_WINDOW" default:"10m"`
	ContactIPLimit  int           `envconfig:"ITS27_RATE_LIMIT_CONTACT_IP_LIMIT" default:"5"`
}

type FeatureFlagsConfig struct {
	UseSQLite       bool `envconfig:"ITS27_USE_SQLITE" default:"false"`
	AutoMigrate     bool `envconfig:"ITS27_AUTO_MIGRATE" default:"false"`
	RealtimePubSub  bool `envconfig:"ITS27_REALTIME_PUBSUB" default:"false"`
	OrderEmails     bool `envconfig:"ITS27_ORDER_EMAILS" default:"true"`
	AllowAdminSetup bool `envconfig:"ITS27_ALLOW_ADMIN_SETUP" default:"false"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"ITS27_CORS_ALLOWED_ORIGINS" default:"http://localhost:5173"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"ITS27_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"ITS27_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"ITS27_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName    string `envconfig:"ITS27_GCS_BUCKET_NAME" required:"true"`
	PublicBaseURL string `envconfig:"ITS27_GCS_PUBLIC_BASE_URL" default:"https://storage.googleapis.com"`
	ProductPrefix string `envconfig:"ITS27_GCS_PRODUCT_PREFIX" default:"products"`
	BrandPrefix   string `envconfig:"ITS27_GCS_BRAND_PREFIX" default:"brand"`
}

type MediaConfig struct {
	MaxUploadMB   int `envconfig:"ITS27_MAX_UPLOAD_MB" default:"10"`
	MaxBatchFiles int `envconfig:"ITS27_MAX_BATCH_FILES" default:"10"`
}

// MaxUploadBytes returns the per-file upload ceiling.
func (m MediaConfig) MaxUploadBytes() int64 {
	if m.MaxUploadMB <= 0 {
		return 0
	}
	return int64(m.MaxUploadMB) << 20
}

type PubSubConfig struct {
	SettingsTopic string `envconfig:"ITS27_PUBSUB_SETTINGS_TOPIC" default:"its27-site-settings"`
	// SettingsSubscription is a prefix; each API instance appends its name.
	SettingsSubscription string        `envconfig:"ITS27_PUBSUB_SETTINGS_SUBSCRIPTION" default:"its27-site-settings-api"`
	SubscriptionTTL      time.Duration `envconfig:"ITS27_PUBSUB_SUBSCRIPTION_TTL" default:"24h"`
}

type EmailJSConfig struct {
	BaseURL    string        `envconfig:"ITS27_EMAILJS_BASE_URL" default:"https://api.emailjs.com"`
	ServiceID  string        `envconfig:"ITS27_EMAILJS_SERVICE_ID"`
	TemplateID string        `envconfig:"ITS27_EMAILJS_ORDER_TEMPLATE_ID"`
	PublicKey  string        `envconfig:"ITS27_EMAILJS_PUBLIC_KEY"`
	PrivateKey string        `envconfig:"ITS27_EMAILJS_PRIVATE_KEY"`
	Timeout    time.Duration `envconfig:"ITS27_EMAILJS_TIMEOUT" default:"10s"`
	Retries    uint64        `envconfig:"ITS27_EMAILJS_RETRIES" default:"2"`
}

const (
	DefaultEmailJSTimeout = 10 * time.Second
	// EmailJSBaseBackoff is the first retry delay; later ones double.
	EmailJSBaseBackoff = 250 * time.Millisecond
	maxEmailJSRetries  = 8
)

// SendBudget is the longest a single send can take when every attempt runs
// into the timeout.
func (e EmailJSConfig) SendBudget() time.Duration {
	timeout := e.Timeout
	if timeout <= 0 {
		timeout = DefaultEmailJSTimeout
	}
	retries := min(e.Retries, maxEmailJSRetries)
	backoff := EmailJSBaseBackoff * time.Duration((uint64(1)<<retries)-1)
	return timeout*time.Duration(retries+1) + backoff
}

// Enabled reports whether enough credentials are present to send mail.
func (e EmailJSConfig) Enabled() bool {
	return e.ServiceID != "" && e.TemplateID != "" && e.PublicKey != ""
}

type StoreConfig struct {
	OrderCodePrefix       string        `envconfig:"ITS27_ORDER_CODE_PREFIX" default:"ITS"`
	FlatShippingFee       int64         `envconfig:"ITS27_FLAT_SHIPPING_FEE" default:"2000"`
	FreeShippingThreshold int           `envconfig:"ITS27_FREE_SHIPPING_THRESHOLD" default:"5"`
	SinpePhone            string        `envconfig:"ITS27_SINPE_PHONE" default:"6221-4479"`
	WhatsAppPhone         string        `envconfig:"ITS27_WHATSAPP_PHONE" default:"+506 8674 2604"`
	ContactEmail          string        `envconfig:"ITS27_CONTACT_EMAIL" default:"info@its27jewelry.com"`
	CartTTL               time.Duration `envconfig:"ITS27_CART_TTL" default:"720h"`
	CheckoutLockTTL       time.Duration `envconfig:"ITS27_CHECKOUT_LOCK_TTL" default:"60s"`
}

// checkCheckoutLock keeps the per-cart checkout lock alive for the whole
// order email send that runs under it.
func (c *Config) checkCheckoutLock() error {
	if c.EmailJS.Retries > maxEmailJSRetries {
		return fmt.Errorf("%s must be at most %d", EnvEmailJSRetries, maxEmailJSRetries)
	}
	if c.Store.CheckoutLockTTL <= 0 {
		return fmt.Errorf("%s must be positive", EnvCheckoutLockTTL)
	}
	if !c.FeatureFlags.OrderEmails || !c.EmailJS.Enabled() {
		return nil
	}
	if budget := c.EmailJS.SendBudget(); c.Store.CheckoutLockTTL <= budget {
		return fmt.Errorf("%s (%s) must exceed the worst-case order email send (%s)", EnvCheckoutLockTTL, c.Store.CheckoutLockTTL, budget)
	}
	return nil
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if db.DSN != "" || useSQLite {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
