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
	CORS          CORSConfig
	FeatureFlags  FeatureFlagsConfig
	Catalog       CatalogConfig
	Checkout      CheckoutConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	if err := cfg.FeatureFlags.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"VENDORVERSE_APP_ENV" required:"true"`
	Port         string `envconfig:"VENDORVERSE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"VENDORVERSE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"VENDORVERSE_LOG_WARN_STACK" default:"false"`
	LogFormat    string `envconfig:"VENDORVERSE_LOG_FORMAT" default:"json"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"VENDORVERSE_DB_DSN"`
	Driver string `envconfig:"VENDORVERSE_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"VENDORVERSE_DB_HOST"`
	Port     int    `envconfig:"VENDORVERSE_DB_PORT" default:"5432"`
	User     string `envconfig:"VENDORVERSE_DB_USER"`
	Password string `envconfig:"VENDORVERSE_DB_PASSWORD"`
	Name     string `envconfig:"VENDORVERSE_DB_NAME"`
	SSLMode  string `envconfig:"VENDORVERSE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"VENDORVERSE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"VENDORVERSE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"VENDORVERSE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"VENDORVERSE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	SlowQuery       time.Duration `envconfig:"VENDORVERSE_DB_SLOW_QUERY" default:"200ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"VENDORVERSE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"VENDORVERSE_REDIS_ADDR"`
	Password     string        `envconfig:"VENDORVERSE_REDIS_PASSWORD"`
	DB           int           `envconfig:"VENDORVERSE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"VENDORVERSE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"VENDORVERSE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"VENDORVERSE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"VENDORVERSE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"VENDORVERSE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"VENDORVERSE_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"VENDORVERSE_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"VENDORVERSE_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"VENDORVERSE_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"VENDORVERSE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"VENDORVERSE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"VENDORVERSE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"VENDORVERSE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"VENDORVERSE_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	SignInWindow     time.Duration `envconfig:"VENDORVERSE_AUTH_RATE_LIMIT_SIGNIN_WINDOW" default:"1m"`
	SignInEmailLimit int           `envconfig:"VENDORVERSE_AUTH_RATE_LIMIT_SIGNIN_EMAIL_LIMIT" default:"5"`
	SignInIPLimit    int           `envconfig:"VENDORVERSE_AUTH_RATE_LIMIT_SIGNIN_IP_LIMIT" default:"20"`
	SignUpWindow     time.Duration `envconfig:"VENDORVERSE_AUTH_RATE_LIMIT_SIGNUP_WINDOW" default:"5m"`
	SignUpEmailLimit int           `envconfig:"VENDORVERSE_AUTH_RATE_LIMIT_SIGNUP_EMAIL_LIMIT" default:"3"`
	SignUpIPLimit    int           `envconfig:"VENDORVERSE_AUTH_RATE_LIMIT_SIGNUP_IP_LIMIT" default:"20"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"VENDORVERSE_CORS_ALLOWED_ORIGINS" default:"*"`
}

type FeatureFlagsConfig struct {
	UseSQLite           bool   `envconfig:"VENDORVERSE_USE_SQLITE" default:"false"`
	AutoMigrate         bool   `envconfig:"VENDORVERSE_AUTO_MIGRATE" default:"false"`
	ChangeFeed          string `envconfig:"VENDORVERSE_CHANGEFEED" default:"redis"`
	CartMergeDuplicates bool   `envconfig:"VENDORVERSE_FEATURE_CART_MERGE_DUPLICATES" default:"false"`
}

func (f FeatureFlagsConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(f.ChangeFeed)) {
	case ChangeFeedRedis, ChangeFeedMemory:
		return nil
	default:
		return fmt.Errorf("%s must be one of %q or %q", EnvChangeFeed, ChangeFeedRedis, ChangeFeedMemory)
	}
}

// UseMemoryChangeFeed reports whether product change notifications stay in process.
func (f FeatureFlagsConfig) UseMemoryChangeFeed() bool {
	return strings.EqualFold(strings.TrimSpace(f.ChangeFeed), ChangeFeedMemory)
}

type CatalogConfig struct {
	SearchDebounce      time.Duration `envconfig:"VENDORVERSE_CATALOG_SEARCH_DEBOUNCE" default:"300ms"`
	SyncRetryInitial    time.Duration `envconfig:"VENDORVERSE_CATALOG_SYNC_RETRY_INITIAL" default:"500ms"`
	SyncRetryMax        time.Duration `envconfig:"VENDORVERSE_CATALOG_SYNC_RETRY_MAX" default:"30s"`
	SyncRetryMultiplier float64       `envconfig:"VENDORVERSE_CATALOG_SYNC_RETRY_MULTIPLIER" default:"2"`
	StreamKeepAlive     time.Duration `envconfig:"VENDORVERSE_CATALOG_STREAM_KEEPALIVE" default:"25s"`
}

type CheckoutConfig struct {
	ClearCartOnConfirm bool `envconfig:"VENDORVERSE_CHECKOUT_CLEAR_CART_ON_CONFIRM" default:"true"`
}

func (db *DBConfig) ensureDSN(sqlite bool) error {
	if sqlite {
		db.Driver = DBDriverSQLite
	}
	if db.DSN != "" {
		return nil
	}
	if sqlite {
		db.DSN = DefaultSQLiteDSN
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range discreteDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
