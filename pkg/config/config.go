package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "LINKHAUS"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "LINKHAUS_DB_DSN"
	EnvDBHost = "LINKHAUS_DB_HOST"
	EnvDBUser = "LINKHAUS_DB_USER"
	EnvDBName = "LINKHAUS_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Fees         FeesConfig
	Orders       OrdersConfig
	Cron         CronConfig
	Outbox       OutboxConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Fees.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"LINKHAUS_APP_ENV" required:"true"`
	Port         string `envconfig:"LINKHAUS_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"LINKHAUS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"LINKHAUS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"LINKHAUS_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"LINKHAUS_DB_DSN"`
	Driver string `envconfig:"LINKHAUS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"LINKHAUS_DB_HOST"`
	LegacyPort     int    `envconfig:"LINKHAUS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"LINKHAUS_DB_USER"`
	LegacyPassword string `envconfig:"LINKHAUS_DB_PASSWORD"`
	LegacyName     string `envconfig:"LINKHAUS_DB_NAME"`
	LegacySSLMode  string `envconfig:"LINKHAUS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"LINKHAUS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"LINKHAUS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"LINKHAUS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"LINKHAUS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"LINKHAUS_REDIS_URL" required:"true"`
	Address      string        `envconfig:"LINKHAUS_REDIS_ADDR"`
	Password     string        `envconfig:"LINKHAUS_REDIS_PASSWORD"`
	DB           int           `envconfig:"LINKHAUS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"LINKHAUS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"LINKHAUS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"LINKHAUS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"LINKHAUS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"LINKHAUS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"LINKHAUS_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"LINKHAUS_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"LINKHAUS_JWT_EXPIRATION_MINUTES" required:"true"`
}

// FeesConfig controls the marketplace markup charged on top of publisher pricing.
type FeesConfig struct {
	PlatformFeePercent int `envconfig:"LINKHAUS_PLATFORM_FEE_PERCENT" default:"20"`
}

func (f FeesConfig) validate() error {
	if f.PlatformFeePercent < 0 || f.PlatformFeePercent >= 100 {
		return fmt.Errorf("platform fee percent must be in [0, 100), got %d", f.PlatformFeePercent)
	}
	return nil
}

// OrdersConfig carries the order lifecycle windows and conflict-retry policy.
type OrdersConfig struct {
	ConfirmationWindow      time.Duration `envconfig:"LINKHAUS_ORDER_CONFIRMATION_WINDOW" default:"72h"`
	DisputeProtectionWindow time.Duration `envconfig:"LINKHAUS_ORDER_DISPUTE_PROTECTION_WINDOW" default:"2160h"`
	StaleRetryLimit         int           `envconfig:"LINKHAUS_ORDER_STALE_RETRY_LIMIT" default:"3"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"LINKHAUS_CRON_INTERVAL" default:"5m"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"LINKHAUS_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"LINKHAUS_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"LINKHAUS_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"LINKHAUS_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"LINKHAUS_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"LINKHAUS_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	OrdersTopic              string `envconfig:"LINKHAUS_PUBSUB_ORDERS_TOPIC" default:"lh-order-events"`
	OrdersSubscription       string `envconfig:"LINKHAUS_PUBSUB_ORDERS_SUBSCRIPTION"`
	NotificationTopic        string `envconfig:"LINKHAUS_PUBSUB_NOTIFICATION_TOPIC" default:"lh-notification-events"`
	NotificationSubscription string `envconfig:"LINKHAUS_PUBSUB_NOTIFICATION_SUBSCRIPTION"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"LINKHAUS_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
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
