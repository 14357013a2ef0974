package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "LABSTOCK"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "LABSTOCK_DB_DSN"
	EnvDBHost = "LABSTOCK_DB_HOST"
	EnvDBUser = "LABSTOCK_DB_USER"
	EnvDBName = "LABSTOCK_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App       AppConfig
	Service   ServiceConfig
	DB        DBConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Password  PasswordConfig
	SMTP      SMTPConfig
	OpenAI    OpenAIConfig
	Scheduler SchedulerConfig
	Alerts    AlertsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"LABSTOCK_APP_ENV" required:"true"`
	Port         string `envconfig:"LABSTOCK_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"LABSTOCK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"LABSTOCK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"LABSTOCK_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"LABSTOCK_DB_DSN"`
	Driver string `envconfig:"LABSTOCK_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"LABSTOCK_DB_HOST"`
	LegacyPort     int    `envconfig:"LABSTOCK_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"LABSTOCK_DB_USER"`
	LegacyPassword string `envconfig:"LABSTOCK_DB_PASSWORD"`
	LegacyName     string `envconfig:"LABSTOCK_DB_NAME"`
	LegacySSLMode  string `envconfig:"LABSTOCK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"LABSTOCK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"LABSTOCK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"LABSTOCK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"LABSTOCK_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	AutoMigrate bool `envconfig:"LABSTOCK_DB_AUTO_MIGRATE" default:"false"`
}

type RedisConfig struct {
	URL          string        `envconfig:"LABSTOCK_REDIS_URL" required:"true"`
	PoolSize     int           `envconfig:"LABSTOCK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"LABSTOCK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"LABSTOCK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"LABSTOCK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"LABSTOCK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"LABSTOCK_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"LABSTOCK_JWT_ISSUER" default:"labstock"`
	ExpirationMinutes int    `envconfig:"LABSTOCK_JWT_EXPIRATION_MINUTES" default:"480"`
}

// AccessTokenTTL returns the configured access token lifetime.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"LABSTOCK_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"LABSTOCK_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"LABSTOCK_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"LABSTOCK_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"LABSTOCK_ARGON_KEY_LEN" default:"32"`
}

// SMTPConfig drives alert email dispatch. Dispatch is a no-op when Host is
// empty.
type SMTPConfig struct {
	Host     string `envconfig:"LABSTOCK_SMTP_HOST"`
	Port     int    `envconfig:"LABSTOCK_SMTP_PORT" default:"587"`
	Username string `envconfig:"LABSTOCK_SMTP_USERNAME"`
	Password string `envconfig:"LABSTOCK_SMTP_PASSWORD"`
	From     string `envconfig:"LABSTOCK_SMTP_FROM" default:"Lab Inventory <inventory@localhost>"`
}

// Enabled reports whether email dispatch is configured.
func (s SMTPConfig) Enabled() bool {
	return strings.TrimSpace(s.Host) != ""
}

type OpenAIConfig struct {
	APIKey string `envconfig:"LABSTOCK_OPENAI_API_KEY"`
	Model  string `envconfig:"LABSTOCK_OPENAI_MODEL" default:"gpt-4o-mini"`
}

// SchedulerConfig sets the cadence of the four background jobs.
type SchedulerConfig struct {
	LowStockInterval     time.Duration `envconfig:"LABSTOCK_SCHED_LOW_STOCK_INTERVAL" default:"4h"`
	OldStockInterval     time.Duration `envconfig:"LABSTOCK_SCHED_OLD_STOCK_INTERVAL" default:"24h"`
	CleanupInterval      time.Duration `envconfig:"LABSTOCK_SCHED_CLEANUP_INTERVAL" default:"24h"`
	DailySummaryInterval time.Duration `envconfig:"LABSTOCK_SCHED_DAILY_SUMMARY_INTERVAL" default:"24h"`
}

// AlertsConfig tunes alert derivation and notification retention.
type AlertsConfig struct {
	OldStockMonths        int           `envconfig:"LABSTOCK_ALERTS_OLD_STOCK_MONTHS" default:"3"`
	LowStockDedupWindow   time.Duration `envconfig:"LABSTOCK_ALERTS_LOW_STOCK_DEDUP" default:"24h"`
	OldStockDedupWindow   time.Duration `envconfig:"LABSTOCK_ALERTS_OLD_STOCK_DEDUP" default:"168h"`
	NotificationRetention int           `envconfig:"LABSTOCK_ALERTS_RETENTION_DAYS" default:"30"`
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
