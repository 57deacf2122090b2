package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "TABLEMATE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "TABLEMATE_DB_DSN"
	EnvDBHost = "TABLEMATE_DB_HOST"
	EnvDBUser = "TABLEMATE_DB_USER"
	EnvDBName = "TABLEMATE_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	OTP           OTPConfig
	SMTP          SMTPConfig
	Cloudinary    CloudinaryConfig
	AuthRateLimit AuthRateLimitConfig
	Cron          CronConfig
	FeatureFlags  FeatureFlagsConfig
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
	Env          string `envconfig:"TABLEMATE_APP_ENV" required:"true"`
	Port         string `envconfig:"TABLEMATE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"TABLEMATE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TABLEMATE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"TABLEMATE_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"TABLEMATE_DB_DSN"`
	Driver string `envconfig:"TABLEMATE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"TABLEMATE_DB_HOST"`
	LegacyPort     int    `envconfig:"TABLEMATE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"TABLEMATE_DB_USER"`
	LegacyPassword string `envconfig:"TABLEMATE_DB_PASSWORD"`
	LegacyName     string `envconfig:"TABLEMATE_DB_NAME"`
	LegacySSLMode  string `envconfig:"TABLEMATE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"TABLEMATE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"TABLEMATE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"TABLEMATE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TABLEMATE_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	// TxTimeout bounds every multi-statement transaction.
	TxTimeout time.Duration `envconfig:"TABLEMATE_DB_TX_TIMEOUT" default:"10s"`
}

type RedisConfig struct {
	URL          string        `envconfig:"TABLEMATE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"TABLEMATE_REDIS_ADDR"`
	Password     string        `envconfig:"TABLEMATE_REDIS_PASSWORD"`
	DB           int           `envconfig:"TABLEMATE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TABLEMATE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TABLEMATE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TABLEMATE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TABLEMATE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TABLEMATE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"TABLEMATE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"TABLEMATE_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"TABLEMATE_JWT_EXPIRATION_MINUTES" required:"true"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"TABLEMATE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"TABLEMATE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"TABLEMATE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"TABLEMATE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"TABLEMATE_ARGON_KEY_LEN" default:"32"`
}

// OTPConfig keeps the two code flavors independently tunable. The signup and
// reset flows are intentionally asymmetric (6-char narrow alphabet vs 8-char
// wide alphabet) and must stay configurable per purpose.
type OTPConfig struct {
	SignupLength int           `envconfig:"TABLEMATE_OTP_SIGNUP_LENGTH" default:"6"`
	SignupTTL    time.Duration `envconfig:"TABLEMATE_OTP_SIGNUP_TTL" default:"10m"`
	ResetLength  int           `envconfig:"TABLEMATE_OTP_RESET_LENGTH" default:"8"`
	ResetTTL     time.Duration `envconfig:"TABLEMATE_OTP_RESET_TTL" default:"10m"`
}

type SMTPConfig struct {
	Host      string `envconfig:"TABLEMATE_SMTP_HOST"`
	Port      int    `envconfig:"TABLEMATE_SMTP_PORT" default:"587"`
	User      string `envconfig:"TABLEMATE_SMTP_USER"`
	Password  string `envconfig:"TABLEMATE_SMTP_PASSWORD"`
	FromEmail string `envconfig:"TABLEMATE_SMTP_FROM_EMAIL"`
}

type CloudinaryConfig struct {
	CloudName string `envconfig:"TABLEMATE_CLOUDINARY_CLOUD_NAME"`
	APIKey    string `envconfig:"TABLEMATE_CLOUDINARY_API_KEY"`
	APISecret string `envconfig:"TABLEMATE_CLOUDINARY_API_SECRET"`
	Folder    string `envconfig:"TABLEMATE_CLOUDINARY_FOLDER" default:"tablemate"`
}

type AuthRateLimitConfig struct {
	LoginWindow      time.Duration `envconfig:"TABLEMATE_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit  int           `envconfig:"TABLEMATE_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit     int           `envconfig:"TABLEMATE_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	SignupWindow     time.Duration `envconfig:"TABLEMATE_AUTH_RATE_LIMIT_SIGNUP_WINDOW" default:"5m"`
	SignupEmailLimit int           `envconfig:"TABLEMATE_AUTH_RATE_LIMIT_SIGNUP_EMAIL_LIMIT" default:"3"`
	SignupIPLimit    int           `envconfig:"TABLEMATE_AUTH_RATE_LIMIT_SIGNUP_IP_LIMIT" default:"20"`
}

type CronConfig struct {
	Interval         time.Duration `envconfig:"TABLEMATE_CRON_INTERVAL" default:"24h"`
	ChallengeMaxAge  time.Duration `envconfig:"TABLEMATE_CRON_CHALLENGE_MAX_AGE" default:"24h"`
	MetricsAddr      string        `envconfig:"TABLEMATE_CRON_METRICS_ADDR" default:":9091"`
	LockTTLOverride  time.Duration `envconfig:"TABLEMATE_CRON_LOCK_TTL"`
	DisableSweepJobs bool          `envconfig:"TABLEMATE_CRON_DISABLE_SWEEPS" default:"false"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"TABLEMATE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"TABLEMATE_AUTO_MIGRATE" default:"false"`
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
