package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	Cart         CartConfig
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
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"CAPITL_APP_ENV" required:"true"`
	Port         string `envconfig:"CAPITL_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"CAPITL_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CAPITL_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"CAPITL_DB_DSN"`
	Driver string `envconfig:"CAPITL_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"CAPITL_DB_HOST"`
	LegacyPort     int    `envconfig:"CAPITL_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CAPITL_DB_USER"`
	LegacyPassword string `envconfig:"CAPITL_DB_PASSWORD"`
	LegacyName     string `envconfig:"CAPITL_DB_NAME"`
	LegacySSLMode  string `envconfig:"CAPITL_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CAPITL_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CAPITL_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CAPITL_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CAPITL_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CAPITL_REDIS_URL" required:"true"`
	Address      string        `envconfig:"CAPITL_REDIS_ADDR"`
	Password     string        `envconfig:"CAPITL_REDIS_PASSWORD"`
	DB           int           `envconfig:"CAPITL_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CAPITL_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CAPITL_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CAPITL_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CAPITL_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CAPITL_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"CAPITL_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"CAPITL_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"CAPITL_JWT_EXPIRATION_MINUTES" default:"1440"`
}

// TokenTTL returns the access token lifetime.
func (j JWTConfig) TokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"CAPITL_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"CAPITL_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"CAPITL_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"CAPITL_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"CAPITL_ARGON_KEY_LEN" default:"32"`
}

type CartConfig struct {
	// TTL applied to each shopper's persisted cart hash; zero keeps carts
	// until checkout clears them.
	PersistTTL time.Duration `envconfig:"CAPITL_CART_PERSIST_TTL" default:"720h"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"CAPITL_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"CAPITL_AUTO_MIGRATE" default:"false"`
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
