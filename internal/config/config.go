package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"regexp"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

var reAccount = regexp.MustCompile(`^[a-f0-9]{32}$`)

type Config struct {
	Env      string
	LogLevel string
	AppPort  string

	DBDriver   string
	SQLitePath string

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	RedisAddr string
	RedisDB   int

	IdempTTLSecs int

	JWTSecret string

	AdminAccount      string
	LiquidatorAccount string
	SweepIntervalSecs int
	SweepBatch        int

	RateLimitPerMinute int
	RateLimitBurst     int
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getint(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Warn().Str("key", k).Str("value", v).Msg("config: not an integer, using default")
		return d
	}
	return n
}

// Load reads the environment, after merging an optional .env file from the
// working directory. Variables already set win over the file.
func Load() *Config {
	if err := godotenv.Load(); err == nil {
		log.Debug().Msg("config: loaded .env")
	}
	return FromEnv()
}

// FromEnv reads the environment only.
func FromEnv() *Config {
	return &Config{
		Env:      getenv("ENV", "development"),
		LogLevel: getenv("LOG_LEVEL", "info"),
		AppPort:  getenv("APP_PORT", "8080"),

		DBDriver:   getenv("DB_DRIVER", "mysql"),
		SQLitePath: getenv("SQLITE_PATH", "lending.db"),

		MySQLHost: getenv("MYSQL_HOST", "mysql"),
		MySQLPort: getenv("MYSQL_PORT", "3306"),
		MySQLDB:   getenv("MYSQL_DB", "lending"),
		MySQLUser: getenv("MYSQL_USER", "lending"),
		MySQLPass: getenv("MYSQL_PASS", "lending"),

		RedisAddr: getenv("REDIS_ADDR", "redis:6379"),
		RedisDB:   getint("REDIS_DB", 0),

		IdempTTLSecs: getint("IDEMPOTENCY_TTL_SECONDS", 300),

		JWTSecret: os.Getenv("JWT_SECRET"),

		AdminAccount:      os.Getenv("ADMIN_ACCOUNT"),
		LiquidatorAccount: os.Getenv("LIQUIDATOR_ACCOUNT"),
		SweepIntervalSecs: getint("SWEEP_INTERVAL_SECONDS", 300),
		SweepBatch:        getint("SWEEP_BATCH", 50),

		RateLimitPerMinute: getint("RATE_LIMIT_PER_MINUTE", 120),
		RateLimitBurst:     getint("RATE_LIMIT_BURST", 20),
	}
}

func (c *Config) IsProduction() bool { return c.Env == "production" }

func (c *Config) Validate() error {
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	switch c.DBDriver {
	case "mysql":
		if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
			return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
		}
		// ensure port is valid
		if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
			return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return errors.New("missing SQLITE_PATH")
		}
	default:
		return fmt.Errorf("invalid DB_DRIVER %q (mysql|sqlite)", c.DBDriver)
	}
	if c.JWTSecret == "" {
		return errors.New("missing JWT_SECRET")
	}
	if !reAccount.MatchString(c.AdminAccount) {
		return fmt.Errorf("ADMIN_ACCOUNT must be 32 lowercase hex chars, got %q", c.AdminAccount)
	}
	if c.LiquidatorAccount != "" && !reAccount.MatchString(c.LiquidatorAccount) {
		return fmt.Errorf("LIQUIDATOR_ACCOUNT must be 32 lowercase hex chars, got %q", c.LiquidatorAccount)
	}
	if c.IdempTTLSecs <= 0 {
		return errors.New("IDEMPOTENCY_TTL_SECONDS must be positive")
	}
	if c.SweepBatch <= 0 {
		return errors.New("SWEEP_BATCH must be positive")
	}
	return nil
}

// DSN returns the connection string for the configured driver.
func (c *Config) DSN() string {
	if c.DBDriver == "sqlite" {
		return c.SQLitePath
	}
	return c.MySQLDSN()
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// multiStatements=true is handy for migrations; parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?multiStatements=true&parseTime=true&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}
