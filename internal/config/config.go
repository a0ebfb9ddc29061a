package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort string

	DBDriver  string // "sqlite" or "mysql"
	SQLiteDSN string
	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	// Empty RedisAddr disables the idempotency middleware.
	RedisAddr    string
	RedisDB      int
	IdempTTLSecs int

	ChainRPCURL      string
	ChainID          int64
	ChainMockBalance float64

	// Empty EvaluatorURL means the deterministic engine only.
	EvaluatorURL    string
	EvaluatorAPIKey string

	ConfirmDelay  time.Duration
	SessionTTL    time.Duration
	TxStaleAfter  time.Duration
	SweepInterval string // cron spec
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getint(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func getfloat(k string, d float64) float64 {
	if v := os.Getenv(k); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return d
}

func Load() *Config {
	// Optional .env for local runs; missing file is fine.
	_ = godotenv.Load()

	return &Config{
		AppPort: getenv("APP_PORT", "8080"),

		DBDriver:  getenv("DB_DRIVER", "sqlite"),
		SQLiteDSN: getenv("SQLITE_DSN", "file::memory:?cache=shared"),
		MySQLHost: getenv("MYSQL_HOST", "mysql"),
		MySQLPort: getenv("MYSQL_PORT", "3306"),
		MySQLDB:   getenv("MYSQL_DB", "lender"),
		MySQLUser: getenv("MYSQL_USER", "lender"),
		MySQLPass: getenv("MYSQL_PASS", "lender"),

		RedisAddr:    getenv("REDIS_ADDR", ""),
		RedisDB:      getint("REDIS_DB", 0),
		IdempTTLSecs: getint("IDEMPOTENCY_TTL_SECONDS", 300),

		ChainRPCURL:      getenv("CHAIN_RPC_URL", "https://chiliz-spicy-rpc.publicnode.com"),
		ChainID:          int64(getint("CHAIN_ID", 88882)),
		ChainMockBalance: getfloat("CHAIN_MOCK_BALANCE", 1000),

		EvaluatorURL:    getenv("EVALUATOR_URL", ""),
		EvaluatorAPIKey: getenv("EVALUATOR_API_KEY", ""),

		ConfirmDelay:  time.Duration(getint("CONFIRM_DELAY_SECONDS", 5)) * time.Second,
		SessionTTL:    time.Duration(getint("SESSION_TTL_MINUTES", 5)) * time.Minute,
		TxStaleAfter:  time.Duration(getint("TX_STALE_MINUTES", 15)) * time.Minute,
		SweepInterval: getenv("SWEEP_CRON", "@every 1m"),
	}
}

func (c *Config) Validate() error {
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	switch c.DBDriver {
	case "sqlite":
		if c.SQLiteDSN == "" {
			return errors.New("missing SQLITE_DSN")
		}
	case "mysql":
		if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
			return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
		}
		if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
			return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	return nil
}

func (c *Config) DSN() string {
	if c.DBDriver == "sqlite" {
		return c.SQLiteDSN
	}
	// parseTime needed for DATETIME; multiStatements is handy for migrations
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?multiStatements=true&parseTime=true&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, net.JoinHostPort(c.MySQLHost, c.MySQLPort), c.MySQLDB)
}
