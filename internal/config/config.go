package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	applog "cafestock/internal/log"
)

type Config struct {
	Port      string
	DBDSN     string
	LogFile   string
	Templates string

	SessionTTL   time.Duration
	BcryptCost   int
	CookieSecure bool

	RateLimitMax      int
	LoginRateLimitMax int

	AdminUsername string
	AdminPassword string
}

func Load() Config {
	// .env is optional; real env vars win over it
	_ = godotenv.Load()

	cfg := Config{
		Port:              env("PORT", "8080"),
		DBDSN:             env("DB_DSN", "cafe_app.db"), // sqlite file in project root
		LogFile:           env("LOG_FILE", "./cafestock.log"),
		Templates:         os.Getenv("TEMPLATES_DIR"),
		SessionTTL:        envDuration("SESSION_TTL", 24*time.Hour),
		BcryptCost:        envInt("BCRYPT_COST", 12),
		CookieSecure:      envBool("COOKIE_SECURE", false),
		RateLimitMax:      envInt("RATE_LIMIT_MAX", 120),
		LoginRateLimitMax: envInt("LOGIN_RATE_LIMIT_MAX", 5),
		AdminUsername:     os.Getenv("ADMIN_USERNAME"),
		AdminPassword:     os.Getenv("ADMIN_PASSWORD"),
	}
	applog.Logger().Info().
		Str("port", cfg.Port).
		Str("db_dsn", cfg.DBDSN).
		Str("log_file", cfg.LogFile).
		Dur("session_ttl", cfg.SessionTTL).
		Bool("admin_bootstrap", cfg.AdminUsername != "").
		Msg("config loaded")
	return cfg
}

// Defaults fills zero fields so partially built configs (tests) behave like Load.
func (c Config) Defaults() Config {
	if c.Port == "" {
		c.Port = "8080"
	}
	if c.SessionTTL <= 0 {
		c.SessionTTL = 24 * time.Hour
	}
	if c.BcryptCost <= 0 {
		c.BcryptCost = 12
	}
	if c.RateLimitMax <= 0 {
		c.RateLimitMax = 120
	}
	if c.LoginRateLimitMax <= 0 {
		c.LoginRateLimitMax = 5
	}
	return c
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func envBool(key string, def bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return def
	}
	return b
}

func envDuration(key string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return def
	}
	return d
}
