package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	AuthCookieSecure bool
	SessionTTL       time.Duration

	// EligibilityPolicy selects which eligibility strategy is active.
	// Valid values: "strict", "facility".
	EligibilityPolicy string

	// Bounded timeouts for data-store calls made by the core services.
	StoreReadTimeout  time.Duration
	StoreWriteTimeout time.Duration

	DBType     string
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	Redis RedisConfig

	LoginRateLimit LoginRateLimitConfig
}

type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

type LoginRateLimitConfig struct {
	Rate  float64
	Burst int
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	environment := getenv("ENVIRONMENT", "development")
	cookieSecure := environment == "production"
	if !cookieSecure {
		cookieSecure = getenvBool("AUTH_COOKIE_SECURE", false)
	}

	return Config{
		AppName:     getenv("APP_SERVICE", "ajomart"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: environment,
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),

		AuthCookieSecure: cookieSecure,
		SessionTTL:       getenvDuration("SESSION_TTL", 12*time.Hour),

		EligibilityPolicy: normalizePolicy(getenv("ELIGIBILITY_POLICY", PolicyStrict)),

		StoreReadTimeout:  getenvDuration("STORE_READ_TIMEOUT", 5*time.Second),
		StoreWriteTimeout: getenvDuration("STORE_WRITE_TIMEOUT", 10*time.Second),

		DBType:     getenv("DATABASE_TYPE", "postgres"),
		DBHost:     getenv("DATABASE_HOST", "localhost"),
		DBPort:     getenv("DATABASE_PORT", "5432"),
		DBName:     getenv("DATABASE_NAME", "ajomart"),
		DBUser:     getenv("DATABASE_USER", "postgres"),
		DBPassword: getenv("DATABASE_PASSWORD", "postgres"),
		DBSSLMode:  getenv("DATABASE_SSLMODE", "disable"),

		Redis: RedisConfig{
			Enabled:  getenvBool("REDIS_ENABLED", false),
			Addr:     strings.TrimSpace(getenv("REDIS_ADDR", "localhost:6379")),
			Password: strings.TrimSpace(getenv("REDIS_PASSWORD", "")),
			DB:       int(getenvInt64("REDIS_DB", 0)),
		},

		LoginRateLimit: LoginRateLimitConfig{
			Rate:  getenvFloat("LOGIN_RATE_LIMIT", 0.5),
			Burst: int(getenvInt64("LOGIN_RATE_BURST", 5)),
		},
	}
}

const (
	PolicyStrict   = "strict"
	PolicyFacility = "facility"
)

// normalizePolicy only canonicalizes the spelling. Unknown names are passed
// through so policy resolution can reject them at startup instead of a typo
// silently selecting the default.
func normalizePolicy(raw string) string {
	name := strings.ToLower(strings.TrimSpace(raw))
	if name == "" {
		return PolicyStrict
	}
	return name
}

// Module wires configuration into the fx graph.
var Module = fx.Module("config",
	fx.Provide(Load),
	fx.Provide(NewPolicyHolder),
)

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt64(key string, def int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}

func getenvDuration(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return parsed
}
