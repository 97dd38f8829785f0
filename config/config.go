package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	HTTP      ServerConfig
	GRPC      ServerConfig
	Database  DatabaseConfig
	Log       LogConfig
	Backend   BackendConfig
	Razorpay  RazorpayConfig
	Orders    OrdersConfig
	RateLimit RateLimitConfig
	Jobs      JobsConfig
}

type AppConfig struct {
	ServiceName string
}

type ServerConfig struct {
	Host string
	Port string
}

type DatabaseConfig struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

// BackendConfig holds the backend-as-a-service settings. URL and AnonKey are public
// and may be handed to the browser; JWTSecret never leaves the server.
type BackendConfig struct {
	URL       string
	AnonKey   string
	JWTSecret string
}

type RazorpayConfig struct {
	KeyID             string
	KeySecret         string
	WebhookSecret     string
	APIBaseURL        string
	HTTPTimeout       time.Duration
	RequestsPerSecond float64
}

type OrdersConfig struct {
	PendingTimeout  time.Duration
	DefaultCurrency string
}

type RateLimitConfig struct {
	ExpireOrdersLimit int64
	Window            time.Duration
}

type JobsConfig struct {
	ExpirePendingInterval time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		return nil, errors.New("DB_DSN environment variable is required")
	}

	driver := strings.ToLower(getEnv("DB_DRIVER", "mysql"))
	if driver != "mysql" && driver != "sqlite3" {
		return nil, errors.New("DB_DRIVER must be mysql or sqlite3")
	}

	return &Config{
		App: AppConfig{
			ServiceName: getEnv("APP_SERVICE_NAME", "checkout-service"),
		},
		HTTP: ServerConfig{
			Host: getEnv("HTTP_HOST", "0.0.0.0"),
			Port: getEnv("HTTP_PORT", "8080"),
		},
		GRPC: ServerConfig{
			Host: getEnv("GRPC_HOST", "0.0.0.0"),
			Port: getEnv("GRPC_PORT", "9090"),
		},
		Database: DatabaseConfig{
			Driver:          driver,
			DSN:             dsn,
			MaxOpenConns:    getIntEnv("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getIntEnv("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getMinutesEnv("DB_CONN_MAX_LIFETIME_MINUTES", 30*time.Minute),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Backend: BackendConfig{
			URL:       getEnv("BACKEND_URL", ""),
			AnonKey:   getEnv("BACKEND_ANON_KEY", ""),
			JWTSecret: getEnv("BACKEND_JWT_SECRET", ""),
		},
		Razorpay: RazorpayConfig{
			KeyID:             getEnv("RAZORPAY_KEY_ID", ""),
			KeySecret:         getEnv("RAZORPAY_KEY_SECRET", ""),
			WebhookSecret:     getEnv("RAZORPAY_WEBHOOK_SECRET", ""),
			APIBaseURL:        getEnv("RAZORPAY_API_BASE_URL", "https://api.razorpay.com"),
			HTTPTimeout:       getSecondsEnv("RAZORPAY_HTTP_TIMEOUT_SECONDS", 10*time.Second),
			RequestsPerSecond: getFloatEnv("RAZORPAY_REQUESTS_PER_SECOND", 10),
		},
		Orders: OrdersConfig{
			PendingTimeout:  getMinutesEnv("ORDERS_PENDING_TIMEOUT_MINUTES", 30*time.Minute),
			DefaultCurrency: strings.ToUpper(getEnv("ORDERS_DEFAULT_CURRENCY", "INR")),
		},
		RateLimit: RateLimitConfig{
			ExpireOrdersLimit: int64(getIntEnv("RATE_LIMIT_EXPIRE_PER_WINDOW", 20)),
			Window:            getSecondsEnv("RATE_LIMIT_WINDOW_SECONDS", time.Minute),
		},
		Jobs: JobsConfig{
			ExpirePendingInterval: getMinutesEnv("ORDERS_EXPIRE_INTERVAL_MINUTES", 5*time.Minute),
		},
	}, nil
}

// MissingAdminSecrets lists the server-only settings the admin endpoints need.
// An empty result means the admin surface can run.
func (c *Config) MissingAdminSecrets() []string {
	missing := make([]string, 0, 2)
	if strings.TrimSpace(c.Database.DSN) == "" {
		missing = append(missing, "DB_DSN")
	}
	if strings.TrimSpace(c.Backend.JWTSecret) == "" {
		missing = append(missing, "BACKEND_JWT_SECRET")
	}
	return missing
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.ParseFloat(value, 64); err == nil {
			return n
		}
	}
	return defaultValue
}

func getMinutesEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if minutes, err := strconv.Atoi(value); err == nil {
			return time.Duration(minutes) * time.Minute
		}
	}
	return defaultValue
}

func getSecondsEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultValue
}
