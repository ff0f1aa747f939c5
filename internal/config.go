package internal

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type Config struct {
	Env       string          `mapstructure:"env" validate:"omitempty,oneof=development staging production test"`
	Server    ServerConfig    `mapstructure:"http_server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Security  SecurityConfig  `mapstructure:"security" validate:"required"`
	Payment   PaymentConfig   `mapstructure:"payment"`
	Email     EmailConfig     `mapstructure:"email"`
	Cache     CacheConfig     `mapstructure:"cache"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port" validate:"required,min=1,max=65535"`
	BaseURL           string        `mapstructure:"base_url"`
	AllowedOrigins    string        `mapstructure:"allowed_origins"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"required,min=1"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"required,min=1"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"required,min=1m"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time" validate:"required,min=1m"`
	Source          string        `mapstructure:"source" validate:"required"`
}

type SecurityConfig struct {
	JWTSecret           string        `mapstructure:"jwt_secret" validate:"required,min=32"`
	AccessTokenDuration time.Duration `mapstructure:"access_token_duration" validate:"required,min=1m,max=24h"`
	BCryptCost          int           `mapstructure:"bcrypt_cost" validate:"required,min=4,max=15"`
}

type PaymentConfig struct {
	Provider        string        `mapstructure:"provider" validate:"required,oneof=razorpay mock"`
	KeyID           string        `mapstructure:"key_id" validate:"required_if=Provider razorpay"`
	KeySecret       string        `mapstructure:"key_secret" validate:"required_if=Provider razorpay"`
	BaseURL         string        `mapstructure:"base_url" validate:"omitempty,url"`
	MockAPIURL      string        `mapstructure:"mock_api_url" validate:"required_if=Provider mock,omitempty,url"`
	MockSecret      string        `mapstructure:"mock_secret" validate:"required_if=Provider mock"`
	Currencies      []string      `mapstructure:"currencies" validate:"required,min=1,dive,len=3,uppercase"`
	DefaultCurrency string        `mapstructure:"default_currency" validate:"required,len=3,uppercase"`
	OfflineFallback bool          `mapstructure:"offline_fallback"`
	Timeout         time.Duration `mapstructure:"timeout"`
	RetryAttempts   int           `mapstructure:"retry_attempts" validate:"min=0,max=10"`
	StaleAfter      time.Duration `mapstructure:"stale_after"`
	ExpirySchedule  string        `mapstructure:"expiry_schedule"`
}

type EmailConfig struct {
	APIURL       string `mapstructure:"api_url" validate:"omitempty,url"`
	APIKey       string `mapstructure:"api_key"`
	From         string `mapstructure:"from" validate:"omitempty,email"`
	AdminAddress string `mapstructure:"admin_address" validate:"omitempty,email"`
	SiteURL      string `mapstructure:"site_url" validate:"omitempty,url"`
}

type CacheConfig struct {
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	RPS     float64 `mapstructure:"rps" validate:"required_if=Enabled true,omitempty,gt=0"`
	Burst   int     `mapstructure:"burst" validate:"required_if=Enabled true,omitempty,min=1"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"omitempty,oneof=json text"`
}

// ----------------- DEFAULTS -----------------

// ApplyDefaults fills zero values that have a sensible fallback.
func (c *Config) ApplyDefaults() {
	if c.Env == "" {
		c.Env = "development"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadHeaderTimeout == 0 {
		c.Server.ReadHeaderTimeout = 5 * time.Second
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30 * time.Second
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60 * time.Second
	}
	if c.Payment.Provider == "" {
		c.Payment.Provider = "mock"
	}
	if len(c.Payment.Currencies) == 0 {
		c.Payment.Currencies = []string{"INR", "USD"}
	}
	if c.Payment.DefaultCurrency == "" {
		c.Payment.DefaultCurrency = c.Payment.Currencies[0]
	}
	if c.Payment.Timeout == 0 {
		c.Payment.Timeout = 15 * time.Second
	}
	if c.Payment.RetryAttempts == 0 {
		c.Payment.RetryAttempts = 3
	}
	if c.Payment.StaleAfter == 0 {
		c.Payment.StaleAfter = 24 * time.Hour
	}
	if c.Payment.ExpirySchedule == "" {
		c.Payment.ExpirySchedule = "@every 15m"
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = 5 * time.Minute
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// ----------------- HELPERS -----------------

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsFloat(key string, defaultVal float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultVal
}

func getEnvAsList(key string, defaultVal []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultVal
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, strings.ToUpper(part))
		}
	}
	return out
}

// LoadConfigFromEnv builds the configuration from plain environment variables,
// used by container deployments that ship without a config file.
func LoadConfigFromEnv() *Config {
	cfg := &Config{
		Env: getEnv("APP_ENV", "production"),
		Server: ServerConfig{
			Port:              getEnvAsInt("PORT", 8080),
			BaseURL:           getEnv("BASE_URL", ""),
			AllowedOrigins:    getEnv("ALLOWED_ORIGINS", ""),
			ReadHeaderTimeout: getEnvAsDuration("HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
			ReadTimeout:       getEnvAsDuration("HTTP_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:      getEnvAsDuration("HTTP_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:       getEnvAsDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),
		},
		Database: DatabaseConfig{
			Source:          getEnv("DATABASE_URL", ""),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: getEnvAsDuration("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
		},
		Security: SecurityConfig{
			JWTSecret:           getEnv("JWT_SECRET", ""),
			AccessTokenDuration: getEnvAsDuration("ACCESS_TOKEN_DURATION", 8*time.Hour),
			BCryptCost:          getEnvAsInt("BCRYPT_COST", 12),
		},
		Payment: PaymentConfig{
			Provider:        getEnv("PAYMENT_PROVIDER", "razorpay"),
			KeyID:           getEnv("RAZORPAY_KEY_ID", ""),
			KeySecret:       getEnv("RAZORPAY_KEY_SECRET", ""),
			BaseURL:         getEnv("RAZORPAY_BASE_URL", ""),
			MockAPIURL:      getEnv("MOCK_PAYMENT_API_URL", ""),
			MockSecret:      getEnv("MOCK_PAYMENT_SECRET", ""),
			Currencies:      getEnvAsList("PAYMENT_CURRENCIES", []string{"INR", "USD"}),
			DefaultCurrency: getEnv("PAYMENT_DEFAULT_CURRENCY", "INR"),
			OfflineFallback: getEnvAsBool("PAYMENT_OFFLINE_FALLBACK", false),
			Timeout:         getEnvAsDuration("PAYMENT_TIMEOUT", 15*time.Second),
			RetryAttempts:   getEnvAsInt("PAYMENT_RETRY_ATTEMPTS", 3),
			StaleAfter:      getEnvAsDuration("PAYMENT_STALE_AFTER", 24*time.Hour),
			ExpirySchedule:  getEnv("PAYMENT_EXPIRY_SCHEDULE", "@every 15m"),
		},
		Email: EmailConfig{
			APIURL:       getEnv("EMAIL_API_URL", ""),
			APIKey:       getEnv("EMAIL_API_KEY", ""),
			From:         getEnv("EMAIL_FROM", ""),
			AdminAddress: getEnv("ADMIN_EMAIL", ""),
			SiteURL:      getEnv("SITE_URL", ""),
		},
		Cache: CacheConfig{
			RedisURL: getEnv("REDIS_URL", ""),
			TTL:      getEnvAsDuration("CACHE_TTL", 5*time.Minute),
		},
		RateLimit: RateLimitConfig{
			Enabled: getEnvAsBool("RATE_LIMIT_ENABLED", true),
			RPS:     getEnvAsFloat("RATE_LIMIT_RPS", 5),
			Burst:   getEnvAsInt("RATE_LIMIT_BURST", 10),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				errs = append(errs, fmt.Sprintf("%s failed on %s", fe.Namespace(), fe.Tag()))
			}
		} else {
			errs = append(errs, err.Error())
		}
	}

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("database config: %v", err))
	}

	if err := c.Payment.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("payment config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *ServerConfig) Validate() error {
	if c.AllowedOrigins != "" {
		origins := strings.Split(c.AllowedOrigins, ",")
		for _, origin := range origins {
			origin = strings.TrimSpace(origin)
			if origin == "*" {
				continue
			}
			if _, err := url.Parse(origin); err != nil {
				return fmt.Errorf("invalid allowed origin %s: %w", origin, err)
			}
		}
	}
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	return nil
}

func (c *DatabaseConfig) Validate() error {
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("max_idle_conns cannot be greater than max_open_conns")
	}
	return nil
}

func (c *DatabaseConfig) GetDSN() string {
	return c.Source
}

func (c *PaymentConfig) Validate() error {
	if !c.SupportsCurrency(c.DefaultCurrency) {
		return fmt.Errorf("default_currency %s is not in currencies", c.DefaultCurrency)
	}
	return nil
}

// SupportsCurrency reports whether code is in the configured allow-list.
func (c *PaymentConfig) SupportsCurrency(code string) bool {
	for _, cur := range c.Currencies {
		if strings.EqualFold(cur, code) {
			return true
		}
	}
	return false
}

// Configured reports whether outgoing mail can be delivered through the API.
func (c *EmailConfig) Configured() bool {
	return c.APIURL != "" && c.APIKey != ""
}
