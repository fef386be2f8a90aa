package internal

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Environment   string              `mapstructure:"environment"`
	Server        ServerConfig        `mapstructure:"http_server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Security      SecurityConfig      `mapstructure:"security" validate:"required"`
	Bootstrap     BootstrapConfig     `mapstructure:"bootstrap"`
	Notification  NotificationConfig  `mapstructure:"notification"`
	RateLimit     RateLimitConfig     `mapstructure:"rate_limit"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port"`
	BaseURL           string        `mapstructure:"base_url"`
	AllowedOrigins    string        `mapstructure:"allowed_origins"`
	OpenAPIPath       string        `mapstructure:"openapi_path"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	// TrustProxy takes the client address from X-Forwarded-For / X-Real-IP.
	// Enable only behind a proxy that overwrites those headers.
	TrustProxy bool `mapstructure:"trust_proxy"`
}

type DatabaseConfig struct {
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"required,min=1"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"required,min=1"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"required,min=1m"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time" validate:"required,min=1m"`
	Source          string        `mapstructure:"source"`
}

type SecurityConfig struct {
	JWTSecret                 string        `mapstructure:"jwt_secret" validate:"required,min=32"`
	SoftTokenExpiry           time.Duration `mapstructure:"soft_token_expiry"`
	HardTokenExpiry           time.Duration `mapstructure:"hard_token_expiry"`
	BCryptCost                int           `mapstructure:"bcrypt_cost" validate:"required,min=4,max=15"`
	EmailVerificationValidity time.Duration `mapstructure:"email_verification_validity"`
	PasswordResetValidity     time.Duration `mapstructure:"password_reset_validity"`
	ReturnCallStackOnError    bool          `mapstructure:"return_call_stack_on_error"`
}

type BootstrapConfig struct {
	Enabled            bool   `mapstructure:"enabled"`
	SystemUserEmail    string `mapstructure:"system_user_email"`
	SystemUserPassword string `mapstructure:"system_user_password"`
}

type NotificationConfig struct {
	MandrillAPIURL        string        `mapstructure:"mandrill_api_url"`
	MandrillAPIKey        string        `mapstructure:"mandrill_api_key"`
	FromEmail             string        `mapstructure:"from_email"`
	VerificationTemplate  string        `mapstructure:"verification_template"`
	PasswordResetTemplate string        `mapstructure:"password_reset_template"`
	VerifyEmailLink       string        `mapstructure:"verify_email_link"`
	PasswordResetLink     string        `mapstructure:"password_reset_link"`
	Timeout               time.Duration `mapstructure:"timeout"`
}

type RateLimitConfig struct {
	Enabled   bool `mapstructure:"enabled"`
	Burst     int  `mapstructure:"burst"`
	PerSecond int  `mapstructure:"per_second"`
}

type ObservabilityConfig struct {
	Metrics MetricsConfig `mapstructure:"metrics"`
	Logging LoggingConfig `mapstructure:"logging"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path" validate:"required_if=Enabled true"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=json text"`
}

// SetDefaults registers the fallback values used when config.yml or the
// environment leaves a key unset.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	v.SetDefault("http_server.port", 8080)
	v.SetDefault("http_server.base_url", "http://localhost:8080")
	v.SetDefault("http_server.openapi_path", "./api/openapi.yml")
	v.SetDefault("http_server.read_header_timeout", 5*time.Second)
	v.SetDefault("http_server.read_timeout", 15*time.Second)
	v.SetDefault("http_server.idle_timeout", 60*time.Second)
	v.SetDefault("http_server.write_timeout", 15*time.Second)
	v.SetDefault("http_server.trust_proxy", false)

	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 30*time.Minute)
	v.SetDefault("database.conn_max_idle_time", 5*time.Minute)

	v.SetDefault("security.soft_token_expiry", 24*time.Hour)
	v.SetDefault("security.hard_token_expiry", 25*time.Hour)
	v.SetDefault("security.bcrypt_cost", 10)
	v.SetDefault("security.email_verification_validity", 7*24*time.Hour)
	v.SetDefault("security.password_reset_validity", time.Hour)

	v.SetDefault("bootstrap.enabled", true)
	v.SetDefault("bootstrap.system_user_email", "system@leblum.com")

	v.SetDefault("notification.mandrill_api_url", "https://mandrillapp.com/api/1.0/messages/send-template.json")
	v.SetDefault("notification.from_email", "no-reply@leblum.com")
	v.SetDefault("notification.verification_template", "verify-your-email-1")
	v.SetDefault("notification.password_reset_template", "reset-your-password")
	v.SetDefault("notification.verify_email_link", "https://leblum.io/verify-email?id=")
	v.SetDefault("notification.password_reset_link", "https://leblum.io/password-reset?id=")
	v.SetDefault("notification.timeout", 10*time.Second)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.burst", 10)
	v.SetDefault("rate_limit.per_second", 5)

	v.SetDefault("observability.metrics.enabled", true)
	v.SetDefault("observability.metrics.path", "/metrics")
	v.SetDefault("observability.logging.level", "info")
	v.SetDefault("observability.logging.format", "text")
}

// LoadConfigFromEnv builds the configuration for container deployments where
// no config file is mounted.
func LoadConfigFromEnv() *Config {
	return &Config{
		Environment: getEnv("APP_ENV", "production"),
		Server: ServerConfig{
			Port:              getEnvAsInt("HTTP_PORT", 8080),
			BaseURL:           getEnv("HTTP_BASE_URL", "http://localhost:8080"),
			AllowedOrigins:    getEnv("HTTP_ALLOWED_ORIGINS", "*"),
			OpenAPIPath:       getEnv("HTTP_OPENAPI_PATH", "./api/openapi.yml"),
			ReadHeaderTimeout: getEnvAsDuration("HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
			ReadTimeout:       getEnvAsDuration("HTTP_READ_TIMEOUT", 15*time.Second),
			IdleTimeout:       getEnvAsDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),
			WriteTimeout:      getEnvAsDuration("HTTP_WRITE_TIMEOUT", 15*time.Second),
			TrustProxy:        getEnvAsBool("HTTP_TRUST_PROXY", false),
		},
		Database: DatabaseConfig{
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: getEnvAsDuration("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
			Source:          getEnv("DB_SOURCE", ""),
		},
		Security: SecurityConfig{
			JWTSecret:                 getEnv("JWT_SECRET", ""),
			SoftTokenExpiry:           getEnvAsDuration("SOFT_TOKEN_EXPIRY", 24*time.Hour),
			HardTokenExpiry:           getEnvAsDuration("HARD_TOKEN_EXPIRY", 25*time.Hour),
			BCryptCost:                getEnvAsInt("BCRYPT_COST", 10),
			EmailVerificationValidity: getEnvAsDuration("EMAIL_VERIFICATION_VALIDITY", 7*24*time.Hour),
			PasswordResetValidity:     getEnvAsDuration("PASSWORD_RESET_VALIDITY", time.Hour),
			ReturnCallStackOnError:    getEnvAsBool("RETURN_CALL_STACK_ON_ERROR", false),
		},
		Bootstrap: BootstrapConfig{
			Enabled:            getEnvAsBool("BOOTSTRAP_ENABLED", true),
			SystemUserEmail:    getEnv("SYSTEM_USER_EMAIL", "system@leblum.com"),
			SystemUserPassword: getEnv("SYSTEM_USER_PASSWORD", ""),
		},
		Notification: NotificationConfig{
			MandrillAPIURL:        getEnv("MANDRILL_API_URL", "https://mandrillapp.com/api/1.0/messages/send-template.json"),
			MandrillAPIKey:        getEnv("MANDRILL_API_KEY", ""),
			FromEmail:             getEnv("MANDRILL_FROM_EMAIL", "no-reply@leblum.com"),
			VerificationTemplate:  getEnv("MANDRILL_VERIFICATION_TEMPLATE", "verify-your-email-1"),
			PasswordResetTemplate: getEnv("MANDRILL_PASSWORD_RESET_TEMPLATE", "reset-your-password"),
			VerifyEmailLink:       getEnv("VERIFY_EMAIL_LINK", "https://leblum.io/verify-email?id="),
			PasswordResetLink:     getEnv("PASSWORD_RESET_LINK", "https://leblum.io/password-reset?id="),
			Timeout:               getEnvAsDuration("MANDRILL_TIMEOUT", 10*time.Second),
		},
		RateLimit: RateLimitConfig{
			Enabled:   getEnvAsBool("RATE_LIMIT_ENABLED", true),
			Burst:     getEnvAsInt("RATE_LIMIT_BURST", 10),
			PerSecond: getEnvAsInt("RATE_LIMIT_PER_SECOND", 5),
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled: getEnvAsBool("METRICS_ENABLED", true),
				Path:    getEnv("METRICS_PATH", "/metrics"),
			},
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "json"),
			},
		},
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

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("database config: %v", err))
	}

	if err := c.Security.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("security config: %v", err))
	}

	if err := c.Bootstrap.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("bootstrap config: %v", err))
	}

	if err := c.Notification.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("notification config: %v", err))
	}

	if err := c.RateLimit.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("rate limit config: %v", err))
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

func (c *SecurityConfig) Validate() error {
	if len(c.JWTSecret) < 32 {
		return errors.New("jwt_secret must be at least 32 characters")
	}
	if c.SoftTokenExpiry <= 0 {
		return errors.New("soft_token_expiry must be positive")
	}
	// refresh is evaluated against the soft deadline, so the signature has to outlive it
	if c.HardTokenExpiry <= c.SoftTokenExpiry {
		return errors.New("hard_token_expiry must be longer than soft_token_expiry")
	}
	if c.BCryptCost < 4 || c.BCryptCost > 15 {
		return errors.New("bcrypt_cost must be between 4 and 15")
	}
	return nil
}

func (c *BootstrapConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.SystemUserEmail == "" {
		return errors.New("system_user_email is required when bootstrap is enabled")
	}
	if len(c.SystemUserPassword) < 6 {
		return errors.New("system_user_password must be at least 6 characters")
	}
	return nil
}

func (c *NotificationConfig) Validate() error {
	if c.MandrillAPIKey == "" {
		// dispatch falls back to logging the links
		return nil
	}
	if _, err := url.ParseRequestURI(c.MandrillAPIURL); err != nil {
		return fmt.Errorf("invalid mandrill_api_url: %w", err)
	}
	return nil
}

func (c *RateLimitConfig) Validate() error {
	if c.Enabled && (c.Burst <= 0 || c.PerSecond <= 0) {
		return errors.New("burst and per_second must be positive when rate limiting is enabled")
	}
	return nil
}
