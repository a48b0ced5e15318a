package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/amirhossein-jamali/bank-ledger/internal/domain/entity"
)

// Config holds all configuration for the application
type Config struct {
	Environment string            `mapstructure:"environment"`
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Logger      LoggerConfig      `mapstructure:"logger"`
	Session     SessionConfig     `mapstructure:"session"`
	Security    SecurityConfig    `mapstructure:"security"`
	Transaction TransactionConfig `mapstructure:"transaction"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	ReadTimeout       time.Duration `mapstructure:"readTimeout"`
	WriteTimeout      time.Duration `mapstructure:"writeTimeout"`
	IdleTimeout       time.Duration `mapstructure:"idleTimeout"`
	ReadHeaderTimeout time.Duration `mapstructure:"readHeaderTimeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdownTimeout"`
	RequestTimeout    time.Duration `mapstructure:"requestTimeout"`
}

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	Driver              string        `mapstructure:"driver"`
	Host                string        `mapstructure:"host"`
	Port                string        `mapstructure:"port"`
	Username            string        `mapstructure:"username"`
	Password            string        `mapstructure:"password"`
	Database            string        `mapstructure:"database"`
	SSLMode             string        `mapstructure:"sslMode"`
	Path                string        `mapstructure:"path"`
	MaxOpenConns        int           `mapstructure:"maxOpenConns"`
	MaxIdleConns        int           `mapstructure:"maxIdleConns"`
	ConnMaxLifetime     time.Duration `mapstructure:"connMaxLifetime"`
	ConnMaxIdleTime     time.Duration `mapstructure:"connMaxIdleTime"`
	QueryTimeout        time.Duration `mapstructure:"queryTimeout"`
	LogLevel            string        `mapstructure:"logLevel"`
	SlowThreshold       time.Duration `mapstructure:"slowThreshold"`
	RetryAttempts       int           `mapstructure:"retryAttempts"`
	RetryDelay          time.Duration `mapstructure:"retryDelay"`
	HealthCheckInterval time.Duration `mapstructure:"healthCheckInterval"`
}

// LoggerConfig contains logger settings
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	CallerInfo bool   `mapstructure:"callerInfo"`
}

// SessionConfig contains login session settings
type SessionConfig struct {
	IdleTimeout     time.Duration `mapstructure:"idleTimeout"`
	AbsoluteTimeout time.Duration `mapstructure:"absoluteTimeout"`
	CleanupInterval time.Duration `mapstructure:"cleanupInterval"`
	CookieName      string        `mapstructure:"cookieName"`
	SecureCookie    bool          `mapstructure:"secureCookie"`
}

// SecurityConfig contains password and login settings
type SecurityConfig struct {
	BcryptCost         int  `mapstructure:"bcryptCost"`
	UniformLoginErrors bool `mapstructure:"uniformLoginErrors"`
}

// TransactionConfig contains balance update settings
type TransactionConfig struct {
	MaxRetries    int           `mapstructure:"maxRetries"`
	RetryInterval time.Duration `mapstructure:"retryInterval"`
	MaxInterval   time.Duration `mapstructure:"maxInterval"`
	QueueSize     int           `mapstructure:"queueSize"`
	MaxAmount     string        `mapstructure:"maxAmount"`
}

// Policy returns the lifetimes applied to new sessions
func (s SessionConfig) Policy() entity.SessionPolicy {
	return entity.SessionPolicy{
		IdleTimeout:     s.IdleTimeout,
		AbsoluteTimeout: s.AbsoluteTimeout,
	}
}

// MaxAmountInCents parses MaxAmount, e.g. "1000000000.00"
func (t TransactionConfig) MaxAmountInCents() (int64, error) {
	if strings.TrimSpace(t.MaxAmount) == "" {
		return entity.DefaultMaxAmountInCents, nil
	}
	cents, err := entity.ParseAmount(t.MaxAmount, 0)
	if err != nil {
		return 0, fmt.Errorf("transaction.maxAmount: %w", err)
	}
	if cents <= 0 {
		return 0, fmt.Errorf("transaction.maxAmount must be positive, got %s", t.MaxAmount)
	}
	return cents, nil
}

// IsProduction reports whether the production profile is active
func (c *Config) IsProduction() bool {
	return c.Environment == Production
}

// Validate checks the settings the application cannot start without
func (c *Config) Validate() error {
	var problems []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}
	if c.Server.RequestTimeout <= 0 {
		problems = append(problems, errors.New("server.requestTimeout must be positive"))
	}

	switch c.Database.Driver {
	case "postgres":
		if c.Database.Host == "" || c.Database.Database == "" || c.Database.Username == "" {
			problems = append(problems, errors.New("database.host, database.database and database.username are required for postgres"))
		}
	case "sqlite":
		if c.Database.Path == "" {
			problems = append(problems, errors.New("database.path is required for sqlite"))
		}
	default:
		problems = append(problems, fmt.Errorf("unsupported database.driver: %q", c.Database.Driver))
	}

	if c.Session.IdleTimeout <= 0 || c.Session.AbsoluteTimeout <= 0 {
		problems = append(problems, errors.New("session.idleTimeout and session.absoluteTimeout must be positive"))
	}
	if c.Session.CleanupInterval <= 0 {
		problems = append(problems, errors.New("session.cleanupInterval must be positive"))
	}
	if c.Session.CookieName == "" {
		problems = append(problems, errors.New("session.cookieName is required"))
	}

	if c.Transaction.MaxRetries < 0 {
		problems = append(problems, fmt.Errorf("transaction.maxRetries must be non-negative, got %d", c.Transaction.MaxRetries))
	}
	if _, err := c.Transaction.MaxAmountInCents(); err != nil {
		problems = append(problems, err)
	}

	return errors.Join(problems...)
}

// Warnings lists settings that work but are weak for the active environment
func (c *Config) Warnings() []string {
	var warnings []string

	if c.Session.IdleTimeout > c.Session.AbsoluteTimeout {
		warnings = append(warnings, "session.idleTimeout exceeds session.absoluteTimeout; sessions end at the absolute limit")
	}
	if !c.IsProduction() {
		return warnings
	}

	if !c.Session.SecureCookie {
		warnings = append(warnings, "session.secureCookie is disabled in production")
	}
	if c.Security.BcryptCost < 10 {
		warnings = append(warnings, fmt.Sprintf("security.bcryptCost %d is below 10", c.Security.BcryptCost))
	}
	if c.Database.Driver == "sqlite" {
		warnings = append(warnings, "database.driver sqlite is not recommended in production")
	}
	if c.Database.Driver == "postgres" && c.Database.SSLMode == "disable" {
		warnings = append(warnings, "database.sslMode is disabled in production")
	}
	if strings.EqualFold(c.Logger.Level, "debug") {
		warnings = append(warnings, "logger.level debug logs SQL statements in production")
	}
	return warnings
}
