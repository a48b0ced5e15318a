package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Environment constants
const (
	Development = "development"
	Production  = "production"
	Test        = "test"
)

// EnvPrefix prefixes every environment override, e.g. BANK_SERVER_PORT
const EnvPrefix = "BANK"

// ConfigPaths defines the paths to look for config files
var ConfigPaths = []string{
	"./configs",
	"../configs",
	"../../configs",
}

// DotEnvPaths defines the paths to look for .env files
var DotEnvPaths = []string{
	".env",
	"../.env",
	"../../.env",
	"./configs/.env",
}

// errNoDotEnv means none of DotEnvPaths exists
var errNoDotEnv = errors.New("no .env file found in search paths")

// envAliases maps variables whose names don't follow the key path to their keys
var envAliases = map[string]string{
	"BANK_DB_DRIVER":         "database.driver",
	"BANK_DB_HOST":           "database.host",
	"BANK_DB_PORT":           "database.port",
	"BANK_DB_USERNAME":       "database.username",
	"BANK_DB_PASSWORD":       "database.password",
	"BANK_DB_NAME":           "database.database",
	"BANK_DB_SSL_MODE":       "database.sslMode",
	"BANK_DB_PATH":           "database.path",
	"BANK_DB_RETRY_ATTEMPTS": "database.retryAttempts",
	"BANK_LOGGER_LEVEL":      "logger.level",
	"BANK_SECURE_COOKIE":     "session.secureCookie",
	"BANK_BCRYPT_COST":       "security.bcryptCost",
}

// LoadConfig loads .env, then configs/<BANK_ENV>.yaml, then environment overrides
func LoadConfig() (*Config, error) {
	if err := loadDotEnvFile(); err != nil && !errors.Is(err, errNoDotEnv) {
		fmt.Fprintln(os.Stderr, "Warning: could not load .env file:", err)
	}

	return Load(getEnvironment(), ConfigPaths...)
}

// Load reads <env>.yaml from the first matching path and applies BANK_* overrides
func Load(env string, paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName(env)
	v.SetConfigType("yaml")
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	processEnvOverrides(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	config.Environment = env

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadDotEnvFile loads the first .env file found. Existing variables win.
func loadDotEnvFile() error {
	for _, path := range DotEnvPaths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		return nil
	}
	return errNoDotEnv
}

// setDefaults registers every key so AutomaticEnv can override it
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.readTimeout", "15s")
	v.SetDefault("server.writeTimeout", "15s")
	v.SetDefault("server.idleTimeout", "60s")
	v.SetDefault("server.readHeaderTimeout", "10s")
	v.SetDefault("server.shutdownTimeout", "10s")
	v.SetDefault("server.requestTimeout", "10s")

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.username", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.database", "")
	v.SetDefault("database.sslMode", "disable")
	v.SetDefault("database.path", "bank.db")
	v.SetDefault("database.maxOpenConns", 25)
	v.SetDefault("database.maxIdleConns", 10)
	v.SetDefault("database.connMaxLifetime", "30m")
	v.SetDefault("database.connMaxIdleTime", "15m")
	v.SetDefault("database.queryTimeout", "5s")
	v.SetDefault("database.logLevel", "warn")
	v.SetDefault("database.slowThreshold", "200ms")
	v.SetDefault("database.retryAttempts", 3)
	v.SetDefault("database.retryDelay", "1s")
	v.SetDefault("database.healthCheckInterval", "30s")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
	v.SetDefault("logger.output", "stdout")
	v.SetDefault("logger.callerInfo", true)

	v.SetDefault("session.idleTimeout", "30m")
	v.SetDefault("session.absoluteTimeout", "24h")
	v.SetDefault("session.cleanupInterval", "5m")
	v.SetDefault("session.cookieName", "session_token")
	v.SetDefault("session.secureCookie", false)

	v.SetDefault("security.bcryptCost", 12)
	v.SetDefault("security.uniformLoginErrors", false)

	v.SetDefault("transaction.maxRetries", 5)
	v.SetDefault("transaction.retryInterval", "20ms")
	v.SetDefault("transaction.maxInterval", "500ms")
	v.SetDefault("transaction.queueSize", 100)
	v.SetDefault("transaction.maxAmount", "1000000000.00")
}

// getEnvironment determines the environment to use based on BANK_ENV
func getEnvironment() string {
	env := os.Getenv("BANK_ENV")
	if env == "" {
		env = Development
	}
	return strings.ToLower(env)
}

// processEnvOverrides applies variables whose names don't follow the key path
func processEnvOverrides(v *viper.Viper) {
	for name, key := range envAliases {
		if value, ok := os.LookupEnv(name); ok && value != "" {
			v.Set(key, value)
		}
	}
}
