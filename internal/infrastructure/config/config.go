package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Store    StoreConfig    `mapstructure:"store"`
	Uploads  UploadsConfig  `mapstructure:"uploads"`
	Crafts   CraftsConfig   `mapstructure:"crafts"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	Security SecurityConfig `mapstructure:"security"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// AppConfig holds application-specific configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment" validate:"oneof=development staging production test"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"min=1,max=65535"`
	Host            string        `mapstructure:"host"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// StoreConfig selects and configures the craft record store
type StoreConfig struct {
	Driver          string        `mapstructure:"driver" validate:"oneof=json memory sqlite postgres"`
	Path            string        `mapstructure:"path" validate:"required_if=Driver json"`
	DSN             string        `mapstructure:"dsn" validate:"required_if=Driver sqlite,required_if=Driver postgres"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"min=0"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"min=0"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// UploadsConfig selects and configures image upload storage
type UploadsConfig struct {
	Driver       string `mapstructure:"driver" validate:"oneof=local s3"`
	Dir          string `mapstructure:"dir" validate:"required_if=Driver local"`
	MaxSizeBytes int64  `mapstructure:"max_size_bytes" validate:"min=1"`
	S3Bucket     string `mapstructure:"s3_bucket" validate:"required_if=Driver s3"`
	S3Region     string `mapstructure:"s3_region" validate:"required_if=Driver s3"`
	S3Prefix     string `mapstructure:"s3_prefix"`
}

// CraftsConfig holds craft record behavior switches
type CraftsConfig struct {
	AssignIDs bool `mapstructure:"assign_ids"`
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level    string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format   string `mapstructure:"format" validate:"oneof=json console"`
	Output   string `mapstructure:"output" validate:"oneof=stdout file"`
	Filename string `mapstructure:"filename" validate:"required_if=Output file"`
}

// SecurityConfig holds security-related configuration
type SecurityConfig struct {
	CORSAllowedOrigins string        `mapstructure:"cors_allowed_origins"`
	RateLimitRequests  int           `mapstructure:"rate_limit_requests" validate:"min=0"`
	RateLimitWindow    time.Duration `mapstructure:"rate_limit_window"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Load loads configuration from various sources
func Load() (*Config, error) {
	// Load .env file if it exists (ignore errors)
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Logger.Format == "" {
		cfg.Logger.Format = defaultLogFormat(&cfg.App)
	}

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "Crafts")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.environment", "development")

	// Server defaults
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.request_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")

	// Store defaults
	v.SetDefault("store.driver", "json")
	v.SetDefault("store.path", "./crafts.json")
	v.SetDefault("store.dsn", "")
	v.SetDefault("store.auto_migrate", true)
	v.SetDefault("store.max_open_conns", 4)
	v.SetDefault("store.max_idle_conns", 2)
	v.SetDefault("store.conn_max_lifetime", "5m")

	// Upload defaults
	v.SetDefault("uploads.driver", "local")
	v.SetDefault("uploads.dir", "uploads")
	v.SetDefault("uploads.max_size_bytes", 10<<20)
	v.SetDefault("uploads.s3_bucket", "")
	v.SetDefault("uploads.s3_region", "")
	v.SetDefault("uploads.s3_prefix", "uploads")

	v.SetDefault("crafts.assign_ids", false)

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.output", "stdout")
	v.SetDefault("logger.filename", "")

	// Security defaults
	v.SetDefault("security.cors_allowed_origins", "*")
	v.SetDefault("security.rate_limit_requests", 100)
	v.SetDefault("security.rate_limit_window", "1m")

	v.SetDefault("metrics.enabled", true)
}

func bindEnvVars(v *viper.Viper) {
	// App
	v.BindEnv("app.name", "APP_NAME")
	v.BindEnv("app.version", "APP_VERSION")
	v.BindEnv("app.environment", "APP_ENVIRONMENT")

	// Server
	v.BindEnv("server.port", "PORT", "SERVER_PORT")
	v.BindEnv("server.host", "SERVER_HOST")
	v.BindEnv("server.read_timeout", "SERVER_READ_TIMEOUT")
	v.BindEnv("server.write_timeout", "SERVER_WRITE_TIMEOUT")
	v.BindEnv("server.idle_timeout", "SERVER_IDLE_TIMEOUT")
	v.BindEnv("server.request_timeout", "REQUEST_TIMEOUT")
	v.BindEnv("server.shutdown_timeout", "SHUTDOWN_TIMEOUT")

	// Store
	v.BindEnv("store.driver", "STORE_DRIVER")
	v.BindEnv("store.path", "STORE_PATH")
	v.BindEnv("store.dsn", "STORE_DSN")
	v.BindEnv("store.auto_migrate", "STORE_AUTO_MIGRATE")
	v.BindEnv("store.max_open_conns", "STORE_MAX_OPEN_CONNS")
	v.BindEnv("store.max_idle_conns", "STORE_MAX_IDLE_CONNS")
	v.BindEnv("store.conn_max_lifetime", "STORE_CONN_MAX_LIFETIME")

	// Uploads
	v.BindEnv("uploads.driver", "UPLOAD_DRIVER")
	v.BindEnv("uploads.dir", "UPLOAD_DIR")
	v.BindEnv("uploads.max_size_bytes", "UPLOAD_MAX_SIZE")
	v.BindEnv("uploads.s3_bucket", "S3_BUCKET")
	v.BindEnv("uploads.s3_region", "S3_REGION")
	v.BindEnv("uploads.s3_prefix", "S3_PREFIX")

	v.BindEnv("crafts.assign_ids", "CRAFTS_ASSIGN_IDS")

	// Logger
	v.BindEnv("logger.level", "LOG_LEVEL")
	v.BindEnv("logger.format", "LOG_FORMAT")
	v.BindEnv("logger.output", "LOG_OUTPUT")
	v.BindEnv("logger.filename", "LOG_FILENAME")

	// Security
	v.BindEnv("security.cors_allowed_origins", "CORS_ALLOWED_ORIGINS")
	v.BindEnv("security.rate_limit_requests", "RATE_LIMIT_REQUESTS")
	v.BindEnv("security.rate_limit_window", "RATE_LIMIT_WINDOW")

	v.BindEnv("metrics.enabled", "ENABLE_METRICS")
}

// defaultLogFormat picks console output for local development and JSON
// everywhere else
func defaultLogFormat(app *AppConfig) string {
	if app.IsDevelopment() {
		return "console"
	}
	return "json"
}

// Validate checks the struct-tag constraints of cfg
func Validate(cfg *Config) error {
	return validator.New().Struct(cfg)
}

// Address returns the listen address for the HTTP server
func (cfg *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
}

// DriverName returns the database/sql driver name for the configured store
func (cfg *StoreConfig) DriverName() string {
	return cfg.Driver
}

// IsSQL reports whether the store is backed by a SQL database
func (cfg *StoreConfig) IsSQL() bool {
	return cfg.Driver == "sqlite" || cfg.Driver == "postgres"
}

// IsDevelopment returns true if the environment is development
func (cfg *AppConfig) IsDevelopment() bool {
	return cfg.Environment == "development"
}

// IsProduction returns true if the environment is production
func (cfg *AppConfig) IsProduction() bool {
	return cfg.Environment == "production"
}
