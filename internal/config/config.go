package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Queue backends for notification fan-out
const (
	QueueMemory = "memory"
	QueueRedis  = "redis"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port            string `yaml:"port" env:"SERVER_PORT"`
		Mode            string `yaml:"mode" env:"SERVER_MODE"`
		ShutdownTimeout string `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT"`
	} `yaml:"server"`

	Database struct {
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MinConns        int    `yaml:"min_conns" env:"DB_MIN_CONNS"`
		MaxConns        int    `yaml:"max_conns" env:"DB_MAX_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
		MigrationsDir   string `yaml:"migrations_dir" env:"DB_MIGRATIONS_DIR"`
	} `yaml:"database"`

	JWT struct {
		Secret          string `yaml:"secret" env:"JWT_SECRET"`
		Issuer          string `yaml:"issuer" env:"JWT_ISSUER"`
		TokenExpiration string `yaml:"token_expiration" env:"JWT_TOKEN_EXPIRATION"`
	} `yaml:"jwt"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`

	Redis struct {
		URL string `yaml:"url" env:"REDIS_URL"`
	} `yaml:"redis"`

	Notifications struct {
		Queue      string `yaml:"queue" env:"NOTIFICATIONS_QUEUE"`
		QueueKey   string `yaml:"queue_key" env:"NOTIFICATIONS_QUEUE_KEY"`
		Workers    int    `yaml:"workers" env:"NOTIFICATIONS_WORKERS"`
		BufferSize int    `yaml:"buffer_size" env:"NOTIFICATIONS_BUFFER_SIZE"`
		JobTimeout string `yaml:"job_timeout" env:"NOTIFICATIONS_JOB_TIMEOUT"`
	} `yaml:"notifications"`

	Moderation struct {
		AutoBanThreshold int    `yaml:"auto_ban_threshold" env:"MODERATION_AUTO_BAN_THRESHOLD"`
		AutoBanDuration  string `yaml:"auto_ban_duration" env:"MODERATION_AUTO_BAN_DURATION"`
		ReasonSampleSize int    `yaml:"reason_sample_size" env:"MODERATION_REASON_SAMPLE_SIZE"`
	} `yaml:"moderation"`

	ContentPolicy struct {
		Path string `yaml:"path" env:"CONTENT_POLICY_PATH"`
	} `yaml:"content_policy"`

	Seed struct {
		AdminEmail    string `yaml:"admin_email" env:"SEED_ADMIN_EMAIL"`
		AdminName     string `yaml:"admin_name" env:"SEED_ADMIN_NAME"`
		AdminPassword string `yaml:"admin_password" env:"SEED_ADMIN_PASSWORD"`
	} `yaml:"seed"`
}

// LoadConfig loads configuration from a YAML file, then applies environment overrides.
// A missing file is not an error; defaults and env still apply.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := processStructFields(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "8080"
	config.Server.Mode = "development"
	config.Server.ShutdownTimeout = "15s"

	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "alumnet"
	config.Database.SSLMode = "disable"
	config.Database.MinConns = 2
	config.Database.MaxConns = 20
	config.Database.ConnMaxLifetime = "1h"
	config.Database.MigrationsDir = "migrations"

	config.JWT.Issuer = "alumnet.app"
	config.JWT.TokenExpiration = "1h"

	config.Logging.Level = "info"
	config.Logging.Format = "json"

	config.Notifications.Queue = QueueMemory
	config.Notifications.QueueKey = "alumnet:notifications"
	config.Notifications.Workers = 4
	config.Notifications.BufferSize = 1024
	config.Notifications.JobTimeout = "5s"

	config.Moderation.AutoBanThreshold = 3
	config.Moderation.AutoBanDuration = "72h"
	config.Moderation.ReasonSampleSize = 5

	config.ContentPolicy.Path = "configs/content_policy.yaml"
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	durations := map[string]string{
		"server.shutdown_timeout":      config.Server.ShutdownTimeout,
		"database.conn_max_lifetime":   config.Database.ConnMaxLifetime,
		"jwt.token_expiration":         config.JWT.TokenExpiration,
		"notifications.job_timeout":    config.Notifications.JobTimeout,
		"moderation.auto_ban_duration": config.Moderation.AutoBanDuration,
	}
	for name, value := range durations {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid duration for %s: %w", name, err)
		}
	}

	switch strings.ToLower(config.Notifications.Queue) {
	case QueueMemory:
	case QueueRedis:
		if config.Redis.URL == "" {
			return fmt.Errorf("redis url is required when notifications.queue is %q", QueueRedis)
		}
	default:
		return fmt.Errorf("unknown notifications queue %q", config.Notifications.Queue)
	}

	if config.Notifications.Workers < 1 {
		return fmt.Errorf("notifications.workers must be at least 1")
	}

	if config.Moderation.AutoBanThreshold < 1 {
		return fmt.Errorf("moderation.auto_ban_threshold must be at least 1")
	}

	return nil
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}

// Duration parses a validated duration field, falling back to def when empty.
func Duration(value string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
