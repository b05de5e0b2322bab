package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers
const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Entity store selection
	Store StoreConfig

	// PostgreSQL configuration
	Database DatabaseConfig

	// MongoDB configuration
	Mongo MongoConfig

	// Comment listing and validation settings
	Comments CommentsConfig

	// Background counter reconciliation
	Reconcile ReconcileConfig

	// Logging configuration
	Log LogConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// StoreConfig selects the entity store backend
type StoreConfig struct {
	Driver         string
	MigrationsPath string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

// MongoConfig holds MongoDB connection settings
type MongoConfig struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
}

// CommentsConfig holds comment listing defaults and limits
type CommentsConfig struct {
	DefaultLimit int
	MaxBodyWords int
}

// ReconcileConfig holds settings for the periodic counter repair.
// An Interval of zero disables the background sweep.
type ReconcileConfig struct {
	Interval time.Duration
	Workers  int
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string
	Format string // "json" or "pretty"
}

// Load reads configuration from environment variables, after loading a .env
// file if one is present
func Load() (*Config, error) {
	// A missing .env file is fine; the process environment still applies
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Store: StoreConfig{
			Driver:         getEnv("STORE_DRIVER", DriverPostgres),
			MigrationsPath: getEnv("MIGRATIONS_PATH", "./migrations"),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", "postgres"),
			Name:         getEnv("DB_NAME", "comment_tree"),
			SSLMode:      getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns: getIntEnv("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getIntEnv("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:  getDurationEnv("DB_MAX_LIFETIME", 5*time.Minute),
		},
		Mongo: MongoConfig{
			URI:            getEnv("MONGO_URI", "mongodb://localhost:27017"),
			Database:       getEnv("MONGO_DATABASE", "comment_tree"),
			ConnectTimeout: getDurationEnv("MONGO_CONNECT_TIMEOUT", 10*time.Second),
		},
		Comments: CommentsConfig{
			DefaultLimit: getIntEnv("COMMENTS_DEFAULT_LIMIT", 10),
			MaxBodyWords: getIntEnv("COMMENTS_MAX_BODY_WORDS", 500),
		},
		Reconcile: ReconcileConfig{
			Interval: getDurationEnv("RECONCILE_INTERVAL", 0),
			Workers:  getIntEnv("RECONCILE_WORKERS", 4),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverPostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("DB_HOST is required")
		}
		if c.Database.Name == "" {
			return fmt.Errorf("DB_NAME is required")
		}
	case DriverMongo:
		if c.Mongo.URI == "" {
			return fmt.Errorf("MONGO_URI is required")
		}
		if c.Mongo.Database == "" {
			return fmt.Errorf("MONGO_DATABASE is required")
		}
	default:
		return fmt.Errorf("STORE_DRIVER must be one of: %s, %s", DriverPostgres, DriverMongo)
	}
	if c.Comments.DefaultLimit < 1 {
		return fmt.Errorf("COMMENTS_DEFAULT_LIMIT must be at least 1")
	}
	if c.Comments.MaxBodyWords < 1 {
		return fmt.Errorf("COMMENTS_MAX_BODY_WORDS must be at least 1")
	}
	if c.Reconcile.Interval < 0 {
		return fmt.Errorf("RECONCILE_INTERVAL must not be negative")
	}
	if c.Reconcile.Workers < 1 {
		return fmt.Errorf("RECONCILE_WORKERS must be at least 1")
	}
	return nil
}

// GetDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
