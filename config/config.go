package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Engine   EngineConfig
	Book     BookConfig
	Replay   ReplayConfig
	Logger   LoggerConfig
	Memory   MemoryConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Metrics  MetricsConfig
}

// EngineConfig holds matching engine sizing and the trade audit log
type EngineConfig struct {
	ArenaCapacity    int
	TradeLogCapacity int
	QueueSize        int
	SubmitTimeout    time.Duration
	TradeLogPath     string
}

// BookConfig describes the single instrument the book trades
type BookConfig struct {
	Symbol     string
	PriceScale int
}

// ReplayConfig holds the order event source for the replay command
type ReplayConfig struct {
	InputPath   string
	DepthLevels int
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level string // DEBUG, INFO, WARN, ERROR
}

// MemoryConfig holds in-memory storage configuration
type MemoryConfig struct {
	Enabled   bool
	MaxTrades int
}

// DatabaseConfig holds PostgreSQL database configuration
type DatabaseConfig struct {
	Enabled         bool
	Host            string
	Port            int
	Name            string
	User            string
	Password        string
	MaxConns        int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	SSLMode         string
}

// RedisConfig holds Redis cache configuration
type RedisConfig struct {
	Enabled      bool
	Host         string
	Port         int
	Password     string
	DB           int
	MaxRetries   int
	PoolSize     int
	MinIdleConns int
	TLSEnabled   bool
	MaxTrades    int
}

// MetricsConfig controls the prometheus endpoint. An empty Addr disables it.
type MetricsConfig struct {
	Addr      string
	Namespace string
}

var instance *Config

// Load loads configuration from .env file (if exists) and environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	cfg := &Config{
		Engine: EngineConfig{
			ArenaCapacity:    getEnvInt("ENGINE_ARENA_CAPACITY", 16384),
			TradeLogCapacity: getEnvInt("ENGINE_TRADE_LOG_CAPACITY", 16384),
			QueueSize:        getEnvInt("ENGINE_QUEUE_SIZE", 1024),
			SubmitTimeout:    getEnvDuration("ENGINE_SUBMIT_TIMEOUT", 5*time.Second),
			TradeLogPath:     getEnv("TRADE_LOG_PATH", "trades.log"),
		},
		Book: BookConfig{
			Symbol:     getEnv("BOOK_SYMBOL", "BTC-USD"),
			PriceScale: getEnvInt("BOOK_PRICE_SCALE", 2),
		},
		Replay: ReplayConfig{
			InputPath:   getEnv("REPLAY_INPUT_PATH", "-"),
			DepthLevels: getEnvInt("REPLAY_DEPTH_LEVELS", 10),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "INFO"),
		},
		Memory: MemoryConfig{
			Enabled:   getEnvBool("MEMORY_ENABLED", true),
			MaxTrades: getEnvInt("MEMORY_MAX_TRADES", 1000),
		},
		Database: DatabaseConfig{
			Enabled:         getEnvBool("DATABASE_ENABLED", false),
			Host:            getEnv("DATABASE_HOST", "localhost"),
			Port:            getEnvInt("DATABASE_PORT", 5432),
			Name:            getEnv("DATABASE_NAME", "matching_engine"),
			User:            getEnv("DATABASE_USER", "postgres"),
			Password:        getEnv("DATABASE_PASSWORD", ""),
			MaxConns:        getEnvInt("DATABASE_MAX_CONNECTIONS", 20),
			MaxIdleConns:    getEnvInt("DATABASE_MAX_IDLE_CONNECTIONS", 5),
			ConnMaxLifetime: getEnvDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
			SSLMode:         getEnv("DATABASE_SSL_MODE", "disable"),
		},
		Redis: RedisConfig{
			Enabled:      getEnvBool("REDIS_ENABLED", false),
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnvInt("REDIS_PORT", 6379),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvInt("REDIS_DB", 0),
			MaxRetries:   getEnvInt("REDIS_MAX_RETRIES", 3),
			PoolSize:     getEnvInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvInt("REDIS_MIN_IDLE_CONNS", 2),
			TLSEnabled:   getEnvBool("REDIS_TLS_ENABLED", false),
			MaxTrades:    getEnvInt("REDIS_MAX_TRADES", 10000),
		},
		Metrics: MetricsConfig{
			Addr:      getEnv("METRICS_ADDR", ""),
			Namespace: getEnv("METRICS_NAMESPACE", "matching_core"),
		},
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	instance = cfg
	return cfg, nil
}

// Get returns the singleton config instance
func Get() *Config {
	if instance == nil {
		panic("config not loaded - call config.Load() first")
	}
	return instance
}

// Validate validates the configuration
func (c *Config) Validate() error {
	// Validate engine config
	if c.Engine.ArenaCapacity < 0 {
		return fmt.Errorf("ENGINE_ARENA_CAPACITY must be >= 0")
	}
	if c.Engine.TradeLogCapacity < 0 {
		return fmt.Errorf("ENGINE_TRADE_LOG_CAPACITY must be >= 0")
	}
	if c.Engine.QueueSize < 1 {
		return fmt.Errorf("ENGINE_QUEUE_SIZE must be > 0")
	}
	if c.Engine.SubmitTimeout <= 0 {
		return fmt.Errorf("ENGINE_SUBMIT_TIMEOUT must be > 0")
	}
	if c.Engine.TradeLogPath == "" {
		return fmt.Errorf("TRADE_LOG_PATH cannot be empty")
	}

	// Validate book config
	if c.Book.Symbol == "" {
		return fmt.Errorf("BOOK_SYMBOL cannot be empty")
	}
	if c.Book.PriceScale < 0 || c.Book.PriceScale > 12 {
		return fmt.Errorf("BOOK_PRICE_SCALE must be between 0 and 12")
	}

	if c.Replay.DepthLevels < 1 {
		return fmt.Errorf("REPLAY_DEPTH_LEVELS must be > 0")
	}

	// Validate logger config
	validLevels := map[string]bool{"DEBUG": true, "INFO": true, "WARN": true, "ERROR": true}
	if !validLevels[c.Logger.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: DEBUG, INFO, WARN, ERROR")
	}

	if c.Memory.Enabled && c.Memory.MaxTrades < 1 {
		return fmt.Errorf("MEMORY_MAX_TRADES must be > 0 when memory storage is enabled")
	}
	if c.Redis.Enabled && c.Redis.MaxTrades < 1 {
		return fmt.Errorf("REDIS_MAX_TRADES must be > 0 when redis is enabled")
	}

	return nil
}

// Helper functions to read environment variables with defaults

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
