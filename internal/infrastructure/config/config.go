// internal/infrastructure/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers accepted by STORE_DRIVER
const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// Config holds all configuration for the application
type Config struct {
	// App
	AppVersion string
	LogLevel   string
	Debug      bool

	// Server
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Storage
	StoreDriver string
	PostgresURI string

	// MongoDB
	MongoURI      string
	MongoDB       string
	MongoUser     string
	MongoPassword string

	// Queue
	MaxFlightsPerPage int
	ScheduleGrace     time.Duration

	// Reference data seed (YAML), optional
	ReferenceSeedFile string
}

// LoadConfig loads configuration from environment variables. envFiles are
// read first when given, otherwise .env if it exists. Variables already set
// in the environment win over file values.
func LoadConfig(envFiles ...string) (*Config, error) {
	if len(envFiles) > 0 {
		if err := godotenv.Load(envFiles...); err != nil {
			return nil, fmt.Errorf("load env files: %w", err)
		}
	} else {
		godotenv.Load()
	}

	// Set defaults and override with env vars
	config := &Config{
		AppVersion: getEnv("APP_VERSION", "2.0.0"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		Debug:      getEnvAsBool("DEBUG", false),

		Port:         getEnv("PORT", "8000"),
		ReadTimeout:  time.Duration(getEnvAsInt("READ_TIMEOUT", 30)) * time.Second,
		WriteTimeout: time.Duration(getEnvAsInt("WRITE_TIMEOUT", 30)) * time.Second,

		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", StoreDriverPostgres)),
		PostgresURI: getEnv("POSTGRES_DSN", "host=localhost user=postgres password=postgres dbname=flights port=5432 sslmode=disable"),

		MongoURI:      getEnv("MONGODB_DSN", "mongodb://localhost:27017"),
		MongoDB:       getEnv("MONGO_DB", "flights"),
		MongoUser:     getEnv("MONGO_USER", ""),
		MongoPassword: getEnv("MONGO_PASSWORD", ""),

		MaxFlightsPerPage: getEnvAsInt("MAX_FLIGHTS_PER_PAGE", 100),
		ScheduleGrace:     time.Duration(getEnvAsInt("SCHEDULE_GRACE_MINUTES", 30)) * time.Minute,

		ReferenceSeedFile: getEnv("REFERENCE_SEED_FILE", ""),
	}

	switch config.StoreDriver {
	case StoreDriverPostgres, StoreDriverMemory:
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", config.StoreDriver)
	}
	if config.MaxFlightsPerPage <= 0 {
		return nil, fmt.Errorf("MAX_FLIGHTS_PER_PAGE must be positive, got %d", config.MaxFlightsPerPage)
	}

	return config, nil
}

// Helper functions to get environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
