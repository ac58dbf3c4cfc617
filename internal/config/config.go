package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	MongoDB MongoDBConfig
	SQLite  SQLiteConfig
	JWT     JWTConfig
	Tickets TicketsConfig
	Log     LogConfig
	Admin   AdminConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port           string
	AllowedOrigins []string
	Mode           string // gin mode: debug, release, test
}

// StorageConfig selects the persistence backend
type StorageConfig struct {
	Driver string // mongodb or sqlite
}

// MongoDBConfig holds MongoDB-specific configuration
type MongoDBConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// SQLiteConfig holds SQLite-specific configuration
type SQLiteConfig struct {
	Path string
}

// JWTConfig holds JWT-specific configuration
type JWTConfig struct {
	Secret    string
	ExpiresIn int // seconds
}

// TicketsConfig tunes ticket generation and redemption
type TicketsConfig struct {
	CodeLength          int
	MaxGenerateAttempts int
	MaxBatchSize        int
	CreditTimeout       time.Duration
}

// LogConfig configures the structured logger
type LogConfig struct {
	Level  string
	Format string
}

// AdminConfig holds the credentials used by the seed-admin command
type AdminConfig struct {
	Name     string
	Email    string
	Password string
}

const (
	DriverMongoDB = "mongodb"
	DriverSQLite  = "sqlite"
)

// Load loads configuration from a .env file, environment variables and an optional
// config.yaml found in path or path/config. Environment keys use underscores for
// nesting, e.g. JWT_SECRET or MONGODB_URI.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("[INFO] config: no .env file found, using environment variables")
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(path)
	v.AddConfigPath(path + "/config")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// It's okay if config file is not found, we'll use environment variables
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults sets default values for configuration. Every key gets a default so that
// AutomaticEnv can override it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("Server.Port", "5000")
	v.SetDefault("Server.AllowedOrigins", []string{"http://localhost:3000"})
	v.SetDefault("Server.Mode", "release")
	v.SetDefault("Storage.Driver", DriverMongoDB)
	v.SetDefault("MongoDB.URI", "mongodb://localhost:27017")
	v.SetDefault("MongoDB.Database", "luckyticket")
	v.SetDefault("MongoDB.Timeout", 10*time.Second)
	v.SetDefault("SQLite.Path", "./data/luckyticket.db")
	v.SetDefault("JWT.Secret", "")
	v.SetDefault("JWT.ExpiresIn", 30*24*60*60) // 30 days
	v.SetDefault("Tickets.CodeLength", 8)
	v.SetDefault("Tickets.MaxGenerateAttempts", 5)
	v.SetDefault("Tickets.MaxBatchSize", 1000)
	v.SetDefault("Tickets.CreditTimeout", 5*time.Second)
	v.SetDefault("Log.Level", "info")
	v.SetDefault("Log.Format", "text")
	v.SetDefault("Admin.Name", "System Admin")
	v.SetDefault("Admin.Email", "admin@luckyticket.com")
	v.SetDefault("Admin.Password", "")
}

// Validate checks settings the service cannot start without
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("config: JWT_SECRET is required")
	}
	if c.JWT.ExpiresIn <= 0 {
		return errors.New("config: JWT_EXPIRESIN must be positive")
	}
	switch c.Storage.Driver {
	case DriverMongoDB, DriverSQLite:
	default:
		return fmt.Errorf("config: unknown storage driver %q", c.Storage.Driver)
	}
	if c.Tickets.CodeLength < 6 {
		return fmt.Errorf("config: ticket code length %d is too short to be unguessable", c.Tickets.CodeLength)
	}
	if c.Tickets.MaxGenerateAttempts < 1 {
		return errors.New("config: TICKETS_MAXGENERATEATTEMPTS must be at least 1")
	}
	if c.Tickets.MaxBatchSize < 1 {
		return errors.New("config: TICKETS_MAXBATCHSIZE must be at least 1")
	}
	return nil
}
