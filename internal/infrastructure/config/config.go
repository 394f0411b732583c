package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config is the auth service configuration, read from the environment.
type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL,  default=15m"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL, default=168h"`

	// Bootstrap credentials seed the first administrator when the user
	// collection is empty. Leave empty to disable seeding.
	BootstrapAdminUser     string `env:"BOOTSTRAP_ADMIN_USER"`
	BootstrapAdminPassword string `env:"BOOTSTRAP_ADMIN_PASSWORD"`

	Mongo MongoConfig
	Redis RedisConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=clinic_ops"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}

// ConsoleConfig is the dashboard console configuration.
type ConsoleConfig struct {
	APIBaseURL      string        `env:"CLINIC_API_URL,   default=http://localhost:8080"`
	CredentialsPath string        `env:"CLINIC_CREDENTIALS_FILE"`
	RequestTimeout  time.Duration `env:"CLINIC_API_TIMEOUT, default=10s"`
	LogLevel        string        `env:"LOG_LEVEL, default=warn"`
}

// LoadConsole reads the console configuration from the environment.
func LoadConsole() *ConsoleConfig {
	var cfg ConsoleConfig
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
