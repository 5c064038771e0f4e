package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	ListenAddr string `env:"LISTEN_ADDR,  default=:8080"`
	Env        string `env:"ENV,          default=development"`
	LogLevel   string `env:"LOG_LEVEL,    default=info"`
	APIBaseURL string `env:"API_BASE_URL, default=https://api.nappylocks.com"`

	// StateDir holds the persisted slots for file storage. Defaults to
	// ~/.nappylocks when empty.
	StateDir string `env:"STATE_DIR"`
	// StateSecret, when set, seals slots at rest.
	StateSecret string `env:"STATE_SECRET"`
	// StorageBackend selects the slot store: file or redis.
	StorageBackend string `env:"STORAGE_BACKEND, default=file"`

	Redis RedisConfig
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
