package config

import (
	"fmt"
	"time"
)

// ServerConfig is the relay server view of [StructuredConfig].
type ServerConfig struct {
	App     App
	Storage Storage
	Server  Server
	Workers ServerWorkers
}

// ServerWorkers holds the relay background job settings.
type ServerWorkers struct {
	TombstoneRetention time.Duration
	CleanupInterval    time.Duration
}

func serverDefaults() *StructuredConfig {
	return &StructuredConfig{
		App: App{
			TokenIssuer:   "bookmark-sync",
			TokenDuration: 24 * time.Hour,
			Version:       "dev",
		},
		Server: Server{
			HTTPAddress:    "localhost:8080",
			RequestTimeout: 30 * time.Second,
		},
		Workers: Workers{
			TombstoneRetention: 30 * 24 * time.Hour,
			CleanupInterval:    time.Hour,
		},
	}
}

// GetServerConfig builds and validates the server config view.
func GetServerConfig(args []string) (*ServerConfig, error) {
	cfg, err := GetStructuredConfig(args)
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	serverCfg := &ServerConfig{
		App:     cfg.App,
		Storage: cfg.Storage,
		Server:  cfg.Server,
		Workers: ServerWorkers{
			TombstoneRetention: cfg.Workers.TombstoneRetention,
			CleanupInterval:    cfg.Workers.CleanupInterval,
		},
	}

	return serverCfg, serverCfg.validate()
}
