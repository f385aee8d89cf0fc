package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ClientApp holds client-side application settings.
type ClientApp struct {
	// LogFile is the rotated client log file.
	LogFile string
	// Version is the client build version.
	Version string
}

// ClientAdapter holds network settings used by the client transport layer.
type ClientAdapter struct {
	// HTTPAddress is the relay server address.
	HTTPAddress string
	// RequestTimeout is the default timeout for outbound requests.
	RequestTimeout time.Duration
}

// ClientDB contains local database connection settings for the client.
type ClientDB struct {
	// DSN is the SQLite file path.
	DSN string
}

// ClientStorage groups client storage backend settings.
type ClientStorage struct {
	DB ClientDB
}

// ClientWorkers contains client background job settings.
type ClientWorkers struct {
	// SyncInterval defines how often the daemon triggers a sync pass.
	SyncInterval time.Duration
}

// ClientConfig is the client view of [StructuredConfig].
type ClientConfig struct {
	App     ClientApp
	Adapter ClientAdapter
	Storage ClientStorage
	Workers ClientWorkers
}

// clientDefaults places the database and the log under the user config
// directory.
func clientDefaults() *StructuredConfig {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	dir = filepath.Join(dir, "bookmark-sync")

	return &StructuredConfig{
		App: App{
			LogFile: filepath.Join(dir, "client.log"),
			Version: "dev",
		},
		Storage: Storage{DB: DB{DSN: filepath.Join(dir, "bookmarks.db")}},
		Adapter: Adapter{
			HTTPAddress:    "http://localhost:8080",
			RequestTimeout: 30 * time.Second,
		},
		Workers: Workers{SyncInterval: 5 * time.Minute},
	}
}

// GetClientConfig builds and validates the client config view.
//
// The client CLI parses its own flags, so instead of reading os.Args the
// values it collected are passed in as overrides. A nil overrides is
// allowed.
func GetClientConfig(overrides *StructuredConfig) (*ClientConfig, error) {
	cfg, err := newConfigBuilder().
		withDefaults(clientDefaults()).
		withEnv().
		withOverrides(overrides).
		withJSON().
		build()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	clientCfg := &ClientConfig{
		App: ClientApp{
			LogFile: cfg.App.LogFile,
			Version: cfg.App.Version,
		},
		Adapter: ClientAdapter{
			HTTPAddress:    cfg.Adapter.HTTPAddress,
			RequestTimeout: cfg.Adapter.RequestTimeout,
		},
		Storage: ClientStorage{
			DB: ClientDB{
				DSN: cfg.Storage.DB.DSN,
			},
		},
		Workers: ClientWorkers{SyncInterval: cfg.Workers.SyncInterval},
	}

	return clientCfg, clientCfg.validate()
}
