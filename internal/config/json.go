package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// StructuredJSONConfig is the on-disk JSON layout of the configuration.
type StructuredJSONConfig struct {
	App struct {
		PasswordHashKey string   `json:"password_hash_key,omitempty"`
		TokenSignKey    string   `json:"token_sign_key,omitempty"`
		TokenIssuer     string   `json:"token_issuer,omitempty"`
		TokenDuration   Duration `json:"token_duration,omitempty"`
		Version         string   `json:"version,omitempty"`
		LogFile         string   `json:"log_file,omitempty"`
	} `json:"app,omitempty"`

	Storage struct {
		DB struct {
			DSN string `json:"dsn,omitempty"`
		} `json:"db,omitempty"`
	} `json:"storage,omitempty"`

	Server struct {
		HTTPAddress    string   `json:"http_address,omitempty"`
		RequestTimeout Duration `json:"request_timeout,omitempty"`
	} `json:"server,omitempty"`

	Adapter struct {
		HTTPAddress    string   `json:"http_address,omitempty"`
		RequestTimeout Duration `json:"request_timeout,omitempty"`
	} `json:"adapter,omitempty"`

	Workers struct {
		SyncInterval       Duration `json:"sync_interval,omitempty"`
		TombstoneRetention Duration `json:"tombstone_retention,omitempty"`
		CleanupInterval    Duration `json:"cleanup_interval,omitempty"`
	} `json:"workers,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		App: App{
			PasswordHashKey: jsonCfg.App.PasswordHashKey,
			TokenSignKey:    jsonCfg.App.TokenSignKey,
			TokenIssuer:     jsonCfg.App.TokenIssuer,
			TokenDuration:   time.Duration(jsonCfg.App.TokenDuration),
			Version:         jsonCfg.App.Version,
			LogFile:         jsonCfg.App.LogFile,
		},
		Storage: Storage{
			DB: DB{
				DSN: jsonCfg.Storage.DB.DSN,
			},
		},
		Server: Server{
			HTTPAddress:    jsonCfg.Server.HTTPAddress,
			RequestTimeout: time.Duration(jsonCfg.Server.RequestTimeout),
		},
		Adapter: Adapter{
			HTTPAddress:    jsonCfg.Adapter.HTTPAddress,
			RequestTimeout: time.Duration(jsonCfg.Adapter.RequestTimeout),
		},
		Workers: Workers{
			SyncInterval:       time.Duration(jsonCfg.Workers.SyncInterval),
			TombstoneRetention: time.Duration(jsonCfg.Workers.TombstoneRetention),
			CleanupInterval:    time.Duration(jsonCfg.Workers.CleanupInterval),
		},
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling from strings like "1h", "30s"
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
