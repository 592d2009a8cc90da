// Package config handles configuration loading for jmaobs.
// It supports YAML config files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/yamori/jmaobs/internal/portal"
)

// Config represents the complete application configuration.
type Config struct {
	Portal  PortalConfig  `mapstructure:"portal"  yaml:"portal"`
	API     APIConfig     `mapstructure:"api"     yaml:"api"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// PortalConfig holds the portal endpoints and HTTP client settings.
// Endpoints are configurable so tests and mirrors can point the client
// at a local server.
type PortalConfig struct {
	TableViewURL     string `mapstructure:"table_view_url"     yaml:"table_view_url"`
	StationURL       string `mapstructure:"station_url"        yaml:"station_url"`
	ElementURL       string `mapstructure:"element_url"        yaml:"element_url"`
	CSVTableURL      string `mapstructure:"csv_table_url"      yaml:"csv_table_url"`
	DownloadIndexURL string `mapstructure:"download_index_url" yaml:"download_index_url"`
	TimeoutSec       int    `mapstructure:"timeout_sec"        yaml:"timeout_sec"`
}

// Endpoints converts the configured URLs to portal endpoints.
func (p PortalConfig) Endpoints() portal.Endpoints {
	return portal.Endpoints{
		TableView:     p.TableViewURL,
		Station:       p.StationURL,
		Element:       p.ElementURL,
		CSVTable:      p.CSVTableURL,
		DownloadIndex: p.DownloadIndexURL,
	}
}

// Timeout returns the configured HTTP timeout.
func (p PortalConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutSec) * time.Second
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"`
	Port        int      `mapstructure:"port"         yaml:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "text" or "json"
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.jmaobs/config.yaml (home directory)
//  3. /etc/jmaobs/config.yaml (system)
//
// Environment variables override config file values.
// Format: JMAOBS_<SECTION>_<KEY>, e.g. JMAOBS_API_PORT
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".jmaobs"))
	v.AddConfigPath("/etc/jmaobs")

	v.SetEnvPrefix("JMAOBS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found — that's fine, use defaults + env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &cfg, nil
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix("JMAOBS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	ep := portal.DefaultEndpoints()
	v.SetDefault("portal.table_view_url", ep.TableView)
	v.SetDefault("portal.station_url", ep.Station)
	v.SetDefault("portal.element_url", ep.Element)
	v.SetDefault("portal.csv_table_url", ep.CSVTable)
	v.SetDefault("portal.download_index_url", ep.DownloadIndex)
	v.SetDefault("portal.timeout_sec", 30)

	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"http://localhost:3000"})

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
