package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App     AppConfig
	Storage StorageConfig
	Log     LogConfig
	Report  ReportConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
}

// StorageConfig holds the location of the JSON documents
type StorageConfig struct {
	DataDir            string
	ClientsFile        string
	OrdersFile         string
	CatalogFile        string
	SeedDefaultCatalog bool // Write the default spice catalog when the catalog document is absent
}

// ReportConfig holds aggregation settings
type ReportConfig struct {
	TopN int
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with SHOP_ prefix (e.g., SHOP_STORAGE_DATA_DIR)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom behaves like Load but looks for config.toml in dir first
func LoadFrom(dir string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	if dir != "" {
		v.AddConfigPath(dir)
	}
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("SHOP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
		},
		Storage: StorageConfig{
			DataDir:            v.GetString("storage.data_dir"),
			ClientsFile:        v.GetString("storage.clients_file"),
			OrdersFile:         v.GetString("storage.orders_file"),
			CatalogFile:        v.GetString("storage.catalog_file"),
			SeedDefaultCatalog: v.GetBool("storage.seed_default_catalog"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Report: ReportConfig{
			TopN: v.GetInt("report.top_n"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "retail-shop"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.Storage.DataDir == "" {
		cfg.Storage.DataDir = "data"
	}
	if cfg.Storage.ClientsFile == "" {
		cfg.Storage.ClientsFile = "clients.json"
	}
	if cfg.Storage.OrdersFile == "" {
		cfg.Storage.OrdersFile = "orders.json"
	}
	if cfg.Storage.CatalogFile == "" {
		cfg.Storage.CatalogFile = "catalog.json"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stderr"
	}
	if cfg.Report.TopN == 0 {
		cfg.Report.TopN = 5
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Report.TopN < 0 {
		return fmt.Errorf("report.top_n must be positive, got %d", c.Report.TopN)
	}

	files := map[string]string{
		"storage.clients_file": c.Storage.ClientsFile,
		"storage.orders_file":  c.Storage.OrdersFile,
		"storage.catalog_file": c.Storage.CatalogFile,
	}
	seen := make(map[string]string, len(files))
	for _, key := range []string{"storage.clients_file", "storage.orders_file", "storage.catalog_file"} {
		name := filepath.Clean(files[key])
		if other, dup := seen[name]; dup {
			return fmt.Errorf("%s and %s must name different files, both are %q", other, key, files[key])
		}
		seen[name] = key
	}

	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("log.format must be console or json, got %q", c.Log.Format)
	}

	return nil
}

// ClientsPath returns the full path of the clients document
func (s *StorageConfig) ClientsPath() string {
	return filepath.Join(s.DataDir, s.ClientsFile)
}

// OrdersPath returns the full path of the orders document
func (s *StorageConfig) OrdersPath() string {
	return filepath.Join(s.DataDir, s.OrdersFile)
}

// CatalogPath returns the full path of the catalog document
func (s *StorageConfig) CatalogPath() string {
	return filepath.Join(s.DataDir, s.CatalogFile)
}
