package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"InsightsDashboard/internal/domain"
)

const (
	configPathEnv    = "DASHBOARD_CONFIG"
	databaseDSNEnv   = "DATABASE_DSN"
	addrEnv          = "DASHBOARD_ADDR"
	logLevelEnv      = "DASHBOARD_LOG_LEVEL"
	dataFileEnv      = "DASHBOARD_DATA_FILE"
	storageDriverEnv = "DASHBOARD_STORAGE_DRIVER"
	remoteURLEnv     = "DASHBOARD_REMOTE_URL"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Remote  RemoteConfig  `yaml:"remote"`
	Chart   ChartConfig   `yaml:"chart"`
	Filters FilterConfig  `yaml:"filters"`
	Refresh RefreshConfig `yaml:"refresh"`
}

// LoggingConfig selects the slog level and handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
	RateLimit    float64       `yaml:"rateLimit"`
	RateBurst    int           `yaml:"rateBurst"`
}

// StorageConfig picks and parameterises the record repository.
type StorageConfig struct {
	Driver   string `yaml:"driver"`
	DSN      string `yaml:"dsn"`
	Table    string `yaml:"table"`
	DataFile string `yaml:"dataFile"`
	Watch    bool   `yaml:"watch"`
}

// RemoteConfig points the remote driver at another dashboard server.
type RemoteConfig struct {
	BaseURL string        `yaml:"baseUrl"`
	Timeout time.Duration `yaml:"timeout"`
}

// ChartConfig is the drawing frame and the aggregation variant.
type ChartConfig struct {
	Width   int            `yaml:"width"`
	Height  int            `yaml:"height"`
	Margins domain.Margins `yaml:"margins"`
	Padding float64        `yaml:"padding"`
	Ticks   int            `yaml:"ticks"`
	Mode    string         `yaml:"mode"`
}

// Layout converts the chart section to a domain layout.
func (c ChartConfig) Layout() domain.Layout {
	return domain.Layout{
		Width:   c.Width,
		Height:  c.Height,
		Margins: c.Margins,
		Padding: c.Padding,
		Ticks:   c.Ticks,
	}
}

// FilterConfig extends the alias table and picks the multi-select policy.
type FilterConfig struct {
	Aliases    map[string]string `yaml:"aliases"`
	MultiValue string            `yaml:"multiValue"`
}

// RefreshConfig drives periodic re-fetching in interactive sessions.
type RefreshConfig struct {
	Interval time.Duration `yaml:"interval"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		fileCfg, err := readFile(path)
		if err != nil {
			log.Printf("config: %v (falling back to defaults)", err)
		} else {
			cfg = mergeConfig(cfg, fileCfg)
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

// LoadFile is Load with an explicit file that must exist and parse.
func LoadFile(path string) (Config, error) {
	fileCfg, err := readFile(path)
	if err != nil {
		return Config{}, err
	}

	cfg := mergeConfig(defaultConfig(), fileCfg)
	cfg.applyEnvOverrides()
	return cfg, nil
}

func readFile(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: cannot read %s: %w", path, err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
		return Config{}, fmt.Errorf("config: cannot parse %s: %w", path, err)
	}
	return fileCfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Storage.DSN = v
	}

	if v := os.Getenv(addrEnv); v != "" {
		c.Server.Addr = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(dataFileEnv); v != "" {
		c.Storage.DataFile = v
	}

	if v := os.Getenv(storageDriverEnv); v != "" {
		c.Storage.Driver = v
	}

	if v := os.Getenv(remoteURLEnv); v != "" {
		c.Remote.BaseURL = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	if override.Server.Addr != "" {
		base.Server.Addr = override.Server.Addr
	}
	if override.Server.ReadTimeout > 0 {
		base.Server.ReadTimeout = override.Server.ReadTimeout
	}
	if override.Server.WriteTimeout > 0 {
		base.Server.WriteTimeout = override.Server.WriteTimeout
	}
	if override.Server.RateLimit > 0 {
		base.Server.RateLimit = override.Server.RateLimit
	}
	if override.Server.RateBurst > 0 {
		base.Server.RateBurst = override.Server.RateBurst
	}

	if override.Storage.Driver != "" {
		base.Storage.Driver = override.Storage.Driver
	}
	if override.Storage.DSN != "" {
		base.Storage.DSN = override.Storage.DSN
	}
	if override.Storage.Table != "" {
		base.Storage.Table = override.Storage.Table
	}
	if override.Storage.DataFile != "" {
		base.Storage.DataFile = override.Storage.DataFile
	}
	if override.Storage.Watch {
		base.Storage.Watch = true
	}

	if override.Remote.BaseURL != "" {
		base.Remote.BaseURL = override.Remote.BaseURL
	}
	if override.Remote.Timeout > 0 {
		base.Remote.Timeout = override.Remote.Timeout
	}

	if override.Chart.Width > 0 {
		base.Chart.Width = override.Chart.Width
	}
	if override.Chart.Height > 0 {
		base.Chart.Height = override.Chart.Height
	}
	if override.Chart.Margins != (domain.Margins{}) {
		base.Chart.Margins = override.Chart.Margins
	}
	if override.Chart.Padding > 0 {
		base.Chart.Padding = override.Chart.Padding
	}
	if override.Chart.Ticks > 0 {
		base.Chart.Ticks = override.Chart.Ticks
	}
	if override.Chart.Mode != "" {
		base.Chart.Mode = override.Chart.Mode
	}

	if len(override.Filters.Aliases) > 0 {
		base.Filters.Aliases = override.Filters.Aliases
	}
	if override.Filters.MultiValue != "" {
		base.Filters.MultiValue = override.Filters.MultiValue
	}

	if override.Refresh.Interval > 0 {
		base.Refresh.Interval = override.Refresh.Interval
	}

	return base
}

func defaultConfig() Config {
	layout := domain.DefaultLayout()
	return Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Server: ServerConfig{
			Addr:         ":5000",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			RateLimit:    50,
			RateBurst:    100,
		},
		Storage: StorageConfig{Driver: "memory", Table: "insights", DataFile: "jsondata.json"},
		Remote:  RemoteConfig{Timeout: 15 * time.Second},
		Chart: ChartConfig{
			Width:   layout.Width,
			Height:  layout.Height,
			Margins: layout.Margins,
			Padding: layout.Padding,
			Ticks:   layout.Ticks,
			Mode:    string(domain.ModePerRecord),
		},
		Filters: FilterConfig{MultiValue: "scalar"},
	}
}
