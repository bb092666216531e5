package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Upstream UpstreamConfig `yaml:"upstream"`
	Options  OptionsConfig  `yaml:"options"`
	Map      MapConfig      `yaml:"map"`
	Carrier  CarrierConfig  `yaml:"carrier"`
	Database DatabaseConfig `yaml:"database"`
	Audit    AuditConfig    `yaml:"audit"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port              int           `yaml:"port"`
	RateLimitPerSec   float64       `yaml:"rate_limit_per_sec"`
	RateLimitBurst    int           `yaml:"rate_limit_burst"`
	CacheTTLSeconds   int           `yaml:"cache_ttl_seconds"`
	CacheTTL          time.Duration `yaml:"-"`
	SessionTTLMinutes int           `yaml:"session_ttl_minutes"`
	SessionTTL        time.Duration `yaml:"-"`
}

// UpstreamConfig describes the backend that serves timeframes and locations
// and accepts persistence calls.
type UpstreamConfig struct {
	BaseURL        string            `yaml:"base_url"`
	Paths          UpstreamPaths     `yaml:"paths"`
	Headers        map[string]string `yaml:"headers"`
	HTTPProxy      string            `yaml:"http_proxy"`
	TimeoutSeconds int               `yaml:"timeout_seconds"` // 0 leaves resolution to the transport
}

// UpstreamPaths maps each request channel to its endpoint path.
type UpstreamPaths struct {
	Timeframes      string `yaml:"timeframes"`
	Locations       string `yaml:"locations"`
	LocationsInArea string `yaml:"locations_in_area"`
	SaveOption      string `yaml:"save_option"`
	SaveCosts       string `yaml:"save_costs"`
	SavePhoneNumber string `yaml:"save_phone_number"`
}

// OptionsConfig holds the delivery option switches and fees.
type OptionsConfig struct {
	AllowTimeframes        bool    `yaml:"allow_timeframes"`
	AllowEveningTimeframes bool    `yaml:"allow_evening_timeframes"`
	AllowPG                bool    `yaml:"allow_pg"`
	AllowPGE               bool    `yaml:"allow_pge"`
	AllowPA                bool    `yaml:"allow_pa"`
	EveningFee             float64 `yaml:"evening_fee"`
	ExpressFee             float64 `yaml:"express_fee"`
	Country                string  `yaml:"country"`
	// OneStepCheckout flags every persistence call as coming from a
	// single-page checkout.
	OneStepCheckout        bool    `yaml:"one_step_checkout"`
}

// MapConfig holds the map view configuration.
type MapConfig struct {
	NearestZoomThreshold int    `yaml:"nearest_zoom_threshold"`
	MinSearchZoom        int    `yaml:"min_search_zoom"`
	ImageBaseURL         string `yaml:"image_base_url"`
}

// CarrierConfig holds the shipping method and tracking configuration.
type CarrierConfig struct {
	RateType          string `yaml:"rate_type"` // flat or table
	TrackTraceBaseURL string `yaml:"track_trace_base_url"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver"` // postgres or sqlite
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// AuditConfig holds the configuration for the audit worker pool.
type AuditConfig struct {
	Enabled        bool `yaml:"enabled"`
	WorkerPoolSize int  `yaml:"worker_pool_size"`
	QueueSize      int  `yaml:"queue_size"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Default returns a configuration with every default applied. It is the
// starting point for Load and for tests that build a config by hand.
func Default() *Config {
	cfg := &Config{
		Options: OptionsConfig{
			AllowTimeframes: true,
			AllowPG:         true,
			AllowPA:         true,
		},
		Audit: AuditConfig{Enabled: true},
	}
	applyDefaults(cfg)
	return cfg
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg := Default()
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(cfg); err != nil {
		return nil, err
	}

	applyDefaults(cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 300
	}
	cfg.Server.CacheTTL = time.Duration(cfg.Server.CacheTTLSeconds) * time.Second
	if cfg.Server.SessionTTLMinutes <= 0 {
		cfg.Server.SessionTTLMinutes = 30
	}
	cfg.Server.SessionTTL = time.Duration(cfg.Server.SessionTTLMinutes) * time.Minute

	p := &cfg.Upstream.Paths
	if p.Timeframes == "" {
		p.Timeframes = "/postnl/deliveryOptions/getDeliveryTimeframes"
	}
	if p.Locations == "" {
		p.Locations = "/postnl/deliveryOptions/getNearestLocations"
	}
	if p.LocationsInArea == "" {
		p.LocationsInArea = "/postnl/deliveryOptions/getLocationsInArea"
	}
	if p.SaveOption == "" {
		p.SaveOption = "/postnl/deliveryOptions/saveSelectedOption"
	}
	if p.SaveCosts == "" {
		p.SaveCosts = "/postnl/deliveryOptions/saveOptionCosts"
	}
	if p.SavePhoneNumber == "" {
		p.SavePhoneNumber = "/postnl/deliveryOptions/savePhoneNumber"
	}

	if cfg.Options.Country == "" {
		cfg.Options.Country = "NL"
	}

	if cfg.Map.NearestZoomThreshold <= 0 {
		cfg.Map.NearestZoomThreshold = 14
	}
	if cfg.Map.MinSearchZoom <= 0 {
		cfg.Map.MinSearchZoom = 13
	}

	if cfg.Carrier.RateType == "" {
		cfg.Carrier.RateType = "flat"
	}
	if cfg.Carrier.TrackTraceBaseURL == "" {
		cfg.Carrier.TrackTraceBaseURL = "http://www.postnlpakketten.nl/klantenservice/tracktrace/basicsearch.aspx?lang=nl"
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}

	if cfg.Audit.WorkerPoolSize <= 0 {
		cfg.Audit.WorkerPoolSize = 1
	}
	if cfg.Audit.QueueSize <= 0 {
		cfg.Audit.QueueSize = 64
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}
