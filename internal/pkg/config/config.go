package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Service   ServiceConfig   `mapstructure:"service"`
	Log       LogConfig       `mapstructure:"log"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Regions   []RegionConfig  `mapstructure:"regions"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
	RateLimit    int `mapstructure:"rate_limit"` // requests per minute per IP
}

// ServiceConfig carries the identity values served on the index and uid endpoints.
type ServiceConfig struct {
	UID         string `mapstructure:"uid"`
	UpstreamURL string `mapstructure:"upstream_url"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type NATSConfig struct {
	URL     string `mapstructure:"url"`
	Enabled bool   `mapstructure:"enabled"`
}

type ValkeyConfig struct {
	Addr    string `mapstructure:"addr"`
	Enabled bool   `mapstructure:"enabled"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

// RegionConfig declares a named polygon served by the region catalog.
type RegionConfig struct {
	Name     string           `mapstructure:"name"`
	Vertices []PositionConfig `mapstructure:"vertices"`
}

type PositionConfig struct {
	Lng float64 `mapstructure:"lng"`
	Lat float64 `mapstructure:"lat"`
}

// centralArea is the default restricted area over central Edinburgh.
var centralArea = map[string]any{
	"name": "central",
	"vertices": []map[string]any{
		{"lng": -3.192473, "lat": 55.946233},
		{"lng": -3.192473, "lat": 55.942617},
		{"lng": -3.184319, "lat": 55.942617},
		{"lng": -3.184319, "lat": 55.946233},
		{"lng": -3.192473, "lat": 55.946233},
	},
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("server.rate_limit", 120)
	v.SetDefault("service.uid", "s0000000")
	v.SetDefault("service.upstream_url", "https://ilp-rest.azurewebsites.net")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.enabled", true)
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("valkey.enabled", true)
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("regions", []map[string]any{centralArea})

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: FLIGHTGEO_VALKEY_ADDR → valkey.addr
	v.SetEnvPrefix("FLIGHTGEO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.Server.RateLimit <= 0 {
		errs = append(errs, "server.rate_limit must be positive")
	}
	if c.Service.UpstreamURL != "" {
		if _, err := url.ParseRequestURI(c.Service.UpstreamURL); err != nil {
			errs = append(errs, fmt.Sprintf("service.upstream_url is not a valid URL: %v", err))
		}
	}
	if c.NATS.Enabled && c.NATS.URL == "" {
		errs = append(errs, "nats.url is required when nats is enabled")
	}
	if c.Valkey.Enabled && c.Valkey.Addr == "" {
		errs = append(errs, "valkey.addr is required when valkey is enabled")
	}
	if c.Telemetry.Enabled && c.Telemetry.TempoAddr == "" {
		errs = append(errs, "telemetry.tempo_addr is required when telemetry is enabled")
	}

	seen := make(map[string]bool, len(c.Regions))
	for i, r := range c.Regions {
		switch {
		case r.Name == "":
			errs = append(errs, fmt.Sprintf("regions[%d].name is required", i))
		case seen[r.Name]:
			errs = append(errs, fmt.Sprintf("regions[%d].name %q is duplicated", i, r.Name))
		}
		seen[r.Name] = true
		if len(r.Vertices) == 0 {
			errs = append(errs, fmt.Sprintf("regions[%d].vertices must not be empty", i))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
