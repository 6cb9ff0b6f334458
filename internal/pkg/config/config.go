package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	API         APIConfig         `mapstructure:"api"`
	NATS        NATSConfig        `mapstructure:"nats"`
	Valkey      ValkeyConfig      `mapstructure:"valkey"`
	Session     SessionConfig     `mapstructure:"session"`
	Geolocation GeolocationConfig `mapstructure:"geolocation"`
	Log         LogConfig         `mapstructure:"log"`
	Telemetry   TelemetryConfig   `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
}

// APIConfig points at the geovocab backend.
type APIConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

// NATSConfig enables the NATS event bus. An empty URL keeps events in process.
type NATSConfig struct {
	URL string `mapstructure:"url"`
}

// ValkeyConfig enables shared session snapshots and rate limit counters.
// An empty address keeps both in memory.
type ValkeyConfig struct {
	Addr string `mapstructure:"addr"`
}

type SessionConfig struct {
	TTLMinutes int `mapstructure:"ttl_minutes"`
}

// GeolocationConfig drives "locate me" in the terminal. With Static set the
// configured point is used instead of an IP lookup.
type GeolocationConfig struct {
	IPEndpoint string  `mapstructure:"ip_endpoint"`
	Static     bool    `mapstructure:"static"`
	Lat        float64 `mapstructure:"lat"`
	Lon        float64 `mapstructure:"lon"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

// Load reads configuration from .env, an optional config file and
// environment variables, in increasing precedence.
func Load(service string) (*Config, error) {
	_ = godotenv.Load() // OK if missing

	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("api.base_url", "http://localhost:5000/api")
	v.SetDefault("nats.url", "")
	v.SetDefault("valkey.addr", "")
	v.SetDefault("session.ttl_minutes", 30)
	v.SetDefault("geolocation.ip_endpoint", "http://ip-api.com/json/?fields=status,message,lat,lon")
	v.SetDefault("geolocation.static", false)
	v.SetDefault("geolocation.lat", 0.0)
	v.SetDefault("geolocation.lon", 0.0)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", false)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: GEOVOCAB_API_BASE_URL → api.base_url
	v.SetEnvPrefix("GEOVOCAB")
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
	if u, err := url.Parse(c.API.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Sprintf("api.base_url must be an http(s) URL, got %q", c.API.BaseURL))
	}
	if c.Session.TTLMinutes <= 0 {
		errs = append(errs, "session.ttl_minutes must be positive")
	}
	if c.Geolocation.Static {
		if c.Geolocation.Lat < -90 || c.Geolocation.Lat > 90 {
			errs = append(errs, "geolocation.lat must be within -90..90")
		}
		if c.Geolocation.Lon < -180 || c.Geolocation.Lon > 180 {
			errs = append(errs, "geolocation.lon must be within -180..180")
		}
	}
	if c.Telemetry.Enabled && c.Telemetry.TempoAddr == "" {
		errs = append(errs, "telemetry.tempo_addr is required when telemetry is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
