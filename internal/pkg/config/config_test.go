package config

import (
	"strings"
	"testing"
)

func validConfig() Config {
	return Config{
		Server:  ServerConfig{Port: 8080, ReadTimeout: 10, WriteTimeout: 10},
		API:     APIConfig{BaseURL: "http://localhost:5000/api"},
		Session: SessionConfig{TTLMinutes: 30},
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("geovocab-test")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.API.BaseURL != "http://localhost:5000/api" {
		t.Errorf("unexpected base url %q", cfg.API.BaseURL)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("unexpected port %d", cfg.Server.Port)
	}
	if cfg.Session.TTLMinutes != 30 {
		t.Errorf("unexpected ttl %d", cfg.Session.TTLMinutes)
	}
	if cfg.NATS.URL != "" || cfg.Valkey.Addr != "" {
		t.Error("external backends must be off by default")
	}
	if cfg.Telemetry.ServiceName != "geovocab-test" {
		t.Errorf("unexpected service name %q", cfg.Telemetry.ServiceName)
	}
}

func TestLoad_Env(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("GEOVOCAB_API_BASE_URL", "https://geovocab.example.com/api")
	t.Setenv("GEOVOCAB_SERVER_PORT", "9090")
	t.Setenv("GEOVOCAB_NATS_URL", "nats://nats:4222")

	cfg, err := Load("geovocab-test")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.API.BaseURL != "https://geovocab.example.com/api" {
		t.Errorf("env not applied: %q", cfg.API.BaseURL)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("env not applied: %d", cfg.Server.Port)
	}
	if cfg.NATS.URL != "nats://nats:4222" {
		t.Errorf("env not applied: %q", cfg.NATS.URL)
	}
}

func TestLoad_Invalid(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("GEOVOCAB_API_BASE_URL", "ftp://nope")

	if _, err := Load("geovocab-test"); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"valid", func(*Config) {}, ""},
		{"port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"base url", func(c *Config) { c.API.BaseURL = "localhost:5000" }, "api.base_url"},
		{"ttl", func(c *Config) { c.Session.TTLMinutes = -1 }, "session.ttl_minutes"},
		{"static lat", func(c *Config) { c.Geolocation = GeolocationConfig{Static: true, Lat: 95} }, "geolocation.lat"},
		{"tempo", func(c *Config) { c.Telemetry = TelemetryConfig{Enabled: true} }, "telemetry.tempo_addr"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.want == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}
