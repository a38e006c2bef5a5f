package config

import (
	"os"
	"sync"
	"testing"
)

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	t.Cleanup(func() { os.Remove(tmpFile.Name()) })

	if _, err := tmpFile.Write([]byte(contents)); err != nil {
		t.Fatalf("Failed to write temp file: %v", err)
	}
	tmpFile.Close()

	return tmpFile.Name()
}

func TestLoad(t *testing.T) {
	path := writeTempConfig(t, `server:
  addr: ":9090"
weather:
  window_hours: 6
  max_windows: 5
  timezone_offset_seconds: 32400
learning:
  rate: 0.05
  l2: 0.0001
locations:
  - name: "Tokyo"
    latitude: 35.6762
    longitude: 139.6503
`)

	instance = nil
	once = *new(sync.Once)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg == nil {
		t.Fatal("Load() returned nil config")
	}

	if cfg.Server.Addr != ":9090" {
		t.Errorf("Expected server addr ':9090', got '%s'", cfg.Server.Addr)
	}

	if cfg.Weather.WindowHours != 6 {
		t.Errorf("Expected window_hours 6, got %d", cfg.Weather.WindowHours)
	}

	if cfg.Weather.MaxWindows != 5 {
		t.Errorf("Expected max_windows 5, got %d", cfg.Weather.MaxWindows)
	}

	if cfg.Weather.TimezoneOffsetSeconds != 32400 {
		t.Errorf("Expected timezone_offset_seconds 32400, got %d", cfg.Weather.TimezoneOffsetSeconds)
	}

	if len(cfg.Locations) != 1 {
		t.Errorf("Expected 1 location, got %d", len(cfg.Locations))
	}

	if cfg.Locations[0].Name != "Tokyo" {
		t.Errorf("Expected location name 'Tokyo', got '%s'", cfg.Locations[0].Name)
	}
}

func TestLoad_Defaults(t *testing.T) {
	path := writeTempConfig(t, `locations: []
`)

	instance = nil
	once = *new(sync.Once)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Addr != ":8080" {
		t.Errorf("Expected default addr ':8080', got '%s'", cfg.Server.Addr)
	}

	if cfg.Weather.WindowHours != 3 {
		t.Errorf("Expected default window_hours 3, got %d", cfg.Weather.WindowHours)
	}

	if cfg.Weather.MaxWindows != 10 {
		t.Errorf("Expected default max_windows 10, got %d", cfg.Weather.MaxWindows)
	}

	if cfg.Learning.Rate != 0.05 {
		t.Errorf("Expected default learning rate 0.05, got %g", cfg.Learning.Rate)
	}

	if cfg.Learning.L2 != 1e-4 {
		t.Errorf("Expected default l2 0.0001, got %g", cfg.Learning.L2)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeTempConfig(t, "invalid: [yaml: content")

	instance = nil
	once = *new(sync.Once)

	_, err := Load(path)
	if err == nil {
		t.Error("Expected error for invalid YAML, got nil")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	instance = nil
	once = *new(sync.Once)

	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Expected error for missing file, got nil")
	}
}

func TestLoad_WindowHoursOutOfRange(t *testing.T) {
	path := writeTempConfig(t, `weather:
  window_hours: 48
`)

	instance = nil
	once = *new(sync.Once)

	_, err := Load(path)
	if err == nil {
		t.Error("Expected validation error for window_hours 48, got nil")
	}
}

func TestGet(t *testing.T) {
	path := writeTempConfig(t, `weather:
  window_hours: 4
`)

	instance = nil
	once = *new(sync.Once)

	_, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	cfg := Get()
	if cfg == nil {
		t.Fatal("Get() returned nil")
	}

	if cfg.Weather.WindowHours != 4 {
		t.Errorf("Expected window_hours 4, got %d", cfg.Weather.WindowHours)
	}
}

func TestGet_Panic(t *testing.T) {
	instance = nil
	once = *new(sync.Once)

	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected Get() to panic when config not loaded")
		}
	}()

	Get()
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		c := &Config{}
		c.applyDefaults()
		return c
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "window hours too small",
			mutate:  func(c *Config) { c.Weather.WindowHours = -1 },
			wantErr: true,
		},
		{
			name:    "window hours too large",
			mutate:  func(c *Config) { c.Weather.WindowHours = 25 },
			wantErr: true,
		},
		{
			name:    "negative max windows",
			mutate:  func(c *Config) { c.Weather.MaxWindows = -1 },
			wantErr: true,
		},
		{
			name:    "negative learning rate",
			mutate:  func(c *Config) { c.Learning.Rate = -0.05 },
			wantErr: true,
		},
		{
			name:    "negative l2",
			mutate:  func(c *Config) { c.Learning.L2 = -1e-4 },
			wantErr: true,
		},
		{
			name: "location without name",
			mutate: func(c *Config) {
				c.Locations = []Location{{Latitude: 35.0, Longitude: 139.0}}
			},
			wantErr: true,
		},
		{
			name: "latitude out of range",
			mutate: func(c *Config) {
				c.Locations = []Location{{Name: "Nowhere", Latitude: 91.0, Longitude: 0.0}}
			},
			wantErr: true,
		},
		{
			name: "longitude out of range",
			mutate: func(c *Config) {
				c.Locations = []Location{{Name: "Nowhere", Latitude: 0.0, Longitude: -181.0}}
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
