package config

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// Config holds the yaml-backed application settings. Database, Redis
// and OpenWeather credentials come from the environment instead, see
// db.go, redis.go and openweather.go.
type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`

	Weather struct {
		WindowHours           int `yaml:"window_hours"`
		MaxWindows            int `yaml:"max_windows"`
		TimezoneOffsetSeconds int `yaml:"timezone_offset_seconds"`
	} `yaml:"weather"`

	Learning struct {
		Rate float64 `yaml:"rate"`
		L2   float64 `yaml:"l2"`
	} `yaml:"learning"`

	Locations []Location `yaml:"locations"`
}

// Location is a named point the windows CLI can resolve without a
// geocoding round-trip.
type Location struct {
	Name      string  `yaml:"name"`
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
}

var (
	instance *Config
	once     sync.Once
)

// Load reads and parses the config file at path. The first successful
// call wins; later calls return the already-loaded config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	c := &Config{}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	c.applyDefaults()
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	once.Do(func() {
		instance = c
	})
	return instance, nil
}

// Get returns the loaded config. It panics if Load has not been called.
func Get() *Config {
	if instance == nil {
		panic("config: Get called before Load")
	}
	return instance
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Weather.WindowHours == 0 {
		c.Weather.WindowHours = 3
	}
	if c.Weather.MaxWindows == 0 {
		c.Weather.MaxWindows = 10
	}
	if c.Learning.Rate == 0 {
		c.Learning.Rate = 0.05
	}
	if c.Learning.L2 == 0 {
		c.Learning.L2 = 1e-4
	}
}

func (c *Config) validate() error {
	if c.Weather.WindowHours < 1 || c.Weather.WindowHours > 24 {
		return fmt.Errorf("weather.window_hours must be between 1 and 24, got %d", c.Weather.WindowHours)
	}
	if c.Weather.MaxWindows < 0 {
		return fmt.Errorf("weather.max_windows must not be negative, got %d", c.Weather.MaxWindows)
	}
	if c.Learning.Rate <= 0 {
		return fmt.Errorf("learning.rate must be positive, got %g", c.Learning.Rate)
	}
	if c.Learning.L2 < 0 {
		return fmt.Errorf("learning.l2 must not be negative, got %g", c.Learning.L2)
	}
	for i, loc := range c.Locations {
		if loc.Name == "" {
			return fmt.Errorf("locations[%d]: name is required", i)
		}
		if loc.Latitude < -90 || loc.Latitude > 90 {
			return fmt.Errorf("locations[%d]: latitude out of range: %g", i, loc.Latitude)
		}
		if loc.Longitude < -180 || loc.Longitude > 180 {
			return fmt.Errorf("locations[%d]: longitude out of range: %g", i, loc.Longitude)
		}
	}
	return nil
}
