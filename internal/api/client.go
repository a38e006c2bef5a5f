package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"linedry/internal/config"
	"linedry/internal/metrics"
	"linedry/internal/models"
)

// WeatherClient is the upstream weather API surface. MockWeatherClient
// implements the same interface for development without an API key.
type WeatherClient interface {
	GetOneCall(lat, lon float64) (*models.OneCallResponse, error)
	GetForecast3h(lat, lon float64) (*models.Forecast3hResponse, error)
	GeocodeDirect(query string, limit int) ([]models.GeocodeResult, error)
	GeocodeReverse(lat, lon float64, limit int) ([]models.GeocodeResult, error)
}

// OpenWeatherClient is a client for the OpenWeather API
type OpenWeatherClient struct {
	client *http.Client
	cfg    config.OpenWeatherConfig
}

// NewOpenWeatherClient creates a new OpenWeather API client
func NewOpenWeatherClient() *OpenWeatherClient {
	return &OpenWeatherClient{
		client: &http.Client{Timeout: 15 * time.Second},
		cfg:    config.GetOpenWeatherConfig(),
	}
}

// GetOneCall fetches hourly and daily forecast data for the given coordinates
func (c *OpenWeatherClient) GetOneCall(lat, lon float64) (*models.OneCallResponse, error) {
	if err := validateCoordinates(lat, lon); err != nil {
		return nil, err
	}

	u := c.buildURL(c.cfg.OneCallPath, url.Values{
		"lat":     {fmt.Sprintf("%.4f", lat)},
		"lon":     {fmt.Sprintf("%.4f", lon)},
		"units":   {"metric"},
		"exclude": {"minutely,alerts"},
	})

	var resp models.OneCallResponse
	if err := c.getJSON("onecall", u, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetForecast3h fetches the 5-day/3-hour forecast for the given coordinates
func (c *OpenWeatherClient) GetForecast3h(lat, lon float64) (*models.Forecast3hResponse, error) {
	if err := validateCoordinates(lat, lon); err != nil {
		return nil, err
	}

	u := c.buildURL(c.cfg.Forecast3hPath, url.Values{
		"lat":   {fmt.Sprintf("%.4f", lat)},
		"lon":   {fmt.Sprintf("%.4f", lon)},
		"units": {"metric"},
	})

	var resp models.Forecast3hResponse
	if err := c.getJSON("forecast3h", u, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GeocodeDirect resolves a place name to coordinates
func (c *OpenWeatherClient) GeocodeDirect(query string, limit int) ([]models.GeocodeResult, error) {
	if query == "" {
		return nil, fmt.Errorf("geocode: query must not be empty")
	}
	if limit <= 0 {
		limit = 5
	}

	u := c.buildURL(c.cfg.GeocodeDirectPath, url.Values{
		"q":     {query},
		"limit": {fmt.Sprintf("%d", limit)},
	})

	var results []models.GeocodeResult
	if err := c.getJSON("geocode_direct", u, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// GeocodeReverse resolves coordinates to nearby place names
func (c *OpenWeatherClient) GeocodeReverse(lat, lon float64, limit int) ([]models.GeocodeResult, error) {
	if err := validateCoordinates(lat, lon); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 5
	}

	u := c.buildURL(c.cfg.GeocodeReversePath, url.Values{
		"lat":   {fmt.Sprintf("%.4f", lat)},
		"lon":   {fmt.Sprintf("%.4f", lon)},
		"limit": {fmt.Sprintf("%d", limit)},
	})

	var results []models.GeocodeResult
	if err := c.getJSON("geocode_reverse", u, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// Builds a request URL with the API key appended
func (c *OpenWeatherClient) buildURL(path string, params url.Values) string {
	params.Set("appid", c.cfg.APIKey)
	return c.cfg.BaseURL + path + "?" + params.Encode()
}

func (c *OpenWeatherClient) getJSON(endpoint, u string, dest interface{}) error {
	start := time.Now()
	resp, err := c.client.Get(u)
	metrics.RecordForecastFetch(endpoint, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API error: status %d, body: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}
	return nil
}

func validateCoordinates(lat, lon float64) error {
	if lat < -90 || lat > 90 {
		return fmt.Errorf("latitude out of range: %g", lat)
	}
	if lon < -180 || lon > 180 {
		return fmt.Errorf("longitude out of range: %g", lon)
	}
	return nil
}
