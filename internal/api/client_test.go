package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"linedry/internal/config"
)

func testClient(baseURL string) *OpenWeatherClient {
	return &OpenWeatherClient{
		client: &http.Client{Timeout: 5 * time.Second},
		cfg: config.OpenWeatherConfig{
			APIKey:             "testkey",
			BaseURL:            baseURL,
			OneCallPath:        "/data/3.0/onecall",
			Forecast3hPath:     "/data/2.5/forecast",
			GeocodeDirectPath:  "/geo/1.0/direct",
			GeocodeReversePath: "/geo/1.0/reverse",
		},
	}
}

func TestNewOpenWeatherClient(t *testing.T) {
	client := NewOpenWeatherClient()
	if client == nil {
		t.Fatal("NewOpenWeatherClient() returned nil")
	}

	if client.client == nil {
		t.Error("OpenWeatherClient.client should not be nil")
	}
}

func TestBuildURL(t *testing.T) {
	client := testClient("https://api.example.com")

	u := client.buildURL("/data/3.0/onecall", map[string][]string{
		"lat": {"13.7563"},
		"lon": {"100.5018"},
	})

	if !strings.HasPrefix(u, "https://api.example.com/data/3.0/onecall?") {
		t.Errorf("buildURL() = %v, want onecall path prefix", u)
	}

	for _, want := range []string{"appid=testkey", "lat=13.7563", "lon=100.5018"} {
		if !strings.Contains(u, want) {
			t.Errorf("buildURL() = %v, missing %v", u, want)
		}
	}
}

func TestValidateCoordinates(t *testing.T) {
	tests := []struct {
		name    string
		lat     float64
		lon     float64
		wantErr bool
	}{
		{"valid", 13.7563, 100.5018, false},
		{"valid extremes", -90.0, 180.0, false},
		{"latitude too large", 90.1, 0.0, true},
		{"latitude too small", -90.1, 0.0, true},
		{"longitude too large", 0.0, 180.1, true},
		{"longitude too small", 0.0, -180.1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateCoordinates(tt.lat, tt.lon)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateCoordinates(%v, %v) error = %v, wantErr %v", tt.lat, tt.lon, err, tt.wantErr)
			}
		})
	}
}

func TestGetOneCall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/data/3.0/onecall" {
			t.Errorf("Unexpected path: %v", r.URL.Path)
		}
		if r.URL.Query().Get("appid") != "testkey" {
			t.Errorf("Missing appid query param")
		}
		if r.URL.Query().Get("units") != "metric" {
			t.Errorf("Expected metric units, got %v", r.URL.Query().Get("units"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"lat": 13.7563,
			"lon": 100.5018,
			"timezone": "Asia/Bangkok",
			"timezone_offset": 25200,
			"hourly": [{"dt": 1750000000, "temp": 30.5, "humidity": 70, "wind_speed": 3.2, "clouds": 40, "pop": 0.2, "rain": {"1h": 0.5}}],
			"daily": []
		}`))
	}))
	defer srv.Close()

	client := testClient(srv.URL)

	resp, err := client.GetOneCall(13.7563, 100.5018)
	if err != nil {
		t.Fatalf("GetOneCall() error = %v", err)
	}

	if resp.TimezoneOffset != 25200 {
		t.Errorf("TimezoneOffset = %v, want 25200", resp.TimezoneOffset)
	}

	if len(resp.Hourly) != 1 {
		t.Fatalf("Expected 1 hourly entry, got %d", len(resp.Hourly))
	}

	if resp.Hourly[0].Temp != 30.5 {
		t.Errorf("Hourly[0].Temp = %v, want 30.5", resp.Hourly[0].Temp)
	}

	if resp.Hourly[0].Rain["1h"] != 0.5 {
		t.Errorf("Hourly[0].Rain[\"1h\"] = %v, want 0.5", resp.Hourly[0].Rain["1h"])
	}
}

func TestGetOneCall_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"cod": 401, "message": "Invalid API key"}`))
	}))
	defer srv.Close()

	client := testClient(srv.URL)

	_, err := client.GetOneCall(13.7563, 100.5018)
	if err == nil {
		t.Error("Expected error for 401 response, got nil")
	}
}

func TestGetOneCall_InvalidCoordinates(t *testing.T) {
	client := testClient("https://api.example.com")

	_, err := client.GetOneCall(999.0, 0.0)
	if err == nil {
		t.Error("Expected error for out-of-range latitude, got nil")
	}
}

func TestGetForecast3h(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/data/2.5/forecast" {
			t.Errorf("Unexpected path: %v", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"cod": "200",
			"message": 0,
			"cnt": 1,
			"list": [{"dt": 1750000000, "main": {"temp": 28.0, "humidity": 65}, "clouds": {"all": 20}, "wind": {"speed": 4.0}, "pop": 0.1, "rain": {"3h": 1.2}, "dt_txt": "2025-06-15 12:00:00"}],
			"city": {"id": 1609350, "name": "Bangkok", "country": "TH", "timezone": 25200}
		}`))
	}))
	defer srv.Close()

	client := testClient(srv.URL)

	resp, err := client.GetForecast3h(13.7563, 100.5018)
	if err != nil {
		t.Fatalf("GetForecast3h() error = %v", err)
	}

	if resp.Cnt != 1 || len(resp.List) != 1 {
		t.Fatalf("Expected 1 list entry, got cnt=%d len=%d", resp.Cnt, len(resp.List))
	}

	if resp.List[0].Rain["3h"] != 1.2 {
		t.Errorf("List[0].Rain[\"3h\"] = %v, want 1.2", resp.List[0].Rain["3h"])
	}

	if resp.City.Name != "Bangkok" {
		t.Errorf("City.Name = %v, want Bangkok", resp.City.Name)
	}
}

func TestGeocodeDirect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/geo/1.0/direct" {
			t.Errorf("Unexpected path: %v", r.URL.Path)
		}
		if r.URL.Query().Get("q") != "Bangkok" {
			t.Errorf("Query q = %v, want Bangkok", r.URL.Query().Get("q"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"name": "Bangkok", "lat": 13.7563, "lon": 100.5018, "country": "TH", "state": "Bangkok"}]`))
	}))
	defer srv.Close()

	client := testClient(srv.URL)

	results, err := client.GeocodeDirect("Bangkok", 5)
	if err != nil {
		t.Fatalf("GeocodeDirect() error = %v", err)
	}

	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}

	if results[0].Name != "Bangkok" || results[0].Country != "TH" {
		t.Errorf("Unexpected result: %+v", results[0])
	}
}

func TestGeocodeDirect_EmptyQuery(t *testing.T) {
	client := testClient("https://api.example.com")

	_, err := client.GeocodeDirect("", 5)
	if err == nil {
		t.Error("Expected error for empty query, got nil")
	}
}
