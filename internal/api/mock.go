package api

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"linedry/internal/models"
)

// MockWeatherClient returns synthetic forecasts with realistic diurnal
// shape. Output is deterministic for a given coordinate pair, so it is
// usable both for development without an API key and in tests.
type MockWeatherClient struct {
	TimezoneOffset int
}

func NewMockWeatherClient() *MockWeatherClient {
	return &MockWeatherClient{TimezoneOffset: 7 * 3600}
}

func (m *MockWeatherClient) GetOneCall(lat, lon float64) (*models.OneCallResponse, error) {
	now := time.Now().UTC()
	rng := rand.New(rand.NewSource(seedFor(lat, lon)))

	hourly := make([]models.OneCallHour, 0, 48)
	for hour := 0; hour < 48; hour++ {
		temp := 25.0 + 5.0*math.Sin(float64(hour)*0.26)
		humidity := clamp(60.0+20.0*math.Cos(float64(hour)*0.13), 30.0, 90.0)
		pop := 0.1
		if hour%8 == 0 {
			pop = 0.3
		}

		h := models.OneCallHour{
			Dt:        now.Add(time.Duration(hour) * time.Hour).Unix(),
			Temp:      temp,
			Humidity:  humidity,
			WindSpeed: 2.0 + 3.0*rng.Float64(),
			Clouds:    30.0 + 40.0*rng.Float64(),
			Pop:       pop,
		}
		if pop > 0.2 {
			h.Rain = map[string]float64{"1h": 2.0 * rng.Float64()}
		}
		hourly = append(hourly, h)
	}

	daily := make([]models.OneCallDaily, 0, 7)
	for day := 0; day < 7; day++ {
		temp := 28.0 + 3.0*math.Sin(float64(day)*0.5)
		pop := 0.2
		if day%3 == 0 {
			pop = 0.4
		}

		d := models.OneCallDaily{
			Dt: now.Add(time.Duration(day) * 24 * time.Hour).Unix(),
			Temp: models.OneCallDailyTemp{
				Day:   temp,
				Min:   temp - 5.0,
				Max:   temp + 5.0,
				Night: temp - 3.0,
				Eve:   temp + 2.0,
				Morn:  temp - 2.0,
			},
			Humidity:  65.0 + 15.0*rng.Float64(),
			WindSpeed: 2.5 + 2.0*rng.Float64(),
			Clouds:    40.0 + 30.0*rng.Float64(),
			Pop:       pop,
		}
		if pop > 0.3 {
			rain := 5.0 * rng.Float64()
			d.Rain = &rain
		}
		daily = append(daily, d)
	}

	return &models.OneCallResponse{
		Lat:            lat,
		Lon:            lon,
		Timezone:       "Asia/Bangkok",
		TimezoneOffset: m.TimezoneOffset,
		Hourly:         hourly,
		Daily:          daily,
	}, nil
}

func (m *MockWeatherClient) GetForecast3h(lat, lon float64) (*models.Forecast3hResponse, error) {
	now := time.Now().UTC()
	rng := rand.New(rand.NewSource(seedFor(lat, lon) + 1))

	list := make([]models.Forecast3hItem, 0, 40)
	for i := 0; i < 40; i++ {
		hoursAhead := i * 3
		target := now.Add(time.Duration(hoursAhead) * time.Hour)

		pop := 0.15
		if hoursAhead%24 == 0 {
			pop = 0.35
		}

		item := models.Forecast3hItem{
			Dt: target.Unix(),
			Main: models.Forecast3hMain{
				Temp:     26.0 + 4.0*math.Sin(float64(hoursAhead)*0.26),
				Humidity: 65.0 + 20.0*math.Cos(float64(hoursAhead)*0.13),
			},
			Clouds: models.Forecast3hClouds{All: 35.0 + 35.0*rng.Float64()},
			Wind:   models.Forecast3hWind{Speed: 2.5 + 2.5*rng.Float64()},
			Pop:    pop,
			DtTxt:  target.Format("2006-01-02 15:04:05"),
		}
		if pop > 0.25 {
			item.Rain = map[string]float64{"3h": 3.0 * rng.Float64()}
		}
		list = append(list, item)
	}

	return &models.Forecast3hResponse{
		Cod:     "200",
		Message: 0,
		Cnt:     len(list),
		List:    list,
		City: models.Forecast3hCity{
			ID:       1609350,
			Name:     "Bangkok",
			Country:  "TH",
			Timezone: m.TimezoneOffset,
		},
	}, nil
}

var mockPlaces = []models.GeocodeResult{
	{Name: "Bangkok", Lat: 13.7563, Lon: 100.5018, Country: "TH", State: "Bangkok"},
	{Name: "Chiang Mai", Lat: 18.7883, Lon: 98.9853, Country: "TH", State: "Chiang Mai"},
	{Name: "Phuket", Lat: 7.8804, Lon: 98.3923, Country: "TH", State: "Phuket"},
	{Name: "Pattaya", Lat: 12.9236, Lon: 100.8825, Country: "TH", State: "Chonburi"},
}

func (m *MockWeatherClient) GeocodeDirect(query string, limit int) ([]models.GeocodeResult, error) {
	if query == "" {
		return nil, fmt.Errorf("geocode: query must not be empty")
	}

	q := strings.ToLower(query)
	for _, place := range mockPlaces {
		if strings.Contains(strings.ToLower(place.Name), q) {
			return []models.GeocodeResult{place}, nil
		}
	}

	unknown := mockPlaces[0]
	unknown.Name = "Unknown Location"
	return []models.GeocodeResult{unknown}, nil
}

func (m *MockWeatherClient) GeocodeReverse(lat, lon float64, limit int) ([]models.GeocodeResult, error) {
	name := "Unknown Location"
	for _, place := range mockPlaces {
		if math.Abs(lat-place.Lat) < 1.0 && math.Abs(lon-place.Lon) < 1.0 {
			name = place.Name
			break
		}
	}

	return []models.GeocodeResult{{
		Name:    name,
		Lat:     lat,
		Lon:     lon,
		Country: "TH",
		State:   "Thailand",
	}}, nil
}

func seedFor(lat, lon float64) int64 {
	return int64(lat*1e4)*1e6 + int64(lon*1e4)
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
