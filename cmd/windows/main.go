package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"linedry/internal/api"
	"linedry/internal/config"
	"linedry/internal/forecast"
	"linedry/internal/recommend"
	"linedry/internal/scoring"
)

func main() {
	location := flag.String("location", "", "Named location from config.yaml, or a place name to geocode")
	lat := flag.Float64("lat", 0, "Latitude (used when -location is not given)")
	lon := flag.Float64("lon", 0, "Longitude (used when -location is not given)")
	windowHours := flag.Int("window-hours", 0, "Window width in hours (default from config)")
	maxWindows := flag.Int("max-windows", 0, "Maximum windows to print (default from config)")
	flag.Parse()

	if _, err := config.Load("./config.yaml"); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg := config.Get()

	var weatherClient api.WeatherClient
	if os.Getenv("USE_MOCK_WEATHER") == "true" || config.GetOpenWeatherConfig().APIKey == "" {
		log.Printf("No OpenWeather API key configured, using mock weather data")
		weatherClient = api.NewMockWeatherClient()
	} else {
		weatherClient = api.NewOpenWeatherClient()
	}

	latitude, longitude, name := resolveLocation(cfg, weatherClient, *location, *lat, *lon)

	log.Printf("Fetching forecast for %s (%.4f, %.4f)...", name, latitude, longitude)

	onecall, err := weatherClient.GetOneCall(latitude, longitude)
	if err != nil {
		log.Printf("One Call fetch failed: %v", err)
	}
	forecast3h, err := weatherClient.GetForecast3h(latitude, longitude)
	if err != nil {
		log.Printf("3-hour forecast fetch failed: %v", err)
	}
	if onecall == nil && forecast3h == nil {
		log.Fatalf("Failed to fetch any weather data")
	}

	timezoneOffset := cfg.Weather.TimezoneOffsetSeconds
	if onecall != nil {
		timezoneOffset = onecall.TimezoneOffset
	}

	timeline := forecast.Fuse(onecall, forecast3h, timezoneOffset)

	hours := cfg.Weather.WindowHours
	if *windowHours > 0 {
		hours = *windowHours
	}
	limit := cfg.Weather.MaxWindows
	if *maxWindows > 0 {
		limit = *maxWindows
	}

	rec := recommend.NewRecommender(hours, limit)
	ranked := rec.Rank(timeline, scoring.DefaultWeights())

	fmt.Printf("=== Drying windows for %s ===\n", name)
	for i, w := range ranked {
		verdict := fmt.Sprintf("score %.2f", w.Score.Score)
		if w.Score.Unsafe {
			verdict = "UNSAFE (rain)"
		}
		fmt.Printf("%2d. %s - %s | %-13s | %-13s | %.1f°C  RH %.0f%%  wind %.1f m/s  rain %.1f mm\n",
			i+1,
			w.Window.Start.Format("Mon 15:04"),
			w.Window.End.Format("15:04"),
			verdict,
			w.Conditions,
			w.Window.Weather.TempC,
			w.Window.Weather.RH,
			w.Window.Weather.WindMS,
			w.Window.Weather.RainMM,
		)
	}
	if len(ranked) == 0 {
		fmt.Println("No windows available")
	}
}

// resolveLocation picks coordinates from the flags, the config's named
// locations, or the geocoder, in that order.
func resolveLocation(cfg *config.Config, client api.WeatherClient, location string, lat, lon float64) (float64, float64, string) {
	if location == "" {
		if lat == 0 && lon == 0 && len(cfg.Locations) > 0 {
			loc := cfg.Locations[0]
			return loc.Latitude, loc.Longitude, loc.Name
		}
		return lat, lon, fmt.Sprintf("%.4f,%.4f", lat, lon)
	}

	for _, loc := range cfg.Locations {
		if loc.Name == location {
			return loc.Latitude, loc.Longitude, loc.Name
		}
	}

	results, err := client.GeocodeDirect(location, 1)
	if err != nil || len(results) == 0 {
		log.Fatalf("Failed to resolve location %q: %v", location, err)
	}
	return results[0].Lat, results[0].Lon, results[0].Name
}
