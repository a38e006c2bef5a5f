package main

import (
	"context"
	"log"
	"os"

	"linedry/internal/api"
	"linedry/internal/cache"
	"linedry/internal/config"
	"linedry/internal/database"
	"linedry/internal/recommend"
	"linedry/internal/server"
)

func main() {
	if _, err := config.Load("./config.yaml"); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg := config.Get()

	// Initialize database
	db, err := database.NewDB(config.GetDatabaseDSN())
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Initialize weather client
	var weatherClient api.WeatherClient
	if os.Getenv("USE_MOCK_WEATHER") == "true" || config.GetOpenWeatherConfig().APIKey == "" {
		log.Printf("No OpenWeather API key configured, using mock weather data")
		weatherClient = api.NewMockWeatherClient()
	} else {
		weatherClient = api.NewOpenWeatherClient()
	}

	// Initialize response cache; the server runs without it when Redis
	// is not reachable
	respCache, err := cache.New(context.Background())
	if err != nil {
		log.Printf("Redis unavailable, running without response cache: %v", err)
		respCache = nil
	}
	defer respCache.Close()

	rec := recommend.NewRecommender(cfg.Weather.WindowHours, cfg.Weather.MaxWindows)
	srv := server.NewServer(db, weatherClient, respCache, rec, cfg.Learning.Rate, cfg.Learning.L2)

	log.Printf("Starting server on %s", cfg.Server.Addr)
	if err := srv.Start(cfg.Server.Addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
