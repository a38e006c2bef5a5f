package main

import (
	"flag"
	"fmt"
	"log"

	"linedry/internal/config"
	"linedry/internal/database"
	"linedry/internal/models"
	"linedry/internal/scoring"
)

func main() {
	days := flag.Int("days", 30, "Replay feedback from the last N days")
	limit := flag.Int("limit", 500, "Maximum feedback records to replay")
	fresh := flag.Bool("fresh", false, "Start from the default weights instead of the stored vector")
	dryRun := flag.Bool("dry-run", false, "Do not persist the resulting weights")
	flag.Parse()

	if _, err := config.Load("./config.yaml"); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg := config.Get()

	db, err := database.NewDB(config.GetDatabaseDSN())
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	weights := scoring.DefaultWeights()
	if !*fresh {
		weights, err = db.GetWeights(database.GlobalWeightScope)
		if err != nil {
			log.Fatalf("Failed to load stored weights: %v", err)
		}
	}

	records, err := db.GetRecentFeedback(*days, *limit)
	if err != nil {
		log.Fatalf("Failed to load feedback: %v", err)
	}
	if len(records) == 0 {
		log.Printf("No feedback in the last %d days, nothing to do", *days)
		return
	}

	log.Printf("Replaying %d feedback records", len(records))
	fmt.Printf("Before: %s\n", formatWeights(weights))

	// Replay oldest first so later reports refine earlier ones
	trained := 0
	for i := len(records) - 1; i >= 0; i-- {
		record := records[i]
		label, ok := trainingLabel(&record)
		if !ok {
			continue
		}

		weather := scoring.WeatherFeatures{
			TempC:  record.WeatherTempC,
			RH:     record.WeatherHumidity,
			WindMS: record.WeatherWindMS,
			Cloud:  0.5,
			RainMM: record.WeatherRainMM,
		}
		if record.WeatherRainMM > 0 {
			weather.RainP = 0.8
		}

		features, _ := scoring.NormalizeFeatures(weather)
		scoring.UpdateWeights(&weights, features, label, cfg.Learning.Rate, cfg.Learning.L2)
		trained++
	}

	fmt.Printf("After:  %s\n", formatWeights(weights))
	log.Printf("Applied %d of %d records (%d had no usable outcome)", trained, len(records), len(records)-trained)

	if *dryRun {
		log.Printf("Dry run, not persisting weights")
		return
	}

	if err := db.SaveWeights(database.GlobalWeightScope, weights); err != nil {
		log.Fatalf("Failed to save weights: %v", err)
	}
}

func trainingLabel(record *models.Feedback) (float64, bool) {
	switch record.DryingResult {
	case "dried":
		return 1.0, true
	case "damp":
		return 0.25, true
	case "rained_on":
		return 0.0, true
	}

	if record.SatisfactionRating >= 4 {
		return 1.0, true
	}
	if record.SatisfactionRating >= 1 {
		return 0.0, true
	}
	return 0, false
}

func formatWeights(w scoring.Weights) string {
	return fmt.Sprintf("w0=%.4f w1=%.4f w2=%.4f w3=%.4f w4=%.4f w5=%.4f w6=%.4f",
		w.W0, w.W1, w.W2, w.W3, w.W4, w.W5, w.W6)
}
