package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"linedry/internal/api"
	"linedry/internal/cache"
	"linedry/internal/database"
	"linedry/internal/forecast"
	"linedry/internal/metrics"
	"linedry/internal/models"
	"linedry/internal/recommend"
	"linedry/internal/scoring"
)

// Store is the slice of the database the server depends on
type Store interface {
	CreateUserPreferences(prefs *models.UserPreferences) (int64, error)
	GetUserPreferences(userID int64) (*models.UserPreferences, error)
	UpdateUserPreferences(prefs *models.UserPreferences) error
	CreateFeedback(f *models.Feedback) (int64, error)
	GetFeedbackStats() (*database.FeedbackStats, error)
	GetWeights(scope string) (scoring.Weights, error)
	SaveWeights(scope string, w scoring.Weights) error
}

type FeedbackRequest struct {
	UserID             int64              `json:"user_id"`
	WindowID           string             `json:"window_id"`
	FeedbackText       string             `json:"feedback_text"`
	SatisfactionRating int                `json:"satisfaction_rating"`
	DryingResult       string             `json:"drying_result"`
	WeatherConditions  *WeatherConditions `json:"weather_conditions"`
	PredictedScore     float64            `json:"predicted_score"`
}

type WeatherConditions struct {
	TempC    float64 `json:"temp_c"`
	Humidity float64 `json:"humidity"`
	WindMS   float64 `json:"wind_ms"`
	RainMM   float64 `json:"rain_mm"`
}

type LocationInfo struct {
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Name    string  `json:"name,omitempty"`
	Country string  `json:"country,omitempty"`
}

// Server represents the HTTP server
type Server struct {
	db            Store
	weatherClient api.WeatherClient
	respCache     *cache.Cache
	recommender   *recommend.Recommender
	mux           *http.ServeMux

	learningRate float64
	l2           float64

	mu      sync.Mutex
	weights scoring.Weights
}

// NewServer creates a new HTTP server. The weight vector is loaded from
// the store so learning survives restarts.
func NewServer(db Store, client api.WeatherClient, respCache *cache.Cache, rec *recommend.Recommender, learningRate, l2 float64) *Server {
	weights := scoring.DefaultWeights()
	if db != nil {
		w, err := db.GetWeights(database.GlobalWeightScope)
		if err != nil {
			log.Printf("Failed to load stored weights, using defaults: %v", err)
		} else {
			weights = w
		}
	}

	s := &Server{
		db:            db,
		weatherClient: client,
		respCache:     respCache,
		recommender:   rec,
		mux:           http.NewServeMux(),
		learningRate:  learningRate,
		l2:            l2,
		weights:       weights,
	}

	// Register routes
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/geocode", s.handleGeocode)
	s.mux.HandleFunc("/forecast", s.handleForecast)
	s.mux.HandleFunc("/drying-windows", s.handleDryingWindows)
	s.mux.HandleFunc("/recommendations", s.handleRecommendations)
	s.mux.HandleFunc("/feedback", s.handleFeedback)
	s.mux.HandleFunc("/feedback/stats", s.handleFeedbackStats)
	s.mux.HandleFunc("/preferences", s.handleCreatePreferences)
	s.mux.HandleFunc("/preferences/", s.handlePreferences)
	s.mux.Handle("/metrics", promhttp.Handler())

	return s
}

// Start starts the HTTP server
func (s *Server) Start(addr string) error {
	return http.ListenAndServe(addr, s.mux)
}

// ServeHTTP dispatches to the registered routes
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Weights returns a copy of the current weight vector
func (s *Server) Weights() scoring.Weights {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.weights
}

// handleHealth returns the server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().String(),
	})
}

// handleGeocode resolves a place name, or reverse-geocodes when lat and
// lon are given
func (s *Server) handleGeocode(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 5)
	if limit > 10 {
		limit = 10
	}

	latStr := r.URL.Query().Get("lat")
	lonStr := r.URL.Query().Get("lon")
	query := r.URL.Query().Get("q")

	var results []models.GeocodeResult
	var cacheKey string
	var err error

	switch {
	case latStr != "" && lonStr != "":
		var lat, lon float64
		lat, lon, err = parseCoordinates(latStr, lonStr)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		cacheKey = fmt.Sprintf("reverse:%s:%d", cache.ForecastKey(lat, lon), limit)
		if hit, _ := s.respCache.Get(r.Context(), "geocode", cacheKey, &results); hit {
			break
		}
		results, err = s.weatherClient.GeocodeReverse(lat, lon, limit)
	case query != "":
		cacheKey = fmt.Sprintf("direct:%s:%d", strings.ToLower(query), limit)
		if hit, _ := s.respCache.Get(r.Context(), "geocode", cacheKey, &results); hit {
			break
		}
		results, err = s.weatherClient.GeocodeDirect(query, limit)
	default:
		http.Error(w, "Either q or lat/lon query parameters are required", http.StatusBadRequest)
		return
	}

	if err == nil && len(results) > 0 {
		s.respCache.Set(r.Context(), "geocode", cacheKey, results, cache.GeocodeTTL)
	}

	if err != nil {
		log.Printf("Geocoding failed: %v", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(results)
}

// handleForecast returns the fused hourly timeline for a coordinate
func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	lat, lon, err := parseCoordinates(r.URL.Query().Get("lat"), r.URL.Query().Get("lon"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	hours := queryInt(r, "hours", 48)
	if hours > forecast.TimelineHours {
		hours = forecast.TimelineHours
	}
	if hours < 1 {
		hours = 1
	}

	timeline, err := s.fetchTimeline(r, lat, lon)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"location":     LocationInfo{Lat: lat, Lon: lon},
		"hourly_data":  timeline[:hours],
		"generated_at": time.Now().UTC(),
	})
}

// handleDryingWindows returns scored windows sorted best-first
func (s *Server) handleDryingWindows(w http.ResponseWriter, r *http.Request) {
	lat, lon, err := parseCoordinates(r.URL.Query().Get("lat"), r.URL.Query().Get("lon"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	windowHours := queryInt(r, "window_hours", 0)
	maxWindows := queryInt(r, "max_windows", 0)
	if maxWindows > 20 {
		maxWindows = 20
	}

	windows, err := s.rankWindows(r, lat, lon, windowHours, maxWindows)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"location":     LocationInfo{Lat: lat, Lon: lon},
		"windows":      windows,
		"generated_at": time.Now().UTC(),
	})
}

// handleRecommendations returns the top windows with drying tips
func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	lat, lon, err := parseCoordinates(r.URL.Query().Get("lat"), r.URL.Query().Get("lon"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	windowHours := queryInt(r, "window_hours", 0)

	windows, err := s.rankWindows(r, lat, lon, windowHours, 3)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	tips := []string{
		"Check weather conditions before hanging clothes",
		"Avoid drying during rain or high humidity",
		"Wind helps with faster drying",
	}
	if len(windows) > 0 {
		tips = recommend.DryingTips(windows[0].Window.Weather, windows[0].Score)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"location":     LocationInfo{Lat: lat, Lon: lon},
		"best_windows": windows,
		"tips":         tips,
		"generated_at": time.Now().UTC(),
	})
}

// handleFeedback stores a feedback report and folds it into the weight
// vector
func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if req.WindowID == "" {
		http.Error(w, "window_id is required", http.StatusBadRequest)
		return
	}

	record := &models.Feedback{
		UserID:             req.UserID,
		WindowID:           req.WindowID,
		FeedbackText:       req.FeedbackText,
		SatisfactionRating: req.SatisfactionRating,
		DryingResult:       req.DryingResult,
		PredictedScore:     req.PredictedScore,
	}
	if req.WeatherConditions != nil {
		record.WeatherTempC = req.WeatherConditions.TempC
		record.WeatherHumidity = req.WeatherConditions.Humidity
		record.WeatherWindMS = req.WeatherConditions.WindMS
		record.WeatherRainMM = req.WeatherConditions.RainMM
	}

	id, err := s.db.CreateFeedback(record)
	if err != nil {
		log.Printf("Failed to save feedback: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	learned := s.learnFromFeedback(record)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"id":      id,
		"learned": learned,
		"message": "Feedback submitted successfully",
	})
}

// learnFromFeedback derives a label from the report and runs one weight
// update. Reports without a usable outcome are stored but not learned
// from.
func (s *Server) learnFromFeedback(record *models.Feedback) bool {
	label, ok := feedbackLabel(record)
	if !ok {
		return false
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

	s.mu.Lock()
	scoring.UpdateWeights(&s.weights, features, label, s.learningRate, s.l2)
	updated := s.weights
	s.mu.Unlock()

	metrics.WeightUpdatesTotal.Inc()

	if err := s.db.SaveWeights(database.GlobalWeightScope, updated); err != nil {
		log.Printf("Failed to persist weights: %v", err)
	}
	return true
}

// feedbackLabel maps a report to a training label. The drying result
// wins over the satisfaction rating when both are present.
func feedbackLabel(record *models.Feedback) (float64, bool) {
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

// handleFeedbackStats returns aggregate feedback counts
func (s *Server) handleFeedbackStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.db.GetFeedbackStats()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

// handleCreatePreferences creates a new preference row
func (s *Server) handleCreatePreferences(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var prefs models.UserPreferences
	if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if _, err := s.db.CreateUserPreferences(&prefs); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(prefs)
}

// handlePreferences serves GET and POST for /preferences/{user_id}
func (s *Server) handlePreferences(w http.ResponseWriter, r *http.Request) {
	idStr := strings.TrimPrefix(r.URL.Path, "/preferences/")
	userID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		http.Error(w, "Invalid user id: "+idStr, http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		prefs, err := s.db.GetUserPreferences(userID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(prefs)

	case http.MethodPost:
		var prefs models.UserPreferences
		if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
			http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
			return
		}
		prefs.UserID = userID
		if err := s.db.UpdateUserPreferences(&prefs); err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(prefs)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// fetchTimeline retrieves both upstream forecasts, consulting the cache
// first, and fuses them into the hourly timeline. One upstream source
// failing is tolerated; both failing is an error only when neither
// response is cached.
func (s *Server) fetchTimeline(r *http.Request, lat, lon float64) ([]forecast.HourlyRecord, error) {
	ctx := r.Context()
	key := cache.ForecastKey(lat, lon)

	var onecall *models.OneCallResponse
	var cached models.OneCallResponse
	if hit, err := s.respCache.Get(ctx, "onecall", key, &cached); err == nil && hit {
		onecall = &cached
	} else {
		resp, err := s.weatherClient.GetOneCall(lat, lon)
		if err != nil {
			log.Printf("One Call fetch failed for %.4f,%.4f: %v", lat, lon, err)
		} else {
			onecall = resp
			if err := s.respCache.Set(ctx, "onecall", key, resp, cache.ForecastTTL); err != nil {
				log.Printf("Failed to cache One Call response: %v", err)
			}
		}
	}

	var forecast3h *models.Forecast3hResponse
	var cached3h models.Forecast3hResponse
	if hit, err := s.respCache.Get(ctx, "forecast3h", key, &cached3h); err == nil && hit {
		forecast3h = &cached3h
	} else {
		resp, err := s.weatherClient.GetForecast3h(lat, lon)
		if err != nil {
			log.Printf("3-hour forecast fetch failed for %.4f,%.4f: %v", lat, lon, err)
		} else {
			forecast3h = resp
			if err := s.respCache.Set(ctx, "forecast3h", key, resp, cache.ForecastTTL); err != nil {
				log.Printf("Failed to cache 3-hour forecast response: %v", err)
			}
		}
	}

	if onecall == nil && forecast3h == nil {
		return nil, errNoForecastData
	}

	timezoneOffset := 0
	if onecall != nil {
		timezoneOffset = onecall.TimezoneOffset
	} else {
		timezoneOffset = forecast3h.City.Timezone
	}

	return forecast.Fuse(onecall, forecast3h, timezoneOffset), nil
}

func (s *Server) rankWindows(r *http.Request, lat, lon float64, windowHours, maxWindows int) ([]recommend.RankedWindow, error) {
	timeline, err := s.fetchTimeline(r, lat, lon)
	if err != nil {
		return nil, err
	}

	rec := s.recommender
	if windowHours > 0 || maxWindows > 0 {
		rec = rec.With(windowHours, maxWindows)
	}

	return rec.Rank(timeline, s.Weights()), nil
}

func parseCoordinates(latStr, lonStr string) (float64, float64, error) {
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return 0, 0, errInvalidLatitude
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return 0, 0, errInvalidLongitude
	}
	if lat < -90 || lat > 90 {
		return 0, 0, errInvalidLatitude
	}
	if lon < -180 || lon > 180 {
		return 0, 0, errInvalidLongitude
	}
	return lat, lon, nil
}

func queryInt(r *http.Request, key string, def int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}
