package database

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"linedry/internal/metrics"
	"linedry/internal/models"
	"linedry/internal/scoring"
)

// DB represents the database connection
type DB struct {
	conn *sql.DB
}

// GlobalWeightScope is the weight row shared by users without their own
// learned weights.
const GlobalWeightScope = "global"

// NewDB creates a new database connection and initializes the schema
// dsn format: "username:password@tcp(host:port)/dbname?parseTime=true"
// example: "user:pass@tcp(localhost:3306)/linedry?parseTime=true"
func NewDB(dsn string) (*DB, error) {
	conn, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Configure connection pool
	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(5 * time.Minute)

	db := &DB{conn: conn}

	// Initialize schema
	if err := db.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

// initSchema creates the necessary tables
func (db *DB) initSchema() error {
	// MySQL doesn't support multiple statements in one Exec, so we need to split them
	statements := []string{
		`CREATE TABLE IF NOT EXISTS user_preferences (
			user_id BIGINT AUTO_INCREMENT PRIMARY KEY,
			preferred_drying_hours INT NOT NULL DEFAULT 3,
			min_temperature DOUBLE NOT NULL DEFAULT 15.0,
			max_humidity DOUBLE NOT NULL DEFAULT 85.0,
			avoid_rain_probability DOUBLE NOT NULL DEFAULT 0.5,
			location_lat DOUBLE NOT NULL DEFAULT 0,
			location_lon DOUBLE NOT NULL DEFAULT 0,
			location_name VARCHAR(255) NOT NULL DEFAULT '',
			created_at DATETIME(6) NOT NULL,
			updated_at DATETIME(6) NOT NULL
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

		`CREATE TABLE IF NOT EXISTS feedback (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			user_id BIGINT NOT NULL DEFAULT 0,
			window_id VARCHAR(100) NOT NULL,
			feedback_text TEXT NOT NULL,
			satisfaction_rating INT NOT NULL DEFAULT 0,
			drying_result VARCHAR(50) NOT NULL DEFAULT '',
			weather_temp_c DOUBLE NOT NULL DEFAULT 0,
			weather_humidity DOUBLE NOT NULL DEFAULT 0,
			weather_wind_ms DOUBLE NOT NULL DEFAULT 0,
			weather_rain_mm DOUBLE NOT NULL DEFAULT 0,
			predicted_score DOUBLE NOT NULL DEFAULT 0,
			created_at DATETIME(6) NOT NULL,
			INDEX idx_feedback_user_id (user_id),
			INDEX idx_feedback_created_at (created_at)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

		`CREATE TABLE IF NOT EXISTS drying_weights (
			scope VARCHAR(100) PRIMARY KEY,
			w0 DOUBLE NOT NULL,
			w1 DOUBLE NOT NULL,
			w2 DOUBLE NOT NULL,
			w3 DOUBLE NOT NULL,
			w4 DOUBLE NOT NULL,
			w5 DOUBLE NOT NULL,
			w6 DOUBLE NOT NULL,
			updated_at DATETIME(6) NOT NULL
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	}

	for _, stmt := range statements {
		if _, err := db.conn.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}

	return nil
}

// CreateUserPreferences inserts a preference row and returns its id
func (db *DB) CreateUserPreferences(prefs *models.UserPreferences) (int64, error) {
	now := time.Now().UTC()

	query := `INSERT INTO user_preferences (preferred_drying_hours, min_temperature, max_humidity,
	          avoid_rain_probability, location_lat, location_lon, location_name, created_at, updated_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	queryStart := time.Now()
	result, err := db.conn.Exec(query, prefs.PreferredDryingHours, prefs.MinTemperature, prefs.MaxHumidity,
		prefs.AvoidRainProbability, prefs.LocationLat, prefs.LocationLon, prefs.LocationName, now, now)
	metrics.RecordDBQuery("INSERT", "user_preferences", time.Since(queryStart), err)
	if err != nil {
		return 0, fmt.Errorf("failed to insert user preferences: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get inserted id: %w", err)
	}

	prefs.UserID = id
	prefs.CreatedAt = now
	prefs.UpdatedAt = now
	return id, nil
}

// GetUserPreferences retrieves a preference row by user id
func (db *DB) GetUserPreferences(userID int64) (*models.UserPreferences, error) {
	query := `SELECT user_id, preferred_drying_hours, min_temperature, max_humidity, avoid_rain_probability,
	          location_lat, location_lon, location_name, created_at, updated_at
	          FROM user_preferences WHERE user_id = ? LIMIT 1`
	queryStart := time.Now()
	row := db.conn.QueryRow(query, userID)

	var p models.UserPreferences
	err := row.Scan(&p.UserID, &p.PreferredDryingHours, &p.MinTemperature, &p.MaxHumidity, &p.AvoidRainProbability,
		&p.LocationLat, &p.LocationLon, &p.LocationName, &p.CreatedAt, &p.UpdatedAt)
	metrics.RecordDBQuery("SELECT", "user_preferences", time.Since(queryStart), err)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("user not found: %d", userID)
		}
		return nil, fmt.Errorf("failed to scan user preferences: %w", err)
	}

	return &p, nil
}

// UpdateUserPreferences overwrites the preference row for the given user
func (db *DB) UpdateUserPreferences(prefs *models.UserPreferences) error {
	now := time.Now().UTC()

	query := `UPDATE user_preferences SET preferred_drying_hours = ?, min_temperature = ?, max_humidity = ?,
	          avoid_rain_probability = ?, location_lat = ?, location_lon = ?, location_name = ?, updated_at = ?
	          WHERE user_id = ?`
	queryStart := time.Now()
	result, err := db.conn.Exec(query, prefs.PreferredDryingHours, prefs.MinTemperature, prefs.MaxHumidity,
		prefs.AvoidRainProbability, prefs.LocationLat, prefs.LocationLon, prefs.LocationName, now, prefs.UserID)
	metrics.RecordDBQuery("UPDATE", "user_preferences", time.Since(queryStart), err)
	if err != nil {
		return fmt.Errorf("failed to update user preferences: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("user not found: %d", prefs.UserID)
	}

	prefs.UpdatedAt = now
	return nil
}

// CreateFeedback stores a feedback record and returns its id
func (db *DB) CreateFeedback(f *models.Feedback) (int64, error) {
	now := time.Now().UTC()

	defer func() {
		stats := db.conn.Stats()
		metrics.UpdateDBConnectionStats(stats.OpenConnections, stats.InUse, stats.Idle)
	}()

	query := `INSERT INTO feedback (user_id, window_id, feedback_text, satisfaction_rating, drying_result,
	          weather_temp_c, weather_humidity, weather_wind_ms, weather_rain_mm, predicted_score, created_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	queryStart := time.Now()
	result, err := db.conn.Exec(query, f.UserID, f.WindowID, f.FeedbackText, f.SatisfactionRating, f.DryingResult,
		f.WeatherTempC, f.WeatherHumidity, f.WeatherWindMS, f.WeatherRainMM, f.PredictedScore, now)
	metrics.RecordDBQuery("INSERT", "feedback", time.Since(queryStart), err)
	if err != nil {
		return 0, fmt.Errorf("failed to insert feedback: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get inserted id: %w", err)
	}

	f.ID = id
	f.CreatedAt = now
	return id, nil
}

// GetUserFeedback retrieves recent feedback for one user, newest first
func (db *DB) GetUserFeedback(userID int64, limit int) ([]models.Feedback, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}

	query := `SELECT id, user_id, window_id, feedback_text, satisfaction_rating, drying_result,
	          weather_temp_c, weather_humidity, weather_wind_ms, weather_rain_mm, predicted_score, created_at
	          FROM feedback WHERE user_id = ? ORDER BY created_at DESC LIMIT ?`
	return db.queryFeedback(query, userID, limit)
}

// GetRecentFeedback retrieves feedback across all users since the given
// number of days ago, newest first
func (db *DB) GetRecentFeedback(days, limit int) ([]models.Feedback, error) {
	if limit <= 0 {
		limit = 100
	}
	if limit > 500 {
		limit = 500
	}
	since := time.Now().UTC().AddDate(0, 0, -days)

	query := `SELECT id, user_id, window_id, feedback_text, satisfaction_rating, drying_result,
	          weather_temp_c, weather_humidity, weather_wind_ms, weather_rain_mm, predicted_score, created_at
	          FROM feedback WHERE created_at >= ? ORDER BY created_at DESC LIMIT ?`
	return db.queryFeedback(query, since, limit)
}

func (db *DB) queryFeedback(query string, args ...interface{}) ([]models.Feedback, error) {
	queryStart := time.Now()
	rows, err := db.conn.Query(query, args...)
	metrics.RecordDBQuery("SELECT", "feedback", time.Since(queryStart), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback: %w", err)
	}
	defer rows.Close()

	var records []models.Feedback
	for rows.Next() {
		var f models.Feedback
		if err := rows.Scan(&f.ID, &f.UserID, &f.WindowID, &f.FeedbackText, &f.SatisfactionRating, &f.DryingResult,
			&f.WeatherTempC, &f.WeatherHumidity, &f.WeatherWindMS, &f.WeatherRainMM, &f.PredictedScore, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}
		records = append(records, f)
	}

	return records, rows.Err()
}

// FeedbackStats summarizes stored feedback
type FeedbackStats struct {
	TotalFeedback   int64            `json:"total_feedback"`
	AvgSatisfaction float64          `json:"avg_satisfaction"`
	DryingResults   map[string]int64 `json:"drying_results"`
}

// GetFeedbackStats returns aggregate feedback counts
func (db *DB) GetFeedbackStats() (*FeedbackStats, error) {
	stats := &FeedbackStats{DryingResults: make(map[string]int64)}

	row := db.conn.QueryRow(`SELECT COUNT(*), COALESCE(AVG(NULLIF(satisfaction_rating, 0)), 0) FROM feedback`)
	if err := row.Scan(&stats.TotalFeedback, &stats.AvgSatisfaction); err != nil {
		return nil, fmt.Errorf("failed to scan feedback stats: %w", err)
	}

	rows, err := db.conn.Query(`SELECT drying_result, COUNT(*) FROM feedback WHERE drying_result != '' GROUP BY drying_result`)
	if err != nil {
		return nil, fmt.Errorf("failed to query drying results: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var result string
		var count int64
		if err := rows.Scan(&result, &count); err != nil {
			return nil, fmt.Errorf("failed to scan drying result: %w", err)
		}
		stats.DryingResults[result] = count
	}

	return stats, rows.Err()
}

// GetWeights retrieves the weight vector for the given scope. When the
// scope has no stored row it falls back to the global scope, and when
// that is missing too it returns the built-in defaults.
func (db *DB) GetWeights(scope string) (scoring.Weights, error) {
	query := `SELECT w0, w1, w2, w3, w4, w5, w6 FROM drying_weights WHERE scope = ? LIMIT 1`

	for _, s := range []string{scope, GlobalWeightScope} {
		queryStart := time.Now()
		row := db.conn.QueryRow(query, s)

		var w scoring.Weights
		err := row.Scan(&w.W0, &w.W1, &w.W2, &w.W3, &w.W4, &w.W5, &w.W6)
		metrics.RecordDBQuery("SELECT", "drying_weights", time.Since(queryStart), err)
		if err == nil {
			return w, nil
		}
		if err != sql.ErrNoRows {
			return scoring.Weights{}, fmt.Errorf("failed to scan weights: %w", err)
		}
	}

	return scoring.DefaultWeights(), nil
}

// SaveWeights upserts the weight vector for the given scope
func (db *DB) SaveWeights(scope string, w scoring.Weights) error {
	query := `INSERT INTO drying_weights (scope, w0, w1, w2, w3, w4, w5, w6, updated_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	          ON DUPLICATE KEY UPDATE w0 = VALUES(w0), w1 = VALUES(w1), w2 = VALUES(w2), w3 = VALUES(w3),
	          w4 = VALUES(w4), w5 = VALUES(w5), w6 = VALUES(w6), updated_at = VALUES(updated_at)`
	queryStart := time.Now()
	_, err := db.conn.Exec(query, scope, w.W0, w.W1, w.W2, w.W3, w.W4, w.W5, w.W6, time.Now().UTC())
	metrics.RecordDBQuery("INSERT", "drying_weights", time.Since(queryStart), err)
	if err != nil {
		return fmt.Errorf("failed to save weights: %w", err)
	}

	log.Printf("Saved weight vector for scope %s", scope)
	return nil
}

// Ping verifies the database connection is alive
func (db *DB) Ping() error {
	return db.conn.Ping()
}

// Close closes the database connection
func (db *DB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}
