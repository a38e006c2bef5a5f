package models

import "time"

// OneCallResponse represents weather data from the OpenWeather One Call API
type OneCallResponse struct {
	Lat            float64        `json:"lat"`
	Lon            float64        `json:"lon"`
	Timezone       string         `json:"timezone"`
	TimezoneOffset int            `json:"timezone_offset"`
	Hourly         []OneCallHour  `json:"hourly"`
	Daily          []OneCallDaily `json:"daily"`
}

// OneCallHour is a single native-hourly forecast entry (48h horizon)
type OneCallHour struct {
	Dt        int64              `json:"dt"`
	Temp      float64            `json:"temp"`
	Humidity  float64            `json:"humidity"`
	WindSpeed float64            `json:"wind_speed"`
	Clouds    float64            `json:"clouds"`
	Pop       float64            `json:"pop"`
	Rain      map[string]float64 `json:"rain,omitempty"` // keyed "1h", mm
}

// OneCallDaily is a single daily forecast entry (8-day horizon)
type OneCallDaily struct {
	Dt        int64            `json:"dt"`
	Temp      OneCallDailyTemp `json:"temp"`
	Humidity  float64          `json:"humidity"`
	WindSpeed float64          `json:"wind_speed"`
	Clouds    float64          `json:"clouds"`
	Pop       float64          `json:"pop"`
	Rain      *float64         `json:"rain,omitempty"` // mm over the day
}

type OneCallDailyTemp struct {
	Day   float64 `json:"day"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Night float64 `json:"night"`
	Eve   float64 `json:"eve"`
	Morn  float64 `json:"morn"`
}

// Forecast3hResponse represents the OpenWeather 5-day / 3-hour forecast API response
type Forecast3hResponse struct {
	Cod     string           `json:"cod"`
	Message float64          `json:"message"`
	Cnt     int              `json:"cnt"`
	List    []Forecast3hItem `json:"list"`
	City    Forecast3hCity   `json:"city"`
}

// Forecast3hItem is one 3-hour forecast bucket
type Forecast3hItem struct {
	Dt     int64              `json:"dt"`
	Main   Forecast3hMain     `json:"main"`
	Clouds Forecast3hClouds   `json:"clouds"`
	Wind   Forecast3hWind     `json:"wind"`
	Pop    float64            `json:"pop"`
	Rain   map[string]float64 `json:"rain,omitempty"` // keyed "3h", mm
	DtTxt  string             `json:"dt_txt"`
}

type Forecast3hMain struct {
	Temp     float64 `json:"temp"`
	TempMin  float64 `json:"temp_min"`
	TempMax  float64 `json:"temp_max"`
	Pressure float64 `json:"pressure"`
	Humidity float64 `json:"humidity"`
}

type Forecast3hClouds struct {
	All float64 `json:"all"` // percent
}

type Forecast3hWind struct {
	Speed float64 `json:"speed"`
	Deg   float64 `json:"deg"`
}

type Forecast3hCity struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Country  string `json:"country"`
	Timezone int    `json:"timezone"` // UTC offset in seconds
	Sunrise  int64  `json:"sunrise"`
	Sunset   int64  `json:"sunset"`
}

// GeocodeResult is a single OpenWeather geocoding API result
type GeocodeResult struct {
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Country string  `json:"country"`
	State   string  `json:"state,omitempty"`
}

// UserPreferences holds per-user drying preferences
type UserPreferences struct {
	UserID               int64     `json:"user_id"`
	PreferredDryingHours int       `json:"preferred_drying_hours"`
	MinTemperature       float64   `json:"min_temperature"`
	MaxHumidity          float64   `json:"max_humidity"`
	AvoidRainProbability float64   `json:"avoid_rain_probability"`
	LocationLat          float64   `json:"location_lat"`
	LocationLon          float64   `json:"location_lon"`
	LocationName         string    `json:"location_name"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// Feedback is a stored user report on how a recommended window worked out
type Feedback struct {
	ID                 int64     `json:"id"`
	UserID             int64     `json:"user_id"`
	WindowID           string    `json:"window_id"`
	FeedbackText       string    `json:"feedback_text"`
	SatisfactionRating int       `json:"satisfaction_rating"` // 1-5, 0 when not given
	DryingResult       string    `json:"drying_result"`       // "dried", "damp" or "rained_on"
	WeatherTempC       float64   `json:"weather_temp_c"`
	WeatherHumidity    float64   `json:"weather_humidity"`
	WeatherWindMS      float64   `json:"weather_wind_ms"`
	WeatherRainMM      float64   `json:"weather_rain_mm"`
	PredictedScore     float64   `json:"predicted_score"`
	CreatedAt          time.Time `json:"created_at"`
}
