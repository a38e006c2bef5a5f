package config

type OpenWeatherConfig struct {
	APIKey             string
	BaseURL            string
	OneCallPath        string
	Forecast3hPath     string
	GeocodeDirectPath  string
	GeocodeReversePath string
}

func GetOpenWeatherConfig() OpenWeatherConfig {
	return OpenWeatherConfig{
		APIKey:             getEnv("OPENWEATHER_API_KEY", ""),
		BaseURL:            getEnv("OPENWEATHER_BASE_URL", "https://api.openweathermap.org"),
		OneCallPath:        getEnv("OPENWEATHER_ONECALL_PATH", "/data/3.0/onecall"),
		Forecast3hPath:     getEnv("OPENWEATHER_FORECAST_PATH", "/data/2.5/forecast"),
		GeocodeDirectPath:  getEnv("OPENWEATHER_GEOCODE_PATH", "/geo/1.0/direct"),
		GeocodeReversePath: getEnv("OPENWEATHER_REVERSE_PATH", "/geo/1.0/reverse"),
	}
}
