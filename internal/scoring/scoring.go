package scoring

import "math"

// WeatherFeatures is the aggregated weather for one drying window
type WeatherFeatures struct {
	TempC  float64 `json:"temp_c"`
	RH     float64 `json:"rh"`      // relative humidity, percent
	WindMS float64 `json:"wind_ms"` // meters per second
	Cloud  float64 `json:"cloud"`   // cloud fraction, 0-1
	RainP  float64 `json:"rain_p"`  // rain probability, 0-1
	RainMM float64 `json:"rain_mm"` // total expected rain, mm
}

// NormalizedFeatures are the model inputs, each guaranteed in [0,1]
type NormalizedFeatures struct {
	FTemp  float64 `json:"f_temp"`
	FHum   float64 `json:"f_hum"`
	FWind  float64 `json:"f_wind"`
	FCloud float64 `json:"f_cloud"`
	FRain  float64 `json:"f_rain"`
	FVPD   float64 `json:"f_vpd"`
}

// Weights is the linear model: bias plus one weight per normalized feature.
// A single instance may be shared across scoring calls but must have at most
// one concurrent mutator (see UpdateWeights).
type Weights struct {
	W0 float64 `json:"w0"`
	W1 float64 `json:"w1"`
	W2 float64 `json:"w2"`
	W3 float64 `json:"w3"`
	W4 float64 `json:"w4"`
	W5 float64 `json:"w5"`
	W6 float64 `json:"w6"`
}

// DefaultWeights returns the starting weight vector used before any
// feedback has been learned
func DefaultWeights() Weights {
	return Weights{
		W0: 0.0,
		W1: 0.25,
		W2: 0.25,
		W3: 0.20,
		W4: 0.10,
		W5: 0.15,
		W6: 0.25,
	}
}

// DryingScore is the scored result for a window. Score is -1.0 when the
// window is unsafe (hard rain veto); unsafe windows never compete with safe
// ones on the linear scale.
type DryingScore struct {
	Score    float64            `json:"score"`
	Unsafe   bool               `json:"unsafe_window"`
	Features NormalizedFeatures `json:"features"`
	Raw      WeatherFeatures    `json:"raw"`
	VPDKPa   float64            `json:"vpd_kpa"`
}

func clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// CalculateVPD computes the vapor-pressure deficit in kPa using the Tetens
// approximation for saturation vapor pressure. Higher VPD means faster
// evaporative drying.
func CalculateVPD(tempC, rh float64) float64 {
	es := 0.6108 * math.Exp((17.27*tempC)/(tempC+237.3))
	e := es * (rh / 100.0)
	return math.Max(es-e, 0.0)
}

// NormalizeFeatures maps raw window weather into bounded [0,1] features and
// returns the VPD in kPa. Inputs outside their expected ranges are clamped,
// so every output field is in [0,1] regardless of input.
func NormalizeFeatures(weather WeatherFeatures) (NormalizedFeatures, float64) {
	vpdKPa := CalculateVPD(weather.TempC, weather.RH)

	features := NormalizedFeatures{
		// 15C -> 0, 30C -> 1
		FTemp: clamp((weather.TempC-15.0)/15.0, 0.0, 1.0),
		// concave penalty, steeper at low humidity
		FHum:   1.0 - math.Pow(clamp(weather.RH/100.0, 0.0, 1.0), 0.7),
		FWind:  clamp(weather.WindMS/6.0, 0.0, 1.0), // saturates at 6 m/s
		FCloud: 1.0 - clamp(weather.Cloud, 0.0, 1.0),
		FRain:  1.0 - clamp(weather.RainP, 0.0, 1.0),
		FVPD:   clamp(vpdKPa/2.5, 0.0, 1.0),
	}

	return features, vpdKPa
}

// Score computes the drying score for a window. Windows with meaningful
// rain risk (probability > 0.50 or more than 0.2mm expected) are vetoed
// outright with the -1.0 sentinel; the linear model is skipped entirely.
func Score(weather WeatherFeatures, weights Weights) DryingScore {
	features, vpdKPa := NormalizeFeatures(weather)

	if weather.RainP > 0.50 || weather.RainMM > 0.2 {
		return DryingScore{
			Score:    -1.0,
			Unsafe:   true,
			Features: features,
			Raw:      weather,
			VPDKPa:   vpdKPa,
		}
	}

	score := weights.W0 +
		weights.W1*features.FTemp +
		weights.W2*features.FHum +
		weights.W3*features.FWind +
		weights.W4*features.FCloud +
		weights.W5*features.FRain +
		weights.W6*features.FVPD

	// Fixed penalties on top of the learned model: cold or still air slows
	// drying regardless of what feedback says.
	if weather.TempC < 18.0 {
		score -= 0.15
	}
	if weather.WindMS < 1.0 {
		score -= 0.10
	}

	return DryingScore{
		Score:    score,
		Unsafe:   false,
		Features: features,
		Raw:      weather,
		VPDKPa:   vpdKPa,
	}
}
