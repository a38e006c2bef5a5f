package forecast

import (
	"time"

	"linedry/internal/models"
)

// Default values used when a source does not cover an hour or a field is
// absent from the raw payload.
const (
	DefaultTempC  = 25.0
	DefaultRH     = 60.0
	DefaultWindMS = 2.0
	DefaultCloud  = 0.5
)

// HourlyRecord is the canonical per-hour weather representation every
// provider payload is normalized into. One record per hour of the timeline.
type HourlyRecord struct {
	TS     time.Time `json:"ts"`
	TempC  float64   `json:"temp_c"`
	RH     float64   `json:"rh"`      // percent, 0-100
	WindMS float64   `json:"wind_ms"` // >= 0
	Cloud  float64   `json:"cloud"`   // fraction, 0-1
	RainP  float64   `json:"rain_p"`  // probability, 0-1
	RainMM float64   `json:"rain_mm"` // >= 0
}

// DefaultRecord returns the fallback record for an hour no source covers
func DefaultRecord(ts time.Time) HourlyRecord {
	return HourlyRecord{
		TS:     ts,
		TempC:  DefaultTempC,
		RH:     DefaultRH,
		WindMS: DefaultWindMS,
		Cloud:  DefaultCloud,
		RainP:  0.0,
		RainMM: 0.0,
	}
}

// FromOneCallHour converts a native-hourly entry 1:1 into an HourlyRecord.
// Cloud cover arrives as a percentage and is converted to a fraction; a
// missing rain map means no rain.
func FromOneCallHour(hour models.OneCallHour, zone *time.Location) HourlyRecord {
	rainMM := 0.0
	if hour.Rain != nil {
		rainMM = hour.Rain["1h"]
	}

	return HourlyRecord{
		TS:     time.Unix(hour.Dt, 0).In(zone),
		TempC:  hour.Temp,
		RH:     hour.Humidity,
		WindMS: hour.WindSpeed,
		Cloud:  hour.Clouds / 100.0,
		RainP:  hour.Pop,
		RainMM: rainMM,
	}
}

// FromForecast3hItem expands one 3-hour forecast bucket into 3 hourly
// records. Temperature, humidity, wind, cloud and rain probability are
// replicated unchanged across the bucket; the bucket's rain total is split
// evenly over the 3 hours.
func FromForecast3hItem(item models.Forecast3hItem, zone *time.Location) []HourlyRecord {
	rainMM := 0.0
	if item.Rain != nil {
		rainMM = item.Rain["3h"]
	}

	base := time.Unix(item.Dt, 0).In(zone)

	records := make([]HourlyRecord, 0, 3)
	for i := 0; i < 3; i++ {
		records = append(records, HourlyRecord{
			TS:     base.Add(time.Duration(i) * time.Hour),
			TempC:  item.Main.Temp,
			RH:     item.Main.Humidity,
			WindMS: item.Wind.Speed,
			Cloud:  item.Clouds.All / 100.0,
			RainP:  item.Pop,
			RainMM: rainMM / 3.0,
		})
	}

	return records
}

// FromDailySynthesized builds one hourly record for a specific hour of day
// from a daily forecast entry. A simple diurnal adjustment is applied:
// daylight hours (06:00-18:00) run warmer, drier and clearer than the daily
// mean, night hours the opposite. Daily rain probability and amount are
// split over 8 three-hour bins.
func FromDailySynthesized(daily models.OneCallDaily, hourOfDay int, ts time.Time) HourlyRecord {
	isDaylight := hourOfDay >= 6 && hourOfDay < 18

	tempAdj := -1.0
	rhAdj := 5.0
	cloudAdj := 0.1
	if isDaylight {
		tempAdj = 1.0
		rhAdj = -5.0
		cloudAdj = -0.1
	}

	rainMM := 0.0
	if daily.Rain != nil {
		rainMM = *daily.Rain
	}

	return HourlyRecord{
		TS:     ts,
		TempC:  daily.Temp.Day + tempAdj,
		RH:     clampFloat(daily.Humidity+rhAdj, 0.0, 100.0),
		WindMS: daily.WindSpeed,
		Cloud:  clampFloat(daily.Clouds/100.0+cloudAdj, 0.0, 1.0),
		RainP:  daily.Pop / 8.0,
		RainMM: rainMM / 8.0,
	}
}

func clampFloat(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
