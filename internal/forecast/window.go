package forecast

import (
	"fmt"
	"time"

	"linedry/internal/scoring"
)

// Window is a contiguous block of timeline hours treated as one drying
// opportunity, with the hours' weather reduced to a single record
type Window struct {
	ID        string                  `json:"id"`
	Start     time.Time               `json:"start_time"`
	End       time.Time               `json:"end_time"`
	StepHours int                     `json:"step_hours"`
	Weather   scoring.WeatherFeatures `json:"weather"`
}

// WindowID derives the deterministic id for a window so that feedback
// submitted later can be correlated with the window it refers to
func WindowID(start time.Time, widthHours int) string {
	return fmt.Sprintf("window_%d_%d", start.Unix(), widthHours)
}

// GroupWindows partitions the timeline left-to-right into consecutive
// windows of widthHours. The final window may be shorter when the timeline
// length is not a multiple of the width; it is never dropped.
func GroupWindows(hours []HourlyRecord, widthHours int) []Window {
	if widthHours <= 0 {
		return nil
	}

	var windows []Window

	for i := 0; i < len(hours); i += widthHours {
		end := i + widthHours
		if end > len(hours) {
			end = len(hours)
		}
		chunk := hours[i:end]

		start := chunk[0].TS
		windows = append(windows, Window{
			ID:        WindowID(start, widthHours),
			Start:     start,
			End:       chunk[len(chunk)-1].TS.Add(time.Hour),
			StepHours: widthHours,
			Weather:   aggregateWeather(chunk),
		})
	}

	return windows
}

// aggregateWeather reduces a chunk of hours to window-level weather.
// Temperature, humidity, wind and cloud are averaged. Rain probability
// takes the worst hour: one hour of high rain risk flags the whole window.
// Rain amount is summed into the total expected precipitation.
func aggregateWeather(hours []HourlyRecord) scoring.WeatherFeatures {
	count := float64(len(hours))

	var tempSum, rhSum, windSum, cloudSum, rainMax, rainSum float64
	for _, h := range hours {
		tempSum += h.TempC
		rhSum += h.RH
		windSum += h.WindMS
		cloudSum += h.Cloud
		if h.RainP > rainMax {
			rainMax = h.RainP
		}
		rainSum += h.RainMM
	}

	return scoring.WeatherFeatures{
		TempC:  tempSum / count,
		RH:     rhSum / count,
		WindMS: windSum / count,
		Cloud:  cloudSum / count,
		RainP:  rainMax,
		RainMM: rainSum,
	}
}
