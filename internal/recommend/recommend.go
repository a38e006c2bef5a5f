package recommend

import (
	"sort"

	"linedry/internal/forecast"
	"linedry/internal/metrics"
	"linedry/internal/scoring"
)

// RankedWindow pairs a drying window with its score and display labels
type RankedWindow struct {
	Window         forecast.Window     `json:"window"`
	Score          scoring.DryingScore `json:"score"`
	Conditions     string              `json:"conditions"`
	Recommendation string              `json:"recommendation"`
}

// Recommender turns a fused timeline into ranked drying windows
type Recommender struct {
	windowHours int
	maxWindows  int
}

// NewRecommender creates a recommender. windowHours outside 1-24 falls back
// to the 3-hour default; maxWindows <= 0 means unlimited.
func NewRecommender(windowHours, maxWindows int) *Recommender {
	if windowHours < 1 || windowHours > 24 {
		windowHours = 3
	}
	return &Recommender{
		windowHours: windowHours,
		maxWindows:  maxWindows,
	}
}

// With returns a recommender with per-request overrides. Zero values
// keep the receiver's settings.
func (r *Recommender) With(windowHours, maxWindows int) *Recommender {
	if windowHours <= 0 {
		windowHours = r.windowHours
	}
	if maxWindows <= 0 {
		maxWindows = r.maxWindows
	}
	return NewRecommender(windowHours, maxWindows)
}

// Rank groups the timeline into windows, scores each against the given
// weight vector and returns them best-first. Unsafe windows sort last
// (their sentinel score is below any safe score). Ties keep chronological
// order so the earliest of equally good windows wins.
func (r *Recommender) Rank(timeline []forecast.HourlyRecord, weights scoring.Weights) []RankedWindow {
	windows := forecast.GroupWindows(timeline, r.windowHours)

	ranked := make([]RankedWindow, 0, len(windows))
	for _, w := range windows {
		score := scoring.Score(w.Weather, weights)

		metrics.ScoredWindowsTotal.Inc()
		if score.Unsafe {
			metrics.UnsafeWindowsTotal.Inc()
		}

		ranked = append(ranked, RankedWindow{
			Window:         w,
			Score:          score,
			Conditions:     conditionsLabel(w.Weather),
			Recommendation: recommendationLabel(score),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score.Score > ranked[j].Score.Score
	})

	if r.maxWindows > 0 && len(ranked) > r.maxWindows {
		ranked = ranked[:r.maxWindows]
	}

	return ranked
}

// conditionsLabel summarizes window weather as a short display label
func conditionsLabel(w scoring.WeatherFeatures) string {
	switch {
	case w.RainMM > 0.1:
		return "Rainy"
	case w.Cloud > 0.8:
		return "Cloudy"
	case w.Cloud < 0.3:
		return "Sunny"
	default:
		return "Partly Cloudy"
	}
}

// recommendationLabel maps a score to a one-line verdict
func recommendationLabel(score scoring.DryingScore) string {
	switch {
	case score.Unsafe:
		return "Do not hang laundry - rain expected"
	case score.Score > 0.8:
		return "Excellent drying conditions!"
	case score.Score > 0.6:
		return "Good drying conditions"
	case score.Score > 0.4:
		return "Fair drying conditions"
	default:
		return "Poor drying conditions"
	}
}

// DryingTips returns practical advice for the given window weather
func DryingTips(w scoring.WeatherFeatures, score scoring.DryingScore) []string {
	tips := []string{
		"Check weather conditions before hanging clothes",
	}

	if score.Unsafe {
		tips = append(tips, "Wait for the rain risk to pass before hanging laundry")
	}
	if w.RH > 75.0 {
		tips = append(tips, "Avoid drying during rain or high humidity")
	}
	if w.WindMS >= 3.0 {
		tips = append(tips, "Wind helps with faster drying - use it while it lasts")
	} else {
		tips = append(tips, "Hang clothes in well-ventilated areas")
	}
	if w.TempC < 18.0 {
		tips = append(tips, "Cool air dries slowly - allow extra time")
	}

	return tips
}
