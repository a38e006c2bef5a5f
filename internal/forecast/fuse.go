package forecast

import (
	"time"

	"linedry/internal/models"
)

// TimelineHours is the length of the fused forecast timeline: 7 days
const TimelineHours = 168

// Horizon limits per source. The 3-hour forecast is trusted out to 5 days,
// the native hourly feed only to 2; beyond both, daily synthesis takes over.
const (
	triHourlyHorizonHours = 120
	hourlyHorizonHours    = 48
)

const triHourlyBucketSeconds = 3 * 3600

// Fuse merges the available forecast sources into one continuous hourly
// timeline starting at the current hour. Either source may be nil.
func Fuse(onecall *models.OneCallResponse, forecast3h *models.Forecast3hResponse, timezoneOffset int) []HourlyRecord {
	return FuseFrom(time.Now().UTC(), onecall, forecast3h, timezoneOffset)
}

// FuseFrom is Fuse with an explicit clock, for reproducible output. The
// timeline starts at `now` truncated to the hour and always contains exactly
// TimelineHours records spaced one hour apart.
//
// Per hour the best source wins, in strict priority order: the 3-hour
// forecast while inside its horizon (finer long-range data from the
// provider), then the native hourly feed inside its short horizon, then a
// record synthesized from the daily forecast, then the default record.
// Reordering these priorities changes visible recommendations.
func FuseFrom(now time.Time, onecall *models.OneCallResponse, forecast3h *models.Forecast3hResponse, timezoneOffset int) []HourlyRecord {
	zone := time.FixedZone("", timezoneOffset)
	start := now.Truncate(time.Hour)

	// Index 3-hour buckets by their 3-hour-aligned timestamp
	buckets := make(map[int64]models.Forecast3hItem)
	if forecast3h != nil {
		for _, item := range forecast3h.List {
			aligned := (item.Dt / triHourlyBucketSeconds) * triHourlyBucketSeconds
			buckets[aligned] = item
		}
	}

	records := make([]HourlyRecord, 0, TimelineHours)

	for h := 0; h < TimelineHours; h++ {
		ts := start.Add(time.Duration(h) * time.Hour).In(zone)
		target := ts.Unix()
		aligned := (target / triHourlyBucketSeconds) * triHourlyBucketSeconds

		var rec HourlyRecord

		item, haveBucket := buckets[aligned]
		switch {
		case h <= triHourlyHorizonHours && haveBucket:
			hours := FromForecast3hItem(item, zone)
			idx := int((target - aligned) / 3600)
			if idx >= 0 && idx < len(hours) {
				rec = hours[idx]
			} else {
				rec = DefaultRecord(ts)
			}
		case h <= hourlyHorizonHours && onecall != nil && h < len(onecall.Hourly):
			rec = FromOneCallHour(onecall.Hourly[h], zone)
		case onecall != nil && h/24 < len(onecall.Daily):
			rec = FromDailySynthesized(onecall.Daily[h/24], h%24, ts)
		default:
			rec = DefaultRecord(ts)
		}

		// The record keeps the canonical timeline hour regardless of what
		// timestamp the source reported
		rec.TS = ts
		records = append(records, rec)
	}

	return records
}
