package forecast

import (
	"math"
	"testing"
	"time"

	"linedry/internal/models"
)

func TestDefaultRecord(t *testing.T) {
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rec := DefaultRecord(ts)

	if !rec.TS.Equal(ts) {
		t.Errorf("DefaultRecord() TS = %v, want %v", rec.TS, ts)
	}
	if rec.TempC != 25.0 {
		t.Errorf("DefaultRecord() TempC = %v, want 25", rec.TempC)
	}
	if rec.RH != 60.0 {
		t.Errorf("DefaultRecord() RH = %v, want 60", rec.RH)
	}
	if rec.WindMS != 2.0 {
		t.Errorf("DefaultRecord() WindMS = %v, want 2", rec.WindMS)
	}
	if rec.Cloud != 0.5 {
		t.Errorf("DefaultRecord() Cloud = %v, want 0.5", rec.Cloud)
	}
	if rec.RainP != 0.0 || rec.RainMM != 0.0 {
		t.Errorf("DefaultRecord() rain = %v / %v, want 0 / 0", rec.RainP, rec.RainMM)
	}
}

func TestFromOneCallHour(t *testing.T) {
	dt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC).Unix()

	hour := models.OneCallHour{
		Dt:        dt,
		Temp:      22.5,
		Humidity:  55.0,
		WindSpeed: 3.2,
		Clouds:    40.0,
		Pop:       0.15,
		Rain:      map[string]float64{"1h": 0.4},
	}

	rec := FromOneCallHour(hour, time.UTC)

	if rec.TempC != 22.5 {
		t.Errorf("TempC = %v, want 22.5", rec.TempC)
	}
	if rec.RH != 55.0 {
		t.Errorf("RH = %v, want 55", rec.RH)
	}
	if math.Abs(rec.Cloud-0.4) > 0.0001 {
		t.Errorf("Cloud = %v, want 0.4 (percent converted to fraction)", rec.Cloud)
	}
	if rec.RainP != 0.15 {
		t.Errorf("RainP = %v, want 0.15", rec.RainP)
	}
	if rec.RainMM != 0.4 {
		t.Errorf("RainMM = %v, want 0.4", rec.RainMM)
	}
	if rec.TS.Unix() != dt {
		t.Errorf("TS = %v, want unix %d", rec.TS, dt)
	}
}

func TestFromOneCallHour_MissingRain(t *testing.T) {
	rec := FromOneCallHour(models.OneCallHour{Dt: 0, Temp: 20.0}, time.UTC)

	if rec.RainMM != 0.0 {
		t.Errorf("RainMM = %v, want 0 when rain map is absent", rec.RainMM)
	}
}

func TestFromForecast3hItem(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	item := models.Forecast3hItem{
		Dt: base.Unix(),
		Main: models.Forecast3hMain{
			Temp:     28.0,
			Humidity: 65.0,
		},
		Clouds: models.Forecast3hClouds{All: 50.0},
		Wind:   models.Forecast3hWind{Speed: 4.0},
		Pop:    0.2,
		Rain:   map[string]float64{"3h": 3.0},
	}

	records := FromForecast3hItem(item, time.UTC)

	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}

	for i, rec := range records {
		wantTS := base.Add(time.Duration(i) * time.Hour)
		if !rec.TS.Equal(wantTS) {
			t.Errorf("record %d TS = %v, want %v", i, rec.TS, wantTS)
		}
		if rec.TempC != 28.0 || rec.RH != 65.0 || rec.WindMS != 4.0 {
			t.Errorf("record %d scalar fields not replicated: %+v", i, rec)
		}
		if math.Abs(rec.Cloud-0.5) > 0.0001 {
			t.Errorf("record %d Cloud = %v, want 0.5", i, rec.Cloud)
		}
		if rec.RainP != 0.2 {
			t.Errorf("record %d RainP = %v, want 0.2", i, rec.RainP)
		}
		if math.Abs(rec.RainMM-1.0) > 0.0001 {
			t.Errorf("record %d RainMM = %v, want 1.0 (3mm split over 3 hours)", i, rec.RainMM)
		}
	}
}

func TestFromDailySynthesized(t *testing.T) {
	rain := 4.0
	daily := models.OneCallDaily{
		Temp:      models.OneCallDailyTemp{Day: 27.0},
		Humidity:  70.0,
		WindSpeed: 3.0,
		Clouds:    50.0,
		Pop:       0.4,
		Rain:      &rain,
	}

	ts := time.Date(2025, 6, 4, 14, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		hourOfDay int
		wantTemp  float64
		wantRH    float64
		wantCloud float64
	}{
		{"daytime hour", 14, 28.0, 65.0, 0.4},
		{"daylight boundary start", 6, 28.0, 65.0, 0.4},
		{"night hour", 2, 26.0, 75.0, 0.6},
		{"daylight boundary end", 18, 26.0, 75.0, 0.6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := FromDailySynthesized(daily, tt.hourOfDay, ts)

			if math.Abs(rec.TempC-tt.wantTemp) > 0.0001 {
				t.Errorf("TempC = %v, want %v", rec.TempC, tt.wantTemp)
			}
			if math.Abs(rec.RH-tt.wantRH) > 0.0001 {
				t.Errorf("RH = %v, want %v", rec.RH, tt.wantRH)
			}
			if math.Abs(rec.Cloud-tt.wantCloud) > 0.0001 {
				t.Errorf("Cloud = %v, want %v", rec.Cloud, tt.wantCloud)
			}
			if math.Abs(rec.RainP-0.05) > 0.0001 {
				t.Errorf("RainP = %v, want 0.05 (pop split over 8 bins)", rec.RainP)
			}
			if math.Abs(rec.RainMM-0.5) > 0.0001 {
				t.Errorf("RainMM = %v, want 0.5 (4mm split over 8 bins)", rec.RainMM)
			}
			if rec.WindMS != 3.0 {
				t.Errorf("WindMS = %v, want 3.0", rec.WindMS)
			}
		})
	}
}

func TestFromDailySynthesized_Clamping(t *testing.T) {
	daily := models.OneCallDaily{
		Temp:     models.OneCallDailyTemp{Day: 20.0},
		Humidity: 98.0,
		Clouds:   95.0,
	}

	// Night adjustment adds +5 humidity / +0.1 cloud which must be clamped
	rec := FromDailySynthesized(daily, 2, time.Now())

	if rec.RH != 100.0 {
		t.Errorf("RH = %v, want clamped to 100", rec.RH)
	}
	if rec.Cloud != 1.0 {
		t.Errorf("Cloud = %v, want clamped to 1.0", rec.Cloud)
	}
}

func TestFromDailySynthesized_MissingRain(t *testing.T) {
	daily := models.OneCallDaily{
		Temp: models.OneCallDailyTemp{Day: 25.0},
		Pop:  0.8,
	}

	rec := FromDailySynthesized(daily, 12, time.Now())

	if rec.RainMM != 0.0 {
		t.Errorf("RainMM = %v, want 0 when daily rain is absent", rec.RainMM)
	}
	if math.Abs(rec.RainP-0.1) > 0.0001 {
		t.Errorf("RainP = %v, want 0.1", rec.RainP)
	}
}
