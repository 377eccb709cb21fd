// Package suggest implements the AI-assisted reschedule suggestion
// engine: an AI path with strict JSON validation, a deterministic
// rule-based fallback that always produces exactly three options, and a
// TTL cache in front of both.
package suggest

import (
	"time"

	"github.com/flightschool/weatherops/internal/safety"
	"github.com/flightschool/weatherops/internal/weather"
)

// Option is one candidate reschedule slot.
type Option struct {
	DateTime            time.Time `json:"date_time"`
	Reason              string    `json:"reason"`
	WeatherScore        float64   `json:"weather_score"`
	InstructorAvailable bool      `json:"instructor_available"`
}

// ForecastDay is one day of the next-seven-day forecast summary fed to
// both the AI prompt and the fallback scan.
type ForecastDay struct {
	Date        time.Time
	Observation weather.Observation
}

// BusyInterval is one instructor-blocked interval.
type BusyInterval struct {
	Start time.Time
	End   time.Time
}

// Input is everything Suggest needs to produce three options for one
// cancelled booking.
type Input struct {
	BookingID      string
	ScheduledStart time.Time
	TrainingLevel  safety.TrainingLevel
	Forecast       []ForecastDay
	InstructorBusy []BusyInterval
}

func isInstructorFree(t time.Time, busy []BusyInterval) bool {
	for _, interval := range busy {
		if t.Before(interval.End) && t.After(interval.Start.Add(-time.Nanosecond)) {
			return false
		}
	}
	return true
}
