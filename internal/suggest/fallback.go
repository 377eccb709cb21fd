package suggest

import (
	"fmt"
	"sort"
	"time"

	"github.com/flightschool/weatherops/internal/safety"
)

// fallback implements the rule-based path. Its output is invariant at
// exactly three options regardless of how little forecast data it has
// to work with.
func fallback(input Input) [3]Option {
	type scored struct {
		option Option
		safe   bool
	}

	candidates := make([]scored, 0, len(input.Forecast))
	for _, day := range input.Forecast {
		safe, reason := safety.IsSafe(day.Observation, input.TrainingLevel)
		score := safety.Score(day.Observation, input.TrainingLevel)

		// TODO: consult the actual instructor roster instead of assuming
		// availability; the deterministic fallback has no roster to check
		// against yet, so every candidate is optimistically marked free.
		opt := Option{
			DateTime:            day.Date,
			WeatherScore:        score,
			InstructorAvailable: true,
		}
		if safe {
			opt.Reason = "Favorable conditions expected"
		} else {
			opt.Reason = fmt.Sprintf("Marginal conditions: %s", reason)
		}
		candidates = append(candidates, scored{option: opt, safe: safe})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].safe != candidates[j].safe {
			return candidates[i].safe
		}
		return candidates[i].option.WeatherScore > candidates[j].option.WeatherScore
	})

	var result [3]Option
	n := 0
	for _, c := range candidates {
		if n >= 3 {
			break
		}
		result[n] = c.option
		n++
	}

	for k := 1; n < 3; k++ {
		result[n] = Option{
			DateTime:            input.ScheduledStart.Add(time.Duration(k) * 24 * time.Hour),
			Reason:              "Please contact your instructor to schedule — limited weather data available",
			WeatherScore:        5.0,
			InstructorAvailable: false,
		}
		n++
	}

	sortByScoreThenTime(&result)
	return result
}

func sortByScoreThenTime(options *[3]Option) {
	sort.SliceStable(options[:], func(i, j int) bool {
		if options[i].WeatherScore != options[j].WeatherScore {
			return options[i].WeatherScore > options[j].WeatherScore
		}
		return options[i].DateTime.Before(options[j].DateTime)
	})
}
