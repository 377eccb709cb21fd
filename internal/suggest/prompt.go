package suggest

import (
	"fmt"
	"strings"
	"time"

	"github.com/flightschool/weatherops/internal/safety"
)

// buildPrompt embeds the cancelled booking, training level, minimums
// table, forecast summary, and instructor-blocked intervals into a
// prompt instructing the model to return strict JSON matching the
// option schema.
func buildPrompt(input Input) string {
	minimums := safety.MinimumsFor(input.TrainingLevel)

	var forecast strings.Builder
	for _, day := range input.Forecast {
		fmt.Fprintf(&forecast, "- %s: visibility=%.1fsm wind=%.0fkt ceiling=%v thunderstorms=%v icing=%v\n",
			day.Date.Format(time.RFC3339), day.Observation.VisibilityStatuteMiles, day.Observation.WindSpeedKnots,
			ceilingString(day.Observation.CeilingFeet), day.Observation.Thunderstorms, day.Observation.Icing)
	}

	var busy strings.Builder
	for _, interval := range input.InstructorBusy {
		fmt.Fprintf(&busy, "- %s to %s\n", interval.Start.Format(time.RFC3339), interval.End.Format(time.RFC3339))
	}

	return fmt.Sprintf(`A flight lesson scheduled for %s was cancelled due to weather.

Training level: %s
Minimums: visibility >= %.1f sm, wind <= %.0f kt, ceiling >= %v ft, IMC allowed: %v

Forecast:
%s
Instructor blocked intervals:
%s
Propose exactly three alternative future date/time slots. Respond with
strict JSON: {"options": [{"date_time": RFC3339 string, "reason": string
(<=280 chars), "weather_score": number 0-10, "instructor_available":
bool}, ...]} with exactly 3 entries, sorted by weather_score descending.`,
		input.ScheduledStart.Format(time.RFC3339),
		input.TrainingLevel,
		minimums.MinVisibilityMiles, minimums.MaxWindKnots, ceilingString(minimums.MinCeilingFeet), minimums.IMCAllowed,
		forecast.String(), busy.String())
}

func ceilingString(v *float64) string {
	if v == nil {
		return "none"
	}
	return fmt.Sprintf("%.0f", *v)
}
