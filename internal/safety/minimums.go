// Package safety evaluates a weather observation against a student's
// training-level minimums. Every function here is pure: no I/O, no
// clock, no randomness.
package safety

// TrainingLevel identifies which minimums table applies to a booking.
type TrainingLevel string

const (
	StudentPilot    TrainingLevel = "StudentPilot"
	PrivatePilot    TrainingLevel = "PrivatePilot"
	InstrumentRated TrainingLevel = "InstrumentRated"
)

// Minimums is the weather floor a training level must clear to fly.
type Minimums struct {
	MinVisibilityMiles float64
	MaxWindKnots        float64
	MinCeilingFeet      *float64
	IMCAllowed          bool
}

func ceilingFeet(v float64) *float64 { return &v }

// DefaultMinimums is the built-in table from the training-level minimums
// spec. Callers needing a different table (e.g. school-specific policy)
// can substitute their own map of the same shape.
var DefaultMinimums = map[TrainingLevel]Minimums{
	StudentPilot: {
		MinVisibilityMiles: 5,
		MaxWindKnots:        12,
		MinCeilingFeet:      ceilingFeet(3000),
		IMCAllowed:          false,
	},
	PrivatePilot: {
		MinVisibilityMiles: 3,
		MaxWindKnots:        20,
		MinCeilingFeet:      ceilingFeet(1000),
		IMCAllowed:          false,
	},
	InstrumentRated: {
		MinVisibilityMiles: 1,
		MaxWindKnots:        30,
		MinCeilingFeet:      nil,
		IMCAllowed:          true,
	},
}

// MinimumsFor looks up the table for a level, falling back to the most
// conservative (StudentPilot) minimums for an unrecognized level.
func MinimumsFor(level TrainingLevel) Minimums {
	if m, ok := DefaultMinimums[level]; ok {
		return m
	}
	return DefaultMinimums[StudentPilot]
}
