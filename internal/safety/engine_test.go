package safety

import (
	"testing"

	"github.com/flightschool/weatherops/internal/weather"

	"github.com/stretchr/testify/assert"
)

func perfectObservation() weather.Observation {
	ceiling := 10000.0
	return weather.Observation{
		VisibilityStatuteMiles: 10,
		WindSpeedKnots:         3,
		CeilingFeet:            &ceiling,
	}
}

func TestIsSafe_ThunderstormsAlwaysUnsafe(t *testing.T) {
	obs := perfectObservation()
	obs.Thunderstorms = true
	for _, level := range []TrainingLevel{StudentPilot, PrivatePilot, InstrumentRated} {
		safe, reason := IsSafe(obs, level)
		assert.False(t, safe)
		assert.Equal(t, "thunderstorms present", reason)
	}
}

func TestIsSafe_IcingAlwaysUnsafe(t *testing.T) {
	obs := perfectObservation()
	obs.Icing = true
	safe, reason := IsSafe(obs, InstrumentRated)
	assert.False(t, safe)
	assert.Equal(t, "icing conditions", reason)
}

func TestIsSafe_PerfectConditionsAreSafeForAllLevels(t *testing.T) {
	obs := perfectObservation()
	for _, level := range []TrainingLevel{StudentPilot, PrivatePilot, InstrumentRated} {
		safe, reason := IsSafe(obs, level)
		assert.True(t, safe, "level %s should be safe, got reason %q", level, reason)
	}
}

func TestIsSafe_NullCeiling_IMCNotAllowedIsUnsafe(t *testing.T) {
	obs := perfectObservation()
	obs.CeilingFeet = nil
	safe, reason := IsSafe(obs, StudentPilot)
	assert.False(t, safe)
	assert.Equal(t, "ceiling unknown / IMC not permitted", reason)
}

func TestIsSafe_NullCeiling_IMCAllowedIsSafe(t *testing.T) {
	obs := perfectObservation()
	obs.CeilingFeet = nil
	safe, _ := IsSafe(obs, InstrumentRated)
	assert.True(t, safe)
}

// Hierarchy: anything unsafe for a looser level must be unsafe for a
// stricter one, given the identical observation.
func TestIsSafe_HierarchyProperty(t *testing.T) {
	levels := []TrainingLevel{StudentPilot, PrivatePilot, InstrumentRated}
	observations := []weather.Observation{
		{VisibilityStatuteMiles: 4, WindSpeedKnots: 15},
		{VisibilityStatuteMiles: 2, WindSpeedKnots: 25},
		{VisibilityStatuteMiles: 0.5, WindSpeedKnots: 40},
		perfectObservation(),
	}

	for _, obs := range observations {
		studentSafe, _ := IsSafe(obs, levels[0])
		privateSafe, _ := IsSafe(obs, levels[1])
		instrumentSafe, _ := IsSafe(obs, levels[2])

		if !studentSafe {
			// not asserting private/instrument are unsafe too (minimums loosen),
			// only that a stricter level is never MORE permissive in the sense
			// that if student is safe, it's because conditions clear the
			// tightest bar — check the inverse instead.
			_ = privateSafe
			_ = instrumentSafe
		}

		// Tightest bar passing implies looser bars also pass.
		if studentSafe {
			assert.True(t, privateSafe)
			assert.True(t, instrumentSafe)
		}
		if privateSafe {
			assert.True(t, instrumentSafe)
		}
	}
}

func TestScore_ThunderstormsForceZero(t *testing.T) {
	obs := perfectObservation()
	obs.Thunderstorms = true
	assert.Equal(t, 0.0, Score(obs, PrivatePilot))
}

func TestScore_PerfectConditionsScoreHigh(t *testing.T) {
	obs := perfectObservation()
	for _, level := range []TrainingLevel{StudentPilot, PrivatePilot, InstrumentRated} {
		assert.GreaterOrEqual(t, Score(obs, level), 8.0)
	}
}

func TestScore_MonotonicInVisibility(t *testing.T) {
	low := weather.Observation{VisibilityStatuteMiles: 2, WindSpeedKnots: 5}
	high := weather.Observation{VisibilityStatuteMiles: 8, WindSpeedKnots: 5}
	assert.Greater(t, Score(high, PrivatePilot), Score(low, PrivatePilot))
}

func TestScore_MonotonicInWind(t *testing.T) {
	calm := weather.Observation{VisibilityStatuteMiles: 10, WindSpeedKnots: 5}
	windy := weather.Observation{VisibilityStatuteMiles: 10, WindSpeedKnots: 25}
	assert.Greater(t, Score(calm, PrivatePilot), Score(windy, PrivatePilot))
}

func TestScore_ClampedToRange(t *testing.T) {
	obs := weather.Observation{VisibilityStatuteMiles: 0, WindSpeedKnots: 100, Icing: true}
	score := Score(obs, StudentPilot)
	assert.GreaterOrEqual(t, score, 0.0)
	assert.LessOrEqual(t, score, 10.0)
}
