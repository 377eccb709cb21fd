package safety

import "github.com/flightschool/weatherops/internal/weather"

// IsSafe applies the decision rule in order, short-circuiting on the
// first violation found. A false result always carries a reason.
func IsSafe(obs weather.Observation, level TrainingLevel) (bool, string) {
	minimums := MinimumsFor(level)

	if obs.Thunderstorms {
		return false, "thunderstorms present"
	}
	if obs.Icing {
		return false, "icing conditions"
	}
	if obs.VisibilityStatuteMiles < minimums.MinVisibilityMiles {
		return false, "visibility below minimum"
	}
	if obs.WindSpeedKnots > minimums.MaxWindKnots {
		return false, "wind exceeds maximum"
	}
	if minimums.MinCeilingFeet != nil {
		if obs.CeilingFeet != nil && *obs.CeilingFeet < *minimums.MinCeilingFeet {
			return false, "ceiling below minimum"
		}
		if obs.CeilingFeet == nil && !minimums.IMCAllowed {
			return false, "ceiling unknown / IMC not permitted"
		}
	}

	return true, ""
}

// Score computes a 0-10 weather score for the observation/level pair.
// It is independent of IsSafe: a score can be low even when IsSafe is
// true, and vice versa is not possible for thunderstorms/icing (those
// always floor the score at 0).
func Score(obs weather.Observation, level TrainingLevel) float64 {
	minimums := MinimumsFor(level)

	score := 10.0

	if minimums.MinVisibilityMiles > 0 {
		deficit := (minimums.MinVisibilityMiles - obs.VisibilityStatuteMiles) / minimums.MinVisibilityMiles
		score -= maxFloat(0, deficit) * 4
	}

	if minimums.MaxWindKnots > 0 {
		excess := (obs.WindSpeedKnots - minimums.MaxWindKnots) / minimums.MaxWindKnots
		score -= maxFloat(0, excess) * 3
	}

	if minimums.MinCeilingFeet != nil && obs.CeilingFeet != nil {
		deficit := (*minimums.MinCeilingFeet - *obs.CeilingFeet) / *minimums.MinCeilingFeet
		score -= maxFloat(0, deficit) * 2
	}

	if obs.Thunderstorms || obs.Icing {
		score -= 10
	}

	return clamp(score, 0, 10)
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
