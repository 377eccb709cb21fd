// Package scheduler runs the periodic tick that evaluates upcoming
// bookings against current weather and cancels the unsafe ones.
package scheduler

import "github.com/flightschool/weatherops/internal/safety"

// ClassifySeverity maps a weather score and training level to an alert
// severity. StudentPilot bands are tighter than other levels at the
// same numeric score, reflecting their lower risk tolerance.
func ClassifySeverity(score float64, level safety.TrainingLevel) string {
	isStudent := level == safety.StudentPilot

	switch {
	case score < 5.0 || (isStudent && score < 6.0):
		return "Severe"
	case score < 6.5 || (isStudent && score < 7.5):
		return "High"
	case score < 8.0:
		return "Moderate"
	case score < 9.0:
		return "Low"
	default:
		return "Clear"
	}
}
