package scheduler

import (
	"testing"

	"github.com/flightschool/weatherops/internal/safety"

	"github.com/stretchr/testify/assert"
)

func TestClassifySeverity_StudentPilotHasTighterBands(t *testing.T) {
	assert.Equal(t, "Severe", ClassifySeverity(5.5, safety.StudentPilot))
	assert.Equal(t, "High", ClassifySeverity(5.5, safety.PrivatePilot))
}

func TestClassifySeverity_Boundaries(t *testing.T) {
	assert.Equal(t, "Severe", ClassifySeverity(4.9, safety.PrivatePilot))
	assert.Equal(t, "High", ClassifySeverity(6.4, safety.PrivatePilot))
	assert.Equal(t, "Moderate", ClassifySeverity(7.9, safety.PrivatePilot))
	assert.Equal(t, "Low", ClassifySeverity(8.9, safety.PrivatePilot))
	assert.Equal(t, "Clear", ClassifySeverity(9.0, safety.PrivatePilot))
}
