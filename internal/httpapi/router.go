// Package httpapi wires the echo HTTP surface onto the domain services:
// bookings, students, alerts, reschedule suggestions, and the live event
// stream.
package httpapi

import (
	"github.com/flightschool/weatherops/internal/alerts"
	"github.com/flightschool/weatherops/internal/booking"
	"github.com/flightschool/weatherops/internal/broadcast"
	"github.com/flightschool/weatherops/internal/reschedule"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Register mounts every handler group onto e.
func Register(e *echo.Echo, bookings *booking.Store, alertStore *alerts.Store, reschedules *reschedule.Service, hub *broadcast.Hub, logger *zap.Logger) {
	NewBookingsHandler(e, bookings, reschedules, logger)
	NewStudentsHandler(e, bookings, logger)
	NewAlertsHandler(e, alertStore, logger)
	NewEventsHandler(e, hub, logger)
}
