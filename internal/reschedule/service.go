// Package reschedule orchestrates suggestion retrieval, booking
// mutation, audit append and broadcast for an operator-initiated
// reschedule.
package reschedule

import (
	"context"
	"time"

	"github.com/flightschool/weatherops/internal/apperrors"
	"github.com/flightschool/weatherops/internal/booking"
	"github.com/flightschool/weatherops/internal/broadcast"
	"github.com/flightschool/weatherops/internal/safety"
	"github.com/flightschool/weatherops/internal/suggest"
	"github.com/flightschool/weatherops/internal/weather"

	"go.uber.org/zap"
)

// ForecastProvider fetches a best-effort multi-day forecast for a
// location; a failure yields an empty forecast rather than an error.
type ForecastProvider interface {
	ForecastDays(ctx context.Context, loc weather.Location, days int) []weather.ForecastDay
}

// Service is the public reschedule surface used by the HTTP handlers.
type Service struct {
	bookings *booking.Store
	engine   *suggest.Engine
	forecast ForecastProvider
	hub      *broadcast.Hub
	logger   *zap.Logger
}

func NewService(bookings *booking.Store, engine *suggest.Engine, forecast ForecastProvider, hub *broadcast.Hub, logger *zap.Logger) *Service {
	return &Service{bookings: bookings, engine: engine, forecast: forecast, hub: hub, logger: logger}
}

// Apply loads the booking, validates the requested time, invokes the
// booking state machine's reschedule transition, and broadcasts the
// result.
func (s *Service) Apply(ctx context.Context, bookingID string, requestedNewStart time.Time, reason string) (*booking.Booking, error) {
	existing, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if !requestedNewStart.After(time.Now()) {
		return nil, apperrors.Validation("requested_new_start must be in the future")
	}

	overlaps, err := s.bookings.OverlappingForStudent(ctx, existing.StudentID, existing.ID, requestedNewStart, requestedNewStart.Add(existing.ScheduledEnd.Sub(existing.ScheduledStart)))
	if err != nil {
		return nil, err
	}
	if len(overlaps) > 0 {
		return nil, apperrors.Conflict("requested time overlaps another booking for this student")
	}

	updated, err := s.bookings.Reschedule(ctx, bookingID, requestedNewStart, nil, reason)
	if err != nil {
		return nil, err
	}

	s.hub.Publish(broadcast.BookingRescheduled{
		BookingID: updated.ID,
		OldStart:  existing.ScheduledStart,
		NewStart:  updated.ScheduledStart,
	})

	return updated, nil
}

// Suggestions is a pure read path: load booking+student, fetch a
// best-effort forecast, compute instructor-busy intervals, and call the
// suggestion engine. A suggestion engine failure still yields three
// fallback options.
func (s *Service) Suggestions(ctx context.Context, bookingID string) ([3]suggest.Option, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return [3]suggest.Option{}, err
	}

	students, err := s.bookings.StudentsByIDs(ctx, []string{b.StudentID})
	if err != nil {
		return [3]suggest.Option{}, err
	}
	level := safety.PrivatePilot
	if student, ok := students[b.StudentID]; ok {
		level = safety.TrainingLevel(student.TrainingLevel)
	}

	dep := b.Departure()
	var forecast []suggest.ForecastDay
	if s.forecast != nil {
		rawForecast := s.forecast.ForecastDays(ctx, weather.Location{Lat: dep.Lat, Lon: dep.Lon, Name: dep.Name}, 7)
		forecast = make([]suggest.ForecastDay, len(rawForecast))
		for i, d := range rawForecast {
			forecast[i] = suggest.ForecastDay{Date: d.Date, Observation: d.Observation}
		}
	}

	windowStart := b.ScheduledStart
	windowEnd := b.ScheduledStart.Add(7 * 24 * time.Hour)
	others, err := s.bookings.OverlappingForStudent(ctx, b.StudentID, b.ID, windowStart, windowEnd)
	if err != nil {
		s.logger.Warn("failed to load instructor-busy intervals, proceeding without them", zap.Error(err))
		others = nil
	}

	busy := make([]suggest.BusyInterval, 0, len(others))
	for _, o := range others {
		busy = append(busy, suggest.BusyInterval{Start: o.ScheduledStart, End: o.ScheduledEnd})
	}

	input := suggest.Input{
		BookingID:      b.ID,
		ScheduledStart: b.ScheduledStart,
		TrainingLevel:  level,
		Forecast:       forecast,
		InstructorBusy: busy,
	}

	return s.engine.Suggest(ctx, input), nil
}
