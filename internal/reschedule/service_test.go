package reschedule

import (
	"context"
	"testing"
	"time"

	"github.com/flightschool/weatherops/internal/booking"
	"github.com/flightschool/weatherops/internal/broadcast"
	"github.com/flightschool/weatherops/internal/suggest"
	"github.com/flightschool/weatherops/internal/weather"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type noForecast struct{}

func (noForecast) ForecastDays(ctx context.Context, loc weather.Location, days int) []weather.ForecastDay {
	return nil
}

func newTestService(t *testing.T) (*Service, *booking.Store, *booking.Booking) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&booking.Student{}, &booking.Booking{}, &booking.RescheduleEvent{}))

	store := booking.NewStore(db)
	student := &booking.Student{ID: uuid.NewString(), Name: "Jane", TrainingLevel: booking.PrivatePilot, CreatedAt: time.Now()}
	require.NoError(t, db.Create(student).Error)

	b, err := store.Create(context.Background(), booking.CreateParams{
		StudentID:      student.ID,
		ScheduledStart: time.Now().Add(time.Hour),
		ScheduledEnd:   time.Now().Add(2 * time.Hour),
		Departure:      booking.Location{Lat: 37, Lon: -122, Name: "KPAO"},
	})
	require.NoError(t, err)

	engine := suggest.NewEngine(nil, nil, zap.NewNop())
	hub := broadcast.NewHub(zap.NewNop())
	svc := NewService(store, engine, noForecast{}, hub, zap.NewNop())
	return svc, store, b
}

func TestService_Apply_RejectsPastStart(t *testing.T) {
	svc, _, b := newTestService(t)
	_, err := svc.Apply(context.Background(), b.ID, time.Now().Add(-time.Hour), "weather")
	require.Error(t, err)
}

func TestService_Apply_SucceedsAndBroadcasts(t *testing.T) {
	svc, store, b := newTestService(t)
	hub := svc.hub
	sub := hub.Subscribe()

	newStart := time.Now().Add(72 * time.Hour)
	updated, err := svc.Apply(context.Background(), b.ID, newStart, "operator reschedule")
	require.NoError(t, err)
	require.Equal(t, booking.StatusRescheduled, updated.Status)

	persisted, err := store.GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	require.Equal(t, booking.StatusRescheduled, persisted.Status)

	select {
	case ev := <-sub.Events():
		_, ok := ev.(broadcast.BookingRescheduled)
		require.True(t, ok)
	case <-time.After(time.Second):
		t.Fatal("expected a BookingRescheduled broadcast")
	}
}

func TestService_Suggestions_ReturnsThreeOptionsEvenWithNoForecast(t *testing.T) {
	svc, _, b := newTestService(t)
	options, err := svc.Suggestions(context.Background(), b.ID)
	require.NoError(t, err)
	require.Len(t, options, 3)
}

func TestService_Suggestions_NotFoundForUnknownBooking(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.Suggestions(context.Background(), "missing")
	require.Error(t, err)
}
