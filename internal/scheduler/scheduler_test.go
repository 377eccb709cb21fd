package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/flightschool/weatherops/internal/alerts"
	"github.com/flightschool/weatherops/internal/booking"
	"github.com/flightschool/weatherops/internal/broadcast"
	"github.com/flightschool/weatherops/internal/weather"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type countingSource struct {
	calls int32
	obs   weather.Observation
	err   error
}

func (c *countingSource) Name() string { return "stub" }

func (c *countingSource) Fetch(ctx context.Context, loc weather.Location) (weather.Observation, error) {
	atomic.AddInt32(&c.calls, 1)
	return c.obs, c.err
}

func newTestStores(t *testing.T) (*booking.Store, *alerts.Store, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&booking.Student{}, &booking.Booking{}, &booking.RescheduleEvent{}, &alerts.Alert{}))
	return booking.NewStore(db), alerts.NewStore(db, nil), db
}

func seedBooking(t *testing.T, db *gorm.DB, bStore *booking.Store, lat, lon float64, level booking.TrainingLevel) *booking.Booking {
	t.Helper()
	student := &booking.Student{ID: uuid.NewString(), Name: "Jane", TrainingLevel: level, CreatedAt: time.Now()}
	require.NoError(t, db.Create(student).Error)

	b, err := bStore.Create(context.Background(), booking.CreateParams{
		StudentID:      student.ID,
		ScheduledStart: time.Now().Add(time.Hour),
		ScheduledEnd:   time.Now().Add(2 * time.Hour),
		Departure:      booking.Location{Lat: lat, Lon: lon, Name: "KPAO"},
	})
	require.NoError(t, err)
	return b
}

func TestScheduler_UnsafeBooking_CreatesAlertAndCancels(t *testing.T) {
	bStore, aStore, db := newTestStores(t)
	b := seedBooking(t, db, bStore, 37.0, -122.0, booking.PrivatePilot)

	source := &countingSource{obs: weather.Observation{VisibilityStatuteMiles: 0.5, WindSpeedKnots: 40}}
	client := weather.NewClient(source, nil, 1, zap.NewNop())
	hub := broadcast.NewHub(zap.NewNop())
	sub := hub.Subscribe()

	sched := New(bStore, client, aStore, hub, nil, time.Minute, zap.NewNop())
	require.NoError(t, sched.processTick(context.Background()))

	updated, err := bStore.GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	require.Equal(t, booking.StatusCancelled, updated.Status)

	live, err := aStore.ListLive(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, live, 1)

	select {
	case <-sub.Events():
	case <-time.After(time.Second):
		t.Fatal("expected a WeatherAlert broadcast")
	}
	select {
	case <-sub.Events():
	case <-time.After(time.Second):
		t.Fatal("expected a BookingCancelled broadcast")
	}
}

func TestScheduler_SafeBooking_NoAlertNoCancel(t *testing.T) {
	bStore, aStore, db := newTestStores(t)
	b := seedBooking(t, db, bStore, 37.0, -122.0, booking.PrivatePilot)

	ceiling := 5000.0
	source := &countingSource{obs: weather.Observation{VisibilityStatuteMiles: 10, WindSpeedKnots: 3, CeilingFeet: &ceiling}}
	client := weather.NewClient(source, nil, 1, zap.NewNop())
	hub := broadcast.NewHub(zap.NewNop())

	sched := New(bStore, client, aStore, hub, nil, time.Minute, zap.NewNop())
	require.NoError(t, sched.processTick(context.Background()))

	updated, err := bStore.GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	require.Equal(t, booking.StatusScheduled, updated.Status)

	live, err := aStore.ListLive(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, live, 0)
}

func TestScheduler_SameLocationBookings_ShareOneWeatherFetchPerTick(t *testing.T) {
	bStore, aStore, db := newTestStores(t)
	seedBooking(t, db, bStore, 37.00001, -122.00001, booking.PrivatePilot)
	seedBooking(t, db, bStore, 37.00002, -122.00002, booking.PrivatePilot)

	source := &countingSource{obs: weather.Observation{VisibilityStatuteMiles: 10, WindSpeedKnots: 3}}
	client := weather.NewClient(source, nil, 1, zap.NewNop())
	hub := broadcast.NewHub(zap.NewNop())

	sched := New(bStore, client, aStore, hub, nil, time.Minute, zap.NewNop())
	require.NoError(t, sched.processTick(context.Background()))

	require.Equal(t, int32(1), atomic.LoadInt32(&source.calls))
}
