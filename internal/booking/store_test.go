package booking

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Student{}, &Booking{}, &RescheduleEvent{}))
	return db
}

func seedStudent(t *testing.T, db *gorm.DB) *Student {
	t.Helper()
	s := &Student{ID: uuid.NewString(), Name: "Jane Pilot", TrainingLevel: PrivatePilot, CreatedAt: time.Now()}
	require.NoError(t, db.Create(s).Error)
	return s
}

func TestStore_Create_ValidatesInterval(t *testing.T) {
	db := newTestDB(t)
	store := NewStore(db)
	student := seedStudent(t, db)

	_, err := store.Create(context.Background(), CreateParams{
		StudentID:      student.ID,
		ScheduledStart: time.Now().Add(time.Hour),
		ScheduledEnd:   time.Now().Add(30 * time.Minute),
		Departure:      Location{Lat: 37, Lon: -122, Name: "KPAO"},
	})
	require.Error(t, err)
}

func TestStore_Create_RejectsPastStart(t *testing.T) {
	db := newTestDB(t)
	store := NewStore(db)
	student := seedStudent(t, db)

	_, err := store.Create(context.Background(), CreateParams{
		StudentID:      student.ID,
		ScheduledStart: time.Now().Add(-time.Hour),
		ScheduledEnd:   time.Now().Add(time.Hour),
		Departure:      Location{Lat: 37, Lon: -122, Name: "KPAO"},
	})
	require.Error(t, err)
}

func TestStore_CancelForWeather_TransitionsAndAudits(t *testing.T) {
	db := newTestDB(t)
	store := NewStore(db)
	student := seedStudent(t, db)

	b, err := store.Create(context.Background(), CreateParams{
		StudentID:      student.ID,
		ScheduledStart: time.Now().Add(time.Hour),
		ScheduledEnd:   time.Now().Add(2 * time.Hour),
		Departure:      Location{Lat: 37, Lon: -122, Name: "KPAO"},
	})
	require.NoError(t, err)

	updated, err := store.CancelForWeather(context.Background(), b.ID, "wind exceeds maximum")
	require.NoError(t, err)
	require.Equal(t, StatusCancelled, updated.Status)

	var events []RescheduleEvent
	require.NoError(t, db.Where("booking_id = ?", b.ID).Find(&events).Error)
	require.Len(t, events, 1)
	require.Equal(t, "wind exceeds maximum", events[0].Reason)
}

func TestStore_CancelForWeather_RejectsFromTerminalState(t *testing.T) {
	db := newTestDB(t)
	store := NewStore(db)
	student := seedStudent(t, db)

	b, err := store.Create(context.Background(), CreateParams{
		StudentID:      student.ID,
		ScheduledStart: time.Now().Add(time.Hour),
		ScheduledEnd:   time.Now().Add(2 * time.Hour),
		Departure:      Location{Lat: 37, Lon: -122, Name: "KPAO"},
	})
	require.NoError(t, err)

	_, err = store.CancelForWeather(context.Background(), b.ID, "first cancel")
	require.NoError(t, err)

	_, err = store.CancelForWeather(context.Background(), b.ID, "second cancel")
	require.Error(t, err)
}

func TestStore_Reschedule_MovesTimesAndAudits(t *testing.T) {
	db := newTestDB(t)
	store := NewStore(db)
	student := seedStudent(t, db)

	b, err := store.Create(context.Background(), CreateParams{
		StudentID:      student.ID,
		ScheduledStart: time.Now().Add(time.Hour),
		ScheduledEnd:   time.Now().Add(2 * time.Hour),
		Departure:      Location{Lat: 37, Lon: -122, Name: "KPAO"},
	})
	require.NoError(t, err)

	newStart := time.Now().Add(48 * time.Hour)
	updated, err := store.Reschedule(context.Background(), b.ID, newStart, nil, "weather reschedule")
	require.NoError(t, err)
	require.Equal(t, StatusRescheduled, updated.Status)
	require.WithinDuration(t, newStart, updated.ScheduledStart, time.Second)

	var events []RescheduleEvent
	require.NoError(t, db.Where("booking_id = ?", b.ID).Find(&events).Error)
	require.Len(t, events, 1)
	require.NotNil(t, events[0].NewStart)
}

func TestStore_Reschedule_RejectsPastNewStart(t *testing.T) {
	db := newTestDB(t)
	store := NewStore(db)
	student := seedStudent(t, db)

	b, err := store.Create(context.Background(), CreateParams{
		StudentID:      student.ID,
		ScheduledStart: time.Now().Add(time.Hour),
		ScheduledEnd:   time.Now().Add(2 * time.Hour),
		Departure:      Location{Lat: 37, Lon: -122, Name: "KPAO"},
	})
	require.NoError(t, err)

	_, err = store.Reschedule(context.Background(), b.ID, time.Now().Add(-time.Hour), nil, "bad")
	require.Error(t, err)
}

func TestStore_RescheduleThenCancel_IsPermitted(t *testing.T) {
	db := newTestDB(t)
	store := NewStore(db)
	student := seedStudent(t, db)

	b, err := store.Create(context.Background(), CreateParams{
		StudentID:      student.ID,
		ScheduledStart: time.Now().Add(time.Hour),
		ScheduledEnd:   time.Now().Add(2 * time.Hour),
		Departure:      Location{Lat: 37, Lon: -122, Name: "KPAO"},
	})
	require.NoError(t, err)

	_, err = store.Reschedule(context.Background(), b.ID, time.Now().Add(48*time.Hour), nil, "r1")
	require.NoError(t, err)

	updated, err := store.CancelForWeather(context.Background(), b.ID, "r2")
	require.NoError(t, err)
	require.Equal(t, StatusCancelled, updated.Status)
}
