package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/flightschool/weatherops/internal/apperrors"
	"github.com/flightschool/weatherops/internal/booking"
	"github.com/flightschool/weatherops/internal/broadcast"
	"github.com/flightschool/weatherops/internal/reschedule"
	"github.com/flightschool/weatherops/internal/suggest"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestEcho(t *testing.T) (*echo.Echo, *booking.Store) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&booking.Student{}, &booking.Booking{}, &booking.RescheduleEvent{}))

	store := booking.NewStore(db)
	engine := suggest.NewEngine(nil, nil, zap.NewNop())
	hub := broadcast.NewHub(zap.NewNop())
	reschedules := reschedule.NewService(store, engine, nil, hub, zap.NewNop())

	e := echo.New()
	e.Validator = NewValidator()
	e.HTTPErrorHandler = apperrors.EchoHandler(zap.NewNop())
	NewBookingsHandler(e, store, reschedules, zap.NewNop())
	NewStudentsHandler(e, store, zap.NewNop())
	return e, store
}

func TestBookingsHandler_CreateAndGet(t *testing.T) {
	e, store := newTestEcho(t)

	student, err := store.CreateStudent(context.Background(), booking.CreateStudentParams{
		Name: "Jane", Email: "jane@example.com", TrainingLevel: booking.PrivatePilot,
	})
	require.NoError(t, err)

	body := bookingCreateRequest{
		StudentID:         student.ID,
		AircraftType:      "C172",
		ScheduledDate:     time.Now().Add(24 * time.Hour),
		ScheduledEnd:      time.Now().Add(26 * time.Hour),
		DepartureLocation: locationDTO{Lat: 37.4, Lon: -122.1, Name: "KPAO"},
	}
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/bookings", bytes.NewReader(raw))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var created bookingDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Equal(t, "SCHEDULED", created.Status)
	require.Equal(t, "C172", created.AircraftType)

	getReq := httptest.NewRequest(http.MethodGet, "/bookings/"+created.ID, nil)
	getRec := httptest.NewRecorder()
	e.ServeHTTP(getRec, getReq)
	require.Equal(t, http.StatusOK, getRec.Code)
}

func TestBookingsHandler_CreateRejectsInvalidBody(t *testing.T) {
	e, _ := newTestEcho(t)

	req := httptest.NewRequest(http.MethodPost, "/bookings", bytes.NewReader([]byte(`{}`)))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBookingsHandler_GetMissingReturns404(t *testing.T) {
	e, _ := newTestEcho(t)

	req := httptest.NewRequest(http.MethodGet, "/bookings/does-not-exist", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStudentsHandler_CreateAndList(t *testing.T) {
	e, _ := newTestEcho(t)

	body := studentCreateRequest{Name: "Alex", Email: "alex@example.com", TrainingLevel: "StudentPilot"}
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/students", bytes.NewReader(raw))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	listReq := httptest.NewRequest(http.MethodGet, "/students", nil)
	listRec := httptest.NewRecorder()
	e.ServeHTTP(listRec, listReq)
	require.Equal(t, http.StatusOK, listRec.Code)

	var students []studentDTO
	require.NoError(t, json.Unmarshal(listRec.Body.Bytes(), &students))
	require.Len(t, students, 1)
	require.Equal(t, "Alex", students[0].Name)
}
