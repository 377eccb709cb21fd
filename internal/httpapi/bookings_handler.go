package httpapi

import (
	"net/http"
	"time"

	"github.com/flightschool/weatherops/internal/booking"
	"github.com/flightschool/weatherops/internal/reschedule"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type BookingsHandler struct {
	bookings    *booking.Store
	reschedules *reschedule.Service
	logger      *zap.Logger
}

func NewBookingsHandler(e *echo.Echo, bookings *booking.Store, reschedules *reschedule.Service, logger *zap.Logger) *BookingsHandler {
	h := &BookingsHandler{bookings: bookings, reschedules: reschedules, logger: logger}
	e.GET("/bookings", h.List)
	e.POST("/bookings", h.Create)
	e.GET("/bookings/:id", h.Get)
	e.GET("/bookings/:id/reschedule-suggestions", h.Suggestions)
	e.PATCH("/bookings/:id/reschedule", h.Reschedule)
	return h
}

// List returns upcoming bookings within the next 48 hours.
// @Router /bookings [get]
// @Summary List upcoming bookings
// @Produce json
// @Success 200 {array} bookingDTO
// @Tags bookings
func (h *BookingsHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	upcoming, err := h.bookings.UpcomingWithin(ctx, 48*time.Hour, 500)
	if err != nil {
		return err
	}
	dtos := make([]bookingDTO, len(upcoming))
	for i, b := range upcoming {
		dtos[i] = toBookingDTO(b)
	}
	return c.JSON(http.StatusOK, dtos)
}

// Create registers a new booking.
// @Router /bookings [post]
// @Summary Create a booking
// @Accept json
// @Produce json
// @Param json body bookingCreateRequest true "booking"
// @Success 201 {object} bookingDTO
// @Failure 400 {object} error
// @Tags bookings
func (h *BookingsHandler) Create(c echo.Context) error {
	req := &bookingCreateRequest{}
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	params := booking.CreateParams{
		StudentID:      req.StudentID,
		Aircraft:       req.AircraftType,
		ScheduledStart: req.ScheduledDate,
		ScheduledEnd:   req.ScheduledEnd,
		Departure:      booking.Location{Lat: req.DepartureLocation.Lat, Lon: req.DepartureLocation.Lon, Name: req.DepartureLocation.Name},
	}
	if req.DestinationLocation != nil {
		params.Destination = &booking.Location{Lat: req.DestinationLocation.Lat, Lon: req.DestinationLocation.Lon, Name: req.DestinationLocation.Name}
	}

	b, err := h.bookings.Create(c.Request().Context(), params)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toBookingDTO(*b))
}

// Get returns a single booking by id.
// @Router /bookings/{id} [get]
// @Summary Get a booking
// @Produce json
// @Param id path string true "booking id"
// @Success 200 {object} bookingDTO
// @Failure 404 {object} error
// @Tags bookings
func (h *BookingsHandler) Get(c echo.Context) error {
	b, err := h.bookings.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toBookingDTO(*b))
}

// Suggestions returns three reschedule options for a booking.
// @Router /bookings/{id}/reschedule-suggestions [get]
// @Summary Get reschedule suggestions
// @Produce json
// @Param id path string true "booking id"
// @Success 200 {object} suggestionsResponse
// @Failure 404 {object} error
// @Tags bookings
func (h *BookingsHandler) Suggestions(c echo.Context) error {
	options, err := h.reschedules.Suggestions(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSuggestionsResponse(options))
}

// Reschedule applies an operator-chosen new start time to a booking.
// @Router /bookings/{id}/reschedule [patch]
// @Summary Reschedule a booking
// @Accept json
// @Produce json
// @Param id path string true "booking id"
// @Param json body rescheduleRequest true "new schedule"
// @Success 200 {object} bookingDTO
// @Failure 400 {object} error
// @Failure 409 {object} error
// @Tags bookings
func (h *BookingsHandler) Reschedule(c echo.Context) error {
	req := &rescheduleRequest{}
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	updated, err := h.reschedules.Apply(c.Request().Context(), c.Param("id"), req.NewScheduledDate, req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toBookingDTO(*updated))
}
