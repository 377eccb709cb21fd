package httpapi

import (
	"net/http"

	"github.com/flightschool/weatherops/internal/booking"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type StudentsHandler struct {
	bookings *booking.Store
	logger   *zap.Logger
}

func NewStudentsHandler(e *echo.Echo, bookings *booking.Store, logger *zap.Logger) *StudentsHandler {
	h := &StudentsHandler{bookings: bookings, logger: logger}
	e.GET("/students", h.List)
	e.POST("/students", h.Create)
	return h
}

// List returns every student.
// @Router /students [get]
// @Summary List students
// @Produce json
// @Success 200 {array} studentDTO
// @Tags students
func (h *StudentsHandler) List(c echo.Context) error {
	students, err := h.bookings.ListStudents(c.Request().Context())
	if err != nil {
		return err
	}
	dtos := make([]studentDTO, len(students))
	for i, s := range students {
		dtos[i] = toStudentDTO(s)
	}
	return c.JSON(http.StatusOK, dtos)
}

// Create registers a new student.
// @Router /students [post]
// @Summary Create a student
// @Accept json
// @Produce json
// @Param json body studentCreateRequest true "student"
// @Success 201 {object} studentDTO
// @Failure 400 {object} error
// @Tags students
func (h *StudentsHandler) Create(c echo.Context) error {
	req := &studentCreateRequest{}
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	student, err := h.bookings.CreateStudent(c.Request().Context(), booking.CreateStudentParams{
		Name:          req.Name,
		Email:         req.Email,
		TrainingLevel: booking.TrainingLevel(req.TrainingLevel),
		DeviceToken:   req.DeviceToken,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toStudentDTO(*student))
}
