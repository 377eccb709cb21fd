package httpapi

import (
	"net/http"
	"strconv"

	"github.com/flightschool/weatherops/internal/alerts"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type AlertsHandler struct {
	alerts *alerts.Store
	logger *zap.Logger
}

func NewAlertsHandler(e *echo.Echo, alertStore *alerts.Store, logger *zap.Logger) *AlertsHandler {
	h := &AlertsHandler{alerts: alertStore, logger: logger}
	e.GET("/alerts", h.List)
	e.POST("/alerts/:id/dismiss", h.Dismiss)
	return h
}

// List returns live (non-dismissed) alerts, newest first.
// @Router /alerts [get]
// @Summary List live alerts
// @Produce json
// @Param limit query int false "max results, default 100"
// @Success 200 {array} alertDTO
// @Tags alerts
func (h *AlertsHandler) List(c echo.Context) error {
	limit := 100
	if raw := c.QueryParam("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	live, err := h.alerts.ListLive(c.Request().Context(), limit)
	if err != nil {
		return err
	}
	dtos := make([]alertDTO, len(live))
	for i, a := range live {
		dtos[i] = toAlertDTO(a)
	}
	return c.JSON(http.StatusOK, dtos)
}

// Dismiss marks an alert as dismissed. Idempotent.
// @Router /alerts/{id}/dismiss [post]
// @Summary Dismiss an alert
// @Param id path string true "alert id"
// @Success 204
// @Failure 404 {object} error
// @Tags alerts
func (h *AlertsHandler) Dismiss(c echo.Context) error {
	if err := h.alerts.Dismiss(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
