package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/flightschool/weatherops/internal/broadcast"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type EventsHandler struct {
	hub    *broadcast.Hub
	logger *zap.Logger
}

func NewEventsHandler(e *echo.Echo, hub *broadcast.Hub, logger *zap.Logger) *EventsHandler {
	h := &EventsHandler{hub: hub, logger: logger}
	e.GET("/events", h.Stream)
	return h
}

type eventEnvelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

func envelopeFor(ev broadcast.Event) eventEnvelope {
	switch e := ev.(type) {
	case broadcast.WeatherAlert:
		return eventEnvelope{Type: "weather_alert", Payload: e}
	case broadcast.BookingRescheduled:
		return eventEnvelope{Type: "booking_rescheduled", Payload: e}
	case broadcast.BookingCancelled:
		return eventEnvelope{Type: "booking_cancelled", Payload: e}
	default:
		return eventEnvelope{Type: "unknown", Payload: nil}
	}
}

// Stream is a long-lived server-sent-events connection delivering
// broadcast.Hub events as they occur. One subscription per connection.
// @Router /events [get]
// @Summary Stream live dashboard events
// @Produce text/event-stream
// @Success 200 {object} eventEnvelope
// @Tags events
func (h *EventsHandler) Stream(c echo.Context) error {
	w := c.Response()
	flusher, ok := w.Writer.(http.Flusher)
	if !ok {
		return echo.NewHTTPError(http.StatusInternalServerError, "streaming unsupported")
	}

	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	sub := h.hub.Subscribe()
	defer sub.Close()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, open := <-sub.Events():
			if !open {
				return nil
			}
			data, err := json.Marshal(envelopeFor(ev))
			if err != nil {
				h.logger.Warn("failed to marshal broadcast event", zap.Error(err))
				continue
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
				return nil
			}
			flusher.Flush()
		}
	}
}
