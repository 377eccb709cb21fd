package httpapi

import (
	"time"

	"github.com/flightschool/weatherops/internal/alerts"
	"github.com/flightschool/weatherops/internal/booking"
	"github.com/flightschool/weatherops/internal/suggest"
)

type locationDTO struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Name string  `json:"name"`
}

type bookingDTO struct {
	ID                  string       `json:"id"`
	StudentID           string       `json:"student_id"`
	AircraftType        string       `json:"aircraft_type"`
	ScheduledDate        time.Time    `json:"scheduled_date"`
	ScheduledEnd         time.Time    `json:"scheduled_end"`
	DepartureLocation    locationDTO  `json:"departure_location"`
	DestinationLocation  *locationDTO `json:"destination_location"`
	Status               string       `json:"status"`
}

func toBookingDTO(b booking.Booking) bookingDTO {
	dto := bookingDTO{
		ID:                b.ID,
		StudentID:         b.StudentID,
		AircraftType:      b.Aircraft,
		ScheduledDate:      b.ScheduledStart,
		ScheduledEnd:       b.ScheduledEnd,
		DepartureLocation: locationDTO{Lat: b.DepartureLat, Lon: b.DepartureLon, Name: b.DepartureName},
		Status:            statusToWire(b.Status),
	}
	if dest, ok := b.Destination(); ok {
		dto.DestinationLocation = &locationDTO{Lat: dest.Lat, Lon: dest.Lon, Name: dest.Name}
	}
	return dto
}

func statusToWire(s booking.Status) string {
	switch s {
	case booking.StatusScheduled:
		return "SCHEDULED"
	case booking.StatusCancelled:
		return "CANCELLED"
	case booking.StatusRescheduled:
		return "RESCHEDULED"
	case booking.StatusCompleted:
		return "COMPLETED"
	default:
		return string(s)
	}
}

// bookingCreateRequest is the POST /bookings body.
type bookingCreateRequest struct {
	StudentID           string       `json:"student_id" validate:"required"`
	AircraftType        string       `json:"aircraft_type" validate:"required"`
	ScheduledDate        time.Time    `json:"scheduled_date" validate:"required"`
	ScheduledEnd         time.Time    `json:"scheduled_end" validate:"required"`
	DepartureLocation    locationDTO  `json:"departure_location" validate:"required"`
	DestinationLocation  *locationDTO `json:"destination_location"`
}

type rescheduleRequest struct {
	NewScheduledDate time.Time `json:"new_scheduled_date" validate:"required"`
	Reason           string    `json:"reason"`
}

type studentDTO struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	TrainingLevel string `json:"training_level"`
}

func toStudentDTO(s booking.Student) studentDTO {
	return studentDTO{ID: s.ID, Name: s.Name, Email: s.Email, TrainingLevel: string(s.TrainingLevel)}
}

type studentCreateRequest struct {
	Name          string `json:"name" validate:"required"`
	Email         string `json:"email" validate:"required,email"`
	TrainingLevel string `json:"training_level" validate:"required,oneof=StudentPilot PrivatePilot InstrumentRated"`
	DeviceToken   string `json:"device_token"`
}

type alertDTO struct {
	ID           string     `json:"id"`
	BookingID    *string    `json:"booking_id"`
	Severity     string     `json:"severity"`
	Message      string     `json:"message"`
	Location     string     `json:"location"`
	StudentName  *string    `json:"student_name"`
	OriginalDate *time.Time `json:"original_date"`
	CreatedAt    time.Time  `json:"created_at"`
	DismissedAt  *time.Time `json:"dismissed_at"`
}

func toAlertDTO(a alerts.Alert) alertDTO {
	dto := alertDTO{
		ID:          a.ID,
		BookingID:   a.BookingID,
		Severity:    severityToWire(a.Severity),
		Message:     a.Message,
		Location:    a.Location,
		CreatedAt:   a.CreatedAt,
		DismissedAt: a.DismissedAt,
	}
	if a.StudentName != "" {
		name := a.StudentName
		dto.StudentName = &name
	}
	if !a.OriginalDate.IsZero() {
		date := a.OriginalDate
		dto.OriginalDate = &date
	}
	return dto
}

func severityToWire(s alerts.Severity) string {
	switch s {
	case alerts.SeveritySevere:
		return "severe"
	case alerts.SeverityHigh:
		return "high"
	case alerts.SeverityModerate:
		return "moderate"
	case alerts.SeverityLow:
		return "low"
	case alerts.SeverityClear:
		return "clear"
	default:
		return string(s)
	}
}

type optionDTO struct {
	DateTime            time.Time `json:"date_time"`
	Reason              string    `json:"reason"`
	WeatherScore        float64   `json:"weather_score"`
	InstructorAvailable bool      `json:"instructor_available"`
}

type suggestionsResponse struct {
	Options [3]optionDTO `json:"options"`
}

func toSuggestionsResponse(options [3]suggest.Option) suggestionsResponse {
	var resp suggestionsResponse
	for i, o := range options {
		resp.Options[i] = optionDTO{
			DateTime:            o.DateTime,
			Reason:              o.Reason,
			WeatherScore:        o.WeatherScore,
			InstructorAvailable: o.InstructorAvailable,
		}
	}
	return resp
}
