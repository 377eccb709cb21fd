// Package booking implements the transactional booking state machine:
// Scheduled/Cancelled/Rescheduled/Completed, plus the append-only
// reschedule-event audit log.
package booking

import "time"

type Status string

const (
	StatusScheduled   Status = "Scheduled"
	StatusCancelled   Status = "Cancelled"
	StatusRescheduled Status = "Rescheduled"
	StatusCompleted   Status = "Completed"
)

// TrainingLevel mirrors safety.TrainingLevel as a plain string so this
// package has no dependency on the safety engine.
type TrainingLevel string

const (
	StudentPilot    TrainingLevel = "StudentPilot"
	PrivatePilot    TrainingLevel = "PrivatePilot"
	InstrumentRated TrainingLevel = "InstrumentRated"
)

// Student is immutable once assigned to a booking for audit purposes.
// DeviceToken is the FCM registration token used for push notifications;
// empty means the student has not registered a device.
type Student struct {
	ID            string `gorm:"primaryKey"`
	Name          string
	Email         string
	TrainingLevel TrainingLevel
	DeviceToken   string
	CreatedAt     time.Time
}

func (Student) TableName() string { return "students" }

// Location is the (lat, lon, name) triple embedded inside a booking. It
// has no independent identity — gorm stores it as an embedded struct.
type Location struct {
	Lat  float64
	Lon  float64
	Name string
}

// Booking is the entity the state machine mutates.
type Booking struct {
	ID          string `gorm:"primaryKey"`
	StudentID   string
	Student     *Student `gorm:"foreignKey:StudentID"`
	Aircraft    string

	ScheduledStart time.Time
	ScheduledEnd   time.Time

	DepartureLat  float64
	DepartureLon  float64
	DepartureName string

	HasDestination    bool
	DestinationLat    float64
	DestinationLon    float64
	DestinationName   string

	Status Status

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Booking) TableName() string { return "bookings" }

func (b Booking) Departure() Location {
	return Location{Lat: b.DepartureLat, Lon: b.DepartureLon, Name: b.DepartureName}
}

func (b Booking) Destination() (Location, bool) {
	if !b.HasDestination {
		return Location{}, false
	}
	return Location{Lat: b.DestinationLat, Lon: b.DestinationLon, Name: b.DestinationName}, true
}

// RescheduleEvent is the append-only audit trail for cancellations and
// reschedules. Never mutated after insert.
type RescheduleEvent struct {
	ID        string `gorm:"primaryKey"`
	BookingID string
	OldStart  time.Time
	NewStart  *time.Time
	Reason    string
	CreatedAt time.Time
}

func (RescheduleEvent) TableName() string { return "reschedule_events" }

// transitions enumerates every status change the state machine permits.
// Anything not listed here is rejected.
var transitions = map[Status][]Status{
	StatusScheduled:   {StatusCancelled, StatusRescheduled, StatusCompleted},
	StatusRescheduled: {StatusCancelled, StatusRescheduled, StatusCompleted},
}

func canTransition(from, to Status) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
