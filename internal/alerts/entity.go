// Package alerts persists weather alerts and exposes the live
// (non-dismissed) query the dashboard and scheduler both depend on.
package alerts

import "time"

type Severity string

const (
	SeveritySevere   Severity = "Severe"
	SeverityHigh     Severity = "High"
	SeverityModerate Severity = "Moderate"
	SeverityLow      Severity = "Low"
	SeverityClear    Severity = "Clear"
)

// Alert is a row in the alert store. BookingID is nullable. The schema
// declares no foreign key from alerts to bookings, so deleting a booking
// leaves booking_id on its alerts unchanged.
type Alert struct {
	ID           string `gorm:"primaryKey"`
	BookingID    *string `gorm:"index"`
	Severity     Severity `gorm:"index"`
	Message      string
	Location     string
	StudentName  string
	OriginalDate time.Time
	CreatedAt    time.Time `gorm:"index"`
	DismissedAt  *time.Time `gorm:"index"`
}

func (Alert) TableName() string { return "alerts" }

func (a Alert) IsLive() bool { return a.DismissedAt == nil }
