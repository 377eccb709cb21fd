package booking

import (
	"context"
	"errors"
	"time"

	"github.com/flightschool/weatherops/internal/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the sole mutator of booking rows and their audit trail.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// CreateParams is the operator-supplied input to Create.
type CreateParams struct {
	StudentID      string
	Aircraft       string
	ScheduledStart time.Time
	ScheduledEnd   time.Time
	Departure      Location
	Destination    *Location
}

// Create inserts a new Scheduled booking after validating the interval
// and location ranges.
func (s *Store) Create(ctx context.Context, p CreateParams) (*Booking, error) {
	if !p.ScheduledEnd.After(p.ScheduledStart) {
		return nil, apperrors.Validation("scheduled_end must be after scheduled_start")
	}
	if !p.ScheduledStart.After(time.Now()) {
		return nil, apperrors.Validation("scheduled_start must be in the future")
	}
	if err := validateLocation(p.Departure); err != nil {
		return nil, err
	}
	if p.Destination != nil {
		if err := validateLocation(*p.Destination); err != nil {
			return nil, err
		}
	}

	b := &Booking{
		ID:             uuid.NewString(),
		StudentID:      p.StudentID,
		Aircraft:       p.Aircraft,
		ScheduledStart: p.ScheduledStart,
		ScheduledEnd:   p.ScheduledEnd,
		DepartureLat:   p.Departure.Lat,
		DepartureLon:   p.Departure.Lon,
		DepartureName:  p.Departure.Name,
		Status:         StatusScheduled,
		CreatedAt:      time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	}
	if p.Destination != nil {
		b.HasDestination = true
		b.DestinationLat = p.Destination.Lat
		b.DestinationLon = p.Destination.Lon
		b.DestinationName = p.Destination.Name
	}

	if err := s.db.WithContext(ctx).Create(b).Error; err != nil {
		return nil, apperrors.Database(err)
	}
	return b, nil
}

func validateLocation(loc Location) error {
	if loc.Lat < -90 || loc.Lat > 90 {
		return apperrors.Validation("latitude must be within [-90, 90]")
	}
	if loc.Lon < -180 || loc.Lon > 180 {
		return apperrors.Validation("longitude must be within [-180, 180]")
	}
	return nil
}

// CancelForWeather transitions a booking to Cancelled and records the
// audit event atomically. Only Scheduled and Rescheduled bookings may be
// cancelled this way.
func (s *Store) CancelForWeather(ctx context.Context, bookingID, reason string) (*Booking, error) {
	return s.transition(ctx, bookingID, StatusCancelled, reason)
}

// Reschedule moves a booking to a new start/end, transitions it to
// Rescheduled, and records the audit event atomically.
func (s *Store) Reschedule(ctx context.Context, bookingID string, newStart time.Time, newEnd *time.Time, reason string) (*Booking, error) {
	if !newStart.After(time.Now()) {
		return nil, apperrors.Validation("new_start must be in the future")
	}

	var updated *Booking
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var b Booking
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", bookingID).First(&b).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("booking not found")
			}
			return apperrors.Database(err)
		}

		if !canTransition(b.Status, StatusRescheduled) {
			return apperrors.Conflict("booking is not in a state that can be rescheduled")
		}

		oldStart := b.ScheduledStart
		b.ScheduledStart = newStart
		if newEnd != nil {
			b.ScheduledEnd = *newEnd
		} else {
			duration := b.ScheduledEnd.Sub(oldStart)
			b.ScheduledEnd = newStart.Add(duration)
		}
		b.Status = StatusRescheduled
		b.UpdatedAt = time.Now().UTC()

		if err := tx.Save(&b).Error; err != nil {
			return apperrors.Database(err)
		}

		event := &RescheduleEvent{
			ID:        uuid.NewString(),
			BookingID: b.ID,
			OldStart:  oldStart,
			NewStart:  &newStart,
			Reason:    reason,
			CreatedAt: time.Now().UTC(),
		}
		if err := tx.Create(event).Error; err != nil {
			return apperrors.Database(err)
		}

		updated = &b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Complete marks a non-terminal booking Completed. Used by an external
// job that reconciles flown bookings.
func (s *Store) Complete(ctx context.Context, bookingID string) (*Booking, error) {
	return s.transition(ctx, bookingID, StatusCompleted, "")
}

// transition performs a locked read, validates the status change, saves
// the row, and (for cancellation) inserts an audit event — all in one
// transaction. Reschedule has extra field mutation so it is implemented
// separately above.
func (s *Store) transition(ctx context.Context, bookingID string, to Status, reason string) (*Booking, error) {
	var updated *Booking
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var b Booking
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", bookingID).First(&b).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("booking not found")
			}
			return apperrors.Database(err)
		}

		if !canTransition(b.Status, to) {
			return apperrors.Conflict("booking is not in a state that allows this transition")
		}

		oldStart := b.ScheduledStart
		b.Status = to
		b.UpdatedAt = time.Now().UTC()

		if err := tx.Save(&b).Error; err != nil {
			return apperrors.Database(err)
		}

		if to == StatusCancelled {
			event := &RescheduleEvent{
				ID:        uuid.NewString(),
				BookingID: b.ID,
				OldStart:  oldStart,
				Reason:    reason,
				CreatedAt: time.Now().UTC(),
			}
			if err := tx.Create(event).Error; err != nil {
				return apperrors.Database(err)
			}
		}

		updated = &b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// GetByID loads one booking by id.
func (s *Store) GetByID(ctx context.Context, id string) (*Booking, error) {
	var b Booking
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&b).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("booking not found")
		}
		return nil, apperrors.Database(err)
	}
	return &b, nil
}

// UpcomingWithin returns Scheduled/Rescheduled bookings whose
// scheduled_start falls within the next window, earliest first, capped
// at limit.
func (s *Store) UpcomingWithin(ctx context.Context, window time.Duration, limit int) ([]Booking, error) {
	if limit <= 0 || limit > 500 {
		limit = 500
	}
	var bookings []Booking
	now := time.Now().UTC()
	err := s.db.WithContext(ctx).
		Where("status IN ?", []Status{StatusScheduled, StatusRescheduled}).
		Where("scheduled_start BETWEEN ? AND ?", now, now.Add(window)).
		Order("scheduled_start ASC").
		Limit(limit).
		Find(&bookings).Error
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return bookings, nil
}

// OverlappingForStudent returns other non-terminal bookings for a
// student that overlap the given interval, used by the reschedule
// service's availability cross-check.
func (s *Store) OverlappingForStudent(ctx context.Context, studentID, excludeBookingID string, start, end time.Time) ([]Booking, error) {
	var bookings []Booking
	err := s.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Where("id <> ?", excludeBookingID).
		Where("status IN ?", []Status{StatusScheduled, StatusRescheduled}).
		Where("scheduled_start < ? AND scheduled_end > ?", end, start).
		Find(&bookings).Error
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return bookings, nil
}

// CreateStudentParams is the operator-supplied input to CreateStudent.
type CreateStudentParams struct {
	Name          string
	Email         string
	TrainingLevel TrainingLevel
	DeviceToken   string
}

// CreateStudent inserts a new student record.
func (s *Store) CreateStudent(ctx context.Context, p CreateStudentParams) (*Student, error) {
	student := &Student{
		ID:            uuid.NewString(),
		Name:          p.Name,
		Email:         p.Email,
		TrainingLevel: p.TrainingLevel,
		DeviceToken:   p.DeviceToken,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(student).Error; err != nil {
		return nil, apperrors.Database(err)
	}
	return student, nil
}

// ListStudents returns every student, ordered by name.
func (s *Store) ListStudents(ctx context.Context) ([]Student, error) {
	var students []Student
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&students).Error; err != nil {
		return nil, apperrors.Database(err)
	}
	return students, nil
}

// GetStudentByID loads one student by id.
func (s *Store) GetStudentByID(ctx context.Context, id string) (*Student, error) {
	var student Student
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&student).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("student not found")
		}
		return nil, apperrors.Database(err)
	}
	return &student, nil
}

// StudentsByIDs batch-loads students, returned as a map keyed by ID so
// callers can look each one up without N+1 queries.
func (s *Store) StudentsByIDs(ctx context.Context, ids []string) (map[string]Student, error) {
	if len(ids) == 0 {
		return map[string]Student{}, nil
	}
	var students []Student
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&students).Error; err != nil {
		return nil, apperrors.Database(err)
	}
	out := make(map[string]Student, len(students))
	for _, st := range students {
		out[st.ID] = st
	}
	return out, nil
}
