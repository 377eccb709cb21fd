package alerts

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/flightschool/weatherops/internal/apperrors"
	"github.com/flightschool/weatherops/internal/metrics"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Store is the sole mutator of alert rows. An optional read-through
// cache sits in front of ListLive; nil Cache means DB-only.
type Store struct {
	db    *gorm.DB
	cache *RedisCache
}

func NewStore(db *gorm.DB, cache *RedisCache) *Store {
	return &Store{db: db, cache: cache}
}

// InsertParams is the caller-supplied content of a new alert.
type InsertParams struct {
	BookingID    *string
	Severity     Severity
	Message      string
	Location     string
	StudentName  string
	OriginalDate time.Time
}

// Insert allocates an id, stamps created_at, and writes the row. A
// foreign-key violation (the booking was deleted concurrently) is
// handled by retrying with BookingID nil rather than failing the write.
func (s *Store) Insert(ctx context.Context, p InsertParams) (*Alert, error) {
	alert := &Alert{
		ID:           uuid.NewString(),
		BookingID:    p.BookingID,
		Severity:     p.Severity,
		Message:      p.Message,
		Location:     p.Location,
		StudentName:  p.StudentName,
		OriginalDate: p.OriginalDate,
		CreatedAt:    time.Now().UTC(),
	}

	err := s.db.WithContext(ctx).Create(alert).Error
	if err != nil && isForeignKeyViolation(err) {
		alert.BookingID = nil
		err = s.db.WithContext(ctx).Create(alert).Error
	}
	if err != nil {
		return nil, apperrors.Database(err)
	}

	metrics.RecordAlertCreated(string(alert.Severity))

	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}

	return alert, nil
}

func isForeignKeyViolation(err error) bool {
	// sqlite/mysql surface FK violations as driver-specific error
	// strings; gorm does not normalize them, so a substring check is
	// the pragmatic signal here.
	msg := err.Error()
	return strings.Contains(msg, "FOREIGN KEY") || strings.Contains(msg, "foreign key")
}

// ListLive returns non-dismissed alerts newest-first, capped at 100.
// It reads through the optional Redis cache; a cache miss or absent
// cache falls back to the database.
func (s *Store) ListLive(ctx context.Context, limit int) ([]Alert, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, limit); ok {
			return cached, nil
		}
	}

	var alertsList []Alert
	err := s.db.WithContext(ctx).
		Where("dismissed_at IS NULL").
		Order("created_at DESC").
		Limit(limit).
		Find(&alertsList).Error
	if err != nil {
		return nil, apperrors.Database(err)
	}

	if s.cache != nil {
		s.cache.Set(ctx, limit, alertsList)
	}

	return alertsList, nil
}

// Dismiss sets dismissed_at. Idempotent: dismissing an already-dismissed
// alert is a no-op success.
func (s *Store) Dismiss(ctx context.Context, id string) error {
	now := time.Now().UTC()
	result := s.db.WithContext(ctx).
		Model(&Alert{}).
		Where("id = ? AND dismissed_at IS NULL", id).
		Update("dismissed_at", now)
	if result.Error != nil {
		return apperrors.Database(result.Error)
	}

	if result.RowsAffected == 0 {
		var existing Alert
		if err := s.db.WithContext(ctx).Where("id = ?", id).First(&existing).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("alert not found")
			}
			return apperrors.Database(err)
		}
		// already dismissed: idempotent success
	}

	metrics.RecordAlertDismissed()

	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
	return nil
}
