package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/flightschool/weatherops/internal/alerts"
	"github.com/flightschool/weatherops/internal/apperrors"
	"github.com/flightschool/weatherops/internal/booking"
	"github.com/flightschool/weatherops/internal/broadcast"
	"github.com/flightschool/weatherops/internal/metrics"
	"github.com/flightschool/weatherops/internal/notify"
	"github.com/flightschool/weatherops/internal/safety"
	"github.com/flightschool/weatherops/internal/weather"

	"go.uber.org/zap"
)

const tickWindow = 48 * time.Hour
const maxBookingsPerTick = 500

// Scheduler is the periodic job that ticks every interval, evaluates
// upcoming bookings against current weather, and cancels the unsafe
// ones. It is single-flighted: a tick that would overlap a still-running
// one is skipped with a logged warning.
type Scheduler struct {
	bookings     *booking.Store
	weatherCli   *weather.Client
	alertStore   *alerts.Store
	hub          *broadcast.Hub
	notifier     notify.Sink
	logger       *zap.Logger
	interval     time.Duration

	stopChan chan struct{}
	wg       sync.WaitGroup

	mu      sync.Mutex
	running bool
	ticking bool
}

// notifier may be nil, in which case cancellation pushes are skipped.
func New(bookings *booking.Store, weatherCli *weather.Client, alertStore *alerts.Store, hub *broadcast.Hub, notifier notify.Sink, interval time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		bookings:   bookings,
		weatherCli: weatherCli,
		alertStore: alertStore,
		hub:        hub,
		notifier:   notifier,
		interval:   interval,
		logger:     logger,
		stopChan:   make(chan struct{}),
	}
}

// Start begins the ticker goroutine. Returns an error if already
// running.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("scheduler is already running")
	}
	s.running = true
	s.mu.Unlock()

	s.logger.Info("starting scheduler", zap.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.runTick(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler context cancelled, shutting down")
			s.setRunning(false)
			return ctx.Err()
		case <-s.stopChan:
			s.logger.Info("scheduler stop signal received")
			s.setRunning(false)
			return nil
		case <-ticker.C:
			s.runTick(ctx)
		}
	}
}

// Stop signals the scheduler to exit its loop and waits for any
// in-flight tick to finish.
func (s *Scheduler) Stop() {
	close(s.stopChan)
	s.wg.Wait()
}

// IsRunning reports whether the tick loop is currently active, used by
// the health checker.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Scheduler) setRunning(v bool) {
	s.mu.Lock()
	s.running = v
	s.mu.Unlock()
}

// runTick runs one tick in its own goroutine, skipping it entirely if
// the previous tick has not yet completed.
func (s *Scheduler) runTick(ctx context.Context) {
	s.mu.Lock()
	if s.ticking {
		s.mu.Unlock()
		s.logger.Warn("tick skipped: previous tick still running")
		return
	}
	s.ticking = true
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			s.mu.Lock()
			s.ticking = false
			s.mu.Unlock()
		}()

		start := time.Now()
		if err := s.processTick(ctx); err != nil {
			s.logger.Error("scheduler tick failed", zap.Error(err))
		}
		metrics.RecordSchedulerTick(time.Since(start))
	}()
}

func (s *Scheduler) processTick(ctx context.Context) error {
	upcoming, err := s.bookings.UpcomingWithin(ctx, tickWindow, maxBookingsPerTick)
	if err != nil {
		return fmt.Errorf("failed to load upcoming bookings: %w", err)
	}
	if len(upcoming) == 0 {
		return nil
	}

	studentIDs := make([]string, 0, len(upcoming))
	seen := make(map[string]struct{})
	for _, b := range upcoming {
		if _, ok := seen[b.StudentID]; !ok {
			seen[b.StudentID] = struct{}{}
			studentIDs = append(studentIDs, b.StudentID)
		}
	}
	students, err := s.bookings.StudentsByIDs(ctx, studentIDs)
	if err != nil {
		return fmt.Errorf("failed to batch-load students: %w", err)
	}

	cycleCache := weather.NewCycleCache(s.weatherCli)

	for _, b := range upcoming {
		s.processBooking(ctx, b, students, cycleCache)
	}
	return nil
}

func (s *Scheduler) processBooking(ctx context.Context, b booking.Booking, students map[string]booking.Student, cycleCache *weather.CycleCache) {
	student, ok := students[b.StudentID]
	level := safety.PrivatePilot
	studentName := ""
	if ok {
		level = safety.TrainingLevel(student.TrainingLevel)
		studentName = student.Name
	}

	dep := b.Departure()
	obs, err := cycleCache.Fetch(ctx, weather.Location{Lat: dep.Lat, Lon: dep.Lon, Name: dep.Name})
	if err != nil {
		s.logger.Warn("weather fetch failed for booking, skipping this tick",
			zap.String("booking_id", b.ID), zap.Error(err))
		return
	}

	safe, reason := safety.IsSafe(obs, level)
	score := safety.Score(obs, level)
	severity := ClassifySeverity(score, level)

	if safe {
		metrics.RecordSchedulerBookingOutcome("safe")
		return
	}

	message := fmt.Sprintf("%s at %s for %s", reason, dep.Name, b.ScheduledStart.Format(time.RFC3339))

	alert, err := s.alertStore.Insert(ctx, alerts.InsertParams{
		BookingID:    &b.ID,
		Severity:     alerts.Severity(severity),
		Message:      message,
		Location:     dep.Name,
		StudentName:  studentName,
		OriginalDate: b.ScheduledStart,
	})
	if err != nil {
		s.logger.Error("failed to persist weather alert", zap.String("booking_id", b.ID), zap.Error(err))
		metrics.RecordSchedulerBookingOutcome("alert_insert_failed")
		return
	}

	s.hub.Publish(broadcast.WeatherAlert{
		AlertID:      alert.ID,
		BookingID:    b.ID,
		Severity:     severity,
		Message:      message,
		Location:     dep.Name,
		StudentName:  studentName,
		OriginalDate: b.ScheduledStart,
		CreatedAt:    alert.CreatedAt,
	})

	_, err = s.bookings.CancelForWeather(ctx, b.ID, reason)
	if err != nil {
		if apperrors.Is(err, apperrors.CodeConflict) || apperrors.Is(err, apperrors.CodeNotFound) {
			s.logger.Info("booking cancellation skipped (already handled)", zap.String("booking_id", b.ID), zap.Error(err))
			metrics.RecordSchedulerBookingOutcome("cancel_skipped")
			return
		}
		s.logger.Error("failed to cancel booking for weather", zap.String("booking_id", b.ID), zap.Error(err))
		metrics.RecordSchedulerBookingOutcome("cancel_failed")
		return
	}

	s.hub.Publish(broadcast.BookingCancelled{BookingID: b.ID, Reason: reason})
	metrics.RecordSchedulerBookingOutcome("cancelled")
	s.notifyCancellation(ctx, student, b, message)
}

// notifyCancellation is best-effort: a delivery failure is logged, never
// surfaces as a tick failure.
func (s *Scheduler) notifyCancellation(ctx context.Context, student booking.Student, b booking.Booking, message string) {
	if s.notifier == nil || student.DeviceToken == "" {
		return
	}
	err := s.notifier.Send(ctx, []string{student.DeviceToken}, notify.Notification{
		Title: "Flight cancelled for weather",
		Body:  message,
		Data:  map[string]string{"booking_id": b.ID},
	})
	if err != nil {
		s.logger.Warn("push notification failed", zap.String("booking_id", b.ID), zap.Error(err))
	}
}
