// Package booking implements the appointment booking flow: conflict
// detection, the availability grid and the status lifecycle.
package booking

import (
	"context"
	"fmt"
	"time"

	"appointd/internal/domain"
	"appointd/internal/events"
	"appointd/internal/metrics"
	"appointd/internal/models"
	"appointd/internal/slots"
	"appointd/internal/store"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Service struct {
	store  domain.Store
	cache  domain.SlotCache
	bus    domain.EventPublisher
	loc    *time.Location
	logger *zerolog.Logger
}

func NewService(st domain.Store, cache domain.SlotCache, bus domain.EventPublisher, timezone string, logger *zerolog.Logger) (*Service, error) {
	if timezone == "" {
		timezone = models.ReferenceTimezone
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", timezone, err)
	}
	return &Service{store: st, cache: cache, bus: bus, loc: loc, logger: logger}, nil
}

// Create registers a new appointment. The pre-insert conflict check and
// the insert are not atomic; two racing requests for the same slot can
// both pass the check, and the second one wins the write. The check
// still stops every conflict observable at decision time.
func (s *Service) Create(ctx context.Context, b *models.Booking) error {
	taken, err := s.store.LiveBookingAt(ctx, b.Appointment.Date, b.Appointment.Time)
	if err != nil {
		return fmt.Errorf("conflict check: %w", err)
	}
	if taken {
		metrics.IncSlotConflict()
		return store.ErrSlotTaken
	}

	now := time.Now().In(s.loc)
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	b.Status = models.StatusPending
	b.CreatedAt = now
	b.UpdatedAt = now
	b.Notified = false

	if err := s.store.InsertBooking(ctx, b); err != nil {
		return err
	}

	s.invalidateDate(ctx, b.Appointment.Date)
	metrics.IncBookingCreated("appointment")

	// Notification fan-out must not delay the response.
	go func(snapshot models.Booking) {
		if err := s.bus.PublishJSON(events.EventBookingCreated, snapshot); err != nil {
			s.logger.Error().Err(err).Str("booking_id", snapshot.ID).Msg("failed to publish booking event")
		}
	}(*b)

	s.logger.Info().
		Str("booking_id", b.ID).
		Str("date", b.Appointment.Date).
		Str("time", b.Appointment.Time).
		Msg("booking created")
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Booking, error) {
	return s.store.FindBookingByID(ctx, id)
}

// Cancel moves a booking to cancelled. Cancelling twice reports
// ErrAlreadyCancelled so callers can answer idempotent retries
// distinctly from success.
func (s *Service) Cancel(ctx context.Context, id string) (*models.Booking, error) {
	b, err := s.store.FindBookingByID(ctx, id)
	if err != nil {
		return nil, err
	}
	switch b.Status {
	case models.StatusCancelled:
		return nil, store.ErrAlreadyCancelled
	case models.StatusCompleted:
		return nil, store.ErrAlreadyCompleted
	}

	now := time.Now().In(s.loc)
	if err := s.store.CancelBooking(ctx, id, now); err != nil {
		return nil, err
	}

	b.Status = models.StatusCancelled
	b.CancelledAt = &now
	b.UpdatedAt = now

	s.invalidateDate(ctx, b.Appointment.Date)

	s.logger.Info().Str("booking_id", id).Msg("booking cancelled")
	return b, nil
}

// AvailableSlots answers the grid for one date. When the store is
// unreachable the full grid is returned with Degraded set; showing every
// slot as free is preferred over refusing the page, since creation still
// re-checks conflicts.
func (s *Service) AvailableSlots(ctx context.Context, date, serviceType, appointmentType string) (*models.SlotReport, error) {
	report := &models.SlotReport{
		Date:            date,
		ServiceType:     serviceType,
		AppointmentType: appointmentType,
	}

	booked, err := s.bookedTimes(ctx, date)
	if err != nil {
		s.logger.Warn().Err(err).Str("date", date).Msg("slot lookup degraded, returning full grid")
		grid := slots.Grid()
		report.AvailableSlots = grid
		report.TotalSlots = len(grid)
		report.AvailableCount = len(grid)
		report.Degraded = true
		return report, nil
	}

	r := slots.Compute(booked)
	report.AvailableSlots = r.Available
	report.TotalSlots = len(r.All)
	report.BookedSlots = len(r.All) - len(r.Available)
	report.AvailableCount = len(r.Available)
	return report, nil
}

func (s *Service) List(ctx context.Context, from, to string) ([]models.Booking, error) {
	return s.store.ListBookingsBetween(ctx, from, to)
}

// bookedTimes reads through the slot cache. Cache errors are treated as
// misses; only a store failure surfaces.
func (s *Service) bookedTimes(ctx context.Context, date string) ([]string, error) {
	if s.cache != nil {
		if times, ok, err := s.cache.GetBookedTimes(ctx, date); err == nil && ok {
			return times, nil
		}
	}

	times, err := s.store.LiveTimesForDate(ctx, date)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetBookedTimes(ctx, date, times); err != nil {
			s.logger.Warn().Err(err).Str("date", date).Msg("failed to populate slot cache")
		}
	}
	return times, nil
}

func (s *Service) invalidateDate(ctx context.Context, date string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, date); err != nil {
		s.logger.Warn().Err(err).Str("date", date).Msg("failed to invalidate slot cache")
	}
}
