// Package travel implements tour bookings. Tours have no slot grid and
// no conflict rule; every submission is accepted as pending.
package travel

import (
	"context"
	"fmt"
	"time"

	"appointd/internal/domain"
	"appointd/internal/events"
	"appointd/internal/metrics"
	"appointd/internal/models"
	"appointd/internal/store"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Service struct {
	store  domain.Store
	bus    domain.EventPublisher
	loc    *time.Location
	logger *zerolog.Logger
}

func NewService(st domain.Store, bus domain.EventPublisher, timezone string, logger *zerolog.Logger) (*Service, error) {
	if timezone == "" {
		timezone = models.ReferenceTimezone
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", timezone, err)
	}
	return &Service{store: st, bus: bus, loc: loc, logger: logger}, nil
}

// Create registers a tour booking. Empty tour dates and cost fall back
// to the published defaults.
func (s *Service) Create(ctx context.Context, tb *models.TravelBooking) error {
	now := time.Now().In(s.loc)
	if tb.ID == "" {
		tb.ID = uuid.NewString()
	}
	if tb.Booking.TourDates == "" {
		tb.Booking.TourDates = models.DefaultTourDates
	}
	if tb.Booking.TourCost == "" {
		tb.Booking.TourCost = models.DefaultTourCost
	}
	tb.Status = models.StatusPending
	tb.CreatedAt = now
	tb.UpdatedAt = now
	tb.Notified = false

	if err := s.store.InsertTravelBooking(ctx, tb); err != nil {
		return err
	}

	metrics.IncBookingCreated("travel")

	go func(snapshot models.TravelBooking) {
		if err := s.bus.PublishJSON(events.EventTravelBookingCreated, snapshot); err != nil {
			s.logger.Error().Err(err).Str("booking_id", snapshot.ID).Msg("failed to publish travel booking event")
		}
	}(*tb)

	s.logger.Info().Str("booking_id", tb.ID).Msg("travel booking created")
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.TravelBooking, error) {
	return s.store.FindTravelBookingByID(ctx, id)
}

func (s *Service) Cancel(ctx context.Context, id string) (*models.TravelBooking, error) {
	tb, err := s.store.FindTravelBookingByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tb.Status == models.StatusCancelled {
		return nil, store.ErrAlreadyCancelled
	}

	now := time.Now().In(s.loc)
	if err := s.store.CancelTravelBooking(ctx, id, now); err != nil {
		return nil, err
	}

	tb.Status = models.StatusCancelled
	tb.CancelledAt = &now
	tb.UpdatedAt = now

	s.logger.Info().Str("booking_id", id).Msg("travel booking cancelled")
	return tb, nil
}

func (s *Service) List(ctx context.Context) ([]models.TravelBooking, error) {
	return s.store.ListTravelBookings(ctx)
}
