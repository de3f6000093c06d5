package domain

import (
	"context"
	"time"

	"appointd/internal/models"
)

// Store is the persistence surface the services depend on. The concrete
// implementation is the MongoDB gateway; tests substitute fakes.
type Store interface {
	IsConnected() bool
	Connect(ctx context.Context, maxRetries int, initialDelay time.Duration) bool
	Ping(ctx context.Context) error
	Status(ctx context.Context) string

	InsertBooking(ctx context.Context, b *models.Booking) error
	FindBookingByID(ctx context.Context, id string) (*models.Booking, error)
	LiveBookingAt(ctx context.Context, date, timeStr string) (bool, error)
	LiveTimesForDate(ctx context.Context, date string) ([]string, error)
	CancelBooking(ctx context.Context, id string, at time.Time) error
	SetBookingNotified(ctx context.Context, id string) error
	ListBookingsBetween(ctx context.Context, from, to string) ([]models.Booking, error)

	InsertTravelBooking(ctx context.Context, tb *models.TravelBooking) error
	FindTravelBookingByID(ctx context.Context, id string) (*models.TravelBooking, error)
	CancelTravelBooking(ctx context.Context, id string, at time.Time) error
	SetTravelNotified(ctx context.Context, id string) error
	ListTravelBookings(ctx context.Context) ([]models.TravelBooking, error)
}

// SlotCache caches the booked time cells for a calendar date.
type SlotCache interface {
	GetBookedTimes(ctx context.Context, date string) ([]string, bool, error)
	SetBookedTimes(ctx context.Context, date string, times []string) error
	Invalidate(ctx context.Context, date string) error
}

// EventPublisher decouples services from the concrete bus.
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// BookingService handles appointment bookings and slot availability.
type BookingService interface {
	Create(ctx context.Context, b *models.Booking) error
	Get(ctx context.Context, id string) (*models.Booking, error)
	Cancel(ctx context.Context, id string) (*models.Booking, error)
	AvailableSlots(ctx context.Context, date, serviceType, appointmentType string) (*models.SlotReport, error)
	List(ctx context.Context, from, to string) ([]models.Booking, error)
}

// TravelService handles tour bookings. Tours have no slot dimension.
type TravelService interface {
	Create(ctx context.Context, tb *models.TravelBooking) error
	Get(ctx context.Context, id string) (*models.TravelBooking, error)
	Cancel(ctx context.Context, id string) (*models.TravelBooking, error)
	List(ctx context.Context) ([]models.TravelBooking, error)
}
