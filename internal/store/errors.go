package store

import "errors"

var (
	// ErrNotConnected is returned when no live database handle is available.
	ErrNotConnected = errors.New("store: not connected")

	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("store: record not found")

	// ErrSlotTaken is returned when a live booking already occupies the slot.
	ErrSlotTaken = errors.New("store: slot already booked")

	// ErrAlreadyCancelled is returned when cancelling a cancelled booking.
	ErrAlreadyCancelled = errors.New("store: booking already cancelled")

	// ErrAlreadyCompleted is returned when cancelling a completed booking.
	ErrAlreadyCompleted = errors.New("store: booking already completed")
)
