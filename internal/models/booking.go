package models

import "time"

// CustomerInfo identifies the person an appointment belongs to.
// Immutable once the booking is created.
type CustomerInfo struct {
	Name    string `bson:"name" json:"name"`
	Email   string `bson:"email" json:"email"`
	Phone   string `bson:"phone" json:"phone"`
	Country string `bson:"country,omitempty" json:"country,omitempty"`
}

// AppointmentInfo describes the requested slot and service.
// Date is a calendar date (2006-01-02), Time a grid cell (15:04).
type AppointmentInfo struct {
	Date            string `bson:"date" json:"date"`
	Time            string `bson:"time" json:"time"`
	AppointmentType string `bson:"appointment_type" json:"appointment_type"`
	ServiceType     string `bson:"service_type" json:"service_type"`
	Duration        int    `bson:"duration" json:"duration"`
	Location        string `bson:"location,omitempty" json:"location,omitempty"`
	Worker          string `bson:"worker,omitempty" json:"worker,omitempty"`
	Notes           string `bson:"notes,omitempty" json:"notes,omitempty"`
}

type Booking struct {
	ID          string          `bson:"id" json:"id"`
	Customer    CustomerInfo    `bson:"customer" json:"customer"`
	Appointment AppointmentInfo `bson:"appointment" json:"appointment"`
	Status      string          `bson:"status" json:"status"`
	CreatedAt   time.Time       `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `bson:"updated_at" json:"updated_at"`
	ConfirmedAt *time.Time      `bson:"confirmed_at,omitempty" json:"confirmed_at,omitempty"`
	CancelledAt *time.Time      `bson:"cancelled_at,omitempty" json:"cancelled_at,omitempty"`
	Notified    bool            `bson:"notified" json:"notified"`
}

// Live reports whether the booking still occupies its slot.
func (b *Booking) Live() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// SlotReport is the availability answer for one calendar date.
// ServiceType and AppointmentType are echoed back; every service shares
// the same grid.
type SlotReport struct {
	Date            string   `json:"date"`
	ServiceType     string   `json:"service_type"`
	AppointmentType string   `json:"appointment_type"`
	AvailableSlots  []string `json:"available_slots"`
	TotalSlots      int      `json:"total_slots"`
	BookedSlots     int      `json:"booked_slots"`
	AvailableCount  int      `json:"available_count"`
	Degraded        bool     `json:"degraded,omitempty"`
}
