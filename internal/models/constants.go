package models

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

const (
	AppointmentInPerson = "in_person"
	AppointmentVirtual  = "virtual"
)

const (
	// ReferenceTimezone is the fixed zone for all generated timestamps,
	// independent of caller locale.
	ReferenceTimezone = "Africa/Kigali"

	// DefaultDuration is the declared appointment length in minutes when
	// the request omits one.
	DefaultDuration = 30

	MinDuration = 15
	MaxDuration = 120

	// DefaultTourDates and DefaultTourCost describe the currently
	// published tour.
	DefaultTourDates = "March 29, 2026 – April 5, 2026"
	DefaultTourCost  = "USD $2,900"
)

// ServiceTypes is the fixed service enumeration for appointments.
var ServiceTypes = map[string]bool{
	"visa_consultation":  true,
	"admission_guidance": true,
	"general_inquiry":    true,
	"work_permit":        true,
	"express_entry":      true,
}
