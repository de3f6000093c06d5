package models

import "time"

// TravelCustomerInfo is the traveller profile captured on a tour booking.
// Field names mirror the public form payload.
type TravelCustomerInfo struct {
	FullName           string `bson:"fullName" json:"fullName"`
	Email              string `bson:"email" json:"email"`
	Phone              string `bson:"phone" json:"phone"`
	DateOfBirth        string `bson:"dateOfBirth,omitempty" json:"dateOfBirth,omitempty"`
	Gender             string `bson:"gender,omitempty" json:"gender,omitempty"`
	Nationality        string `bson:"nationality,omitempty" json:"nationality,omitempty"`
	PassportNumber     string `bson:"passportNumber,omitempty" json:"passportNumber,omitempty"`
	PassportExpiryDate string `bson:"passportExpiryDate,omitempty" json:"passportExpiryDate,omitempty"`
	Address            string `bson:"address,omitempty" json:"address,omitempty"`
	City               string `bson:"city,omitempty" json:"city,omitempty"`
	Country            string `bson:"country,omitempty" json:"country,omitempty"`
	AlternatePhone     string `bson:"alternatePhone,omitempty" json:"alternatePhone,omitempty"`
}

// TravelDetails carries the tour-specific answers. TourDates and TourCost
// default to the current published tour when left empty.
type TravelDetails struct {
	TourDates                    string `bson:"tourDates" json:"tourDates"`
	TourCost                     string `bson:"tourCost" json:"tourCost"`
	ChurchName                   string `bson:"churchName,omitempty" json:"churchName,omitempty"`
	ChurchAddress                string `bson:"churchAddress,omitempty" json:"churchAddress,omitempty"`
	PastorName                   string `bson:"pastorName,omitempty" json:"pastorName,omitempty"`
	PastorPhone                  string `bson:"pastorPhone,omitempty" json:"pastorPhone,omitempty"`
	MembershipYears              string `bson:"membershipYears,omitempty" json:"membershipYears,omitempty"`
	PreviousTravel               string `bson:"previousTravel,omitempty" json:"previousTravel,omitempty"`
	MedicalConditions            string `bson:"medicalConditions,omitempty" json:"medicalConditions,omitempty"`
	DietaryRequirements          string `bson:"dietaryRequirements,omitempty" json:"dietaryRequirements,omitempty"`
	EmergencyContactName         string `bson:"emergencyContactName,omitempty" json:"emergencyContactName,omitempty"`
	EmergencyContactPhone        string `bson:"emergencyContactPhone,omitempty" json:"emergencyContactPhone,omitempty"`
	EmergencyContactRelationship string `bson:"emergencyContactRelationship,omitempty" json:"emergencyContactRelationship,omitempty"`
	SpecialRequests              string `bson:"specialRequests,omitempty" json:"specialRequests,omitempty"`
	HowDidYouHear                string `bson:"howDidYouHear,omitempty" json:"howDidYouHear,omitempty"`
}

// TravelBooking is the tour variant of Booking: no slot dimension, no
// conflict check, no completed state.
type TravelBooking struct {
	ID          string             `bson:"id" json:"id"`
	Customer    TravelCustomerInfo `bson:"customer" json:"customer"`
	Booking     TravelDetails      `bson:"booking" json:"booking"`
	Status      string             `bson:"status" json:"status"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
	CancelledAt *time.Time         `bson:"cancelled_at,omitempty" json:"cancelled_at,omitempty"`
	Notified    bool               `bson:"notified" json:"notified"`
}
