package notify

import (
	"fmt"
	"html"
	"strings"
	"time"

	"appointd/internal/models"
)

// formatDate turns a 2006-01-02 date into a human heading. Unparseable
// input is returned as-is.
func formatDate(date string) string {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return d.Format("Monday, January 2, 2006")
}

func serviceDisplay(serviceType string) string {
	words := strings.Split(serviceType, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func meetingKind(appointmentType string) string {
	if appointmentType == models.AppointmentVirtual {
		return "Virtual Meeting (Online)"
	}
	return "In-Person Meeting"
}

func detailRow(label, value string) string {
	if value == "" {
		return ""
	}
	return fmt.Sprintf(
		`<tr><td style="padding:6px 12px;color:#64748b;">%s</td><td style="padding:6px 12px;font-weight:600;">%s</td></tr>`,
		html.EscapeString(label), html.EscapeString(value))
}

func wrapEmail(heading, inner string) string {
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html><html><body style="font-family:Arial,sans-serif;background:#f8fafc;margin:0;padding:24px;">`)
	b.WriteString(`<div style="max-width:600px;margin:0 auto;background:#ffffff;border-radius:8px;overflow:hidden;">`)
	b.WriteString(`<div style="background:#14B8A6;color:#ffffff;padding:20px 24px;"><h1 style="margin:0;font-size:20px;">`)
	b.WriteString(html.EscapeString(heading))
	b.WriteString(`</h1></div><div style="padding:24px;">`)
	b.WriteString(inner)
	b.WriteString(`</div><div style="padding:16px 24px;background:#f1f5f9;color:#64748b;font-size:12px;">`)
	b.WriteString(`This is an automated confirmation email. Please do not reply directly to this message.`)
	b.WriteString(`</div></div></body></html>`)
	return b.String()
}

// CustomerBookingEmail builds the confirmation sent to the customer.
func CustomerBookingEmail(b *models.Booking) (subject, body string) {
	date := formatDate(b.Appointment.Date)
	subject = fmt.Sprintf("Appointment Confirmed - %s at %s", date, b.Appointment.Time)

	var inner strings.Builder
	fmt.Fprintf(&inner, `<p>Dear %s,</p><p>Thank you for booking an appointment with us. Your appointment has been successfully registered!</p>`,
		html.EscapeString(b.Customer.Name))
	inner.WriteString(`<table style="width:100%;border-collapse:collapse;background:#f8fafc;border-radius:6px;">`)
	inner.WriteString(detailRow("Date", date))
	inner.WriteString(detailRow("Time", b.Appointment.Time))
	inner.WriteString(detailRow("Service", serviceDisplay(b.Appointment.ServiceType)))
	inner.WriteString(detailRow("Duration", fmt.Sprintf("%d minutes", b.Appointment.Duration)))
	inner.WriteString(detailRow("Type", meetingKind(b.Appointment.AppointmentType)))
	inner.WriteString(detailRow("Consultant", b.Appointment.Worker))
	inner.WriteString(detailRow("Notes", b.Appointment.Notes))
	inner.WriteString(`</table>`)
	if b.Appointment.AppointmentType == models.AppointmentVirtual {
		inner.WriteString(`<p>This is a virtual appointment. You will receive a meeting link via email before your appointment time.</p>`)
	} else if b.Appointment.Location != "" {
		fmt.Fprintf(&inner, `<p><strong>Meeting location:</strong> %s</p>`, html.EscapeString(b.Appointment.Location))
	}
	inner.WriteString(`<p>Need to reschedule or cancel? Reply to this email and we will help you out.</p>`)

	return subject, wrapEmail("Appointment Confirmed", inner.String())
}

// AdminBookingEmail builds the new-booking alert sent to the admin inbox.
func AdminBookingEmail(b *models.Booking) (subject, body string) {
	date := formatDate(b.Appointment.Date)
	subject = fmt.Sprintf("New Appointment Booking - %s - %s", b.Customer.Name, date)

	var inner strings.Builder
	inner.WriteString(`<p>A new appointment has been booked.</p>`)
	inner.WriteString(`<table style="width:100%;border-collapse:collapse;background:#f8fafc;border-radius:6px;">`)
	inner.WriteString(detailRow("Booking ID", b.ID))
	inner.WriteString(detailRow("Customer", b.Customer.Name))
	inner.WriteString(detailRow("Email", b.Customer.Email))
	inner.WriteString(detailRow("Phone", b.Customer.Phone))
	inner.WriteString(detailRow("Country", b.Customer.Country))
	inner.WriteString(detailRow("Date", date))
	inner.WriteString(detailRow("Time", b.Appointment.Time))
	inner.WriteString(detailRow("Service", serviceDisplay(b.Appointment.ServiceType)))
	inner.WriteString(detailRow("Type", meetingKind(b.Appointment.AppointmentType)))
	inner.WriteString(detailRow("Consultant", b.Appointment.Worker))
	inner.WriteString(detailRow("Notes", b.Appointment.Notes))
	inner.WriteString(`</table>`)

	return subject, wrapEmail("New Appointment Booking", inner.String())
}

// CustomerTravelEmail builds the confirmation sent to the traveller.
func CustomerTravelEmail(tb *models.TravelBooking) (subject, body string) {
	subject = fmt.Sprintf("Tour Booking Confirmed - %s", tb.Customer.FullName)

	var inner strings.Builder
	fmt.Fprintf(&inner, `<p>Dear %s,</p><p>Thank you for registering for the tour. Your booking has been received!</p>`,
		html.EscapeString(tb.Customer.FullName))
	inner.WriteString(`<table style="width:100%;border-collapse:collapse;background:#f8fafc;border-radius:6px;">`)
	inner.WriteString(detailRow("Tour Dates", tb.Booking.TourDates))
	inner.WriteString(detailRow("Tour Cost", tb.Booking.TourCost))
	inner.WriteString(detailRow("Church", tb.Booking.ChurchName))
	inner.WriteString(`</table>`)
	inner.WriteString(`<p>Our team will contact you with payment and travel document details. Reply to this email with any questions.</p>`)

	return subject, wrapEmail("Tour Booking Confirmed", inner.String())
}

// AdminTravelEmail builds the new-tour-booking alert for the admin inbox.
func AdminTravelEmail(tb *models.TravelBooking) (subject, body string) {
	subject = fmt.Sprintf("New Tour Booking - %s - %s", tb.Customer.FullName, tb.Booking.TourDates)

	var inner strings.Builder
	inner.WriteString(`<p>A new tour booking has been submitted.</p>`)
	inner.WriteString(`<table style="width:100%;border-collapse:collapse;background:#f8fafc;border-radius:6px;">`)
	inner.WriteString(detailRow("Booking ID", tb.ID))
	inner.WriteString(detailRow("Name", tb.Customer.FullName))
	inner.WriteString(detailRow("Email", tb.Customer.Email))
	inner.WriteString(detailRow("Phone", tb.Customer.Phone))
	inner.WriteString(detailRow("Nationality", tb.Customer.Nationality))
	inner.WriteString(detailRow("Passport", tb.Customer.PassportNumber))
	inner.WriteString(detailRow("Tour Dates", tb.Booking.TourDates))
	inner.WriteString(detailRow("Tour Cost", tb.Booking.TourCost))
	inner.WriteString(detailRow("Church", tb.Booking.ChurchName))
	inner.WriteString(detailRow("Pastor", tb.Booking.PastorName))
	inner.WriteString(detailRow("Emergency Contact", tb.Booking.EmergencyContactName))
	inner.WriteString(detailRow("Special Requests", tb.Booking.SpecialRequests))
	inner.WriteString(`</table>`)

	return subject, wrapEmail("New Tour Booking", inner.String())
}
