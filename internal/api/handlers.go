package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"appointd/internal/export"
	"appointd/internal/models"
	"appointd/internal/slots"
	"appointd/internal/store"
)

func (s *HTTPServer) handleBookings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.createBooking(w, r)
	case http.MethodGet:
		s.listBookings(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) createBooking(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Customer    models.CustomerInfo    `json:"customer"`
		Appointment models.AppointmentInfo `json:"appointment"`
	}
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if msg := validateCustomer(req.Customer); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	if msg := normalizeAppointment(&req.Appointment); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	b := &models.Booking{Customer: req.Customer, Appointment: req.Appointment}
	if err := s.bookings.Create(r.Context(), b); err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, b)
}

func (s *HTTPServer) listBookings(w http.ResponseWriter, r *http.Request) {
	from := strings.TrimSpace(r.URL.Query().Get("from"))
	to := strings.TrimSpace(r.URL.Query().Get("to"))
	for _, d := range []string{from, to} {
		if d == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", d); err != nil {
			writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
			return
		}
	}

	bookings, err := s.bookings.List(r.Context(), from, to)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings, "count": len(bookings)})
}

func (s *HTTPServer) handleBookingByID(w http.ResponseWriter, r *http.Request) {
	id, action, ok := pathIDAction(w, r, "/api/v1/bookings/")
	if !ok {
		return
	}

	switch {
	case action == "" && r.Method == http.MethodGet:
		b, err := s.bookings.Get(r.Context(), id)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, b)
	case action == "cancel" && r.Method == http.MethodPatch:
		b, err := s.bookings.Cancel(r.Context(), id)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"message": "booking cancelled", "booking": b})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleSlots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if date == "" {
		writeError(w, http.StatusBadRequest, "date is required")
		return
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
		return
	}

	serviceType := strings.TrimSpace(r.URL.Query().Get("service_type"))
	appointmentType := strings.TrimSpace(r.URL.Query().Get("appointment_type"))
	if appointmentType == "" {
		appointmentType = models.AppointmentInPerson
	}

	report, err := s.bookings.AvailableSlots(r.Context(), date, serviceType, appointmentType)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *HTTPServer) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	from := strings.TrimSpace(r.URL.Query().Get("from"))
	to := strings.TrimSpace(r.URL.Query().Get("to"))

	bookings, err := s.bookings.List(r.Context(), from, to)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	fileName := fmt.Sprintf("bookings_%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	if err := export.WriteBookingsXLSX(w, bookings); err != nil {
		s.logger.Error().Err(err).Msg("failed to stream export")
	}
}

func (s *HTTPServer) handleTravelBookings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.createTravelBooking(w, r)
	case http.MethodGet:
		bookings, err := s.travel.List(r.Context())
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		if bookings == nil {
			bookings = []models.TravelBooking{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings, "count": len(bookings)})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) createTravelBooking(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Customer models.TravelCustomerInfo `json:"customer"`
		Booking  models.TravelDetails      `json:"booking"`
	}
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if msg := validateTravelCustomer(req.Customer); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	tb := &models.TravelBooking{Customer: req.Customer, Booking: req.Booking}
	if err := s.travel.Create(r.Context(), tb); err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, tb)
}

func (s *HTTPServer) handleTravelBookingByID(w http.ResponseWriter, r *http.Request) {
	id, action, ok := pathIDAction(w, r, "/api/v1/travel-bookings/")
	if !ok {
		return
	}

	switch {
	case action == "" && r.Method == http.MethodGet:
		tb, err := s.travel.Get(r.Context(), id)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, tb)
	case action == "cancel" && r.Method == http.MethodPatch:
		tb, err := s.travel.Cancel(r.Context(), id)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"message": "booking cancelled", "booking": tb})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// pathIDAction splits "{id}" or "{id}/cancel" off the route prefix.
func pathIDAction(w http.ResponseWriter, r *http.Request, prefix string) (id, action string, ok bool) {
	rest := strings.TrimSpace(strings.TrimPrefix(r.URL.Path, prefix))
	id, action, _ = strings.Cut(rest, "/")
	if id == "" || strings.Contains(action, "/") || (action != "" && action != "cancel") {
		writeError(w, http.StatusNotFound, "not found")
		return "", "", false
	}
	return id, action, true
}

// writeDomainError maps service errors onto HTTP statuses.
func (s *HTTPServer) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrSlotTaken):
		writeError(w, http.StatusConflict, "this time slot is already booked")
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "booking not found")
	case errors.Is(err, store.ErrAlreadyCancelled):
		writeError(w, http.StatusConflict, "booking is already cancelled")
	case errors.Is(err, store.ErrAlreadyCompleted):
		writeError(w, http.StatusConflict, "completed bookings cannot be cancelled")
	case errors.Is(err, store.ErrNotConnected), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "service temporarily unavailable, please try again")
	default:
		s.logger.Error().Err(err).Msg("unhandled request error")
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func validateCustomer(c models.CustomerInfo) string {
	if len(strings.TrimSpace(c.Name)) < 2 {
		return "customer name must be at least 2 characters"
	}
	if !strings.Contains(c.Email, "@") {
		return "valid customer email is required"
	}
	if countDigits(c.Phone) < 10 {
		return "customer phone must contain at least 10 digits"
	}
	return ""
}

func validateTravelCustomer(c models.TravelCustomerInfo) string {
	if len(strings.TrimSpace(c.FullName)) < 2 {
		return "full name must be at least 2 characters"
	}
	if !strings.Contains(c.Email, "@") {
		return "valid email is required"
	}
	if countDigits(c.Phone) < 10 {
		return "phone must contain at least 10 digits"
	}
	return ""
}

// normalizeAppointment validates the slot fields and fills defaults.
func normalizeAppointment(a *models.AppointmentInfo) string {
	if _, err := time.Parse("2006-01-02", a.Date); err != nil {
		return "invalid appointment date; expected YYYY-MM-DD"
	}
	if !slots.ValidCell(a.Time) {
		return "appointment time must be a half-hour slot between 09:00 and 16:30"
	}
	if !models.ServiceTypes[a.ServiceType] {
		return "unknown service type"
	}

	switch a.AppointmentType {
	case "":
		a.AppointmentType = models.AppointmentInPerson
	case models.AppointmentInPerson, models.AppointmentVirtual:
	default:
		return "appointment type must be in_person or virtual"
	}

	if a.Duration == 0 {
		a.Duration = models.DefaultDuration
	}
	if a.Duration < models.MinDuration || a.Duration > models.MaxDuration {
		return fmt.Sprintf("duration must be between %d and %d minutes", models.MinDuration, models.MaxDuration)
	}
	return ""
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}
