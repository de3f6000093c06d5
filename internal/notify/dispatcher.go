package notify

import (
	"context"
	"encoding/json"
	"time"

	"appointd/internal/config"
	"appointd/internal/events"
	"appointd/internal/metrics"
	"appointd/internal/models"

	"github.com/rs/zerolog"
)

// NotifiedFlagger records that the customer email for a record went out.
type NotifiedFlagger interface {
	SetBookingNotified(ctx context.Context, id string) error
	SetTravelNotified(ctx context.Context, id string) error
}

// Outcome reports what happened to each recipient of one notification
// fan-out. Values are "sent", "failed" or "skipped".
type Outcome struct {
	Customer string
	Admin    string
}

// Dispatcher listens for booking events and fans confirmation email out
// to the customer and the admin. The two sends are independent and no
// failure propagates to the booking flow.
type Dispatcher struct {
	mailer  Mailer
	flagger NotifiedFlagger
	cfg     config.EmailConfig
	logger  *zerolog.Logger
}

func NewDispatcher(mailer Mailer, flagger NotifiedFlagger, cfg config.EmailConfig, logger *zerolog.Logger) *Dispatcher {
	return &Dispatcher{mailer: mailer, flagger: flagger, cfg: cfg, logger: logger}
}

// Register subscribes the dispatcher to booking events on the bus.
func (d *Dispatcher) Register(bus *events.Bus) {
	bus.Subscribe(events.EventBookingCreated, func(event *events.Event) error {
		var b models.Booking
		if err := json.Unmarshal(event.Payload, &b); err != nil {
			d.logger.Error().Err(err).Msg("failed to decode booking event payload")
			return err
		}
		d.NotifyBooking(context.Background(), &b)
		return nil
	})

	bus.Subscribe(events.EventTravelBookingCreated, func(event *events.Event) error {
		var tb models.TravelBooking
		if err := json.Unmarshal(event.Payload, &tb); err != nil {
			d.logger.Error().Err(err).Msg("failed to decode travel booking event payload")
			return err
		}
		d.NotifyTravelBooking(context.Background(), &tb)
		return nil
	})
}

// NotifyBooking sends the customer confirmation and the admin alert for
// a new appointment. The notified flag is set only when the customer
// send succeeds.
func (d *Dispatcher) NotifyBooking(ctx context.Context, b *models.Booking) Outcome {
	var out Outcome

	subject, body := CustomerBookingEmail(b)
	out.Customer = d.send(ctx, "customer", Message{
		From:    d.cfg.From,
		To:      []string{b.Customer.Email},
		Subject: subject,
		HTML:    body,
		ReplyTo: d.cfg.AdminEmail,
	})
	if out.Customer == "sent" {
		if err := d.flagger.SetBookingNotified(ctx, b.ID); err != nil {
			d.logger.Warn().Err(err).Str("booking_id", b.ID).Msg("failed to persist notified flag")
		}
	}

	out.Admin = d.sendAdmin(ctx, func() (string, string) { return AdminBookingEmail(b) })

	d.logger.Info().
		Str("booking_id", b.ID).
		Str("customer", out.Customer).
		Str("admin", out.Admin).
		Msg("booking notification dispatched")
	return out
}

// NotifyTravelBooking is the tour variant of NotifyBooking.
func (d *Dispatcher) NotifyTravelBooking(ctx context.Context, tb *models.TravelBooking) Outcome {
	var out Outcome

	subject, body := CustomerTravelEmail(tb)
	out.Customer = d.send(ctx, "customer", Message{
		From:    d.cfg.From,
		To:      []string{tb.Customer.Email},
		Subject: subject,
		HTML:    body,
		ReplyTo: d.cfg.AdminEmail,
	})
	if out.Customer == "sent" {
		if err := d.flagger.SetTravelNotified(ctx, tb.ID); err != nil {
			d.logger.Warn().Err(err).Str("booking_id", tb.ID).Msg("failed to persist notified flag")
		}
	}

	out.Admin = d.sendAdmin(ctx, func() (string, string) { return AdminTravelEmail(tb) })

	d.logger.Info().
		Str("booking_id", tb.ID).
		Str("customer", out.Customer).
		Str("admin", out.Admin).
		Msg("travel booking notification dispatched")
	return out
}

func (d *Dispatcher) sendAdmin(ctx context.Context, build func() (string, string)) string {
	if d.cfg.AdminEmail == "" {
		d.logger.Warn().Msg("admin email not configured, skipping admin notification")
		metrics.IncNotification("admin", "skipped")
		return "skipped"
	}
	subject, body := build()
	return d.send(ctx, "admin", Message{
		From:    d.cfg.From,
		To:      []string{d.cfg.AdminEmail},
		Subject: subject,
		HTML:    body,
	})
}

func (d *Dispatcher) send(ctx context.Context, recipient string, msg Message) string {
	timeout := d.cfg.SendTimeoutDur()
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	sendCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	id, err := d.mailer.Send(sendCtx, msg)
	if err != nil {
		d.logger.Error().Err(err).Str("recipient", recipient).Msg("email send failed")
		metrics.IncNotification(recipient, "failed")
		return "failed"
	}
	d.logger.Info().Str("recipient", recipient).Str("message_id", id).Msg("email sent")
	metrics.IncNotification(recipient, "sent")
	return "sent"
}
