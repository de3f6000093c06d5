// Package notify delivers booking confirmation emails. Fan-out to
// customer and admin is independent: a failure on one recipient never
// affects the other, and neither failure bubbles into the booking flow.
package notify

import "context"

// Message is one outbound email.
type Message struct {
	From    string
	To      []string
	Subject string
	HTML    string
	ReplyTo string
}

// Mailer delivers one message and returns the provider's message id.
type Mailer interface {
	Send(ctx context.Context, msg Message) (string, error)
}
