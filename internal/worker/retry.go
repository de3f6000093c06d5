package worker

import "time"

// LinearBackoff computes retry delays that grow by one initial-delay step
// per attempt (delay = InitialDelay * attempt), clamped to MaxDelay.
type LinearBackoff struct {
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// Delay returns the wait before retrying a given attempt (1-based).
func (b LinearBackoff) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if b.InitialDelay <= 0 {
		b.InitialDelay = time.Second
	}

	d := b.InitialDelay * time.Duration(attempt)
	if b.MaxDelay > 0 && d > b.MaxDelay {
		d = b.MaxDelay
	}
	return d
}
