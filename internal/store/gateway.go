package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"appointd/internal/config"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	collBookings = "bookings"
	collTravel   = "travel_bookings"
)

// Gateway owns the MongoDB client handle. The handle is nil while
// disconnected; every record operation checks it first and fails fast
// with ErrNotConnected instead of blocking on a dead server.
type Gateway struct {
	cfg    config.MongoConfig
	logger *zerolog.Logger

	mu     sync.Mutex
	client *mongo.Client
}

func NewGateway(cfg config.MongoConfig, logger *zerolog.Logger) *Gateway {
	return &Gateway{cfg: cfg, logger: logger}
}

// Connect dials the server up to maxRetries times with a linearly growing
// delay between attempts (delay = initialDelay * attempt). It reports
// whether a verified connection was established and never returns an
// error; callers decide whether startup proceeds in degraded mode.
func (g *Gateway) Connect(ctx context.Context, maxRetries int, initialDelay time.Duration) bool {
	if maxRetries < 1 {
		maxRetries = 1
	}
	if initialDelay <= 0 {
		initialDelay = time.Second
	}

	for attempt := 1; attempt <= maxRetries; attempt++ {
		if ctx.Err() != nil {
			return false
		}

		client, err := g.dial(ctx)
		if err == nil {
			g.mu.Lock()
			old := g.client
			g.client = client
			g.mu.Unlock()
			if old != nil {
				_ = old.Disconnect(context.Background())
			}
			g.logger.Info().Int("attempt", attempt).Msg("database connected")
			return true
		}

		g.logger.Warn().Err(err).
			Int("attempt", attempt).
			Int("max_retries", maxRetries).
			Msg("database connection attempt failed")

		if attempt == maxRetries {
			break
		}

		delay := initialDelay * time.Duration(attempt)
		select {
		case <-ctx.Done():
			return false
		case <-time.After(delay):
		}
	}

	g.logger.Error().Int("attempts", maxRetries).Msg("database unreachable, giving up")
	return false
}

// dial performs one bounded connection attempt followed by a liveness ping.
// A client that connects but cannot be pinged is discarded.
func (g *Gateway) dial(ctx context.Context) (*mongo.Client, error) {
	connectCtx, cancel := context.WithTimeout(ctx, g.cfg.ConnectTimeoutDur())
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(g.cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	pingCtx, cancelPing := context.WithTimeout(ctx, g.cfg.PingTimeoutDur())
	defer cancelPing()

	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping: %w", err)
	}
	return client, nil
}

// IsConnected reports whether a client handle is held. It does not probe
// the server; use Ping for that.
func (g *Gateway) IsConnected() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.client != nil
}

// Ping probes the server with the configured ping timeout. A timeout is
// reported as context.DeadlineExceeded; errors that look like a dropped
// connection additionally discard the handle so subsequent operations
// fail fast until a reconnect succeeds.
func (g *Gateway) Ping(ctx context.Context) error {
	g.mu.Lock()
	client := g.client
	g.mu.Unlock()
	if client == nil {
		return ErrNotConnected
	}

	pingCtx, cancel := context.WithTimeout(ctx, g.cfg.PingTimeoutDur())
	defer cancel()

	err := client.Ping(pingCtx, nil)
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("ping timed out: %w", context.DeadlineExceeded)
	}
	if looksDropped(err) {
		g.drop(client)
	}
	return fmt.Errorf("ping failed: %w", err)
}

// Status reports the connectivity state for the health endpoint:
// "connected", "not_connected", "timeout" or "error: <detail>".
func (g *Gateway) Status(ctx context.Context) string {
	err := g.Ping(ctx)
	switch {
	case err == nil:
		return "connected"
	case errors.Is(err, ErrNotConnected):
		return "not_connected"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "error: " + truncate(err.Error(), 120)
	}
}

// Disconnect releases the client handle, if any.
func (g *Gateway) Disconnect(ctx context.Context) {
	g.mu.Lock()
	client := g.client
	g.client = nil
	g.mu.Unlock()
	if client != nil {
		_ = client.Disconnect(ctx)
	}
}

// drop discards the handle if it is still the one the caller saw fail.
// A reconnect that raced in keeps its fresh client.
func (g *Gateway) drop(failed *mongo.Client) {
	if failed == nil {
		return
	}
	g.mu.Lock()
	if g.client == failed {
		g.client = nil
		g.mu.Unlock()
		g.logger.Warn().Msg("database handle dropped after connection failure")
		_ = failed.Disconnect(context.Background())
		return
	}
	g.mu.Unlock()
}

// collection resolves a collection handle, or ErrNotConnected.
func (g *Gateway) collection(name string) (*mongo.Collection, *mongo.Client, error) {
	g.mu.Lock()
	client := g.client
	g.mu.Unlock()
	if client == nil {
		return nil, nil, ErrNotConnected
	}
	return client.Database(g.cfg.Database).Collection(name), client, nil
}

// opCtx bounds one record operation with the configured op timeout.
func (g *Gateway) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, g.cfg.OpTimeoutDur())
}

// classify maps an operation error onto the connectivity model: timeouts
// surface as context.DeadlineExceeded, dropped connections discard the
// handle and surface as ErrNotConnected, everything else passes through
// wrapped.
func (g *Gateway) classify(client *mongo.Client, op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || mongo.IsTimeout(err) {
		return fmt.Errorf("%s timed out: %w", op, context.DeadlineExceeded)
	}
	if looksDropped(err) {
		g.drop(client)
		return fmt.Errorf("%s: connection lost (%v): %w", op, err, ErrNotConnected)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// looksDropped reports whether an error message indicates the connection
// to the server is gone rather than a per-operation failure.
func looksDropped(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{
		"connection closed",
		"connection reset",
		"connection refused",
		"no reachable servers",
		"server selection error",
		"socket was unexpectedly closed",
		"eof",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
