package worker

import (
	"context"
	"sync/atomic"
	"time"

	"appointd/internal/metrics"

	"github.com/rs/zerolog"
)

// Reconnecter is the slice of the persistence gateway the watcher drives.
type Reconnecter interface {
	IsConnected() bool
	Connect(ctx context.Context, maxRetries int, initialDelay time.Duration) bool
}

// ReconnectWatcher restores store connectivity in the background. While
// armed and the gateway is disconnected it retries on a fixed interval
// with a small per-tick budget; once connected it disarms and idles
// instead of exiting, so a later health probe can re-arm it for the next
// disconnect episode.
type ReconnectWatcher struct {
	gateway      Reconnecter
	interval     time.Duration
	retryBudget  int
	initialDelay time.Duration
	logger       zerolog.Logger
	armed        atomic.Bool
}

func NewReconnectWatcher(gateway Reconnecter, interval time.Duration, retryBudget int, initialDelay time.Duration, logger zerolog.Logger) *ReconnectWatcher {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if retryBudget <= 0 {
		retryBudget = 3
	}
	if initialDelay <= 0 {
		initialDelay = time.Second
	}
	return &ReconnectWatcher{
		gateway:      gateway,
		interval:     interval,
		retryBudget:  retryBudget,
		initialDelay: initialDelay,
		logger:       logger,
	}
}

// Arm marks the watcher active for the current disconnect episode. It
// reports whether this call performed the idle-to-armed transition.
func (w *ReconnectWatcher) Arm() bool {
	if w.armed.CompareAndSwap(false, true) {
		w.logger.Info().Msg("reconnect watcher armed")
		return true
	}
	return false
}

// Armed reports whether the watcher is currently chasing a reconnect.
func (w *ReconnectWatcher) Armed() bool {
	return w.armed.Load()
}

// Start runs the watch loop until ctx is done.
func (w *ReconnectWatcher) Start(ctx context.Context) {
	w.logger.Info().Dur("interval", w.interval).Msg("reconnect watcher started")
	defer w.logger.Info().Msg("reconnect watcher stopped")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *ReconnectWatcher) tick(ctx context.Context) {
	if !w.armed.Load() {
		return
	}
	if w.gateway.IsConnected() {
		w.disarm()
		return
	}

	w.logger.Info().Int("retry_budget", w.retryBudget).Msg("attempting store reconnect")
	if w.gateway.Connect(ctx, w.retryBudget, w.initialDelay) {
		w.logger.Info().Msg("store connection restored")
		metrics.IncStoreReconnect()
		w.disarm()
		return
	}
	w.logger.Warn().Msg("store reconnect attempt failed, will retry on next tick")
}

func (w *ReconnectWatcher) disarm() {
	w.armed.Store(false)
}
