package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"appointd/internal/api"
	"appointd/internal/booking"
	"appointd/internal/config"
	"appointd/internal/domain"
	"appointd/internal/events"
	"appointd/internal/logging"
	"appointd/internal/metrics"
	"appointd/internal/notify"
	"appointd/internal/repository"
	"appointd/internal/store"
	"appointd/internal/travel"
	"appointd/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gateway := store.NewGateway(cfg.Mongo, &logger)
	watcher := worker.NewReconnectWatcher(
		gateway,
		cfg.Mongo.ReconnectIntervalDur(),
		cfg.Mongo.ReconnectRetries,
		cfg.Mongo.InitialDelayDur(),
		logger.With().Str("component", "reconnect-watcher").Logger(),
	)

	// A dead database at boot is survivable: the API starts degraded and
	// the watcher chases the connection in the background.
	if !gateway.Connect(ctx, cfg.Mongo.MaxRetries, cfg.Mongo.InitialDelayDur()) {
		logger.Warn().Msg("starting without database connection, reconnect watcher armed")
		watcher.Arm()
	}
	defer gateway.Disconnect(context.Background())

	go watcher.Start(ctx)

	slotCache := initSlotCache(cfg, &logger)

	bus := events.NewBus()

	bookingSvc, err := booking.NewService(gateway, slotCache, bus, cfg.Booking.Timezone,
		refLogger(logger, "booking-service"))
	if err != nil {
		return fmt.Errorf("init booking service: %w", err)
	}
	travelSvc, err := travel.NewService(gateway, bus, cfg.Booking.Timezone,
		refLogger(logger, "travel-service"))
	if err != nil {
		return fmt.Errorf("init travel service: %w", err)
	}

	emailConfigured := cfg.Email.APIKey != "" && cfg.Email.From != ""
	if emailConfigured {
		mailer := notify.NewResendMailer(cfg.Email.APIKey, cfg.Email.SendTimeoutDur())
		dispatcher := notify.NewDispatcher(mailer, gateway, cfg.Email, refLogger(logger, "notify"))
		dispatcher.Register(bus)
	} else {
		logger.Warn().Msg("email not configured, notifications disabled")
	}

	httpServer := api.NewHTTPServer(api.Options{
		Config:          cfg.Server,
		Bookings:        bookingSvc,
		Travel:          travelSvc,
		Store:           gateway,
		Watcher:         watcher,
		EmailConfigured: emailConfigured,
		Logger:          refLogger(logger, "http"),
	})

	startMetrics(ctx, cfg, &logger)

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
			stop()
		}
	}()

	logger.Info().Int("http_port", cfg.Server.Port).Msg("booking API started")

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(shutdownCtx)

	logger.Info().Msg("booking API stopped")
	return nil
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	return cfg, logger, closer, nil
}

func refLogger(logger zerolog.Logger, component string) *zerolog.Logger {
	l := logger.With().Str("component", component).Logger()
	return &l
}

// initSlotCache builds the slot cache chain: Redis through a failover to
// memory when configured, plain memory otherwise.
func initSlotCache(cfg *config.Config, logger *zerolog.Logger) domain.SlotCache {
	ttl := cfg.Booking.SlotCacheTTLDur()
	memory := repository.NewMemorySlotCache(ttl)

	if cfg.Redis.Address == "" {
		return memory
	}

	client := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(context.Background(), client); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, using in-memory slot cache")
		_ = repository.Close(client)
		return memory
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return repository.NewFailoverSlotCache(
		repository.NewRedisSlotCache(client, ttl),
		memory,
		refLogger(*logger, "slot-cache"),
	)
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
