package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dukerupert/harvansh/internal"
	"github.com/dukerupert/harvansh/internal/cart"
	"github.com/dukerupert/harvansh/internal/catalog"
	"github.com/dukerupert/harvansh/internal/cookie"
	"github.com/dukerupert/harvansh/internal/events"
	"github.com/dukerupert/harvansh/internal/handler"
	"github.com/dukerupert/harvansh/internal/handler/api"
	"github.com/dukerupert/harvansh/internal/identity"
	"github.com/dukerupert/harvansh/internal/jobs"
	"github.com/dukerupert/harvansh/internal/middleware"
	"github.com/dukerupert/harvansh/internal/newsletter"
	"github.com/dukerupert/harvansh/internal/routes"
	"github.com/dukerupert/harvansh/internal/shipping"
	"github.com/dukerupert/harvansh/internal/storage"
	"github.com/dukerupert/harvansh/internal/telemetry"
	"github.com/dukerupert/harvansh/internal/worker"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const shutdownTimeout = 15 * time.Second

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	businessMetrics := telemetry.NewBusinessMetrics("harvansh", reg)

	// Catalog
	catalogStore := catalog.NewStore(logger)
	seed, err := catalog.LoadSeed(cfg.Catalog.SeedPath)
	if err != nil {
		return fmt.Errorf("failed to load catalog seed: %w", err)
	}
	if err := catalogStore.Load(ctx, seed); err != nil {
		return fmt.Errorf("failed to seed catalog: %w", err)
	}

	// Cart item storage
	logger.Info().Str("driver", cfg.Store.Driver).Msg("Opening cart store...")
	store, err := storage.New(ctx, cfg.Store, logger)
	if err != nil {
		return fmt.Errorf("failed to open cart store: %w", err)
	}
	defer store.Close()

	repo, err := cart.NewRepository(ctx, store, catalogStore)
	if err != nil {
		return fmt.Errorf("failed to initialize cart repository: %w", err)
	}

	calc, err := shipping.NewFlatRate(cfg.Pricing.FlatShippingFee, cfg.Pricing.FreeShippingThreshold)
	if err != nil {
		return fmt.Errorf("failed to initialize shipping: %w", err)
	}

	// Cart events
	var publisher events.Publisher = events.NopPublisher{}
	if cfg.Events.NATSURL != "" {
		nats, err := events.ConnectNATS(cfg.Events.NATSURL, cfg.Events.SubjectPrefix, logger)
		if err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		publisher = nats
		logger.Info().Str("prefix", cfg.Events.SubjectPrefix).Msg("Publishing cart events to NATS")
	}
	defer publisher.Close()

	// Services
	cartService := cart.NewService(repo, catalogStore, calc, publisher, businessMetrics, logger)
	validate := handler.NewValidator()
	newsletterService := newsletter.NewService(validate, businessMetrics, logger)
	resolver := identity.NewResolver(cookie.NewConfig(cfg.Cookie.Domain, cfg.Cookie.Secure))

	// HTTP
	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		RequestsPerSecond: cfg.Limits.RateLimitRPS,
		BurstSize:         cfg.Limits.RateLimitBurst,
		Skipper:           routes.SkipOps,
	})
	defer rateLimiter.Stop()

	e := routes.New(routes.ServerDeps{
		Logger:        logger,
		Validator:     validate,
		Gatherer:      reg,
		Metrics:       middleware.NewMetrics("harvansh", reg),
		RateLimiter:   rateLimiter,
		BodyLimit:     cfg.Limits.BodyLimit,
		SecureCookies: cfg.Cookie.Secure,
		API: routes.APIDeps{
			CartHandler:       api.NewCartHandler(cartService, resolver),
			CatalogHandler:    api.NewCatalogHandler(catalogStore, businessMetrics),
			NewsletterHandler: api.NewNewsletterHandler(newsletterService),
		},
	})

	// Background tasks
	w := worker.NewWorker(worker.Config{}, logger, worker.Task{
		Name:     jobs.JobTypePruneOrphans,
		Interval: cfg.OrphanSweepInterval,
		Run:      jobs.OrphanSweep(cartService, logger),
	})
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		_ = w.Start(ctx)
	}()

	// Start server
	addr := fmt.Sprintf(":%d", cfg.Port)
	serverErr := make(chan error, 1)
	go func() {
		logger.Info().Str("address", addr).Str("base_url", cfg.BaseURL).Msg("Starting storefront API")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			stop()
			<-workerDone
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info().Msg("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	<-workerDone
	logger.Info().Msg("Shutdown complete")
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
