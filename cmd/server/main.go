package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/guaraci/paylink/internal/api"
	"github.com/guaraci/paylink/internal/config"
	"github.com/guaraci/paylink/internal/intake"
	"github.com/guaraci/paylink/internal/mailer"
	"github.com/guaraci/paylink/internal/metrics"
	"github.com/guaraci/paylink/internal/notify"
	"github.com/guaraci/paylink/internal/pkg/logger"
	"github.com/guaraci/paylink/internal/ratelimit"
	"github.com/guaraci/paylink/internal/service/paylink"
	"github.com/guaraci/paylink/internal/service/submission"
)

// checkPortAvailable verifies that the target port is not already in use.
func checkPortAvailable(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("address %s is already in use: %v", addr, err)
	}
	ln.Close()
	return nil
}

func main() {
	log.Println("Guaraci payment link server (cmd/server)")

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}
	cfg, err := config.LoadFromEnv(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Config check FAILED: %v", err)
	}

	logger.SetLevel(logger.ParseLevel(cfg.Logging.Level))
	logger.SetRedactPII(cfg.Logging.Redact())

	if err := checkPortAvailable(cfg.Server.Addr()); err != nil {
		log.Fatalf("Pre-flight check FAILED: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Link store. Network stores connect lazily; a background warm-up dials
	// early so the first request does not pay for it.
	store, err := openStore(ctx, cfg.Store)
	if err != nil {
		log.Fatalf("Failed to initialize link store: %v", err)
	}
	log.Printf("[store] driver=%s", cfg.Store.Driver)
	go store.warmUp(ctx, cfg.Store.ConnectTimeout())

	links := paylink.NewService(store.repo)

	sender, err := openSender(ctx, cfg.Mail)
	if err != nil {
		log.Fatalf("Failed to initialize mail sender: %v", err)
	}
	log.Printf("[mail] driver=%s from=%s", cfg.Mail.Driver, logger.RedactEmail(cfg.Mail.FromEmail))

	loc := notify.Location(cfg.Notification.TimeZone)
	if loc.String() != cfg.Notification.TimeZone {
		log.Printf("[notify] Warning: time zone %q unavailable, using %s", cfg.Notification.TimeZone, loc)
	}
	composer, err := notify.NewComposer(loc)
	if err != nil {
		log.Fatalf("Failed to parse notification templates: %v", err)
	}

	m := metrics.New()

	pipeline := submission.NewPipeline(links, composer, sender, cfg.Notification.OperatorEmail,
		submission.WithMetrics(m),
	)

	limiter, closeLimiter := openLimiter(ctx, cfg.RateLimit)
	defer closeLimiter()

	handlers := api.NewHandlers(pipeline,
		api.WithMaxMemory(cfg.Intake.MaxMemory()),
		api.WithIntakeLimits(intake.Limits{
			MaxFileBytes: cfg.Intake.MaxFileBytes,
			AllowedTypes: cfg.Intake.AllowedTypes,
		}),
	)
	router := api.SetupRoutes(handlers, api.NewHealthChecker(links), api.RouterOptions{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Limiter:        limiter,
		Metrics:        m,
	})
	server := api.NewServer(cfg.Server, router)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Starting server on %s", server.Addr())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout())
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	if err := store.close(shutdownCtx); err != nil {
		log.Printf("Store close error: %v", err)
	}

	log.Println("Server stopped")
}

func openSender(ctx context.Context, cfg config.MailConfig) (mailer.Sender, error) {
	switch cfg.Driver {
	case config.MailLog:
		return mailer.LogSender{}, nil
	default:
		return mailer.NewSESSender(ctx, mailer.SESSettings{
			Region:    cfg.Region,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			FromEmail: cfg.FromEmail,
			FromName:  cfg.FromName,
			Timeout:   cfg.Timeout(),
		})
	}
}

// openLimiter prefers Redis so budgets are shared across instances and
// falls back to a process-local limiter.
func openLimiter(ctx context.Context, cfg config.RateLimitConfig) (ratelimit.Limiter, func()) {
	if cfg.Disabled {
		log.Println("[RateLimiter] disabled")
		return nil, func() {}
	}
	if cfg.RedisURL != "" {
		rl, err := ratelimit.NewRedisLimiterFromURL(ctx, cfg.RedisURL, cfg.Requests, cfg.Window())
		if err == nil {
			return rl, func() { _ = rl.Close() }
		}
		log.Printf("[RateLimiter] Warning: %v, using in-memory limiter", err)
	}
	log.Printf("[RateLimiter] in-memory: %d requests per %s", cfg.Requests, cfg.Window())
	return ratelimit.NewMemoryLimiter(cfg.Requests, cfg.Window()), func() {}
}
