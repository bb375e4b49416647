package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	apphttp "webhook_relay_backend/internal/http"
	"webhook_relay_backend/internal/http/router"
	"webhook_relay_backend/internal/sheets"
	"webhook_relay_backend/internal/trackdrive"
	"webhook_relay_backend/internal/webhook"
	"webhook_relay_backend/platform/config"
	"webhook_relay_backend/platform/httpkit"
	"webhook_relay_backend/platform/logger"
	"webhook_relay_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	if cfg.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	val := validator.New()

	// ========================================================================
	// Sink Clients
	// ========================================================================

	// A sink that cannot be configured does not stop the server: every
	// webhook reports the missing variables instead.
	var (
		leads     webhook.LeadSubmitter
		leadToken string
	)
	if client, err := trackdrive.New(cfg, val, log); err != nil {
		log.Warn("trackdrive client unavailable", "error", err)
		leads = webhook.Unavailable{Err: err}
	} else {
		leads = client
		leadToken = client.LeadToken()
	}

	var sheetSink webhook.SheetSink
	if client, err := sheets.New(cfg, val, log); err != nil {
		log.Warn("google sheets client unavailable", "error", err)
		sheetSink = webhook.Unavailable{Err: err}
	} else {
		sheetSink = client
	}

	// ========================================================================
	// Modules
	// ========================================================================

	service := webhook.NewService(leads, sheetSink, webhook.Options{
		SheetTitle: cfg.GetSheetTitle(),
		LeadToken:  leadToken,
	}, log)

	var limiter *httpkit.IPRateLimiter
	if rps, burst := cfg.GetWebhookRateLimit(); rps > 0 {
		limiter = httpkit.NewIPRateLimiter(rate.Limit(rps), burst, log)
	}
	webhookModule := webhook.NewModule(service, limiter)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:  cfg,
		Logger:  log,
		Modules: []apphttp.Module{webhookModule},
	}

	engine := router.New(app)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}
