package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/Dan9191/rental-service/internal/billing"
	"github.com/Dan9191/rental-service/internal/handler"
	"github.com/Dan9191/rental-service/internal/integrations/tariffs"
	"github.com/Dan9191/rental-service/internal/middleware"
	"github.com/Dan9191/rental-service/internal/observability"
	"github.com/Dan9191/rental-service/internal/render"
	"github.com/Dan9191/rental-service/internal/scheduler"
	"github.com/Dan9191/rental-service/internal/service"
	"github.com/Dan9191/rental-service/internal/utils/email"
	"github.com/Dan9191/rental-service/internal/utils/links"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Apply the schema and start the web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(ctx context.Context) error {
	cfg, logger, repo, cleanup, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(registry)

	// Initialize layers
	book := billing.NewTariffBook(tariffsFromConfig(cfg))
	var notifier service.Notifier
	if cfg.MailEnabled() {
		notifier = email.NewSender(cfg, logger)
	}
	svc := service.NewService(repo, book, notifier, logger)

	views, err := render.New()
	if err != nil {
		return err
	}
	h := handler.NewHandler(svc, views, links.NewSigner(cfg.LinkSecret, cfg.LinkTTL), metrics, logger)

	// Background jobs
	jobs := scheduler.New(logger, time.Minute)
	if cfg.TariffFeedURL != "" {
		feed := tariffs.NewFeedClient(cfg.TariffFeedURL, logger)
		refresh := func(ctx context.Context) error {
			if err := feed.Refresh(ctx, book); err != nil {
				metrics.TariffRefreshes.WithLabelValues("error").Inc()
				return err
			}
			metrics.TariffRefreshes.WithLabelValues("ok").Inc()
			return nil
		}
		if err := refresh(ctx); err != nil {
			logger.WithError(err).Warn("Initial tariff refresh failed, using configured tariffs")
		}
		if err := jobs.Add("tariff-refresh", cfg.TariffRefreshSchedule, refresh); err != nil {
			return err
		}
	}
	if cfg.ReminderSchedule != "" {
		err := jobs.Add("payment-reminder", cfg.ReminderSchedule, func(ctx context.Context) error {
			_, err := svc.SendPaymentReminders(ctx)
			return err
		})
		if err != nil {
			return err
		}
	}
	jobs.Start()

	// Setup router
	r := mux.NewRouter()
	r.Use(middleware.Recoverer(logger), middleware.RequestLogger(logger, metrics))
	h.RegisterRoutes(r, registry)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Starting server on %s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		logger.Info("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	jobs.Stop(shutdownCtx)
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
