package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Dan9191/rental-service/internal/billing"
	"github.com/Dan9191/rental-service/internal/config"
	"github.com/Dan9191/rental-service/internal/repository"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "rentbook",
		Short: "Tenant records, rent tracking and utility invoices",
	}

	rootCmd.AddCommand(
		serveCmd(),
		migrateCmd(),
		remindCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newLogger builds the JSON logger used by every command
func newLogger(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)
	return logger
}

// bootstrap loads configuration, opens the database and applies the schema
func bootstrap(ctx context.Context) (*config.Config, *logrus.Logger, *repository.Repository, func(), error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger := newLogger(cfg.LogLevel)

	db, err := repository.Open(ctx, cfg.DBDriver, cfg.DBConn)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	repo := repository.NewRepository(db, cfg.DBDriver)
	if err := repo.Migrate(ctx); err != nil {
		db.Close()
		return nil, nil, nil, nil, err
	}

	cleanup := func() {
		if err := db.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close database")
		}
	}
	return cfg, logger, repo, cleanup, nil
}

func tariffsFromConfig(cfg *config.Config) billing.Tariffs {
	return billing.Tariffs{
		UEDCLPerUnit:   cfg.UEDCLRate,
		NSWCPerUnit:    cfg.NSWCRate,
		SecurityFee:    cfg.SecurityFee,
		GarbageFee:     cfg.GarbageFee,
		CurrencyPhrase: cfg.CurrencyPhrase,
	}
}
