package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Dan9191/rental-service/internal/billing"
	"github.com/Dan9191/rental-service/internal/service"
	"github.com/Dan9191/rental-service/internal/utils/email"
)

func remindCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remind",
		Short: "Email the landlord the list of tenants with unpaid rent",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, repo, cleanup, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			if !cfg.MailEnabled() {
				return fmt.Errorf("SMTP_HOST, LANDLORD_EMAIL and SENDER_EMAIL are required to send reminders")
			}

			svc := service.NewService(repo, billing.NewTariffBook(tariffsFromConfig(cfg)), email.NewSender(cfg, logger), logger)
			n, err := svc.SendPaymentReminders(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reminder covered %d unpaid tenant(s)\n", n)
			return nil
		},
	}
}
