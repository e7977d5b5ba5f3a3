package main

import (
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the tenants table if it does not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, logger, _, cleanup, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			logger.Info("Schema is up to date")
			return nil
		},
	}
}
