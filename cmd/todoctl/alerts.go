package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"todoshare/internal/config"
	"todoshare/internal/database"
	"todoshare/internal/platform"
	"todoshare/internal/repository"
)

func alertsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "Inspect and deliver task reminders",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "dispatch",
		Short: "Deliver every due reminder once and exit",
		Long: `Deliver every due reminder once and exit.

Useful when the server runs with its dispatcher stopped, or from cron.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			db, err := database.Open(cfg.DSN())
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}

			dispatcher := platform.NewDispatcher(repository.NewAlertRepository(db), cfg.AlertPoll)
			delivered, err := dispatcher.DispatchDue(cmd.Context())
			if err != nil {
				return fmt.Errorf("dispatch alerts: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Delivered %d reminder(s)\n", delivered)
			return nil
		},
	})

	return cmd
}
