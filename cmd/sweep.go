package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func SweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Completes active bookings whose end date has passed",
		Long:  `Runs the completion sweep once, outside the worker schedule. Bookings that are active and whose end date is today or earlier move to completed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildApp(storeNotifier)
			if err != nil {
				return err
			}
			defer app.Close()

			count, err := app.Bookings.CompleteExpired(cmd.Context())
			if err != nil {
				return fmt.Errorf("completion sweep failed: %w", err)
			}
			app.Logger.Info("completion sweep finished", zap.Int("completed", count))
			fmt.Printf("Completed %d booking(s)\n", count)
			return nil
		},
	}
}
