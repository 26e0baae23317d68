package cmd

import (
	"os/signal"
	"syscall"

	"vidaview/cron"
	"vidaview/services/notification"

	"github.com/spf13/cobra"
)

func WorkerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Delivers queued notifications and runs the completion sweep",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildApp(storeNotifier)
			if err != nil {
				return err
			}
			defer app.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			worker := &cron.Worker{
				Sink:     notification.NewStoreNotifier(app.Repos.Notifications),
				Bookings: app.Bookings,
				Logger:   app.Logger,
			}
			return worker.Run(ctx)
		},
	}
}
