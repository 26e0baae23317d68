package cmd

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"vidaview/config"
	"vidaview/cron"
	"vidaview/database/repository"
	"vidaview/handlers"
	"vidaview/routes"
	"vidaview/services/invoice"
	"vidaview/services/notification"
	"vidaview/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// queueNotifier hands notifications to the worker through asynq.
func queueNotifier(_ *repository.Set) (notification.Notifier, func(), error) {
	client := asynq.NewClient(cron.RedisOpt())
	return notification.NewQueueNotifier(client), func() { _ = client.Close() }, nil
}

// NewRouter builds the gin engine for the wired app.
func NewRouter(app *App) *gin.Engine {
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())

	bookingHandler := &handlers.BookingHandler{
		Bookings: app.Bookings,
		Payments: app.Payments,
		Invoices: app.Invoices,
		Renderer: invoice.JSONRenderer{},
		Activity: app.Activity,
		Logger:   app.Logger,
	}
	paymentHandler := &handlers.PaymentHandler{Payments: app.Payments, Activity: app.Activity, Logger: app.Logger}
	promotionHandler := &handlers.PromotionHandler{
		Promotions: app.Promotions,
		Clock:      utils.SystemClock,
		Logger:     app.Logger,
	}

	notificationHandler := &handlers.NotificationHandler{
		Inbox:  notification.NewInbox(app.Repos.Notifications, app.Logger),
		Logger: app.Logger,
	}

	handlerBundle := handlers.NewHandlerBundle(bookingHandler, paymentHandler, promotionHandler, notificationHandler, app.Health)
	routes.RegisterRoutes(router, handlerBundle, app.Logger, config.AppConfig.MaxRequestsPerMin)
	return router
}

func ServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Runs the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildApp(queueNotifier)
			if err != nil {
				return err
			}
			defer app.Close()
			logger := app.Logger

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			app.Health.Start(ctx, 30*time.Second)

			srv := &http.Server{
				Addr:    "0.0.0.0:" + config.AppConfig.AppPort,
				Handler: NewRouter(app),
			}

			logger.Sugar().Infof("Starting server on %s...", srv.Addr)
			errCh := make(chan error, 1)
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- err
				}
			}()

			select {
			case err := <-errCh:
				logger.Error("serve: server failed to start", zap.Error(err))
				return err
			case <-ctx.Done():
			}
			logger.Info("serve: server is shutting down...")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("serve: server forced to shutdown", zap.Error(err))
				return err
			}
			logger.Info("serve: server stopped gracefully")
			return nil
		},
	}
}
