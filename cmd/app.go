package cmd

import (
	"context"
	"fmt"

	"vidaview/config"
	"vidaview/database"
	"vidaview/database/repository"
	promotionRepo "vidaview/database/repository/promotion"
	"vidaview/services/activity"
	"vidaview/services/booking"
	"vidaview/services/invoice"
	"vidaview/services/notification"
	"vidaview/services/payment"
	"vidaview/services/pricing"
	"vidaview/services/promotion"
	"vidaview/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// App holds the wired services shared by every command.
type App struct {
	Repos      *repository.Set
	Bookings   *booking.DefaultBookingService
	Payments   *payment.DefaultPaymentService
	Promotions *promotion.DefaultPromotionService
	Invoices   *invoice.InvoiceService
	Activity   *activity.StoreRecorder
	Health     *utils.HealthMonitor
	Logger     *zap.Logger

	closers []func()
}

// openRepositories connects the configured storage backend.
func openRepositories(logger *zap.Logger) (*repository.Set, utils.HealthCheck, func(), error) {
	switch config.AppConfig.DBDriver {
	case "mongo":
		database.InitDB()
		repos, err := repository.NewMongoSet(database.MongoDatabase())
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to prepare mongo repositories: %w", err)
		}
		check := func(ctx context.Context) error {
			return database.MongoClient.Ping(ctx, nil)
		}
		closer := func() {
			if err := database.CloseDB(context.Background()); err != nil {
				logger.Warn("failed to disconnect mongo", zap.Error(err))
			}
		}
		return repos, check, closer, nil
	case "postgres", "sqlite":
		database.InitSQL()
		sqlDB, err := database.DB.DB()
		if err != nil {
			return nil, nil, nil, err
		}
		closer := func() {
			if err := sqlDB.Close(); err != nil {
				logger.Warn("failed to close sql database", zap.Error(err))
			}
		}
		return repository.NewGormSet(database.DB), sqlDB.PingContext, closer, nil
	default:
		return nil, nil, nil, fmt.Errorf("unsupported DB_DRIVER %q", config.AppConfig.DBDriver)
	}
}

// buildApp wires repositories and services. The notifier decides how side
// effects leave the process: the API enqueues, the worker and sweep store directly.
func buildApp(newNotifier func(repos *repository.Set) (notification.Notifier, func(), error)) (*App, error) {
	logger := utils.GetLogger()
	cfg := config.AppConfig

	rate, err := decimal.NewFromString(cfg.UtilityDepositRate)
	if err != nil {
		return nil, fmt.Errorf("invalid UTILITY_DEPOSIT_RATE %q: %w", cfg.UtilityDepositRate, err)
	}

	repos, dbCheck, dbCloser, err := openRepositories(logger)
	if err != nil {
		return nil, err
	}
	app := &App{Repos: repos, Logger: logger, closers: []func(){dbCloser}}

	notifier, closeNotifier, err := newNotifier(repos)
	if err != nil {
		app.Close()
		return nil, err
	}
	if closeNotifier != nil {
		app.closers = append(app.closers, closeNotifier)
	}

	cache := utils.GetCacheClient()
	promotions := promotionRepo.NewCachedPromotionRepo(repos.Promotions, cache, cfg.PromotionCacheTTL, logger)
	clock := utils.SystemClock
	locker := booking.NewRedisUnitLocker(utils.GetLockClient(), cfg.ApprovalLockTTL, logger)
	app.Activity = activity.NewStoreRecorder(repos.Activity)

	app.Promotions = promotion.NewDefaultPromotionService(promotions, clock, logger)
	app.Bookings = &booking.DefaultBookingService{
		Repo:           repos.Bookings,
		Units:          repos.Units,
		Promotions:     app.Promotions,
		Calculator:     pricing.NewCalculator(cfg.AdminFee, rate),
		Locker:         locker,
		Notifier:       notifier,
		Activity:       app.Activity,
		Clock:          clock,
		AutoActivate:   cfg.AutoActivate,
		PaymentDueDays: cfg.PaymentDueDays,
		Logger:         logger,
	}
	app.Payments = &payment.DefaultPaymentService{
		Repo:           repos.Bookings,
		Activator:      app.Bookings,
		Locker:         locker,
		Notifier:       notifier,
		Activity:       app.Activity,
		Clock:          clock,
		AutoActivate:   cfg.AutoActivate,
		PaymentDueDays: cfg.PaymentDueDays,
		Logger:         logger,
	}
	app.Invoices = &invoice.InvoiceService{Repo: repos.Bookings, Clock: clock}
	app.Health = utils.NewHealthMonitor(map[string]utils.HealthCheck{
		"database": dbCheck,
		"redis": func(ctx context.Context) error {
			return cache.Ping(ctx).Err()
		},
	})
	return app, nil
}

// storeNotifier persists notifications in the notification store.
func storeNotifier(repos *repository.Set) (notification.Notifier, func(), error) {
	return notification.NewStoreNotifier(repos.Notifications), nil, nil
}

// Close releases connections in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	_ = a.Logger.Sync()
}
