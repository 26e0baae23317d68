package cron

import (
	"context"
	"fmt"
	"time"

	"vidaview/config"
	"vidaview/services/booking"
	"vidaview/services/notification"
	"vidaview/services/tasks"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// RedisOpt is the asynq connection for the configured queue database.
func RedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// Worker consumes notification deliveries and runs the periodic completion sweep.
type Worker struct {
	Sink     notification.Notifier
	Bookings booking.BookingService
	Logger   *zap.Logger
}

// NewServeMux routes task types to their handlers.
func (w *Worker) NewServeMux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeDeliverNotification, w.handleNotificationTask)
	mux.HandleFunc(tasks.TypeCompleteExpired, w.handleCompleteExpiredTask)
	return mux
}

func (w *Worker) handleNotificationTask(ctx context.Context, task *asynq.Task) error {
	n, err := tasks.ParseNotificationTask(task)
	if err != nil {
		w.Logger.Error("dropping malformed notification task", zap.Error(err))
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	if err := w.Sink.Notify(ctx, n); err != nil {
		w.Logger.Warn("notification delivery failed",
			zap.String("notificationID", n.ID), zap.String("event", n.Event), zap.Error(err))
		return err
	}
	return nil
}

func (w *Worker) handleCompleteExpiredTask(ctx context.Context, task *asynq.Task) error {
	count, err := w.Bookings.CompleteExpired(ctx)
	if err != nil {
		w.Logger.Error("completion sweep failed", zap.Error(err))
		return err
	}
	w.Logger.Info("completion sweep finished", zap.Int("completed", count))
	return nil
}

// Run starts the asynq server and scheduler and blocks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	redisOpts := RedisOpt()

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: config.AppConfig.WorkerConcurrency,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	scheduler := asynq.NewScheduler(redisOpts, &asynq.SchedulerOpts{Location: time.UTC})
	entryID, err := scheduler.Register(config.AppConfig.CompletionSweepCron, tasks.NewCompleteExpiredTask(),
		asynq.Unique(time.Minute))
	if err != nil {
		return fmt.Errorf("register completion sweep: %w", err)
	}
	w.Logger.Info("completion sweep scheduled",
		zap.String("entryID", entryID), zap.String("cron", config.AppConfig.CompletionSweepCron))

	go monitorRedisConnection(ctx, w.Logger)

	const maxAttempts = 5
	for attempts := 1; ; attempts++ {
		err := srv.Start(w.NewServeMux())
		if err == nil {
			break
		}
		w.Logger.Warn("failed to start worker", zap.Int("attempt", attempts), zap.Error(err))
		if attempts == maxAttempts {
			return fmt.Errorf("start worker: %w", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempts*2) * time.Second):
		}
	}
	if err := scheduler.Start(); err != nil {
		srv.Shutdown()
		return fmt.Errorf("start scheduler: %w", err)
	}
	w.Logger.Info("worker started", zap.Int("concurrency", config.AppConfig.WorkerConcurrency))

	<-ctx.Done()
	scheduler.Shutdown()
	srv.Shutdown()
	w.Logger.Info("worker stopped")
	return nil
}

// monitorRedisConnection pings Redis periodically to detect failures at runtime.
func monitorRedisConnection(ctx context.Context, logger *zap.Logger) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})
	defer client.Close()

	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := client.Ping(ctx).Err(); err != nil {
				logger.Warn("redis connection lost", zap.Error(err))
			}
		}
	}
}
