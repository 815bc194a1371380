package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/yungbote/opsdesk-backend/internal/app"
	"github.com/yungbote/opsdesk-backend/internal/clients/kafka"
	types "github.com/yungbote/opsdesk-backend/internal/domain"
)

// notification_worker consumes queued notification jobs and delivers them
// with the same NotificationService the API uses inline.
func main() {
	log, err := app.NewLogger()
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	a, err := app.Bootstrap(log)
	if err != nil {
		log.Error("Failed to init worker", "error", err)
		log.Sync()
		os.Exit(1)
	}
	defer a.Close()

	consumer, err := kafka.NewConsumer(log, kafka.ConfigFromEnv())
	if err != nil {
		log.Error("Failed to init kafka consumer", "error", err)
		a.Close()
		os.Exit(1)
	}
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("Notification worker started")
	err = consumer.Run(ctx, func(ctx context.Context, job types.NotificationJob) error {
		results := a.Services.Notifications.SendBulk(ctx, job)
		failed := 0
		for _, r := range results {
			if !r.Success {
				failed++
			}
		}
		log.Info("Notification job delivered", "module", job.Module, "linked_id", job.LinkedID, "sent", len(results), "failed", failed)
		// Channel failures are final per result; only an interrupted job is retried.
		return ctx.Err()
	})
	if err != nil {
		log.Error("Notification worker stopped", "error", err)
		consumer.Close()
		a.Close()
		log.Sync()
		os.Exit(1)
	}
	log.Info("Notification worker stopped")
}
