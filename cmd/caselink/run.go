package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/tenantwatch/caselink/internal/app"
)

// runScheduler runs the crawl, extract and reconcile stages on their
// configured cron schedules until interrupted
func runScheduler(application *app.App) error {
	if !application.Config.Scheduler.Enabled {
		return fmt.Errorf("scheduler is disabled in configuration")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := application.RegisterScheduledJobs(ctx); err != nil {
		return err
	}
	if err := application.Scheduler.Start(); err != nil {
		return err
	}

	application.Logger.Info().Msg("Pipeline running - Press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	application.Logger.Info().Msg("Interrupt signal received")
	cancel()
	application.Scheduler.Stop()
	return nil
}
