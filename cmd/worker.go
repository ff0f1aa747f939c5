package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/tradedesk/internal/payment"
	paymentPostgres "github.com/frahmantamala/tradedesk/internal/payment/postgres"
	"github.com/frahmantamala/tradedesk/pkg/logger"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run background jobs",
}

var expirePaymentsCmd = &cobra.Command{
	Use:   "expire-payments",
	Short: "Fail pending payments that were never completed",
	Long:  `Runs the stale payment sweep on the configured cron schedule, or once with --once.`,
	RunE:  runExpirePayments,
}

var (
	expireOnce    bool
	expireTimeout time.Duration
)

func runExpirePayments(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	lg := logger.LoggerWrapper()

	conn, err := initDB(cfg.Database)
	if err != nil {
		return err
	}
	defer conn.Close()

	gdb, err := initGorm(conn, lg)
	if err != nil {
		return err
	}

	bus := newEventBus(cfg, lg)
	defer bus.Wait()

	job := payment.NewExpiryJob(paymentPostgres.NewPaymentRepository(gdb), bus, cfg.Payment.StaleAfter, lg)

	if expireOnce {
		ctx, cancel := context.WithTimeout(context.Background(), expireTimeout)
		defer cancel()
		expired, err := job.Run(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("expired %d payments\n", expired)
		return nil
	}

	scheduler, err := job.Schedule(cfg.Payment.ExpirySchedule, expireTimeout)
	if err != nil {
		return err
	}
	scheduler.Start()
	lg.Info("payment expiry worker started",
		"schedule", cfg.Payment.ExpirySchedule,
		"stale_after", cfg.Payment.StaleAfter)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	lg.Info("received signal, stopping payment expiry worker", "signal", sig)

	stopped := scheduler.Stop()
	select {
	case <-stopped.Done():
		lg.Info("payment expiry worker stopped")
	case <-time.After(expireTimeout):
		lg.Warn("shutdown timeout reached, a sweep may still be running")
	}
	return nil
}

func init() {
	expirePaymentsCmd.Flags().BoolVar(&expireOnce, "once", false, "run a single sweep and exit")
	expirePaymentsCmd.Flags().DurationVar(&expireTimeout, "timeout", 2*time.Minute, "time budget for one sweep")

	workerCmd.AddCommand(expirePaymentsCmd)
}
