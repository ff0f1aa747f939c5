package payment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	paymentDatamodel "github.com/frahmantamala/tradedesk/internal/core/datamodel/payment"
	"github.com/frahmantamala/tradedesk/internal/core/events"
	"github.com/robfig/cron/v3"
)

const expiryReason = "expired: no completion received"

type ExpiryStore interface {
	// ListStale returns pending payments created before cutoff.
	ListStale(ctx context.Context, cutoff time.Time, limit int) ([]*paymentDatamodel.Payment, error)
	MarkFailed(ctx context.Context, id int64, reason string) (bool, error)
}

// ExpiryJob fails pending payments nobody completed within staleAfter. It uses
// the same pending guard as the completion path, so a late completion and the
// job cannot both win.
type ExpiryJob struct {
	store      ExpiryStore
	publisher  EventPublisher
	staleAfter time.Duration
	batchSize  int
	now        func() time.Time
	logger     *slog.Logger
}

func NewExpiryJob(store ExpiryStore, publisher EventPublisher, staleAfter time.Duration, logger *slog.Logger) *ExpiryJob {
	if staleAfter <= 0 {
		staleAfter = 24 * time.Hour
	}
	return &ExpiryJob{
		store:      store,
		publisher:  publisher,
		staleAfter: staleAfter,
		batchSize:  200,
		now:        time.Now,
		logger:     logger,
	}
}

// Run expires one batch and returns how many payments it flipped.
func (j *ExpiryJob) Run(ctx context.Context) (int, error) {
	cutoff := j.now().UTC().Add(-j.staleAfter)
	stale, err := j.store.ListStale(ctx, cutoff, j.batchSize)
	if err != nil {
		return 0, fmt.Errorf("list stale payments: %w", err)
	}

	expired := 0
	for _, p := range stale {
		changed, err := j.store.MarkFailed(ctx, p.ID, expiryReason)
		if err != nil {
			j.logger.Error("failed to expire payment", "error", err, "payment_id", p.ID)
			continue
		}
		if !changed {
			continue
		}
		expired++
		event := events.NewPaymentFailedEvent(p.ID, p.Receipt, p.PaymentType, p.Amount, p.Currency, p.CustomerEmail, expiryReason)
		if err := j.publisher.Publish(ctx, event); err != nil {
			j.logger.Error("failed to publish payment failed event", "error", err, "payment_id", p.ID)
		}
	}

	j.logger.Info("stale payment sweep finished",
		"cutoff", cutoff,
		"candidates", len(stale),
		"expired", expired)
	return expired, nil
}

// Schedule registers the job on a cron scheduler; the caller starts and stops it.
func (j *ExpiryJob) Schedule(spec string, timeout time.Duration) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if _, err := j.Run(ctx); err != nil {
			j.logger.Error("stale payment sweep failed", "error", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid expiry schedule %q: %w", spec, err)
	}
	return c, nil
}
