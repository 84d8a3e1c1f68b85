// Package worker runs the background maintenance loops.
package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/hostedpay/payflow/internal/domain"
)

// PaymentStore is the slice of persistence the worker needs.
type PaymentStore interface {
	FindStalePendingAuthorizations(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Payment, error)
	UpdateStatus(ctx context.Context, identifier string, from []domain.Status, to domain.Status) (bool, error)
}

type InteractionLog interface {
	Append(ctx context.Context, entry *domain.InteractionEntry) error
}

// ExpirationWorker voids payments stuck in PendingAuthorization. A payer
// who abandoned the off-site gateway page never triggers a completion
// callback, so without this loop such payments would stay pending forever.
type ExpirationWorker struct {
	payments  PaymentStore
	log       InteractionLog
	interval  time.Duration
	maxAge    time.Duration
	batchSize int
	logger    *slog.Logger
}

func NewExpirationWorker(
	payments PaymentStore,
	log InteractionLog,
	interval time.Duration,
	maxAge time.Duration,
	batchSize int,
	logger *slog.Logger,
) *ExpirationWorker {
	return &ExpirationWorker{
		payments:  payments,
		log:       log,
		interval:  interval,
		maxAge:    maxAge,
		batchSize: batchSize,
		logger:    logger,
	}
}

func (w *ExpirationWorker) Start(ctx context.Context) {
	w.logger.Info("expiration worker started",
		"interval", w.interval,
		"max_age", w.maxAge,
	)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	if err := w.ExpireStale(ctx); err != nil {
		w.logger.Error("expiration processing failed", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("expiration worker stopping")
			return
		case <-ticker.C:
			if err := w.ExpireStale(ctx); err != nil {
				w.logger.Error("expiration processing failed", "error", err)
			}
		}
	}
}

// ExpireStale voids one batch of stale pending authorizations. The
// conditional status update makes the worker safe to run alongside live
// completion callbacks: whichever side commits first wins.
func (w *ExpirationWorker) ExpireStale(ctx context.Context) error {
	cutoff := time.Now().Add(-w.maxAge)

	stale, err := w.payments.FindStalePendingAuthorizations(ctx, cutoff, w.batchSize)
	if err != nil {
		return err
	}
	if len(stale) == 0 {
		return nil
	}

	var voided int
	for _, p := range stale {
		// Entry first: a payment whose log write fails stays pending and is
		// picked up again on the next tick.
		entry := domain.NewInteractionEntry(p.Identifier, domain.KindVoidRequest, "",
			"The payment authorization expired.")
		if err := w.log.Append(ctx, entry); err != nil {
			w.logger.Error("failed to log expiration",
				"payment", p.Identifier,
				"error", err)
			continue
		}

		ok, err := w.payments.UpdateStatus(ctx, p.Identifier,
			[]domain.Status{domain.StatusPendingAuthorization},
			domain.StatusVoid,
		)
		if err != nil {
			w.logger.Error("failed to void stale payment",
				"payment", p.Identifier,
				"error", err)
			continue
		}
		if !ok {
			continue
		}
		voided++
	}

	w.logger.Info("processed stale pending authorizations",
		"found", len(stale),
		"voided", voided)
	return nil
}
