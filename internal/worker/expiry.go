// Package worker runs periodic background jobs.
package worker

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Expirer cancels pending reservations that were never paid or confirmed.
type Expirer interface {
	ExpireStalePending(ctx context.Context, olderThan time.Duration, limit int) (int, error)
}

type PendingExpiryWorker struct {
	expirer   Expirer
	interval  time.Duration
	ttl       time.Duration
	batchSize int
	log       logrus.FieldLogger
}

func NewPendingExpiryWorker(expirer Expirer, interval, ttl time.Duration, batchSize int, log logrus.FieldLogger) *PendingExpiryWorker {
	if interval <= 0 {
		interval = time.Minute
	}
	if batchSize < 1 {
		batchSize = 100
	}
	return &PendingExpiryWorker{
		expirer:   expirer,
		interval:  interval,
		ttl:       ttl,
		batchSize: batchSize,
		log:       log.WithField("worker", "pending_expiry"),
	}
}

// Start runs a sweep every interval until ctx is done.
func (w *PendingExpiryWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.log.WithFields(logrus.Fields{"interval": w.interval, "ttl": w.ttl}).Info("pending expiry worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info("pending expiry worker stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

// sweep drains stale pending reservations batch by batch.
func (w *PendingExpiryWorker) sweep(ctx context.Context) int {
	total := 0
	for ctx.Err() == nil {
		n, err := w.expirer.ExpireStalePending(ctx, w.ttl, w.batchSize)
		total += n
		if err != nil {
			w.log.WithError(err).Error("failed to expire pending reservations")
			break
		}
		if n < w.batchSize {
			break
		}
	}
	if total > 0 {
		w.log.WithField("count", total).Info("expired stale pending reservations")
	}
	return total
}
