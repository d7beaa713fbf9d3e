package maintenance

import (
	"context"
	"log/slog"
	"time"

	"github.com/albapepper/consumer-insights/internal/metrics"
	"github.com/albapepper/consumer-insights/internal/store"
)

// Purger drops cached responses. Satisfied by every cache.Store.
type Purger interface {
	Purge(ctx context.Context) error
}

// Reconcile recomputes stored consumer aggregates from orders. When rows
// changed and a cache is given, the cache is purged. Called by the ticker
// and by `insights reconcile`.
func Reconcile(ctx context.Context, db store.Execer, cache Purger, logger *slog.Logger) (store.ReconcileResult, error) {
	res, err := store.ReconcileConsumerStats(ctx, db)
	metrics.RecordReconcile(res.ConsumersUpdated, err)
	if err != nil {
		logger.Warn("Reconcile: failed", "error", err)
		return res, err
	}

	dur := res.Duration.Round(time.Millisecond)
	if res.ConsumersUpdated == 0 {
		logger.Debug("Reconcile: aggregates already consistent", "duration", dur)
		return res, nil
	}
	logger.Info("Reconcile: corrected consumer aggregates",
		"count", res.ConsumersUpdated, "duration", dur)

	if cache != nil {
		if err := cache.Purge(ctx); err != nil {
			logger.Warn("Reconcile: cache purge failed", "error", err)
		}
	}
	return res, nil
}
