// Package maintenance runs periodic background tasks as Go tickers: stored
// aggregate reconciliation and the population digest that feeds the
// Prometheus gauges.
package maintenance

import (
	"context"
	"log/slog"
	"time"

	"github.com/albapepper/consumer-insights/internal/behavior"
	"github.com/albapepper/consumer-insights/internal/config"
	"github.com/albapepper/consumer-insights/internal/metrics"
	"github.com/albapepper/consumer-insights/internal/store"
)

// Config controls maintenance task intervals. Zero duration disables a task.
type Config struct {
	ReconcileInterval time.Duration // Recompute consumer aggregates from orders
	DigestInterval    time.Duration // Summarize the population into gauges
}

// FromAppConfig reads the intervals from the service configuration.
func FromAppConfig(cfg *config.Config) Config {
	return Config{
		ReconcileInterval: cfg.ReconcileInterval,
		DigestInterval:    cfg.DigestInterval,
	}
}

// Deps are the resources the tasks operate on.
type Deps struct {
	DB     store.Execer
	Source store.Source
	Cache  Purger
	Now    func() time.Time
}

// Start launches all configured maintenance tickers. Blocks until ctx is
// cancelled, then returns nil.
func Start(ctx context.Context, deps Deps, cfg Config, logger *slog.Logger) error {
	logger.Info("Maintenance tickers started",
		"reconcile", cfg.ReconcileInterval,
		"digest", cfg.DigestInterval)

	tickers := make([]*time.Ticker, 0, 2)
	defer func() {
		for _, t := range tickers {
			t.Stop()
		}
	}()

	if cfg.ReconcileInterval > 0 {
		t := time.NewTicker(cfg.ReconcileInterval)
		tickers = append(tickers, t)
		go runLoop(ctx, t.C, func() {
			_, _ = Reconcile(ctx, deps.DB, deps.Cache, logger)
		})
	}

	if cfg.DigestInterval > 0 {
		// First digest right away so the gauges are populated after boot.
		go func() { _, _ = Digest(ctx, deps.Source, deps.Now, logger) }()
		t := time.NewTicker(cfg.DigestInterval)
		tickers = append(tickers, t)
		go runLoop(ctx, t.C, func() {
			_, _ = Digest(ctx, deps.Source, deps.Now, logger)
		})
	}

	<-ctx.Done()
	logger.Info("Maintenance tickers stopped")
	return nil
}

func runLoop(ctx context.Context, ch <-chan time.Time, fn func()) {
	for {
		select {
		case <-ch:
			fn()
		case <-ctx.Done():
			return
		}
	}
}

// DigestResult is what one digest run observed.
type DigestResult struct {
	Summary   behavior.PredictionSummary
	ChurnRisk int
}

// Digest analyzes the whole population, publishes the bucket gauges and logs
// the headline numbers.
func Digest(ctx context.Context, source store.Source, now func() time.Time, logger *slog.Logger) (DigestResult, error) {
	start := time.Now()
	snap, err := source.Snapshot(ctx)
	if err != nil {
		metrics.SnapshotErrors.WithLabelValues("digest").Inc()
		logger.Warn("Digest: snapshot failed", "error", err)
		return DigestResult{}, err
	}

	e := behavior.NewEngine(snap, snap, snap)
	if now != nil {
		e.Now = now
	}
	scores := e.AnalyzeAllConsumers()
	res := DigestResult{
		Summary:   behavior.Summarize(scores),
		ChurnRisk: len(behavior.ChurnRisk(scores)),
	}
	metrics.RecordAnalysis("digest", len(scores), time.Since(start))
	metrics.SetDigest(
		res.Summary.HighProbabilityReorders,
		res.Summary.MediumProbabilityReorders,
		res.Summary.LowProbabilityReorders,
		res.Summary.AverageReorderProbability,
		res.ChurnRisk,
	)

	logger.Info("Digest complete",
		"consumers", res.Summary.TotalConsumers,
		"high", res.Summary.HighProbabilityReorders,
		"medium", res.Summary.MediumProbabilityReorders,
		"low", res.Summary.LowProbabilityReorders,
		"avg_probability", res.Summary.AverageReorderProbability,
		"churn_risk", res.ChurnRisk,
		"duration", time.Since(start).Round(time.Millisecond))
	return res, nil
}
