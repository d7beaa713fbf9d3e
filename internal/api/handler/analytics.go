package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/albapepper/consumer-insights/internal/api/respond"
	"github.com/albapepper/consumer-insights/internal/behavior"
	"github.com/albapepper/consumer-insights/internal/cache"
	"github.com/albapepper/consumer-insights/internal/metrics"
	"github.com/albapepper/consumer-insights/internal/store"
)

// errNotFound marks a result that must become a 404 and is never cached.
var errNotFound = errors.New("not found")

// errSnapshot marks a failed snapshot load.
var errSnapshot = errors.New("snapshot unavailable")

// analysis computes one response body. consumers is the number of consumers
// it scored.
type analysis func(ctx context.Context) (body any, consumers int, err error)

// serveAnalysis answers from the cache when possible, otherwise runs fn,
// caches its JSON and writes it. The cache generation is read before fn
// loads its snapshot so a purge during the load keeps the result uncached.
func (h *Handler) serveAnalysis(w http.ResponseWriter, r *http.Request, op, key string, fn analysis) {
	ctx := r.Context()
	ttl := h.cfg.CacheTTL

	data, etag, ok, err := h.cache.Get(ctx, key)
	if err != nil {
		h.logger.Warn("Cache read failed", "key", key, "error", err)
	}
	if h.cache.Enabled() {
		metrics.RecordCache(ok)
	}
	if ok {
		if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
			respond.WriteNotModified(w, etag)
			return
		}
		respond.WriteJSON(w, data, etag, ttl, true)
		return
	}

	gen, genErr := h.cache.Generation(ctx)
	if genErr != nil {
		h.logger.Warn("Cache generation read failed", "key", key, "error", genErr)
	}

	start := time.Now()
	body, consumers, err := fn(ctx)
	switch {
	case errors.Is(err, errNotFound):
		respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
		return
	case errors.Is(err, errSnapshot):
		metrics.SnapshotErrors.WithLabelValues(op).Inc()
		h.logger.Error("Snapshot load failed", "operation", op, "error", err)
		respond.WriteErrorDetail(w, http.StatusServiceUnavailable, "SNAPSHOT_UNAVAILABLE",
			"Retail data could not be loaded", "retry shortly")
		return
	case err != nil:
		h.logger.Error("Analysis failed", "operation", op, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Analysis failed")
		return
	}
	elapsed := time.Since(start)
	metrics.RecordAnalysis(op, consumers, elapsed)
	h.logger.Debug("Analysis complete", "operation", op, "consumers", consumers, "duration", elapsed)

	data, err = respond.Marshal(body)
	if err != nil {
		h.logger.Error("Encode response failed", "operation", op, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Could not encode response")
		return
	}
	if genErr != nil {
		etag = cache.ComputeETag(data)
	} else if etag, err = h.cache.Set(ctx, key, gen, data, ttl); err != nil {
		h.logger.Warn("Cache write failed", "key", key, "error", err)
	}
	if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
		respond.WriteNotModified(w, etag)
		return
	}
	respond.WriteJSON(w, data, etag, ttl, false)
}

// engine loads a snapshot and builds an engine over it.
func (h *Handler) engine(ctx context.Context, load func(context.Context) (*store.Snapshot, error)) (*behavior.Engine, error) {
	snap, err := load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errSnapshot, err)
	}
	e := behavior.NewEngine(snap, snap, snap)
	e.Now = h.now
	return e, nil
}

func (h *Handler) fullEngine(ctx context.Context) (*behavior.Engine, error) {
	return h.engine(ctx, h.source.Snapshot)
}

// GetConsumerAnalysis returns the behavior analysis of one consumer.
// @Summary Analyze one consumer
// @Description Returns the RFM score, purchase pattern and reorder prediction for a consumer. Consumers without orders get default scores.
// @Tags analytics
// @Produce json
// @Param consumerID path int true "Consumer ID"
// @Success 200 {object} behavior.ConsumerBehaviorScore
// @Failure 400 {object} respond.ErrorResponse
// @Failure 404 {object} respond.ErrorResponse
// @Failure 503 {object} respond.ErrorResponse
// @Router /analytics/consumer/{consumerID} [get]
func (h *Handler) GetConsumerAnalysis(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "consumerID"))
	if err != nil || id < 1 {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_ID", "Consumer ID must be a positive integer")
		return
	}

	h.serveAnalysis(w, r, "consumer", cache.Key("consumer", strconv.Itoa(id)),
		func(ctx context.Context) (any, int, error) {
			e, err := h.engine(ctx, func(ctx context.Context) (*store.Snapshot, error) {
				return h.source.ConsumerSnapshot(ctx, id)
			})
			if err != nil {
				return nil, 0, err
			}
			score, ok := e.AnalyzeConsumer(id)
			if !ok {
				return nil, 0, fmt.Errorf("consumer %d %w", id, errNotFound)
			}
			return score, 1, nil
		})
}

// GetPredictions returns the analysis of every consumer.
// @Summary Analyze all consumers
// @Description Returns the full behavior analysis of every consumer in listing order.
// @Tags analytics
// @Produce json
// @Success 200 {array} behavior.ConsumerBehaviorScore
// @Failure 503 {object} respond.ErrorResponse
// @Router /analytics/predictions [get]
func (h *Handler) GetPredictions(w http.ResponseWriter, r *http.Request) {
	h.serveAnalysis(w, r, "predictions", cache.Key("predictions"),
		func(ctx context.Context) (any, int, error) {
			e, err := h.fullEngine(ctx)
			if err != nil {
				return nil, 0, err
			}
			scores := e.AnalyzeAllConsumers()
			return scores, len(scores), nil
		})
}

// GetSummary returns the population reorder summary.
// @Summary Prediction summary
// @Description Buckets consumers by reorder probability and lists the ten most likely to reorder.
// @Tags analytics
// @Produce json
// @Success 200 {object} behavior.PredictionSummary
// @Failure 503 {object} respond.ErrorResponse
// @Router /analytics/summary [get]
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	h.serveAnalysis(w, r, "summary", cache.Key("summary"),
		func(ctx context.Context) (any, int, error) {
			e, err := h.fullEngine(ctx)
			if err != nil {
				return nil, 0, err
			}
			scores := e.AnalyzeAllConsumers()
			return behavior.Summarize(scores), len(scores), nil
		})
}

// GetChurnRisk lists consumers at high churn risk.
// @Summary Churn risk consumers
// @Description Returns consumers whose churn risk is high, most recently active first.
// @Tags analytics
// @Produce json
// @Success 200 {array} behavior.ConsumerBehaviorScore
// @Failure 503 {object} respond.ErrorResponse
// @Router /analytics/churn-risk [get]
func (h *Handler) GetChurnRisk(w http.ResponseWriter, r *http.Request) {
	h.serveAnalysis(w, r, "churn_risk", cache.Key("churn-risk"),
		func(ctx context.Context) (any, int, error) {
			e, err := h.fullEngine(ctx)
			if err != nil {
				return nil, 0, err
			}
			scores := e.AnalyzeAllConsumers()
			return behavior.ChurnRisk(scores), len(scores), nil
		})
}

// GetHighValueCandidates lists high spenders likely to reorder.
// @Summary High-value reorder candidates
// @Description Returns consumers with reorder probability above 0.60 and a monetary score of at least 4, most likely first.
// @Tags analytics
// @Produce json
// @Success 200 {array} behavior.ConsumerBehaviorScore
// @Failure 503 {object} respond.ErrorResponse
// @Router /analytics/high-value-candidates [get]
func (h *Handler) GetHighValueCandidates(w http.ResponseWriter, r *http.Request) {
	h.serveAnalysis(w, r, "high_value", cache.Key("high-value-candidates"),
		func(ctx context.Context) (any, int, error) {
			e, err := h.fullEngine(ctx)
			if err != nil {
				return nil, 0, err
			}
			scores := e.AnalyzeAllConsumers()
			return behavior.HighValueCandidates(scores), len(scores), nil
		})
}
