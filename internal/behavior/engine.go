package behavior

import (
	"cmp"
	"slices"
	"time"
)

// Probability buckets used by Summarize.
const (
	highProbabilityAbove = 0.70
	lowProbabilityBelow  = 0.40

	topPredictedLimit = 10

	highValueMinProbability   = 0.60
	highValueMinMonetaryScore = 4
)

// Engine runs the behavior pipeline over a provider snapshot.
type Engine struct {
	consumers ConsumerProvider
	orders    OrderProvider
	products  ProductProvider

	// Now returns the reference instant for recency. Each public call reads
	// it once. Defaults to time.Now.
	Now func() time.Time
}

// NewEngine creates an Engine reading from the given providers.
func NewEngine(consumers ConsumerProvider, orders OrderProvider, products ProductProvider) *Engine {
	return &Engine{
		consumers: consumers,
		orders:    orders,
		products:  products,
		Now:       time.Now,
	}
}

func (e *Engine) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

// AnalyzeConsumer returns the full analysis of one consumer. ok is false when
// the consumer does not exist; a consumer with no orders is still analyzed.
func (e *Engine) AnalyzeConsumer(id int) (score ConsumerBehaviorScore, ok bool) {
	return e.analyze(id, e.now())
}

func (e *Engine) analyze(id int, now time.Time) (ConsumerBehaviorScore, bool) {
	consumer, ok := e.consumers.Consumer(id)
	if !ok {
		return ConsumerBehaviorScore{}, false
	}

	orders := e.orders.OrdersForConsumer(id)
	rfm := ScoreRFM(consumer, orders, now)
	pattern := AnalyzePattern(consumer, orders, e.products)

	return ConsumerBehaviorScore{
		ConsumerID:        consumer.ID,
		ConsumerName:      consumer.Name,
		RFMScore:          rfm,
		PurchasePattern:   pattern,
		ReorderPrediction: PredictReorder(rfm, pattern, len(orders)),
	}, true
}

// AnalyzeAllConsumers analyzes every listed consumer, in listing order.
func (e *Engine) AnalyzeAllConsumers() []ConsumerBehaviorScore {
	return e.analyzeAll(e.now())
}

func (e *Engine) analyzeAll(now time.Time) []ConsumerBehaviorScore {
	consumers := e.consumers.Consumers()
	scores := make([]ConsumerBehaviorScore, 0, len(consumers))
	for _, c := range consumers {
		if s, ok := e.analyze(c.ID, now); ok {
			scores = append(scores, s)
		}
	}
	return scores
}

// Summarize buckets the population by reorder probability and ranks the top
// predicted consumers.
func (e *Engine) Summarize() PredictionSummary {
	return Summarize(e.AnalyzeAllConsumers())
}

// Summarize builds a PredictionSummary from already computed scores. The
// input slice is not reordered.
func Summarize(scores []ConsumerBehaviorScore) PredictionSummary {
	summary := PredictionSummary{
		TotalConsumers:        len(scores),
		TopPredictedConsumers: []RankedConsumer{},
	}
	if len(scores) == 0 {
		return summary
	}

	var total float64
	for _, s := range scores {
		p := s.ReorderPrediction.Probability
		total += p
		switch {
		case p > highProbabilityAbove:
			summary.HighProbabilityReorders++
		case p >= lowProbabilityBelow:
			summary.MediumProbabilityReorders++
		default:
			summary.LowProbabilityReorders++
		}
	}
	summary.AverageReorderProbability = round2(total / float64(len(scores)))

	ranked := byProbabilityDesc(scores)
	if len(ranked) > topPredictedLimit {
		ranked = ranked[:topPredictedLimit]
	}
	for _, s := range ranked {
		summary.TopPredictedConsumers = append(summary.TopPredictedConsumers, RankedConsumer{
			ConsumerID:  s.ConsumerID,
			Name:        s.ConsumerName,
			Probability: s.ReorderPrediction.Probability,
		})
	}
	return summary
}

// ChurnRiskConsumers returns consumers at high churn risk, smallest recency
// first.
func (e *Engine) ChurnRiskConsumers() []ConsumerBehaviorScore {
	return ChurnRisk(e.AnalyzeAllConsumers())
}

// ChurnRisk filters scores to high churn risk, ordered by ascending recency.
func ChurnRisk(scores []ConsumerBehaviorScore) []ConsumerBehaviorScore {
	out := make([]ConsumerBehaviorScore, 0)
	for _, s := range scores {
		if s.ReorderPrediction.RiskOfChurn == TierHigh {
			out = append(out, s)
		}
	}
	slices.SortStableFunc(out, func(a, b ConsumerBehaviorScore) int {
		return cmp.Compare(a.RFMScore.Recency, b.RFMScore.Recency)
	})
	return out
}

// HighValueReorderCandidates returns high spenders likely to reorder, most
// likely first.
func (e *Engine) HighValueReorderCandidates() []ConsumerBehaviorScore {
	return HighValueCandidates(e.AnalyzeAllConsumers())
}

// HighValueCandidates filters scores to probability > 0.60 with a monetary
// score of at least 4, ordered by descending probability.
func HighValueCandidates(scores []ConsumerBehaviorScore) []ConsumerBehaviorScore {
	out := make([]ConsumerBehaviorScore, 0)
	for _, s := range scores {
		if s.ReorderPrediction.Probability > highValueMinProbability &&
			s.RFMScore.MonetaryScore >= highValueMinMonetaryScore {
			out = append(out, s)
		}
	}
	return byProbabilityDesc(out)
}

// byProbabilityDesc returns a copy of scores sorted by descending
// probability, keeping input order among equals.
func byProbabilityDesc(scores []ConsumerBehaviorScore) []ConsumerBehaviorScore {
	out := slices.Clone(scores)
	slices.SortStableFunc(out, func(a, b ConsumerBehaviorScore) int {
		return cmp.Compare(b.ReorderPrediction.Probability, a.ReorderPrediction.Probability)
	})
	return out
}
