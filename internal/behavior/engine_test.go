package behavior

import (
	"fmt"
	"testing"
	"time"

	"github.com/albapepper/consumer-insights/internal/retail"
	"github.com/albapepper/consumer-insights/internal/store"
)

// newTestEngine builds an engine over a small population:
//
//	1 loyal      30 delivered orders, last 10 days ago, spent 6000
//	2 newcomer   no orders
//	3 lapsed     3 orders, last 200 days ago, spent 300
//	4 drifting   6 orders, last 95 days ago, spent 2600
//	5 steady     12 delivered orders, last 20 days ago, spent 3000
func newTestEngine() *Engine {
	consumers := []retail.Consumer{
		{ID: 1, Name: "Loyal", TotalSpent: 6000},
		{ID: 2, Name: "Newcomer"},
		{ID: 3, Name: "Lapsed", TotalSpent: 300},
		{ID: 4, Name: "Drifting", TotalSpent: 2600},
		{ID: 5, Name: "Steady", TotalSpent: 3000},
	}
	var orders []retail.Order
	orders = append(orders, ordersEvery(1, 100, 30, 10, 5, retail.StatusDelivered)...)
	orders = append(orders, ordersEvery(3, 200, 3, 200, 30, retail.StatusCancelled)...)
	orders = append(orders, ordersEvery(4, 300, 6, 95, 10, retail.StatusDelivered)...)
	orders = append(orders, ordersEvery(5, 400, 12, 20, 7, retail.StatusDelivered)...)
	products := []retail.Product{{ID: 1, Name: "Novel", Category: "Books"}}

	snap := store.NewSnapshot(consumers, orders, products)
	e := NewEngine(snap, snap, snap)
	e.Now = func() time.Time { return testNow }
	return e
}

func TestAnalyzeConsumer_NotFound(t *testing.T) {
	if _, ok := newTestEngine().AnalyzeConsumer(404); ok {
		t.Fatal("expected not found for unknown consumer")
	}
}

func TestAnalyzeConsumer_ZeroOrdersIsStillAnalyzed(t *testing.T) {
	got, ok := newTestEngine().AnalyzeConsumer(2)
	if !ok {
		t.Fatal("expected consumer 2 to be found")
	}
	if got.ConsumerName != "Newcomer" {
		t.Fatalf("name = %q", got.ConsumerName)
	}
	if got.RFMScore != noOrdersRFM {
		t.Fatalf("rfm = %+v, want sentinel", got.RFMScore)
	}
	if got.ReorderPrediction != noOrdersPrediction {
		t.Fatalf("prediction = %+v, want sentinel", got.ReorderPrediction)
	}
	if len(got.PurchasePattern.PreferredCategories) != 0 || len(got.PurchasePattern.OrderStatusDistribution) != 0 {
		t.Fatalf("pattern = %+v, want empty", got.PurchasePattern)
	}
}

func TestAnalyzeConsumer_Loyal(t *testing.T) {
	got, ok := newTestEngine().AnalyzeConsumer(1)
	if !ok {
		t.Fatal("expected consumer 1 to be found")
	}
	if got.RFMScore.TotalScore != 14 {
		t.Fatalf("total score = %d, want 14", got.RFMScore.TotalScore)
	}
	if got.ReorderPrediction.Probability != 0.97 {
		t.Fatalf("probability = %v, want 0.97", got.ReorderPrediction.Probability)
	}
	if got.PurchasePattern.PreferredCategories[0] != "Books" {
		t.Fatalf("preferred = %v", got.PurchasePattern.PreferredCategories)
	}
}

func TestAnalyzeAllConsumers_KeepsListingOrder(t *testing.T) {
	got := newTestEngine().AnalyzeAllConsumers()
	if len(got) != 5 {
		t.Fatalf("got %d scores, want 5", len(got))
	}
	for i, s := range got {
		if s.ConsumerID != i+1 {
			t.Fatalf("position %d holds consumer %d", i, s.ConsumerID)
		}
	}
}

func TestAnalyzeAllConsumers_ReadsClockOnce(t *testing.T) {
	e := newTestEngine()
	calls := 0
	e.Now = func() time.Time {
		calls++
		return testNow
	}
	e.AnalyzeAllConsumers()
	if calls != 1 {
		t.Fatalf("clock read %d times, want 1", calls)
	}
}

// ghostConsumers lists a consumer that Consumer cannot resolve.
type ghostConsumers struct{ *store.Snapshot }

func (g ghostConsumers) Consumers() []retail.Consumer {
	return append(g.Snapshot.Consumers(), retail.Consumer{ID: 999, Name: "Ghost"})
}

func TestAnalyzeAllConsumers_DropsUnresolvable(t *testing.T) {
	snap := store.NewSnapshot([]retail.Consumer{{ID: 1, Name: "Only"}}, nil, nil)
	e := NewEngine(ghostConsumers{snap}, snap, snap)
	got := e.AnalyzeAllConsumers()
	if len(got) != 1 || got[0].ConsumerID != 1 {
		t.Fatalf("got %+v, want only consumer 1", got)
	}
}

func TestEngineSummarize(t *testing.T) {
	got := newTestEngine().Summarize()
	if got.TotalConsumers != 5 {
		t.Fatalf("total = %d, want 5", got.TotalConsumers)
	}
	if sum := got.HighProbabilityReorders + got.MediumProbabilityReorders + got.LowProbabilityReorders; sum != 5 {
		t.Fatalf("buckets sum to %d, want 5", sum)
	}
	if got.TopPredictedConsumers[0].ConsumerID != 1 {
		t.Fatalf("top consumer = %+v, want consumer 1", got.TopPredictedConsumers[0])
	}
	for i := 1; i < len(got.TopPredictedConsumers); i++ {
		if got.TopPredictedConsumers[i].Probability > got.TopPredictedConsumers[i-1].Probability {
			t.Fatalf("top list not ordered: %+v", got.TopPredictedConsumers)
		}
	}
}

func scoreWith(id int, probability float64) ConsumerBehaviorScore {
	return ConsumerBehaviorScore{
		ConsumerID:        id,
		ConsumerName:      fmt.Sprintf("c%d", id),
		ReorderPrediction: ReorderPrediction{Probability: probability},
	}
}

func TestSummarize_Buckets(t *testing.T) {
	scores := []ConsumerBehaviorScore{
		scoreWith(1, 0.71), scoreWith(2, 0.70), scoreWith(3, 0.40), scoreWith(4, 0.39),
	}
	got := Summarize(scores)
	if got.HighProbabilityReorders != 1 || got.MediumProbabilityReorders != 2 || got.LowProbabilityReorders != 1 {
		t.Fatalf("buckets = %d/%d/%d, want 1/2/1",
			got.HighProbabilityReorders, got.MediumProbabilityReorders, got.LowProbabilityReorders)
	}
	if got.AverageReorderProbability != 0.55 {
		t.Fatalf("average = %v, want 0.55", got.AverageReorderProbability)
	}
}

func TestSummarize_Empty(t *testing.T) {
	got := Summarize(nil)
	if got.TotalConsumers != 0 || got.AverageReorderProbability != 0 {
		t.Fatalf("got %+v, want zero summary", got)
	}
	if got.TopPredictedConsumers == nil {
		t.Fatal("top list should be empty, not nil")
	}
}

func TestSummarize_TopTenStable(t *testing.T) {
	probabilities := []float64{0.5, 0.9, 0.5, 0.3, 0.9, 0.8, 0.5, 0.1, 0.7, 0.5, 0.6, 0.5}
	scores := make([]ConsumerBehaviorScore, len(probabilities))
	for i, p := range probabilities {
		scores[i] = scoreWith(i+1, p)
	}

	got := Summarize(scores).TopPredictedConsumers
	wantIDs := []int{2, 5, 6, 9, 11, 1, 3, 7, 10, 12}
	if len(got) != len(wantIDs) {
		t.Fatalf("got %d entries, want %d", len(got), len(wantIDs))
	}
	for i, id := range wantIDs {
		if got[i].ConsumerID != id {
			t.Fatalf("position %d: consumer %d, want %d (%+v)", i, got[i].ConsumerID, id, got)
		}
	}
	if scores[0].ConsumerID != 1 {
		t.Fatal("Summarize reordered its input")
	}
}

func TestChurnRiskConsumers(t *testing.T) {
	got := newTestEngine().ChurnRiskConsumers()
	// newcomer (999), lapsed (200), drifting (95) are high risk
	wantIDs := []int{4, 3, 2}
	if len(got) != len(wantIDs) {
		t.Fatalf("got %d consumers, want %d: %+v", len(got), len(wantIDs), got)
	}
	for i, id := range wantIDs {
		if got[i].ConsumerID != id {
			t.Fatalf("position %d: consumer %d, want %d", i, got[i].ConsumerID, id)
		}
		if got[i].ReorderPrediction.RiskOfChurn != TierHigh {
			t.Fatalf("consumer %d is not high risk", id)
		}
		if i > 0 && got[i].RFMScore.Recency < got[i-1].RFMScore.Recency {
			t.Fatal("churn list not in ascending recency")
		}
	}
}

func TestHighValueReorderCandidates(t *testing.T) {
	got := newTestEngine().HighValueReorderCandidates()
	// loyal: 0.97 / monetary 5; steady: monetary 4 and probability above 0.6
	if len(got) != 2 {
		t.Fatalf("got %d candidates, want 2: %+v", len(got), got)
	}
	if got[0].ConsumerID != 1 || got[1].ConsumerID != 5 {
		t.Fatalf("candidates = %d, %d; want 1, 5", got[0].ConsumerID, got[1].ConsumerID)
	}
	for _, s := range got {
		if s.ReorderPrediction.Probability <= 0.6 || s.RFMScore.MonetaryScore < 4 {
			t.Fatalf("consumer %d should not qualify: %+v", s.ConsumerID, s)
		}
	}
}

func TestHighValueCandidates_Stable(t *testing.T) {
	scores := []ConsumerBehaviorScore{scoreWith(1, 0.7), scoreWith(2, 0.9), scoreWith(3, 0.7), scoreWith(4, 0.6)}
	for i := range scores {
		scores[i].RFMScore.MonetaryScore = 4
	}
	got := HighValueCandidates(scores)
	if len(got) != 3 || got[0].ConsumerID != 2 || got[1].ConsumerID != 1 || got[2].ConsumerID != 3 {
		t.Fatalf("got %+v", got)
	}
}
