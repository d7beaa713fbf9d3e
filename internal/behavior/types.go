// Package behavior scores consumers from their order history and predicts how
// likely they are to order again.
//
// Pipeline per consumer: RFM score + purchase pattern → reorder prediction.
// The Engine runs that pipeline for one consumer or the whole population and
// derives the summary, churn-risk and high-value views.
//
// Everything here is a pure function of the provider snapshot and an injected
// clock. Nothing is cached and no input is mutated.
package behavior

import "github.com/albapepper/consumer-insights/internal/retail"

// --------------------------------------------------------------------------
// Providers
// --------------------------------------------------------------------------

// ConsumerProvider resolves consumer records.
type ConsumerProvider interface {
	Consumer(id int) (retail.Consumer, bool)
	Consumers() []retail.Consumer
}

// OrderProvider lists a consumer's orders.
type OrderProvider interface {
	OrdersForConsumer(consumerID int) []retail.Order
}

// ProductProvider resolves product records.
type ProductProvider interface {
	Product(id int) (retail.Product, bool)
}

// --------------------------------------------------------------------------
// Tiers
// --------------------------------------------------------------------------

// Tier is a qualitative low/medium/high label.
type Tier string

const (
	TierLow    Tier = "low"
	TierMedium Tier = "medium"
	TierHigh   Tier = "high"
)

// --------------------------------------------------------------------------
// Value objects
// --------------------------------------------------------------------------

// RFMScore holds the raw recency/frequency/monetary figures and their 1–5
// ordinal scores. TotalScore is always the sum of the three sub-scores.
type RFMScore struct {
	Recency        int     `json:"recency"` // days since last order, 999 when there are none
	Frequency      int     `json:"frequency"`
	Monetary       float64 `json:"monetary"`
	RecencyScore   int     `json:"recency_score"`
	FrequencyScore int     `json:"frequency_score"`
	MonetaryScore  int     `json:"monetary_score"`
	TotalScore     int     `json:"total_score"`
}

// PurchasePattern summarizes how a consumer buys.
type PurchasePattern struct {
	AverageDaysBetweenOrders float64        `json:"average_days_between_orders"`
	PreferredCategories      []string       `json:"preferred_categories"`
	AverageOrderValue        float64        `json:"average_order_value"`
	OrderStatusDistribution  map[string]int `json:"order_status_distribution"`
}

// ReorderPrediction is the rule-based reorder outlook for a consumer.
type ReorderPrediction struct {
	Probability                float64 `json:"probability"`
	Confidence                 Tier    `json:"confidence"`
	ExpectedDaysUntilNextOrder int     `json:"expected_days_until_next_order"`
	RiskOfChurn                Tier    `json:"risk_of_churn"`
}

// ConsumerBehaviorScore is the full analysis for one consumer.
type ConsumerBehaviorScore struct {
	ConsumerID        int               `json:"consumer_id"`
	ConsumerName      string            `json:"consumer_name"`
	RFMScore          RFMScore          `json:"rfm_score"`
	PurchasePattern   PurchasePattern   `json:"purchase_pattern"`
	ReorderPrediction ReorderPrediction `json:"reorder_prediction"`
}

// RankedConsumer is one entry of the summary's top list.
type RankedConsumer struct {
	ConsumerID  int     `json:"consumer_id"`
	Name        string  `json:"name"`
	Probability float64 `json:"probability"`
}

// PredictionSummary aggregates reorder predictions across the population.
type PredictionSummary struct {
	TotalConsumers            int              `json:"total_consumers"`
	HighProbabilityReorders   int              `json:"high_probability_reorders"`
	MediumProbabilityReorders int              `json:"medium_probability_reorders"`
	LowProbabilityReorders    int              `json:"low_probability_reorders"`
	AverageReorderProbability float64          `json:"average_reorder_probability"`
	TopPredictedConsumers     []RankedConsumer `json:"top_predicted_consumers"`
}
