package behavior

import (
	"math"

	"github.com/albapepper/consumer-insights/internal/retail"
)

const (
	// MaxProbability caps every reorder probability.
	MaxProbability = 0.99

	// DefaultExpectedDays is used when no cadence can be measured.
	DefaultExpectedDays = 30

	weightRFM       = 0.40
	weightFrequency = 0.30
	weightRecency   = 0.20
	weightDelivered = 0.10

	// Orders beyond this count no longer raise the frequency factor.
	frequencySaturation = 10
)

var noOrdersPrediction = ReorderPrediction{
	Probability:                0,
	Confidence:                 TierLow,
	ExpectedDaysUntilNextOrder: NoOrdersRecency,
	RiskOfChurn:                TierHigh,
}

// PredictReorder combines the RFM score and purchase pattern into a reorder
// prediction. orderCount is the number of orders both were computed from.
func PredictReorder(rfm RFMScore, pattern PurchasePattern, orderCount int) ReorderPrediction {
	if orderCount == 0 {
		return noOrdersPrediction
	}

	rfmFactor := float64(rfm.TotalScore) / 15 * weightRFM
	frequencyFactor := float64(min(rfm.Frequency, frequencySaturation)) / frequencySaturation * weightFrequency
	recencyFactor := float64(rfm.RecencyScore) / 5 * weightRecency
	delivered := pattern.OrderStatusDistribution[string(retail.StatusDelivered)]
	deliveredFactor := float64(delivered) / float64(orderCount) * weightDelivered

	raw := math.Min(rfmFactor+frequencyFactor+recencyFactor+deliveredFactor, MaxProbability)

	return ReorderPrediction{
		Probability:                round2(raw),
		Confidence:                 confidenceTier(orderCount),
		ExpectedDaysUntilNextOrder: expectedDays(pattern.AverageDaysBetweenOrders),
		RiskOfChurn:                churnRisk(rfm, raw),
	}
}

func confidenceTier(orderCount int) Tier {
	switch {
	case orderCount >= 20:
		return TierHigh
	case orderCount >= 10:
		return TierMedium
	default:
		return TierLow
	}
}

func expectedDays(avgGap float64) int {
	if avgGap > 0 {
		return int(math.Round(avgGap))
	}
	return DefaultExpectedDays
}

// churnRisk evaluates the rules in order; the first match wins. probability
// is the unrounded value.
func churnRisk(rfm RFMScore, probability float64) Tier {
	switch {
	case rfm.Recency > 90 || rfm.RecencyScore <= 2 || probability < 0.3:
		return TierHigh
	case rfm.Recency > 60 || probability < 0.5:
		return TierMedium
	default:
		return TierLow
	}
}
