package behavior

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/albapepper/consumer-insights/internal/retail"
)

// NoOrdersRecency is the recency reported for consumers without orders.
const NoOrdersRecency = 999

const day = 24 * time.Hour

// noOrdersRFM is the score of a consumer who never ordered.
var noOrdersRFM = RFMScore{
	Recency:        NoOrdersRecency,
	Frequency:      0,
	Monetary:       0,
	RecencyScore:   1,
	FrequencyScore: 1,
	MonetaryScore:  1,
	TotalScore:     3,
}

// ScoreRFM computes the RFM score of a consumer from its orders as of now.
// Monetary is the consumer's stored TotalSpent, not a sum over orders.
func ScoreRFM(consumer retail.Consumer, orders []retail.Order, now time.Time) RFMScore {
	if len(orders) == 0 {
		return noOrdersRFM
	}

	last := orders[0].OrderDate
	for _, o := range orders[1:] {
		if o.OrderDate.After(last) {
			last = o.OrderDate
		}
	}

	recency := int(math.Floor(now.Sub(last).Hours() / 24))
	if recency < 0 {
		recency = 0
	}

	score := RFMScore{
		Recency:        recency,
		Frequency:      len(orders),
		Monetary:       consumer.TotalSpent,
		RecencyScore:   recencyScore(recency),
		FrequencyScore: frequencyScore(len(orders)),
		MonetaryScore:  monetaryScore(consumer.TotalSpent),
	}
	score.TotalScore = score.RecencyScore + score.FrequencyScore + score.MonetaryScore
	return score
}

// recencyScore: the more recent the last order, the higher the score.
func recencyScore(days int) int {
	switch {
	case days > 180:
		return 1
	case days > 90:
		return 2
	case days > 60:
		return 3
	case days > 30:
		return 4
	default:
		return 5
	}
}

func frequencyScore(orders int) int {
	switch {
	case orders >= 50:
		return 5
	case orders >= 30:
		return 4
	case orders >= 15:
		return 3
	case orders >= 5:
		return 2
	default:
		return 1
	}
}

func monetaryScore(spent float64) int {
	switch {
	case spent >= 5000:
		return 5
	case spent >= 2500:
		return 4
	case spent >= 1000:
		return 3
	case spent >= 500:
		return 2
	default:
		return 1
	}
}

// round2 rounds v to two decimal places, half up, on the float value of
// v*100. A sum that prints as 0.575 but is stored just below it rounds to 0.57.
func round2(v float64) float64 {
	return decimal.NewFromFloat(v * 100).Round(0).Shift(-2).InexactFloat64()
}
