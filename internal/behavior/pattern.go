package behavior

import (
	"slices"
	"time"

	"github.com/albapepper/consumer-insights/internal/retail"
)

// maxPreferredCategories caps PurchasePattern.PreferredCategories.
const maxPreferredCategories = 3

// AnalyzePattern derives cadence, category preference, order value and
// status mix from a consumer's orders. Orders whose product cannot be
// resolved still count everywhere except the category tally.
func AnalyzePattern(consumer retail.Consumer, orders []retail.Order, products ProductProvider) PurchasePattern {
	if len(orders) == 0 {
		return PurchasePattern{
			PreferredCategories:     []string{},
			OrderStatusDistribution: map[string]int{},
		}
	}

	return PurchasePattern{
		AverageDaysBetweenOrders: averageGapDays(orders),
		PreferredCategories:      preferredCategories(orders, products),
		AverageOrderValue:        consumer.TotalSpent / float64(len(orders)),
		OrderStatusDistribution:  statusDistribution(orders),
	}
}

// averageGapDays is the mean gap between consecutive order dates, in days.
func averageGapDays(orders []retail.Order) float64 {
	if len(orders) < 2 {
		return 0
	}
	dates := make([]time.Time, len(orders))
	for i, o := range orders {
		dates[i] = o.OrderDate
	}
	slices.SortFunc(dates, func(a, b time.Time) int { return a.Compare(b) })

	var total time.Duration
	for i := 1; i < len(dates); i++ {
		total += dates[i].Sub(dates[i-1])
	}
	return total.Hours() / 24 / float64(len(dates)-1)
}

// preferredCategories ranks categories by order count. Ties keep the order
// in which categories were first seen.
func preferredCategories(orders []retail.Order, products ProductProvider) []string {
	counts := make(map[string]int)
	var seen []string
	for _, o := range orders {
		p, ok := products.Product(o.ProductID)
		if !ok {
			continue
		}
		if _, dup := counts[p.Category]; !dup {
			seen = append(seen, p.Category)
		}
		counts[p.Category]++
	}

	slices.SortStableFunc(seen, func(a, b string) int { return counts[b] - counts[a] })
	if len(seen) > maxPreferredCategories {
		seen = seen[:maxPreferredCategories]
	}
	if seen == nil {
		return []string{}
	}
	return seen
}

func statusDistribution(orders []retail.Order) map[string]int {
	dist := make(map[string]int)
	for _, o := range orders {
		dist[string(o.Status)]++
	}
	return dist
}
