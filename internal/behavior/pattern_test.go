package behavior

import (
	"math"
	"slices"
	"testing"

	"github.com/albapepper/consumer-insights/internal/retail"
	"github.com/albapepper/consumer-insights/internal/store"
)

func catalog(categories map[int]string) *store.Snapshot {
	products := make([]retail.Product, 0, len(categories))
	for id, cat := range categories {
		products = append(products, retail.Product{ID: id, Name: cat, Category: cat})
	}
	return store.NewSnapshot(nil, nil, products)
}

func TestAnalyzePattern_NoOrders(t *testing.T) {
	got := AnalyzePattern(retail.Consumer{TotalSpent: 100}, nil, catalog(nil))
	if got.AverageDaysBetweenOrders != 0 || got.AverageOrderValue != 0 {
		t.Fatalf("expected zero pattern, got %+v", got)
	}
	if got.PreferredCategories == nil || len(got.PreferredCategories) != 0 {
		t.Fatalf("preferred categories = %#v, want empty non-nil", got.PreferredCategories)
	}
	if got.OrderStatusDistribution == nil || len(got.OrderStatusDistribution) != 0 {
		t.Fatalf("status distribution = %#v, want empty non-nil", got.OrderStatusDistribution)
	}
}

func TestAnalyzePattern_AverageGapIgnoresInputOrder(t *testing.T) {
	orders := []retail.Order{
		{ID: 1, ProductID: 1, Status: retail.StatusDelivered, OrderDate: daysAgo(0)},
		{ID: 2, ProductID: 1, Status: retail.StatusDelivered, OrderDate: daysAgo(30)},
		{ID: 3, ProductID: 1, Status: retail.StatusDelivered, OrderDate: daysAgo(20)},
	}
	got := AnalyzePattern(retail.Consumer{TotalSpent: 300}, orders, catalog(map[int]string{1: "Books"}))
	if math.Abs(got.AverageDaysBetweenOrders-15) > 1e-9 {
		t.Fatalf("average gap = %v, want 15", got.AverageDaysBetweenOrders)
	}
	if got.AverageOrderValue != 100 {
		t.Fatalf("average order value = %v, want 100", got.AverageOrderValue)
	}
}

func TestAnalyzePattern_SingleOrderHasNoGap(t *testing.T) {
	orders := []retail.Order{{ID: 1, ProductID: 1, Status: retail.StatusPending, OrderDate: daysAgo(4)}}
	got := AnalyzePattern(retail.Consumer{TotalSpent: 42}, orders, catalog(map[int]string{1: "Toys"}))
	if got.AverageDaysBetweenOrders != 0 {
		t.Fatalf("average gap = %v, want 0", got.AverageDaysBetweenOrders)
	}
	if got.AverageOrderValue != 42 {
		t.Fatalf("average order value = %v, want 42", got.AverageOrderValue)
	}
}

func TestAnalyzePattern_PreferredCategories(t *testing.T) {
	products := catalog(map[int]string{
		1: "Books", 2: "Toys", 3: "Sports", 4: "Beauty", 5: "Automotive",
	})
	// first-seen order: Toys, Books, Sports, Beauty, Automotive
	// counts:           Toys 2, Books 3, Sports 2, Beauty 2, Automotive 1
	productIDs := []int{2, 1, 3, 4, 1, 2, 3, 99, 4, 5, 1}
	orders := make([]retail.Order, 0, len(productIDs))
	for i, pid := range productIDs {
		orders = append(orders, retail.Order{ID: i + 1, ProductID: pid, Status: retail.StatusDelivered, OrderDate: daysAgo(i)})
	}

	got := AnalyzePattern(retail.Consumer{}, orders, products)
	want := []string{"Books", "Toys", "Sports"}
	if !slices.Equal(got.PreferredCategories, want) {
		t.Fatalf("preferred = %v, want %v", got.PreferredCategories, want)
	}
}

func TestAnalyzePattern_UnknownProductsSkipped(t *testing.T) {
	orders := []retail.Order{
		{ID: 1, ProductID: 404, Status: retail.StatusDelivered, OrderDate: daysAgo(1)},
		{ID: 2, ProductID: 405, Status: retail.StatusCancelled, OrderDate: daysAgo(2)},
	}
	got := AnalyzePattern(retail.Consumer{TotalSpent: 50}, orders, catalog(nil))
	if len(got.PreferredCategories) != 0 {
		t.Fatalf("preferred = %v, want none", got.PreferredCategories)
	}
	if got.OrderStatusDistribution["delivered"] != 1 || got.OrderStatusDistribution["cancelled"] != 1 {
		t.Fatalf("status distribution = %v", got.OrderStatusDistribution)
	}
	if got.AverageOrderValue != 25 {
		t.Fatalf("average order value = %v, want 25", got.AverageOrderValue)
	}
}

func TestAnalyzePattern_StatusDistributionOnlyPresentStatuses(t *testing.T) {
	orders := []retail.Order{
		{ID: 1, ProductID: 1, Status: retail.StatusDelivered, OrderDate: daysAgo(1)},
		{ID: 2, ProductID: 1, Status: retail.StatusDelivered, OrderDate: daysAgo(2)},
		{ID: 3, ProductID: 1, Status: retail.StatusShipped, OrderDate: daysAgo(3)},
	}
	got := AnalyzePattern(retail.Consumer{}, orders, catalog(map[int]string{1: "Books"}))
	if len(got.OrderStatusDistribution) != 2 {
		t.Fatalf("status keys = %v, want delivered and shipped only", got.OrderStatusDistribution)
	}
	if got.OrderStatusDistribution["delivered"] != 2 || got.OrderStatusDistribution["shipped"] != 1 {
		t.Fatalf("status distribution = %v", got.OrderStatusDistribution)
	}
}
