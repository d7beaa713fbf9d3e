// Package store provides read-only views of the retail records the behavior
// engine consumes.
//
// A Snapshot is an immutable, indexed copy of consumers, orders and products.
// PGSource materializes snapshots from Postgres inside a single read-only
// transaction so one analysis always sees a consistent view.
package store

import (
	"slices"

	"github.com/albapepper/consumer-insights/internal/retail"
)

// Snapshot is an immutable set of retail records. It implements
// behavior.ConsumerProvider, behavior.OrderProvider and
// behavior.ProductProvider.
type Snapshot struct {
	consumers        []retail.Consumer
	consumerIndex    map[int]int
	ordersByConsumer map[int][]retail.Order
	products         map[int]retail.Product
	orderCount       int
}

// NewSnapshot indexes the given records. Consumers keep the given order;
// each consumer's orders keep their relative order. The input slices are
// copied.
func NewSnapshot(consumers []retail.Consumer, orders []retail.Order, products []retail.Product) *Snapshot {
	s := &Snapshot{
		consumers:        slices.Clone(consumers),
		consumerIndex:    make(map[int]int, len(consumers)),
		ordersByConsumer: make(map[int][]retail.Order),
		products:         make(map[int]retail.Product, len(products)),
		orderCount:       len(orders),
	}
	for i, c := range s.consumers {
		s.consumerIndex[c.ID] = i
	}
	for _, o := range orders {
		s.ordersByConsumer[o.ConsumerID] = append(s.ordersByConsumer[o.ConsumerID], o)
	}
	for _, p := range products {
		s.products[p.ID] = p
	}
	return s
}

// Consumer returns the consumer with the given id.
func (s *Snapshot) Consumer(id int) (retail.Consumer, bool) {
	i, ok := s.consumerIndex[id]
	if !ok {
		return retail.Consumer{}, false
	}
	return s.consumers[i], true
}

// Consumers returns all consumers in snapshot order.
func (s *Snapshot) Consumers() []retail.Consumer {
	return slices.Clone(s.consumers)
}

// OrdersForConsumer returns the orders placed by a consumer.
func (s *Snapshot) OrdersForConsumer(consumerID int) []retail.Order {
	return slices.Clone(s.ordersByConsumer[consumerID])
}

// Product returns the product with the given id.
func (s *Snapshot) Product(id int) (retail.Product, bool) {
	p, ok := s.products[id]
	return p, ok
}

// Counts returns the number of consumers, orders and products held.
func (s *Snapshot) Counts() (consumers, orders, products int) {
	return len(s.consumers), s.orderCount, len(s.products)
}
