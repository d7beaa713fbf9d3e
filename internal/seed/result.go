// Package seed imports retail datasets into Postgres.
package seed

import "fmt"

// SeedResult tracks counts and warnings from a seeding operation.
type SeedResult struct {
	ConsumersUpserted   int
	ProductsUpserted    int
	OrdersUpserted      int
	ConsumersReconciled int64
	Warnings            []string
}

// Add merges another SeedResult into this one.
func (r *SeedResult) Add(other SeedResult) {
	r.ConsumersUpserted += other.ConsumersUpserted
	r.ProductsUpserted += other.ProductsUpserted
	r.OrdersUpserted += other.OrdersUpserted
	r.ConsumersReconciled += other.ConsumersReconciled
	r.Warnings = append(r.Warnings, other.Warnings...)
}

// AddWarningf records a formatted warning.
func (r *SeedResult) AddWarningf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Summary returns a human-readable summary of the seed operation.
func (r *SeedResult) Summary() string {
	return fmt.Sprintf(
		"consumers=%d products=%d orders=%d reconciled=%d warnings=%d",
		r.ConsumersUpserted, r.ProductsUpserted, r.OrdersUpserted,
		r.ConsumersReconciled, len(r.Warnings),
	)
}
