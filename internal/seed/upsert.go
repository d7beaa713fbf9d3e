package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/albapepper/consumer-insights/internal/config"
	"github.com/albapepper/consumer-insights/internal/retail"
	"github.com/albapepper/consumer-insights/internal/store"
)

// TxBeginner is satisfied by *pgxpool.Pool and *pgx.Conn.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Import validates ds and writes it in a single transaction: products,
// consumers, then orders, followed by an aggregate reconciliation so the
// stored consumer totals match the imported orders.
func Import(ctx context.Context, db TxBeginner, ds Dataset, logger *slog.Logger) (SeedResult, error) {
	var result SeedResult

	warnings, err := ds.Validate()
	if err != nil {
		return result, err
	}
	for _, w := range warnings {
		result.AddWarningf("%s", w)
	}

	start := time.Now()
	tx, err := db.Begin(ctx)
	if err != nil {
		return result, fmt.Errorf("begin seed tx: %w", err)
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	batch := &pgx.Batch{}
	for _, p := range ds.Products {
		queueProduct(batch, p)
	}
	for _, c := range ds.Consumers {
		queueConsumer(batch, c)
	}
	for _, o := range ds.Orders {
		queueOrder(batch, o)
	}

	logger.Info("Upserting dataset",
		"products", len(ds.Products),
		"consumers", len(ds.Consumers),
		"orders", len(ds.Orders))
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return result, fmt.Errorf("upsert dataset: %w", err)
	}
	result.ProductsUpserted = len(ds.Products)
	result.ConsumersUpserted = len(ds.Consumers)
	result.OrdersUpserted = len(ds.Orders)

	rec, err := store.ReconcileConsumerStats(ctx, tx)
	if err != nil {
		return result, err
	}
	result.ConsumersReconciled = rec.ConsumersUpdated

	if err := tx.Commit(ctx); err != nil {
		return result, fmt.Errorf("commit seed tx: %w", err)
	}
	logger.Info("Seed complete", "summary", result.Summary(), "duration", time.Since(start))
	return result, nil
}

func queueProduct(b *pgx.Batch, p retail.Product) {
	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	b.Queue(`
		INSERT INTO `+config.ProductsTable+` (id, name, description, price, category, stock, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			price = EXCLUDED.price,
			category = EXCLUDED.category,
			stock = EXCLUDED.stock,
			updated_at = NOW()`,
		p.ID, p.Name, nilEmpty(p.Description), p.Price, p.Category, p.Stock, createdAt,
	)
}

func queueConsumer(b *pgx.Batch, c retail.Consumer) {
	b.Queue(`
		INSERT INTO `+config.ConsumersTable+` (
			id, name, email, phone, address, registered_at,
			total_orders, total_spent, last_order_date
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			phone = EXCLUDED.phone,
			address = EXCLUDED.address,
			registered_at = EXCLUDED.registered_at,
			updated_at = NOW()`,
		c.ID, c.Name, nilEmpty(c.Email), nilEmpty(c.Phone), nilEmpty(c.Address),
		c.RegisteredAt, c.TotalOrders, c.TotalSpent, c.LastOrderDate,
	)
}

func queueOrder(b *pgx.Batch, o retail.Order) {
	b.Queue(`
		INSERT INTO `+config.OrdersTable+` (
			id, consumer_id, product_id, quantity, total_price,
			status, order_date, delivery_date
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (id) DO UPDATE SET
			consumer_id = EXCLUDED.consumer_id,
			product_id = EXCLUDED.product_id,
			quantity = EXCLUDED.quantity,
			total_price = EXCLUDED.total_price,
			status = EXCLUDED.status,
			order_date = EXCLUDED.order_date,
			delivery_date = EXCLUDED.delivery_date,
			updated_at = NOW()`,
		o.ID, o.ConsumerID, o.ProductID, o.Quantity, o.TotalPrice,
		string(o.Status), o.OrderDate, o.DeliveryDate,
	)
}

// nilEmpty returns nil for empty strings (maps to SQL NULL).
func nilEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
