package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/albapepper/consumer-insights/internal/retail"
)

// Source produces snapshots for the behavior engine.
type Source interface {
	// Snapshot returns every consumer, order and product.
	Snapshot(ctx context.Context) (*Snapshot, error)
	// ConsumerSnapshot returns only the records needed to analyze one
	// consumer. The snapshot holds no consumers when the id is unknown.
	ConsumerSnapshot(ctx context.Context, consumerID int) (*Snapshot, error)
}

// PGSource loads snapshots from Postgres using the statements prepared by
// the db package.
type PGSource struct {
	pool *pgxpool.Pool
}

// NewPGSource creates a Postgres-backed Source.
func NewPGSource(pool *pgxpool.Pool) *PGSource {
	return &PGSource{pool: pool}
}

// snapshotTxOptions gives every load a stable read-only view.
var snapshotTxOptions = pgx.TxOptions{
	IsoLevel:   pgx.RepeatableRead,
	AccessMode: pgx.ReadOnly,
}

// Snapshot loads all retail records.
func (s *PGSource) Snapshot(ctx context.Context) (*Snapshot, error) {
	var snap *Snapshot
	err := s.readTx(ctx, func(tx pgx.Tx) error {
		consumers, err := queryConsumers(ctx, tx, "list_consumers")
		if err != nil {
			return err
		}
		orders, err := queryOrders(ctx, tx, "list_orders")
		if err != nil {
			return err
		}
		products, err := queryProducts(ctx, tx, "list_products")
		if err != nil {
			return err
		}
		snap = NewSnapshot(consumers, orders, products)
		return nil
	})
	return snap, err
}

// ConsumerSnapshot loads one consumer with its orders and the products those
// orders reference.
func (s *PGSource) ConsumerSnapshot(ctx context.Context, consumerID int) (*Snapshot, error) {
	var snap *Snapshot
	err := s.readTx(ctx, func(tx pgx.Tx) error {
		consumers, err := queryConsumers(ctx, tx, "consumer_by_id", consumerID)
		if err != nil {
			return err
		}
		if len(consumers) == 0 {
			snap = NewSnapshot(nil, nil, nil)
			return nil
		}
		orders, err := queryOrders(ctx, tx, "orders_for_consumer", consumerID)
		if err != nil {
			return err
		}
		products, err := queryProducts(ctx, tx, "products_for_consumer", consumerID)
		if err != nil {
			return err
		}
		snap = NewSnapshot(consumers, orders, products)
		return nil
	})
	return snap, err
}

func (s *PGSource) readTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.pool.BeginTx(ctx, snapshotTxOptions)
	if err != nil {
		return fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit snapshot tx: %w", err)
	}
	return nil
}

// --------------------------------------------------------------------------
// Scanners
// --------------------------------------------------------------------------

func queryConsumers(ctx context.Context, tx pgx.Tx, stmt string, args ...any) ([]retail.Consumer, error) {
	rows, err := tx.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query consumers: %w", err)
	}
	defer rows.Close()

	var consumers []retail.Consumer
	for rows.Next() {
		var c retail.Consumer
		if err := rows.Scan(
			&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address,
			&c.RegisteredAt, &c.TotalOrders, &c.TotalSpent, &c.LastOrderDate,
		); err != nil {
			return nil, fmt.Errorf("scan consumer: %w", err)
		}
		consumers = append(consumers, c)
	}
	return consumers, rows.Err()
}

func queryOrders(ctx context.Context, tx pgx.Tx, stmt string, args ...any) ([]retail.Order, error) {
	rows, err := tx.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []retail.Order
	for rows.Next() {
		var (
			o      retail.Order
			status string
		)
		if err := rows.Scan(
			&o.ID, &o.ConsumerID, &o.ProductID, &o.Quantity,
			&o.TotalPrice, &status, &o.OrderDate, &o.DeliveryDate,
		); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		o.Status = retail.OrderStatus(status)
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func queryProducts(ctx context.Context, tx pgx.Tx, stmt string, args ...any) ([]retail.Product, error) {
	rows, err := tx.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []retail.Product
	for rows.Next() {
		var p retail.Product
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Description, &p.Price,
			&p.Category, &p.Stock, &p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// --------------------------------------------------------------------------
// Aggregate reconciliation
// --------------------------------------------------------------------------

// Execer is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// ReconcileResult reports what ReconcileConsumerStats changed.
type ReconcileResult struct {
	ConsumersUpdated int64
	Duration         time.Duration
}

// ReconcileConsumerStats recomputes each consumer's stored total_orders,
// total_spent and last_order_date from the orders table. Only rows whose
// aggregates drifted are written.
func ReconcileConsumerStats(ctx context.Context, db Execer) (ReconcileResult, error) {
	start := time.Now()
	tag, err := db.Exec(ctx, `
		UPDATE consumers c
		SET total_orders    = COALESCE(s.order_count, 0),
		    total_spent     = COALESCE(s.spent, 0),
		    last_order_date = s.last_order,
		    updated_at      = NOW()
		FROM consumers base
		LEFT JOIN (
			SELECT consumer_id,
			       COUNT(*)         AS order_count,
			       SUM(total_price) AS spent,
			       MAX(order_date)  AS last_order
			FROM orders
			GROUP BY consumer_id
		) s ON s.consumer_id = base.id
		WHERE c.id = base.id
		  AND (c.total_orders    IS DISTINCT FROM COALESCE(s.order_count, 0)
		    OR c.total_spent     IS DISTINCT FROM COALESCE(s.spent, 0)
		    OR c.last_order_date IS DISTINCT FROM s.last_order)`)
	if err != nil {
		return ReconcileResult{}, fmt.Errorf("reconcile consumer stats: %w", err)
	}
	return ReconcileResult{
		ConsumersUpdated: tag.RowsAffected(),
		Duration:         time.Since(start),
	}, nil
}
