// Package db provides a pgxpool-based connection pool with prepared statement
// registration, schema migration and health checking.
package db

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/albapepper/consumer-insights/internal/config"
)

//go:embed schema.sql
var schemaSQL string

// Pool wraps pgxpool.Pool with application-specific helpers.
type Pool struct {
	*pgxpool.Pool
}

// New creates and validates a new connection pool.
func New(ctx context.Context, cfg *config.Config) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MinConns = int32(cfg.DBPoolMinConns)
	poolCfg.MaxConns = int32(cfg.DBPoolMaxConns)
	poolCfg.MaxConnLifetime = cfg.DBPoolMaxLife
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	// Register prepared statements on every new connection.
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return registerPreparedStatements(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	// Verify connectivity
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// HealthCheck runs a trivial query to verify the database is reachable.
func (p *Pool) HealthCheck(ctx context.Context) error {
	var n int
	return p.QueryRow(ctx, "health_check").Scan(&n)
}

// Migrate applies the embedded schema. Every statement is idempotent, so it
// is safe to run on each deploy.
//
// Connections opened before the tables existed fail to prepare statements,
// so callers on a fresh database should run Migrate through MigrateURL.
func Migrate(ctx context.Context, conn *pgx.Conn) error {
	if _, err := conn.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// MigrateURL opens a plain connection (no prepared statements) and applies
// the schema.
func MigrateURL(ctx context.Context, databaseURL string) error {
	conn, err := pgx.Connect(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close(context.Background())
	return Migrate(ctx, conn)
}

// Column lists; the store package scans rows in exactly this order.
const (
	consumerColumns = "id, name, COALESCE(email, ''), COALESCE(phone, ''), COALESCE(address, ''), registered_at, total_orders, total_spent, last_order_date"
	orderColumns    = "id, consumer_id, product_id, quantity, total_price, status, order_date, delivery_date"
	productColumns  = "id, name, COALESCE(description, ''), price, category, stock, created_at"
)

// registerPreparedStatements registers all statements the API and CLI use.
// Prepared statements eliminate parse overhead on every request.
func registerPreparedStatements(ctx context.Context, conn *pgx.Conn) error {
	stmts := map[string]string{
		// Health
		"health_check": "SELECT 1",

		// Consumers
		"list_consumers": "SELECT " + consumerColumns + " FROM consumers ORDER BY id",
		"consumer_by_id": "SELECT " + consumerColumns + " FROM consumers WHERE id = $1",

		// Orders
		"list_orders":         "SELECT " + orderColumns + " FROM orders ORDER BY order_date, id",
		"orders_for_consumer": "SELECT " + orderColumns + " FROM orders WHERE consumer_id = $1 ORDER BY order_date, id",

		// Products
		"list_products": "SELECT " + productColumns + " FROM products ORDER BY id",
		"products_for_consumer": "SELECT " + productColumns + " FROM products WHERE id IN " +
			"(SELECT DISTINCT product_id FROM orders WHERE consumer_id = $1) ORDER BY id",
	}

	for name, sql := range stmts {
		if _, err := conn.Prepare(ctx, name, sql); err != nil {
			return fmt.Errorf("prepare %q: %w", name, err)
		}
	}
	return nil
}
