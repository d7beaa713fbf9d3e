// Package listener provides a Postgres LISTEN/NOTIFY consumer that keeps the
// response cache honest. It holds a dedicated pgx connection (not from the
// pool) listening on the `retail_changed` channel.
//
// Statement-level triggers on consumers, orders and products fire pg_notify
// after every write; each event purges the response cache so the next
// request recomputes from fresh data.
package listener

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"

	"github.com/albapepper/consumer-insights/internal/config"
	"github.com/albapepper/consumer-insights/internal/metrics"
)

const (
	reconnectBackoff = 5 * time.Second
	maxReconnect     = 30 * time.Second
)

// ChangeEvent is the JSON payload from pg_notify('retail_changed', ...).
type ChangeEvent struct {
	Table     string `json:"table"`
	Op        string `json:"op"`
	Timestamp int64  `json:"ts"`
}

// Purger drops cached responses. Satisfied by every cache.Store.
type Purger interface {
	Purge(ctx context.Context) error
}

// Start opens a dedicated connection and listens on the change channel. It
// reconnects automatically on connection loss. Blocks until ctx is
// cancelled, then returns nil.
func Start(ctx context.Context, dbURL string, purger Purger, logger *slog.Logger) error {
	backoff := reconnectBackoff

	for {
		err := listenLoop(ctx, dbURL, purger, logger)
		if ctx.Err() != nil {
			logger.Info("Change listener stopped (context cancelled)")
			return nil
		}

		logger.Error("Change listener disconnected, reconnecting...",
			"error", err, "backoff", backoff)

		select {
		case <-time.After(backoff):
			backoff = nextBackoff(backoff)
		case <-ctx.Done():
			return nil
		}
	}
}

func nextBackoff(current time.Duration) time.Duration {
	return min(current*2, maxReconnect)
}

// listenLoop runs a single listen session. Returns when the connection drops
// or the context is cancelled.
func listenLoop(ctx context.Context, dbURL string, purger Purger, logger *slog.Logger) error {
	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close(context.Background())

	_, err = conn.Exec(ctx, "LISTEN "+config.ChangeChannel)
	if err != nil {
		return fmt.Errorf("LISTEN %s: %w", config.ChangeChannel, err)
	}
	logger.Info("Change listener connected", "channel", config.ChangeChannel)

	// Writes during the disconnect were missed.
	if err := purger.Purge(ctx); err != nil {
		logger.Warn("Cache purge after reconnect failed", "error", err)
	}

	for {
		notification, err := conn.WaitForNotification(ctx)
		if err != nil {
			return fmt.Errorf("wait for notification: %w", err)
		}
		handleNotification(ctx, notification.Payload, purger, logger)
	}
}

// handleNotification records the event and purges the cache. Unparseable
// payloads still purge: a write happened even if its details are unknown.
func handleNotification(ctx context.Context, payload string, purger Purger, logger *slog.Logger) {
	var event ChangeEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		logger.Warn("Failed to parse change event", "payload", payload, "error", err)
		event.Table = "unknown"
	}
	metrics.ChangeEvents.WithLabelValues(event.Table).Inc()

	logger.Debug("Change event received", "table", event.Table, "op", event.Op)

	if err := purger.Purge(ctx); err != nil {
		logger.Warn("Cache purge failed", "table", event.Table, "error", err)
	}
}
