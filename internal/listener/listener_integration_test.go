//go:build integration

package listener

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/albapepper/consumer-insights/internal/db"
	"github.com/albapepper/consumer-insights/internal/testinfra"
)

type signalPurger struct{ calls atomic.Int32 }

func (p *signalPurger) Purge(context.Context) error {
	p.calls.Add(1)
	return nil
}

func TestListener_PurgesOnWrite_Integration(t *testing.T) {
	url := testinfra.Postgres(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := db.MigrateURL(ctx, url); err != nil {
		t.Fatalf("MigrateURL: %v", err)
	}

	p := &signalPurger{}
	done := make(chan error, 1)
	go func() { done <- Start(ctx, url, p, quiet) }()

	// the connect purge marks the listener as subscribed
	waitFor(t, func() bool { return p.calls.Load() >= 1 })
	base := p.calls.Load()

	conn, err := pgx.Connect(ctx, url)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close(context.Background())
	if _, err := conn.Exec(ctx, `INSERT INTO products (id, name, price, category) VALUES (1, 'Mug', 9.5, 'Home')`); err != nil {
		t.Fatalf("insert: %v", err)
	}

	waitFor(t, func() bool { return p.calls.Load() > base })

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Start returned %v", err)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatal("condition not met within 10s")
}
