package listener

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/albapepper/consumer-insights/internal/metrics"
)

type countingPurger struct {
	calls int
	err   error
}

func (p *countingPurger) Purge(context.Context) error {
	p.calls++
	return p.err
}

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestHandleNotification(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		table   string
	}{
		{"orders insert", `{"table":"orders","op":"INSERT","ts":1718000000}`, "orders"},
		{"products truncate", `{"table":"products","op":"TRUNCATE","ts":1718000000}`, "products"},
		{"garbage", `not json`, "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &countingPurger{}
			c := metrics.ChangeEvents.WithLabelValues(tt.table)
			before := testutil.ToFloat64(c)

			handleNotification(context.Background(), tt.payload, p, quiet)

			if p.calls != 1 {
				t.Fatalf("purge calls = %d, want 1", p.calls)
			}
			if got := testutil.ToFloat64(c); got != before+1 {
				t.Fatalf("%s events = %v, want %v", tt.table, got, before+1)
			}
		})
	}
}

func TestHandleNotification_PurgeErrorIsSwallowed(t *testing.T) {
	p := &countingPurger{err: errors.New("redis down")}
	handleNotification(context.Background(), `{"table":"orders"}`, p, quiet)
	if p.calls != 1 {
		t.Fatalf("purge calls = %d", p.calls)
	}
}

func TestNextBackoff(t *testing.T) {
	got := []time.Duration{reconnectBackoff}
	for range 4 {
		got = append(got, nextBackoff(got[len(got)-1]))
	}
	want := []time.Duration{5 * time.Second, 10 * time.Second, 20 * time.Second, 30 * time.Second, 30 * time.Second}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("backoff sequence = %v, want %v", got, want)
		}
	}
}

func TestStart_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	done := make(chan error, 1)
	go func() { done <- Start(ctx, "postgres://127.0.0.1:1/none", &countingPurger{}, quiet) }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Start returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Start did not return after cancel")
	}
}
