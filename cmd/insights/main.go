// Command insights is the Consumer Insights operations CLI.
//
// Usage:
//
//	insights migrate
//	insights seed --file data/retail.json
//	insights reconcile
//	insights analyze consumer --id 42
//	insights analyze all
//	insights summary
//	insights churn-risk
//	insights high-value
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/goccy/go-json"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/albapepper/consumer-insights/internal/behavior"
	"github.com/albapepper/consumer-insights/internal/config"
	"github.com/albapepper/consumer-insights/internal/db"
	"github.com/albapepper/consumer-insights/internal/maintenance"
	"github.com/albapepper/consumer-insights/internal/seed"
	"github.com/albapepper/consumer-insights/internal/store"
)

var logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:          "insights",
		Short:        "Consumer Insights operations CLI",
		SilenceUsage: true,
	}
	root.SetOut(out)

	root.AddCommand(migrateCmd())
	root.AddCommand(seedCmd())
	root.AddCommand(reconcileCmd())
	root.AddCommand(analyzeCmd())
	root.AddCommand(reportCmd("summary", "Population reorder summary", func(e *behavior.Engine) any {
		return e.Summarize()
	}))
	root.AddCommand(reportCmd("churn-risk", "Consumers at high churn risk", func(e *behavior.Engine) any {
		return e.ChurnRiskConsumers()
	}))
	root.AddCommand(reportCmd("high-value", "High value reorder candidates", func(e *behavior.Engine) any {
		return e.HighValueReorderCandidates()
	}))
	return root
}

// --------------------------------------------------------------------------
// schema and data commands
// --------------------------------------------------------------------------

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema (idempotent)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			start := time.Now()
			if err := db.MigrateURL(ctx, cfg.DatabaseURL); err != nil {
				return err
			}
			logger.Info("Schema applied", "duration", time.Since(start).Round(time.Millisecond))
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	var files []string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Import retail datasets from JSON files",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(files) == 0 {
				return errors.New("--file is required")
			}
			return runWithDB(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				var total seed.SeedResult
				start := time.Now()
				for _, path := range files {
					ds, err := seed.LoadFile(path)
					if err != nil {
						return err
					}
					result, err := seed.Import(ctx, pool.Pool, ds, logger)
					if err != nil {
						return fmt.Errorf("%s: %w", path, err)
					}
					logger.Info("Dataset imported", "file", path, "summary", result.Summary())
					total.Add(result)
				}
				for _, w := range total.Warnings {
					logger.Warn("seed warning", "warning", w)
				}
				logger.Info("Seed finished",
					"files", len(files),
					"duration", time.Since(start).Round(time.Millisecond),
					"summary", total.Summary())
				return nil
			})
		},
	}
	cmd.Flags().StringArrayVar(&files, "file", nil, "Dataset JSON file (repeatable)")
	return cmd
}

func reconcileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Recompute stored consumer aggregates from orders",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithDB(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				// The running API purges its cache through the change listener.
				res, err := maintenance.Reconcile(ctx, pool.Pool, nil, logger)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"consumers_updated": res.ConsumersUpdated,
					"duration_ms":       res.Duration.Milliseconds(),
				})
			})
		},
	}
}

// --------------------------------------------------------------------------
// analysis commands
// --------------------------------------------------------------------------

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run behavior analysis",
	}
	cmd.AddCommand(analyzeConsumerCmd())
	cmd.AddCommand(reportCmd("all", "Analyze every consumer", func(e *behavior.Engine) any {
		return e.AnalyzeAllConsumers()
	}))
	return cmd
}

func analyzeConsumerCmd() *cobra.Command {
	var consumerID int
	cmd := &cobra.Command{
		Use:   "consumer",
		Short: "Analyze a single consumer by ID",
		RunE: func(cmd *cobra.Command, args []string) error {
			if consumerID < 1 {
				return errors.New("--id must be a positive consumer ID")
			}
			return runWithDB(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				snap, err := store.NewPGSource(pool.Pool).ConsumerSnapshot(ctx, consumerID)
				if err != nil {
					return err
				}
				score, ok := newEngine(snap).AnalyzeConsumer(consumerID)
				if !ok {
					return fmt.Errorf("consumer %d not found", consumerID)
				}
				return printJSON(cmd.OutOrStdout(), score)
			})
		},
	}
	cmd.Flags().IntVar(&consumerID, "id", 0, "Consumer ID to analyze")
	return cmd
}

// reportCmd builds a command that runs fn over a full snapshot and prints
// its result as JSON.
func reportCmd(use, short string, fn func(e *behavior.Engine) any) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithDB(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				start := time.Now()
				snap, err := store.NewPGSource(pool.Pool).Snapshot(ctx)
				if err != nil {
					return err
				}
				result := fn(newEngine(snap))
				consumers, orders, products := snap.Counts()
				logger.Info("Analysis complete",
					"report", use,
					"consumers", consumers, "orders", orders, "products", products,
					"duration", time.Since(start).Round(time.Millisecond))
				return printJSON(cmd.OutOrStdout(), result)
			})
		},
	}
}

func newEngine(snap *store.Snapshot) *behavior.Engine {
	return behavior.NewEngine(snap, snap, snap)
}

// --------------------------------------------------------------------------
// Shared setup
// --------------------------------------------------------------------------

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// runWithDB handles config loading, DB connection, and context cancellation.
func runWithDB(fn func(ctx context.Context, cfg *config.Config, pool *db.Pool) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	pool, err := db.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	return fn(ctx, cfg, pool)
}
