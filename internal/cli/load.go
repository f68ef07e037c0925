//-------------------------------------------------------------------------
//
// pgEdge Retail Data Generator
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package cli

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-retailgen/internal/db"
	"github.com/pgEdge/pgedge-retailgen/internal/logging"
)

var loadSource string

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load generated CSV files into PostgreSQL",
	Long: `Load each generated CSV file into a table of the raw schema. Every
table is dropped and recreated with one TEXT column per CSV column, then
filled with COPY. Typing happens in the warehouse clean layer.`,
	RunE: runLoad,
}

func init() {
	loadCmd.Flags().StringVar(&loadSource, "source", "",
		"directory holding the CSV files (default: the generate output directory)")
}

// connect validates the connection settings and opens a pool.
func connect(ctx context.Context) (*pgxpool.Pool, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	pool, err := db.Connect(ctx, cfg.Connection)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return pool, nil
}

func runLoad(cmd *cobra.Command, args []string) error {
	source := cfg.Generate.Output
	if loadSource != "" {
		source = loadSource
	}

	ctx, cancel := signalContext()
	defer cancel()

	pool, err := connect(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	logging.Info().
		Str("source", source).
		Str("schema", db.DefaultSchema).
		Msg("Loading data into PostgreSQL")

	results, err := db.LoadDir(ctx, pool, db.DefaultSchema, source)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		return fmt.Errorf("no CSV files found in %s", source)
	}

	for _, r := range results {
		cmd.Printf("  %s.%-10s %d rows\n", db.DefaultSchema, r.Table, r.Rows)
	}
	return nil
}
