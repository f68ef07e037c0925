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
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-retailgen/internal/config"
	"github.com/pgEdge/pgedge-retailgen/internal/datagen"
	"github.com/pgEdge/pgedge-retailgen/internal/logging"
	"github.com/pgEdge/pgedge-retailgen/internal/retail"
)

var (
	genStartDate string
	genDays      int
	genOutput    string
	genSeed      uint64
	genProducts  int
	genStores    int
	genSuppliers int
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the synthetic retail dataset as CSV files",
	Long: `Generate products, stores, suppliers, sales, inventory and shipments
for a date range and write one CSV file per table to the output directory.

A day count of 0 generates a single day; N generates N+1 days. The same
seed and parameters always produce byte-identical files.`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&genStartDate, "start-date", "",
		"first simulated day (YYYY-MM-DD, default: 2024-07-01)")
	generateCmd.Flags().IntVar(&genDays, "days", 0,
		"number of days after the start date (default: 180)")
	generateCmd.Flags().StringVar(&genOutput, "output", "",
		"output directory (default: data/synthetic)")
	generateCmd.Flags().Uint64Var(&genSeed, "seed", 0,
		"random seed (default: 42)")
	generateCmd.Flags().IntVar(&genProducts, "products", 0,
		"number of products (default: 200)")
	generateCmd.Flags().IntVar(&genStores, "stores", 0,
		"number of stores (default: 20)")
	generateCmd.Flags().IntVar(&genSuppliers, "suppliers", 0,
		"number of suppliers (default: 30)")
}

// applyGenerateFlags copies explicitly set flags over the loaded config.
func applyGenerateFlags(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("start-date") {
		c.Generate.StartDate = genStartDate
	}
	if flags.Changed("days") {
		c.Generate.Days = genDays
	}
	if flags.Changed("output") {
		c.Generate.Output = genOutput
	}
	if flags.Changed("seed") {
		c.Generate.Seed = genSeed
	}
	if flags.Changed("products") {
		c.Generate.Products = genProducts
	}
	if flags.Changed("stores") {
		c.Generate.Stores = genStores
	}
	if flags.Changed("suppliers") {
		c.Generate.Suppliers = genSuppliers
	}
}

// retailConfig converts validated generate settings into a generator config.
func retailConfig(g config.GenerateConfig) (retail.Config, error) {
	start, err := retail.ParseDate(g.StartDate)
	if err != nil {
		return retail.Config{}, err
	}
	return retail.Config{
		StartDate: start,
		Days:      g.Days,
		Products:  g.Products,
		Stores:    g.Stores,
		Suppliers: g.Suppliers,
	}, nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	applyGenerateFlags(cmd, cfg)

	if err := cfg.ValidateGenerate(); err != nil {
		return err
	}

	retailCfg, err := retailConfig(cfg.Generate)
	if err != nil {
		return err
	}

	gen, err := retail.NewGenerator(retailCfg, datagen.NewFakerWithSeed(cfg.Generate.Seed))
	if err != nil {
		return err
	}

	logging.Info().
		Str("start_date", retail.FormatDate(gen.StartDate())).
		Str("end_date", retail.FormatDate(gen.EndDate())).
		Uint64("seed", cfg.Generate.Seed).
		Str("output", cfg.Generate.Output).
		Msg("Generating synthetic retail data")

	start := time.Now()
	ds, err := gen.Generate()
	if err != nil {
		return fmt.Errorf("failed to generate data: %w", err)
	}

	paths, err := ds.WriteDir(cfg.Generate.Output)
	if err != nil {
		return err
	}
	for _, p := range paths {
		logging.Debug().Str("path", p).Msg("Wrote table")
	}

	logging.Info().
		Dur("elapsed", time.Since(start)).
		Int("files", len(paths)).
		Msg("Generation complete")

	printSummary(cmd.OutOrStdout(), ds.Summary(), cfg.Generate.Output)
	return nil
}

// printSummary writes the dataset summary and data quality report.
func printSummary(w io.Writer, s retail.Summary, output string) {
	fmt.Fprintln(w, "Synthetic retail data generated")
	fmt.Fprintf(w, "  Output:              %s\n", output)
	fmt.Fprintf(w, "  Products:            %d\n", s.Products)
	fmt.Fprintf(w, "  Stores:              %d\n", s.Stores)
	fmt.Fprintf(w, "  Suppliers:           %d\n", s.Suppliers)
	fmt.Fprintf(w, "  Sales:               %d\n", s.Sales)
	fmt.Fprintf(w, "  Inventory snapshots: %d\n", s.Inventory)
	fmt.Fprintf(w, "  Shipments:           %d\n", s.Shipments)
	fmt.Fprintf(w, "  Total revenue:       %s\n", s.TotalRevenue.StringFixed(2))
	fmt.Fprintf(w, "  Avg transaction:     %s\n", s.AverageTransaction.StringFixed(2))
	if s.Sales > 0 {
		fmt.Fprintf(w, "  Sale dates:          %s to %s\n",
			retail.FormatDate(s.FirstSaleDate), retail.FormatDate(s.LastSaleDate))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Data quality issues (intentional)")
	fmt.Fprintf(w, "  Null discount amounts: %d (%.2f%%)\n",
		s.NullDiscounts, retail.Percent(s.NullDiscounts, s.Sales))
	fmt.Fprintf(w, "  Negative inventory:    %d (%.2f%%)\n",
		s.NegativeInventory, retail.Percent(s.NegativeInventory, s.Inventory))
	fmt.Fprintf(w, "  Null store regions:    %d\n", s.NullRegions)
	fmt.Fprintf(w, "  Duplicate shipments:   %d (%.2f%%)\n",
		s.DuplicateShipments, retail.Percent(s.DuplicateShipments, s.Shipments))
}
