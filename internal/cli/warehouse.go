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

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-retailgen/internal/logging"
	"github.com/pgEdge/pgedge-retailgen/internal/warehouse"
)

var warehouseCmd = &cobra.Command{
	Use:   "warehouse",
	Short: "Build and test the clean and fact warehouse layers",
}

var warehouseBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the clean and fact tables from the raw schema",
	Long: `Rebuild every clean and fact table from the raw tables written by
'load'. A failing model is logged and the build continues; the command
fails at the end if any model failed.`,
	RunE: runWarehouseBuild,
}

var warehouseTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Run the data quality tests against the warehouse",
	RunE:  runWarehouseTest,
}

func init() {
	warehouseCmd.AddCommand(warehouseBuildCmd)
	warehouseCmd.AddCommand(warehouseTestCmd)
}

func runWarehouseBuild(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	pool, err := connect(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	results, err := warehouse.Build(ctx, pool)
	for _, r := range results {
		if r.Err != nil {
			cmd.Printf("  %-35s FAILED: %v\n", r.Model.Schema+"."+r.Model.Table, r.Err)
			continue
		}
		cmd.Printf("  %-35s %d rows\n", r.Model.Schema+"."+r.Model.Table, r.Rows)
	}
	return err
}

func runWarehouseTest(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	pool, err := connect(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	failures, err := warehouse.RunTests(ctx, pool)
	if err != nil {
		return err
	}

	if len(failures) == 0 {
		logging.Info().Msg("All data quality tests passed")
		cmd.Println("All data quality tests passed")
		return nil
	}

	cmd.Println("Failed data quality tests:")
	for _, f := range failures {
		cmd.Printf("  %-40s %d failing rows\n", f.Name, f.Failures)
	}
	return fmt.Errorf("%d data quality tests failed", len(failures))
}
