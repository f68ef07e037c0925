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
	"encoding/json"
	"time"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-retailgen/internal/config"
	"github.com/pgEdge/pgedge-retailgen/internal/ingest"
	"github.com/pgEdge/pgedge-retailgen/internal/retail"
)

var (
	triggerDate string
	triggerSeed uint64
)

var triggerCmd = &cobra.Command{
	Use:   "trigger",
	Short: "Generate one day of facts from the dimensions stored in S3",
	Long: `Read the products, stores and suppliers tables from the bucket,
simulate a single day, and upload raw/<table>/dt=<date>/<table>.csv for
sales, inventory and shipments. Prints a JSON result.

Intended to be run once a day by a scheduler; the date defaults to
yesterday (UTC).`,
	RunE: runTrigger,
}

func init() {
	addS3Flags(triggerCmd)
	triggerCmd.Flags().StringVar(&triggerDate, "date", "",
		"day to generate (YYYY-MM-DD, default: yesterday UTC)")
	triggerCmd.Flags().Uint64Var(&triggerSeed, "seed", 0,
		"random seed (default: 42)")
}

// triggerConfig builds the trigger parameters from the validated config.
func triggerConfig(c *config.Config, now time.Time) (ingest.TriggerConfig, error) {
	tc := ingest.TriggerConfig{
		Date:         ingest.Yesterday(now),
		Seed:         c.Generate.Seed,
		ProductsKey:  c.Trigger.ProductsKey,
		StoresKey:    c.Trigger.StoresKey,
		SuppliersKey: c.Trigger.SuppliersKey,
	}
	if c.Trigger.Date != "" {
		d, err := retail.ParseDate(c.Trigger.Date)
		if err != nil {
			return tc, err
		}
		tc.Date = d
	}
	return tc, nil
}

func runTrigger(cmd *cobra.Command, args []string) error {
	applyS3Flags(cmd, cfg)
	if cmd.Flags().Changed("date") {
		cfg.Trigger.Date = triggerDate
	}
	if cmd.Flags().Changed("seed") {
		cfg.Generate.Seed = triggerSeed
	}

	if err := cfg.ValidateTrigger(); err != nil {
		return err
	}

	tc, err := triggerConfig(cfg, time.Now())
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}

	result, err := ingest.RunTrigger(ctx, store, tc)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
