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
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-retailgen/internal/db"
	"github.com/pgEdge/pgedge-retailgen/internal/warehouse"
)

var reportCmd = &cobra.Command{
	Use:   "report [name...]",
	Short: "Print business reports from the fact layer",
	Long: `Print one or more reports from the fact tables built by
'warehouse build'. With no arguments every report is printed.

Available reports:
` + reportList(),
	RunE: runReport,
}

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "Show row counts of the raw, clean and fact tables",
	RunE:  runTables,
}

func reportList() string {
	var b strings.Builder
	for _, r := range warehouse.Reports {
		fmt.Fprintf(&b, "  %-12s %s\n", r.Name, r.Title)
	}
	return b.String()
}

// selectReports resolves report names; no names selects every report.
func selectReports(names []string) ([]warehouse.Report, error) {
	if len(names) == 0 {
		return warehouse.Reports, nil
	}
	reports := make([]warehouse.Report, 0, len(names))
	for _, name := range names {
		r, ok := warehouse.LookupReport(name)
		if !ok {
			return nil, fmt.Errorf("unknown report: %s", name)
		}
		reports = append(reports, r)
	}
	return reports, nil
}

func runReport(cmd *cobra.Command, args []string) error {
	reports, err := selectReports(args)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	pool, err := connect(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	out := cmd.OutOrStdout()
	for i, r := range reports {
		rs, err := r.Run(ctx, pool)
		if err != nil {
			return err
		}
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintln(out, r.Title)
		fmt.Fprintln(out, strings.Repeat("=", len(r.Title)))
		if err := rs.Print(out); err != nil {
			return err
		}
	}
	return nil
}

func runTables(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	pool, err := connect(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	schemas := append([]string{db.DefaultSchema}, warehouse.Layers...)
	counts, err := warehouse.TableCounts(ctx, pool, schemas)
	if err != nil {
		return err
	}
	if len(counts) == 0 {
		cmd.Println("No tables found; run 'load' and 'warehouse build' first")
		return nil
	}

	rs := &warehouse.ResultSet{Columns: []string{"schema", "table", "rows"}}
	for _, c := range counts {
		rs.Rows = append(rs.Rows, []string{c.Schema, c.Table, strconv.FormatInt(c.Rows, 10)})
	}
	if err := rs.Print(cmd.OutOrStdout()); err != nil {
		return err
	}

	exists, err := db.MetadataExists(ctx, pool)
	if err != nil || !exists {
		return err
	}
	meta, err := db.GetAllMetadata(ctx, pool)
	if err != nil {
		return err
	}
	if loadedAt, ok := meta["loaded_at"]; ok {
		cmd.Printf("\nLast load: %s (pgedge-retailgen %s)\n", loadedAt, meta["version"])
	}
	return nil
}
