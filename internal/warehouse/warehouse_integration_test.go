//-------------------------------------------------------------------------
//
// pgEdge Retail Data Generator
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

//go:build integration
// +build integration

// Run with: go test -tags=integration ./internal/warehouse/...
// Set RETAILGEN_TEST_CONN to override the connection string.

package warehouse_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/pgEdge/pgedge-retailgen/internal/datagen"
	"github.com/pgEdge/pgedge-retailgen/internal/db"
	"github.com/pgEdge/pgedge-retailgen/internal/retail"
	"github.com/pgEdge/pgedge-retailgen/internal/testutil"
	"github.com/pgEdge/pgedge-retailgen/internal/warehouse"
)

func TestWarehouseIntegration(t *testing.T) {
	pool := testutil.NewTestDB(t, "warehouse")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cfg := retail.Config{
		StartDate: time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC),
		Days:      60,
		Products:  20,
		Stores:    4,
		Suppliers: 5,
	}
	gen, err := retail.NewGenerator(cfg, datagen.NewFakerWithSeed(42))
	if err != nil {
		t.Fatalf("NewGenerator failed: %v", err)
	}
	ds, err := gen.Generate()
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	dir := t.TempDir()
	if _, err := ds.WriteDir(dir); err != nil {
		t.Fatalf("WriteDir failed: %v", err)
	}
	if _, err := db.LoadDir(ctx, pool, db.DefaultSchema, dir); err != nil {
		t.Fatalf("LoadDir failed: %v", err)
	}

	results, err := warehouse.Build(ctx, pool)
	if err != nil {
		for _, r := range results {
			if r.Err != nil {
				t.Logf("%s.%s: %v", r.Model.Schema, r.Model.Table, r.Err)
			}
		}
		t.Fatalf("Build failed: %v", err)
	}

	rows := make(map[string]int64)
	for _, r := range results {
		rows[r.Model.Table] = r.Rows
	}

	summary := ds.Summary()
	if got, want := rows["clean_inventory"], int64(summary.Inventory-summary.NegativeInventory); got != want {
		t.Errorf("clean_inventory: expected %d rows, got %d", want, got)
	}
	if got, want := rows["clean_shipments"], int64(retail.CountDistinctOrders(ds.Shipments)); got != want {
		t.Errorf("clean_shipments: expected %d rows, got %d", want, got)
	}
	if got, want := rows["clean_sales"], int64(summary.Sales); got != want {
		t.Errorf("clean_sales: expected %d rows, got %d", want, got)
	}

	var revenue string
	err = pool.QueryRow(ctx, `SELECT SUM(total_sales_amount)::text FROM fact.fct_store_daily_sales`).Scan(&revenue)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if revenue != summary.TotalRevenue.StringFixed(2) {
		t.Errorf("Expected revenue %s, got %s", summary.TotalRevenue.StringFixed(2), revenue)
	}

	failures, err := warehouse.RunTests(ctx, pool)
	if err != nil {
		t.Fatalf("RunTests failed: %v", err)
	}
	for _, f := range failures {
		t.Errorf("Data quality test %s failed with %d rows", f.Name, f.Failures)
	}

	// Rebuilding is repeatable.
	if _, err := warehouse.Build(ctx, pool); err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}

	for _, r := range warehouse.Reports {
		rs, err := r.Run(ctx, pool)
		if err != nil {
			t.Fatalf("Report %s failed: %v", r.Name, err)
		}
		if len(rs.Rows) == 0 {
			t.Errorf("Report %s returned no rows", r.Name)
		}
		var buf bytes.Buffer
		if err := rs.Print(&buf); err != nil {
			t.Fatalf("Print failed: %v", err)
		}
	}

	counts, err := warehouse.TableCounts(ctx, pool, []string{"raw", "clean", "fact"})
	if err != nil {
		t.Fatalf("TableCounts failed: %v", err)
	}
	if len(counts) != 15 {
		t.Errorf("Expected 15 tables, got %d", len(counts))
	}
}
