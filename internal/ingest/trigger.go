//-------------------------------------------------------------------------
//
// pgEdge Retail Data Generator
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package ingest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/pgEdge/pgedge-retailgen/internal/datagen"
	"github.com/pgEdge/pgedge-retailgen/internal/logging"
	"github.com/pgEdge/pgedge-retailgen/internal/retail"
)

// TriggerConfig configures a daily trigger run.
type TriggerConfig struct {
	// Date is the day to generate.
	Date time.Time

	// Seed seeds the random stream.
	Seed uint64

	// Object keys of the dimension tables.
	ProductsKey  string
	StoresKey    string
	SuppliersKey string
}

// DefaultTriggerConfig returns a trigger for yesterday (UTC) reading the
// dimension objects written by the uploader.
func DefaultTriggerConfig() TriggerConfig {
	return TriggerConfig{
		Date:         Yesterday(time.Now()),
		Seed:         42,
		ProductsKey:  DimensionKey(retail.TableProducts),
		StoresKey:    DimensionKey(retail.TableStores),
		SuppliersKey: DimensionKey(retail.TableSuppliers),
	}
}

// Yesterday returns the calendar day before now, in UTC.
func Yesterday(now time.Time) time.Time {
	y, m, d := now.UTC().AddDate(0, 0, -1).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// TriggerResult is the JSON document printed by the trigger.
type TriggerResult struct {
	Date          string `json:"date"`
	SalesRows     int    `json:"sales_rows"`
	InventoryRows int    `json:"inventory_rows"`
	ShipmentsRows int    `json:"shipments_rows"`
	Bucket        string `json:"bucket"`
}

// TriggerKey returns the object key the trigger writes a fact table to.
func TriggerKey(table string, date time.Time) string {
	return fmt.Sprintf("raw/%s/dt=%s/%s.csv", table, retail.FormatDate(date), table)
}

// DayStream returns the random stream selector of a calendar day: the number
// of days since the Unix epoch. Each day draws from its own stream, so
// facts and sale ids differ between days while a rerun of one day is
// reproducible.
func DayStream(date time.Time) uint64 {
	y, m, d := date.Date()
	return uint64(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400)
}

// RunTrigger generates one day of facts from the dimension tables held in
// the store and uploads each fact table to its date partition.
func RunTrigger(ctx context.Context, store ObjectStore, cfg TriggerConfig) (*TriggerResult, error) {
	if cfg.Date.IsZero() {
		return nil, fmt.Errorf("trigger date is required")
	}

	products, err := readObject(ctx, store, cfg.ProductsKey, retail.ReadProducts)
	if err != nil {
		return nil, err
	}
	stores, err := readObject(ctx, store, cfg.StoresKey, retail.ReadStores)
	if err != nil {
		return nil, err
	}
	suppliers, err := readObject(ctx, store, cfg.SuppliersKey, retail.ReadSuppliers)
	if err != nil {
		return nil, err
	}

	genCfg := retail.Config{
		StartDate: cfg.Date,
		Days:      0,
		Products:  len(products),
		Stores:    len(stores),
		Suppliers: len(suppliers),
	}
	gen, err := retail.NewGenerator(genCfg, datagen.NewFakerWithStream(cfg.Seed, DayStream(cfg.Date)))
	if err != nil {
		return nil, err
	}

	ds := &retail.Dataset{Products: products, Stores: stores, Suppliers: suppliers}
	if err := gen.GenerateFacts(ds); err != nil {
		return nil, err
	}

	date := gen.StartDate()
	for _, table := range []string{retail.TableSales, retail.TableInventory, retail.TableShipments} {
		var buf bytes.Buffer
		if err := ds.WriteTable(&buf, table); err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", table, err)
		}

		key := TriggerKey(table, date)
		metadata := map[string]string{
			"upload_timestamp": time.Now().UTC().Format(time.RFC3339),
			"partition_date":   retail.FormatDate(date),
			"row_count":        strconv.Itoa(rowCount(ds, table)),
			"table_type":       string(retail.Fact),
		}
		if err := store.Put(ctx, key, &buf, metadata); err != nil {
			return nil, err
		}
		logging.Info().Str("table", table).Str("key", key).Msg("Uploaded daily partition")
	}

	return &TriggerResult{
		Date:          retail.FormatDate(date),
		SalesRows:     len(ds.Sales),
		InventoryRows: len(ds.Inventory),
		ShipmentsRows: len(ds.Shipments),
		Bucket:        store.Bucket(),
	}, nil
}

func readObject[T any](ctx context.Context, store ObjectStore, key string, parse func(io.Reader) ([]T, error)) ([]T, error) {
	body, err := store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	rows, err := parse(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", key, err)
	}
	return rows, nil
}

func rowCount(ds *retail.Dataset, table string) int {
	switch table {
	case retail.TableSales:
		return len(ds.Sales)
	case retail.TableInventory:
		return len(ds.Inventory)
	case retail.TableShipments:
		return len(ds.Shipments)
	}
	return 0
}
