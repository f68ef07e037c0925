//-------------------------------------------------------------------------
//
// pgEdge Retail Data Generator
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package retail

import (
	"fmt"
	"time"

	"github.com/pgEdge/pgedge-retailgen/internal/datagen"
	"github.com/pgEdge/pgedge-retailgen/internal/logging"
)

// Config controls a generation run.
type Config struct {
	// StartDate is the first simulated calendar day.
	StartDate time.Time

	// Days is the number of days after StartDate; 0 generates one day.
	Days int

	// Products, Stores and Suppliers are the dimension sizes.
	Products  int
	Stores    int
	Suppliers int
}

// DefaultConfig returns the default run: 181 days from 2024-07-01 over
// 200 products, 20 stores and 30 suppliers.
func DefaultConfig() Config {
	return Config{
		StartDate: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
		Days:      180,
		Products:  200,
		Stores:    20,
		Suppliers: 30,
	}
}

// Generator generates one run of retail data from a single random stream.
type Generator struct {
	cfg   Config
	faker *datagen.Faker
}

// NewGenerator creates a generator drawing from faker.
func NewGenerator(cfg Config, faker *datagen.Faker) (*Generator, error) {
	if cfg.Days < 0 {
		return nil, fmt.Errorf("days must be non-negative, got %d", cfg.Days)
	}
	if cfg.Products > 0 && cfg.Suppliers == 0 {
		return nil, fmt.Errorf("%d products require at least one supplier", cfg.Products)
	}
	if cfg.StartDate.IsZero() {
		return nil, fmt.Errorf("start date is required")
	}
	if faker == nil {
		return nil, fmt.Errorf("random stream is required")
	}

	y, m, d := cfg.StartDate.Date()
	cfg.StartDate = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	return &Generator{cfg: cfg, faker: faker}, nil
}

// StartDate returns the first generated day.
func (g *Generator) StartDate() time.Time {
	return g.cfg.StartDate
}

// EndDate returns the last generated day, which is also the shipment horizon.
func (g *Generator) EndDate() time.Time {
	return g.cfg.StartDate.AddDate(0, 0, g.cfg.Days)
}

// DateRange returns every day from the start to the end date inclusive.
func (g *Generator) DateRange() []time.Time {
	dates := make([]time.Time, 0, g.cfg.Days+1)
	for i := 0; i <= g.cfg.Days; i++ {
		dates = append(dates, g.cfg.StartDate.AddDate(0, 0, i))
	}
	return dates
}

// Generate produces the dimensions and then the fact tables.
func (g *Generator) Generate() (*Dataset, error) {
	logging.Info().
		Str("start_date", FormatDate(g.StartDate())).
		Str("end_date", FormatDate(g.EndDate())).
		Int("days", g.cfg.Days).
		Msg("Generating synthetic retail data")

	ds := &Dataset{
		Products:  GenerateProducts(g.faker, g.cfg.Products, g.cfg.Suppliers),
		Stores:    GenerateStores(g.faker, g.cfg.Stores),
		Suppliers: GenerateSuppliers(g.faker, g.cfg.Suppliers),
	}

	logging.Info().
		Int("products", len(ds.Products)).
		Int("stores", len(ds.Stores)).
		Int("suppliers", len(ds.Suppliers)).
		Msg("Dimensions complete")

	if err := g.GenerateFacts(ds); err != nil {
		return nil, err
	}
	return ds, nil
}

// GenerateFacts fills the sales, inventory and shipment tables of ds from
// its dimension tables.
func (g *Generator) GenerateFacts(ds *Dataset) error {
	dates := g.DateRange()

	ds.Sales = GenerateSales(g.faker, ds.Products, ds.Stores, dates)
	ds.Inventory = GenerateInventory(g.faker, ds.Products, ds.Stores, ds.Sales, dates)

	shipments, err := ReconstructShipments(g.faker, ds.Products, ds.Stores, ds.Suppliers,
		ds.Inventory, g.EndDate())
	if err != nil {
		return fmt.Errorf("failed to generate shipments: %w", err)
	}
	ds.Shipments = shipments

	logging.Info().
		Str("table", TableShipments).
		Int("rows", len(ds.Shipments)).
		Msg("Table complete")
	return nil
}
