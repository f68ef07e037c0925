//-------------------------------------------------------------------------
//
// pgEdge Retail Data Generator
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package retail implements the synthetic retail data generator: product,
// store and supplier dimensions plus the sales, inventory and shipment
// fact tables derived from them.
package retail

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the on-disk format of every date column.
const DateLayout = "2006-01-02"

// Product categories, in generation order.
const (
	CategoryElectronics = "Electronics"
	CategoryApparel     = "Apparel"
	CategoryHomeGoods   = "Home Goods"
	CategoryGroceries   = "Groceries"
)

// Categories lists the product categories in generation order.
var Categories = []string{
	CategoryElectronics,
	CategoryApparel,
	CategoryHomeGoods,
	CategoryGroceries,
}

// Product is a row of the products dimension.
type Product struct {
	ProductID   string
	ProductName string
	Category    string
	Subcategory string
	UnitCost    decimal.Decimal
	UnitPrice   decimal.Decimal
	SupplierID  string
	IsActive    bool
}

// Store is a row of the stores dimension. An empty Region is a missing value.
type Store struct {
	StoreID    string
	StoreName  string
	Region     string
	StoreType  string
	SqFootage  int
	OpenedDate time.Time
}

// Supplier is a row of the suppliers dimension.
type Supplier struct {
	SupplierID   string
	SupplierName string
	LeadTimeDays int
	OnTimeRate   float64
	Country      string
}

// Sale is a single sales line item.
type Sale struct {
	SaleID         string
	SaleDate       time.Time
	StoreID        string
	ProductID      string
	QuantitySold   int
	UnitPrice      decimal.Decimal
	DiscountAmount decimal.NullDecimal
	TotalAmount    decimal.Decimal
}

// InventorySnapshot is the recorded stock position of one product in one
// store at the end of a day. A zero LastRestockDate means never restocked.
type InventorySnapshot struct {
	SnapshotDate    time.Time
	StoreID         string
	ProductID       string
	QuantityOnHand  int
	QuantityOnOrder int
	ReorderPoint    int
	LastRestockDate time.Time
}

// Shipment is a supplier delivery reconstructed from inventory history.
type Shipment struct {
	ShipmentID       string
	OrderDate        time.Time
	ExpectedDate     time.Time
	ReceivedDate     time.Time
	StoreID          string
	ProductID        string
	SupplierID       string
	QuantityOrdered  int
	QuantityReceived int
	IsLate           bool
}

// Dataset holds every table of one generation run.
type Dataset struct {
	Products  []Product
	Stores    []Store
	Suppliers []Supplier
	Sales     []Sale
	Inventory []InventorySnapshot
	Shipments []Shipment
}

// ActiveProducts returns the products flagged active, in input order.
func ActiveProducts(products []Product) []Product {
	active := make([]Product, 0, len(products))
	for _, p := range products {
		if p.IsActive {
			active = append(active, p)
		}
	}
	return active
}

// ParseDate parses a YYYY-MM-DD string as a UTC calendar date.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", s)
	}
	return d, nil
}

// FormatDate formats a date column value; the zero time is a missing value.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

func formatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func formatNullMoney(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.StringFixed(2)
}

func roundMoney(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

// Record returns the CSV record for the product.
func (p Product) Record() []string {
	return []string{
		p.ProductID,
		p.ProductName,
		p.Category,
		p.Subcategory,
		formatMoney(p.UnitCost),
		formatMoney(p.UnitPrice),
		p.SupplierID,
		strconv.FormatBool(p.IsActive),
	}
}

// Record returns the CSV record for the store.
func (s Store) Record() []string {
	return []string{
		s.StoreID,
		s.StoreName,
		s.Region,
		s.StoreType,
		strconv.Itoa(s.SqFootage),
		FormatDate(s.OpenedDate),
	}
}

// Record returns the CSV record for the supplier.
func (s Supplier) Record() []string {
	return []string{
		s.SupplierID,
		s.SupplierName,
		strconv.Itoa(s.LeadTimeDays),
		strconv.FormatFloat(s.OnTimeRate, 'f', -1, 64),
		s.Country,
	}
}

// Record returns the CSV record for the sale.
func (s Sale) Record() []string {
	return []string{
		s.SaleID,
		FormatDate(s.SaleDate),
		s.StoreID,
		s.ProductID,
		strconv.Itoa(s.QuantitySold),
		formatMoney(s.UnitPrice),
		formatNullMoney(s.DiscountAmount),
		formatMoney(s.TotalAmount),
	}
}

// Record returns the CSV record for the snapshot.
func (s InventorySnapshot) Record() []string {
	return []string{
		FormatDate(s.SnapshotDate),
		s.StoreID,
		s.ProductID,
		strconv.Itoa(s.QuantityOnHand),
		strconv.Itoa(s.QuantityOnOrder),
		strconv.Itoa(s.ReorderPoint),
		FormatDate(s.LastRestockDate),
	}
}

// Record returns the CSV record for the shipment.
func (s Shipment) Record() []string {
	return []string{
		s.ShipmentID,
		FormatDate(s.OrderDate),
		FormatDate(s.ExpectedDate),
		FormatDate(s.ReceivedDate),
		s.StoreID,
		s.ProductID,
		s.SupplierID,
		strconv.Itoa(s.QuantityOrdered),
		strconv.Itoa(s.QuantityReceived),
		strconv.FormatBool(s.IsLate),
	}
}
