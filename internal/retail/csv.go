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
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pgEdge/pgedge-retailgen/internal/logging"
)

// Header names accepted in place of the canonical column name.
var columnAliases = map[string]string{
	"sub_category": "subcategory",
}

type record interface {
	Record() []string
}

func writeRecords[T record](w io.Writer, header []string, rows []T) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		if err := cw.Write(row.Record()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteTable writes the named table of the dataset as CSV with a header row.
func (d *Dataset) WriteTable(w io.Writer, table string) error {
	switch table {
	case TableProducts:
		return writeRecords(w, productColumns, d.Products)
	case TableStores:
		return writeRecords(w, storeColumns, d.Stores)
	case TableSuppliers:
		return writeRecords(w, supplierColumns, d.Suppliers)
	case TableSales:
		return writeRecords(w, saleColumns, d.Sales)
	case TableInventory:
		return writeRecords(w, inventoryColumns, d.Inventory)
	case TableShipments:
		return writeRecords(w, shipmentColumns, d.Shipments)
	}
	return fmt.Errorf("unknown table: %s", table)
}

// WriteDir writes every table to dir as <table>.csv, creating dir if
// needed, and returns the paths written.
func (d *Dataset) WriteDir(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	paths := make([]string, 0, len(Tables))
	for _, t := range Tables {
		path := filepath.Join(dir, t.FileName())
		if err := d.writeFile(path, t.Name); err != nil {
			return paths, fmt.Errorf("failed to write %s: %w", t.Name, err)
		}
		logging.Debug().Str("table", t.Name).Str("path", path).Msg("Wrote table")
		paths = append(paths, path)
	}
	return paths, nil
}

func (d *Dataset) writeFile(path, table string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := d.WriteTable(file, table); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// errEmptyValue reports a blank cell in a required column.
var errEmptyValue = errors.New("value is required")

// csvTable is a parsed CSV file addressed by column name.
type csvTable struct {
	name     string
	columns  map[string]int
	required map[string]bool
	rows     [][]string
}

func readTable(r io.Reader, name string, required ...string) (*csvTable, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read csv: %w", name, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: missing header row", name)
	}

	columns := make(map[string]int, len(records[0]))
	for i, col := range records[0] {
		col = strings.TrimSpace(col)
		if canonical, ok := columnAliases[col]; ok {
			if _, exists := columns[canonical]; !exists {
				col = canonical
			}
		}
		columns[col] = i
	}

	requiredSet := make(map[string]bool, len(required))
	for _, col := range required {
		if _, ok := columns[col]; !ok {
			return nil, fmt.Errorf("%s: missing required column %q", name, col)
		}
		requiredSet[col] = true
	}

	return &csvTable{name: name, columns: columns, required: requiredSet, rows: records[1:]}, nil
}

func (t *csvTable) value(row []string, col string) string {
	i, ok := t.columns[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// fieldError reports a malformed value; line numbers count the header.
func (t *csvTable) fieldError(idx int, col, value string, err error) error {
	return fmt.Errorf("%s: line %d: invalid %s %q: %w", t.name, idx+2, col, value, err)
}

// emptyValue reports whether v is blank, failing when col is required.
func (t *csvTable) emptyValue(idx int, col, v string) (bool, error) {
	if v != "" {
		return false, nil
	}
	if t.required[col] {
		return true, t.fieldError(idx, col, v, errEmptyValue)
	}
	return true, nil
}

func (t *csvTable) intValue(idx int, row []string, col string) (int, error) {
	v := t.value(row, col)
	if empty, err := t.emptyValue(idx, col, v); empty {
		return 0, err
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		// Integer columns can come back as floats from other writers.
		f, ferr := strconv.ParseFloat(v, 64)
		if ferr != nil {
			return 0, t.fieldError(idx, col, v, err)
		}
		n = int(f)
	}
	return n, nil
}

func (t *csvTable) floatValue(idx int, row []string, col string) (float64, error) {
	v := t.value(row, col)
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, t.fieldError(idx, col, v, err)
	}
	return f, nil
}

func (t *csvTable) moneyValue(idx int, row []string, col string) (decimal.Decimal, error) {
	v := t.value(row, col)
	if empty, err := t.emptyValue(idx, col, v); empty {
		return decimal.Zero, err
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, t.fieldError(idx, col, v, err)
	}
	return d, nil
}

func (t *csvTable) boolValue(idx int, row []string, col string) (bool, error) {
	v := t.value(row, col)
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, t.fieldError(idx, col, v, err)
	}
	return b, nil
}

func (t *csvTable) dateValue(idx int, row []string, col string) (time.Time, error) {
	v := t.value(row, col)
	if v == "" {
		return time.Time{}, nil
	}
	d, err := ParseDate(v)
	if err != nil {
		return time.Time{}, t.fieldError(idx, col, v, err)
	}
	return d, nil
}

// ReadProducts parses a products CSV file.
func ReadProducts(r io.Reader) ([]Product, error) {
	t, err := readTable(r, TableProducts, "product_id", "category", "unit_price", "supplier_id", "is_active")
	if err != nil {
		return nil, err
	}

	products := make([]Product, 0, len(t.rows))
	for i, row := range t.rows {
		p := Product{
			ProductID:   t.value(row, "product_id"),
			ProductName: t.value(row, "product_name"),
			Category:    t.value(row, "category"),
			Subcategory: t.value(row, "subcategory"),
			SupplierID:  t.value(row, "supplier_id"),
		}
		if p.UnitCost, err = t.moneyValue(i, row, "unit_cost"); err != nil {
			return nil, err
		}
		if p.UnitPrice, err = t.moneyValue(i, row, "unit_price"); err != nil {
			return nil, err
		}
		if p.IsActive, err = t.boolValue(i, row, "is_active"); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}

// ReadStores parses a stores CSV file.
func ReadStores(r io.Reader) ([]Store, error) {
	t, err := readTable(r, TableStores, "store_id")
	if err != nil {
		return nil, err
	}

	stores := make([]Store, 0, len(t.rows))
	for i, row := range t.rows {
		s := Store{
			StoreID:   t.value(row, "store_id"),
			StoreName: t.value(row, "store_name"),
			Region:    t.value(row, "region"),
			StoreType: t.value(row, "store_type"),
		}
		if s.SqFootage, err = t.intValue(i, row, "sq_footage"); err != nil {
			return nil, err
		}
		if s.OpenedDate, err = t.dateValue(i, row, "opened_date"); err != nil {
			return nil, err
		}
		stores = append(stores, s)
	}
	return stores, nil
}

// ReadSuppliers parses a suppliers CSV file.
func ReadSuppliers(r io.Reader) ([]Supplier, error) {
	t, err := readTable(r, TableSuppliers, "supplier_id", "lead_time_days", "on_time_rate")
	if err != nil {
		return nil, err
	}

	suppliers := make([]Supplier, 0, len(t.rows))
	for i, row := range t.rows {
		s := Supplier{
			SupplierID:   t.value(row, "supplier_id"),
			SupplierName: t.value(row, "supplier_name"),
			Country:      t.value(row, "country"),
		}
		if s.LeadTimeDays, err = t.intValue(i, row, "lead_time_days"); err != nil {
			return nil, err
		}
		if s.OnTimeRate, err = t.floatValue(i, row, "on_time_rate"); err != nil {
			return nil, err
		}
		suppliers = append(suppliers, s)
	}
	return suppliers, nil
}
