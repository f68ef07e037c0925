//-------------------------------------------------------------------------
//
// pgEdge Retail Data Generator
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package warehouse

import (
	"context"
	"database/sql/driver"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Report is a named analysis query over the fact layer.
type Report struct {
	// Name is the report identifier.
	Name string

	// Title is printed above the result.
	Title string

	// SQL is the query to run.
	SQL string
}

// Reports lists the sales analyses in print order.
var Reports = []Report{
	{
		Name:  "summary",
		Title: "Overall Sales Summary",
		SQL: `
SELECT
    COUNT(DISTINCT sales_date) AS total_days,
    COUNT(DISTINCT store_id) AS total_stores,
    SUM(sold_units) AS total_units_sold,
    SUM(total_sales_amount) AS total_sales_amount,
    SUM(transactions_count) AS total_transactions,
    ROUND(AVG(sold_units), 2) AS avg_daily_units_per_store,
    ROUND(AVG(total_sales_amount), 2) AS avg_daily_sales_per_store
FROM fact.fct_store_daily_sales`,
	},
	{
		Name:  "top-stores",
		Title: "Top 10 Stores by Total Sales",
		SQL: `
SELECT
    store_id,
    store_name,
    region,
    store_type,
    SUM(total_sales_amount) AS total_sales_amount,
    SUM(sold_units) AS total_units_sold,
    SUM(transactions_count) AS total_transactions,
    ROUND(AVG(total_sales_amount), 2) AS avg_daily_sales
FROM fact.fct_store_daily_sales
GROUP BY store_id, store_name, region, store_type
ORDER BY total_sales_amount DESC
LIMIT 10`,
	},
	{
		Name:  "weekend",
		Title: "Weekend vs Weekday Sales",
		SQL: `
SELECT
    CASE WHEN is_weekend THEN 'weekend' ELSE 'weekday' END AS day_type,
    SUM(total_sales_amount) AS total_sales_amount,
    SUM(sold_units) AS total_units_sold,
    SUM(transactions_count) AS total_transactions,
    ROUND(AVG(total_sales_amount), 2) AS avg_daily_sales
FROM fact.fct_store_daily_sales
GROUP BY is_weekend
ORDER BY day_type`,
	},
	{
		Name:  "monthly",
		Title: "Monthly Sales Trend",
		SQL: `
SELECT
    year,
    month,
    SUM(total_sales_amount) AS total_sales_amount,
    SUM(sold_units) AS total_units_sold,
    SUM(transactions_count) AS total_transactions
FROM fact.fct_store_daily_sales
GROUP BY year, month
ORDER BY year, month`,
	},
	{
		Name:  "store-type",
		Title: "Sales by Store Type",
		SQL: `
SELECT
    store_type,
    SUM(total_sales_amount) AS total_sales_amount,
    SUM(sold_units) AS total_units_sold,
    SUM(transactions_count) AS total_transactions
FROM fact.fct_store_daily_sales
GROUP BY store_type
ORDER BY total_sales_amount DESC`,
	},
	{
		Name:  "suppliers",
		Title: "Supplier On-Time Performance",
		SQL: `
SELECT
    supplier_id,
    supplier_name,
    country,
    shipments,
    late_shipments,
    expected_on_time_rate,
    actual_on_time_rate,
    avg_delay_days,
    units_short
FROM fact.fct_supplier_performance
ORDER BY actual_on_time_rate, supplier_id`,
	},
}

// LookupReport returns the named report.
func LookupReport(name string) (Report, bool) {
	for _, r := range Reports {
		if r.Name == name {
			return r, true
		}
	}
	return Report{}, false
}

// ResultSet is a query result rendered as text.
type ResultSet struct {
	Columns []string
	Rows    [][]string
}

// Query runs sql and renders every value as text.
func Query(ctx context.Context, db DB, sql string, args ...any) (*ResultSet, error) {
	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rs := &ResultSet{}
	for _, fd := range rows.FieldDescriptions() {
		rs.Columns = append(rs.Columns, fd.Name)
	}

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		row := make([]string, len(values))
		for i, v := range values {
			row[i] = FormatValue(v)
		}
		rs.Rows = append(rs.Rows, row)
	}
	return rs, rows.Err()
}

// Run executes the report.
func (r Report) Run(ctx context.Context, db DB) (*ResultSet, error) {
	rs, err := Query(ctx, db, r.SQL)
	if err != nil {
		return nil, fmt.Errorf("report %s failed: %w", r.Name, err)
	}
	return rs, nil
}

// Print writes the result as an aligned table.
func (rs *ResultSet) Print(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(rs.Columns, "\t"))

	rules := make([]string, len(rs.Columns))
	for i, c := range rs.Columns {
		rules[i] = strings.Repeat("-", len(c))
	}
	fmt.Fprintln(tw, strings.Join(rules, "\t"))

	for _, row := range rs.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

// FormatValue renders a decoded column value for display. Numerics keep at
// most two decimal places.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case string:
		return x
	case []byte:
		return string(x)
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 {
			return x.Format("2006-01-02")
		}
		return x.Format(time.RFC3339)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', 2, 32)
	case float64:
		return strconv.FormatFloat(x, 'f', 2, 64)
	case driver.Valuer:
		dv, err := x.Value()
		if err != nil {
			return fmt.Sprint(x)
		}
		if s, ok := dv.(string); ok {
			if d, err := decimal.NewFromString(s); err == nil && d.Exponent() < -2 {
				return d.Round(2).String()
			}
			return s
		}
		return FormatValue(dv)
	}
	return fmt.Sprint(v)
}

// TableCount is the row count of one base table.
type TableCount struct {
	Schema string
	Table  string
	Rows   int64
}

// TableCounts returns the row count of every base table in schemas, ordered
// by schema and table name.
func TableCounts(ctx context.Context, db DB, schemas []string) ([]TableCount, error) {
	rows, err := db.Query(ctx, `
        SELECT table_schema, table_name
        FROM information_schema.tables
        WHERE table_type = 'BASE TABLE' AND table_schema = ANY($1)
        ORDER BY table_schema, table_name
    `, schemas)
	if err != nil {
		return nil, err
	}
	counts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (TableCount, error) {
		var tc TableCount
		err := row.Scan(&tc.Schema, &tc.Table)
		return tc, err
	})
	if err != nil {
		return nil, err
	}

	for i := range counts {
		stmt := "SELECT COUNT(*) FROM " + pgx.Identifier{counts[i].Schema, counts[i].Table}.Sanitize()
		if err := db.QueryRow(ctx, stmt).Scan(&counts[i].Rows); err != nil {
			return nil, fmt.Errorf("failed to count %s.%s: %w", counts[i].Schema, counts[i].Table, err)
		}
	}
	return counts, nil
}
