//-------------------------------------------------------------------------
//
// pgEdge Retail Data Generator
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package db

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pgEdge/pgedge-retailgen/internal/logging"
	"github.com/pgEdge/pgedge-retailgen/internal/retail"
)

// DefaultSchema is the schema raw CSV tables are loaded into.
const DefaultSchema = "raw"

// LoadResult is the outcome of loading one CSV file.
type LoadResult struct {
	Table string
	Path  string
	Rows  int64
}

// ReadHeader returns the trimmed column names of a CSV file.
func ReadHeader(r io.Reader) ([]string, error) {
	header, err := csv.NewReader(r).Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("missing header row")
	}
	if err != nil {
		return nil, err
	}
	for i, col := range header {
		header[i] = strings.TrimSpace(col)
	}
	return header, nil
}

// CreateTableSQL returns the DDL for an all-TEXT table with the given
// columns. Identifiers are quoted.
func CreateTableSQL(schema, table string, columns []string) string {
	defs := make([]string, len(columns))
	for i, col := range columns {
		defs[i] = pgx.Identifier{col}.Sanitize() + " TEXT"
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)",
		pgx.Identifier{schema, table}.Sanitize(), strings.Join(defs, ", "))
}

// CopySQL returns the COPY statement used to stream a CSV file with a header
// row into table. Empty fields load as NULL.
func CopySQL(schema, table string) string {
	return fmt.Sprintf("COPY %s FROM STDIN WITH (FORMAT csv, HEADER true, NULL '')",
		pgx.Identifier{schema, table}.Sanitize())
}

// LoadCSV replaces schema.table with the contents of the CSV file at path
// and returns the number of rows loaded. The table has one TEXT column per
// header column; typing happens in the warehouse clean layer.
func LoadCSV(ctx context.Context, pool *pgxpool.Pool, schema, table, path string) (int64, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	columns, err := ReadHeader(file)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return 0, fmt.Errorf("failed to rewind %s: %w", path, err)
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	statements := []string{
		fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", pgx.Identifier{schema}.Sanitize()),
		fmt.Sprintf("DROP TABLE IF EXISTS %s", pgx.Identifier{schema, table}.Sanitize()),
		CreateTableSQL(schema, table, columns),
	}
	for _, stmt := range statements {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return 0, fmt.Errorf("failed to prepare %s.%s: %w", schema, table, err)
		}
	}

	if _, err := tx.Conn().PgConn().CopyFrom(ctx, file, CopySQL(schema, table)); err != nil {
		return 0, fmt.Errorf("failed to copy %s into %s.%s: %w", path, schema, table, err)
	}

	var count int64
	countSQL := fmt.Sprintf("SELECT COUNT(*) FROM %s", pgx.Identifier{schema, table}.Sanitize())
	if err := tx.QueryRow(ctx, countSQL).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count %s.%s: %w", schema, table, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit %s.%s: %w", schema, table, err)
	}
	return count, nil
}

// LoadDir loads every generated table found in dir into schema, skipping
// missing files, and records the row counts in the metadata table.
func LoadDir(ctx context.Context, pool *pgxpool.Pool, schema, dir string) ([]LoadResult, error) {
	var results []LoadResult
	loaded := make(map[string]string)

	for _, t := range retail.Tables {
		path := filepath.Join(dir, t.FileName())
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			logging.Warn().Str("path", path).Msg("Missing file, skipping")
			continue
		}

		logging.Info().Str("table", t.Name).Msg("Loading table")
		rows, err := LoadCSV(ctx, pool, schema, t.Name, path)
		if err != nil {
			return results, err
		}

		logging.Info().
			Str("table", t.Name).
			Str("schema", schema).
			Int64("rows", rows).
			Msg("Table loaded")

		results = append(results, LoadResult{Table: t.Name, Path: path, Rows: rows})
		loaded["loaded."+t.Name] = strconv.FormatInt(rows, 10)
	}

	if len(results) > 0 {
		loaded["schema"] = schema
		if err := SaveMetadata(ctx, pool, loaded); err != nil {
			return results, err
		}
	}
	return results, nil
}
