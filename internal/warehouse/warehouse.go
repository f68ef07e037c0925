//-------------------------------------------------------------------------
//
// pgEdge Retail Data Generator
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package warehouse builds the clean and fact layers from the raw tables
// and runs the SQL data quality tests against them.
package warehouse

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pgEdge/pgedge-retailgen/internal/logging"
)

//go:embed sql
var sqlFiles embed.FS

// Warehouse layers, built in this order.
const (
	SchemaClean = "clean"
	SchemaFact  = "fact"
)

// Layers lists the schemas built from embedded SQL, in build order.
var Layers = []string{SchemaClean, SchemaFact}

// DB is satisfied by *pgxpool.Pool and *pgx.Conn.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Model is one table of a warehouse layer, defined by a SELECT statement.
type Model struct {
	Schema string
	Table  string
	SQL    string
}

// QualifiedName returns schema.table, quoted.
func (m Model) QualifiedName() string {
	return pgx.Identifier{m.Schema, m.Table}.Sanitize()
}

// BuildResult is the outcome of building one model.
type BuildResult struct {
	Model Model
	Rows  int64
	Err   error
}

// TestFailure is one failing data quality check.
type TestFailure struct {
	Name     string
	Failures int64
}

// Models returns the models of every layer in build order. Within a layer
// models are ordered by file name.
func Models() ([]Model, error) {
	var models []Model
	for _, schema := range Layers {
		files, err := readSQLDir(schema)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			models = append(models, Model{
				Schema: schema,
				Table:  strings.TrimSuffix(path.Base(f.name), ".sql"),
				SQL:    f.sql,
			})
		}
	}
	return models, nil
}

// Build creates the warehouse schemas and rebuilds every model. A failing
// model is logged and the build continues; the returned error reports how
// many models failed.
func Build(ctx context.Context, db DB) ([]BuildResult, error) {
	models, err := Models()
	if err != nil {
		return nil, err
	}

	for _, schema := range Layers {
		stmt := fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", pgx.Identifier{schema}.Sanitize())
		if _, err := db.Exec(ctx, stmt); err != nil {
			return nil, fmt.Errorf("failed to create schema %s: %w", schema, err)
		}
	}

	results := make([]BuildResult, 0, len(models))
	failed := 0
	for _, m := range models {
		rows, err := buildModel(ctx, db, m)
		results = append(results, BuildResult{Model: m, Rows: rows, Err: err})

		if err != nil {
			failed++
			logging.Error().Err(err).Str("table", m.Schema+"."+m.Table).Msg("Model build failed")
			continue
		}
		logging.Info().
			Str("table", m.Schema+"."+m.Table).
			Int64("rows", rows).
			Msg("Model built")
	}

	if failed > 0 {
		return results, fmt.Errorf("%d of %d warehouse models failed", failed, len(models))
	}
	return results, nil
}

func buildModel(ctx context.Context, db DB, m Model) (int64, error) {
	tx, err := db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, "DROP TABLE IF EXISTS "+m.QualifiedName()); err != nil {
		return 0, fmt.Errorf("failed to drop %s: %w", m.QualifiedName(), err)
	}
	if _, err := tx.Exec(ctx, CreateTableAsSQL(m)); err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", m.QualifiedName(), err)
	}

	var rows int64
	if err := tx.QueryRow(ctx, "SELECT COUNT(*) FROM "+m.QualifiedName()).Scan(&rows); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", m.QualifiedName(), err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit %s: %w", m.QualifiedName(), err)
	}
	return rows, nil
}

// CreateTableAsSQL returns the statement materializing a model.
func CreateTableAsSQL(m Model) string {
	return fmt.Sprintf("CREATE TABLE %s AS\n%s", m.QualifiedName(), strings.TrimRight(m.SQL, "; \n\t"))
}

// RunTests runs every data quality test and returns the failing checks.
// Each test query returns (test_name, failures) rows for failing checks
// only.
func RunTests(ctx context.Context, db DB) ([]TestFailure, error) {
	files, err := readSQLDir("tests")
	if err != nil {
		return nil, err
	}

	var failures []TestFailure
	for _, f := range files {
		logging.Debug().Str("test", f.name).Msg("Running data quality test")

		rows, err := db.Query(ctx, f.sql)
		if err != nil {
			return failures, fmt.Errorf("failed to run %s: %w", f.name, err)
		}
		found, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (TestFailure, error) {
			var tf TestFailure
			err := row.Scan(&tf.Name, &tf.Failures)
			return tf, err
		})
		if err != nil {
			return failures, fmt.Errorf("failed to read results of %s: %w", f.name, err)
		}
		failures = append(failures, found...)
	}

	return failures, nil
}

type sqlFile struct {
	name string
	sql  string
}

func readSQLDir(dir string) ([]sqlFile, error) {
	entries, err := fs.ReadDir(sqlFiles, path.Join("sql", dir))
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded sql/%s: %w", dir, err)
	}

	files := make([]sqlFile, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		name := path.Join("sql", dir, e.Name())
		data, err := sqlFiles.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		files = append(files, sqlFile{name: name, sql: string(data)})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].name < files[j].name })
	return files, nil
}
