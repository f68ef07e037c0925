//-------------------------------------------------------------------------
//
// pgEdge Retail Data Generator
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package ingest uploads generated CSV tables to object storage: dimension
// tables as a single overwritten object and fact tables partitioned by date.
package ingest

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/pgEdge/pgedge-retailgen/internal/datagen"
	"github.com/pgEdge/pgedge-retailgen/internal/logging"
	"github.com/pgEdge/pgedge-retailgen/internal/retail"
)

// ObjectStore is the object storage used by the uploader.
type ObjectStore interface {
	Bucket() string
	Exists(ctx context.Context, key string) (bool, error)
	Put(ctx context.Context, key string, body io.Reader, metadata map[string]string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
}

// Result statuses.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Result is the outcome of uploading one table.
type Result struct {
	Table  string
	Status string
	Keys   []string
	Err    error
}

// Uploader uploads local CSV files to an ObjectStore.
type Uploader struct {
	store ObjectStore
	now   func() time.Time
}

// NewUploader creates an uploader writing to store.
func NewUploader(store ObjectStore) *Uploader {
	return &Uploader{store: store, now: time.Now}
}

// DimensionKey returns the object key of a dimension table.
func DimensionKey(table string) string {
	return fmt.Sprintf("raw/%s/%s.csv", table, table)
}

// PartitionKey returns the object key of one date partition of a fact table.
func PartitionKey(table string, date time.Time) string {
	return fmt.Sprintf("raw/%s/dt=%s/%s_%s.csv", table, retail.FormatDate(date), table, date.Format("20060102"))
}

// UploadDimension uploads a dimension file, replacing any existing object.
func (u *Uploader) UploadDimension(ctx context.Context, path, table string) (string, error) {
	key := DimensionKey(table)

	exists, err := u.store.Exists(ctx, key)
	if err != nil {
		return "", err
	}
	if exists {
		logging.Info().
			Str("table", table).
			Str("key", key).
			Msg("Dimension exists, overwriting")
	}

	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return "", fmt.Errorf("failed to stat %s: %w", path, err)
	}

	metadata := map[string]string{
		"upload_timestamp": u.now().UTC().Format(time.RFC3339),
		"source_file":      filepath.Base(path),
		"table_type":       string(retail.Dimension),
	}
	if err := u.store.Put(ctx, key, file, metadata); err != nil {
		return "", err
	}

	logging.Info().
		Str("table", table).
		Str("size", datagen.FormatSize(info.Size())).
		Msg("Uploaded dimension")
	return key, nil
}

// UploadFactPartitioned splits a fact file by dateColumn and uploads one
// object per date in ascending order. Partitions already present in the
// store are skipped, so reruns only add new dates. Rows whose date cannot
// be parsed are dropped. It returns the keys uploaded.
func (u *Uploader) UploadFactPartitioned(ctx context.Context, path, table, dateColumn string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read %s: %w", table, path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: missing header row in %s", table, path)
	}

	header := records[0]
	dateIdx := slices.Index(header, dateColumn)
	if dateIdx < 0 {
		return nil, fmt.Errorf("%s: missing date column %q in %s", table, dateColumn, path)
	}

	partitions := make(map[time.Time][][]string)
	dropped := 0
	for _, row := range records[1:] {
		if dateIdx >= len(row) {
			dropped++
			continue
		}
		d, ok := parsePartitionDate(row[dateIdx])
		if !ok {
			dropped++
			continue
		}
		partitions[d] = append(partitions[d], row)
	}
	if dropped > 0 {
		logging.Warn().
			Str("table", table).
			Int("rows", dropped).
			Msgf("Dropped rows with invalid %s", dateColumn)
	}

	dates := make([]time.Time, 0, len(partitions))
	for d := range partitions {
		dates = append(dates, d)
	}
	slices.SortFunc(dates, func(a, b time.Time) int { return a.Compare(b) })

	logging.Info().
		Str("table", table).
		Int("partitions", len(dates)).
		Msg("Found date partitions")

	uploaded := make([]string, 0, len(dates))
	for _, d := range dates {
		key := PartitionKey(table, d)

		exists, err := u.store.Exists(ctx, key)
		if err != nil {
			return uploaded, err
		}
		if exists {
			logging.Info().
				Str("table", table).
				Str("dt", retail.FormatDate(d)).
				Msg("Partition exists, skipping")
			continue
		}

		rows := partitions[d]
		body, err := encodeCSV(header, rows)
		if err != nil {
			return uploaded, fmt.Errorf("%s: failed to encode partition %s: %w", table, retail.FormatDate(d), err)
		}

		metadata := map[string]string{
			"upload_timestamp": u.now().UTC().Format(time.RFC3339),
			"partition_date":   retail.FormatDate(d),
			"row_count":        strconv.Itoa(len(rows)),
			"table_type":       string(retail.Fact),
		}
		if err := u.store.Put(ctx, key, bytes.NewReader(body), metadata); err != nil {
			return uploaded, err
		}

		uploaded = append(uploaded, key)
		logging.Info().
			Str("table", table).
			Str("dt", retail.FormatDate(d)).
			Int("rows", len(rows)).
			Msg("Uploaded partition")
	}

	logging.Info().
		Str("table", table).
		Int("new_partitions", len(uploaded)).
		Msg("Table upload complete")
	return uploaded, nil
}

// UploadAll uploads every table found in dir. A failing table is recorded
// in its Result and does not stop the others; missing files are skipped.
func (u *Uploader) UploadAll(ctx context.Context, dir string) ([]Result, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("source directory not found: %s: %w", dir, err)
	}

	logging.Info().
		Str("source", dir).
		Str("bucket", u.store.Bucket()).
		Msg("Starting ingestion")

	var results []Result
	for _, t := range retail.Tables {
		path := filepath.Join(dir, t.FileName())
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			logging.Warn().Str("path", path).Msg("Missing file, skipping")
			continue
		}

		result := Result{Table: t.Name, Status: StatusSuccess}
		var err error
		if t.Kind == retail.Dimension {
			var key string
			key, err = u.UploadDimension(ctx, path, t.Name)
			if err == nil {
				result.Keys = []string{key}
			}
		} else {
			result.Keys, err = u.UploadFactPartitioned(ctx, path, t.Name, t.DateColumn)
		}

		if err != nil {
			logging.Error().Err(err).Str("table", t.Name).Msg("Upload failed")
			result.Status = StatusFailed
			result.Err = err
			result.Keys = nil
		}
		results = append(results, result)
	}

	logSummary(results)
	return results, nil
}

// Failed returns the tables whose upload failed.
func Failed(results []Result) []string {
	var failed []string
	for _, r := range results {
		if r.Status == StatusFailed {
			failed = append(failed, r.Table)
		}
	}
	return failed
}

func logSummary(results []Result) {
	logging.Info().Msg("Ingestion summary")
	for _, r := range results {
		if r.Status == StatusSuccess {
			logging.Info().Str("table", r.Table).Int("objects", len(r.Keys)).Msg("Uploaded")
		} else {
			logging.Error().Str("table", r.Table).Err(r.Err).Msg("Failed")
		}
	}
}

// parsePartitionDate accepts a calendar date optionally followed by a time.
func parsePartitionDate(s string) (time.Time, bool) {
	for _, layout := range []string{retail.DateLayout, time.DateTime, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

func encodeCSV(header []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
