package datagen

import (
	"fmt"

	"github.com/pgEdge/pgedge-retailgen/internal/logging"
)

// ProgressReporter tracks and reports data generation progress.
type ProgressReporter struct {
	tableName        string
	totalUnits       int64
	currentUnit      int64
	rows             int64
	progressInterval int64
}

// NewProgressReporter creates a new progress reporter. Progress is counted
// in units of work (days, keys) since fact row counts are not known ahead.
func NewProgressReporter(tableName string, totalUnits int64, interval int64) *ProgressReporter {
	if interval < 1 {
		interval = 1
	}
	return &ProgressReporter{
		tableName:        tableName,
		totalUnits:       totalUnits,
		progressInterval: interval,
	}
}

// Update records completed units and rows, logging when an interval is crossed.
func (p *ProgressReporter) Update(units, rows int64) {
	oldUnit := p.currentUnit
	p.currentUnit += units
	p.rows += rows

	if p.currentUnit/p.progressInterval > oldUnit/p.progressInterval && p.totalUnits > 0 {
		pct := float64(p.currentUnit) / float64(p.totalUnits) * 100
		logging.Debug().
			Str("table", p.tableName).
			Int64("rows", p.rows).
			Float64("percent", pct).
			Msg("Generating data")
	}
}

// Done logs completion.
func (p *ProgressReporter) Done() {
	logging.Info().
		Str("table", p.tableName).
		Int64("rows", p.rows).
		Msg("Table complete")
}

// FormatSize formats a byte count as a human-readable string.
func FormatSize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
		TB = GB * 1024
	)

	switch {
	case bytes >= TB:
		return fmt.Sprintf("%.2f TB", float64(bytes)/float64(TB))
	case bytes >= GB:
		return fmt.Sprintf("%.2f GB", float64(bytes)/float64(GB))
	case bytes >= MB:
		return fmt.Sprintf("%.2f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.2f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
