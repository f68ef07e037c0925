//-------------------------------------------------------------------------
//
// pgEdge Retail Data Generator
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-retailgen/internal/config"
	"github.com/pgEdge/pgedge-retailgen/internal/ingest"
	"github.com/pgEdge/pgedge-retailgen/internal/logging"
	"github.com/pgEdge/pgedge-retailgen/internal/storage"
)

var (
	// Object storage flags, shared by upload and trigger
	s3Bucket   string
	s3Region   string
	s3Endpoint string

	uploadSource string
)

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Upload generated CSV files to the S3 data lake",
	Long: `Upload the generated tables to S3. Dimension tables are written to
raw/<table>/<table>.csv and overwritten on every run. Fact tables are
split by date into raw/<table>/dt=<date>/<table>_<yyyymmdd>.csv, and
partitions that already exist are skipped, so reruns are idempotent.`,
	RunE: runUpload,
}

func init() {
	addS3Flags(uploadCmd)
	uploadCmd.Flags().StringVar(&uploadSource, "source", "",
		"directory holding the CSV files (default: the generate output directory)")
}

func addS3Flags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&s3Bucket, "bucket", "",
		"S3 bucket (env: S3_BUCKET)")
	cmd.Flags().StringVar(&s3Region, "region", "",
		"AWS region (default: eu-west-2)")
	cmd.Flags().StringVar(&s3Endpoint, "endpoint", "",
		"custom S3 endpoint, e.g. for MinIO")
}

// applyS3Flags copies explicitly set object storage flags over the config.
func applyS3Flags(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("bucket") {
		c.S3.Bucket = s3Bucket
	}
	if flags.Changed("region") {
		c.S3.Region = s3Region
	}
	if flags.Changed("endpoint") {
		c.S3.Endpoint = s3Endpoint
	}
}

// openStore connects to the configured bucket and checks it is reachable.
func openStore(ctx context.Context, c *config.Config) (*storage.S3Store, error) {
	store, err := storage.NewS3Store(ctx, storage.Config{
		Bucket:   c.S3.Bucket,
		Region:   c.S3.Region,
		Endpoint: c.S3.Endpoint,
	})
	if err != nil {
		return nil, err
	}
	if err := store.CheckBucket(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func runUpload(cmd *cobra.Command, args []string) error {
	applyS3Flags(cmd, cfg)

	if err := cfg.ValidateS3(); err != nil {
		return err
	}

	source := cfg.Generate.Output
	if uploadSource != "" {
		source = uploadSource
	}

	ctx, cancel := signalContext()
	defer cancel()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}

	logging.Info().
		Str("bucket", store.Bucket()).
		Str("source", source).
		Msg("Uploading data to S3")

	results, err := ingest.NewUploader(store).UploadAll(ctx, source)
	if err != nil {
		return err
	}

	for _, r := range results {
		if r.Err != nil {
			cmd.Printf("  %-10s %s: %v\n", r.Table, r.Status, r.Err)
			continue
		}
		cmd.Printf("  %-10s %s (%d objects)\n", r.Table, r.Status, len(r.Keys))
	}

	if failed := ingest.Failed(results); len(failed) > 0 {
		return fmt.Errorf("upload failed for: %s", strings.Join(failed, ", "))
	}
	return nil
}
