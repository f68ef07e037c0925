package ingest

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgEdge/pgedge-retailgen/internal/datagen"
	"github.com/pgEdge/pgedge-retailgen/internal/retail"
	"github.com/pgEdge/pgedge-retailgen/internal/storage"
)

const testBucket = "retail-lake"

func newTestStore() (*storage.MemoryClient, *storage.S3Store) {
	client := storage.NewMemoryClient(testBucket)
	return client, storage.NewS3StoreWithClient(client, testBucket)
}

func writeDataset(t *testing.T, days int) (string, *retail.Dataset) {
	t.Helper()
	cfg := retail.Config{
		StartDate: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
		Days:      days,
		Products:  12,
		Stores:    3,
		Suppliers: 4,
	}
	gen, err := retail.NewGenerator(cfg, datagen.NewFakerWithSeed(42))
	require.NoError(t, err)
	ds, err := gen.Generate()
	require.NoError(t, err)

	dir := t.TempDir()
	_, err = ds.WriteDir(dir)
	require.NoError(t, err)
	return dir, ds
}

func TestKeys(t *testing.T) {
	d := time.Date(2024, 7, 9, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "raw/products/products.csv", DimensionKey("products"))
	assert.Equal(t, "raw/sales/dt=2024-07-09/sales_20240709.csv", PartitionKey("sales", d))
	assert.Equal(t, "raw/inventory/dt=2024-07-09/inventory.csv", TriggerKey("inventory", d))
}

func TestYesterday(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 30, 0, 0, time.FixedZone("CET", 3600))
	assert.Equal(t, "2024-12-30", retail.FormatDate(Yesterday(now)))
}

func TestUploadAll(t *testing.T) {
	ctx := context.Background()
	dir, ds := writeDataset(t, 4)
	client, store := newTestStore()

	results, err := NewUploader(store).UploadAll(ctx, dir)
	require.NoError(t, err)
	require.Len(t, results, len(retail.Tables))
	assert.Empty(t, Failed(results))

	for _, r := range results {
		def, _ := retail.LookupTable(r.Table)
		if def.Kind == retail.Dimension {
			assert.Equal(t, []string{DimensionKey(r.Table)}, r.Keys)
		}
	}

	salesDates := make(map[string]int)
	for _, s := range ds.Sales {
		salesDates[retail.FormatDate(s.SaleDate)]++
	}
	for date, n := range salesDates {
		d, _ := retail.ParseDate(date)
		obj, ok := client.Object(PartitionKey(retail.TableSales, d))
		require.True(t, ok, "missing sales partition %s", date)
		assert.Equal(t, "fact", obj.Metadata["table_type"])
		assert.Equal(t, date, obj.Metadata["partition_date"])

		rows, err := csv.NewReader(strings.NewReader(string(obj.Body))).ReadAll()
		require.NoError(t, err)
		assert.Len(t, rows, n+1)
		assert.Equal(t, "sale_id", rows[0][0])
	}

	obj, ok := client.Object(DimensionKey(retail.TableProducts))
	require.True(t, ok)
	assert.Equal(t, "dimension", obj.Metadata["table_type"])
	assert.Equal(t, "products.csv", obj.Metadata["source_file"])
}

func TestUploadAllIsIdempotentForFacts(t *testing.T) {
	ctx := context.Background()
	dir, _ := writeDataset(t, 2)
	client, store := newTestStore()
	uploader := NewUploader(store)

	_, err := uploader.UploadAll(ctx, dir)
	require.NoError(t, err)
	first := client.Puts()

	results, err := uploader.UploadAll(ctx, dir)
	require.NoError(t, err)

	// Only the three dimensions are rewritten.
	assert.Equal(t, first+3, client.Puts())
	for _, r := range results {
		def, _ := retail.LookupTable(r.Table)
		if def.Kind == retail.Fact {
			assert.Empty(t, r.Keys, "%s uploaded partitions on rerun", r.Table)
		}
	}
}

func TestUploadAllMissingFiles(t *testing.T) {
	ctx := context.Background()
	dir, _ := writeDataset(t, 1)
	require.NoError(t, os.Remove(filepath.Join(dir, "shipments.csv")))
	_, store := newTestStore()

	results, err := NewUploader(store).UploadAll(ctx, dir)
	require.NoError(t, err)
	assert.Len(t, results, len(retail.Tables)-1)

	_, err = NewUploader(store).UploadAll(ctx, filepath.Join(dir, "nope"))
	assert.Error(t, err)
}

func TestUploadAllRecordsFailures(t *testing.T) {
	ctx := context.Background()
	dir, _ := writeDataset(t, 1)
	bad := "order_id,quantity\n1,2\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "shipments.csv"), []byte(bad), 0o644))
	_, store := newTestStore()

	results, err := NewUploader(store).UploadAll(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"shipments"}, Failed(results))

	for _, r := range results {
		if r.Table == "shipments" {
			assert.ErrorContains(t, r.Err, `missing date column "order_date"`)
		}
	}
}

func TestUploadFactDropsBadDates(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sales.csv")
	data := "sale_id,sale_date,total_amount\n" +
		"a,2024-07-02,1.00\n" +
		"b,not-a-date,2.00\n" +
		"c,2024-07-01 00:00:00,3.00\n" +
		"d,2024-07-02,4.00\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	client, store := newTestStore()

	keys, err := NewUploader(store).UploadFactPartitioned(ctx, path, "sales", "sale_date")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"raw/sales/dt=2024-07-01/sales_20240701.csv",
		"raw/sales/dt=2024-07-02/sales_20240702.csv",
	}, keys)

	obj, _ := client.Object(keys[1])
	assert.Equal(t, "2", obj.Metadata["row_count"])
	assert.Equal(t, "sale_id,sale_date,total_amount\na,2024-07-02,1.00\nd,2024-07-02,4.00\n", string(obj.Body))
}

func TestRunTrigger(t *testing.T) {
	ctx := context.Background()
	dir, ds := writeDataset(t, 0)
	client, store := newTestStore()

	for _, table := range []string{retail.TableProducts, retail.TableStores, retail.TableSuppliers} {
		_, err := NewUploader(store).UploadDimension(ctx, filepath.Join(dir, table+".csv"), table)
		require.NoError(t, err)
	}

	cfg := DefaultTriggerConfig()
	cfg.Date = time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC)

	result, err := RunTrigger(ctx, store, cfg)
	require.NoError(t, err)
	assert.Equal(t, "2025-01-13", result.Date)
	assert.Equal(t, testBucket, result.Bucket)
	assert.Equal(t, len(retail.ActiveProducts(ds.Products))*len(ds.Stores), result.InventoryRows)

	for _, table := range []string{retail.TableSales, retail.TableInventory, retail.TableShipments} {
		_, ok := client.Object(TriggerKey(table, cfg.Date))
		assert.True(t, ok, "missing %s partition", table)
	}

	out, err := json.Marshal(result)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"sales_rows":`)
	assert.Contains(t, string(out), `"bucket":"retail-lake"`)

	// Same seed and date reproduce the same partitions.
	before, _ := client.Object(TriggerKey(retail.TableSales, cfg.Date))
	_, err = RunTrigger(ctx, store, cfg)
	require.NoError(t, err)
	after, _ := client.Object(TriggerKey(retail.TableSales, cfg.Date))
	assert.Equal(t, string(before.Body), string(after.Body))
}

func saleIDs(t *testing.T, client *storage.MemoryClient, date time.Time) []string {
	t.Helper()
	obj, ok := client.Object(TriggerKey(retail.TableSales, date))
	require.True(t, ok, "missing sales partition for %s", retail.FormatDate(date))

	records, err := csv.NewReader(strings.NewReader(string(obj.Body))).ReadAll()
	require.NoError(t, err)
	require.NotEmpty(t, records)
	require.Equal(t, "sale_id", records[0][0])

	ids := make([]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		ids = append(ids, rec[0])
	}
	return ids
}

func TestDayStream(t *testing.T) {
	d := time.Date(2024, 7, 2, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, uint64(19906), DayStream(d))
	assert.Equal(t, DayStream(d), DayStream(d.Add(23*time.Hour)))
	assert.Equal(t, DayStream(d)+7, DayStream(d.AddDate(0, 0, 7)))
}

func TestRunTriggerDaysShareNoSaleIDs(t *testing.T) {
	ctx := context.Background()
	dir, _ := writeDataset(t, 0)
	client, store := newTestStore()

	for _, table := range []string{retail.TableProducts, retail.TableStores, retail.TableSuppliers} {
		_, err := NewUploader(store).UploadDimension(ctx, filepath.Join(dir, table+".csv"), table)
		require.NoError(t, err)
	}

	// Two Tuesdays in one month have identical demand multipliers.
	first := time.Date(2024, 7, 2, 0, 0, 0, 0, time.UTC)
	second := time.Date(2024, 7, 9, 0, 0, 0, 0, time.UTC)

	seen := make(map[string]bool)
	total := 0
	for _, date := range []time.Time{first, second} {
		cfg := DefaultTriggerConfig()
		cfg.Date = date
		_, err := RunTrigger(ctx, store, cfg)
		require.NoError(t, err)

		for _, id := range saleIDs(t, client, date) {
			assert.False(t, seen[id], "sale_id %s repeated on %s", id, retail.FormatDate(date))
			seen[id] = true
			total++
		}
	}
	require.Positive(t, total)

	a, _ := client.Object(TriggerKey(retail.TableInventory, first))
	b, _ := client.Object(TriggerKey(retail.TableInventory, second))
	assert.NotEqual(t,
		strings.ReplaceAll(string(a.Body), "2024-07-02", ""),
		strings.ReplaceAll(string(b.Body), "2024-07-09", ""))
}

func TestRunTriggerMissingDimension(t *testing.T) {
	_, store := newTestStore()

	cfg := DefaultTriggerConfig()
	_, err := RunTrigger(context.Background(), store, cfg)
	assert.Error(t, err)
}
