package retail

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgEdge/pgedge-retailgen/internal/datagen"
)

func testConfig(days int) Config {
	return Config{
		StartDate: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
		Days:      days,
		Products:  24,
		Stores:    4,
		Suppliers: 6,
	}
}

func generate(t *testing.T, cfg Config, seed uint64) *Dataset {
	t.Helper()
	g, err := NewGenerator(cfg, datagen.NewFakerWithSeed(seed))
	require.NoError(t, err)
	ds, err := g.Generate()
	require.NoError(t, err)
	return ds
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "2024-07-01", FormatDate(cfg.StartDate))
	assert.Equal(t, 180, cfg.Days)
	assert.Equal(t, 200, cfg.Products)
	assert.Equal(t, 20, cfg.Stores)
	assert.Equal(t, 30, cfg.Suppliers)
}

func TestNewGeneratorValidation(t *testing.T) {
	f := datagen.NewFakerWithSeed(1)

	tests := []struct {
		name    string
		cfg     Config
		faker   *datagen.Faker
		wantErr bool
	}{
		{"valid", testConfig(3), f, false},
		{"zero days", testConfig(0), f, false},
		{"negative days", testConfig(-1), f, true},
		{"missing start date", Config{Days: 1}, f, true},
		{"missing faker", testConfig(1), nil, true},
		{"products without suppliers", Config{StartDate: testConfig(1).StartDate, Products: 5, Stores: 1}, f, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGenerator(tt.cfg, tt.faker)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDateRange(t *testing.T) {
	cfg := testConfig(6)
	cfg.StartDate = time.Date(2024, 12, 29, 15, 30, 0, 0, time.UTC)

	g, err := NewGenerator(cfg, datagen.NewFakerWithSeed(1))
	require.NoError(t, err)

	dates := g.DateRange()
	require.Len(t, dates, 7)
	assert.Equal(t, "2024-12-29", FormatDate(dates[0]))
	assert.Equal(t, "2025-01-04", FormatDate(dates[6]))
	assert.Equal(t, dates[6], g.EndDate())
	assert.Zero(t, dates[0].Hour(), "start date is normalized to midnight")
}

func TestGenerateDeterministic(t *testing.T) {
	cfg := testConfig(10)
	a := generate(t, cfg, 42)
	b := generate(t, cfg, 42)

	for _, table := range Tables {
		var bufA, bufB bytes.Buffer
		require.NoError(t, a.WriteTable(&bufA, table.Name))
		require.NoError(t, b.WriteTable(&bufB, table.Name))
		assert.Equal(t, bufA.String(), bufB.String(), "table %s differs between runs", table.Name)
	}
}

func TestGenerateSeedsDiffer(t *testing.T) {
	cfg := testConfig(5)
	a := generate(t, cfg, 1)
	b := generate(t, cfg, 2)

	var bufA, bufB bytes.Buffer
	require.NoError(t, a.WriteTable(&bufA, TableSales))
	require.NoError(t, b.WriteTable(&bufB, TableSales))
	assert.NotEqual(t, bufA.String(), bufB.String())
}

func TestSingleDay(t *testing.T) {
	cfg := testConfig(0)
	ds := generate(t, cfg, 42)

	active := ActiveProducts(ds.Products)
	assert.Len(t, ds.Inventory, len(ds.Stores)*len(active))

	type pair struct{ store, product string }
	seen := make(map[pair]bool)
	for _, snap := range ds.Inventory {
		assert.True(t, snap.SnapshotDate.Equal(cfg.StartDate))
		key := pair{snap.StoreID, snap.ProductID}
		assert.False(t, seen[key], "duplicate snapshot for %v", key)
		seen[key] = true
	}

	for _, sale := range ds.Sales {
		assert.True(t, sale.SaleDate.Equal(cfg.StartDate))
	}
	for _, s := range ds.Shipments {
		assert.True(t, s.OrderDate.Equal(cfg.StartDate))
	}
}

func TestSevenDays(t *testing.T) {
	ds := generate(t, testConfig(6), 42)

	dates := make(map[string]bool)
	for _, sale := range ds.Sales {
		dates[FormatDate(sale.SaleDate)] = true
	}
	assert.Len(t, dates, 7)
}

func TestSaleTotals(t *testing.T) {
	ds := generate(t, testConfig(30), 7)
	require.NotEmpty(t, ds.Sales)

	for _, s := range ds.Sales {
		want := s.UnitPrice.Mul(decimal.NewFromInt(int64(s.QuantitySold)))
		if s.DiscountAmount.Valid {
			want = want.Sub(s.DiscountAmount.Decimal)
		}
		assert.True(t, want.Round(2).Equal(s.TotalAmount),
			"sale %s: total %s, want %s", s.SaleID, s.TotalAmount, want.Round(2))
		assert.Contains(t, []int{1, 2, 3}, s.QuantitySold)
		if s.DiscountAmount.Valid {
			assert.False(t, s.DiscountAmount.Decimal.IsNegative())
		}
	}
}

func TestInventoryNonNegative(t *testing.T) {
	ds := generate(t, testConfig(60), 3)

	negative := 0
	for _, snap := range ds.Inventory {
		assert.GreaterOrEqual(t, snap.QuantityOnOrder, 0)
		if snap.QuantityOnHand < 0 {
			assert.GreaterOrEqual(t, snap.QuantityOnHand, -negativeOnHandMaxAbs)
			negative++
		}
	}

	// Injected readings run at 0.5%; allow generous sampling slack.
	assert.Less(t, float64(negative), float64(len(ds.Inventory))*0.02)
}

func TestShipmentInvariants(t *testing.T) {
	cfg := testConfig(90)
	g, err := NewGenerator(cfg, datagen.NewFakerWithSeed(11))
	require.NoError(t, err)
	ds, err := g.Generate()
	require.NoError(t, err)
	require.NotEmpty(t, ds.Shipments)

	for _, s := range ds.Shipments {
		if s.IsLate {
			assert.True(t, s.ReceivedDate.After(s.ExpectedDate), "late shipment %s", s.ShipmentID)
		} else {
			assert.True(t, s.ReceivedDate.Equal(s.ExpectedDate), "on-time shipment %s", s.ShipmentID)
		}
		assert.LessOrEqual(t, s.QuantityReceived, s.QuantityOrdered)
		assert.GreaterOrEqual(t, s.QuantityReceived, 0)
		assert.False(t, s.ReceivedDate.After(g.EndDate()))
		assert.False(t, s.ExpectedDate.Before(s.OrderDate))
	}
}

func TestShipmentDuplicates(t *testing.T) {
	for _, seed := range []uint64{1, 2, 3} {
		ds := generate(t, testConfig(120), seed)

		distinct := CountDistinctOrders(ds.Shipments)
		assert.Equal(t, int(float64(distinct)*duplicateRate), len(ds.Shipments)-distinct)
	}
}

func TestGenerateEmptyDimensions(t *testing.T) {
	cfg := testConfig(2)
	cfg.Products = 0
	cfg.Stores = 0

	ds := generate(t, cfg, 42)
	assert.Empty(t, ds.Products)
	assert.Empty(t, ds.Stores)
	assert.Len(t, ds.Suppliers, cfg.Suppliers)
	assert.Empty(t, ds.Sales)
	assert.Empty(t, ds.Inventory)
	assert.Empty(t, ds.Shipments)
}

func TestSummary(t *testing.T) {
	ds := generate(t, testConfig(14), 5)
	s := ds.Summary()

	assert.Equal(t, len(ds.Sales), s.Sales)
	assert.Equal(t, len(ds.Inventory), s.Inventory)
	assert.Equal(t, "2024-07-01", FormatDate(s.FirstSaleDate))
	assert.Equal(t, "2024-07-15", FormatDate(s.LastSaleDate))

	total := decimal.Zero
	for _, sale := range ds.Sales {
		total = total.Add(sale.TotalAmount)
	}
	assert.True(t, total.Equal(s.TotalRevenue))
	assert.True(t, s.AverageTransaction.IsPositive())

	assert.Equal(t, 0.0, Percent(3, 0))
	assert.InDelta(t, 25.0, Percent(1, 4), 1e-9)
}

// stockReplay follows one stock key through its snapshots.
type stockReplay struct {
	known   bool
	onHand  int
	onOrder int
}

func TestInventoryFoldReplay(t *testing.T) {
	tests := []struct {
		name string
		seed uint64
		days int
	}{
		{"seed 1", 1, 120},
		{"seed 2", 2, 120},
		{"seed 3", 3, 90},
		{"seed 4", 4, 60},
		{"seed 5", 5, 120},
	}

	negativesFollowed := 0
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := generate(t, testConfig(tt.days), tt.seed)
			sold := dailySold(ds.Sales)
			replays := make(map[stockKey]*stockReplay)
			afterNegative := make(map[stockKey]bool)

			for _, snap := range ds.Inventory {
				key := stockKey{storeID: snap.StoreID, productID: snap.ProductID}
				r, ok := replays[key]
				if !ok {
					r = &stockReplay{}
					replays[key] = r
				}
				day := FormatDate(snap.SnapshotDate)

				if !r.known {
					// Start from the first reading that is not an injected defect
					if snap.QuantityOnHand >= 0 {
						r.known = true
						r.onHand = snap.QuantityOnHand
					}
					r.onOrder = snap.QuantityOnOrder
					continue
				}

				onHand := max(0, r.onHand-sold[day][key])
				onOrder := r.onOrder

				received := snap.LastRestockDate.Equal(snap.SnapshotDate)
				if received {
					require.Positive(t, onOrder, "%v received on %s with nothing on order", key, day)
					onHand += onOrder
					onOrder = 0
				}
				if onHand <= snap.ReorderPoint && onOrder == 0 {
					onOrder = snap.ReorderPoint * reorderFactor
				}

				require.Equal(t, onOrder, snap.QuantityOnOrder, "on order for %v on %s", key, day)
				if snap.QuantityOnHand < 0 {
					assert.GreaterOrEqual(t, snap.QuantityOnHand, -negativeOnHandMaxAbs)
					afterNegative[key] = true
				} else {
					require.Equal(t, onHand, snap.QuantityOnHand, "on hand for %v on %s", key, day)
					if afterNegative[key] {
						negativesFollowed++
						afterNegative[key] = false
					}
				}

				r.onHand = onHand
				r.onOrder = onOrder
			}
		})
	}

	assert.Positive(t, negativesFollowed, "no injected negative was followed by a true reading")
}

func TestInventoryRestockDateOnlyOnReceipt(t *testing.T) {
	ds := generate(t, testConfig(60), 11)

	last := make(map[stockKey]InventorySnapshot)
	for _, snap := range ds.Inventory {
		key := stockKey{storeID: snap.StoreID, productID: snap.ProductID}
		prev, ok := last[key]
		last[key] = snap
		if !ok {
			assert.True(t, snap.LastRestockDate.IsZero(), "first snapshot of %v has a restock date", key)
			continue
		}

		if snap.LastRestockDate.Equal(snap.SnapshotDate) {
			// A receipt clears the outstanding order before any new one is placed
			assert.Positive(t, prev.QuantityOnOrder)
			if snap.QuantityOnOrder > 0 {
				assert.Equal(t, snap.ReorderPoint*reorderFactor, snap.QuantityOnOrder)
			}
			continue
		}
		assert.Equal(t, prev.LastRestockDate, snap.LastRestockDate)
		if prev.QuantityOnOrder > 0 {
			assert.Equal(t, prev.QuantityOnOrder, snap.QuantityOnOrder, "order of %v changed without a receipt", key)
		}
	}
}
