package retail

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteDir(t *testing.T) {
	ds := generate(t, testConfig(2), 42)
	dir := filepath.Join(t.TempDir(), "out")

	paths, err := ds.WriteDir(dir)
	require.NoError(t, err)
	require.Len(t, paths, len(Tables))

	for _, table := range Tables {
		data, err := os.ReadFile(filepath.Join(dir, table.FileName()))
		require.NoError(t, err)

		lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
		assert.Equal(t, strings.Join(table.Columns, ","), lines[0], "header of %s", table.Name)
	}
}

func TestWriteTableUnknown(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, (&Dataset{}).WriteTable(&buf, "returns"))
}

func TestRecordFormatting(t *testing.T) {
	ds := generate(t, testConfig(30), 42)

	var buf bytes.Buffer
	require.NoError(t, ds.WriteTable(&buf, TableSales))
	for _, s := range ds.Sales {
		rec := s.Record()
		assert.Len(t, rec, len(saleColumns))
		if !s.DiscountAmount.Valid {
			assert.Empty(t, rec[6])
		}
	}

	for _, snap := range ds.Inventory {
		rec := snap.Record()
		if snap.LastRestockDate.IsZero() {
			assert.Empty(t, rec[6])
		}
	}

	for _, store := range ds.Stores {
		assert.Len(t, store.Record(), len(storeColumns))
	}
}

func TestDimensionRoundTrip(t *testing.T) {
	ds := generate(t, testConfig(0), 42)

	var buf bytes.Buffer
	require.NoError(t, ds.WriteTable(&buf, TableProducts))
	products, err := ReadProducts(&buf)
	require.NoError(t, err)
	require.Len(t, products, len(ds.Products))
	for i, want := range ds.Products {
		got := products[i]
		assert.Equal(t, want.ProductID, got.ProductID)
		assert.Equal(t, want.ProductName, got.ProductName)
		assert.Equal(t, want.Category, got.Category)
		assert.Equal(t, want.Subcategory, got.Subcategory)
		assert.Equal(t, want.SupplierID, got.SupplierID)
		assert.Equal(t, want.IsActive, got.IsActive)
		assert.True(t, want.UnitCost.Equal(got.UnitCost))
		assert.True(t, want.UnitPrice.Equal(got.UnitPrice))
	}

	buf.Reset()
	require.NoError(t, ds.WriteTable(&buf, TableStores))
	stores, err := ReadStores(&buf)
	require.NoError(t, err)
	require.Len(t, stores, len(ds.Stores))
	for i, want := range ds.Stores {
		got := stores[i]
		assert.Equal(t, want.StoreID, got.StoreID)
		assert.Equal(t, want.StoreName, got.StoreName)
		assert.Equal(t, want.Region, got.Region)
		assert.Equal(t, want.StoreType, got.StoreType)
		assert.Equal(t, want.SqFootage, got.SqFootage)
		assert.True(t, want.OpenedDate.Equal(got.OpenedDate))
	}

	buf.Reset()
	require.NoError(t, ds.WriteTable(&buf, TableSuppliers))
	suppliers, err := ReadSuppliers(&buf)
	require.NoError(t, err)
	assert.Equal(t, ds.Suppliers, suppliers)
}

func TestReadProductsAlias(t *testing.T) {
	input := "product_id,category,sub_category,unit_price,supplier_id,is_active\n" +
		"P0001,Groceries,Dairy,3.50,SUP001,True\n" +
		"P0002,Apparel,Shoes,45,SUP002,false\n"

	products, err := ReadProducts(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, products, 2)

	assert.Equal(t, "Dairy", products[0].Subcategory)
	assert.True(t, products[0].IsActive)
	assert.Equal(t, "3.5", products[0].UnitPrice.String())
	assert.False(t, products[1].IsActive)
}

func TestReadDimensionErrors(t *testing.T) {
	tests := []struct {
		name    string
		read    func(string) error
		input   string
		wantErr string
	}{
		{
			name:    "products missing supplier column",
			read:    readProductsErr,
			input:   "product_id,category,unit_price,is_active\nP0001,Groceries,1.00,true\n",
			wantErr: `missing required column "supplier_id"`,
		},
		{
			name:    "products bad price",
			read:    readProductsErr,
			input:   "product_id,category,unit_price,supplier_id,is_active\nP0001,Groceries,abc,SUP001,true\n",
			wantErr: "line 2: invalid unit_price",
		},
		{
			name:    "products bad flag",
			read:    readProductsErr,
			input:   "product_id,category,unit_price,supplier_id,is_active\nP0001,Groceries,1.00,SUP001,maybe\n",
			wantErr: "invalid is_active",
		},
		{
			name:    "empty file",
			read:    readStoresErr,
			input:   "",
			wantErr: "missing header row",
		},
		{
			name:    "stores missing id",
			read:    readStoresErr,
			input:   "store_name,region\nLeeds Outlet,North\n",
			wantErr: `missing required column "store_id"`,
		},
		{
			name:    "stores bad date",
			read:    readStoresErr,
			input:   "store_id,opened_date\nS001,01/02/2020\n",
			wantErr: "invalid opened_date",
		},
		{
			name:    "suppliers missing rate",
			read:    readSuppliersErr,
			input:   "supplier_id,lead_time_days\nSUP001,5\n",
			wantErr: `missing required column "on_time_rate"`,
		},
		{
			name:    "suppliers bad lead time",
			read:    readSuppliersErr,
			input:   "supplier_id,lead_time_days,on_time_rate\nSUP001,soon,0.9\n",
			wantErr: "invalid lead_time_days",
		},
		{
			name:    "suppliers empty lead time",
			read:    readSuppliersErr,
			input:   "supplier_id,lead_time_days,on_time_rate\nSUP001,,0.9\n",
			wantErr: `line 2: invalid lead_time_days "": value is required`,
		},
		{
			name:    "products empty price",
			read:    readProductsErr,
			input:   "product_id,category,unit_price,supplier_id,is_active\nP0001,Groceries, ,SUP001,true\n",
			wantErr: `line 2: invalid unit_price "": value is required`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.read(tt.input)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestReadStoresEmptyOptionalNumber(t *testing.T) {
	stores, err := ReadStores(strings.NewReader("store_id,sq_footage\nS001,\n"))
	require.NoError(t, err)
	require.Len(t, stores, 1)
	assert.Equal(t, 0, stores[0].SqFootage)
}

func TestReadSuppliersFloatLeadTime(t *testing.T) {
	suppliers, err := ReadSuppliers(strings.NewReader("supplier_id,lead_time_days,on_time_rate\nSUP001,7.0,0.85\n"))
	require.NoError(t, err)
	require.Len(t, suppliers, 1)
	assert.Equal(t, 7, suppliers[0].LeadTimeDays)
	assert.Equal(t, 0.85, suppliers[0].OnTimeRate)
}

func readProductsErr(s string) error {
	_, err := ReadProducts(strings.NewReader(s))
	return err
}

func readStoresErr(s string) error {
	_, err := ReadStores(strings.NewReader(s))
	return err
}

func readSuppliersErr(s string) error {
	_, err := ReadSuppliers(strings.NewReader(s))
	return err
}
