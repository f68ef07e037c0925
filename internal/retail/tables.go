package retail

// Table names, matching the CSV file names and the raw schema.
const (
	TableProducts  = "products"
	TableStores    = "stores"
	TableSuppliers = "suppliers"
	TableSales     = "sales"
	TableInventory = "inventory"
	TableShipments = "shipments"
)

// TableKind distinguishes reference tables from time-stamped tables.
type TableKind string

const (
	// Dimension tables are uploaded as a single overwritten object.
	Dimension TableKind = "dimension"
	// Fact tables are uploaded partitioned by their date column.
	Fact TableKind = "fact"
)

// TableDefinition describes one output table.
type TableDefinition struct {
	// Name is the table name and CSV file stem.
	Name string

	// Kind is dimension or fact.
	Kind TableKind

	// Columns is the header, in file order.
	Columns []string

	// DateColumn is the partitioning column of a fact table.
	DateColumn string
}

// FileName returns the CSV file name of the table.
func (t TableDefinition) FileName() string {
	return t.Name + ".csv"
}

var (
	productColumns = []string{
		"product_id", "product_name", "category", "subcategory",
		"unit_cost", "unit_price", "supplier_id", "is_active",
	}
	storeColumns = []string{
		"store_id", "store_name", "region", "store_type", "sq_footage", "opened_date",
	}
	supplierColumns = []string{
		"supplier_id", "supplier_name", "lead_time_days", "on_time_rate", "country",
	}
	saleColumns = []string{
		"sale_id", "sale_date", "store_id", "product_id", "quantity_sold",
		"unit_price", "discount_amount", "total_amount",
	}
	inventoryColumns = []string{
		"snapshot_date", "store_id", "product_id", "quantity_on_hand",
		"quantity_on_order", "reorder_point", "last_restock_date",
	}
	shipmentColumns = []string{
		"shipment_id", "order_date", "expected_date", "received_date", "store_id",
		"product_id", "supplier_id", "quantity_ordered", "quantity_received", "is_late",
	}
)

// Tables lists every output table: dimensions first, then facts in
// generation order.
var Tables = []TableDefinition{
	{Name: TableProducts, Kind: Dimension, Columns: productColumns},
	{Name: TableStores, Kind: Dimension, Columns: storeColumns},
	{Name: TableSuppliers, Kind: Dimension, Columns: supplierColumns},
	{Name: TableSales, Kind: Fact, Columns: saleColumns, DateColumn: "sale_date"},
	{Name: TableInventory, Kind: Fact, Columns: inventoryColumns, DateColumn: "snapshot_date"},
	{Name: TableShipments, Kind: Fact, Columns: shipmentColumns, DateColumn: "order_date"},
}

// LookupTable returns the definition of the named table.
func LookupTable(name string) (TableDefinition, bool) {
	for _, t := range Tables {
		if t.Name == name {
			return t, true
		}
	}
	return TableDefinition{}, false
}
