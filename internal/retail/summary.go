package retail

import (
	"time"

	"github.com/shopspring/decimal"
)

// Summary describes a generated dataset, including the counts of the
// intentional data quality defects.
type Summary struct {
	Products           int
	Stores             int
	Suppliers          int
	Sales              int
	Inventory          int
	Shipments          int
	TotalRevenue       decimal.Decimal
	AverageTransaction decimal.Decimal
	FirstSaleDate      time.Time
	LastSaleDate       time.Time

	NullDiscounts      int
	NegativeInventory  int
	NullRegions        int
	DuplicateShipments int
}

// Summary computes the dataset summary.
func (d *Dataset) Summary() Summary {
	s := Summary{
		Products:  len(d.Products),
		Stores:    len(d.Stores),
		Suppliers: len(d.Suppliers),
		Sales:     len(d.Sales),
		Inventory: len(d.Inventory),
		Shipments: len(d.Shipments),
	}

	for _, sale := range d.Sales {
		s.TotalRevenue = s.TotalRevenue.Add(sale.TotalAmount)
		if !sale.DiscountAmount.Valid {
			s.NullDiscounts++
		}
		if s.FirstSaleDate.IsZero() || sale.SaleDate.Before(s.FirstSaleDate) {
			s.FirstSaleDate = sale.SaleDate
		}
		if sale.SaleDate.After(s.LastSaleDate) {
			s.LastSaleDate = sale.SaleDate
		}
	}
	if len(d.Sales) > 0 {
		s.AverageTransaction = s.TotalRevenue.Div(decimal.NewFromInt(int64(len(d.Sales)))).Round(2)
	}

	for _, snap := range d.Inventory {
		if snap.QuantityOnHand < 0 {
			s.NegativeInventory++
		}
	}

	for _, store := range d.Stores {
		if store.Region == "" {
			s.NullRegions++
		}
	}

	s.DuplicateShipments = len(d.Shipments) - CountDistinctOrders(d.Shipments)
	return s
}

// CountDistinctOrders counts shipments that are distinct by order date,
// store and product.
func CountDistinctOrders(shipments []Shipment) int {
	type orderKey struct {
		date      string
		storeID   string
		productID string
	}
	seen := make(map[orderKey]struct{}, len(shipments))
	for _, s := range shipments {
		seen[orderKey{FormatDate(s.OrderDate), s.StoreID, s.ProductID}] = struct{}{}
	}
	return len(seen)
}

// Percent returns n as a percentage of total, or 0 for an empty total.
func Percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}
