//-------------------------------------------------------------------------
//
// pgEdge Retail Data Generator
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package retail

import (
	"fmt"
	"sort"
	"time"

	"github.com/pgEdge/pgedge-retailgen/internal/datagen"
)

const (
	maxDelayDays      = 7
	shortfallRate     = 0.01
	maxShortfallUnits = 5
	duplicateRate     = 0.01
)

// ReconstructShipments derives shipments from the inventory history. An
// order is detected whenever quantity_on_order rises between consecutive
// snapshots of the same store and product. Shipments that would arrive
// after horizon are dropped, and about 1% of the result is appended again
// as duplicates.
func ReconstructShipments(f *datagen.Faker, products []Product, stores []Store, suppliers []Supplier, inventory []InventorySnapshot, horizon time.Time) ([]Shipment, error) {
	supplierByID := make(map[string]Supplier, len(suppliers))
	for _, s := range suppliers {
		supplierByID[s.SupplierID] = s
	}

	history := make(map[stockKey][]InventorySnapshot)
	for _, snap := range inventory {
		key := stockKey{storeID: snap.StoreID, productID: snap.ProductID}
		history[key] = append(history[key], snap)
	}

	shipments := make([]Shipment, 0)
	nextID := 1

	for _, store := range stores {
		for _, product := range ActiveProducts(products) {
			snaps := history[stockKey{storeID: store.StoreID, productID: product.ProductID}]
			if len(snaps) == 0 {
				continue
			}

			supplier, ok := supplierByID[product.SupplierID]
			if !ok {
				return nil, fmt.Errorf("product %s references unknown supplier %s",
					product.ProductID, product.SupplierID)
			}

			sort.SliceStable(snaps, func(i, j int) bool {
				return snaps[i].SnapshotDate.Before(snaps[j].SnapshotDate)
			})

			prevOnOrder := 0
			for _, snap := range snaps {
				if snap.QuantityOnOrder > prevOnOrder {
					shipment := newShipment(f, snap, supplier)
					if !shipment.ReceivedDate.After(horizon) {
						shipment.ShipmentID = ShipmentID(nextID)
						shipments = append(shipments, shipment)
						nextID++
					}
				}
				prevOnOrder = snap.QuantityOnOrder
			}
		}
	}

	return appendDuplicates(f, shipments), nil
}

func newShipment(f *datagen.Faker, snap InventorySnapshot, supplier Supplier) Shipment {
	expected := snap.SnapshotDate.AddDate(0, 0, supplier.LeadTimeDays)

	received := expected
	late := false
	if !f.Chance(supplier.OnTimeRate) {
		received = expected.AddDate(0, 0, f.Int(1, maxDelayDays))
		late = true
	}

	ordered := snap.QuantityOnOrder
	receivedQty := ordered
	if f.Chance(shortfallRate) {
		receivedQty = max(0, ordered-f.Int(1, maxShortfallUnits))
	}

	return Shipment{
		OrderDate:        snap.SnapshotDate,
		ExpectedDate:     expected,
		ReceivedDate:     received,
		StoreID:          snap.StoreID,
		ProductID:        snap.ProductID,
		SupplierID:       supplier.SupplierID,
		QuantityOrdered:  ordered,
		QuantityReceived: receivedQty,
		IsLate:           late,
	}
}

// appendDuplicates appends floor(1%) of the rows, sampled with replacement.
func appendDuplicates(f *datagen.Faker, shipments []Shipment) []Shipment {
	n := len(shipments)
	dups := int(float64(n) * duplicateRate)
	for i := 0; i < dups; i++ {
		shipments = append(shipments, shipments[f.Int(0, n-1)])
	}
	return shipments
}
