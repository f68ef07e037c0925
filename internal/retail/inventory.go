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
	"time"

	"github.com/pgEdge/pgedge-retailgen/internal/datagen"
)

const (
	receiveRate          = 0.1
	reorderFactor        = 3
	negativeOnHandRate   = 0.005
	negativeOnHandMaxAbs = 5
)

// stockKey identifies one product in one store.
type stockKey struct {
	storeID   string
	productID string
}

// stockState is the live simulation state of a stockKey.
type stockState struct {
	onHand       int
	onOrder      int
	reorderPoint int
	lastRestock  time.Time
}

// initialStock draws the opening on-hand quantity and reorder point. Fast
// moving categories start with more stock relative to their reorder point.
func initialStock(f *datagen.Faker, category string) stockState {
	var onHand, reorderPoint int
	switch category {
	case CategoryGroceries:
		onHand = f.Int(50, 150)
		reorderPoint = f.Int(20, 40)
	case CategoryApparel:
		onHand = f.Int(30, 80)
		reorderPoint = f.Int(15, 30)
	case CategoryHomeGoods:
		onHand = f.Int(20, 50)
		reorderPoint = f.Int(10, 20)
	default:
		onHand = f.Int(10, 30)
		reorderPoint = f.Int(5, 10)
	}
	return stockState{onHand: onHand, reorderPoint: reorderPoint}
}

// GenerateInventory walks the dates in order and records one snapshot per
// date, store and active product. Each day's sales are removed from stock,
// an outstanding order may arrive (10% per day), and an order of three
// times the reorder point is placed when stock falls to the reorder point
// with nothing on order.
func GenerateInventory(f *datagen.Faker, products []Product, stores []Store, sales []Sale, dates []time.Time) []InventorySnapshot {
	active := ActiveProducts(products)

	keys := make([]stockKey, 0, len(stores)*len(active))
	state := make(map[stockKey]*stockState, len(stores)*len(active))
	for _, store := range stores {
		for _, p := range active {
			key := stockKey{storeID: store.StoreID, productID: p.ProductID}
			s := initialStock(f, p.Category)
			keys = append(keys, key)
			state[key] = &s
		}
	}

	sold := dailySold(sales)
	progress := datagen.NewProgressReporter(TableInventory, int64(len(dates)), 30)
	snapshots := make([]InventorySnapshot, 0, len(keys)*len(dates))

	for _, date := range dates {
		daySold := sold[FormatDate(date)]

		for _, key := range keys {
			s := state[key]

			if qty := daySold[key]; qty > 0 {
				s.onHand = max(0, s.onHand-qty)
			}

			if s.onOrder > 0 && f.Chance(receiveRate) {
				s.onHand += s.onOrder
				s.onOrder = 0
				s.lastRestock = date
			}

			if s.onHand <= s.reorderPoint && s.onOrder == 0 {
				s.onOrder = s.reorderPoint * reorderFactor
			}

			// A negative reading is a recorded system error only; the live
			// state carried into the next day is untouched.
			recorded := s.onHand
			if f.Chance(negativeOnHandRate) {
				recorded = -f.Int(1, negativeOnHandMaxAbs)
			}

			snapshots = append(snapshots, InventorySnapshot{
				SnapshotDate:    date,
				StoreID:         key.storeID,
				ProductID:       key.productID,
				QuantityOnHand:  recorded,
				QuantityOnOrder: s.onOrder,
				ReorderPoint:    s.reorderPoint,
				LastRestockDate: s.lastRestock,
			})
		}

		progress.Update(1, int64(len(keys)))
	}

	progress.Done()
	return snapshots
}

// dailySold sums quantity sold per date and stockKey.
func dailySold(sales []Sale) map[string]map[stockKey]int {
	sold := make(map[string]map[stockKey]int)
	for _, s := range sales {
		day := FormatDate(s.SaleDate)
		if sold[day] == nil {
			sold[day] = make(map[stockKey]int)
		}
		sold[day][stockKey{storeID: s.StoreID, productID: s.ProductID}] += s.QuantitySold
	}
	return sold
}
