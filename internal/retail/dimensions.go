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
	"time"

	"github.com/shopspring/decimal"

	"github.com/pgEdge/pgedge-retailgen/internal/datagen"
)

// categoryProfile holds the pricing attributes of a product category.
type categoryProfile struct {
	subcategories []string
	costMin       float64
	costMax       float64
	marginMin     float64
	marginMax     float64
}

var categoryProfiles = map[string]categoryProfile{
	CategoryElectronics: {
		subcategories: []string{"Laptops", "Phones", "Tablets", "Accessories"},
		costMin:       50,
		costMax:       800,
		marginMin:     1.2,
		marginMax:     1.5,
	},
	CategoryApparel: {
		subcategories: []string{"Shirts", "Pants", "Shoes", "Accessories"},
		costMin:       10,
		costMax:       120,
		marginMin:     1.8,
		marginMax:     2.5,
	},
	CategoryHomeGoods: {
		subcategories: []string{"Furniture", "Kitchenware", "Decor", "Bedding"},
		costMin:       15,
		costMax:       300,
		marginMin:     1.5,
		marginMax:     2.2,
	},
	CategoryGroceries: {
		subcategories: []string{"Produce", "Dairy", "Meat", "Packaged"},
		costMin:       2,
		costMax:       30,
		marginMin:     1.3,
		marginMax:     1.6,
	},
}

// Reference data
var (
	regions    = []string{"North", "South", "East", "West"}
	storeTypes = []string{"Flagship", "Standard", "Outlet"}
	cities     = []string{
		"Birmingham", "London", "Manchester", "Leeds", "Liverpool",
		"Bristol", "Newcastle", "Sheffield", "Edinburgh", "Glasgow",
	}
	countries = []string{"UK", "China", "Germany", "USA", "Italy", "India"}

	storesEpoch = time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC)
)

const (
	productActiveRate = 0.95
	storeRegionNull   = 0.15
)

// GenerateProducts produces count products spread evenly across the
// categories, with supplier ids drawn from 1..suppliers.
func GenerateProducts(f *datagen.Faker, count, suppliers int) []Product {
	if count <= 0 {
		return []Product{}
	}
	suppliers = max(1, suppliers)

	products := make([]Product, 0, count)
	perCategory := count / len(Categories)
	extra := count % len(Categories)

	id := 1
	for i, category := range Categories {
		profile := categoryProfiles[category]
		n := perCategory
		if i < extra {
			n++
		}

		for j := 0; j < n; j++ {
			subcategory := datagen.Choose(f, profile.subcategories)
			cost := roundMoney(f.Uniform(profile.costMin, profile.costMax))
			margin := f.Uniform(profile.marginMin, profile.marginMax)
			price := cost.Mul(decimal.NewFromFloat(margin)).Round(2)
			supplierID := SupplierID(f.Int(1, suppliers))

			products = append(products, Product{
				ProductID:   ProductID(id),
				ProductName: fmt.Sprintf("%s - %s #%d", category, subcategory, id),
				Category:    category,
				Subcategory: subcategory,
				UnitCost:    cost,
				UnitPrice:   price,
				SupplierID:  supplierID,
				IsActive:    f.Chance(productActiveRate),
			})
			id++
		}
	}

	return products
}

// GenerateStores produces count stores. Roughly 15% are missing a region.
func GenerateStores(f *datagen.Faker, count int) []Store {
	stores := make([]Store, 0, max(0, count))

	for i := 1; i <= count; i++ {
		region := datagen.Choose(f, regions)
		storeType := datagen.Choose(f, storeTypes)
		city := datagen.Choose(f, cities)

		var sqFootage int
		switch storeType {
		case "Flagship":
			sqFootage = f.Int(30000, 50000)
		case "Standard":
			sqFootage = f.Int(10000, 25000)
		default:
			sqFootage = f.Int(5000, 12000)
		}

		stores = append(stores, Store{
			StoreID:    StoreID(i),
			StoreName:  city + " " + storeType,
			Region:     f.NullableString(region, storeRegionNull),
			StoreType:  storeType,
			SqFootage:  sqFootage,
			OpenedDate: storesEpoch.AddDate(0, 0, f.Int(0, 1825)),
		})
	}

	return stores
}

// GenerateSuppliers produces count suppliers. Lead time depends on the
// supplier's country; on-time rate follows Beta(8, 2).
func GenerateSuppliers(f *datagen.Faker, count int) []Supplier {
	suppliers := make([]Supplier, 0, max(0, count))

	for i := 1; i <= count; i++ {
		country := datagen.Choose(f, countries)

		var leadTime int
		switch country {
		case "UK":
			leadTime = f.Int(3, 7)
		case "Germany", "Italy":
			leadTime = f.Int(7, 14)
		default:
			leadTime = f.Int(14, 21)
		}

		onTime := decimal.NewFromFloat(f.Beta(8, 2)).Round(3).InexactFloat64()

		suppliers = append(suppliers, Supplier{
			SupplierID:   SupplierID(i),
			SupplierName: f.Company(),
			LeadTimeDays: leadTime,
			OnTimeRate:   onTime,
			Country:      country,
		})
	}

	return suppliers
}

// ProductID formats a product identifier.
func ProductID(n int) string {
	return fmt.Sprintf("P%04d", n)
}

// StoreID formats a store identifier.
func StoreID(n int) string {
	return fmt.Sprintf("S%03d", n)
}

// SupplierID formats a supplier identifier.
func SupplierID(n int) string {
	return fmt.Sprintf("SUP%03d", n)
}

// ShipmentID formats a shipment identifier.
func ShipmentID(n int) string {
	return fmt.Sprintf("SHIP%05d", n)
}
