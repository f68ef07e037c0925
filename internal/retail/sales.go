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

	"github.com/shopspring/decimal"

	"github.com/pgEdge/pgedge-retailgen/internal/datagen"
)

// Base transactions per store per day for each category.
var categoryVelocity = map[string]float64{
	CategoryElectronics: 2,
	CategoryApparel:     8,
	CategoryHomeGoods:   4,
	CategoryGroceries:   20,
}

// Sales multipliers and probabilities.
const (
	weekendMultiplier   = 1.4
	peakSeasonMult      = 1.3
	offSeasonMult       = 0.8
	holidayMultiplier   = 1.5
	promoMultiplier     = 1.35
	promoDayRate        = 0.15
	promoDiscountRate   = 0.3
	promoDiscountMin    = 0.10
	promoDiscountMax    = 0.30
	missingDiscountRate = 0.01
)

var (
	saleQuantities      = []int{1, 2, 3}
	saleQuantityWeights = []int{70, 20, 10}
)

// DayMultiplier is 1.4 on Saturdays and Sundays, 1.0 otherwise.
func DayMultiplier(d time.Time) float64 {
	switch d.Weekday() {
	case time.Saturday, time.Sunday:
		return weekendMultiplier
	}
	return 1.0
}

// SeasonalMultiplier peaks in spring and autumn and dips in winter and summer.
func SeasonalMultiplier(d time.Time) float64 {
	switch d.Month() {
	case time.March, time.April, time.September, time.October:
		return peakSeasonMult
	case time.January, time.February, time.July, time.August:
		return offSeasonMult
	}
	return 1.0
}

// HolidayMultiplier is 1.5 in November and December.
func HolidayMultiplier(d time.Time) float64 {
	switch d.Month() {
	case time.November, time.December:
		return holidayMultiplier
	}
	return 1.0
}

// ExpectedTransactions returns the Poisson mean of the transaction count of
// one category in one store on the given day. Apparel takes the seasonal
// effect twice and only Electronics takes the holiday effect.
func ExpectedTransactions(category string, d time.Time, promo bool) float64 {
	expected := categoryVelocity[category] * DayMultiplier(d) * SeasonalMultiplier(d)

	switch category {
	case CategoryApparel:
		expected *= SeasonalMultiplier(d)
	case CategoryElectronics:
		expected *= HolidayMultiplier(d)
	}

	if promo {
		expected *= promoMultiplier
	}
	return expected
}

// GenerateSales simulates sales line items for every date, store and
// category. Each date is independently a promotion day with 15% probability.
func GenerateSales(f *datagen.Faker, products []Product, stores []Store, dates []time.Time) []Sale {
	byCategory := make(map[string][]Product, len(Categories))
	for _, p := range ActiveProducts(products) {
		byCategory[p.Category] = append(byCategory[p.Category], p)
	}

	progress := datagen.NewProgressReporter(TableSales, int64(len(dates)), 30)
	var sales []Sale

	for _, date := range dates {
		promo := f.Chance(promoDayRate)
		before := len(sales)

		for _, store := range stores {
			for _, category := range Categories {
				candidates := byCategory[category]
				n := f.Poisson(ExpectedTransactions(category, date, promo))
				if len(candidates) == 0 {
					continue
				}

				for i := 0; i < n; i++ {
					sales = append(sales, newSale(f, date, store, datagen.Choose(f, candidates), promo))
				}
			}
		}

		progress.Update(1, int64(len(sales)-before))
	}

	progress.Done()
	if sales == nil {
		sales = []Sale{}
	}
	return sales
}

func newSale(f *datagen.Faker, date time.Time, store Store, product Product, promo bool) Sale {
	quantity := datagen.ChooseWeighted(f, saleQuantities, saleQuantityWeights)
	gross := product.UnitPrice.Mul(decimal.NewFromInt(int64(quantity)))

	discount := decimal.NewNullDecimal(decimal.Zero)
	if promo && f.Chance(promoDiscountRate) {
		pct := f.Uniform(promoDiscountMin, promoDiscountMax)
		discount = decimal.NewNullDecimal(gross.Mul(decimal.NewFromFloat(pct)).Round(2))
	}

	// Missing discount is an intentional data quality defect.
	if f.Chance(missingDiscountRate) {
		discount = decimal.NullDecimal{}
	}

	total := gross
	if discount.Valid {
		total = total.Sub(discount.Decimal)
	}

	return Sale{
		SaleID:         f.UUID(),
		SaleDate:       date,
		StoreID:        store.StoreID,
		ProductID:      product.ProductID,
		QuantitySold:   quantity,
		UnitPrice:      product.UnitPrice,
		DiscountAmount: discount,
		TotalAmount:    total.Round(2),
	}
}
