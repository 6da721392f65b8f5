package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backend/internal/models"
)

func TestComputeComboPricingPercentage(t *testing.T) {
	pricing := computeComboPricing([]resolvedComboItem{
		{UnitPrice: 1000, Quantity: 1},
	}, models.DiscountTypePercentage, 10)

	assert.Equal(t, 1000.0, pricing.OriginalPrice)
	assert.Equal(t, 900.0, pricing.FinalPrice)
	assert.Equal(t, 100.0, pricing.Savings)
}

func TestComputeComboPricingFixedClampsAtZero(t *testing.T) {
	pricing := computeComboPricing([]resolvedComboItem{
		{UnitPrice: 500, Quantity: 1},
	}, models.DiscountTypeFixed, 600)

	assert.Equal(t, 500.0, pricing.OriginalPrice)
	assert.Equal(t, 0.0, pricing.FinalPrice, "finalPrice must clamp at zero")
	assert.Equal(t, 500.0, pricing.Savings)
}

func TestComputeComboPricingMultipleConstituents(t *testing.T) {
	// p1 qty=2 @100, p2 qty=1 @250, 20% off: 450 -> 360, savings 90.
	pricing := computeComboPricing([]resolvedComboItem{
		{UnitPrice: 100, Quantity: 2},
		{UnitPrice: 250, Quantity: 1},
	}, models.DiscountTypePercentage, 20)

	assert.Equal(t, 450.0, pricing.OriginalPrice)
	assert.Equal(t, 360.0, pricing.FinalPrice)
	assert.Equal(t, 90.0, pricing.Savings)
}

func TestComputeComboPricingSavingsIdentity(t *testing.T) {
	cases := []struct {
		name          string
		items         []resolvedComboItem
		discountType  string
		discountValue float64
	}{
		{"percentage", []resolvedComboItem{{UnitPrice: 333, Quantity: 3}}, models.DiscountTypePercentage, 15},
		{"fixed", []resolvedComboItem{{UnitPrice: 120, Quantity: 2}}, models.DiscountTypeFixed, 40},
		{"fixed overshoot", []resolvedComboItem{{UnitPrice: 10, Quantity: 1}}, models.DiscountTypeFixed, 9999},
		{"zero discount", []resolvedComboItem{{UnitPrice: 75, Quantity: 4}}, models.DiscountTypePercentage, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pricing := computeComboPricing(tc.items, tc.discountType, tc.discountValue)
			assert.GreaterOrEqual(t, pricing.FinalPrice, 0.0)
			assert.Equal(t, pricing.OriginalPrice-pricing.FinalPrice, pricing.Savings)
		})
	}
}

func TestComputeComboPricingUsesEffectivePrice(t *testing.T) {
	// A constituent on sale contributes its sale price, not the regular one.
	unit := effectiveProductPrice(200, true, 150)
	require.Equal(t, 150.0, unit)

	pricing := computeComboPricing([]resolvedComboItem{
		{UnitPrice: unit, Quantity: 2},
	}, models.DiscountTypeFixed, 50)

	assert.Equal(t, 300.0, pricing.OriginalPrice)
	assert.Equal(t, 250.0, pricing.FinalPrice)
}

func TestEffectiveProductPriceIgnoresDisabledSale(t *testing.T) {
	assert.Equal(t, 100.0, effectiveProductPrice(100, false, 75))
	assert.Equal(t, 100.0, effectiveProductPrice(100, true, 0))
	assert.Equal(t, 100.0, effectiveProductPrice(100, true, 120))
}

func TestValidateComboDiscount(t *testing.T) {
	require.NoError(t, validateComboDiscount(models.DiscountTypePercentage, 20))
	require.NoError(t, validateComboDiscount(models.DiscountTypeFixed, 0))

	assert.Error(t, validateComboDiscount("bogus", 10))
	assert.Error(t, validateComboDiscount(models.DiscountTypePercentage, 101))
	assert.Error(t, validateComboDiscount(models.DiscountTypeFixed, -1))
}
