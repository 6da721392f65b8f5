package handlers

import (
	"fmt"

	"backend/internal/models"
)

// resolvedComboItem is a combo line with its constituent's price resolved at
// calculation time.
type resolvedComboItem struct {
	UnitPrice float64
	Quantity  int
}

// comboPricing is the derived price triple persisted on a combo.
type comboPricing struct {
	OriginalPrice float64
	FinalPrice    float64
	Savings       float64
}

func isProductOnSale(price float64, saleEnabled bool, salePrice float64) bool {
	return saleEnabled && salePrice > 0 && salePrice < price
}

// effectiveProductPrice is the price a constituent contributes to a combo:
// the sale price when a valid sale is active, the regular price otherwise.
func effectiveProductPrice(price float64, saleEnabled bool, salePrice float64) float64 {
	if isProductOnSale(price, saleEnabled, salePrice) {
		return salePrice
	}
	return price
}

// computeComboPricing derives the price triple from resolved constituents.
// finalPrice never goes below zero regardless of the discount magnitude.
func computeComboPricing(items []resolvedComboItem, discountType string, discountValue float64) comboPricing {
	original := 0.0
	for _, item := range items {
		original += item.UnitPrice * float64(item.Quantity)
	}

	final := original
	switch discountType {
	case models.DiscountTypePercentage:
		final = original * (1 - discountValue/100)
	case models.DiscountTypeFixed:
		final = original - discountValue
	}
	if final < 0 {
		final = 0
	}

	return comboPricing{
		OriginalPrice: original,
		FinalPrice:    final,
		Savings:       original - final,
	}
}

func validateComboDiscount(discountType string, discountValue float64) error {
	if !models.IsValidDiscountType(discountType) {
		return fmt.Errorf("discountType must be %q or %q", models.DiscountTypePercentage, models.DiscountTypeFixed)
	}
	if discountValue < 0 {
		return fmt.Errorf("discountValue must be zero or greater")
	}
	if discountType == models.DiscountTypePercentage && discountValue > 100 {
		return fmt.Errorf("percentage discount cannot exceed 100")
	}
	return nil
}

func validateComboItems(items []models.ComboItem) error {
	if len(items) == 0 {
		return fmt.Errorf("at least one product is required")
	}
	seen := map[string]struct{}{}
	for _, item := range items {
		if item.Quantity <= 0 {
			return fmt.Errorf("quantity must be greater than zero")
		}
		key := item.ProductID.Hex()
		if _, ok := seen[key]; ok {
			return fmt.Errorf("duplicate product in combo: %s", key)
		}
		seen[key] = struct{}{}
	}
	return nil
}
