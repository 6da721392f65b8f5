package handlers

import (
	"fmt"
	"strings"
	"time"

	"backend/internal/models"
)

const defaultCurrency = "INR"

type amountsRequest struct {
	Subtotal float64 `json:"subtotal"`
	Discount float64 `json:"discount"`
	Shipping float64 `json:"shipping"`
	Total    float64 `json:"total"`
	Currency string  `json:"currency"`
}

// buildAmounts shapes the caller-supplied breakdown into the persisted form.
// The figures are accepted AS GIVEN: this module does not recompute subtotal,
// discount, shipping or total from live prices, and deliberately does not
// cross-check that total = subtotal - discount + shipping. Price integrity at
// checkout rests on the caller having fetched current prices; see DESIGN.md.
func buildAmounts(req amountsRequest) (models.Amounts, error) {
	if req.Subtotal < 0 || req.Discount < 0 || req.Shipping < 0 || req.Total < 0 {
		return models.Amounts{}, fmt.Errorf("amounts must be zero or greater")
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = defaultCurrency
	}

	return models.Amounts{
		Subtotal: req.Subtotal,
		Discount: req.Discount,
		Shipping: req.Shipping,
		Total:    req.Total,
		Currency: currency,
	}, nil
}

// Coupon failure reasons surfaced to the caller.
type couponInvalidError struct {
	Reason string
}

func (e couponInvalidError) Error() string {
	return e.Reason
}

// couponDiscount checks a coupon's validity against a subtotal and returns
// the discount it grants. The discount never exceeds the subtotal.
func couponDiscount(coupon models.Coupon, subtotal float64, now time.Time) (float64, error) {
	if !coupon.IsActive {
		return 0, couponInvalidError{Reason: "coupon is not active"}
	}
	if coupon.ExpiresAt != nil && now.After(*coupon.ExpiresAt) {
		return 0, couponInvalidError{Reason: "coupon has expired"}
	}
	if subtotal < coupon.MinPurchase {
		return 0, couponInvalidError{
			Reason: fmt.Sprintf("minimum purchase of %.2f not met", coupon.MinPurchase),
		}
	}

	discount := 0.0
	switch coupon.DiscountType {
	case models.DiscountTypePercentage:
		discount = subtotal * coupon.Value / 100
	case models.DiscountTypeFixed:
		discount = coupon.Value
	default:
		return 0, couponInvalidError{Reason: "unknown coupon type"}
	}

	if discount > subtotal {
		discount = subtotal
	}
	if discount < 0 {
		discount = 0
	}
	return discount, nil
}

// snapshotCoupon freezes the applied coupon's terms onto the order.
func snapshotCoupon(coupon models.Coupon) *models.CouponSnapshot {
	return &models.CouponSnapshot{
		Code:  coupon.Code,
		Type:  coupon.DiscountType,
		Value: coupon.Value,
	}
}
