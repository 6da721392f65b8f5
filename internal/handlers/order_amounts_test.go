package handlers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backend/internal/models"
)

func TestBuildAmountsAcceptsInconsistentTotals(t *testing.T) {
	// Current contract: the breakdown is trusted from the caller. An
	// internally-inconsistent total (total != subtotal - discount +
	// shipping) is persisted as supplied, not rejected.
	amounts, err := buildAmounts(amountsRequest{
		Subtotal: 100,
		Discount: 10,
		Shipping: 5,
		Total:    9999,
	})

	require.NoError(t, err)
	assert.Equal(t, 9999.0, amounts.Total)
	assert.Equal(t, 100.0, amounts.Subtotal)
}

func TestBuildAmountsRejectsNegatives(t *testing.T) {
	_, err := buildAmounts(amountsRequest{Subtotal: -1})
	assert.Error(t, err)

	_, err = buildAmounts(amountsRequest{Total: -0.01})
	assert.Error(t, err)
}

func TestBuildAmountsDefaultsCurrency(t *testing.T) {
	amounts, err := buildAmounts(amountsRequest{Subtotal: 50, Total: 50})
	require.NoError(t, err)
	assert.Equal(t, defaultCurrency, amounts.Currency)

	amounts, err = buildAmounts(amountsRequest{Subtotal: 50, Total: 50, Currency: "usd"})
	require.NoError(t, err)
	assert.Equal(t, "USD", amounts.Currency)
}

func TestCouponDiscountPercentage(t *testing.T) {
	coupon := models.Coupon{
		Code:         "SAVE10",
		DiscountType: models.DiscountTypePercentage,
		Value:        10,
		IsActive:     true,
	}

	discount, err := couponDiscount(coupon, 1000, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 100.0, discount)
}

func TestCouponDiscountFixedClampsToSubtotal(t *testing.T) {
	coupon := models.Coupon{
		Code:         "FLAT500",
		DiscountType: models.DiscountTypeFixed,
		Value:        500,
		IsActive:     true,
	}

	discount, err := couponDiscount(coupon, 200, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 200.0, discount, "discount must not exceed the subtotal")
}

func TestCouponDiscountRejectsInactiveExpiredAndBelowMin(t *testing.T) {
	expired := time.Now().Add(-time.Hour)

	cases := []struct {
		name   string
		coupon models.Coupon
	}{
		{"inactive", models.Coupon{DiscountType: models.DiscountTypeFixed, Value: 10, IsActive: false}},
		{"expired", models.Coupon{DiscountType: models.DiscountTypeFixed, Value: 10, IsActive: true, ExpiresAt: &expired}},
		{"below min purchase", models.Coupon{DiscountType: models.DiscountTypeFixed, Value: 10, IsActive: true, MinPurchase: 500}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := couponDiscount(tc.coupon, 100, time.Now())
			require.Error(t, err)

			var invalid couponInvalidError
			assert.ErrorAs(t, err, &invalid)
		})
	}
}

func TestSnapshotCoupon(t *testing.T) {
	coupon := models.Coupon{
		Code:         "WELCOME",
		DiscountType: models.DiscountTypePercentage,
		Value:        15,
	}

	snap := snapshotCoupon(coupon)
	assert.Equal(t, "WELCOME", snap.Code)
	assert.Equal(t, models.DiscountTypePercentage, snap.Type)
	assert.Equal(t, 15.0, snap.Value)
}
