package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backend/internal/models"
)

func addressList(ids ...string) []models.Address {
	out := make([]models.Address, 0, len(ids))
	for _, id := range ids {
		out = append(out, models.Address{ID: id, Title: "addr-" + id})
	}
	return out
}

func defaultIDs(addresses []models.Address) []string {
	out := []string{}
	for _, a := range addresses {
		if a.IsDefault {
			out = append(out, a.ID)
		}
	}
	return out
}

func TestApplyDefaultFlagFirstAddressAlwaysDefault(t *testing.T) {
	addresses := applyDefaultFlag(addressList("a"), "a", false)
	assert.Equal(t, []string{"a"}, defaultIDs(addresses))
}

func TestApplyDefaultFlagClearsOthers(t *testing.T) {
	addresses := addressList("a", "b", "c")
	addresses[0].IsDefault = true

	addresses = applyDefaultFlag(addresses, "c", true)
	assert.Equal(t, []string{"c"}, defaultIDs(addresses))
}

func TestApplyDefaultFlagNoChangeWhenNotRequested(t *testing.T) {
	addresses := addressList("a", "b")
	addresses[0].IsDefault = true

	addresses = applyDefaultFlag(addresses, "b", false)
	assert.Equal(t, []string{"a"}, defaultIDs(addresses))
}

func TestValidateCouponRequestBody(t *testing.T) {
	valid := couponRequest{Code: "SAVE10", DiscountType: models.DiscountTypePercentage, Value: 10}
	_, ok := validateCouponRequestBody(valid)
	require.True(t, ok)

	cases := []couponRequest{
		{Code: "X", DiscountType: "bogus", Value: 10},
		{Code: "X", DiscountType: models.DiscountTypePercentage, Value: 0},
		{Code: "X", DiscountType: models.DiscountTypePercentage, Value: 150},
		{Code: "X", DiscountType: models.DiscountTypeFixed, Value: -5},
		{Code: "X", DiscountType: models.DiscountTypeFixed, Value: 50, MinPurchase: -1},
	}
	for _, tc := range cases {
		msg, ok := validateCouponRequestBody(tc)
		assert.False(t, ok)
		assert.NotEmpty(t, msg)
	}
}

func TestNormalizeCouponCode(t *testing.T) {
	assert.Equal(t, "SAVE10", normalizeCouponCode("  save10 "))
}
