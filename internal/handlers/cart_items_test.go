package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"backend/internal/models"
)

func productLine(id primitive.ObjectID, qty int) models.CartItem {
	return models.CartItem{ItemType: models.CartItemTypeProduct, ProductID: &id, Quantity: qty}
}

func comboLine(id primitive.ObjectID, qty int) models.CartItem {
	return models.CartItem{ItemType: models.CartItemTypeCombo, ComboID: &id, Quantity: qty}
}

func TestUpsertCartLineReplacesQuantity(t *testing.T) {
	productID := primitive.NewObjectID()

	items, replaced := upsertCartLine(nil, productLine(productID, 2))
	require.False(t, replaced)
	require.Len(t, items, 1)

	// Adding the same product again replaces the quantity outright; it is
	// not summed. The client sends the new total.
	items, replaced = upsertCartLine(items, productLine(productID, 5))
	require.True(t, replaced)
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
}

func TestUpsertCartLineKeepsTypesSeparate(t *testing.T) {
	sharedID := primitive.NewObjectID()

	items, _ := upsertCartLine(nil, productLine(sharedID, 1))
	items, replaced := upsertCartLine(items, comboLine(sharedID, 3))

	assert.False(t, replaced, "a combo must not replace a product line sharing the id value")
	assert.Len(t, items, 2)
}

func TestRemoveCartLineFiltersByIDAndType(t *testing.T) {
	sharedID := primitive.NewObjectID()
	otherID := primitive.NewObjectID()

	items := []models.CartItem{
		productLine(sharedID, 1),
		comboLine(sharedID, 2),
		productLine(otherID, 4),
	}

	items, removed := removeCartLine(items, sharedID, models.CartItemTypeCombo)
	require.True(t, removed)
	require.Len(t, items, 2)

	for _, item := range items {
		if item.ItemType == models.CartItemTypeCombo {
			t.Fatal("combo line should have been removed")
		}
	}
}

func TestRemoveCartLineMissingItem(t *testing.T) {
	items := []models.CartItem{productLine(primitive.NewObjectID(), 1)}

	out, removed := removeCartLine(items, primitive.NewObjectID(), models.CartItemTypeProduct)
	assert.False(t, removed)
	assert.Len(t, out, 1)
}

func TestRepairCartItemsInfersProductType(t *testing.T) {
	productID := primitive.NewObjectID()
	legacy := models.CartItem{ProductID: &productID, Quantity: 2}

	items, changed := repairCartItems([]models.CartItem{legacy})
	require.True(t, changed)
	require.Len(t, items, 1)
	assert.Equal(t, models.CartItemTypeProduct, items[0].ItemType)
}

func TestRepairCartItemsInfersComboType(t *testing.T) {
	comboID := primitive.NewObjectID()
	legacy := models.CartItem{ComboID: &comboID, Quantity: 1}

	items, changed := repairCartItems([]models.CartItem{legacy})
	require.True(t, changed)
	require.Len(t, items, 1)
	assert.Equal(t, models.CartItemTypeCombo, items[0].ItemType)
}

func TestRepairCartItemsDropsEmptyReferences(t *testing.T) {
	productID := primitive.NewObjectID()

	items, changed := repairCartItems([]models.CartItem{
		{Quantity: 3}, // neither reference populated
		productLine(productID, 1),
	})

	require.True(t, changed)
	require.Len(t, items, 1)
	assert.Equal(t, &productID, items[0].ProductID)
}

func TestRepairCartItemsNoChangeForHealthyCart(t *testing.T) {
	items := []models.CartItem{
		productLine(primitive.NewObjectID(), 1),
		comboLine(primitive.NewObjectID(), 2),
	}

	out, changed := repairCartItems(items)
	assert.False(t, changed, "healthy carts must not trigger a persistence write")
	assert.Len(t, out, 2)
}
