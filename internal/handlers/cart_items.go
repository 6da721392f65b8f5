package handlers

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"backend/internal/models"
)

// cartLineRef extracts the reference id a line points at, based on its type.
func cartLineRef(item models.CartItem) *primitive.ObjectID {
	switch item.ItemType {
	case models.CartItemTypeProduct:
		return item.ProductID
	case models.CartItemTypeCombo:
		return item.ComboID
	}
	return nil
}

func cartLineMatches(item models.CartItem, refID primitive.ObjectID, itemType string) bool {
	if item.ItemType != itemType {
		return false
	}
	ref := cartLineRef(item)
	return ref != nil && *ref == refID
}

// upsertCartLine applies the add-to-cart semantics: when a line with the same
// item type and reference already exists its quantity is REPLACED with the
// incoming value (the client sends the new total, not a delta); otherwise the
// line is appended. Returns the new slice and whether an existing line was
// replaced.
func upsertCartLine(items []models.CartItem, incoming models.CartItem) ([]models.CartItem, bool) {
	ref := cartLineRef(incoming)
	if ref == nil {
		return items, false
	}

	for i := range items {
		if cartLineMatches(items[i], *ref, incoming.ItemType) {
			items[i].Quantity = incoming.Quantity
			return items, true
		}
	}

	return append(items, incoming), false
}

// removeCartLine filters by reference id AND item type, never by index, so a
// combo and a product that happen to share an id value cannot collide.
func removeCartLine(items []models.CartItem, refID primitive.ObjectID, itemType string) ([]models.CartItem, bool) {
	out := make([]models.CartItem, 0, len(items))
	removed := false
	for _, item := range items {
		if cartLineMatches(item, refID, itemType) {
			removed = true
			continue
		}
		out = append(out, item)
	}
	return out, removed
}

// repairCartItems backfills the itemType tag on legacy lines by inferring it
// from which reference field is populated, and drops lines with neither
// reference. The second return value reports whether anything changed and the
// repaired list must be persisted.
func repairCartItems(items []models.CartItem) ([]models.CartItem, bool) {
	out := make([]models.CartItem, 0, len(items))
	changed := false

	for _, item := range items {
		if item.ItemType == "" {
			switch {
			case item.ProductID != nil:
				item.ItemType = models.CartItemTypeProduct
				changed = true
			case item.ComboID != nil:
				item.ItemType = models.CartItemTypeCombo
				changed = true
			default:
				// No reference at all: unrecoverable row, drop it.
				changed = true
				continue
			}
		}
		if cartLineRef(item) == nil {
			changed = true
			continue
		}
		out = append(out, item)
	}

	return out, changed
}
