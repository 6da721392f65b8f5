package handlers

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"backend/internal/models"
)

type productNotFoundError struct {
	ProductID primitive.ObjectID
}

func (e productNotFoundError) Error() string {
	return "product not found: " + e.ProductID.Hex()
}

// resolveComboConstituents looks up every constituent product and returns the
// lines with current effective prices. Any missing or deleted product aborts
// the whole resolution; callers run this inside the same transaction as the
// combo write so no partial combo is ever persisted.
func resolveComboConstituents(ctx context.Context, db *mongo.Database, items []models.ComboItem) ([]resolvedComboItem, error) {
	resolved := make([]resolvedComboItem, 0, len(items))

	for _, item := range items {
		var product models.Product
		err := db.Collection("products").FindOne(ctx, bson.M{
			"_id":       item.ProductID,
			"isDeleted": bson.M{"$ne": true},
		}).Decode(&product)
		if err == mongo.ErrNoDocuments {
			return nil, productNotFoundError{ProductID: item.ProductID}
		}
		if err != nil {
			return nil, err
		}

		resolved = append(resolved, resolvedComboItem{
			UnitPrice: effectiveProductPrice(product.Price, product.SaleEnabled, product.SalePrice),
			Quantity:  item.Quantity,
		})
	}

	return resolved, nil
}

func parseComboItems(raw []comboItemRequest) ([]models.ComboItem, error) {
	items := make([]models.ComboItem, 0, len(raw))
	for _, entry := range raw {
		productID, err := primitive.ObjectIDFromHex(entry.ProductID)
		if err != nil {
			return nil, err
		}
		items = append(items, models.ComboItem{
			ProductID: productID,
			Quantity:  entry.Quantity,
		})
	}
	return items, nil
}

type comboItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
}
