package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product statuses. Stored as plain strings; handlers validate membership.
const (
	ProductStatusDraft      = "draft"
	ProductStatusActive     = "active"
	ProductStatusInactive   = "inactive"
	ProductStatusOutOfStock = "out_of_stock"
)

func IsValidProductStatus(s string) bool {
	switch s {
	case ProductStatusDraft, ProductStatusActive, ProductStatusInactive, ProductStatusOutOfStock:
		return true
	}
	return false
}

type Product struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name        string               `bson:"name" json:"name"`
	SKU         string               `bson:"sku,omitempty" json:"sku,omitempty"`
	Price       float64              `bson:"price" json:"price"`
	SaleEnabled bool                 `bson:"saleEnabled" json:"saleEnabled"`
	SalePrice   float64              `bson:"salePrice" json:"salePrice"`
	IsOnSale    bool                 `bson:"-" json:"isOnSale"`
	CategoryIDs []primitive.ObjectID `bson:"categoryIds" json:"categoryIds"`
	Description string               `bson:"description,omitempty" json:"description,omitempty"`
	Images      []string             `bson:"images" json:"images"`
	Tags        StringList           `bson:"tags" json:"tags"`
	Stock       int                  `bson:"stock" json:"stock"`
	InStock     bool                 `bson:"-" json:"inStock"`
	Status      string               `bson:"status" json:"status"`
	IsDeleted   bool                 `bson:"isDeleted" json:"isDeleted,omitempty"`
	DeletedAt   *time.Time           `bson:"deletedAt,omitempty" json:"deletedAt,omitempty"`
	CreatedAt   time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt" json:"updatedAt"`
}
