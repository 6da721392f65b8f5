package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Coupon reuses the combo discount types (percentage, fixed).
type Coupon struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Code         string             `bson:"code" json:"code"`
	DiscountType string             `bson:"discountType" json:"discountType"`
	Value        float64            `bson:"value" json:"value"`
	MinPurchase  float64            `bson:"minPurchase" json:"minPurchase"`
	ExpiresAt    *time.Time         `bson:"expiresAt,omitempty" json:"expiresAt,omitempty"`
	IsActive     bool               `bson:"isActive" json:"isActive"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}
