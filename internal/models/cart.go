package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Cart line item types.
const (
	CartItemTypeProduct = "product"
	CartItemTypeCombo   = "combo"
)

// CartItem holds exactly one of ProductID or ComboID, discriminated by
// ItemType. Legacy documents may lack ItemType; the cart handlers repair
// those on read by inferring the type from which reference is populated.
type CartItem struct {
	ItemType  string              `bson:"itemType,omitempty" json:"itemType"`
	ProductID *primitive.ObjectID `bson:"productId,omitempty" json:"productId,omitempty"`
	ComboID   *primitive.ObjectID `bson:"comboId,omitempty" json:"comboId,omitempty"`
	Quantity  int                 `bson:"quantity" json:"quantity"`
	AddedAt   time.Time           `bson:"addedAt" json:"addedAt"`
}

// Cart is a one-per-user singleton keyed by UserID.
type Cart struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Items     []CartItem         `bson:"items" json:"items"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
