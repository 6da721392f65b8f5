package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order statuses. Mutated only by admin action; no automatic transitions.
const (
	OrderStatusCreated    = "created"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

func IsValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusCreated, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// OrderItem is a denormalized snapshot of a product or combo at purchase
// time. Later catalog changes never affect historical orders.
type OrderItem struct {
	ItemType  string              `bson:"itemType" json:"itemType"`
	ProductID *primitive.ObjectID `bson:"productId,omitempty" json:"productId,omitempty"`
	ComboID   *primitive.ObjectID `bson:"comboId,omitempty" json:"comboId,omitempty"`
	Name      string              `bson:"name" json:"name"`
	Image     string              `bson:"image,omitempty" json:"image,omitempty"`
	UnitPrice float64             `bson:"unitPrice" json:"unitPrice"`
	Quantity  int                 `bson:"quantity" json:"quantity"`
}

// OrderAddress is a copy of the shipping address, not a live reference.
type OrderAddress struct {
	Title   string `bson:"title" json:"title"`
	Detail  string `bson:"detail" json:"detail"`
	Note    string `bson:"note,omitempty" json:"note,omitempty"`
	Phone   string `bson:"phone,omitempty" json:"phone,omitempty"`
	City    string `bson:"city,omitempty" json:"city,omitempty"`
	Pincode string `bson:"pincode,omitempty" json:"pincode,omitempty"`
}

type OrderPayment struct {
	Method string `bson:"method" json:"method"`
	Status string `bson:"status" json:"status"`
}

// CouponSnapshot freezes the coupon terms applied at checkout.
type CouponSnapshot struct {
	Code  string  `bson:"code" json:"code"`
	Type  string  `bson:"type" json:"type"`
	Value float64 `bson:"value" json:"value"`
}

// Amounts is the breakdown persisted with every order. It is accepted from
// the caller as given; see the checkout handler for the trust boundary.
type Amounts struct {
	Subtotal float64 `bson:"subtotal" json:"subtotal"`
	Discount float64 `bson:"discount" json:"discount"`
	Shipping float64 `bson:"shipping" json:"shipping"`
	Total    float64 `bson:"total" json:"total"`
	Currency string  `bson:"currency" json:"currency"`
}

// Order is an immutable snapshot created at checkout. Only Status changes
// afterwards, and only through admin action.
type Order struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID    *primitive.ObjectID `bson:"userId" json:"userId"`
	Items     []OrderItem         `bson:"items" json:"items"`
	Address   OrderAddress        `bson:"address" json:"address"`
	Payment   OrderPayment        `bson:"payment" json:"payment"`
	Coupon    *CouponSnapshot     `bson:"coupon,omitempty" json:"coupon,omitempty"`
	Amounts   Amounts             `bson:"amounts" json:"amounts"`
	Status    string              `bson:"status" json:"status"`
	CreatedAt time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time           `bson:"updatedAt" json:"updatedAt"`
}
