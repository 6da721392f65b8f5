package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Offline payment methods (in-person sales).
const (
	OfflinePaymentCash = "cash"
	OfflinePaymentUPI  = "upi"
	OfflinePaymentCard = "card"
)

func IsValidOfflinePayment(s string) bool {
	return s == OfflinePaymentCash || s == OfflinePaymentUPI || s == OfflinePaymentCard
}

// OfflineCustomer holds contact details for an in-person sale; offline
// orders carry no address or user account.
type OfflineCustomer struct {
	Name  string `bson:"name" json:"name"`
	Phone string `bson:"phone,omitempty" json:"phone,omitempty"`
	Email string `bson:"email,omitempty" json:"email,omitempty"`
}

// OfflineOrder shares the amounts breakdown and item snapshot shape with
// Order but is created by an admin at the counter.
type OfflineOrder struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Customer  OfflineCustomer    `bson:"customer" json:"customer"`
	Items     []OrderItem        `bson:"items" json:"items"`
	Payment   OrderPayment       `bson:"payment" json:"payment"`
	Coupon    *CouponSnapshot    `bson:"coupon,omitempty" json:"coupon,omitempty"`
	Amounts   Amounts            `bson:"amounts" json:"amounts"`
	Status    string             `bson:"status" json:"status"`
	Note      string             `bson:"note,omitempty" json:"note,omitempty"`
	CreatedBy primitive.ObjectID `bson:"createdBy" json:"createdBy"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
