package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Combo discount types.
const (
	DiscountTypePercentage = "percentage"
	DiscountTypeFixed      = "fixed"
)

func IsValidDiscountType(s string) bool {
	return s == DiscountTypePercentage || s == DiscountTypeFixed
}

// ComboItem references a constituent product. Prices are never stored here;
// they are resolved at calculation time.
type ComboItem struct {
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	Quantity  int                `bson:"quantity" json:"quantity"`
}

// Combo is a bundle of products sold as one purchasable unit.
// OriginalPrice, FinalPrice and Savings are derived from the constituent
// products and the discount; they are rewritten on every create, update and
// fix-prices call rather than patched field by field.
type Combo struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Title         string              `bson:"title" json:"title"`
	Slug          string              `bson:"slug" json:"slug"`
	Description   string              `bson:"description,omitempty" json:"description,omitempty"`
	Items         []ComboItem         `bson:"items" json:"items"`
	BannerImage   string              `bson:"bannerImage,omitempty" json:"bannerImage,omitempty"`
	GalleryImages []string            `bson:"galleryImages" json:"galleryImages"`
	DiscountType  string              `bson:"discountType" json:"discountType"`
	DiscountValue float64             `bson:"discountValue" json:"discountValue"`
	OriginalPrice float64             `bson:"originalPrice" json:"originalPrice"`
	FinalPrice    float64             `bson:"finalPrice" json:"finalPrice"`
	Savings       float64             `bson:"savings" json:"savings"`
	Stock         int                 `bson:"stock" json:"stock"`
	IsActive      bool                `bson:"isActive" json:"isActive"`
	IsFeatured    bool                `bson:"isFeatured" json:"isFeatured"`
	StartsAt      *time.Time          `bson:"startsAt,omitempty" json:"startsAt,omitempty"`
	EndsAt        *time.Time          `bson:"endsAt,omitempty" json:"endsAt,omitempty"`
	CouponID      *primitive.ObjectID `bson:"couponId,omitempty" json:"couponId,omitempty"`
	CreatedAt     time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time           `bson:"updatedAt" json:"updatedAt"`
}
