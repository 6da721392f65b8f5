package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/models"
)

type couponRequest struct {
	Code         string     `json:"code" binding:"required"`
	DiscountType string     `json:"discountType" binding:"required"`
	Value        float64    `json:"value"`
	MinPurchase  float64    `json:"minPurchase"`
	ExpiresAt    *time.Time `json:"expiresAt"`
	IsActive     *bool      `json:"isActive"`
}

type validateCouponRequest struct {
	Code     string  `json:"code" binding:"required"`
	Subtotal float64 `json:"subtotal"`
}

func normalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func validateCouponRequestBody(req couponRequest) (string, bool) {
	if req.DiscountType != models.DiscountTypePercentage && req.DiscountType != models.DiscountTypeFixed {
		return "discountType must be percentage or fixed", false
	}
	if req.Value <= 0 {
		return "value must be greater than zero", false
	}
	if req.DiscountType == models.DiscountTypePercentage && req.Value > 100 {
		return "percentage value cannot exceed 100", false
	}
	if req.MinPurchase < 0 {
		return "minPurchase cannot be negative", false
	}
	return "", true
}

// CreateCoupon registers a new coupon. Codes are stored uppercase and are
// unique.
func CreateCoupon(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/admin/coupons"
		defer handlePanic(c, route)

		var req couponRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid request body", err)
			return
		}
		if msg, ok := validateCouponRequestBody(req); !ok {
			respondError(c, http.StatusBadRequest, route, msg, nil)
			return
		}

		isActive := true
		if req.IsActive != nil {
			isActive = *req.IsActive
		}

		coupon := models.Coupon{
			Code:         normalizeCouponCode(req.Code),
			DiscountType: req.DiscountType,
			Value:        req.Value,
			MinPurchase:  req.MinPurchase,
			ExpiresAt:    req.ExpiresAt,
			IsActive:     isActive,
			CreatedAt:    time.Now(),
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("coupons").InsertOne(ctx, coupon)
		if mongo.IsDuplicateKeyError(err) {
			respondError(c, http.StatusBadRequest, route, "a coupon with this code already exists", nil)
			return
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error", err)
			return
		}

		coupon.ID = res.InsertedID.(primitive.ObjectID)
		respondData(c, http.StatusCreated, coupon)
	}
}

func GetCoupons(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/admin/coupons"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
		cursor, err := db.Collection("coupons").Find(ctx, bson.M{}, opts)
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error", err)
			return
		}
		defer cursor.Close(ctx)

		coupons := make([]models.Coupon, 0)
		if err := cursor.All(ctx, &coupons); err != nil {
			respondError(c, http.StatusInternalServerError, route, "decode error", err)
			return
		}

		respondData(c, http.StatusOK, coupons)
	}
}

// UpdateCoupon replaces a coupon's terms. The code itself is immutable; orders
// reference coupons by code in their snapshots.
func UpdateCoupon(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/admin/coupons/:id"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid id", err)
			return
		}

		var req couponRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid request body", err)
			return
		}
		if msg, ok := validateCouponRequestBody(req); !ok {
			respondError(c, http.StatusBadRequest, route, msg, nil)
			return
		}

		updateSet := bson.M{
			"discountType": req.DiscountType,
			"value":        req.Value,
			"minPurchase":  req.MinPurchase,
			"expiresAt":    req.ExpiresAt,
		}
		if req.IsActive != nil {
			updateSet["isActive"] = *req.IsActive
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var updated models.Coupon
		err = db.Collection("coupons").FindOneAndUpdate(ctx,
			bson.M{"_id": id},
			bson.M{"$set": updateSet},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&updated)
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, route, "coupon not found", nil)
			return
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error", err)
			return
		}

		respondData(c, http.StatusOK, updated)
	}
}

func DeleteCoupon(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/admin/coupons/:id"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid id", err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		result, err := db.Collection("coupons").DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error", err)
			return
		}
		if result.DeletedCount == 0 {
			respondError(c, http.StatusNotFound, route, "coupon not found", nil)
			return
		}

		respondMessage(c, http.StatusOK, "coupon deleted")
	}
}

// ValidateCoupon lets the storefront preview a coupon's discount against the
// current cart subtotal before checkout.
func ValidateCoupon(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/coupons/validate"
		defer handlePanic(c, route)

		var req validateCouponRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid request body", err)
			return
		}
		if req.Subtotal < 0 {
			respondError(c, http.StatusBadRequest, route, "subtotal cannot be negative", nil)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var coupon models.Coupon
		err := db.Collection("coupons").
			FindOne(ctx, bson.M{"code": normalizeCouponCode(req.Code)}).
			Decode(&coupon)
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, route, "coupon not found", nil)
			return
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error", err)
			return
		}

		discount, err := couponDiscount(coupon, req.Subtotal, time.Now())
		if err != nil {
			respondError(c, http.StatusBadRequest, route, err.Error(), nil)
			return
		}

		respondData(c, http.StatusOK, gin.H{
			"code":         coupon.Code,
			"discountType": coupon.DiscountType,
			"value":        coupon.Value,
			"discount":     discount,
			"subtotal":     req.Subtotal,
			"total":        req.Subtotal - discount,
		})
	}
}
