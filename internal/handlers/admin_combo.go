package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/cache"
	"backend/internal/models"
)

type comboCreateRequest struct {
	Title         string             `json:"title" binding:"required"`
	Description   string             `json:"description"`
	Items         []comboItemRequest `json:"items" binding:"required,min=1,dive"`
	BannerImage   string             `json:"bannerImage"`
	GalleryImages []string           `json:"galleryImages"`
	DiscountType  string             `json:"discountType" binding:"required"`
	DiscountValue float64            `json:"discountValue"`
	Stock         *int               `json:"stock" binding:"required"`
	IsActive      *bool              `json:"isActive"`
	IsFeatured    bool               `json:"isFeatured"`
	StartsAt      *time.Time         `json:"startsAt"`
	EndsAt        *time.Time         `json:"endsAt"`
	CouponID      string             `json:"couponId"`
}

type comboUpdateRequest struct {
	Title         *string             `json:"title"`
	Description   *string             `json:"description"`
	Items         *[]comboItemRequest `json:"items"`
	BannerImage   *string             `json:"bannerImage"`
	GalleryImages *[]string           `json:"galleryImages"`
	DiscountType  *string             `json:"discountType"`
	DiscountValue *float64            `json:"discountValue"`
	Stock         *int                `json:"stock"`
	IsFeatured    *bool               `json:"isFeatured"`
	StartsAt      *time.Time          `json:"startsAt"`
	EndsAt        *time.Time          `json:"endsAt"`
	CouponID      *string             `json:"couponId"`
}

// GetAllCombos lists combos for the back office, inactive ones included.
func GetAllCombos(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/admin/combos"
		defer handlePanic(c, route)

		page, limit, err := parsePaginationParams(c.Query("page"), c.Query("limit"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid pagination parameters", err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		total, err := db.Collection("combos").CountDocuments(ctx, bson.M{})
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error", err)
			return
		}

		opts := options.Find().
			SetSkip((page - 1) * limit).
			SetLimit(limit).
			SetSort(bson.D{{Key: "createdAt", Value: -1}})

		cursor, err := db.Collection("combos").Find(ctx, bson.M{}, opts)
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error", err)
			return
		}
		defer cursor.Close(ctx)

		combos := make([]models.Combo, 0)
		if err := cursor.All(ctx, &combos); err != nil {
			respondError(c, http.StatusInternalServerError, route, "decode error", err)
			return
		}

		respondList(c, combos, page, limit, total, totalPages(total, limit))
	}
}

// CreateCombo resolves every constituent product and persists the combo with
// its derived price triple inside one transaction, so a concurrent product
// price change cannot interleave between the reads and the write.
func CreateCombo(db *mongo.Database, store *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/combos"
		defer handlePanic(c, route)

		var req comboCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid request body", err)
			return
		}

		if err := validateComboDiscount(req.DiscountType, req.DiscountValue); err != nil {
			respondError(c, http.StatusBadRequest, route, err.Error(), nil)
			return
		}
		if *req.Stock < 0 {
			respondError(c, http.StatusBadRequest, route, "stock must be zero or greater", nil)
			return
		}
		if req.StartsAt != nil && req.EndsAt != nil && req.EndsAt.Before(*req.StartsAt) {
			respondError(c, http.StatusBadRequest, route, "endsAt must be after startsAt", nil)
			return
		}

		items, err := parseComboItems(req.Items)
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid productId", err)
			return
		}
		if err := validateComboItems(items); err != nil {
			respondError(c, http.StatusBadRequest, route, err.Error(), nil)
			return
		}

		var couponID *primitive.ObjectID
		if strings.TrimSpace(req.CouponID) != "" {
			parsed, err := primitive.ObjectIDFromHex(req.CouponID)
			if err != nil {
				respondError(c, http.StatusBadRequest, route, "invalid couponId", err)
				return
			}
			couponID = &parsed
		}

		isActive := true
		if req.IsActive != nil {
			isActive = *req.IsActive
		}

		now := time.Now()
		combo := models.Combo{
			Title:         strings.TrimSpace(req.Title),
			Slug:          slugify(req.Title),
			Description:   strings.TrimSpace(req.Description),
			Items:         items,
			BannerImage:   strings.TrimSpace(req.BannerImage),
			GalleryImages: req.GalleryImages,
			DiscountType:  req.DiscountType,
			DiscountValue: req.DiscountValue,
			Stock:         *req.Stock,
			IsActive:      isActive,
			IsFeatured:    req.IsFeatured,
			StartsAt:      req.StartsAt,
			EndsAt:        req.EndsAt,
			CouponID:      couponID,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if combo.GalleryImages == nil {
			combo.GalleryImages = []string{}
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		session, err := db.Client().StartSession()
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error", err)
			return
		}
		defer session.EndSession(ctx)

		_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
			resolved, err := resolveComboConstituents(sessCtx, db, combo.Items)
			if err != nil {
				return nil, err
			}

			pricing := computeComboPricing(resolved, combo.DiscountType, combo.DiscountValue)
			combo.OriginalPrice = pricing.OriginalPrice
			combo.FinalPrice = pricing.FinalPrice
			combo.Savings = pricing.Savings

			res, err := db.Collection("combos").InsertOne(sessCtx, combo)
			if err != nil {
				return nil, err
			}
			if id, ok := res.InsertedID.(primitive.ObjectID); ok {
				combo.ID = id
			}
			return nil, nil
		})
		if err != nil {
			var notFound productNotFoundError
			if errors.As(err, &notFound) {
				respondError(c, http.StatusNotFound, route, notFound.Error(), nil)
				return
			}
			if mongo.IsDuplicateKeyError(err) {
				respondError(c, http.StatusBadRequest, route, "a combo with this title already exists", err)
				return
			}
			respondError(c, http.StatusInternalServerError, route, "db error", err)
			return
		}

		store.Invalidate(ctx, activeCombosCacheKey)
		log.Println("CreateCombo: inserted", combo.ID.Hex())
		respondData(c, http.StatusCreated, combo)
	}
}

// UpdateCombo rewrites the derived price triple on every call, resolving the
// (possibly updated) constituent list inside the same transaction as the
// write.
func UpdateCombo(db *mongo.Database, store *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/combos/:id"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid id", err)
			return
		}

		var req comboUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid request body", err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		session, err := db.Client().StartSession()
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error", err)
			return
		}
		defer session.EndSession(ctx)

		var updated models.Combo
		_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
			var existing models.Combo
			err := db.Collection("combos").FindOne(sessCtx, bson.M{"_id": id}).Decode(&existing)
			if err != nil {
				return nil, err
			}

			merged := existing
			if req.Title != nil {
				title := strings.TrimSpace(*req.Title)
				if title == "" {
					return nil, errValidation{"title required"}
				}
				merged.Title = title
				merged.Slug = slugify(title)
			}
			if req.Description != nil {
				merged.Description = strings.TrimSpace(*req.Description)
			}
			if req.Items != nil {
				items, err := parseComboItems(*req.Items)
				if err != nil {
					return nil, errValidation{"invalid productId"}
				}
				merged.Items = items
			}
			if req.BannerImage != nil {
				merged.BannerImage = strings.TrimSpace(*req.BannerImage)
			}
			if req.GalleryImages != nil {
				merged.GalleryImages = *req.GalleryImages
			}
			if req.DiscountType != nil {
				merged.DiscountType = *req.DiscountType
			}
			if req.DiscountValue != nil {
				merged.DiscountValue = *req.DiscountValue
			}
			if req.Stock != nil {
				if *req.Stock < 0 {
					return nil, errValidation{"stock must be zero or greater"}
				}
				merged.Stock = *req.Stock
			}
			if req.IsFeatured != nil {
				merged.IsFeatured = *req.IsFeatured
			}
			if req.StartsAt != nil {
				merged.StartsAt = req.StartsAt
			}
			if req.EndsAt != nil {
				merged.EndsAt = req.EndsAt
			}
			if req.CouponID != nil {
				if strings.TrimSpace(*req.CouponID) == "" {
					merged.CouponID = nil
				} else {
					parsed, err := primitive.ObjectIDFromHex(*req.CouponID)
					if err != nil {
						return nil, errValidation{"invalid couponId"}
					}
					merged.CouponID = &parsed
				}
			}

			if err := validateComboDiscount(merged.DiscountType, merged.DiscountValue); err != nil {
				return nil, errValidation{err.Error()}
			}
			if err := validateComboItems(merged.Items); err != nil {
				return nil, errValidation{err.Error()}
			}
			if merged.StartsAt != nil && merged.EndsAt != nil && merged.EndsAt.Before(*merged.StartsAt) {
				return nil, errValidation{"endsAt must be after startsAt"}
			}

			resolved, err := resolveComboConstituents(sessCtx, db, merged.Items)
			if err != nil {
				return nil, err
			}
			pricing := computeComboPricing(resolved, merged.DiscountType, merged.DiscountValue)
			merged.OriginalPrice = pricing.OriginalPrice
			merged.FinalPrice = pricing.FinalPrice
			merged.Savings = pricing.Savings
			merged.UpdatedAt = time.Now()

			_, err = db.Collection("combos").ReplaceOne(sessCtx, bson.M{"_id": id}, merged)
			if err != nil {
				return nil, err
			}
			updated = merged
			return nil, nil
		})
		if err != nil {
			var validation errValidation
			if errors.As(err, &validation) {
				respondError(c, http.StatusBadRequest, route, validation.Error(), nil)
				return
			}
			var notFound productNotFoundError
			if errors.As(err, &notFound) {
				respondError(c, http.StatusNotFound, route, notFound.Error(), nil)
				return
			}
			if err == mongo.ErrNoDocuments {
				respondError(c, http.StatusNotFound, route, "combo not found", nil)
				return
			}
			respondError(c, http.StatusInternalServerError, route, "db error", err)
			return
		}

		store.Invalidate(ctx, activeCombosCacheKey)
		respondData(c, http.StatusOK, updated)
	}
}

func DeleteCombo(db *mongo.Database, store *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/combos/:id"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid id", err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		result, err := db.Collection("combos").DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error", err)
			return
		}
		if result.DeletedCount == 0 {
			respondError(c, http.StatusNotFound, route, "combo not found", nil)
			return
		}

		store.Invalidate(ctx, activeCombosCacheKey)
		respondMessage(c, http.StatusOK, "combo deleted")
	}
}

func ToggleComboActive(db *mongo.Database, store *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /api/combos/:id/toggle-active"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid id", err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var combo models.Combo
		err = db.Collection("combos").FindOneAndUpdate(ctx,
			bson.M{"_id": id},
			[]bson.M{{"$set": bson.M{
				"isActive":  bson.M{"$not": "$isActive"},
				"updatedAt": "$$NOW",
			}}},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&combo)
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, route, "combo not found", nil)
			return
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error", err)
			return
		}

		store.Invalidate(ctx, activeCombosCacheKey)
		respondData(c, http.StatusOK, combo)
	}
}

// FixComboPrices is the maintenance path for combos whose derived fields went
// stale, e.g. after a constituent product price change or deletion. It
// re-resolves the constituents and rewrites the triple.
func FixComboPrices(db *mongo.Database, store *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/combos/:id/fix-prices"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid id", err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		session, err := db.Client().StartSession()
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error", err)
			return
		}
		defer session.EndSession(ctx)

		var fixed models.Combo
		_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
			var combo models.Combo
			if err := db.Collection("combos").FindOne(sessCtx, bson.M{"_id": id}).Decode(&combo); err != nil {
				return nil, err
			}

			resolved, err := resolveComboConstituents(sessCtx, db, combo.Items)
			if err != nil {
				return nil, err
			}

			pricing := computeComboPricing(resolved, combo.DiscountType, combo.DiscountValue)
			err = db.Collection("combos").FindOneAndUpdate(sessCtx,
				bson.M{"_id": id},
				bson.M{"$set": bson.M{
					"originalPrice": pricing.OriginalPrice,
					"finalPrice":    pricing.FinalPrice,
					"savings":       pricing.Savings,
					"updatedAt":     time.Now(),
				}},
				options.FindOneAndUpdate().SetReturnDocument(options.After),
			).Decode(&fixed)
			return nil, err
		})
		if err != nil {
			var notFound productNotFoundError
			if errors.As(err, &notFound) {
				respondError(c, http.StatusNotFound, route, notFound.Error(), nil)
				return
			}
			if err == mongo.ErrNoDocuments {
				respondError(c, http.StatusNotFound, route, "combo not found", nil)
				return
			}
			respondError(c, http.StatusInternalServerError, route, "db error", err)
			return
		}

		store.Invalidate(ctx, activeCombosCacheKey)
		log.Println("FixComboPrices: recomputed", id.Hex())
		respondData(c, http.StatusOK, fixed)
	}
}

// errValidation carries a user-facing message out of a transaction callback.
type errValidation struct {
	Message string
}

func (e errValidation) Error() string {
	return e.Message
}
