package handlers

import (
	"context"
	"log"
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

type productCreateRequest struct {
	Name        string   `json:"name" binding:"required"`
	SKU         string   `json:"sku"`
	Price       float64  `json:"price" binding:"required,gt=0"`
	SaleEnabled bool     `json:"saleEnabled"`
	SalePrice   float64  `json:"salePrice"`
	CategoryIDs []string `json:"categoryIds" binding:"required,min=1"`
	Description string   `json:"description"`
	Images      []string `json:"images"`
	Tags        []string `json:"tags"`
	Stock       *int     `json:"stock" binding:"required"`
	Status      string   `json:"status"`
}

type productUpdateRequest struct {
	Name        *string   `json:"name"`
	SKU         *string   `json:"sku"`
	Price       *float64  `json:"price"`
	SaleEnabled *bool     `json:"saleEnabled"`
	SalePrice   *float64  `json:"salePrice"`
	CategoryIDs *[]string `json:"categoryIds"`
	Description *string   `json:"description"`
	Images      *[]string `json:"images"`
	Tags        *[]string `json:"tags"`
	Stock       *int      `json:"stock"`
	Status      *string   `json:"status"`
}

// GetAllProducts lists products for the back office, including drafts and
// inactive entries.
func GetAllProducts(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/admin/products"
		defer handlePanic(c, route)

		page, limit, err := parsePaginationParams(c.Query("page"), c.Query("limit"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid pagination parameters", err)
			return
		}

		filter := bson.M{"isDeleted": bson.M{"$ne": true}}

		if status := strings.TrimSpace(c.Query("status")); status != "" {
			if !models.IsValidProductStatus(status) {
				respondError(c, http.StatusBadRequest, route, "invalid status filter", nil)
				return
			}
			filter["status"] = status
		}

		if search := strings.TrimSpace(c.Query("search")); search != "" {
			filter["$or"] = []bson.M{
				{"name": bson.M{"$regex": search, "$options": "i"}},
				{"sku": bson.M{"$regex": search, "$options": "i"}},
				{"description": bson.M{"$regex": search, "$options": "i"}},
			}
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		total, err := db.Collection("products").CountDocuments(ctx, filter)
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error", err)
			return
		}

		opts := options.Find().
			SetSkip((page - 1) * limit).
			SetLimit(limit).
			SetSort(bson.D{{Key: "createdAt", Value: -1}})

		cursor, err := db.Collection("products").Find(ctx, filter, opts)
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error", err)
			return
		}
		defer cursor.Close(ctx)

		products, err := decodeProducts(ctx, cursor)
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "decode error", err)
			return
		}

		respondList(c, products, page, limit, total, totalPages(total, limit))
	}
}

func CreateProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/admin/products"
		defer handlePanic(c, route)

		var req productCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid request body", err)
			return
		}

		if err := validateProductSale(req.Price, req.SaleEnabled, req.SalePrice); err != nil {
			respondError(c, http.StatusBadRequest, route, err.Error(), nil)
			return
		}

		if *req.Stock < 0 {
			respondError(c, http.StatusBadRequest, route, "stock must be zero or greater", nil)
			return
		}

		status := req.Status
		if status == "" {
			status = models.ProductStatusDraft
		}
		if !models.IsValidProductStatus(status) {
			respondError(c, http.StatusBadRequest, route, "invalid status", nil)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		categoryIDs, err := resolveCategoryIDs(ctx, db, req.CategoryIDs)
		if err != nil {
			respondError(c, http.StatusBadRequest, route, err.Error(), nil)
			return
		}

		now := time.Now()
		product := models.Product{
			Name:        strings.TrimSpace(req.Name),
			SKU:         strings.TrimSpace(req.SKU),
			Price:       req.Price,
			SaleEnabled: req.SaleEnabled,
			SalePrice:   req.SalePrice,
			CategoryIDs: categoryIDs,
			Description: strings.TrimSpace(req.Description),
			Images:      req.Images,
			Tags:        models.StringList(req.Tags),
			Stock:       *req.Stock,
			Status:      status,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if product.Images == nil {
			product.Images = []string{}
		}
		if product.Tags == nil {
			product.Tags = models.StringList{}
		}

		res, err := db.Collection("products").InsertOne(ctx, product)
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				respondError(c, http.StatusBadRequest, route, "sku already exists", err)
				return
			}
			respondError(c, http.StatusInternalServerError, route, "db error", err)
			return
		}

		product.ID = res.InsertedID.(primitive.ObjectID)
		product.InStock = product.Stock > 0
		product.IsOnSale = isProductOnSale(product.Price, product.SaleEnabled, product.SalePrice)

		log.Println("CreateProduct: inserted", product.ID.Hex())
		respondData(c, http.StatusCreated, product)
	}
}

func UpdateProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/admin/products/:id"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid id", err)
			return
		}

		var req productUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid request body", err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var existing models.Product
		err = db.Collection("products").FindOne(ctx, bson.M{
			"_id":       id,
			"isDeleted": bson.M{"$ne": true},
		}).Decode(&existing)
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, route, "product not found", nil)
			return
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error", err)
			return
		}

		updateSet := bson.M{}
		updateUnset := bson.M{}

		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				respondError(c, http.StatusBadRequest, route, "name required", nil)
				return
			}
			updateSet["name"] = name
		}
		if req.SKU != nil {
			sku := strings.TrimSpace(*req.SKU)
			if sku == "" {
				updateUnset["sku"] = ""
			} else {
				updateSet["sku"] = sku
			}
		}

		// Sale validation runs against the merged state so a partial update
		// cannot leave salePrice above price.
		price := existing.Price
		if req.Price != nil {
			if *req.Price <= 0 {
				respondError(c, http.StatusBadRequest, route, "invalid price", nil)
				return
			}
			price = *req.Price
			updateSet["price"] = price
		}
		saleEnabled := existing.SaleEnabled
		if req.SaleEnabled != nil {
			saleEnabled = *req.SaleEnabled
			updateSet["saleEnabled"] = saleEnabled
			if !saleEnabled {
				updateSet["salePrice"] = 0.0
			}
		}
		salePrice := existing.SalePrice
		if req.SalePrice != nil {
			salePrice = *req.SalePrice
			updateSet["salePrice"] = salePrice
		}
		if err := validateProductSale(price, saleEnabled, salePrice); err != nil {
			respondError(c, http.StatusBadRequest, route, err.Error(), nil)
			return
		}

		if req.CategoryIDs != nil {
			categoryIDs, err := resolveCategoryIDs(ctx, db, *req.CategoryIDs)
			if err != nil {
				respondError(c, http.StatusBadRequest, route, err.Error(), nil)
				return
			}
			updateSet["categoryIds"] = categoryIDs
		}
		if req.Description != nil {
			updateSet["description"] = strings.TrimSpace(*req.Description)
		}
		if req.Images != nil {
			updateSet["images"] = *req.Images
		}
		if req.Tags != nil {
			updateSet["tags"] = models.StringList(*req.Tags)
		}
		if req.Stock != nil {
			if *req.Stock < 0 {
				respondError(c, http.StatusBadRequest, route, "stock must be zero or greater", nil)
				return
			}
			updateSet["stock"] = *req.Stock
		}
		if req.Status != nil {
			if !models.IsValidProductStatus(*req.Status) {
				respondError(c, http.StatusBadRequest, route, "invalid status", nil)
				return
			}
			updateSet["status"] = *req.Status
		}

		if len(updateSet) == 0 && len(updateUnset) == 0 {
			respondError(c, http.StatusBadRequest, route, "no fields to update", nil)
			return
		}
		updateSet["updatedAt"] = time.Now()

		update := bson.M{"$set": updateSet}
		if len(updateUnset) > 0 {
			update["$unset"] = updateUnset
		}

		result, err := db.Collection("products").UpdateOne(ctx, bson.M{
			"_id":       id,
			"isDeleted": bson.M{"$ne": true},
		}, update)
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				respondError(c, http.StatusBadRequest, route, "sku already exists", err)
				return
			}
			respondError(c, http.StatusInternalServerError, route, "db error", err)
			return
		}
		if result.MatchedCount == 0 {
			respondError(c, http.StatusNotFound, route, "product not found", nil)
			return
		}

		var updated models.Product
		err = db.Collection("products").FindOne(ctx, bson.M{"_id": id}).Decode(&updated)
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error", err)
			return
		}

		updated.InStock = updated.Stock > 0
		updated.IsOnSale = isProductOnSale(updated.Price, updated.SaleEnabled, updated.SalePrice)
		respondData(c, http.StatusOK, updated)
	}
}

// DeleteProduct soft-deletes; historical order snapshots keep their copies.
func DeleteProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/admin/products/:id"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid id", err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		now := time.Now()
		res, err := db.Collection("products").UpdateOne(ctx, bson.M{
			"_id":       id,
			"isDeleted": bson.M{"$ne": true},
		}, bson.M{"$set": bson.M{
			"isDeleted": true,
			"deletedAt": now,
			"status":    models.ProductStatusInactive,
			"updatedAt": now,
		}})
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error", err)
			return
		}
		if res.MatchedCount == 0 {
			respondError(c, http.StatusNotFound, route, "product not found", nil)
			return
		}

		respondMessage(c, http.StatusOK, "product deleted")
	}
}
