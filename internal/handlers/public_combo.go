package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/cache"
	"backend/internal/models"
)

const (
	activeCombosCacheKey = "combos:active"
	activeCombosCacheTTL = 5 * time.Minute
)

// GetCombos lists active combos for the storefront, served from the redis
// cache when possible.
func GetCombos(db *mongo.Database, store *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/combos"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var combos []models.Combo
		if store.Get(ctx, activeCombosCacheKey, &combos) {
			respondData(c, http.StatusOK, combos)
			return
		}

		opts := options.Find().SetSort(bson.D{
			{Key: "isFeatured", Value: -1},
			{Key: "createdAt", Value: -1},
		})

		cursor, err := db.Collection("combos").Find(ctx, bson.M{"isActive": true}, opts)
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error", err)
			return
		}
		defer cursor.Close(ctx)

		combos = make([]models.Combo, 0)
		if err := cursor.All(ctx, &combos); err != nil {
			respondError(c, http.StatusInternalServerError, route, "decode error", err)
			return
		}

		store.Set(ctx, activeCombosCacheKey, combos, activeCombosCacheTTL)
		respondData(c, http.StatusOK, combos)
	}
}

// GetCombo fetches one active combo by hex id or slug.
func GetCombo(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/combos/:id"
		defer handlePanic(c, route)

		key := c.Param("id")

		filter := bson.M{"isActive": true}
		if id, err := primitive.ObjectIDFromHex(key); err == nil {
			filter["_id"] = id
		} else {
			filter["slug"] = key
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var combo models.Combo
		err := db.Collection("combos").FindOne(ctx, filter).Decode(&combo)
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, route, "combo not found", nil)
			return
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error", err)
			return
		}

		respondData(c, http.StatusOK, combo)
	}
}
