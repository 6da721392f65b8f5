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

type reviewStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type reviewResponseRequest struct {
	Message string `json:"message" binding:"required"`
}

// GetAllReviews lists reviews for moderation, filterable by status.
func GetAllReviews(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/admin/reviews"
		defer handlePanic(c, route)

		page, limit, err := parsePaginationParams(c.Query("page"), c.Query("limit"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid pagination parameters", err)
			return
		}

		filter := bson.M{}
		if status := strings.TrimSpace(c.Query("status")); status != "" {
			filter["status"] = status
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		total, err := db.Collection("reviews").CountDocuments(ctx, filter)
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error", err)
			return
		}

		opts := options.Find().
			SetSkip((page - 1) * limit).
			SetLimit(limit).
			SetSort(bson.D{{Key: "createdAt", Value: -1}})

		cursor, err := db.Collection("reviews").Find(ctx, filter, opts)
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error", err)
			return
		}
		defer cursor.Close(ctx)

		reviews := make([]models.Review, 0)
		if err := cursor.All(ctx, &reviews); err != nil {
			respondError(c, http.StatusInternalServerError, route, "decode error", err)
			return
		}

		respondList(c, reviews, page, limit, total, totalPages(total, limit))
	}
}

// UpdateReviewStatus moderates a review. The transition table only allows
// pending -> approved and pending -> rejected; a second moderation attempt
// on a terminal review is rejected.
func UpdateReviewStatus(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /api/admin/reviews/:id/status"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid id", err)
			return
		}

		var req reviewStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid request body", err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var review models.Review
		err = db.Collection("reviews").FindOne(ctx, bson.M{"_id": id}).Decode(&review)
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, route, "review not found", nil)
			return
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error", err)
			return
		}

		if err := checkReviewTransition(review.Status, req.Status); err != nil {
			respondError(c, http.StatusBadRequest, route, err.Error(), nil)
			return
		}

		// Guard on the status read above so a concurrent moderation cannot
		// double-apply.
		var updated models.Review
		err = db.Collection("reviews").FindOneAndUpdate(ctx,
			bson.M{"_id": id, "status": review.Status},
			bson.M{"$set": bson.M{"status": req.Status, "updatedAt": time.Now()}},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&updated)
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusConflict, route, "review was moderated concurrently", nil)
			return
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error", err)
			return
		}

		log.Println("UpdateReviewStatus:", id.Hex(), review.Status, "->", req.Status)
		respondData(c, http.StatusOK, updated)
	}
}

// RespondToReview attaches an admin reply to a moderated review.
func RespondToReview(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/admin/reviews/:id/respond"
		defer handlePanic(c, route)

		adminID, ok := currentUserID(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, route, "unauthorized", nil)
			return
		}

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid id", err)
			return
		}

		var req reviewResponseRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid request body", err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		response := models.AdminResponse{
			Message:     strings.TrimSpace(req.Message),
			RespondedBy: adminID,
			RespondedAt: time.Now(),
		}

		var updated models.Review
		err = db.Collection("reviews").FindOneAndUpdate(ctx,
			bson.M{
				"_id":    id,
				"status": bson.M{"$ne": models.ReviewStatusPending},
			},
			bson.M{"$set": bson.M{"adminResponse": response, "updatedAt": time.Now()}},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&updated)
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusBadRequest, route, "review not found or not yet moderated", nil)
			return
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error", err)
			return
		}

		respondData(c, http.StatusOK, updated)
	}
}

func DeleteReview(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/admin/reviews/:id"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid id", err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		result, err := db.Collection("reviews").DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error", err)
			return
		}
		if result.DeletedCount == 0 {
			respondError(c, http.StatusNotFound, route, "review not found", nil)
			return
		}

		respondMessage(c, http.StatusOK, "review deleted")
	}
}
