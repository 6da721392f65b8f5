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

type createReviewRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Rating    int    `json:"rating" binding:"required,min=1,max=5"`
	Title     string `json:"title"`
	Comment   string `json:"comment" binding:"required"`
}

// CreateReview files a review against a product. It starts in pending until
// an admin moderates it. One review per user per product, enforced by the
// unique index. The verified-purchase flag is set when the user has a
// delivered order containing the product.
func CreateReview(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/reviews"
		defer handlePanic(c, route)

		userID, ok := currentUserID(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, route, "unauthorized", nil)
			return
		}

		var req createReviewRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid request body", err)
			return
		}

		productID, err := primitive.ObjectIDFromHex(req.ProductID)
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid productId", err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		err = db.Collection("products").FindOne(ctx, bson.M{
			"_id":       productID,
			"isDeleted": bson.M{"$ne": true},
		}, findOneIDOnly()).Err()
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, route, "product not found", nil)
			return
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error", err)
			return
		}

		verified, err := hasDeliveredOrderWithProduct(ctx, db, userID, productID)
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error", err)
			return
		}

		now := time.Now()
		review := models.Review{
			ProductID:          productID,
			UserID:             userID,
			Rating:             req.Rating,
			Title:              strings.TrimSpace(req.Title),
			Comment:            strings.TrimSpace(req.Comment),
			Status:             models.ReviewStatusPending,
			IsVerifiedPurchase: verified,
			HelpfulVotes:       []primitive.ObjectID{},
			ReportedBy:         []primitive.ObjectID{},
			CreatedAt:          now,
			UpdatedAt:          now,
		}

		res, err := db.Collection("reviews").InsertOne(ctx, review)
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				respondError(c, http.StatusBadRequest, route, "you have already reviewed this product", nil)
				return
			}
			respondError(c, http.StatusInternalServerError, route, "db error", err)
			return
		}

		review.ID = res.InsertedID.(primitive.ObjectID)
		respondData(c, http.StatusCreated, review)
	}
}

// GetProductReviews lists approved reviews for a product with a rating
// summary.
func GetProductReviews(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/products/:id/reviews"
		defer handlePanic(c, route)

		productID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid id", err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		filter := bson.M{
			"productId": productID,
			"status":    models.ReviewStatusApproved,
		}

		opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
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

		ratingSum := 0
		for _, review := range reviews {
			ratingSum += review.Rating
		}
		average := 0.0
		if len(reviews) > 0 {
			average = float64(ratingSum) / float64(len(reviews))
		}

		respondData(c, http.StatusOK, gin.H{
			"reviews":       reviews,
			"count":         len(reviews),
			"averageRating": average,
		})
	}
}

// VoteReviewHelpful records a helpful vote, one per user.
func VoteReviewHelpful(db *mongo.Database) gin.HandlerFunc {
	return reviewVoteHandler(db, "POST /api/reviews/:id/helpful", "helpfulVotes")
}

// ReportReview flags a review for admin attention, one report per user.
func ReportReview(db *mongo.Database) gin.HandlerFunc {
	return reviewVoteHandler(db, "POST /api/reviews/:id/report", "reportedBy")
}

func reviewVoteHandler(db *mongo.Database, route, field string) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, route)

		userID, ok := currentUserID(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, route, "unauthorized", nil)
			return
		}

		reviewID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid id", err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		// $addToSet keeps the vote idempotent per user.
		result, err := db.Collection("reviews").UpdateOne(ctx,
			bson.M{"_id": reviewID, "status": models.ReviewStatusApproved},
			bson.M{
				"$addToSet": bson.M{field: userID},
				"$set":      bson.M{"updatedAt": time.Now()},
			},
		)
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error", err)
			return
		}
		if result.MatchedCount == 0 {
			respondError(c, http.StatusNotFound, route, "review not found", nil)
			return
		}

		respondMessage(c, http.StatusOK, "vote recorded")
	}
}

func hasDeliveredOrderWithProduct(ctx context.Context, db *mongo.Database, userID, productID primitive.ObjectID) (bool, error) {
	count, err := db.Collection("orders").CountDocuments(ctx, bson.M{
		"userId":          userID,
		"status":          models.OrderStatusDelivered,
		"items.productId": productID,
	})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
