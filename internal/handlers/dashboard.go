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

	"backend/internal/models"
)

type dashboardTotals struct {
	Orders         int64   `json:"orders"`
	OfflineOrders  int64   `json:"offlineOrders"`
	Revenue        float64 `json:"revenue"`
	OfflineRevenue float64 `json:"offlineRevenue"`
	PendingReviews int64   `json:"pendingReviews"`
	NewContacts    int64   `json:"newContacts"`
	ActiveProducts int64   `json:"activeProducts"`
	Customers      int64   `json:"customers"`
}

type revenuePoint struct {
	Date    string  `bson:"_id" json:"date"`
	Revenue float64 `bson:"revenue" json:"revenue"`
	Orders  int64   `bson:"orders" json:"orders"`
}

type topProduct struct {
	ProductID primitive.ObjectID `bson:"_id" json:"productId"`
	Name      string             `bson:"name" json:"name"`
	Quantity  int64              `bson:"quantity" json:"quantity"`
	Revenue   float64            `bson:"revenue" json:"revenue"`
}

// Cancelled orders are excluded from every revenue figure.
var revenueStatusFilter = bson.M{"status": bson.M{"$ne": models.OrderStatusCancelled}}

func sumRevenue(ctx context.Context, coll *mongo.Collection, match bson.M) (float64, error) {
	cursor, err := coll.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$amounts.total"},
		}}},
	})
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Total float64 `bson:"total"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Total, nil
}

func revenueByDay(ctx context.Context, coll *mongo.Collection, since time.Time) ([]revenuePoint, error) {
	match := bson.M{
		"status":    bson.M{"$ne": models.OrderStatusCancelled},
		"createdAt": bson.M{"$gte": since},
	}
	cursor, err := coll.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{"$dateToString": bson.M{
				"format": "%Y-%m-%d",
				"date":   "$createdAt",
			}},
			"revenue": bson.M{"$sum": "$amounts.total"},
			"orders":  bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	points := make([]revenuePoint, 0)
	if err := cursor.All(ctx, &points); err != nil {
		return nil, err
	}
	return points, nil
}

func topProductsByQuantity(ctx context.Context, coll *mongo.Collection, since time.Time, limit int) ([]topProduct, error) {
	cursor, err := coll.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"status":    bson.M{"$ne": models.OrderStatusCancelled},
			"createdAt": bson.M{"$gte": since},
		}}},
		{{Key: "$unwind", Value: "$items"}},
		{{Key: "$match", Value: bson.M{"items.productId": bson.M{"$ne": nil}}}},
		{{Key: "$group", Value: bson.M{
			"_id":      "$items.productId",
			"name":     bson.M{"$last": "$items.name"},
			"quantity": bson.M{"$sum": "$items.quantity"},
			"revenue": bson.M{"$sum": bson.M{
				"$multiply": bson.A{"$items.unitPrice", "$items.quantity"},
			}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "quantity", Value: -1}}}},
		{{Key: "$limit", Value: limit}},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	products := make([]topProduct, 0)
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// GetDashboard assembles the back-office overview: lifetime totals, daily
// revenue for the last 30 days, best sellers, and the most recent orders.
func GetDashboard(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/admin/dashboard"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
		defer cancel()

		since := time.Now().AddDate(0, 0, -30)

		orders := db.Collection("orders")
		offline := db.Collection("offline_orders")

		var totals dashboardTotals
		var err error

		if totals.Orders, err = orders.CountDocuments(ctx, bson.M{}); err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error", err)
			return
		}
		if totals.OfflineOrders, err = offline.CountDocuments(ctx, bson.M{}); err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error", err)
			return
		}
		if totals.Revenue, err = sumRevenue(ctx, orders, revenueStatusFilter); err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error", err)
			return
		}
		if totals.OfflineRevenue, err = sumRevenue(ctx, offline, revenueStatusFilter); err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error", err)
			return
		}
		if totals.PendingReviews, err = db.Collection("reviews").
			CountDocuments(ctx, bson.M{"status": models.ReviewStatusPending}); err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error", err)
			return
		}
		if totals.NewContacts, err = db.Collection("contacts").
			CountDocuments(ctx, bson.M{"status": models.ContactStatusNew}); err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error", err)
			return
		}
		if totals.ActiveProducts, err = db.Collection("products").
			CountDocuments(ctx, bson.M{"status": models.ProductStatusActive, "isDeleted": bson.M{"$ne": true}}); err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error", err)
			return
		}
		if totals.Customers, err = db.Collection("users").
			CountDocuments(ctx, bson.M{"role": models.RoleCustomer}); err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error", err)
			return
		}

		daily, err := revenueByDay(ctx, orders, since)
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error", err)
			return
		}

		best, err := topProductsByQuantity(ctx, orders, since, 10)
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error", err)
			return
		}

		recentCursor, err := orders.Find(ctx, bson.M{},
			options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(10))
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error", err)
			return
		}
		defer recentCursor.Close(ctx)

		recent := make([]models.Order, 0)
		if err := recentCursor.All(ctx, &recent); err != nil {
			respondError(c, http.StatusInternalServerError, route, "decode error", err)
			return
		}

		respondData(c, http.StatusOK, gin.H{
			"totals":       totals,
			"revenueByDay": daily,
			"topProducts":  best,
			"recentOrders": recent,
		})
	}
}
