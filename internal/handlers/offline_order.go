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

	"backend/internal/models"
)

type offlineOrderRequest struct {
	Customer struct {
		Name  string `json:"name" binding:"required"`
		Phone string `json:"phone"`
		Email string `json:"email"`
	} `json:"customer" binding:"required"`
	Items         []checkoutItemRequest `json:"items" binding:"required,min=1,dive"`
	PaymentMethod string                `json:"paymentMethod" binding:"required"`
	CouponCode    string                `json:"couponCode"`
	Amounts       amountsRequest        `json:"amounts" binding:"required"`
	Note          string                `json:"note"`
}

// CreateOfflineOrder records an in-person sale. It shares the item snapshot
// and amounts shape with online checkout but takes a customer contact block
// instead of an address, and cash/upi/card payment. The acting admin is
// recorded as the creator.
func CreateOfflineOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/admin/offline-orders"
		defer handlePanic(c, route)

		adminID, ok := currentUserID(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, route, "unauthorized", nil)
			return
		}

		var req offlineOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid request body", err)
			return
		}

		if !models.IsValidOfflinePayment(req.PaymentMethod) {
			respondError(c, http.StatusBadRequest, route, "payment method must be cash, upi or card", nil)
			return
		}

		items, err := parseCheckoutItems(req.Items)
		if err != nil {
			respondError(c, http.StatusBadRequest, route, err.Error(), nil)
			return
		}

		amounts, err := buildAmounts(req.Amounts)
		if err != nil {
			respondError(c, http.StatusBadRequest, route, err.Error(), nil)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var couponSnap *models.CouponSnapshot
		if code := strings.ToUpper(strings.TrimSpace(req.CouponCode)); code != "" {
			var coupon models.Coupon
			err := db.Collection("coupons").FindOne(ctx, bson.M{"code": code}).Decode(&coupon)
			if err == mongo.ErrNoDocuments {
				respondError(c, http.StatusBadRequest, route, "coupon not found", nil)
				return
			}
			if err != nil {
				respondError(c, http.StatusInternalServerError, route, "db error", err)
				return
			}
			if _, err := couponDiscount(coupon, amounts.Subtotal, time.Now()); err != nil {
				respondError(c, http.StatusBadRequest, route, err.Error(), nil)
				return
			}
			couponSnap = snapshotCoupon(coupon)
		}

		now := time.Now()
		order := models.OfflineOrder{
			Customer: models.OfflineCustomer{
				Name:  strings.TrimSpace(req.Customer.Name),
				Phone: strings.TrimSpace(req.Customer.Phone),
				Email: strings.TrimSpace(req.Customer.Email),
			},
			Items: items,
			Payment: models.OrderPayment{
				Method: req.PaymentMethod,
				Status: "paid",
			},
			Coupon:    couponSnap,
			Amounts:   amounts,
			Status:    models.OrderStatusCreated,
			Note:      strings.TrimSpace(req.Note),
			CreatedBy: adminID,
			CreatedAt: now,
			UpdatedAt: now,
		}

		session, err := db.Client().StartSession()
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error", err)
			return
		}
		defer session.EndSession(ctx)

		_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
			if err := decrementStock(sessCtx, db, order.Items); err != nil {
				return nil, err
			}

			res, err := db.Collection("offline_orders").InsertOne(sessCtx, order)
			if err != nil {
				return nil, err
			}
			if id, ok := res.InsertedID.(primitive.ObjectID); ok {
				order.ID = id
			}
			return nil, nil
		})
		if err != nil {
			var stockErr outOfStockError
			if errors.As(err, &stockErr) {
				c.JSON(http.StatusBadRequest, gin.H{
					"success":   false,
					"message":   "insufficient stock",
					"itemId":    stockErr.RefID.Hex(),
					"available": stockErr.Available,
					"requested": stockErr.Requested,
				})
				return
			}
			var notFound productNotFoundError
			if errors.As(err, &notFound) {
				respondError(c, http.StatusNotFound, route, notFound.Error(), nil)
				return
			}
			respondError(c, http.StatusInternalServerError, route, "db error", err)
			return
		}

		log.Println("[OFFLINE-ORDER] [INFO] created:", order.ID.Hex(), "by admin:", adminID.Hex())
		respondData(c, http.StatusCreated, order)
	}
}

func GetOfflineOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/admin/offline-orders"
		defer handlePanic(c, route)

		page, limit, err := parsePaginationParams(c.Query("page"), c.Query("limit"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid pagination parameters", err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		total, err := db.Collection("offline_orders").CountDocuments(ctx, bson.M{})
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error", err)
			return
		}

		opts := options.Find().
			SetSkip((page - 1) * limit).
			SetLimit(limit).
			SetSort(bson.D{{Key: "createdAt", Value: -1}})

		cursor, err := db.Collection("offline_orders").Find(ctx, bson.M{}, opts)
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error", err)
			return
		}
		defer cursor.Close(ctx)

		orders := make([]models.OfflineOrder, 0)
		if err := cursor.All(ctx, &orders); err != nil {
			respondError(c, http.StatusInternalServerError, route, "decode error", err)
			return
		}

		respondList(c, orders, page, limit, total, totalPages(total, limit))
	}
}
