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

type checkoutItemRequest struct {
	ItemType  string  `json:"itemType" binding:"required"`
	ItemID    string  `json:"itemId" binding:"required"`
	Name      string  `json:"name" binding:"required"`
	Image     string  `json:"image"`
	UnitPrice float64 `json:"unitPrice"`
	Quantity  int     `json:"quantity" binding:"required,gt=0"`
}

type orderAddressRequest struct {
	Title   string `json:"title" binding:"required"`
	Detail  string `json:"detail" binding:"required"`
	Note    string `json:"note"`
	Phone   string `json:"phone"`
	City    string `json:"city"`
	Pincode string `json:"pincode"`
}

type checkoutRequest struct {
	Items         []checkoutItemRequest `json:"items" binding:"required,min=1,dive"`
	AddressID     string                `json:"addressId"`
	Address       *orderAddressRequest  `json:"address"`
	PaymentMethod string                `json:"paymentMethod" binding:"required"`
	CouponCode    string                `json:"couponCode"`
	Amounts       amountsRequest        `json:"amounts" binding:"required"`
}

var onlinePaymentMethods = map[string]struct{}{
	"card": {},
	"upi":  {},
	"cod":  {},
}

type outOfStockError struct {
	RefID     primitive.ObjectID
	Available int
	Requested int
}

func (e outOfStockError) Error() string {
	return "out of stock: " + e.RefID.Hex()
}

// CreateOrder assembles an immutable order snapshot: denormalized line items,
// a frozen address, a frozen coupon, and the amounts breakdown as supplied by
// the caller (totals are NOT recomputed here; see buildAmounts). Stock
// decrements and the order insert run in one transaction, and the user's cart
// is emptied in the same transaction.
func CreateOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/orders"
		defer handlePanic(c, route)

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondError(c, http.StatusServiceUnavailable, route, "database unavailable", err)
			return
		}

		userID, ok := currentUserID(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, route, "unauthorized", nil)
			return
		}

		var req checkoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid request body", err)
			return
		}

		if _, ok := onlinePaymentMethods[req.PaymentMethod]; !ok {
			respondError(c, http.StatusBadRequest, route, "invalid payment method", nil)
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

		address, err := resolveOrderAddress(ctx, db, userID, req.AddressID, req.Address)
		if err != nil {
			respondError(c, http.StatusBadRequest, route, err.Error(), nil)
			return
		}

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
		order := models.Order{
			UserID:  &userID,
			Items:   items,
			Address: address,
			Payment: models.OrderPayment{
				Method: req.PaymentMethod,
				Status: "pending",
			},
			Coupon:    couponSnap,
			Amounts:   amounts,
			Status:    models.OrderStatusCreated,
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

			res, err := db.Collection("orders").InsertOne(sessCtx, order)
			if err != nil {
				return nil, err
			}
			if id, ok := res.InsertedID.(primitive.ObjectID); ok {
				order.ID = id
			}

			_, err = db.Collection("carts").UpdateOne(sessCtx,
				bson.M{"userId": userID},
				bson.M{"$set": bson.M{"items": []models.CartItem{}, "updatedAt": now}},
			)
			return nil, err
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

		log.Println("[ORDER] [INFO] order created:", order.ID.Hex(), "user:", userID.Hex())
		respondData(c, http.StatusCreated, order)
	}
}

// GetMyOrders lists the calling user's orders, newest first.
func GetMyOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/orders"
		defer handlePanic(c, route)

		userID, ok := currentUserID(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, route, "unauthorized", nil)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
		cursor, err := db.Collection("orders").Find(ctx, bson.M{"userId": userID}, opts)
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error", err)
			return
		}
		defer cursor.Close(ctx)

		orders := make([]models.Order, 0)
		if err := cursor.All(ctx, &orders); err != nil {
			respondError(c, http.StatusInternalServerError, route, "decode error", err)
			return
		}

		respondData(c, http.StatusOK, orders)
	}
}

func parseCheckoutItems(raw []checkoutItemRequest) ([]models.OrderItem, error) {
	items := make([]models.OrderItem, 0, len(raw))

	for _, entry := range raw {
		if entry.ItemType != models.CartItemTypeProduct && entry.ItemType != models.CartItemTypeCombo {
			return nil, errors.New("itemType must be product or combo")
		}
		refID, err := primitive.ObjectIDFromHex(entry.ItemID)
		if err != nil {
			return nil, errors.New("invalid itemId")
		}
		if entry.UnitPrice < 0 {
			return nil, errors.New("unitPrice must be zero or greater")
		}

		item := models.OrderItem{
			ItemType:  entry.ItemType,
			Name:      strings.TrimSpace(entry.Name),
			Image:     strings.TrimSpace(entry.Image),
			UnitPrice: entry.UnitPrice,
			Quantity:  entry.Quantity,
		}
		if entry.ItemType == models.CartItemTypeProduct {
			item.ProductID = &refID
		} else {
			item.ComboID = &refID
		}
		items = append(items, item)
	}

	return items, nil
}

// resolveOrderAddress snapshots either a saved address (by id) or an inline
// one. The snapshot is a copy; later address edits never touch the order.
func resolveOrderAddress(ctx context.Context, db *mongo.Database, userID primitive.ObjectID, addressID string, inline *orderAddressRequest) (models.OrderAddress, error) {
	if strings.TrimSpace(addressID) != "" {
		var user models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
			return models.OrderAddress{}, errors.New("user not found")
		}
		for _, addr := range user.Addresses {
			if addr.ID == addressID {
				return models.OrderAddress{
					Title:   addr.Title,
					Detail:  addr.Detail,
					Note:    addr.Note,
					Phone:   addr.Phone,
					City:    addr.City,
					Pincode: addr.Pincode,
				}, nil
			}
		}
		return models.OrderAddress{}, errors.New("address not found")
	}

	if inline == nil {
		return models.OrderAddress{}, errors.New("addressId or address is required")
	}
	return models.OrderAddress{
		Title:   strings.TrimSpace(inline.Title),
		Detail:  strings.TrimSpace(inline.Detail),
		Note:    strings.TrimSpace(inline.Note),
		Phone:   strings.TrimSpace(inline.Phone),
		City:    strings.TrimSpace(inline.City),
		Pincode: strings.TrimSpace(inline.Pincode),
	}, nil
}

// decrementStock reserves stock for every line with a guarded $inc, so two
// concurrent checkouts cannot both take the last unit.
func decrementStock(ctx context.Context, db *mongo.Database, items []models.OrderItem) error {
	for _, item := range items {
		var collection string
		var refID primitive.ObjectID
		filter := bson.M{"stock": bson.M{"$gte": item.Quantity}}

		switch item.ItemType {
		case models.CartItemTypeProduct:
			collection = "products"
			refID = *item.ProductID
			filter["_id"] = refID
			filter["isDeleted"] = bson.M{"$ne": true}
		case models.CartItemTypeCombo:
			collection = "combos"
			refID = *item.ComboID
			filter["_id"] = refID
		default:
			continue
		}

		res, err := db.Collection(collection).UpdateOne(ctx, filter,
			bson.M{"$inc": bson.M{"stock": -item.Quantity}})
		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			// Distinguish missing from out-of-stock for the error payload.
			var doc struct {
				Stock int `bson:"stock"`
			}
			err := db.Collection(collection).FindOne(ctx, bson.M{"_id": refID}).Decode(&doc)
			if err == mongo.ErrNoDocuments {
				return productNotFoundError{ProductID: refID}
			}
			if err != nil {
				return err
			}
			return outOfStockError{RefID: refID, Available: doc.Stock, Requested: item.Quantity}
		}
	}
	return nil
}
