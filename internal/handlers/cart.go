package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"backend/internal/models"
)

type addToCartRequest struct {
	ItemType string `json:"itemType" binding:"required"`
	ItemID   string `json:"itemId" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,gt=0"`
}

// cartLineView is a cart line enriched with current catalog data for
// display. Unavailable lines (deleted or deactivated references) keep their
// place in the cart but carry no price.
type cartLineView struct {
	ItemType  string              `json:"itemType"`
	ProductID *primitive.ObjectID `json:"productId,omitempty"`
	ComboID   *primitive.ObjectID `json:"comboId,omitempty"`
	Name      string              `json:"name"`
	Image     string              `json:"image,omitempty"`
	UnitPrice float64             `json:"unitPrice"`
	Quantity  int                 `json:"quantity"`
	Subtotal  float64             `json:"subtotal"`
	Available bool                `json:"available"`
}

type cartView struct {
	Items     []cartLineView `json:"items"`
	ItemCount int            `json:"itemCount"`
	Subtotal  float64        `json:"subtotal"`
}

// GetCart returns the user's cart, creating an empty one on first access.
// Legacy lines missing their itemType tag are repaired in place; if any line
// changed the repaired list is written back before responding.
func GetCart(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/cart"
		defer handlePanic(c, route)

		userID, ok := currentUserID(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, route, "unauthorized", nil)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cart, err := loadOrCreateCart(ctx, db, userID)
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error", err)
			return
		}

		repaired, changed := repairCartItems(cart.Items)
		if changed {
			_, err := db.Collection("carts").UpdateOne(ctx,
				bson.M{"_id": cart.ID},
				bson.M{"$set": bson.M{"items": repaired, "updatedAt": time.Now()}},
			)
			if err != nil {
				// The repaired view is still correct; only the persistence
				// of the fix failed.
				log.Printf("[%s] cart repair write failed: %v", route, err)
			} else {
				log.Printf("[%s] repaired %d -> %d cart lines for user %s", route, len(cart.Items), len(repaired), userID.Hex())
			}
			cart.Items = repaired
		}

		view, err := buildCartView(ctx, db, cart.Items)
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error", err)
			return
		}

		respondData(c, http.StatusOK, view)
	}
}

// AddToCart applies the replace-not-increment contract: posting an item that
// is already in the cart REPLACES its quantity with the supplied value. The
// client always sends the new total quantity, never a delta.
func AddToCart(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/cart"
		defer handlePanic(c, route)

		userID, ok := currentUserID(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, route, "unauthorized", nil)
			return
		}

		var req addToCartRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid request body", err)
			return
		}
		if req.ItemType != models.CartItemTypeProduct && req.ItemType != models.CartItemTypeCombo {
			respondError(c, http.StatusBadRequest, route, "itemType must be product or combo", nil)
			return
		}

		refID, err := primitive.ObjectIDFromHex(req.ItemID)
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid itemId", err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if err := checkCartReference(ctx, db, req.ItemType, refID); err != nil {
			if err == mongo.ErrNoDocuments {
				respondError(c, http.StatusNotFound, route, req.ItemType+" not found", nil)
				return
			}
			respondError(c, http.StatusInternalServerError, route, "db error", err)
			return
		}

		cart, err := loadOrCreateCart(ctx, db, userID)
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error", err)
			return
		}

		incoming := models.CartItem{
			ItemType: req.ItemType,
			Quantity: req.Quantity,
			AddedAt:  time.Now(),
		}
		if req.ItemType == models.CartItemTypeProduct {
			incoming.ProductID = &refID
		} else {
			incoming.ComboID = &refID
		}

		items, _ := repairCartItems(cart.Items)
		items, replaced := upsertCartLine(items, incoming)

		_, err = db.Collection("carts").UpdateOne(ctx,
			bson.M{"_id": cart.ID},
			bson.M{"$set": bson.M{"items": items, "updatedAt": time.Now()}},
		)
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error", err)
			return
		}

		if replaced {
			log.Printf("[%s] quantity replaced for %s %s", route, req.ItemType, refID.Hex())
		}

		view, err := buildCartView(ctx, db, items)
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error", err)
			return
		}

		respondData(c, http.StatusOK, view)
	}
}

// RemoveFromCart deletes a line by {itemId, itemType}, never by index, so a
// stale client-side position cannot remove the wrong line.
func RemoveFromCart(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/cart/:itemId"
		defer handlePanic(c, route)

		userID, ok := currentUserID(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, route, "unauthorized", nil)
			return
		}

		refID, err := primitive.ObjectIDFromHex(c.Param("itemId"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid itemId", err)
			return
		}

		itemType := c.Query("itemType")
		if itemType != models.CartItemTypeProduct && itemType != models.CartItemTypeCombo {
			respondError(c, http.StatusBadRequest, route, "itemType must be product or combo", nil)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cart, err := loadOrCreateCart(ctx, db, userID)
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error", err)
			return
		}

		items, _ := repairCartItems(cart.Items)
		items, removed := removeCartLine(items, refID, itemType)
		if !removed {
			respondError(c, http.StatusNotFound, route, "item not in cart", nil)
			return
		}

		_, err = db.Collection("carts").UpdateOne(ctx,
			bson.M{"_id": cart.ID},
			bson.M{"$set": bson.M{"items": items, "updatedAt": time.Now()}},
		)
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error", err)
			return
		}

		view, err := buildCartView(ctx, db, items)
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error", err)
			return
		}

		respondData(c, http.StatusOK, view)
	}
}

// ClearCart empties the cart after a successful checkout.
func ClearCart(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/cart"
		defer handlePanic(c, route)

		userID, ok := currentUserID(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, route, "unauthorized", nil)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		_, err := db.Collection("carts").UpdateOne(ctx,
			bson.M{"userId": userID},
			bson.M{"$set": bson.M{"items": []models.CartItem{}, "updatedAt": time.Now()}},
		)
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error", err)
			return
		}

		respondMessage(c, http.StatusOK, "cart cleared")
	}
}

func loadOrCreateCart(ctx context.Context, db *mongo.Database, userID primitive.ObjectID) (models.Cart, error) {
	var cart models.Cart
	err := db.Collection("carts").FindOne(ctx, bson.M{"userId": userID}).Decode(&cart)
	if err == nil {
		return cart, nil
	}
	if err != mongo.ErrNoDocuments {
		return models.Cart{}, err
	}

	now := time.Now()
	cart = models.Cart{
		UserID:    userID,
		Items:     []models.CartItem{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	res, err := db.Collection("carts").InsertOne(ctx, cart)
	if err != nil {
		// Another request may have created the cart in between; the unique
		// userId index makes the insert fail, so re-read.
		if mongo.IsDuplicateKeyError(err) {
			err = db.Collection("carts").FindOne(ctx, bson.M{"userId": userID}).Decode(&cart)
			return cart, err
		}
		return models.Cart{}, err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		cart.ID = id
	}
	return cart, nil
}

func checkCartReference(ctx context.Context, db *mongo.Database, itemType string, refID primitive.ObjectID) error {
	switch itemType {
	case models.CartItemTypeProduct:
		return db.Collection("products").FindOne(ctx, bson.M{
			"_id":       refID,
			"status":    models.ProductStatusActive,
			"isDeleted": bson.M{"$ne": true},
		}, findOneIDOnly()).Err()
	case models.CartItemTypeCombo:
		return db.Collection("combos").FindOne(ctx, bson.M{
			"_id":      refID,
			"isActive": true,
		}, findOneIDOnly()).Err()
	}
	return mongo.ErrNoDocuments
}

// buildCartView resolves every line against the current catalog and
// aggregates subtotals. Lines whose reference has disappeared stay visible
// but are flagged unavailable and excluded from the subtotal.
func buildCartView(ctx context.Context, db *mongo.Database, items []models.CartItem) (cartView, error) {
	view := cartView{Items: make([]cartLineView, 0, len(items))}

	for _, item := range items {
		line := cartLineView{
			ItemType:  item.ItemType,
			ProductID: item.ProductID,
			ComboID:   item.ComboID,
			Quantity:  item.Quantity,
		}

		switch item.ItemType {
		case models.CartItemTypeProduct:
			var product models.Product
			err := db.Collection("products").FindOne(ctx, bson.M{
				"_id":       item.ProductID,
				"isDeleted": bson.M{"$ne": true},
			}).Decode(&product)
			if err == mongo.ErrNoDocuments {
				view.Items = append(view.Items, line)
				continue
			}
			if err != nil {
				return cartView{}, err
			}
			line.Name = product.Name
			if len(product.Images) > 0 {
				line.Image = product.Images[0]
			}
			line.UnitPrice = effectiveProductPrice(product.Price, product.SaleEnabled, product.SalePrice)
			line.Available = product.Status == models.ProductStatusActive && product.Stock > 0

		case models.CartItemTypeCombo:
			var combo models.Combo
			err := db.Collection("combos").FindOne(ctx, bson.M{"_id": item.ComboID}).Decode(&combo)
			if err == mongo.ErrNoDocuments {
				view.Items = append(view.Items, line)
				continue
			}
			if err != nil {
				return cartView{}, err
			}
			line.Name = combo.Title
			line.Image = combo.BannerImage
			line.UnitPrice = combo.FinalPrice
			line.Available = combo.IsActive && combo.Stock > 0
		}

		if line.Available {
			line.Subtotal = line.UnitPrice * float64(line.Quantity)
			view.Subtotal += line.Subtotal
			view.ItemCount += line.Quantity
		}
		view.Items = append(view.Items, line)
	}

	return view, nil
}
