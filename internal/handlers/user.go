package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/models"
)

type addressRequest struct {
	Title     string `json:"title" binding:"required"`
	Detail    string `json:"detail" binding:"required"`
	Note      string `json:"note"`
	Phone     string `json:"phone"`
	City      string `json:"city"`
	Pincode   string `json:"pincode"`
	IsDefault bool   `json:"isDefault"`
}

type updateProfileRequest struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
}

func loadUser(ctx context.Context, db *mongo.Database, userID primitive.ObjectID) (models.User, error) {
	var user models.User
	err := db.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	return user, err
}

// GetMe returns the authenticated user's profile.
func GetMe(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/users/me"
		defer handlePanic(c, route)

		userID, ok := currentUserID(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, route, "unauthorized", nil)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		user, err := loadUser(ctx, db, userID)
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, route, "user not found", nil)
			return
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error", err)
			return
		}

		respondData(c, http.StatusOK, user)
	}
}

// UpdateMe updates the authenticated user's name and phone.
func UpdateMe(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/users/me"
		defer handlePanic(c, route)

		userID, ok := currentUserID(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, route, "unauthorized", nil)
			return
		}

		var req updateProfileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid request body", err)
			return
		}

		updateSet := bson.M{"updatedAt": time.Now()}
		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				respondError(c, http.StatusBadRequest, route, "name cannot be empty", nil)
				return
			}
			updateSet["name"] = name
		}
		if req.Phone != nil {
			updateSet["phone"] = strings.TrimSpace(*req.Phone)
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var updated models.User
		err := db.Collection("users").FindOneAndUpdate(ctx,
			bson.M{"_id": userID},
			bson.M{"$set": updateSet},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&updated)
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, route, "user not found", nil)
			return
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error", err)
			return
		}

		respondData(c, http.StatusOK, updated)
	}
}

// applyDefaultFlag keeps at most one default address. Marking an address
// default clears the flag on the others; the first address a user adds is
// always the default.
func applyDefaultFlag(addresses []models.Address, target string, makeDefault bool) []models.Address {
	if len(addresses) == 1 {
		addresses[0].IsDefault = true
		return addresses
	}
	if !makeDefault {
		return addresses
	}
	for i := range addresses {
		addresses[i].IsDefault = addresses[i].ID == target
	}
	return addresses
}

// AddAddress appends an address to the user's address book.
func AddAddress(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/users/me/addresses"
		defer handlePanic(c, route)

		userID, ok := currentUserID(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, route, "unauthorized", nil)
			return
		}

		var req addressRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid request body", err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		user, err := loadUser(ctx, db, userID)
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, route, "user not found", nil)
			return
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error", err)
			return
		}

		address := models.Address{
			ID:        uuid.NewString(),
			Title:     strings.TrimSpace(req.Title),
			Detail:    strings.TrimSpace(req.Detail),
			Note:      strings.TrimSpace(req.Note),
			Phone:     strings.TrimSpace(req.Phone),
			City:      strings.TrimSpace(req.City),
			Pincode:   strings.TrimSpace(req.Pincode),
			IsDefault: req.IsDefault,
		}

		addresses := applyDefaultFlag(append(user.Addresses, address), address.ID, req.IsDefault)

		_, err = db.Collection("users").UpdateOne(ctx,
			bson.M{"_id": userID},
			bson.M{"$set": bson.M{"addresses": addresses, "updatedAt": time.Now()}},
		)
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error", err)
			return
		}

		respondData(c, http.StatusCreated, addresses)
	}
}

// UpdateAddress edits one address in place by its id.
func UpdateAddress(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/users/me/addresses/:addressId"
		defer handlePanic(c, route)

		userID, ok := currentUserID(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, route, "unauthorized", nil)
			return
		}
		addressID := c.Param("addressId")

		var req addressRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid request body", err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		user, err := loadUser(ctx, db, userID)
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, route, "user not found", nil)
			return
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error", err)
			return
		}

		found := false
		for i := range user.Addresses {
			if user.Addresses[i].ID != addressID {
				continue
			}
			user.Addresses[i].Title = strings.TrimSpace(req.Title)
			user.Addresses[i].Detail = strings.TrimSpace(req.Detail)
			user.Addresses[i].Note = strings.TrimSpace(req.Note)
			user.Addresses[i].Phone = strings.TrimSpace(req.Phone)
			user.Addresses[i].City = strings.TrimSpace(req.City)
			user.Addresses[i].Pincode = strings.TrimSpace(req.Pincode)
			found = true
			break
		}
		if !found {
			respondError(c, http.StatusNotFound, route, "address not found", nil)
			return
		}

		addresses := applyDefaultFlag(user.Addresses, addressID, req.IsDefault)

		_, err = db.Collection("users").UpdateOne(ctx,
			bson.M{"_id": userID},
			bson.M{"$set": bson.M{"addresses": addresses, "updatedAt": time.Now()}},
		)
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error", err)
			return
		}

		respondData(c, http.StatusOK, addresses)
	}
}

// DeleteAddress removes an address. If the default was removed, the first
// remaining address becomes the default.
func DeleteAddress(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/users/me/addresses/:addressId"
		defer handlePanic(c, route)

		userID, ok := currentUserID(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, route, "unauthorized", nil)
			return
		}
		addressID := c.Param("addressId")

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		user, err := loadUser(ctx, db, userID)
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, route, "user not found", nil)
			return
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error", err)
			return
		}

		remaining := make([]models.Address, 0, len(user.Addresses))
		removedDefault := false
		for _, addr := range user.Addresses {
			if addr.ID == addressID {
				removedDefault = addr.IsDefault
				continue
			}
			remaining = append(remaining, addr)
		}
		if len(remaining) == len(user.Addresses) {
			respondError(c, http.StatusNotFound, route, "address not found", nil)
			return
		}
		if removedDefault && len(remaining) > 0 {
			remaining[0].IsDefault = true
		}

		_, err = db.Collection("users").UpdateOne(ctx,
			bson.M{"_id": userID},
			bson.M{"$set": bson.M{"addresses": remaining, "updatedAt": time.Now()}},
		)
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error", err)
			return
		}

		respondData(c, http.StatusOK, remaining)
	}
}

// GetUsers lists accounts for the back office.
func GetUsers(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/admin/users"
		defer handlePanic(c, route)

		page, limit, err := parsePaginationParams(c.Query("page"), c.Query("limit"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid pagination parameters", err)
			return
		}

		filter := bson.M{}
		if role := strings.TrimSpace(c.Query("role")); role != "" {
			filter["role"] = role
		}
		if search := strings.TrimSpace(c.Query("search")); search != "" {
			filter["$or"] = bson.A{
				bson.M{"email": bson.M{"$regex": search, "$options": "i"}},
				bson.M{"name": bson.M{"$regex": search, "$options": "i"}},
			}
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		total, err := db.Collection("users").CountDocuments(ctx, filter)
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error", err)
			return
		}

		opts := options.Find().
			SetSkip((page - 1) * limit).
			SetLimit(limit).
			SetSort(bson.D{{Key: "createdAt", Value: -1}})

		cursor, err := db.Collection("users").Find(ctx, filter, opts)
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error", err)
			return
		}
		defer cursor.Close(ctx)

		users := make([]models.User, 0)
		if err := cursor.All(ctx, &users); err != nil {
			respondError(c, http.StatusInternalServerError, route, "decode error", err)
			return
		}

		respondList(c, users, page, limit, total, totalPages(total, limit))
	}
}

// UpdateUserRole promotes or demotes an account. An admin cannot demote
// themselves, so there is always at least one admin left.
func UpdateUserRole(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/admin/users/:id/role"
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

		var req struct {
			Role string `json:"role" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid request body", err)
			return
		}
		if req.Role != models.RoleCustomer && req.Role != models.RoleAdmin {
			respondError(c, http.StatusBadRequest, route, "invalid role", nil)
			return
		}
		if id == adminID && req.Role != models.RoleAdmin {
			respondError(c, http.StatusBadRequest, route, "cannot change your own role", nil)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var updated models.User
		err = db.Collection("users").FindOneAndUpdate(ctx,
			bson.M{"_id": id},
			bson.M{"$set": bson.M{"role": req.Role, "updatedAt": time.Now()}},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&updated)
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, route, "user not found", nil)
			return
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error", err)
			return
		}

		respondData(c, http.StatusOK, updated)
	}
}
