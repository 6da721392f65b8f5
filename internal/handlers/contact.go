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

type createContactRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Phone   string `json:"phone"`
	Subject string `json:"subject" binding:"required"`
	Message string `json:"message" binding:"required"`
}

type updateContactRequest struct {
	Status   *string `json:"status"`
	Priority *string `json:"priority"`
}

// CreateContact files a visitor inquiry. No auth required.
func CreateContact(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/contact"
		defer handlePanic(c, route)

		var req createContactRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid request body", err)
			return
		}

		now := time.Now()
		contact := models.Contact{
			Name:      strings.TrimSpace(req.Name),
			Email:     strings.ToLower(strings.TrimSpace(req.Email)),
			Phone:     strings.TrimSpace(req.Phone),
			Subject:   strings.TrimSpace(req.Subject),
			Message:   strings.TrimSpace(req.Message),
			Status:    models.ContactStatusNew,
			Priority:  models.ContactPriorityMedium,
			CreatedAt: now,
			UpdatedAt: now,
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("contacts").InsertOne(ctx, contact)
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error", err)
			return
		}

		contact.ID = res.InsertedID.(primitive.ObjectID)
		respondData(c, http.StatusCreated, contact)
	}
}

// GetContacts lists inquiries for the back office, filterable by status and
// priority.
func GetContacts(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/admin/contacts"
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
		if priority := strings.TrimSpace(c.Query("priority")); priority != "" {
			filter["priority"] = priority
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		total, err := db.Collection("contacts").CountDocuments(ctx, filter)
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error", err)
			return
		}

		opts := options.Find().
			SetSkip((page - 1) * limit).
			SetLimit(limit).
			SetSort(bson.D{{Key: "createdAt", Value: -1}})

		cursor, err := db.Collection("contacts").Find(ctx, filter, opts)
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error", err)
			return
		}
		defer cursor.Close(ctx)

		contacts := make([]models.Contact, 0)
		if err := cursor.All(ctx, &contacts); err != nil {
			respondError(c, http.StatusInternalServerError, route, "decode error", err)
			return
		}

		respondList(c, contacts, page, limit, total, totalPages(total, limit))
	}
}

// UpdateContact moves an inquiry through the workflow. Status changes go
// through the transition table; moving to resolved or closed stamps the
// acting admin and time.
func UpdateContact(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/admin/contacts/:id"
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

		var req updateContactRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid request body", err)
			return
		}
		if req.Status == nil && req.Priority == nil {
			respondError(c, http.StatusBadRequest, route, "no fields to update", nil)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var contact models.Contact
		err = db.Collection("contacts").FindOne(ctx, bson.M{"_id": id}).Decode(&contact)
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, route, "contact not found", nil)
			return
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error", err)
			return
		}

		updateSet := bson.M{"updatedAt": time.Now()}

		if req.Priority != nil {
			if !models.IsValidContactPriority(*req.Priority) {
				respondError(c, http.StatusBadRequest, route, "invalid priority", nil)
				return
			}
			updateSet["priority"] = *req.Priority
		}

		if req.Status != nil {
			if err := checkContactTransition(contact.Status, *req.Status); err != nil {
				respondError(c, http.StatusBadRequest, route, err.Error(), nil)
				return
			}
			updateSet["status"] = *req.Status
			if contactNeedsResponseStamp(*req.Status) {
				updateSet["respondedAt"] = time.Now()
				updateSet["respondedBy"] = adminID
			}
		}

		var updated models.Contact
		err = db.Collection("contacts").FindOneAndUpdate(ctx,
			bson.M{"_id": id, "status": contact.Status},
			bson.M{"$set": updateSet},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&updated)
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusConflict, route, "contact was updated concurrently", nil)
			return
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error", err)
			return
		}

		respondData(c, http.StatusOK, updated)
	}
}

func DeleteContact(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/admin/contacts/:id"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid id", err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		result, err := db.Collection("contacts").DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error", err)
			return
		}
		if result.DeletedCount == 0 {
			respondError(c, http.StatusNotFound, route, "contact not found", nil)
			return
		}

		respondMessage(c, http.StatusOK, "contact deleted")
	}
}
