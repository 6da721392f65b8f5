package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"backend/internal/config"
	"backend/internal/models"
)

type adminLoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AdminLogin authenticates a back-office account and issues a signed access
// token. The same generic message covers unknown emails and wrong passwords.
func AdminLogin(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/admin/login"
		defer handlePanic(c, route)

		var req adminLoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid request body", err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		email := strings.ToLower(strings.TrimSpace(req.Email))

		var user models.User
		err := db.Collection("users").FindOne(ctx, bson.M{"email": email}).Decode(&user)
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusUnauthorized, route, "invalid credentials", nil)
			return
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error", err)
			return
		}

		if user.Role != models.RoleAdmin && !config.AppEnv.IsAdminEmail(user.Email) {
			respondError(c, http.StatusUnauthorized, route, "invalid credentials", nil)
			return
		}
		if !user.IsActive || user.PasswordHash == "" {
			respondError(c, http.StatusUnauthorized, route, "invalid credentials", nil)
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
			respondError(c, http.StatusUnauthorized, route, "invalid credentials", nil)
			return
		}

		now := time.Now()
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub":   user.ID.Hex(),
			"role":  models.RoleAdmin,
			"email": user.Email,
			"iat":   now.Unix(),
			"exp":   now.Add(config.AppEnv.AccessTokenTTL).Unix(),
		})
		signed, err := token.SignedString([]byte(config.AppEnv.JWTSecret))
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "token signing failed", err)
			return
		}

		respondData(c, http.StatusOK, gin.H{
			"token":     signed,
			"expiresAt": now.Add(config.AppEnv.AccessTokenTTL),
			"user": gin.H{
				"id":    user.ID.Hex(),
				"email": user.Email,
				"name":  user.Name,
				"role":  models.RoleAdmin,
			},
		})
	}
}
