package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
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
	homePageCacheKey = "homepage:settings"
	homePageCacheTTL = 10 * time.Minute
)

type homePageRequest struct {
	HeroSlides         []models.HeroSlide `json:"heroSlides"`
	FeaturedComboIDs   []string           `json:"featuredComboIds"`
	FeaturedProductIDs []string           `json:"featuredProductIds"`
	Announcement       string             `json:"announcement"`
	ContactEmail       string             `json:"contactEmail"`
	ContactPhone       string             `json:"contactPhone"`
	Social             models.SocialLinks `json:"social"`
}

func parseObjectIDList(hexes []string) ([]primitive.ObjectID, error) {
	ids := make([]primitive.ObjectID, 0, len(hexes))
	for _, h := range hexes {
		id, err := primitive.ObjectIDFromHex(strings.TrimSpace(h))
		if err != nil {
			return nil, fmt.Errorf("invalid id %q", h)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// GetHomePage returns the storefront homepage settings. Served from the
// cache when possible; an empty default is returned before the back office
// has saved anything.
func GetHomePage(db *mongo.Database, rc *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/homepage"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var settings models.HomePageSettings
		if rc.Get(ctx, homePageCacheKey, &settings) {
			respondData(c, http.StatusOK, settings)
			return
		}

		err := db.Collection("homepage").FindOne(ctx, bson.M{}).Decode(&settings)
		if err == mongo.ErrNoDocuments {
			respondData(c, http.StatusOK, models.HomePageSettings{
				HeroSlides:         []models.HeroSlide{},
				FeaturedComboIDs:   []primitive.ObjectID{},
				FeaturedProductIDs: []primitive.ObjectID{},
			})
			return
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error", err)
			return
		}

		rc.Set(ctx, homePageCacheKey, settings, homePageCacheTTL)
		respondData(c, http.StatusOK, settings)
	}
}

// UpdateHomePage upserts the singleton settings document and drops the cache.
func UpdateHomePage(db *mongo.Database, rc *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/admin/homepage"
		defer handlePanic(c, route)

		var req homePageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid request body", err)
			return
		}

		for i, slide := range req.HeroSlides {
			if strings.TrimSpace(slide.Title) == "" || strings.TrimSpace(slide.Image) == "" {
				respondError(c, http.StatusBadRequest, route,
					fmt.Sprintf("hero slide %d needs a title and an image", i+1), nil)
				return
			}
		}

		comboIDs, err := parseObjectIDList(req.FeaturedComboIDs)
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid featured combo id", err)
			return
		}
		productIDs, err := parseObjectIDList(req.FeaturedProductIDs)
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid featured product id", err)
			return
		}

		if req.HeroSlides == nil {
			req.HeroSlides = []models.HeroSlide{}
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		updateSet := bson.M{
			"heroSlides":         req.HeroSlides,
			"featuredComboIds":   comboIDs,
			"featuredProductIds": productIDs,
			"announcement":       strings.TrimSpace(req.Announcement),
			"contactEmail":       strings.TrimSpace(req.ContactEmail),
			"contactPhone":       strings.TrimSpace(req.ContactPhone),
			"social":             req.Social,
			"updatedAt":          time.Now(),
		}

		var updated models.HomePageSettings
		err = db.Collection("homepage").FindOneAndUpdate(ctx,
			bson.M{},
			bson.M{"$set": updateSet},
			options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
		).Decode(&updated)
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error", err)
			return
		}

		rc.Invalidate(ctx, homePageCacheKey)
		respondData(c, http.StatusOK, updated)
	}
}
