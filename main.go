package main

import (
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"backend/internal/cache"
	"backend/internal/config"
	"backend/internal/database"
	"backend/internal/handlers"
	"backend/internal/middleware"
)

func main() {
	config.Load()

	client, err := database.Connect(config.AppEnv.MongoURI)
	if err != nil {
		log.Fatal(err)
	}

	db := client.Database(config.AppEnv.DBName)

	log.Println("MongoDB connected to:", db.Name())

	ensureIndexes(db)

	store := cache.Connect(config.AppEnv.RedisAddr)

	r := gin.Default()

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "ok"})
	})

	userAuth := middleware.UserAuth(config.AppEnv.JWTSecret)
	adminAuth := middleware.AdminAuth(config.AppEnv.JWTSecret, config.AppEnv.IsAdminEmail)

	api := r.Group("/api")
	{
		// Storefront, no auth.
		api.GET("/products", handlers.GetProducts(db))
		api.GET("/products/:id", handlers.GetProduct(db))
		api.GET("/products/:id/reviews", handlers.GetProductReviews(db))
		api.GET("/categories", handlers.GetCategories(db))
		api.GET("/combos", handlers.GetCombos(db, store))
		api.GET("/combos/:id", handlers.GetCombo(db))
		api.GET("/homepage", handlers.GetHomePage(db, store))
		api.POST("/contact", handlers.CreateContact(db))
		api.POST("/coupons/validate", handlers.ValidateCoupon(db))

		// Authenticated storefront.
		api.GET("/cart", userAuth, handlers.GetCart(db))
		api.POST("/cart", userAuth, handlers.AddToCart(db))
		api.DELETE("/cart", userAuth, handlers.ClearCart(db))
		api.DELETE("/cart/:itemId", userAuth, handlers.RemoveFromCart(db))

		api.POST("/orders", userAuth, handlers.CreateOrder(db))
		api.GET("/orders", userAuth, handlers.GetMyOrders(db))

		api.POST("/reviews", userAuth, handlers.CreateReview(db))
		api.POST("/reviews/:id/helpful", userAuth, handlers.VoteReviewHelpful(db))
		api.POST("/reviews/:id/report", userAuth, handlers.ReportReview(db))

		api.GET("/users/me", userAuth, handlers.GetMe(db))
		api.PUT("/users/me", userAuth, handlers.UpdateMe(db))
		api.POST("/users/me/addresses", userAuth, handlers.AddAddress(db))
		api.PUT("/users/me/addresses/:addressId", userAuth, handlers.UpdateAddress(db))
		api.DELETE("/users/me/addresses/:addressId", userAuth, handlers.DeleteAddress(db))

		// Combo management shares the /api/combos prefix with the public
		// reads; the writes are admin-only.
		api.POST("/combos", adminAuth, handlers.CreateCombo(db, store))
		api.PUT("/combos/:id", adminAuth, handlers.UpdateCombo(db, store))
		api.DELETE("/combos/:id", adminAuth, handlers.DeleteCombo(db, store))
		api.PATCH("/combos/:id/toggle-active", adminAuth, handlers.ToggleComboActive(db, store))
		api.POST("/combos/:id/fix-prices", adminAuth, handlers.FixComboPrices(db, store))
	}

	r.POST("/api/admin/login", handlers.AdminLogin(db))

	admin := r.Group("/api/admin")
	admin.Use(adminAuth)
	{
		admin.GET("/dashboard", handlers.GetDashboard(db))

		admin.GET("/products", handlers.GetAllProducts(db))
		admin.POST("/products", handlers.CreateProduct(db))
		admin.PUT("/products/:id", handlers.UpdateProduct(db))
		admin.DELETE("/products/:id", handlers.DeleteProduct(db))

		admin.GET("/categories", handlers.GetAllCategories(db))
		admin.POST("/categories", handlers.CreateCategory(db))
		admin.PUT("/categories/:id", handlers.UpdateCategory(db))
		admin.DELETE("/categories/:id", handlers.DeleteCategory(db))

		admin.GET("/combos", handlers.GetAllCombos(db))

		admin.GET("/orders", handlers.GetOrders(db))
		admin.GET("/orders/:id", handlers.GetOrder(db))
		admin.PATCH("/orders/:id/status", handlers.UpdateOrderStatus(db))
		admin.DELETE("/orders/:id", handlers.DeleteOrder(db))

		admin.POST("/offline-orders", handlers.CreateOfflineOrder(db))
		admin.GET("/offline-orders", handlers.GetOfflineOrders(db))

		admin.GET("/reviews", handlers.GetAllReviews(db))
		admin.PATCH("/reviews/:id/status", handlers.UpdateReviewStatus(db))
		admin.POST("/reviews/:id/respond", handlers.RespondToReview(db))
		admin.DELETE("/reviews/:id", handlers.DeleteReview(db))

		admin.GET("/contacts", handlers.GetContacts(db))
		admin.PUT("/contacts/:id", handlers.UpdateContact(db))
		admin.DELETE("/contacts/:id", handlers.DeleteContact(db))

		admin.GET("/coupons", handlers.GetCoupons(db))
		admin.POST("/coupons", handlers.CreateCoupon(db))
		admin.PUT("/coupons/:id", handlers.UpdateCoupon(db))
		admin.DELETE("/coupons/:id", handlers.DeleteCoupon(db))

		admin.PUT("/homepage", handlers.UpdateHomePage(db, store))

		admin.GET("/users", handlers.GetUsers(db))
		admin.PUT("/users/:id/role", handlers.UpdateUserRole(db))
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	r.Run(":" + port)
}

func ensureIndexes(db *mongo.Database) {
	checks := []struct {
		name string
		fn   func(*mongo.Database) error
	}{
		{"product", database.EnsureProductIndexes},
		{"user", database.EnsureUserIndexes},
		{"order", database.EnsureOrderIndexes},
		{"cart", database.EnsureCartIndexes},
		{"review", database.EnsureReviewIndexes},
		{"coupon", database.EnsureCouponIndexes},
		{"combo", database.EnsureComboIndexes},
	}
	for _, check := range checks {
		if err := check.fn(db); err != nil {
			log.Printf("⚠️ %s index warning: %v", check.name, err)
		}
	}
}
