// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/interfaces/http/handlers"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
	"gorm.io/gorm"
)

// SetupRoutes wires every API route group
func SetupRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client,
	orderService *order.Service, cfg *config.Config) {
	setupAuthRoutes(rg, db, redisClient, cfg)
	setupCatalogRoutes(rg, db, cfg)
	setupCartRoutes(rg, db, redisClient, cfg)
	setupCheckoutRoutes(rg, orderService, db, redisClient, cfg)
	setupPaymentRoutes(rg, orderService, cfg)
	setupOrderRoutes(rg, orderService, db, cfg)
	setupAdminRoutes(rg, orderService, db, cfg)
}

func setupAuthRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	authHandler := handlers.NewAuthHandler(db, redisClient, cfg)

	auth := rg.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.RefreshToken)
	}
}

func setupCatalogRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	productHandler := handlers.NewProductHandler(db, cfg)

	products := rg.Group("/products")
	{
		products.GET("", productHandler.ListProducts)
		products.GET("/:id", productHandler.GetProduct)
	}

	rg.GET("/categories", productHandler.ListCategories)
}

func setupCartRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	cartHandler := handlers.NewCartHandler(db, redisClient, cfg)

	// Carts work for guests and authenticated users alike; auth only
	// changes which cart key is used.
	cart := rg.Group("/cart")
	cart.Use(middleware.OptionalAuthMiddleware(cfg))
	{
		cart.GET("", cartHandler.GetCart)
		cart.POST("/items", cartHandler.AddToCart)
		cart.PUT("/items/:product_id", cartHandler.UpdateCartItem)
		cart.DELETE("/items/:product_id", cartHandler.RemoveCartItem)
		cart.DELETE("", cartHandler.ClearCart)
	}
}

func setupCheckoutRoutes(rg *gin.RouterGroup, orderService *order.Service, db *gorm.DB,
	redisClient *redis.Client, cfg *config.Config) {
	checkoutHandler := handlers.NewCheckoutHandler(orderService, db, redisClient, cfg)

	checkout := rg.Group("/checkout")
	checkout.Use(middleware.AuthMiddleware(cfg))
	{
		checkout.POST("/place-order", checkoutHandler.PlaceOrder)
		checkout.POST("/orders/:id/payment-url", checkoutHandler.GetPaymentURL)
	}
}

func setupPaymentRoutes(rg *gin.RouterGroup, orderService *order.Service, cfg *config.Config) {
	paymentHandler := handlers.NewPaymentHandler(orderService, cfg)

	// Gateway callbacks authenticate by signature, not by session.
	payment := rg.Group("/payment")
	{
		payment.GET("/vnpay-return", paymentHandler.VNPayReturn)
		payment.GET("/vnpay-ipn", paymentHandler.VNPayIPN)
	}
}

func setupOrderRoutes(rg *gin.RouterGroup, orderService *order.Service, db *gorm.DB, cfg *config.Config) {
	orderHandler := handlers.NewOrderHandler(orderService, db, cfg)

	orders := rg.Group("/orders")
	orders.Use(middleware.AuthMiddleware(cfg))
	{
		orders.GET("", orderHandler.ListMyOrders)
		orders.GET("/:id", orderHandler.GetMyOrder)
		orders.POST("/:id/cancel", orderHandler.CancelMyOrder)
	}
}

func setupAdminRoutes(rg *gin.RouterGroup, orderService *order.Service, db *gorm.DB, cfg *config.Config) {
	orderHandler := handlers.NewOrderHandler(orderService, db, cfg)

	admin := rg.Group("/admin")
	admin.Use(middleware.AuthMiddleware(cfg))
	admin.Use(middleware.AdminMiddleware())
	{
		orders := admin.Group("/orders")
		{
			orders.GET("", orderHandler.ListOrders)
			orders.POST("", orderHandler.CreateOrder)
			orders.GET("/:id", orderHandler.GetOrder)
			orders.PUT("/:id/status", orderHandler.UpdateOrderStatus)
			orders.POST("/:id/cancel", orderHandler.CancelOrder)
			orders.GET("/:id/transactions", orderHandler.ListTransactions)
			orders.GET("/:id/bill", orderHandler.GetBill)
		}
	}
}
