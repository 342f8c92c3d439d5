package routes

import (
	"github.com/gin-gonic/gin"

	"floralys_back_end/internal/handlers"
	"floralys_back_end/internal/middleware"
)

// Handlers regroupe tout ce que RegisterRoutes doit câbler.
type Handlers struct {
	Auth       *handlers.AuthHandler
	Products   *handlers.ProductHandler
	Categories *handlers.CategoryHandler
	Cart       *handlers.CartHandler
	Orders     *handlers.OrderHandler
	Payments   *handlers.PaymentHandler
}

func RegisterRoutes(r *gin.Engine, h Handlers, limiter *middleware.RateLimiter, jwtSecret string) {
	api := r.Group("/api")

	// Auth
	auth := api.Group("/auth")
	{
		auth.POST("/register", limiter.Register(), h.Auth.Register)
		auth.POST("/login", limiter.Login(), h.Auth.Login)
		auth.GET("/me", middleware.AuthRequired(jwtSecret), h.Auth.Me)
	}

	// Catalogue
	products := api.Group("/products")
	{
		products.GET("", h.Products.List)
		products.GET("/search", limiter.Search(), h.Products.Search)
		products.GET("/:id", h.Products.Get)

		admin := products.Group("", middleware.AuthRequired(jwtSecret), middleware.RequireAdmin)
		{
			admin.POST("", h.Products.Create)
			admin.PUT("/:id", h.Products.Update)
			admin.DELETE("/:id", h.Products.Delete)
			admin.PATCH("/:id/stock", h.Products.UpdateStock)
		}
	}

	categories := api.Group("/categories")
	{
		categories.GET("", h.Categories.List)
		categories.POST("", middleware.AuthRequired(jwtSecret), middleware.RequireAdmin, h.Categories.Create)
	}

	// Panier (connecté uniquement — le panier invité vit côté front)
	cart := api.Group("/cart", middleware.AuthRequired(jwtSecret))
	{
		cart.GET("", h.Cart.Get)
		cart.POST("/add", h.Cart.Add)
		cart.DELETE("/:productId", h.Cart.Remove)
		cart.DELETE("", h.Cart.Clear)
	}

	// Commandes
	orders := api.Group("/orders")
	{
		orders.POST("", middleware.OptionalAuth(jwtSecret), h.Orders.Create)
		orders.GET("/my-orders", middleware.AuthRequired(jwtSecret), h.Orders.MyOrders)
		orders.GET("/admin/all", middleware.AuthRequired(jwtSecret), middleware.RequireAdmin, h.Orders.AdminList)
		orders.GET("/:id", middleware.OptionalAuth(jwtSecret), h.Orders.Get)
		orders.PATCH("/:id/status", middleware.AuthRequired(jwtSecret), middleware.RequireAdmin, h.Orders.UpdateStatus)
	}

	// Paiements manuels
	payments := api.Group("/payments")
	{
		payments.GET("/methods", h.Payments.Methods)
		payments.GET("/order/:orderId/qr", h.Payments.QR)
		payments.POST("", middleware.OptionalAuth(jwtSecret), h.Payments.Submit)
		payments.GET("/:id", middleware.AuthRequired(jwtSecret), h.Payments.Get)
		payments.GET("/admin/pending", middleware.AuthRequired(jwtSecret), middleware.RequireAdmin, h.Payments.Pending)
		payments.PATCH("/:id/verify", middleware.AuthRequired(jwtSecret), middleware.RequireAdmin, h.Payments.Verify)
	}
}
