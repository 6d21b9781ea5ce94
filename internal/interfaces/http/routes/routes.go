// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/Lizasatasiya/Zelie-web/internal/app"
	"github.com/Lizasatasiya/Zelie-web/internal/interfaces/http/handlers"
	"github.com/Lizasatasiya/Zelie-web/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// SetupRoutes registers every storefront route under rg. The session and
// optional-auth middleware run before these, so every handler sees a
// session id and, when signed in, an identity.
func SetupRoutes(rg *gin.RouterGroup, a *app.App) {
	SetupAuthRoutes(rg, a)
	SetupProductRoutes(rg, a)
	SetupCartRoutes(rg, a)
	SetupWishlistRoutes(rg, a)
	SetupNotificationRoutes(rg, a)
	SetupCheckoutRoutes(rg, a)
	SetupOrderRoutes(rg, a)
}

// SetupAuthRoutes sets up authentication related routes
func SetupAuthRoutes(rg *gin.RouterGroup, a *app.App) {
	authHandler := handlers.NewAuthHandler(a.Identity)

	auth := rg.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.RefreshToken)

		protected := auth.Group("")
		protected.Use(middleware.RequireAuth())
		{
			protected.POST("/logout", authHandler.Logout)
			protected.GET("/me", authHandler.GetCurrentUser)
		}
	}
}

// SetupProductRoutes sets up catalog routes
func SetupProductRoutes(rg *gin.RouterGroup, a *app.App) {
	productHandler := handlers.NewProductHandler(a.Catalog, a.Config)

	rg.GET("/storefront", productHandler.GetStorefront)
	rg.GET("/categories", productHandler.GetCategories)

	products := rg.Group("/products")
	{
		products.GET("", productHandler.GetProducts)
		products.GET("/:id", productHandler.GetProduct)
	}
}

// SetupCartRoutes sets up cart routes
func SetupCartRoutes(rg *gin.RouterGroup, a *app.App) {
	cartHandler := handlers.NewCartHandler(a.Carts, a.Metrics)

	cart := rg.Group("/cart")
	{
		cart.GET("", cartHandler.GetCart)
		cart.DELETE("", cartHandler.ClearCart)
		cart.POST("/items", cartHandler.AddToCart)
		cart.PUT("/items/:product_id", cartHandler.UpdateCartItem)
		cart.DELETE("/items/:product_id", cartHandler.RemoveFromCart)
	}
}

// SetupWishlistRoutes sets up wishlist routes
func SetupWishlistRoutes(rg *gin.RouterGroup, a *app.App) {
	wishlistHandler := handlers.NewWishlistHandler(a.Wishlist, a.Metrics)

	wishlist := rg.Group("/wishlist")
	{
		wishlist.GET("", wishlistHandler.GetWishlist)
		wishlist.POST("/:product_id/toggle", wishlistHandler.ToggleWishlist)
	}
}

// SetupNotificationRoutes sets up popup routes
func SetupNotificationRoutes(rg *gin.RouterGroup, a *app.App) {
	notificationHandler := handlers.NewNotificationHandler(a.Notifications)

	notifications := rg.Group("/notifications")
	{
		notifications.GET("/current", notificationHandler.GetCurrent)
		notifications.DELETE("/current", notificationHandler.Dismiss)
	}
}

// SetupCheckoutRoutes sets up checkout routes. Sign-in is checked by the
// checkout service itself so guests get the storefront's prompts.
func SetupCheckoutRoutes(rg *gin.RouterGroup, a *app.App) {
	checkoutHandler := handlers.NewCheckoutHandler(a.Checkout)

	checkout := rg.Group("/checkout")
	{
		checkout.POST("", checkoutHandler.OpenCheckout)
		checkout.GET("/:id", checkoutHandler.GetCheckout)
		checkout.POST("/:id/submit", checkoutHandler.SubmitCheckout)
		checkout.POST("/:id/payment", checkoutHandler.ConfirmPayment)
		checkout.DELETE("/:id", checkoutHandler.CloseCheckout)
	}
}

// SetupOrderRoutes sets up order history routes
func SetupOrderRoutes(rg *gin.RouterGroup, a *app.App) {
	orderHandler := handlers.NewOrderHandler(a.Orders, a.Metrics)

	orders := rg.Group("/orders")
	{
		orders.GET("", orderHandler.GetOrders)
		orders.GET("/:id", orderHandler.GetOrder)
		orders.GET("/:id/receipt", orderHandler.GetReceipt)
	}
}
