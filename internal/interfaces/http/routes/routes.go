// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-bff/internal/config"
	"github.com/your-org/storefront-bff/internal/domain/cart"
	"github.com/your-org/storefront-bff/internal/domain/wishlist"
	"github.com/your-org/storefront-bff/internal/infrastructure/commerce"
	"github.com/your-org/storefront-bff/internal/interfaces/http/handlers"
	"github.com/your-org/storefront-bff/internal/interfaces/http/middleware"
	"github.com/your-org/storefront-bff/internal/pkg/session"
)

// Deps carries the constructed services the routes need
type Deps struct {
	Config    *config.Config
	Logger    *logrus.Logger
	Carts     *cart.Service
	Wishlists *wishlist.Service
	Commerce  *commerce.Client
	Resolver  *session.Resolver
}

// SetupRoutes registers the storefront API surface
func SetupRoutes(rg *gin.RouterGroup, deps Deps) {
	cartHandler := handlers.NewCartHandler(deps.Carts, deps.Commerce, deps.Resolver, deps.Logger)
	wishlistHandler := handlers.NewWishlistHandler(deps.Wishlists, deps.Commerce, deps.Resolver, deps.Logger)
	productHandler := handlers.NewProductHandler(deps.Commerce, deps.Resolver)
	orderHandler := handlers.NewOrderHandler(deps.Carts, deps.Commerce, deps.Resolver, deps.Logger)
	authHandler := handlers.NewAuthHandler(deps.Carts, deps.Wishlists, deps.Commerce, deps.Resolver, deps.Logger)

	// Every route resolves identity; carts and wishlists work for both
	// anonymous sessions and authenticated users
	rg.Use(middleware.Identity(deps.Resolver))

	auth := rg.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)

		protected := auth.Group("")
		protected.Use(middleware.RequireAuth(deps.Resolver))
		{
			protected.POST("/logout", authHandler.Logout)
		}
	}

	products := rg.Group("/products")
	{
		products.GET("", productHandler.GetProducts)
		products.GET("/:id", productHandler.GetProduct)
	}

	cartGroup := rg.Group("/cart")
	{
		cartGroup.GET("", cartHandler.GetCart)
		cartGroup.POST("", cartHandler.AddToCart)
		cartGroup.DELETE("", cartHandler.RemoveFromCart)
		cartGroup.PUT("/items/:id", cartHandler.UpdateCartItem)
		cartGroup.GET("/count", cartHandler.GetCartCount)
		cartGroup.POST("/merge", middleware.RequireAuth(deps.Resolver), cartHandler.MergeCart)
	}

	wishlistGroup := rg.Group("/wishlist")
	{
		wishlistGroup.GET("", wishlistHandler.GetWishlist)
		wishlistGroup.POST("", wishlistHandler.ToggleWishlist)
		wishlistGroup.DELETE("", wishlistHandler.ClearWishlist)
		wishlistGroup.DELETE("/:id", wishlistHandler.RemoveFromWishlist)
	}

	orders := rg.Group("/order")
	orders.Use(middleware.RequireAuth(deps.Resolver))
	{
		orders.GET("", orderHandler.GetOrders)
		orders.POST("", orderHandler.CreateOrder)
	}
}
