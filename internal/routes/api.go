package routes

import (
	"github.com/labstack/echo/v4"
)

// RegisterAPIRoutes registers the storefront JSON API on g (mounted at /api)
func RegisterAPIRoutes(g *echo.Group, deps APIDeps) {
	// Cart
	cart := deps.CartHandler
	g.GET("/cart", cart.Current)
	g.GET("/cart/:cartId", cart.Get)
	g.POST("/cart", cart.Add)
	g.PUT("/cart/:itemId", cart.Update)
	g.DELETE("/cart/:itemId", cart.Remove)
	g.DELETE("/cart", cart.Clear)

	// Catalog
	catalog := deps.CatalogHandler
	g.GET("/products", catalog.List)
	g.GET("/products/featured", catalog.Featured)
	g.GET("/products/search", catalog.Search)
	g.GET("/products/:ref", catalog.Get)
	g.GET("/categories", catalog.Categories)
	g.GET("/categories/:slug", catalog.Category)
	g.GET("/categories/:slug/products", catalog.CategoryProducts)
	g.GET("/testimonials", catalog.Testimonials)

	// Newsletter
	g.POST("/newsletter", deps.NewsletterHandler.Subscribe)
}
