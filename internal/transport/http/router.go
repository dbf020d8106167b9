package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/greengrocer/produce_shop/internal/handlers"
	"github.com/greengrocer/produce_shop/internal/middleware/auth"
)

type Deps struct {
	Gate            *auth.Gate
	AuthHandler     *handlers.AuthHandler
	ProductHandler  *handlers.ProductHandler
	CategoryHandler *handlers.CategoryHandler
	UserHandler     *handlers.UserHandler
	OrderHandler    *handlers.OrderHandler
	SearchHandler   *handlers.SearchHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	v1 := e.Group("/api/v1")

	v1.POST("/auth/register", d.AuthHandler.Register)
	v1.POST("/auth/login", d.AuthHandler.Login)
	v1.GET("/auth/me", d.AuthHandler.Me, d.Gate.RequireLogin)
	v1.GET("/search", d.SearchHandler.Search)

	products := v1.Group("/products")
	products.GET("", d.ProductHandler.GetProducts)
	products.GET("/:id", d.ProductHandler.GetProduct)
	products.POST("", d.ProductHandler.CreateProduct, d.Gate.AdminOnly)
	products.PUT("/:id", d.ProductHandler.UpdateProduct, d.Gate.AdminOnly)
	products.PATCH("/:id/stock", d.ProductHandler.UpdateStock, d.Gate.AdminOnly)
	products.DELETE("/:id", d.ProductHandler.DeleteProduct, d.Gate.AdminOnly)

	categories := v1.Group("/categories")
	categories.GET("", d.CategoryHandler.GetCategories)
	categories.GET("/:id", d.CategoryHandler.GetCategory)
	categories.POST("", d.CategoryHandler.CreateCategory, d.Gate.AdminOnly)
	categories.PUT("/:id", d.CategoryHandler.UpdateCategory, d.Gate.AdminOnly)
	categories.DELETE("/:id", d.CategoryHandler.DeleteCategory, d.Gate.AdminOnly)

	users := v1.Group("/users")
	users.PUT("/profile", d.UserHandler.UpdateProfile, d.Gate.RequireLogin)
	users.GET("", d.UserHandler.GetUsers, d.Gate.AdminOnly)
	users.GET("/:id", d.UserHandler.GetUser, d.Gate.AdminOnly)
	users.PATCH("/:id/role", d.UserHandler.UpdateRole, d.Gate.AdminOnly)

	orders := v1.Group("/orders", d.Gate.RequireLogin)
	orders.POST("", d.OrderHandler.CreateOrder)
	orders.GET("", d.OrderHandler.GetOrders)
	orders.GET("/:id", d.OrderHandler.GetOrder)
	orders.PATCH("/:id/status", d.OrderHandler.UpdateStatus, d.Gate.AdminOnly)
	orders.PATCH("/:id/cancel", d.OrderHandler.CancelOrder)
}
