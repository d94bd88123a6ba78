package routes

import (
	"net/http"

	"bakery-service/controllers"
	"bakery-service/middleware"

	"github.com/gin-gonic/gin"
)

// Controllers groups the handlers mounted under /api.
type Controllers struct {
	Products   *controllers.ProductController
	Categories *controllers.CategoryController
	Cart       *controllers.CartController
	Orders     *controllers.OrderController
	Payments   *controllers.PaymentController
}

// RegisterRoutes mounts the storefront API and the health check.
func RegisterRoutes(r *gin.Engine, auth *middleware.Authenticator, ctl Controllers) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK", "service": "bakery-service"})
	})

	api := r.Group("/api")
	authed := auth.AuthRequired()
	admin := []gin.HandlerFunc{authed, middleware.AdminOnly()}

	// Static segments are registered before /:id so they are never parsed as ids.
	products := api.Group("/products")
	products.GET("", ctl.Products.ListProducts)
	products.GET("/featured", ctl.Products.FeaturedProducts)
	products.GET("/category/:categoryId", ctl.Products.ListByCategory)
	products.GET("/:id", ctl.Products.GetProduct)
	productAdmin := products.Group("", admin...)
	productAdmin.POST("", ctl.Products.CreateProduct)
	productAdmin.PUT("/:id", ctl.Products.UpdateProduct)
	productAdmin.DELETE("/:id", ctl.Products.DeleteProduct)
	productAdmin.PATCH("/:id/stock", ctl.Products.UpdateStock)

	categories := api.Group("/categories")
	categories.GET("", ctl.Categories.ListCategories)
	categories.GET("/:id", ctl.Categories.GetCategory)
	categoryAdmin := categories.Group("", admin...)
	categoryAdmin.POST("", ctl.Categories.CreateCategory)
	categoryAdmin.PUT("/:id", ctl.Categories.UpdateCategory)
	categoryAdmin.DELETE("/:id", ctl.Categories.DeleteCategory)
	categoryAdmin.POST("/:id/subcategory", ctl.Categories.AddSubcategory)

	cart := api.Group("/cart", authed)
	cart.GET("", ctl.Cart.GetCart)
	cart.POST("", ctl.Cart.AddItem)
	cart.DELETE("", ctl.Cart.ClearCart)
	cart.PUT("/:productId", ctl.Cart.UpdateItem)
	cart.DELETE("/:productId", ctl.Cart.RemoveItem)

	orders := api.Group("/orders", authed)
	orders.POST("", ctl.Orders.CreateOrder)
	orders.GET("", ctl.Orders.ListMyOrders)
	orders.GET("/admin/all", middleware.AdminOnly(), ctl.Orders.ListAllOrders)
	orders.GET("/:id", ctl.Orders.GetOrder)
	orders.PUT("/:id/status", middleware.AdminOnly(), ctl.Orders.UpdateStatus)
	orders.PUT("/:id/cancel", ctl.Orders.CancelOrder)

	// The webhook is authenticated by its signature, not by a user.
	payment := api.Group("/payment")
	payment.POST("/webhook", ctl.Payments.Webhook)
	payment.GET("/key", ctl.Payments.GetKey)
	payment.POST("/create-order", authed, ctl.Payments.CreateGatewayOrder)
	payment.POST("/verify", authed, ctl.Payments.VerifyPayment)
}
