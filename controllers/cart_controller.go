package controllers

import (
	"net/http"

	"bakery-service/models"
	"bakery-service/services"

	"github.com/gin-gonic/gin"
)

// CartController serves the caller's own cart; every route requires auth.
type CartController struct {
	cartService services.CartService
}

func NewCartController(cartService services.CartService) *CartController {
	return &CartController{cartService: cartService}
}

// GetCart handles GET /cart.
func (cc *CartController) GetCart(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	view, svcErr := cc.cartService.GetCart(c.Request.Context(), p.UserID)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, view)
}

// AddItem handles POST /cart.
func (cc *CartController) AddItem(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req models.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request: productId is required")
		return
	}
	cart, svcErr := cc.cartService.AddItem(c.Request.Context(), p.UserID, &req)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, cart)
}

// UpdateItem handles PUT /cart/:productId.
func (cc *CartController) UpdateItem(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	productID, ok := uuidParam(c, "productId")
	if !ok {
		return
	}
	var req models.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}
	cart, svcErr := cc.cartService.UpdateItem(c.Request.Context(), p.UserID, productID, &req)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, cart)
}

// RemoveItem handles DELETE /cart/:productId.
func (cc *CartController) RemoveItem(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	productID, ok := uuidParam(c, "productId")
	if !ok {
		return
	}
	cart, svcErr := cc.cartService.RemoveItem(c.Request.Context(), p.UserID, productID)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, cart)
}

// ClearCart handles DELETE /cart.
func (cc *CartController) ClearCart(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	cart, svcErr := cc.cartService.ClearCart(c.Request.Context(), p.UserID)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared", "cart": cart})
}
