package controllers

import (
	"net/http"
	"strings"

	"bakery-service/models"
	"bakery-service/services"

	"github.com/gin-gonic/gin"
)

// OrderController handles checkout and order lifecycle endpoints.
type OrderController struct {
	orderService services.OrderService
}

func NewOrderController(orderService services.OrderService) *OrderController {
	return &OrderController{orderService: orderService}
}

// CreateOrder handles POST /orders.
func (oc *OrderController) CreateOrder(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "code": services.CodeValidationFailed, "details": err.Error()})
		return
	}
	order, svcErr := oc.orderService.CreateOrder(c.Request.Context(), p.UserID, &req)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusCreated, order)
}

// ListMyOrders handles GET /orders.
func (oc *OrderController) ListMyOrders(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	orders, svcErr := oc.orderService.ListUserOrders(c.Request.Context(), p.UserID)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// GetOrder handles GET /orders/:id.
func (oc *OrderController) GetOrder(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	order, svcErr := oc.orderService.GetOrder(c.Request.Context(), p, id)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, order)
}

// ListAllOrders handles GET /orders/admin/all (admin).
func (oc *OrderController) ListAllOrders(c *gin.Context) {
	page, limit := ParsePagination(c)
	q := models.OrderListQuery{Page: page, Limit: limit}
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status, err := models.ParseOrderStatus(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status", "code": services.CodeInvalidStatus})
			return
		}
		q.Status = &status
	}

	result, svcErr := oc.orderService.ListAllOrders(c.Request.Context(), q)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, result)
}

// UpdateStatus handles PUT /orders/:id/status (admin).
func (oc *OrderController) UpdateStatus(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req models.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "status is required")
		return
	}
	order, svcErr := oc.orderService.UpdateStatus(c.Request.Context(), id, req.Status)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, order)
}

// CancelOrder handles PUT /orders/:id/cancel.
func (oc *OrderController) CancelOrder(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	order, svcErr := oc.orderService.CancelOrder(c.Request.Context(), p, id)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, order)
}
