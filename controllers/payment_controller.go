package controllers

import (
	"net/http"

	"bakery-service/models"
	"bakery-service/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const webhookSignatureHeader = "X-Razorpay-Signature"

// PaymentController fronts the hosted payment gateway.
type PaymentController struct {
	paymentService services.PaymentService
	logger         *zap.Logger
}

func NewPaymentController(paymentService services.PaymentService, logger *zap.Logger) *PaymentController {
	return &PaymentController{paymentService: paymentService, logger: logger}
}

// CreateGatewayOrder handles POST /payment/create-order.
func (pc *PaymentController) CreateGatewayOrder(c *gin.Context) {
	var req models.CreateGatewayOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid amount", "code": services.CodeInvalidAmount})
		return
	}
	order, svcErr := pc.paymentService.CreateGatewayOrder(c.Request.Context(), &req)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"success": false, "error": svcErr.Message, "code": svcErr.Code})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"order":   order,
		"key_id":  pc.paymentService.KeyID(),
	})
}

// VerifyPayment handles POST /payment/verify.
func (pc *PaymentController) VerifyPayment(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req models.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Missing payment details", "code": services.CodeMissingPaymentFields})
		return
	}

	result, svcErr := pc.paymentService.VerifyPayment(c.Request.Context(), p, &req)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"success": false, "error": svcErr.Message, "code": svcErr.Code})
		return
	}

	message := "Order already created"
	if result.Created {
		message = "Payment verified and order created successfully"
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "order": result.Order, "message": message})
}

// Webhook handles POST /payment/webhook. The signature covers the raw body,
// so it is read as bytes before any decoding.
func (pc *PaymentController) Webhook(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		pc.logger.Warn("Failed to read webhook body", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unreadable body", "code": services.CodeValidationFailed})
		return
	}

	if svcErr := pc.paymentService.HandleWebhook(c.Request.Context(), c.GetHeader(webhookSignatureHeader), body); svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}

// GetKey handles GET /payment/key.
func (pc *PaymentController) GetKey(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"key_id": pc.paymentService.KeyID()})
}
