package routes_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"bakery-service/controllers"
	"bakery-service/middleware"
	"bakery-service/routes"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	v := controllers.NewRequestValidator()
	// Handlers are never reached in these tests, so nil services are fine.
	routes.RegisterRoutes(r, middleware.NewAuthenticator("secret", zap.NewNop()), routes.Controllers{
		Products:   controllers.NewProductController(nil, v),
		Categories: controllers.NewCategoryController(nil, v),
		Cart:       controllers.NewCartController(nil),
		Orders:     controllers.NewOrderController(nil),
		Payments:   controllers.NewPaymentController(nil, zap.NewNop()),
	})
	return r
}

func TestRegisterRoutes_Table(t *testing.T) {
	got := map[string]bool{}
	for _, ri := range newRouter().Routes() {
		got[ri.Method+" "+ri.Path] = true
	}

	for _, want := range []string{
		"GET /health",
		"GET /api/products",
		"GET /api/products/featured",
		"GET /api/products/category/:categoryId",
		"GET /api/products/:id",
		"POST /api/products",
		"PATCH /api/products/:id/stock",
		"POST /api/categories/:id/subcategory",
		"GET /api/cart",
		"DELETE /api/cart/:productId",
		"POST /api/orders",
		"GET /api/orders/admin/all",
		"PUT /api/orders/:id/status",
		"PUT /api/orders/:id/cancel",
		"POST /api/payment/create-order",
		"POST /api/payment/verify",
		"POST /api/payment/webhook",
		"GET /api/payment/key",
	} {
		assert.True(t, got[want], want)
	}
}

func TestRegisterRoutes_Guards(t *testing.T) {
	r := newRouter()
	customer := map[string]string{"X-User-ID": "user-1", "X-User-Role": "customer"}

	cases := []struct {
		method  string
		path    string
		headers map[string]string
		status  int
	}{
		{http.MethodGet, "/health", nil, http.StatusOK},
		{http.MethodGet, "/api/cart", nil, http.StatusUnauthorized},
		{http.MethodPost, "/api/orders", nil, http.StatusUnauthorized},
		{http.MethodPost, "/api/payment/verify", nil, http.StatusUnauthorized},
		{http.MethodPost, "/api/products", nil, http.StatusUnauthorized},
		{http.MethodPost, "/api/products", customer, http.StatusForbidden},
		{http.MethodDelete, "/api/categories/abc", customer, http.StatusForbidden},
		{http.MethodGet, "/api/orders/admin/all", customer, http.StatusForbidden},
		{http.MethodPut, "/api/orders/abc/status", customer, http.StatusForbidden},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		for k, v := range tc.headers {
			req.Header.Set(k, v)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, tc.status, w.Code, tc.method+" "+tc.path)
	}
}
