package controllers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"

	"bakery-service/middleware"
	"bakery-service/models"
	"bakery-service/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func svcErrAt(args mock.Arguments, i int) *services.ServiceError {
	if e, ok := args.Get(i).(*services.ServiceError); ok {
		return e
	}
	return nil
}

// --- OrderService ---

type mockOrderService struct{ mock.Mock }

func (m *mockOrderService) CreateOrder(ctx context.Context, userID string, req *models.CreateOrderRequest) (*models.Order, *services.ServiceError) {
	args := m.Called(ctx, userID, req)
	o, _ := args.Get(0).(*models.Order)
	return o, svcErrAt(args, 1)
}

func (m *mockOrderService) ListUserOrders(ctx context.Context, userID string) ([]models.Order, *services.ServiceError) {
	args := m.Called(ctx, userID)
	o, _ := args.Get(0).([]models.Order)
	return o, svcErrAt(args, 1)
}

func (m *mockOrderService) GetOrder(ctx context.Context, p models.Principal, id uuid.UUID) (*models.Order, *services.ServiceError) {
	args := m.Called(ctx, p, id)
	o, _ := args.Get(0).(*models.Order)
	return o, svcErrAt(args, 1)
}

func (m *mockOrderService) ListAllOrders(ctx context.Context, q models.OrderListQuery) (*models.OrderPage, *services.ServiceError) {
	args := m.Called(ctx, q)
	p, _ := args.Get(0).(*models.OrderPage)
	return p, svcErrAt(args, 1)
}

func (m *mockOrderService) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*models.Order, *services.ServiceError) {
	args := m.Called(ctx, id, status)
	o, _ := args.Get(0).(*models.Order)
	return o, svcErrAt(args, 1)
}

func (m *mockOrderService) CancelOrder(ctx context.Context, p models.Principal, id uuid.UUID) (*models.Order, *services.ServiceError) {
	args := m.Called(ctx, p, id)
	o, _ := args.Get(0).(*models.Order)
	return o, svcErrAt(args, 1)
}

// --- PaymentService ---

type mockPaymentService struct{ mock.Mock }

func (m *mockPaymentService) CreateGatewayOrder(ctx context.Context, req *models.CreateGatewayOrderRequest) (map[string]interface{}, *services.ServiceError) {
	args := m.Called(ctx, req)
	o, _ := args.Get(0).(map[string]interface{})
	return o, svcErrAt(args, 1)
}

func (m *mockPaymentService) KeyID() string {
	return m.Called().String(0)
}

func (m *mockPaymentService) VerifyPayment(ctx context.Context, p models.Principal, req *models.VerifyPaymentRequest) (*models.VerifyPaymentResult, *services.ServiceError) {
	args := m.Called(ctx, p, req)
	r, _ := args.Get(0).(*models.VerifyPaymentResult)
	return r, svcErrAt(args, 1)
}

func (m *mockPaymentService) HandleWebhook(ctx context.Context, signature string, body []byte) *services.ServiceError {
	return svcErrAt(m.Called(ctx, signature, body), 0)
}

// --- ProductService ---

type mockProductService struct{ mock.Mock }

func (m *mockProductService) ListProducts(ctx context.Context, f models.ProductFilter) (*models.ProductPage, *services.ServiceError) {
	args := m.Called(ctx, f)
	p, _ := args.Get(0).(*models.ProductPage)
	return p, svcErrAt(args, 1)
}

func (m *mockProductService) FeaturedProducts(ctx context.Context) ([]models.Product, *services.ServiceError) {
	args := m.Called(ctx)
	p, _ := args.Get(0).([]models.Product)
	return p, svcErrAt(args, 1)
}

func (m *mockProductService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, *services.ServiceError) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*models.Product)
	return p, svcErrAt(args, 1)
}

func (m *mockProductService) CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, *services.ServiceError) {
	args := m.Called(ctx, req)
	p, _ := args.Get(0).(*models.Product)
	return p, svcErrAt(args, 1)
}

func (m *mockProductService) UpdateProduct(ctx context.Context, id uuid.UUID, req *models.UpdateProductRequest) (*models.Product, *services.ServiceError) {
	args := m.Called(ctx, id, req)
	p, _ := args.Get(0).(*models.Product)
	return p, svcErrAt(args, 1)
}

func (m *mockProductService) DeleteProduct(ctx context.Context, id uuid.UUID) *services.ServiceError {
	return svcErrAt(m.Called(ctx, id), 0)
}

func (m *mockProductService) UpdateStock(ctx context.Context, id uuid.UUID, stock int) *services.ServiceError {
	return svcErrAt(m.Called(ctx, id, stock), 0)
}

// --- CartService ---

type mockCartService struct{ mock.Mock }

func (m *mockCartService) GetCart(ctx context.Context, userID string) (*models.CartView, *services.ServiceError) {
	args := m.Called(ctx, userID)
	v, _ := args.Get(0).(*models.CartView)
	return v, svcErrAt(args, 1)
}

func (m *mockCartService) AddItem(ctx context.Context, userID string, req *models.AddCartItemRequest) (*models.CartSummary, *services.ServiceError) {
	args := m.Called(ctx, userID, req)
	s, _ := args.Get(0).(*models.CartSummary)
	return s, svcErrAt(args, 1)
}

func (m *mockCartService) UpdateItem(ctx context.Context, userID string, productID uuid.UUID, req *models.UpdateCartItemRequest) (*models.CartSummary, *services.ServiceError) {
	args := m.Called(ctx, userID, productID, req)
	s, _ := args.Get(0).(*models.CartSummary)
	return s, svcErrAt(args, 1)
}

func (m *mockCartService) RemoveItem(ctx context.Context, userID string, productID uuid.UUID) (*models.CartSummary, *services.ServiceError) {
	args := m.Called(ctx, userID, productID)
	s, _ := args.Get(0).(*models.CartSummary)
	return s, svcErrAt(args, 1)
}

func (m *mockCartService) ClearCart(ctx context.Context, userID string) (*models.CartSummary, *services.ServiceError) {
	args := m.Called(ctx, userID)
	s, _ := args.Get(0).(*models.CartSummary)
	return s, svcErrAt(args, 1)
}

// --- Helpers ---

// as injects p the way AuthRequired would.
func as(p models.Principal) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.PrincipalKey, p)
		c.Next()
	}
}

var customer = models.Principal{UserID: "user-1", Role: "customer", Name: "Asha"}

func perform(r http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
