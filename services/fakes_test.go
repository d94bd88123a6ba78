package services_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"bakery-service/models"
	"bakery-service/repository"
	"bakery-service/services"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// --- Products ---

type fakeProducts struct {
	mu       sync.Mutex
	products map[uuid.UUID]*models.Product
	listCall int
}

func newFakeProducts(products ...*models.Product) *fakeProducts {
	f := &fakeProducts{products: make(map[uuid.UUID]*models.Product)}
	for _, p := range products {
		f.products[p.ID] = p
	}
	return f
}

func (f *fakeProducts) stock(id uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.products[id].Stock
}

func (f *fakeProducts) List(_ context.Context, _ models.ProductFilter) ([]models.Product, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCall++
	out := make([]models.Product, 0, len(f.products))
	for _, p := range f.products {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (f *fakeProducts) Featured(_ context.Context, limit int) ([]models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Product
	for _, p := range f.products {
		if p.IsFeatured && len(out) < limit {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeProducts) FindByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProducts) FindByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[uuid.UUID]models.Product)
	for _, id := range ids {
		if p, ok := f.products[id]; ok {
			out[id] = *p
		}
	}
	return out, nil
}

func (f *fakeProducts) Create(_ context.Context, p *models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *p
	f.products[p.ID] = &cp
	return nil
}

func (f *fakeProducts) Update(_ context.Context, id uuid.UUID, updates map[string]interface{}) (*models.Product, error) {
	f.mu.Lock()
	p, ok := f.products[id]
	if !ok {
		f.mu.Unlock()
		return nil, repository.ErrNotFound
	}
	if v, ok := updates["name"].(string); ok {
		p.Name = v
	}
	if v, ok := updates["price"].(decimal.Decimal); ok {
		p.Price = v
	}
	if v, ok := updates["stock"].(int); ok {
		p.Stock = v
	}
	f.mu.Unlock()
	return f.FindByID(context.Background(), id)
}

func (f *fakeProducts) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.products[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.products, id)
	return nil
}

func (f *fakeProducts) SetStock(_ context.Context, id uuid.UUID, stock int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.Stock = stock
	return nil
}

// --- Categories ---

type fakeCategories struct {
	categories map[uuid.UUID]*models.Category
}

func newFakeCategories(categories ...*models.Category) *fakeCategories {
	f := &fakeCategories{categories: make(map[uuid.UUID]*models.Category)}
	for _, c := range categories {
		f.categories[c.ID] = c
	}
	return f
}

func (f *fakeCategories) ListActive(_ context.Context) ([]models.Category, error) {
	var out []models.Category
	for _, c := range f.categories {
		if c.IsActive {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeCategories) FindByID(_ context.Context, id uuid.UUID) (*models.Category, error) {
	c, ok := f.categories[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCategories) ExistsByName(_ context.Context, name string) (bool, error) {
	for _, c := range f.categories {
		if strings.EqualFold(c.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeCategories) Create(_ context.Context, c *models.Category) error {
	cp := *c
	f.categories[c.ID] = &cp
	return nil
}

func (f *fakeCategories) Save(_ context.Context, c *models.Category) error {
	cp := *c
	f.categories[c.ID] = &cp
	return nil
}

func (f *fakeCategories) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.categories[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.categories, id)
	return nil
}

// --- Carts ---

type fakeCarts struct {
	mu    sync.Mutex
	carts map[string]*models.Cart
}

func newFakeCarts() *fakeCarts {
	return &fakeCarts{carts: make(map[string]*models.Cart)}
}

func (f *fakeCarts) Get(_ context.Context, userID string) (*models.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.carts[userID]
	if !ok {
		return nil, nil
	}
	cp := *c
	cp.Items = append([]models.CartItem{}, c.Items...)
	return &cp, nil
}

func (f *fakeCarts) Save(_ context.Context, cart *models.Cart) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *cart
	cp.Items = append([]models.CartItem{}, cart.Items...)
	f.carts[cart.UserID] = &cp
	return nil
}

func (f *fakeCarts) put(userID string, items ...models.CartItem) {
	f.carts[userID] = &models.Cart{UserID: userID, Items: items}
}

func (f *fakeCarts) items(userID string) []models.CartItem {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.carts[userID]; ok {
		return c.Items
	}
	return nil
}

// --- Orders ---

// fakeOrders applies stock changes all-or-nothing, like the transactional repository.
type fakeOrders struct {
	mu       sync.Mutex
	orders   map[uuid.UUID]*models.Order
	products *fakeProducts
	// beforePlace runs at the start of PlaceOrder, to simulate a concurrent checkout.
	beforePlace func()
}

func newFakeOrders(products *fakeProducts) *fakeOrders {
	return &fakeOrders{orders: make(map[uuid.UUID]*models.Order), products: products}
}

func copyOrder(o *models.Order) *models.Order {
	cp := *o
	cp.Items = append([]models.OrderItem{}, o.Items...)
	return &cp
}

func (f *fakeOrders) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.orders)
}

func (f *fakeOrders) get(id uuid.UUID) *models.Order {
	f.mu.Lock()
	defer f.mu.Unlock()
	return copyOrder(f.orders[id])
}

func (f *fakeOrders) put(o *models.Order) {
	f.orders[o.ID] = copyOrder(o)
}

func (f *fakeOrders) PlaceOrder(ctx context.Context, order *models.Order) error {
	if f.beforePlace != nil {
		f.beforePlace()
	}
	f.products.mu.Lock()
	for _, item := range order.Items {
		p, ok := f.products.products[item.ProductID]
		if !ok || p.Stock < item.Quantity {
			f.products.mu.Unlock()
			return &repository.InsufficientStockError{ProductID: item.ProductID}
		}
	}
	for _, item := range order.Items {
		f.products.products[item.ProductID].Stock -= item.Quantity
	}
	f.products.mu.Unlock()
	return f.Create(ctx, order)
}

func (f *fakeOrders) Create(_ context.Context, order *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if order.RazorpayPaymentID != nil {
		for _, o := range f.orders {
			if o.RazorpayPaymentID != nil && *o.RazorpayPaymentID == *order.RazorpayPaymentID {
				return repository.ErrDuplicate
			}
		}
	}
	order.CreatedAt = time.Now()
	f.orders[order.ID] = copyOrder(order)
	return nil
}

func (f *fakeOrders) FindByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyOrder(o), nil
}

func (f *fakeOrders) FindByUserID(_ context.Context, userID string) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Order
	for _, o := range f.orders {
		if o.UserID == userID {
			out = append(out, *copyOrder(o))
		}
	}
	return out, nil
}

func (f *fakeOrders) FindAll(_ context.Context, q models.OrderListQuery) ([]models.Order, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Order
	for _, o := range f.orders {
		if q.Status == nil || o.Status == *q.Status {
			out = append(out, *copyOrder(o))
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeOrders) findBy(match func(*models.Order) bool) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.orders {
		if match(o) {
			return copyOrder(o), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeOrders) FindByPaymentID(_ context.Context, paymentID string) (*models.Order, error) {
	return f.findBy(func(o *models.Order) bool {
		return o.RazorpayPaymentID != nil && *o.RazorpayPaymentID == paymentID
	})
}

func (f *fakeOrders) FindByGatewayOrderID(_ context.Context, gatewayOrderID string) (*models.Order, error) {
	return f.findBy(func(o *models.Order) bool {
		return o.RazorpayOrderID != nil && *o.RazorpayOrderID == gatewayOrderID
	})
}

func (f *fakeOrders) UpdateStatus(_ context.Context, id uuid.UUID, from, to models.OrderStatus, extra map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok || o.Status != from {
		return repository.ErrConflict
	}
	o.Status = to
	if t, ok := extra["delivered_at"].(time.Time); ok {
		o.DeliveredAt = &t
	}
	return nil
}

func (f *fakeOrders) Cancel(_ context.Context, order *models.Order, from models.OrderStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[order.ID]
	if !ok || o.Status != from {
		return repository.ErrConflict
	}
	o.Status = models.OrderStatusCancelled
	f.products.mu.Lock()
	for _, item := range order.Items {
		if p, ok := f.products.products[item.ProductID]; ok {
			p.Stock += item.Quantity
		}
	}
	f.products.mu.Unlock()
	return nil
}

func (f *fakeOrders) UpdatePayment(_ context.Context, id uuid.UUID, fields map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok || o.PaymentStatus == models.PaymentStatusPaid {
		return repository.ErrConflict
	}
	if v, ok := fields["payment_status"].(models.PaymentStatus); ok {
		o.PaymentStatus = v
	}
	if v, ok := fields["paid_at"].(time.Time); ok {
		o.PaidAt = &v
	}
	if v, ok := fields["razorpay_payment_id"].(string); ok {
		o.RazorpayPaymentID = &v
	}
	return nil
}

// --- Webhook audit ---

type fakeWebhookEvents struct {
	mu     sync.Mutex
	events []models.PaymentWebhookEvent
}

func (f *fakeWebhookEvents) Create(_ context.Context, e *models.PaymentWebhookEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, *e)
	return nil
}

// --- Events ---

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.OrderEvent
}

func (p *recordingPublisher) Publish(_ context.Context, e models.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fakeSNS struct {
	topic     string
	eventType string
	body      []byte
	err       error
}

func (f *fakeSNS) Publish(_ context.Context, topicArn, eventType string, message []byte) error {
	f.topic, f.eventType, f.body = topicArn, eventType, message
	return f.err
}

type fakeKafkaWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeKafkaWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeKafkaWriter) Close() error {
	w.closed = true
	return nil
}

// --- Gateway ---

type fakeGateway struct {
	amount   int64
	currency string
	receipt  string
	err      error
}

func (g *fakeGateway) CreateOrder(_ context.Context, amountPaise int64, currency, receipt string) (map[string]interface{}, error) {
	if g.err != nil {
		return nil, g.err
	}
	g.amount, g.currency, g.receipt = amountPaise, currency, receipt
	return map[string]interface{}{
		"id":       "order_test123",
		"amount":   amountPaise,
		"currency": currency,
		"receipt":  receipt,
	}, nil
}

func (g *fakeGateway) KeyID() string { return "rzp_test_key" }

// --- Helpers ---

var errBoom = errors.New("boom")

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func pieceProduct(name string, price int64, stock int) *models.Product {
	return &models.Product{
		ID:          uuid.New(),
		Name:        name,
		Price:       decimal.NewFromInt(price),
		PriceUnit:   models.PriceUnitPiece,
		Stock:       stock,
		IsAvailable: true,
	}
}

func kgProduct(name string, price int64, stock int) *models.Product {
	p := pieceProduct(name, price, stock)
	p.PriceUnit = models.PriceUnitKg
	return p
}

func weight(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func svcCode(err *services.ServiceError) string {
	if err == nil {
		return ""
	}
	return err.Code
}
