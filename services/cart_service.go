package services

import (
	"context"
	"errors"

	"bakery-service/models"
	"bakery-service/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CartService manages the per-user cart.
type CartService interface {
	GetCart(ctx context.Context, userID string) (*models.CartView, *ServiceError)
	AddItem(ctx context.Context, userID string, req *models.AddCartItemRequest) (*models.CartSummary, *ServiceError)
	UpdateItem(ctx context.Context, userID string, productID uuid.UUID, req *models.UpdateCartItemRequest) (*models.CartSummary, *ServiceError)
	RemoveItem(ctx context.Context, userID string, productID uuid.UUID) (*models.CartSummary, *ServiceError)
	ClearCart(ctx context.Context, userID string) (*models.CartSummary, *ServiceError)
}

type cartServiceImpl struct {
	carts    repository.CartRepository
	products repository.ProductRepository
	logger   *zap.Logger
}

func NewCartService(carts repository.CartRepository, products repository.ProductRepository, logger *zap.Logger) CartService {
	return &cartServiceImpl{carts: carts, products: products, logger: logger}
}

// load returns the user's cart, creating and persisting an empty one on first use.
func (s *cartServiceImpl) load(ctx context.Context, userID string) (*models.Cart, error) {
	cart, err := s.carts.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		cart = models.NewCart(userID)
		if err := s.carts.Save(ctx, cart); err != nil {
			return nil, err
		}
	}
	return cart, nil
}

func (s *cartServiceImpl) GetCart(ctx context.Context, userID string) (*models.CartView, *ServiceError) {
	cart, err := s.load(ctx, userID)
	if err != nil {
		return nil, internal(err)
	}
	summary, products, err := s.populate(ctx, cart)
	if err != nil {
		return nil, internal(err)
	}

	view := &models.CartView{Cart: *summary, TotalAmount: decimal.Zero}
	for _, item := range cart.Items {
		p, ok := products[item.ProductID]
		if !ok {
			continue
		}
		view.TotalItems += item.Quantity
		view.TotalAmount = view.TotalAmount.Add(p.LinePrice(item.Quantity, item.Weight))
	}
	return view, nil
}

func (s *cartServiceImpl) AddItem(ctx context.Context, userID string, req *models.AddCartItemRequest) (*models.CartSummary, *ServiceError) {
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}
	if quantity < 1 {
		return nil, badRequest(CodeValidationFailed, "Quantity must be at least 1")
	}
	if svcErr := checkWeight(req.Weight); svcErr != nil {
		return nil, svcErr
	}

	product, svcErr := s.liveProduct(ctx, req.ProductID)
	if svcErr != nil {
		return nil, svcErr
	}
	if product.Stock <= 0 {
		return nil, badRequest(CodeOutOfStock, "Product is out of stock")
	}

	cart, err := s.load(ctx, userID)
	if err != nil {
		return nil, internal(err)
	}

	if i := cart.Find(req.ProductID); i >= 0 {
		total := cart.Items[i].Quantity + quantity
		if total > product.Stock {
			return nil, stockCeiling(product.Stock)
		}
		cart.Items[i].Quantity = total
		if req.Weight.Valid {
			cart.Items[i].Weight = req.Weight
		}
	} else {
		if quantity > product.Stock {
			return nil, stockCeiling(product.Stock)
		}
		cart.Items = append(cart.Items, models.CartItem{
			ProductID: req.ProductID,
			Quantity:  quantity,
			Weight:    req.Weight,
		})
	}

	return s.saveAndPopulate(ctx, cart)
}

func (s *cartServiceImpl) UpdateItem(ctx context.Context, userID string, productID uuid.UUID, req *models.UpdateCartItemRequest) (*models.CartSummary, *ServiceError) {
	if req.Quantity > 0 {
		if svcErr := checkWeight(req.Weight); svcErr != nil {
			return nil, svcErr
		}
	}
	product, svcErr := s.liveProduct(ctx, productID)
	if svcErr != nil {
		return nil, svcErr
	}
	if req.Quantity > product.Stock {
		return nil, stockCeiling(product.Stock)
	}

	cart, err := s.carts.Get(ctx, userID)
	if err != nil {
		return nil, internal(err)
	}
	if cart == nil {
		return nil, notFound("Cart not found")
	}
	i := cart.Find(productID)
	if i < 0 {
		return nil, notFound("Item not found in cart")
	}

	if req.Quantity <= 0 {
		cart.Remove(productID)
	} else {
		cart.Items[i].Quantity = req.Quantity
		if req.Weight.Valid {
			cart.Items[i].Weight = req.Weight
		}
	}
	return s.saveAndPopulate(ctx, cart)
}

func (s *cartServiceImpl) RemoveItem(ctx context.Context, userID string, productID uuid.UUID) (*models.CartSummary, *ServiceError) {
	cart, err := s.load(ctx, userID)
	if err != nil {
		return nil, internal(err)
	}
	cart.Remove(productID)
	return s.saveAndPopulate(ctx, cart)
}

func (s *cartServiceImpl) ClearCart(ctx context.Context, userID string) (*models.CartSummary, *ServiceError) {
	cart := models.NewCart(userID)
	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, internal(err)
	}
	return &models.CartSummary{UserID: userID, Items: []models.CartLineView{}}, nil
}

func (s *cartServiceImpl) liveProduct(ctx context.Context, id uuid.UUID) (*models.Product, *ServiceError) {
	p, err := s.products.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound("Product not found")
	}
	if err != nil {
		return nil, internal(err)
	}
	return p, nil
}

func (s *cartServiceImpl) saveAndPopulate(ctx context.Context, cart *models.Cart) (*models.CartSummary, *ServiceError) {
	if err := s.carts.Save(ctx, cart); err != nil {
		s.logger.Error("Failed to save cart", zap.String("user_id", cart.UserID), zap.Error(err))
		return nil, internal(err)
	}
	summary, _, err := s.populate(ctx, cart)
	if err != nil {
		return nil, internal(err)
	}
	return summary, nil
}

// populate attaches live product data to each line. Lines whose product has
// been deleted keep a nil Product.
func (s *cartServiceImpl) populate(ctx context.Context, cart *models.Cart) (*models.CartSummary, map[uuid.UUID]models.Product, error) {
	ids := make([]uuid.UUID, 0, len(cart.Items))
	for _, item := range cart.Items {
		ids = append(ids, item.ProductID)
	}
	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, nil, err
	}

	summary := &models.CartSummary{UserID: cart.UserID, Items: make([]models.CartLineView, 0, len(cart.Items))}
	for _, item := range cart.Items {
		line := models.CartLineView{Quantity: item.Quantity, Weight: item.Weight}
		if p, ok := products[item.ProductID]; ok {
			line.Product = &models.CartProduct{
				ID:          p.ID,
				Name:        p.Name,
				Price:       p.Price,
				PriceUnit:   p.PriceUnit,
				Image:       p.Image,
				Stock:       p.Stock,
				IsAvailable: p.IsAvailable,
			}
		}
		summary.Items = append(summary.Items, line)
	}
	return summary, products, nil
}

func stockCeiling(stock int) *ServiceError {
	return badRequest(CodeInsufficientStock, "Only %d items available in stock", stock)
}

// checkWeight rejects a supplied weight that is zero or negative. An absent
// weight is fine.
func checkWeight(weight decimal.NullDecimal) *ServiceError {
	if weight.Valid && !models.HasWeight(weight) {
		return badRequest(CodeValidationFailed, "Weight must be greater than 0")
	}
	return nil
}
