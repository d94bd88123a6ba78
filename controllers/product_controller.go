package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"bakery-service/models"
	"bakery-service/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ProductController handles catalog product endpoints.
type ProductController struct {
	productService services.ProductService
	validator      *RequestValidator
}

func NewProductController(productService services.ProductService, validator *RequestValidator) *ProductController {
	return &ProductController{productService: productService, validator: validator}
}

// ListProducts handles GET /products.
func (pc *ProductController) ListProducts(c *gin.Context) {
	filter, err := parseProductFilter(c)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	pc.list(c, filter)
}

// ListByCategory handles GET /products/category/:categoryId.
func (pc *ProductController) ListByCategory(c *gin.Context) {
	categoryID, ok := uuidParam(c, "categoryId")
	if !ok {
		return
	}
	filter, err := parseProductFilter(c)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	filter.CategoryID = &categoryID
	pc.list(c, filter)
}

func (pc *ProductController) list(c *gin.Context, filter models.ProductFilter) {
	page, svcErr := pc.productService.ListProducts(c.Request.Context(), filter)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, page)
}

// FeaturedProducts handles GET /products/featured.
func (pc *ProductController) FeaturedProducts(c *gin.Context) {
	products, svcErr := pc.productService.FeaturedProducts(c.Request.Context())
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, products)
}

// GetProduct handles GET /products/:id.
func (pc *ProductController) GetProduct(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	product, svcErr := pc.productService.GetProduct(c.Request.Context(), id)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, product)
}

// CreateProduct handles POST /products (admin).
func (pc *ProductController) CreateProduct(c *gin.Context) {
	var req models.CreateProductRequest
	if err := pc.validator.BindJSON(c, &req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	product, svcErr := pc.productService.CreateProduct(c.Request.Context(), &req)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusCreated, product)
}

// UpdateProduct handles PUT /products/:id (admin).
func (pc *ProductController) UpdateProduct(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req models.UpdateProductRequest
	if err := pc.validator.BindJSON(c, &req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	product, svcErr := pc.productService.UpdateProduct(c.Request.Context(), id, &req)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, product)
}

// DeleteProduct handles DELETE /products/:id (admin).
func (pc *ProductController) DeleteProduct(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if svcErr := pc.productService.DeleteProduct(c.Request.Context(), id); svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product removed"})
}

// UpdateStock handles PATCH /products/:id/stock (admin).
func (pc *ProductController) UpdateStock(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req models.UpdateStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Stock must be a non-negative integer")
		return
	}
	if svcErr := pc.productService.UpdateStock(c.Request.Context(), id, *req.Stock); svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Stock updated", "stock": *req.Stock})
}

var productSorts = map[string]bool{"price_asc": true, "price_desc": true, "name": true}

func parseProductFilter(c *gin.Context) (models.ProductFilter, error) {
	page, limit := ParsePagination(c)
	filter := models.ProductFilter{
		Subcategory: strings.TrimSpace(c.Query("subcategory")),
		Search:      strings.TrimSpace(c.Query("search")),
		Page:        page,
		Limit:       limit,
	}

	if raw := strings.TrimSpace(c.Query("category")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filter, errInvalidQuery("category")
		}
		filter.CategoryID = &id
	}
	if sort := strings.TrimSpace(c.Query("sort")); sort != "" {
		if !productSorts[sort] {
			return filter, errInvalidQuery("sort")
		}
		filter.Sort = sort
	}
	var err error
	if filter.Featured, err = boolQuery(c, "featured"); err != nil {
		return filter, err
	}
	if filter.InStock, err = boolQuery(c, "inStock"); err != nil {
		return filter, err
	}
	return filter, nil
}

func boolQuery(c *gin.Context, name string) (bool, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errInvalidQuery(name)
	}
	return v, nil
}

func errInvalidQuery(name string) error {
	return fmt.Errorf("invalid value for '%s'", name)
}
