package controllers

import (
	"net/http"

	"bakery-service/models"
	"bakery-service/services"

	"github.com/gin-gonic/gin"
)

type CategoryController struct {
	categoryService services.CategoryService
	validator       *RequestValidator
}

func NewCategoryController(categoryService services.CategoryService, validator *RequestValidator) *CategoryController {
	return &CategoryController{categoryService: categoryService, validator: validator}
}

func (cc *CategoryController) ListCategories(c *gin.Context) {
	categories, svcErr := cc.categoryService.ListCategories(c.Request.Context())
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (cc *CategoryController) GetCategory(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	category, svcErr := cc.categoryService.GetCategory(c.Request.Context(), id)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, category)
}

func (cc *CategoryController) CreateCategory(c *gin.Context) {
	var req models.CreateCategoryRequest
	if err := cc.validator.BindJSON(c, &req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	category, svcErr := cc.categoryService.CreateCategory(c.Request.Context(), &req)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusCreated, category)
}

func (cc *CategoryController) UpdateCategory(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req models.UpdateCategoryRequest
	if err := cc.validator.BindJSON(c, &req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	category, svcErr := cc.categoryService.UpdateCategory(c.Request.Context(), id, &req)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, category)
}

func (cc *CategoryController) DeleteCategory(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if svcErr := cc.categoryService.DeleteCategory(c.Request.Context(), id); svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Category removed"})
}

// AddSubcategory handles POST /categories/:id/subcategory (admin).
func (cc *CategoryController) AddSubcategory(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var sub models.Subcategory
	if err := cc.validator.BindJSON(c, &sub); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	category, svcErr := cc.categoryService.AddSubcategory(c.Request.Context(), id, sub)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusCreated, category)
}
