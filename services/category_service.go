package services

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"bakery-service/models"
	"bakery-service/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CategoryService interface {
	ListCategories(ctx context.Context) ([]models.Category, *ServiceError)
	GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, *ServiceError)
	CreateCategory(ctx context.Context, req *models.CreateCategoryRequest) (*models.Category, *ServiceError)
	UpdateCategory(ctx context.Context, id uuid.UUID, req *models.UpdateCategoryRequest) (*models.Category, *ServiceError)
	DeleteCategory(ctx context.Context, id uuid.UUID) *ServiceError
	AddSubcategory(ctx context.Context, id uuid.UUID, sub models.Subcategory) (*models.Category, *ServiceError)
}

type categoryServiceImpl struct {
	repo   repository.CategoryRepository
	logger *zap.Logger
}

func NewCategoryService(repo repository.CategoryRepository, logger *zap.Logger) CategoryService {
	return &categoryServiceImpl{repo: repo, logger: logger}
}

func (s *categoryServiceImpl) ListCategories(ctx context.Context) ([]models.Category, *ServiceError) {
	categories, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, internal(err)
	}
	if categories == nil {
		categories = []models.Category{}
	}
	return categories, nil
}

func (s *categoryServiceImpl) GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, *ServiceError) {
	c, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound("Category not found")
	}
	if err != nil {
		return nil, internal(err)
	}
	return c, nil
}

func (s *categoryServiceImpl) CreateCategory(ctx context.Context, req *models.CreateCategoryRequest) (*models.Category, *ServiceError) {
	name := strings.TrimSpace(req.Name)
	exists, err := s.repo.ExistsByName(ctx, name)
	if err != nil {
		return nil, internal(err)
	}
	if exists {
		return nil, categoryExists()
	}

	subs := req.Subcategories
	if subs == nil {
		subs = models.Subcategories{}
	}
	category := &models.Category{
		ID:            uuid.New(),
		Name:          name,
		Description:   req.Description,
		Image:         req.Image,
		Subcategories: subs,
		IsActive:      true,
	}
	if err := s.repo.Create(ctx, category); err != nil {
		// lost a race with a concurrent create of the same name
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, categoryExists()
		}
		s.logger.Error("Failed to create category", zap.Error(err))
		return nil, internal(err)
	}
	s.logger.Info("Category created", zap.String("category_id", category.ID.String()), zap.String("name", name))
	return category, nil
}

func (s *categoryServiceImpl) UpdateCategory(ctx context.Context, id uuid.UUID, req *models.UpdateCategoryRequest) (*models.Category, *ServiceError) {
	category, svcErr := s.GetCategory(ctx, id)
	if svcErr != nil {
		return nil, svcErr
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if !strings.EqualFold(name, category.Name) {
			exists, err := s.repo.ExistsByName(ctx, name)
			if err != nil {
				return nil, internal(err)
			}
			if exists {
				return nil, categoryExists()
			}
		}
		category.Name = name
	}
	if req.Description != nil {
		category.Description = *req.Description
	}
	if req.Image != nil {
		category.Image = *req.Image
	}
	if req.Subcategories != nil {
		category.Subcategories = req.Subcategories
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}

	if err := s.repo.Save(ctx, category); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, categoryExists()
		}
		return nil, internal(err)
	}
	return category, nil
}

func (s *categoryServiceImpl) DeleteCategory(ctx context.Context, id uuid.UUID) *ServiceError {
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return notFound("Category not found")
	}
	if err != nil {
		return internal(err)
	}
	s.logger.Info("Category deleted", zap.String("category_id", id.String()))
	return nil
}

func (s *categoryServiceImpl) AddSubcategory(ctx context.Context, id uuid.UUID, sub models.Subcategory) (*models.Category, *ServiceError) {
	sub.Name = strings.TrimSpace(sub.Name)
	if sub.Name == "" {
		return nil, badRequest(CodeValidationFailed, "Subcategory name is required")
	}
	category, svcErr := s.GetCategory(ctx, id)
	if svcErr != nil {
		return nil, svcErr
	}
	category.Subcategories = append(category.Subcategories, sub)
	if err := s.repo.Save(ctx, category); err != nil {
		return nil, internal(err)
	}
	return category, nil
}

func categoryExists() *ServiceError {
	return &ServiceError{StatusCode: http.StatusBadRequest, Code: CodeCategoryExists, Message: "Category already exists"}
}
