package service

import (
	"fmt"
	"strings"

	"picture-wall/internal/model"
	"picture-wall/internal/repository"
)

// CatalogService 管理装饰品分类与装饰品
type CatalogService struct {
	categoryRepo *repository.CategoryRepository
	decorRepo    *repository.DecorRepository
}

func NewCatalogService(categoryRepo *repository.CategoryRepository, decorRepo *repository.DecorRepository) *CatalogService {
	return &CatalogService{categoryRepo: categoryRepo, decorRepo: decorRepo}
}

type CategoryRequest struct {
	Name        string `json:"name" binding:"max=100"`
	Description string `json:"description"`
	IsActive    *bool  `json:"isActive"`
}

type DecorRequest struct {
	Name       string   `json:"name" binding:"max=150"`
	CategoryID uint     `json:"categoryId"`
	ImageURL   string   `json:"imageUrl"`
	Price      *float64 `json:"price"`
	Width      *float64 `json:"width"`
	Height     *float64 `json:"height"`
	IsActive   *bool    `json:"isActive"`
}

func (s *CatalogService) Categories(activeOnly bool) ([]model.Category, error) {
	return s.categoryRepo.List(activeOnly)
}

func (s *CatalogService) ensureCategoryName(name string, exceptID uint) error {
	existing, err := s.categoryRepo.FindByName(name)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != exceptID {
		return fmt.Errorf("category %q %w", name, ErrConflict)
	}
	return nil
}

func (s *CatalogService) CreateCategory(req CategoryRequest) (*model.Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, validationError("category name is required")
	}
	if err := s.ensureCategoryName(name, 0); err != nil {
		return nil, err
	}
	category := &model.Category{Name: name, Description: req.Description, IsActive: true}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}
	if err := s.categoryRepo.Create(category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CatalogService) UpdateCategory(id uint, req CategoryRequest) (*model.Category, error) {
	category, err := s.categoryRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, fmt.Errorf("category %w", ErrNotFound)
	}
	if name := strings.TrimSpace(req.Name); name != "" && name != category.Name {
		if err := s.ensureCategoryName(name, id); err != nil {
			return nil, err
		}
		category.Name = name
	}
	if req.Description != "" {
		category.Description = req.Description
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}
	if err := s.categoryRepo.Save(category); err != nil {
		return nil, err
	}
	return category, nil
}

// DeleteCategory 删除分类，仍有装饰品引用时拒绝
func (s *CatalogService) DeleteCategory(id uint) error {
	category, err := s.categoryRepo.FindByID(id)
	if err != nil {
		return err
	}
	if category == nil {
		return fmt.Errorf("category %w", ErrNotFound)
	}
	n, err := s.categoryRepo.CountDecors(id)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: category still has %d decors", ErrConflict, n)
	}
	return s.categoryRepo.Delete(id)
}

func (s *CatalogService) Decors(filter repository.DecorFilter) ([]model.Decor, error) {
	return s.decorRepo.List(filter)
}

func (s *CatalogService) requireCategory(id uint) error {
	category, err := s.categoryRepo.FindByID(id)
	if err != nil {
		return err
	}
	if category == nil {
		return validationError("category %d does not exist", id)
	}
	return nil
}

func (req *DecorRequest) apply(decor *model.Decor) error {
	if name := strings.TrimSpace(req.Name); name != "" {
		decor.Name = name
	}
	if req.CategoryID != 0 {
		decor.CategoryID = req.CategoryID
	}
	if req.ImageURL != "" {
		decor.ImageURL = req.ImageURL
	}
	for _, v := range []*float64{req.Price, req.Width, req.Height} {
		if v != nil && *v < 0 {
			return validationError("price and dimensions cannot be negative")
		}
	}
	if req.Price != nil {
		decor.Price = *req.Price
	}
	if req.Width != nil {
		decor.Width = *req.Width
	}
	if req.Height != nil {
		decor.Height = *req.Height
	}
	if req.IsActive != nil {
		decor.IsActive = *req.IsActive
	}
	return nil
}

func (s *CatalogService) CreateDecor(req DecorRequest) (*model.Decor, error) {
	if strings.TrimSpace(req.Name) == "" || req.ImageURL == "" || req.CategoryID == 0 {
		return nil, validationError("name, imageUrl and categoryId are required")
	}
	if err := s.requireCategory(req.CategoryID); err != nil {
		return nil, err
	}
	decor := &model.Decor{IsActive: true}
	if err := req.apply(decor); err != nil {
		return nil, err
	}
	if err := s.decorRepo.Create(decor); err != nil {
		return nil, err
	}
	return s.decorRepo.FindByID(decor.ID)
}

func (s *CatalogService) UpdateDecor(id uint, req DecorRequest) (*model.Decor, error) {
	decor, err := s.decorRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if decor == nil {
		return nil, fmt.Errorf("decor %w", ErrNotFound)
	}
	if req.CategoryID != 0 && req.CategoryID != decor.CategoryID {
		if err := s.requireCategory(req.CategoryID); err != nil {
			return nil, err
		}
	}
	if err := req.apply(decor); err != nil {
		return nil, err
	}
	if err := s.decorRepo.Save(decor); err != nil {
		return nil, err
	}
	return s.decorRepo.FindByID(id)
}

func (s *CatalogService) DeleteDecor(id uint) error {
	decor, err := s.decorRepo.FindByID(id)
	if err != nil {
		return err
	}
	if decor == nil {
		return fmt.Errorf("decor %w", ErrNotFound)
	}
	return s.decorRepo.Delete(id)
}
