package repository

import (
	"picture-wall/internal/model"
	"picture-wall/pkg/db"

	"gorm.io/gorm"
)

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository() *CategoryRepository {
	return &CategoryRepository{db: db.DB}
}

func (r *CategoryRepository) Create(category *model.Category) error {
	return r.db.Create(category).Error
}

func (r *CategoryRepository) FindByID(id uint) (*model.Category, error) {
	var category model.Category
	err := r.db.First(&category, id).Error
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &category, nil
}

func (r *CategoryRepository) FindByName(name string) (*model.Category, error) {
	var category model.Category
	err := r.db.Where("name = ?", name).First(&category).Error
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &category, nil
}

func (r *CategoryRepository) List(activeOnly bool) ([]model.Category, error) {
	var categories []model.Category
	q := r.db.Order("name ASC")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	err := q.Find(&categories).Error
	return categories, err
}

func (r *CategoryRepository) Save(category *model.Category) error {
	return r.db.Save(category).Error
}

func (r *CategoryRepository) Delete(id uint) error {
	return r.db.Delete(&model.Category{}, id).Error
}

// 统计分类下的装饰品数量
func (r *CategoryRepository) CountDecors(id uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.Decor{}).Where("category_id = ?", id).Count(&count).Error
	return count, err
}

type DecorRepository struct {
	db *gorm.DB
}

func NewDecorRepository() *DecorRepository {
	return &DecorRepository{db: db.DB}
}

func (r *DecorRepository) Create(decor *model.Decor) error {
	return r.db.Omit("Category").Create(decor).Error
}

func (r *DecorRepository) FindByID(id uint) (*model.Decor, error) {
	var decor model.Decor
	err := r.db.Preload("Category").First(&decor, id).Error
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &decor, nil
}

type DecorFilter struct {
	CategoryID uint
	ActiveOnly bool
}

func (r *DecorRepository) List(filter DecorFilter) ([]model.Decor, error) {
	q := r.db.Preload("Category").Order("name ASC")
	if filter.CategoryID != 0 {
		q = q.Where("category_id = ?", filter.CategoryID)
	}
	if filter.ActiveOnly {
		q = q.Where("is_active = ?", true)
	}
	var decors []model.Decor
	err := q.Find(&decors).Error
	return decors, err
}

func (r *DecorRepository) Save(decor *model.Decor) error {
	return r.db.Omit("Category").Save(decor).Error
}

func (r *DecorRepository) Delete(id uint) error {
	return r.db.Delete(&model.Decor{}, id).Error
}
