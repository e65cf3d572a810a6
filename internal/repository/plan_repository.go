package repository

import (
	"picture-wall/internal/model"
	"picture-wall/pkg/db"

	"gorm.io/gorm"
)

type PlanRepository struct {
	db *gorm.DB
}

func NewPlanRepository() *PlanRepository {
	return &PlanRepository{db: db.DB}
}

func (r *PlanRepository) WithTx(tx *gorm.DB) *PlanRepository {
	return &PlanRepository{db: tx}
}

func (r *PlanRepository) Create(plan *model.Plan) error {
	return r.db.Create(plan).Error
}

func (r *PlanRepository) FindByID(id uint) (*model.Plan, error) {
	var plan model.Plan
	err := r.db.First(&plan, id).Error
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &plan, nil
}

func (r *PlanRepository) FindByName(name string) (*model.Plan, error) {
	var plan model.Plan
	err := r.db.Where("name = ?", name).First(&plan).Error
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &plan, nil
}

// 查询计划，activeOnly 为 true 时只返回启用的计划
func (r *PlanRepository) List(activeOnly bool) ([]model.Plan, error) {
	var plans []model.Plan
	q := r.db.Order("price ASC, id ASC")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	err := q.Find(&plans).Error
	return plans, err
}

// 保存全部字段
func (r *PlanRepository) Save(plan *model.Plan) error {
	return r.db.Save(plan).Error
}

func (r *PlanRepository) Delete(id uint) error {
	return r.db.Delete(&model.Plan{}, id).Error
}
