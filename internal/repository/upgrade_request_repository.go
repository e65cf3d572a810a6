package repository

import (
	"picture-wall/internal/model"
	"picture-wall/pkg/db"

	"gorm.io/gorm"
)

type UpgradeRequestRepository struct {
	db *gorm.DB
}

func NewUpgradeRequestRepository() *UpgradeRequestRepository {
	return &UpgradeRequestRepository{db: db.DB}
}

func (r *UpgradeRequestRepository) WithTx(tx *gorm.DB) *UpgradeRequestRepository {
	return &UpgradeRequestRepository{db: tx}
}

func (r *UpgradeRequestRepository) Create(req *model.UpgradeRequest) error {
	return r.db.Create(req).Error
}

func (r *UpgradeRequestRepository) FindByID(id uint) (*model.UpgradeRequest, error) {
	var req model.UpgradeRequest
	err := r.db.First(&req, id).Error
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &req, nil
}

// 查找用户尚未处理的升级申请
func (r *UpgradeRequestRepository) FindPendingByUser(userID uint) (*model.UpgradeRequest, error) {
	var req model.UpgradeRequest
	err := r.db.Where("user_id = ? AND status = ?", userID, model.RequestPending).First(&req).Error
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &req, nil
}

func (r *UpgradeRequestRepository) ListByUser(userID uint) ([]model.UpgradeRequest, error) {
	var reqs []model.UpgradeRequest
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&reqs).Error
	return reqs, err
}

type UpgradeRequestFilter struct {
	Status string
	Page   Page
}

func (r *UpgradeRequestRepository) List(filter UpgradeRequestFilter) ([]model.UpgradeRequest, int64, error) {
	q := r.db.Model(&model.UpgradeRequest{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reqs []model.UpgradeRequest
	err := filter.Page.scope(q.Order("created_at DESC")).Find(&reqs).Error
	return reqs, total, err
}

func (r *UpgradeRequestRepository) UpdateFields(id uint, fields map[string]interface{}) error {
	return r.db.Model(&model.UpgradeRequest{}).Where("id = ?", id).Updates(fields).Error
}

func (r *UpgradeRequestRepository) DeleteByUser(userID uint) error {
	return r.db.Where("user_id = ?", userID).Delete(&model.UpgradeRequest{}).Error
}

func (r *UpgradeRequestRepository) CountPending() (int64, error) {
	var count int64
	err := r.db.Model(&model.UpgradeRequest{}).Where("status = ?", model.RequestPending).Count(&count).Error
	return count, err
}
