package repository

import (
	"picture-wall/internal/model"
	"picture-wall/pkg/db"

	"gorm.io/gorm"
)

type FlaggedContentRepository struct {
	db *gorm.DB
}

func NewFlaggedContentRepository() *FlaggedContentRepository {
	return &FlaggedContentRepository{db: db.DB}
}

func (r *FlaggedContentRepository) WithTx(tx *gorm.DB) *FlaggedContentRepository {
	return &FlaggedContentRepository{db: tx}
}

func (r *FlaggedContentRepository) Create(flag *model.FlaggedContent) error {
	return r.db.Create(flag).Error
}

func (r *FlaggedContentRepository) FindByID(id uint) (*model.FlaggedContent, error) {
	var flag model.FlaggedContent
	err := r.db.First(&flag, id).Error
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &flag, nil
}

// 查找同一举报人对同一内容尚未处理的举报
func (r *FlaggedContentRepository) FindPendingByReporter(contentType model.ContentType, contentID, reporterID uint) (*model.FlaggedContent, error) {
	var flag model.FlaggedContent
	err := r.db.Where("content_type = ? AND content_id = ? AND reported_by = ? AND status = ?",
		contentType, contentID, reporterID, model.FlagPending).First(&flag).Error
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &flag, nil
}

type FlagFilter struct {
	Status      model.FlagStatus
	ContentType model.ContentType
	Page        Page
}

func (r *FlaggedContentRepository) List(filter FlagFilter) ([]model.FlaggedContent, int64, error) {
	q := r.db.Model(&model.FlaggedContent{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.ContentType != "" {
		q = q.Where("content_type = ?", filter.ContentType)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var flags []model.FlaggedContent
	err := filter.Page.scope(q.Order("created_at DESC")).Find(&flags).Error
	return flags, total, err
}

func (r *FlaggedContentRepository) UpdateFields(id uint, fields map[string]interface{}) error {
	return r.db.Model(&model.FlaggedContent{}).Where("id = ?", id).Updates(fields).Error
}

func (r *FlaggedContentRepository) CountByStatus(status model.FlagStatus) (int64, error) {
	var count int64
	err := r.db.Model(&model.FlaggedContent{}).Where("status = ?", status).Count(&count).Error
	return count, err
}
