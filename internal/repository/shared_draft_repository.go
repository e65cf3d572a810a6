package repository

import (
	"picture-wall/internal/model"
	"picture-wall/pkg/db"
	"time"

	"gorm.io/gorm"
)

type SharedDraftRepository struct {
	db *gorm.DB
}

func NewSharedDraftRepository() *SharedDraftRepository {
	return &SharedDraftRepository{db: db.DB}
}

func (r *SharedDraftRepository) WithTx(tx *gorm.DB) *SharedDraftRepository {
	return &SharedDraftRepository{db: tx}
}

// 创建分享审计记录
func (r *SharedDraftRepository) Create(share *model.SharedDraft) error {
	return r.db.Create(share).Error
}

func (r *SharedDraftRepository) FindByID(id uint) (*model.SharedDraft, error) {
	var share model.SharedDraft
	err := r.db.First(&share, id).Error
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &share, nil
}

// 查找 (draft, recipient) 当前有效的分享记录
func (r *SharedDraftRepository) FindActive(draftID, userID uint) (*model.SharedDraft, error) {
	var share model.SharedDraft
	err := r.db.Where("draft_id = ? AND shared_with = ? AND is_active = ?", draftID, userID, true).First(&share).Error
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &share, nil
}

func deactivateFields(at time.Time) map[string]interface{} {
	return map[string]interface{}{
		"is_active":   false,
		"unshared_at": at,
	}
}

// 将草稿的全部有效分享标记为失效
func (r *SharedDraftRepository) DeactivateForDraft(draftID uint, at time.Time) (int64, error) {
	res := r.db.Model(&model.SharedDraft{}).
		Where("draft_id = ? AND is_active = ?", draftID, true).
		Updates(deactivateFields(at))
	return res.RowsAffected, res.Error
}

// 将 (draft, recipient) 的有效分享标记为失效
func (r *SharedDraftRepository) Deactivate(draftID, userID uint, at time.Time) (int64, error) {
	res := r.db.Model(&model.SharedDraft{}).
		Where("draft_id = ? AND shared_with = ? AND is_active = ?", draftID, userID, true).
		Updates(deactivateFields(at))
	return res.RowsAffected, res.Error
}

// 将某用户作为分享者或接收者的全部有效分享标记为失效
func (r *SharedDraftRepository) DeactivateForUser(userID uint, at time.Time) (int64, error) {
	res := r.db.Model(&model.SharedDraft{}).
		Where("(shared_by = ? OR shared_with = ?) AND is_active = ?", userID, userID, true).
		Updates(deactivateFields(at))
	return res.RowsAffected, res.Error
}

func (r *SharedDraftRepository) DeactivateByID(id uint, at time.Time) error {
	return r.db.Model(&model.SharedDraft{}).Where("id = ?", id).Updates(deactivateFields(at)).Error
}

func (r *SharedDraftRepository) ReactivateByID(id uint, at time.Time) error {
	return r.db.Model(&model.SharedDraft{}).Where("id = ?", id).Updates(map[string]interface{}{
		"is_active":   true,
		"unshared_at": nil,
		"shared_at":   at,
	}).Error
}

func (r *SharedDraftRepository) DeleteByID(id uint) error {
	return r.db.Delete(&model.SharedDraft{}, id).Error
}

// 永久删除失效时间早于 cutoff 的记录
func (r *SharedDraftRepository) DeleteInactiveBefore(cutoff time.Time) (int64, error) {
	res := r.db.Where("is_active = ? AND unshared_at IS NOT NULL AND unshared_at < ?", false, cutoff).Delete(&model.SharedDraft{})
	return res.RowsAffected, res.Error
}

// 记录一次访问
func (r *SharedDraftRepository) RecordAccess(id uint, at time.Time) error {
	return r.db.Model(&model.SharedDraft{}).Where("id = ?", id).Updates(map[string]interface{}{
		"access_count":     gorm.Expr("access_count + ?", 1),
		"last_accessed_at": at,
	}).Error
}

type SharedDraftFilter struct {
	DraftID    uint
	SharedBy   uint
	SharedWith uint
	Active     *bool
	Page       Page
}

func (r *SharedDraftRepository) List(filter SharedDraftFilter) ([]model.SharedDraft, int64, error) {
	q := r.db.Model(&model.SharedDraft{})
	if filter.DraftID != 0 {
		q = q.Where("draft_id = ?", filter.DraftID)
	}
	if filter.SharedBy != 0 {
		q = q.Where("shared_by = ?", filter.SharedBy)
	}
	if filter.SharedWith != 0 {
		q = q.Where("shared_with = ?", filter.SharedWith)
	}
	if filter.Active != nil {
		q = q.Where("is_active = ?", *filter.Active)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var shares []model.SharedDraft
	err := filter.Page.scope(q.Order("shared_at DESC")).Find(&shares).Error
	return shares, total, err
}

func (r *SharedDraftRepository) CountActive() (int64, error) {
	var count int64
	err := r.db.Model(&model.SharedDraft{}).Where("is_active = ?", true).Count(&count).Error
	return count, err
}
