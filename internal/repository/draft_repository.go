package repository

import (
	"picture-wall/internal/model"
	"picture-wall/pkg/db"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DraftRepository struct {
	db *gorm.DB
}

func NewDraftRepository() *DraftRepository {
	return &DraftRepository{db: db.DB}
}

func (r *DraftRepository) WithTx(tx *gorm.DB) *DraftRepository {
	return &DraftRepository{db: tx}
}

func preloadRecipients(q *gorm.DB) *gorm.DB {
	return q.Preload("SharedWith", func(db *gorm.DB) *gorm.DB {
		return db.Order("shared_at ASC")
	})
}

func (r *DraftRepository) Create(draft *model.Draft) error {
	return r.db.Omit("SharedWith").Create(draft).Error
}

// 根据ID查找草稿，并按分享时间预加载 sharedWith
func (r *DraftRepository) FindByID(id uint) (*model.Draft, error) {
	var draft model.Draft
	err := preloadRecipients(r.db).First(&draft, id).Error
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &draft, nil
}

// FindByIDForUpdate 在事务中锁定草稿行
func (r *DraftRepository) FindByIDForUpdate(id uint) (*model.Draft, error) {
	var draft model.Draft
	err := preloadRecipients(r.db.Clauses(clause.Locking{Strength: "UPDATE"})).First(&draft, id).Error
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &draft, nil
}

func (r *DraftRepository) FindByShareToken(token string) (*model.Draft, error) {
	var draft model.Draft
	err := preloadRecipients(r.db).Where("share_token = ?", token).First(&draft).Error
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &draft, nil
}

// 查询用户拥有的全部草稿
func (r *DraftRepository) ListByOwner(ownerID uint) ([]model.Draft, error) {
	var drafts []model.Draft
	err := preloadRecipients(r.db).Where("owner_id = ?", ownerID).Order("updated_at DESC").Find(&drafts).Error
	return drafts, err
}

func (r *DraftRepository) CountByOwner(ownerID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.Draft{}).Where("owner_id = ?", ownerID).Count(&count).Error
	return count, err
}

// 更新草稿内容字段
func (r *DraftRepository) UpdateContent(id uint, fields map[string]interface{}) error {
	return r.db.Model(&model.Draft{}).Where("id = ?", id).Updates(fields).Error
}

// SetImages 覆盖草稿的图片列表
func (r *DraftRepository) SetImages(id uint, images []string) error {
	return r.db.Model(&model.Draft{ID: id}).Select("images").Updates(&model.Draft{Images: images}).Error
}

// SetSharing 更新公开状态与分享令牌
func (r *DraftRepository) SetSharing(id uint, isPublic bool, token *string, expires *time.Time) error {
	return r.db.Model(&model.Draft{}).Where("id = ?", id).Updates(map[string]interface{}{
		"is_public":           isPublic,
		"share_token":         token,
		"share_token_expires": expires,
	}).Error
}

// 删除草稿及其 sharedWith 列表
func (r *DraftRepository) Delete(id uint) error {
	if err := r.db.Where("draft_id = ?", id).Delete(&model.DraftRecipient{}).Error; err != nil {
		return err
	}
	return r.db.Delete(&model.Draft{}, id).Error
}

// 删除用户拥有的全部草稿，返回草稿ID
func (r *DraftRepository) DeleteByOwner(ownerID uint) ([]uint, error) {
	var ids []uint
	if err := r.db.Model(&model.Draft{}).Where("owner_id = ?", ownerID).Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return ids, nil
	}
	if err := r.db.Where("draft_id IN ?", ids).Delete(&model.DraftRecipient{}).Error; err != nil {
		return nil, err
	}
	return ids, r.db.Where("id IN ?", ids).Delete(&model.Draft{}).Error
}

// AddRecipient 向 sharedWith 添加用户，调用方需先确认用户尚未在列表中
func (r *DraftRepository) AddRecipient(draftID, userID uint, at time.Time) error {
	return r.db.Create(&model.DraftRecipient{
		DraftID:  draftID,
		UserID:   userID,
		SharedAt: at,
	}).Error
}

// RemoveRecipient 从 sharedWith 移除用户，返回是否有记录被删除
func (r *DraftRepository) RemoveRecipient(draftID, userID uint) (bool, error) {
	res := r.db.Where("draft_id = ? AND user_id = ?", draftID, userID).Delete(&model.DraftRecipient{})
	return res.RowsAffected > 0, res.Error
}

func (r *DraftRepository) ClearRecipients(draftID uint) error {
	return r.db.Where("draft_id = ?", draftID).Delete(&model.DraftRecipient{}).Error
}

// 删除某用户作为接收者的全部记录
func (r *DraftRepository) RemoveRecipientEverywhere(userID uint) error {
	return r.db.Where("user_id = ?", userID).Delete(&model.DraftRecipient{}).Error
}

// 查询分享给指定用户的草稿
func (r *DraftRepository) ListSharedWithUser(userID uint) ([]model.Draft, error) {
	var drafts []model.Draft
	err := preloadRecipients(r.db).
		Joins("JOIN draft_recipients ON draft_recipients.draft_id = drafts.id").
		Where("draft_recipients.user_id = ?", userID).
		Order("draft_recipients.shared_at DESC").
		Find(&drafts).Error
	return drafts, err
}

// 查询用户分享给他人的草稿
func (r *DraftRepository) ListSharedByOwner(ownerID uint) ([]model.Draft, error) {
	var drafts []model.Draft
	err := preloadRecipients(r.db).
		Where("owner_id = ? AND EXISTS (SELECT 1 FROM draft_recipients WHERE draft_recipients.draft_id = drafts.id)", ownerID).
		Order("updated_at DESC").
		Find(&drafts).Error
	return drafts, err
}

type DraftFilter struct {
	OwnerID  uint
	Search   string
	IsPublic *bool
	Page     Page
}

// 管理后台分页查询草稿
func (r *DraftRepository) List(filter DraftFilter) ([]model.Draft, int64, error) {
	q := r.db.Model(&model.Draft{})
	if filter.OwnerID != 0 {
		q = q.Where("owner_id = ?", filter.OwnerID)
	}
	if filter.Search != "" {
		q = q.Where("name LIKE ?", "%"+filter.Search+"%")
	}
	if filter.IsPublic != nil {
		q = q.Where("is_public = ?", *filter.IsPublic)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var drafts []model.Draft
	err := filter.Page.scope(preloadRecipients(q).Order("created_at DESC")).Find(&drafts).Error
	return drafts, total, err
}

func (r *DraftRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&model.Draft{}).Count(&count).Error
	return count, err
}

func (r *DraftRepository) CountPublic() (int64, error) {
	var count int64
	err := r.db.Model(&model.Draft{}).Where("is_public = ?", true).Count(&count).Error
	return count, err
}
