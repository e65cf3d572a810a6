package repository

import (
	"picture-wall/internal/model"
	"picture-wall/pkg/db"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SubscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository() *SubscriptionRepository {
	return &SubscriptionRepository{db: db.DB}
}

func (r *SubscriptionRepository) WithTx(tx *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: tx}
}

func (r *SubscriptionRepository) Create(sub *model.Subscription) error {
	return r.db.Create(sub).Error
}

func (r *SubscriptionRepository) FindByUserID(userID uint) (*model.Subscription, error) {
	var sub model.Subscription
	err := r.db.Where("user_id = ?", userID).First(&sub).Error
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

// FindByUserIDForUpdate 在事务中锁定用户的订阅行
func (r *SubscriptionRepository) FindByUserIDForUpdate(userID uint) (*model.Subscription, error) {
	var sub model.Subscription
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).Where("user_id = ?", userID).First(&sub).Error
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

// AssignPlan 为用户设置计划，没有订阅时创建
func (r *SubscriptionRepository) AssignPlan(userID uint, plan string, at time.Time) (*model.Subscription, error) {
	sub, err := r.FindByUserID(userID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		sub = &model.Subscription{
			UserID:    userID,
			Plan:      plan,
			Status:    model.SubscriptionActive,
			StartDate: at,
		}
		return sub, r.db.Create(sub).Error
	}

	err = r.db.Model(&model.Subscription{}).Where("id = ?", sub.ID).Updates(map[string]interface{}{
		"plan":       plan,
		"status":     model.SubscriptionActive,
		"start_date": at,
		"end_date":   nil,
	}).Error
	if err != nil {
		return nil, err
	}
	return r.FindByUserID(userID)
}

// 用量计数字段
const (
	UsageDraftsCreated = "usage_drafts_created"
	UsageSharesMade    = "usage_shares_made"
	UsageLogins        = "usage_logins"
)

// IncrementUsage 累加用量计数，用户没有订阅时不做任何修改
func (r *SubscriptionRepository) IncrementUsage(userID uint, column string, delta int) error {
	return r.db.Model(&model.Subscription{}).Where("user_id = ?", userID).
		Update(column, gorm.Expr(column+" + ?", delta)).Error
}

// 将已过结束日期的有效订阅标记为过期
func (r *SubscriptionRepository) ExpireEnded(now time.Time) (int64, error) {
	res := r.db.Model(&model.Subscription{}).
		Where("status = ? AND end_date IS NOT NULL AND end_date <= ?", model.SubscriptionActive, now).
		Update("status", model.SubscriptionExpired)
	return res.RowsAffected, res.Error
}

func (r *SubscriptionRepository) DeleteByUserID(userID uint) error {
	return r.db.Where("user_id = ?", userID).Delete(&model.Subscription{}).Error
}

type PlanCount struct {
	Plan  string `json:"plan"`
	Count int64  `json:"count"`
}

// 按计划统计订阅数
func (r *SubscriptionRepository) CountByPlan() ([]PlanCount, error) {
	var counts []PlanCount
	err := r.db.Model(&model.Subscription{}).
		Select("plan, COUNT(*) AS count").
		Group("plan").
		Order("plan").
		Scan(&counts).Error
	return counts, err
}
