package repository

import (
	"picture-wall/internal/model"
	"picture-wall/pkg/db"
	"time"

	"gorm.io/gorm"
)

type PendingRegistrationRepository struct {
	db *gorm.DB
}

func NewPendingRegistrationRepository() *PendingRegistrationRepository {
	return &PendingRegistrationRepository{db: db.DB}
}

// Upsert 以邮箱为键创建或覆盖待验证注册
func (r *PendingRegistrationRepository) Upsert(p *model.PendingRegistration) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("email = ?", p.Email).Delete(&model.PendingRegistration{}).Error; err != nil {
			return err
		}
		return tx.Create(p).Error
	})
}

func (r *PendingRegistrationRepository) FindByEmail(email string) (*model.PendingRegistration, error) {
	var p model.PendingRegistration
	err := r.db.Where("email = ?", email).First(&p).Error
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// 更新验证码
func (r *PendingRegistrationRepository) UpdateOTP(id uint, otp string, expiresAt time.Time) error {
	return r.db.Model(&model.PendingRegistration{}).Where("id = ?", id).Updates(map[string]interface{}{
		"otp":            otp,
		"otp_expires_at": expiresAt,
	}).Error
}

func (r *PendingRegistrationRepository) DeleteByEmail(email string) error {
	return r.db.Where("email = ?", email).Delete(&model.PendingRegistration{}).Error
}

// 删除已过期的待验证注册，返回删除条数
func (r *PendingRegistrationRepository) DeleteExpired(now time.Time) (int64, error) {
	res := r.db.Where("otp_expires_at <= ?", now).Delete(&model.PendingRegistration{})
	return res.RowsAffected, res.Error
}

func (r *PendingRegistrationRepository) WithTx(tx *gorm.DB) *PendingRegistrationRepository {
	return &PendingRegistrationRepository{db: tx}
}
