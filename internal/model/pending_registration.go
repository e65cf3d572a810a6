package model

import "time"

// PendingRegistration 保存尚未通过邮箱验证的注册信息
type PendingRegistration struct {
	ID           uint      `gorm:"primaryKey"`
	Name         string    `gorm:"type:varchar(100);not null"`
	Email        string    `gorm:"type:varchar(255);not null;uniqueIndex"`
	Password     string    `gorm:"type:varchar(255);not null"`
	OTP          string    `gorm:"type:varchar(10);not null"`
	OTPExpiresAt time.Time `gorm:"not null;index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (p *PendingRegistration) Expired(now time.Time) bool {
	return !now.Before(p.OTPExpiresAt)
}
