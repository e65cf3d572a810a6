package model

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	Name           string     `gorm:"type:varchar(100);not null" json:"name"`
	Email          string     `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	Password       string     `gorm:"type:varchar(255);not null" json:"-"`
	Role           string     `gorm:"type:varchar(20);not null" json:"role"`
	Avatar         string     `gorm:"type:varchar(255)" json:"avatar"`
	IsVerified     bool       `gorm:"default:false" json:"isVerified"`
	IsBanned       bool       `gorm:"default:false" json:"isBanned"`
	SuspendedUntil *time.Time `json:"suspendedUntil,omitempty"`
	LastLoginAt    *time.Time `json:"lastLoginAt,omitempty"`
	ResetOTP       string     `gorm:"type:varchar(10)" json:"-"`
	ResetOTPExpiry *time.Time `json:"-"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsSuspended 判断用户在 now 时刻是否处于暂停状态
func (u *User) IsSuspended(now time.Time) bool {
	return u.SuspendedUntil != nil && now.Before(*u.SuspendedUntil)
}
