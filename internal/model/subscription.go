package model

import "time"

const (
	SubscriptionActive    = "active"
	SubscriptionCancelled = "cancelled"
	SubscriptionExpired   = "expired"
)

type SubscriptionUsage struct {
	DraftsCreated int `gorm:"not null;default:0" json:"draftsCreated"`
	SharesMade    int `gorm:"not null;default:0" json:"sharesMade"`
	Logins        int `gorm:"not null;default:0" json:"logins"`
}

// Subscription 每个用户最多一条，plan 通过名称弱引用 Plan
type Subscription struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	UserID    uint              `gorm:"not null;uniqueIndex" json:"userId"`
	Plan      string            `gorm:"type:varchar(50);not null;index" json:"plan"`
	Status    string            `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	StartDate time.Time         `json:"startDate"`
	EndDate   *time.Time        `json:"endDate,omitempty"`
	Usage     SubscriptionUsage `gorm:"embedded;embeddedPrefix:usage_" json:"usage"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// IsCurrent 判断订阅在 now 时刻是否有效
func (s *Subscription) IsCurrent(now time.Time) bool {
	if s.Status != SubscriptionActive {
		return false
	}
	return s.EndDate == nil || now.Before(*s.EndDate)
}
