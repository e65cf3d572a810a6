package model

import "time"

const (
	RequestPending  = "pending"
	RequestApproved = "approved"
	RequestRejected = "rejected"
)

type UpgradeRequest struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	UserID        uint       `gorm:"not null;index" json:"userId"`
	CurrentPlan   string     `gorm:"type:varchar(50)" json:"currentPlan"`
	RequestedPlan string     `gorm:"type:varchar(50);not null" json:"requestedPlan"`
	Message       string     `gorm:"type:text" json:"message"`
	Status        string     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	AdminNote     string     `gorm:"type:text" json:"adminNote"`
	ReviewedBy    *uint      `json:"reviewedBy,omitempty"`
	ReviewedAt    *time.Time `json:"reviewedAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}
