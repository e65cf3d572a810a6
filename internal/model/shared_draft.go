package model

import "time"

// SharedDraft 是一次分享关系的审计记录，撤销时只标记为失效
type SharedDraft struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	DraftID        uint       `gorm:"not null;index:idx_shared_pair" json:"draftId"`
	DraftName      string     `gorm:"type:varchar(200)" json:"draftName"`
	SharedBy       uint       `gorm:"not null;index" json:"sharedBy"`
	SharedWith     uint       `gorm:"not null;index:idx_shared_pair" json:"sharedWith"`
	SharedAt       time.Time  `gorm:"not null" json:"sharedAt"`
	UnsharedAt     *time.Time `gorm:"index" json:"unsharedAt,omitempty"`
	IsActive       bool       `gorm:"not null;index" json:"isActive"`
	CanView        bool       `gorm:"not null" json:"canView"`
	CanEdit        bool       `gorm:"not null;default:false" json:"canEdit"`
	CanShare       bool       `gorm:"not null;default:false" json:"canShare"`
	AccessCount    int        `gorm:"not null;default:0" json:"accessCount"`
	LastAccessedAt *time.Time `json:"lastAccessedAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`

	Sharer    User `gorm:"foreignKey:SharedBy" json:"-"`
	Recipient User `gorm:"foreignKey:SharedWith" json:"-"`
}
