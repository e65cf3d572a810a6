package model

import (
	"time"

	"gorm.io/datatypes"
)

type Draft struct {
	ID                uint             `gorm:"primaryKey" json:"id"`
	OwnerID           uint             `gorm:"not null;index" json:"ownerId"`
	Name              string           `gorm:"type:varchar(200);not null" json:"name"`
	WallData          datatypes.JSON   `json:"wallData"`
	PreviewImage      string           `gorm:"type:varchar(500)" json:"previewImage"`
	Images            []string         `gorm:"serializer:json" json:"images"`
	IsPublic          bool             `gorm:"default:false;index" json:"isPublic"`
	ShareToken        *string          `gorm:"type:varchar(128);uniqueIndex" json:"shareToken,omitempty"`
	ShareTokenExpires *time.Time       `json:"shareTokenExpires,omitempty"`
	SharedWith        []DraftRecipient `gorm:"foreignKey:DraftID" json:"sharedWith"`
	CreatedAt         time.Time        `json:"createdAt"`
	UpdatedAt         time.Time        `json:"updatedAt"`

	Owner User `gorm:"foreignKey:OwnerID" json:"-"`
}

// IsSharedWith 判断用户是否在 sharedWith 列表中
func (d *Draft) IsSharedWith(userID uint) bool {
	for _, r := range d.SharedWith {
		if r.UserID == userID {
			return true
		}
	}
	return false
}

// DraftRecipient 是 Draft.sharedWith 列表中的一项
type DraftRecipient struct {
	DraftID  uint      `gorm:"primaryKey;autoIncrement:false" json:"-"`
	UserID   uint      `gorm:"primaryKey;autoIncrement:false" json:"userId"`
	SharedAt time.Time `gorm:"not null" json:"sharedAt"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}
