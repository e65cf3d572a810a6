package model

import "time"

type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(100);not null;uniqueIndex" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	IsActive    bool      `gorm:"not null" json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Decor struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"type:varchar(150);not null" json:"name"`
	CategoryID uint      `gorm:"not null;index" json:"categoryId"`
	ImageURL   string    `gorm:"type:varchar(500);not null" json:"imageUrl"`
	Price      float64   `gorm:"not null;default:0" json:"price"`
	Width      float64   `json:"width"`
	Height     float64   `json:"height"`
	IsActive   bool      `gorm:"not null;index" json:"isActive"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`

	Category Category `gorm:"foreignKey:CategoryID" json:"category"`
}
