package model

import "time"

// Unlimited 表示计划限额不受限制
const Unlimited = -1

type PlanLimits struct {
	DesignsPerMonth       int `gorm:"not null" json:"designsPerMonth"`
	ImageUploadsPerDesign int `gorm:"not null" json:"imageUploadsPerDesign"`
}

type Plan struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Name         string     `gorm:"type:varchar(50);not null;uniqueIndex" json:"name"`
	Description  string     `gorm:"type:text" json:"description"`
	Price        float64    `gorm:"not null;default:0" json:"price"`
	Currency     string     `gorm:"type:varchar(3);default:'USD'" json:"currency"`
	BillingCycle string     `gorm:"type:varchar(20);default:'monthly'" json:"billingCycle"`
	Features     []string   `gorm:"serializer:json" json:"features"`
	Limits       PlanLimits `gorm:"embedded;embeddedPrefix:limits_" json:"limits"`
	IsActive     bool       `gorm:"not null" json:"isActive"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}
