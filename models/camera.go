package models

import (
	"time"

	"gorm.io/gorm"
)

type Camera struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	UserID    uint           `json:"user_id" gorm:"not null;index"`
	User      User           `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Name      string         `json:"name" gorm:"not null"`
	RTSPUrl   string         `json:"rtsp_url" gorm:"not null"`
	IsActive  bool           `json:"is_active" gorm:"not null"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}
