package models

import (
	"time"
)

var VideoTypes = []string{
	"test",
	"training",
	"demo",
	"recorded",
	"other",
}

type Video struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	UserID      uint      `json:"user_id" gorm:"not null;index"`
	User        User      `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	CameraID    *uint     `json:"camera_id,omitempty"` // optional association
	Camera      *Camera   `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Title       string    `json:"title" gorm:"not null"`
	FilePath    string    `json:"file_path"`
	VideoType   string    `json:"video_type" gorm:"default:test"`
	Description string    `json:"description"`
	Duration    *float64  `json:"duration,omitempty"`  // seconds
	FileSize    *int64    `json:"file_size,omitempty"` // bytes
	UploadedAt  time.Time `json:"uploaded_at" gorm:"autoCreateTime;index"`
	Processed   bool      `json:"processed" gorm:"default:false"`
}

func IsValidVideoType(t string) bool {
	for _, v := range VideoTypes {
		if v == t {
			return true
		}
	}
	return false
}
