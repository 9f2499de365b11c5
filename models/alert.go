package models

import (
	"time"
)

// Alert types the pipeline is allowed to report.
var AlertTypes = []string{
	"violence",
	"intrusion",
	"fire",
	"smoke",
	"person",
	"vehicle",
	"suspicious",
	"other",
}

type Alert struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	CameraID     uint      `json:"camera_id" gorm:"not null;index:idx_alerts_camera_time,priority:1"`
	Camera       Camera    `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	AlertType    string    `json:"alert_type" gorm:"not null"`
	Confidence   float64   `json:"confidence" gorm:"not null"` // 0.0 to 1.0
	Timestamp    time.Time `json:"timestamp" gorm:"autoCreateTime;index:idx_alerts_camera_time,priority:2,sort:desc"`
	ImagePath    string    `json:"image_path,omitempty"` // captured frame, relative to media root
	Description  string    `json:"description"`
	Acknowledged bool      `json:"acknowledged" gorm:"default:false"`
}

func IsValidAlertType(t string) bool {
	for _, v := range AlertTypes {
		if v == t {
			return true
		}
	}
	return false
}
