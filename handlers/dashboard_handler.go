package handlers

import (
	"net/http"

	"surveillance-center/backend/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type DashboardHandler struct {
	db *gorm.DB
}

func NewDashboardHandler(db *gorm.DB) *DashboardHandler {
	return &DashboardHandler{db: db}
}

type DashboardResponse struct {
	TotalCameras         int64 `json:"total_cameras"`
	ActiveCameras        int64 `json:"active_cameras"`
	TotalAlerts          int64 `json:"total_alerts"`
	UnacknowledgedAlerts int64 `json:"unacknowledged_alerts"`
	TotalVideos          int64 `json:"total_videos"`
}

// GetDashboard returns per-user summary counts for the dashboard screen.
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	userID, _ := currentUserID(c)

	var resp DashboardResponse

	if err := h.db.Model(&models.Camera{}).Where("user_id = ?", userID).Count(&resp.TotalCameras).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch dashboard"})
		return
	}
	if err := h.db.Model(&models.Camera{}).Where("user_id = ? AND is_active = ?", userID, true).Count(&resp.ActiveCameras).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch dashboard"})
		return
	}

	alertsForUser := h.db.Model(&models.Alert{}).
		Joins("JOIN cameras ON cameras.id = alerts.camera_id").
		Where("cameras.user_id = ?", userID)
	if err := alertsForUser.Count(&resp.TotalAlerts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch dashboard"})
		return
	}

	unacked := h.db.Model(&models.Alert{}).
		Joins("JOIN cameras ON cameras.id = alerts.camera_id").
		Where("cameras.user_id = ? AND alerts.acknowledged = ?", userID, false)
	if err := unacked.Count(&resp.UnacknowledgedAlerts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch dashboard"})
		return
	}

	if err := h.db.Model(&models.Video{}).Where("user_id = ?", userID).Count(&resp.TotalVideos).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch dashboard"})
		return
	}

	c.JSON(http.StatusOK, resp)
}
