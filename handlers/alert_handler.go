package handlers

import (
	"encoding/base64"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"surveillance-center/backend/config"
	"surveillance-center/backend/models"
	"surveillance-center/backend/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"gorm.io/gorm"
)

type AlertHandler struct {
	db          *gorm.DB
	stream      *services.AlertStreamService
	mediaConfig config.MediaConfig
}

func NewAlertHandler(db *gorm.DB, stream *services.AlertStreamService, mediaConfig config.MediaConfig) *AlertHandler {
	return &AlertHandler{
		db:          db,
		stream:      stream,
		mediaConfig: mediaConfig,
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins for development
		return true
	},
	EnableCompression: true,
}

type CreateAlertRequest struct {
	CameraID    uint    `json:"camera_id" binding:"required"`
	AlertType   string  `json:"alert_type" binding:"required"`
	Confidence  float64 `json:"confidence"`
	Description string  `json:"description"`
	ImageBase64 string  `json:"image_base64"`
}

// CreateAlert is the pipeline intake endpoint. The camera must exist and be
// active; an optional base64 frame is stored under the media root, and a
// broken image never fails the alert itself.
func (h *AlertHandler) CreateAlert(c *gin.Context) {
	var req CreateAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !models.IsValidAlertType(req.AlertType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid alert_type %q", req.AlertType)})
		return
	}
	if req.Confidence < 0 || req.Confidence > 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "confidence must be between 0.0 and 1.0"})
		return
	}

	var camera models.Camera
	if err := h.db.Where("id = ? AND is_active = ?", req.CameraID, true).First(&camera).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Camera not found or inactive"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch camera"})
		return
	}

	alert := models.Alert{
		CameraID:    camera.ID,
		AlertType:   req.AlertType,
		Confidence:  req.Confidence,
		Description: req.Description,
	}

	if err := h.db.Create(&alert).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create alert"})
		return
	}

	if req.ImageBase64 != "" {
		if path, err := h.saveAlertImage(alert.ID, req.ImageBase64); err != nil {
			log.Printf("Failed to save alert %d image: %v", alert.ID, err)
		} else {
			alert.ImagePath = path
			if err := h.db.Save(&alert).Error; err != nil {
				log.Printf("Failed to attach image to alert %d: %v", alert.ID, err)
			}
		}
	}

	log.Printf("Alert created: %d - %s from camera %d", alert.ID, alert.AlertType, camera.ID)
	h.stream.Broadcast(camera.UserID, &alert)

	c.JSON(http.StatusCreated, gin.H{
		"status":    "alert created",
		"alert_id":  alert.ID,
		"camera_id": camera.ID,
	})
}

func (h *AlertHandler) saveAlertImage(alertID uint, imageBase64 string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(imageBase64)
	if err != nil {
		return "", err
	}

	dir := filepath.Join(h.mediaConfig.Root, "alerts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	relative := filepath.Join("alerts", fmt.Sprintf("alert_%d.jpg", alertID))
	if err := os.WriteFile(filepath.Join(h.mediaConfig.Root, relative), data, 0o644); err != nil {
		return "", err
	}
	return relative, nil
}

func (h *AlertHandler) GetAlerts(c *gin.Context) {
	userID, _ := currentUserID(c)

	var alerts []models.Alert
	err := h.db.
		Joins("JOIN cameras ON cameras.id = alerts.camera_id").
		Where("cameras.user_id = ?", userID).
		Order("alerts.timestamp DESC").
		Find(&alerts).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch alerts"})
		return
	}

	c.JSON(http.StatusOK, alerts)
}

func (h *AlertHandler) GetUnacknowledgedAlerts(c *gin.Context) {
	userID, _ := currentUserID(c)

	var alerts []models.Alert
	err := h.db.
		Joins("JOIN cameras ON cameras.id = alerts.camera_id").
		Where("cameras.user_id = ? AND alerts.acknowledged = ?", userID, false).
		Order("alerts.timestamp DESC").
		Find(&alerts).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch alerts"})
		return
	}

	c.JSON(http.StatusOK, alerts)
}

func (h *AlertHandler) GetAlert(c *gin.Context) {
	userID, _ := currentUserID(c)

	alert, ok := h.ownedAlert(c, userID, c.Param("id"))
	if !ok {
		return
	}

	c.JSON(http.StatusOK, alert)
}

func (h *AlertHandler) AcknowledgeAlert(c *gin.Context) {
	userID, _ := currentUserID(c)

	alert, ok := h.ownedAlert(c, userID, c.Param("id"))
	if !ok {
		return
	}

	alert.Acknowledged = true
	if err := h.db.Save(&alert).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update alert"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "alert acknowledged", "alert_id": alert.ID})
}

// StreamAlerts upgrades to a websocket and holds the connection open,
// pushing the caller's alerts as they are created.
func (h *AlertHandler) StreamAlerts(c *gin.Context) {
	userID, exists := currentUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization required"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Alert stream upgrade failed for user %d: %v", userID, err)
		return
	}

	h.stream.Register(userID, conn)
	defer h.stream.Unregister(userID, conn)

	// Drain (and discard) client messages until the connection closes.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *AlertHandler) ownedAlert(c *gin.Context, userID uint, id string) (models.Alert, bool) {
	var alert models.Alert
	err := h.db.
		Joins("JOIN cameras ON cameras.id = alerts.camera_id").
		Where("cameras.user_id = ? AND alerts.id = ?", userID, id).
		First(&alert).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Alert not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch alert"})
		}
		return models.Alert{}, false
	}
	return alert, true
}
