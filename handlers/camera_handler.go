package handlers

import (
	"log"
	"net/http"

	"surveillance-center/backend/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CameraHandler struct {
	db *gorm.DB
}

func NewCameraHandler(db *gorm.DB) *CameraHandler {
	return &CameraHandler{db: db}
}

type CreateCameraRequest struct {
	Name     string `json:"name" binding:"required"`
	RTSPUrl  string `json:"rtsp_url" binding:"required"`
	IsActive *bool  `json:"is_active"`
}

type UpdateCameraRequest struct {
	Name     *string `json:"name"`
	RTSPUrl  *string `json:"rtsp_url"`
	IsActive *bool   `json:"is_active"`
}

func (h *CameraHandler) GetCameras(c *gin.Context) {
	userID, _ := currentUserID(c)

	var cameras []models.Camera
	if err := h.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&cameras).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cameras"})
		return
	}

	c.JSON(http.StatusOK, cameras)
}

func (h *CameraHandler) GetCamera(c *gin.Context) {
	userID, _ := currentUserID(c)

	camera, ok := h.ownedCamera(c, userID, c.Param("id"))
	if !ok {
		return
	}

	c.JSON(http.StatusOK, camera)
}

func (h *CameraHandler) CreateCamera(c *gin.Context) {
	userID, _ := currentUserID(c)

	var req CreateCameraRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	camera := models.Camera{
		UserID:   userID,
		Name:     req.Name,
		RTSPUrl:  req.RTSPUrl,
		IsActive: isActive,
	}

	if err := h.db.Create(&camera).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create camera"})
		return
	}

	c.JSON(http.StatusCreated, camera)
}

func (h *CameraHandler) UpdateCamera(c *gin.Context) {
	userID, _ := currentUserID(c)

	var req UpdateCameraRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	camera, ok := h.ownedCamera(c, userID, c.Param("id"))
	if !ok {
		return
	}

	// Update fields if provided
	if req.Name != nil {
		camera.Name = *req.Name
	}
	if req.RTSPUrl != nil {
		camera.RTSPUrl = *req.RTSPUrl
	}
	if req.IsActive != nil {
		camera.IsActive = *req.IsActive
	}

	if err := h.db.Save(&camera).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update camera"})
		return
	}

	c.JSON(http.StatusOK, camera)
}

func (h *CameraHandler) DeleteCamera(c *gin.Context) {
	userID, _ := currentUserID(c)

	camera, ok := h.ownedCamera(c, userID, c.Param("id"))
	if !ok {
		return
	}

	// Remove the camera's override config and rules along with it.
	err := h.db.Transaction(func(tx *gorm.DB) error {
		var config models.DetectionConfig
		err := tx.Where("camera_id = ? AND user_id IS NULL", camera.ID).First(&config).Error
		if err == nil {
			if err := tx.Where("config_id = ?", config.ID).Delete(&models.DetectionRule{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&config).Error; err != nil {
				return err
			}
		} else if err != gorm.ErrRecordNotFound {
			return err
		}
		return tx.Delete(&camera).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete camera"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Camera deleted successfully"})
}

func (h *CameraHandler) ActivateCamera(c *gin.Context) {
	h.setActive(c, true)
}

func (h *CameraHandler) DeactivateCamera(c *gin.Context) {
	h.setActive(c, false)
}

func (h *CameraHandler) setActive(c *gin.Context, active bool) {
	userID, _ := currentUserID(c)

	camera, ok := h.ownedCamera(c, userID, c.Param("id"))
	if !ok {
		return
	}

	camera.IsActive = active
	if err := h.db.Save(&camera).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update camera"})
		return
	}

	status := "camera deactivated"
	if active {
		status = "camera activated"
	}
	log.Printf("Camera %d active=%v (user %d)", camera.ID, active, userID)
	c.JSON(http.StatusOK, gin.H{"status": status, "camera_id": camera.ID})
}

// ownedCamera loads a camera by id scoped to the user, writing the error
// response itself when the lookup fails.
func (h *CameraHandler) ownedCamera(c *gin.Context, userID uint, id string) (models.Camera, bool) {
	var camera models.Camera
	if err := h.db.Where("user_id = ?", userID).First(&camera, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Camera not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch camera"})
		}
		return models.Camera{}, false
	}
	return camera, true
}
