package handlers

import (
	"errors"
	"net/http"
	"time"

	"surveillance-center/backend/models"
	"surveillance-center/backend/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ConfigHandler struct {
	db       *gorm.DB
	configs  *services.ConfigService
	resolver *services.Resolver
}

func NewConfigHandler(db *gorm.DB, configs *services.ConfigService, resolver *services.Resolver) *ConfigHandler {
	return &ConfigHandler{
		db:       db,
		configs:  configs,
		resolver: resolver,
	}
}

type ConfigUpdateRequest struct {
	MonitorMode         *string           `json:"monitor_mode"`
	ActiveHoursStart    *models.TimeOfDay `json:"active_hours_start"`
	ActiveHoursEnd      *models.TimeOfDay `json:"active_hours_end"`
	Timezone            *string           `json:"timezone"`
	ConfidenceThreshold *float64          `json:"confidence_threshold"`
	FrameSkip           *int              `json:"frame_skip"`
	DetectionRules      *[]RuleRequest    `json:"detection_rules"`
}

type RuleRequest struct {
	ObjectClass   string   `json:"object_class" binding:"required"`
	ThreatLevel   string   `json:"threat_level"`
	ShouldAlert   *bool    `json:"should_alert"`
	MinConfidence *float64 `json:"min_confidence"`
}

// ConfigResponse is a stored config rendered with the resolved rule
// confidences and its origin tag.
type ConfigResponse struct {
	ID        uint      `json:"id"`
	UserID    *uint     `json:"user_id,omitempty"`
	CameraID  *uint     `json:"camera_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	services.EffectiveConfig
}

func configResponse(config *models.DetectionConfig, origin string) ConfigResponse {
	return ConfigResponse{
		ID:              config.ID,
		UserID:          config.UserID,
		CameraID:        config.CameraID,
		CreatedAt:       config.CreatedAt,
		UpdatedAt:       config.UpdatedAt,
		EffectiveConfig: services.EffectiveFromConfig(config, origin),
	}
}

func (r ConfigUpdateRequest) toInput() services.ConfigInput {
	input := services.ConfigInput{
		MonitorMode:         r.MonitorMode,
		ActiveHoursStart:    r.ActiveHoursStart,
		ActiveHoursEnd:      r.ActiveHoursEnd,
		Timezone:            r.Timezone,
		ConfidenceThreshold: r.ConfidenceThreshold,
		FrameSkip:           r.FrameSkip,
	}
	if r.DetectionRules != nil {
		rules := make([]services.RuleInput, 0, len(*r.DetectionRules))
		for _, rule := range *r.DetectionRules {
			shouldAlert := true
			if rule.ShouldAlert != nil {
				shouldAlert = *rule.ShouldAlert
			}
			rules = append(rules, services.RuleInput{
				ObjectClass:   rule.ObjectClass,
				ThreatLevel:   rule.ThreatLevel,
				ShouldAlert:   shouldAlert,
				MinConfidence: rule.MinConfidence,
			})
		}
		input.Rules = &rules
	}
	return input
}

// GetCameraConfig returns the effective configuration for a camera: its own
// override, else the user default, else system defaults. The shape is the
// same in all three cases; only the origin tag differs.
func (h *ConfigHandler) GetCameraConfig(c *gin.Context) {
	userID, _ := currentUserID(c)

	var camera models.Camera
	if err := h.db.Where("user_id = ?", userID).First(&camera, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Camera not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch camera"})
		}
		return
	}

	effective, err := h.resolver.Resolve(&camera)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, effective)
}

// UpdateCameraConfig creates or updates the camera's override config.
// A supplied detection_rules list fully replaces the existing rule set.
func (h *ConfigHandler) UpdateCameraConfig(c *gin.Context) {
	userID, _ := currentUserID(c)

	var req ConfigUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var camera models.Camera
	if err := h.db.Where("user_id = ?", userID).First(&camera, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Camera not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch camera"})
		}
		return
	}

	config, err := h.configs.UpsertCameraOverride(userID, camera.ID, req.toInput())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, configResponse(config, services.OriginCameraOverride))
}

// DeleteCameraConfig removes the camera override; the camera falls back to
// the user default or system defaults.
func (h *ConfigHandler) DeleteCameraConfig(c *gin.Context) {
	userID, _ := currentUserID(c)

	var camera models.Camera
	if err := h.db.Where("user_id = ?", userID).First(&camera, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Camera not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch camera"})
		}
		return
	}

	if err := h.configs.DeleteCameraOverride(userID, camera.ID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Camera config removed"})
}

// GetUserDefaultConfig returns the caller's stored default config, or the
// system defaults when none exists.
func (h *ConfigHandler) GetUserDefaultConfig(c *gin.Context) {
	userID, _ := currentUserID(c)

	config, err := h.configs.GetUserDefault(userID)
	if err != nil {
		var notFound *services.NotFoundError
		if errors.As(err, &notFound) {
			// No stored default is not an error: answer with system defaults.
			c.JSON(http.StatusOK, services.SystemDefaultConfig())
			return
		}
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, configResponse(config, services.OriginUserDefault))
}

// UpdateUserDefaultConfig creates or updates the caller's default config.
func (h *ConfigHandler) UpdateUserDefaultConfig(c *gin.Context) {
	userID, _ := currentUserID(c)

	var req ConfigUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	config, err := h.configs.UpsertUserDefault(userID, req.toInput())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, configResponse(config, services.OriginUserDefault))
}

// DeleteUserDefaultConfig removes the caller's default config.
func (h *ConfigHandler) DeleteUserDefaultConfig(c *gin.Context) {
	userID, _ := currentUserID(c)

	if err := h.configs.DeleteUserDefault(userID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Default config removed"})
}
