package handlers

import (
	"net/http"
	"time"

	"surveillance-center/backend/models"
	"surveillance-center/backend/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// PipelineHandler serves the detection pipeline's read API: which cameras to
// scan and under which effective configuration.
type PipelineHandler struct {
	db       *gorm.DB
	resolver *services.Resolver
}

func NewPipelineHandler(db *gorm.DB, resolver *services.Resolver) *PipelineHandler {
	return &PipelineHandler{
		db:       db,
		resolver: resolver,
	}
}

type PipelineCamera struct {
	ID               uint                      `json:"id"`
	Name             string                    `json:"name"`
	RTSPUrl          string                    `json:"rtsp_url"`
	EffectiveConfig  *services.EffectiveConfig `json:"effective_config"`
	MonitoringActive bool                      `json:"monitoring_active"`
}

// GetActiveCameras lists every active camera with its resolved configuration
// and whether its schedule window makes monitoring active right now. The
// pipeline re-polls this endpoint each scan cycle.
func (h *PipelineHandler) GetActiveCameras(c *gin.Context) {
	var cameras []models.Camera
	if err := h.db.Where("is_active = ?", true).Find(&cameras).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cameras"})
		return
	}

	now := time.Now()
	result := make([]PipelineCamera, 0, len(cameras))
	for i := range cameras {
		camera := &cameras[i]

		effective, err := h.resolver.Resolve(camera)
		if err != nil {
			respondServiceError(c, err)
			return
		}

		active, err := effective.ActiveAt(now)
		if err != nil {
			// A windowed config without bounds means the store is corrupt;
			// surface it instead of guessing a schedule.
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid schedule data for camera"})
			return
		}

		result = append(result, PipelineCamera{
			ID:               camera.ID,
			Name:             camera.Name,
			RTSPUrl:          camera.RTSPUrl,
			EffectiveConfig:  effective,
			MonitoringActive: active,
		})
	}

	c.JSON(http.StatusOK, result)
}
