package handlers

import (
	"fmt"
	"log"
	"net/http"

	"surveillance-center/backend/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type VideoHandler struct {
	db *gorm.DB
}

func NewVideoHandler(db *gorm.DB) *VideoHandler {
	return &VideoHandler{db: db}
}

type CreateVideoRequest struct {
	CameraID    *uint    `json:"camera_id"`
	Title       string   `json:"title" binding:"required"`
	FilePath    string   `json:"file_path"`
	VideoType   string   `json:"video_type"`
	Description string   `json:"description"`
	Duration    *float64 `json:"duration"`
	FileSize    *int64   `json:"file_size"`
}

type UpdateVideoRequest struct {
	CameraID    *uint    `json:"camera_id"`
	Title       *string  `json:"title"`
	FilePath    *string  `json:"file_path"`
	VideoType   *string  `json:"video_type"`
	Description *string  `json:"description"`
	Duration    *float64 `json:"duration"`
	FileSize    *int64   `json:"file_size"`
}

func (h *VideoHandler) GetVideos(c *gin.Context) {
	userID, _ := currentUserID(c)

	var videos []models.Video
	if err := h.db.Where("user_id = ?", userID).Order("uploaded_at DESC").Find(&videos).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch videos"})
		return
	}

	c.JSON(http.StatusOK, videos)
}

func (h *VideoHandler) GetVideo(c *gin.Context) {
	userID, _ := currentUserID(c)

	video, ok := h.ownedVideo(c, userID, c.Param("id"))
	if !ok {
		return
	}

	c.JSON(http.StatusOK, video)
}

func (h *VideoHandler) CreateVideo(c *gin.Context) {
	userID, _ := currentUserID(c)

	var req CreateVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	videoType := req.VideoType
	if videoType == "" {
		videoType = "test"
	}
	if !models.IsValidVideoType(videoType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid video_type %q", videoType)})
		return
	}

	// An associated camera must belong to the caller.
	if req.CameraID != nil {
		var camera models.Camera
		if err := h.db.Where("id = ? AND user_id = ?", *req.CameraID, userID).First(&camera).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Camera not found"})
			return
		}
	}

	video := models.Video{
		UserID:      userID,
		CameraID:    req.CameraID,
		Title:       req.Title,
		FilePath:    req.FilePath,
		VideoType:   videoType,
		Description: req.Description,
		Duration:    req.Duration,
		FileSize:    req.FileSize,
	}

	if err := h.db.Create(&video).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create video"})
		return
	}

	c.JSON(http.StatusCreated, video)
}

func (h *VideoHandler) UpdateVideo(c *gin.Context) {
	userID, _ := currentUserID(c)

	var req UpdateVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	video, ok := h.ownedVideo(c, userID, c.Param("id"))
	if !ok {
		return
	}

	if req.VideoType != nil && !models.IsValidVideoType(*req.VideoType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid video_type %q", *req.VideoType)})
		return
	}
	if req.CameraID != nil {
		var camera models.Camera
		if err := h.db.Where("id = ? AND user_id = ?", *req.CameraID, userID).First(&camera).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Camera not found"})
			return
		}
		video.CameraID = req.CameraID
	}

	if req.Title != nil {
		video.Title = *req.Title
	}
	if req.FilePath != nil {
		video.FilePath = *req.FilePath
	}
	if req.VideoType != nil {
		video.VideoType = *req.VideoType
	}
	if req.Description != nil {
		video.Description = *req.Description
	}
	if req.Duration != nil {
		video.Duration = req.Duration
	}
	if req.FileSize != nil {
		video.FileSize = req.FileSize
	}

	if err := h.db.Save(&video).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update video"})
		return
	}

	c.JSON(http.StatusOK, video)
}

func (h *VideoHandler) DeleteVideo(c *gin.Context) {
	userID, _ := currentUserID(c)

	video, ok := h.ownedVideo(c, userID, c.Param("id"))
	if !ok {
		return
	}

	if err := h.db.Delete(&video).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete video"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Video deleted successfully"})
}

// ProcessVideo marks a video as processed by the pipeline.
func (h *VideoHandler) ProcessVideo(c *gin.Context) {
	userID, _ := currentUserID(c)

	video, ok := h.ownedVideo(c, userID, c.Param("id"))
	if !ok {
		return
	}

	video.Processed = true
	if err := h.db.Save(&video).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update video"})
		return
	}

	log.Printf("Video %d marked as processed (user %d)", video.ID, userID)
	c.JSON(http.StatusOK, gin.H{"status": "video processed", "video_id": video.ID})
}

func (h *VideoHandler) ownedVideo(c *gin.Context, userID uint, id string) (models.Video, bool) {
	var video models.Video
	if err := h.db.Where("user_id = ?", userID).First(&video, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Video not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch video"})
		}
		return models.Video{}, false
	}
	return video, true
}
