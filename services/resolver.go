package services

import (
	"errors"
	"time"

	"surveillance-center/backend/models"

	"gorm.io/gorm"
)

// Origin tags marking which tier produced an effective config.
const (
	OriginCameraOverride = "camera_override"
	OriginUserDefault    = "user_default"
	OriginSystemDefault  = "system_default"
)

// EffectiveRule is a detection rule with its confidence fallback already
// applied, so the pipeline never computes precedence itself.
type EffectiveRule struct {
	ObjectClass         string   `json:"object_class"`
	ThreatLevel         string   `json:"threat_level"`
	ShouldAlert         bool     `json:"should_alert"`
	MinConfidence       *float64 `json:"min_confidence,omitempty"`
	EffectiveConfidence float64  `json:"effective_confidence"`
}

// EffectiveConfig is the single resolved configuration a camera operates
// under. Its shape is identical no matter which tier produced it; Origin is
// informational only.
type EffectiveConfig struct {
	MonitorMode         string            `json:"monitor_mode"`
	ActiveHoursStart    *models.TimeOfDay `json:"active_hours_start"`
	ActiveHoursEnd      *models.TimeOfDay `json:"active_hours_end"`
	Timezone            string            `json:"timezone"`
	ConfidenceThreshold float64           `json:"confidence_threshold"`
	FrameSkip           int               `json:"frame_skip"`
	Rules               []EffectiveRule   `json:"detection_rules"`
	Origin              string            `json:"origin"`
}

// ActiveAt reports whether monitoring is active at the given instant under
// this config's schedule.
func (e *EffectiveConfig) ActiveAt(now time.Time) (bool, error) {
	return MonitoringActiveAt(e.MonitorMode, e.ActiveHoursStart, e.ActiveHoursEnd, e.Timezone, now)
}

// Resolver is the read path: it walks the override chain for a camera and
// returns the first configuration found. It holds no state beyond the store
// handle and is safe for concurrent use.
type Resolver struct {
	db *gorm.DB
}

func NewResolver(db *gorm.DB) *Resolver {
	return &Resolver{db: db}
}

// configLookup is one tier of the override chain. It returns (nil, nil) when
// its tier has no config, which moves resolution to the next tier.
type configLookup func(db *gorm.DB, camera *models.Camera) (*models.DetectionConfig, string, error)

// lookupOrder is the precedence chain, most specific first.
var lookupOrder = []configLookup{
	lookupCameraOverride,
	lookupUserDefault,
}

// ResolveForCamera computes the effective configuration for a camera:
// camera override, else owning user's default, else system defaults.
// A camera with no config at any tier is not an error.
func (r *Resolver) ResolveForCamera(cameraID uint) (*EffectiveConfig, error) {
	var camera models.Camera
	if err := r.db.First(&camera, cameraID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "camera", ID: cameraID}
		}
		return nil, err
	}
	return r.Resolve(&camera)
}

// Resolve is ResolveForCamera for an already-loaded camera row.
func (r *Resolver) Resolve(camera *models.Camera) (*EffectiveConfig, error) {
	for _, lookup := range lookupOrder {
		config, origin, err := lookup(r.db, camera)
		if err != nil {
			return nil, err
		}
		if config == nil {
			continue
		}
		if err := r.db.Where("config_id = ?", config.ID).Order("object_class").Find(&config.Rules).Error; err != nil {
			return nil, err
		}
		resolved := EffectiveFromConfig(config, origin)
		return &resolved, nil
	}
	resolved := SystemDefaultConfig()
	return &resolved, nil
}

func lookupCameraOverride(db *gorm.DB, camera *models.Camera) (*models.DetectionConfig, string, error) {
	var config models.DetectionConfig
	err := db.Where("camera_id = ? AND user_id IS NULL", camera.ID).First(&config).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", err
	}
	return &config, OriginCameraOverride, nil
}

func lookupUserDefault(db *gorm.DB, camera *models.Camera) (*models.DetectionConfig, string, error) {
	var config models.DetectionConfig
	err := db.Where("user_id = ? AND camera_id IS NULL", camera.UserID).First(&config).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", err
	}
	return &config, OriginUserDefault, nil
}

// EffectiveFromConfig flattens a stored config and its rules into the
// uniform effective shape.
func EffectiveFromConfig(config *models.DetectionConfig, origin string) EffectiveConfig {
	rules := make([]EffectiveRule, 0, len(config.Rules))
	for _, r := range config.Rules {
		rules = append(rules, EffectiveRule{
			ObjectClass:         r.ObjectClass,
			ThreatLevel:         r.ThreatLevel,
			ShouldAlert:         r.ShouldAlert,
			MinConfidence:       r.MinConfidence,
			EffectiveConfidence: r.EffectiveConfidence(config.ConfidenceThreshold),
		})
	}
	return EffectiveConfig{
		MonitorMode:         config.MonitorMode,
		ActiveHoursStart:    config.ActiveHoursStart,
		ActiveHoursEnd:      config.ActiveHoursEnd,
		Timezone:            config.Timezone,
		ConfidenceThreshold: config.ConfidenceThreshold,
		FrameSkip:           config.FrameSkip,
		Rules:               rules,
		Origin:              origin,
	}
}

// SystemDefaultConfig is the synthesized bottom tier, never persisted.
func SystemDefaultConfig() EffectiveConfig {
	return EffectiveConfig{
		MonitorMode:         models.MonitorAlways,
		Timezone:            "UTC",
		ConfidenceThreshold: 0.6,
		FrameSkip:           5,
		Rules:               []EffectiveRule{},
		Origin:              OriginSystemDefault,
	}
}
