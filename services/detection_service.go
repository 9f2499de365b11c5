package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"surveillance-center/backend/models"

	"gorm.io/gorm"
)

// ConfigScope identifies which scope a detection config belongs to. Modeling
// it as a tagged value keeps "both set" and "neither set" unrepresentable on
// the write path; the nullable columns only exist at the storage layer.
type ConfigScope struct {
	kind     string // "user_default" or "camera_override"
	targetID uint
}

func UserDefaultScope(userID uint) ConfigScope {
	return ConfigScope{kind: "user_default", targetID: userID}
}

func CameraOverrideScope(cameraID uint) ConfigScope {
	return ConfigScope{kind: "camera_override", targetID: cameraID}
}

func (s ConfigScope) IsCameraOverride() bool { return s.kind == "camera_override" }

func (s ConfigScope) String() string {
	return fmt.Sprintf("%s(%d)", s.kind, s.targetID)
}

// ConfigInput carries the mutable fields of a detection config. Nil fields
// keep their current value on update (or the system default on create).
// Rules, when non-nil, is a total replacement of the config's rule set;
// nil leaves existing rules untouched.
type ConfigInput struct {
	MonitorMode         *string
	ActiveHoursStart    *models.TimeOfDay
	ActiveHoursEnd      *models.TimeOfDay
	Timezone            *string
	ConfidenceThreshold *float64
	FrameSkip           *int
	Rules               *[]RuleInput
}

type RuleInput struct {
	ObjectClass   string
	ThreatLevel   string
	ShouldAlert   bool
	MinConfidence *float64
}

// ConfigService is the write path of the detection configuration store.
type ConfigService struct {
	db *gorm.DB
}

func NewConfigService(db *gorm.DB) *ConfigService {
	return &ConfigService{db: db}
}

// UpsertCameraOverride creates or updates the override config for a camera.
// The camera must exist and belong to userID.
func (s *ConfigService) UpsertCameraOverride(userID, cameraID uint, input ConfigInput) (*models.DetectionConfig, error) {
	var camera models.Camera
	if err := s.db.Where("id = ? AND user_id = ?", cameraID, userID).First(&camera).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "camera", ID: cameraID}
		}
		return nil, err
	}
	return s.upsert(CameraOverrideScope(cameraID), input)
}

// UpsertUserDefault creates or updates the default config for a user.
func (s *ConfigService) UpsertUserDefault(userID uint, input ConfigInput) (*models.DetectionConfig, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "user", ID: userID}
		}
		return nil, err
	}
	return s.upsert(UserDefaultScope(userID), input)
}

// upsert finds the single config for the scope, applies the input on top of
// it (or of the system defaults when creating), validates the result and
// writes config plus replacement rules in one transaction. The partial
// unique indexes backstop concurrent creators; the loser gets a
// ConflictError rather than a second row.
func (s *ConfigService) upsert(scope ConfigScope, input ConfigInput) (*models.DetectionConfig, error) {
	var result models.DetectionConfig

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var config models.DetectionConfig
		err := scopeQuery(tx, scope).First(&config).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			config = newScopedConfig(scope)
		case err != nil:
			return err
		}

		applyInput(&config, input)
		if err := validateConfig(&config); err != nil {
			return err
		}

		if err := tx.Omit("Rules").Save(&config).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return &ConflictError{Reason: fmt.Sprintf("config for %s already exists", scope)}
			}
			return err
		}

		if input.Rules != nil {
			rules, err := buildRules(config.ID, *input.Rules)
			if err != nil {
				return err
			}
			if err := tx.Where("config_id = ?", config.ID).Delete(&models.DetectionRule{}).Error; err != nil {
				return err
			}
			if len(rules) > 0 {
				if err := tx.Create(&rules).Error; err != nil {
					if errors.Is(err, gorm.ErrDuplicatedKey) {
						return &ConflictError{Reason: "duplicate detection rule"}
					}
					return err
				}
			}
			config.Rules = rules
		} else if err := tx.Where("config_id = ?", config.ID).Order("object_class").Find(&config.Rules).Error; err != nil {
			return err
		}

		result = config
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Detection config saved for %s (%d rules)", scope, len(result.Rules))
	return &result, nil
}

// DeleteCameraOverride removes a camera's override config, letting the
// camera fall back to the user default or system defaults.
func (s *ConfigService) DeleteCameraOverride(userID, cameraID uint) error {
	var camera models.Camera
	if err := s.db.Where("id = ? AND user_id = ?", cameraID, userID).First(&camera).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Resource: "camera", ID: cameraID}
		}
		return err
	}
	return s.deleteScoped(CameraOverrideScope(cameraID))
}

// DeleteUserDefault removes a user's default config.
func (s *ConfigService) DeleteUserDefault(userID uint) error {
	return s.deleteScoped(UserDefaultScope(userID))
}

func (s *ConfigService) deleteScoped(scope ConfigScope) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var config models.DetectionConfig
		if err := scopeQuery(tx, scope).First(&config).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "detection config", ID: scope.targetID}
			}
			return err
		}
		if err := tx.Where("config_id = ?", config.ID).Delete(&models.DetectionRule{}).Error; err != nil {
			return err
		}
		return tx.Delete(&config).Error
	})
}

// GetUserDefault returns the user's stored default config, or a
// NotFoundError when none exists.
func (s *ConfigService) GetUserDefault(userID uint) (*models.DetectionConfig, error) {
	var config models.DetectionConfig
	err := scopeQuery(s.db, UserDefaultScope(userID)).First(&config).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "detection config", ID: userID}
		}
		return nil, err
	}
	if err := s.db.Where("config_id = ?", config.ID).Order("object_class").Find(&config.Rules).Error; err != nil {
		return nil, err
	}
	return &config, nil
}

func scopeQuery(tx *gorm.DB, scope ConfigScope) *gorm.DB {
	if scope.IsCameraOverride() {
		return tx.Where("camera_id = ? AND user_id IS NULL", scope.targetID)
	}
	return tx.Where("user_id = ? AND camera_id IS NULL", scope.targetID)
}

func newScopedConfig(scope ConfigScope) models.DetectionConfig {
	config := models.DetectionConfig{
		MonitorMode:         models.MonitorAlways,
		Timezone:            "UTC",
		ConfidenceThreshold: 0.6,
		FrameSkip:           5,
	}
	id := scope.targetID
	if scope.IsCameraOverride() {
		config.CameraID = &id
	} else {
		config.UserID = &id
	}
	return config
}

func applyInput(config *models.DetectionConfig, input ConfigInput) {
	if input.MonitorMode != nil {
		config.MonitorMode = *input.MonitorMode
	}
	if input.ActiveHoursStart != nil {
		config.ActiveHoursStart = input.ActiveHoursStart
	}
	if input.ActiveHoursEnd != nil {
		config.ActiveHoursEnd = input.ActiveHoursEnd
	}
	if input.Timezone != nil {
		config.Timezone = *input.Timezone
	}
	if input.ConfidenceThreshold != nil {
		config.ConfidenceThreshold = *input.ConfidenceThreshold
	}
	if input.FrameSkip != nil {
		config.FrameSkip = *input.FrameSkip
	}
}

func validateConfig(config *models.DetectionConfig) error {
	if (config.UserID == nil) == (config.CameraID == nil) {
		return validationErr("scope", "exactly one of user or camera must be set")
	}
	if !models.IsValidMonitorMode(config.MonitorMode) {
		return validationErr("monitor_mode", "must be one of %v", models.MonitorModes)
	}
	if config.MonitorMode != models.MonitorAlways {
		if config.ActiveHoursStart == nil || config.ActiveHoursEnd == nil {
			return validationErr("active_hours", "start and end are required when monitor_mode is %q", config.MonitorMode)
		}
	}
	if _, err := time.LoadLocation(config.Timezone); err != nil {
		return validationErr("timezone", "unknown timezone %q", config.Timezone)
	}
	if config.ConfidenceThreshold < 0 || config.ConfidenceThreshold > 1 {
		return validationErr("confidence_threshold", "must be between 0.0 and 1.0")
	}
	if config.FrameSkip < 0 {
		return validationErr("frame_skip", "must not be negative")
	}
	return nil
}

func buildRules(configID uint, inputs []RuleInput) ([]models.DetectionRule, error) {
	rules := make([]models.DetectionRule, 0, len(inputs))
	seen := make(map[string]bool, len(inputs))
	for _, in := range inputs {
		if !models.IsSecurityRelevantClass(in.ObjectClass) {
			return nil, validationErr("object_class", "%q is not a configurable object class", in.ObjectClass)
		}
		if seen[in.ObjectClass] {
			return nil, validationErr("object_class", "duplicate rule for class %q", in.ObjectClass)
		}
		seen[in.ObjectClass] = true

		level := in.ThreatLevel
		if level == "" {
			level = models.ThreatMedium
		}
		if !models.IsValidThreatLevel(level) {
			return nil, validationErr("threat_level", "must be one of %v", models.ThreatLevels)
		}
		if in.MinConfidence != nil && (*in.MinConfidence < 0 || *in.MinConfidence > 1) {
			return nil, validationErr("min_confidence", "must be between 0.0 and 1.0")
		}

		rules = append(rules, models.DetectionRule{
			ConfigID:      configID,
			ObjectClass:   in.ObjectClass,
			ThreatLevel:   level,
			ShouldAlert:   in.ShouldAlert,
			MinConfidence: in.MinConfidence,
		})
	}
	return rules, nil
}
