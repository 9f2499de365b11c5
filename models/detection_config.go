package models

import (
	"time"
)

// Monitor modes controlling when detection is considered active.
const (
	MonitorAlways     = "always"
	MonitorAfterHours = "after_hours"
	MonitorCustom     = "custom"
)

var MonitorModes = []string{MonitorAlways, MonitorAfterHours, MonitorCustom}

// Threat levels for detection rules.
const (
	ThreatHigh   = "HIGH"
	ThreatMedium = "MEDIUM"
	ThreatLow    = "LOW"
	ThreatIgnore = "IGNORE"
)

var ThreatLevels = []string{ThreatHigh, ThreatMedium, ThreatLow, ThreatIgnore}

// SecurityRelevantClasses is the curated list of COCO object classes that can
// be configured. The pipeline detects more, but only these are exposed.
var SecurityRelevantClasses = []string{
	"person",
	"bicycle",
	"car",
	"motorcycle",
	"bus",
	"truck",
	"backpack",
	"handbag",
	"suitcase",
	"knife",
	"bottle",
	"cell phone",
	"laptop",
}

// DetectionConfig is either a user-level default (UserID set) or a
// camera-level override (CameraID set), never both and never neither.
// Partial unique indexes created in database.Initialize enforce at most one
// config per scope; the write path in services enforces the rest.
type DetectionConfig struct {
	ID       uint    `json:"id" gorm:"primaryKey"`
	UserID   *uint   `json:"user_id,omitempty" gorm:"index"`
	User     *User   `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	CameraID *uint   `json:"camera_id,omitempty" gorm:"index"`
	Camera   *Camera `json:"-" gorm:"constraint:OnDelete:CASCADE"`

	// Defaults for these fields are supplied in code, never via column
	// defaults: a GORM default tag on a non-pointer field would rewrite
	// valid zero values (confidence 0.0, frame skip 0) on create.
	MonitorMode      string     `json:"monitor_mode" gorm:"not null"`
	ActiveHoursStart *TimeOfDay `json:"active_hours_start,omitempty"`
	ActiveHoursEnd   *TimeOfDay `json:"active_hours_end,omitempty"`
	Timezone         string     `json:"timezone" gorm:"not null"` // IANA name

	ConfidenceThreshold float64 `json:"confidence_threshold" gorm:"not null"` // 0.0 to 1.0
	FrameSkip           int     `json:"frame_skip" gorm:"not null"`

	Rules []DetectionRule `json:"detection_rules" gorm:"foreignKey:ConfigID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DetectionRule overrides detection behavior for one object class within one
// config. MinConfidence, when set, beats the config's ConfidenceThreshold.
type DetectionRule struct {
	ID            uint     `json:"id" gorm:"primaryKey"`
	ConfigID      uint     `json:"-" gorm:"not null;uniqueIndex:uniq_config_object_class,priority:1"`
	ObjectClass   string   `json:"object_class" gorm:"not null;uniqueIndex:uniq_config_object_class,priority:2"`
	ThreatLevel   string   `json:"threat_level" gorm:"not null"`
	ShouldAlert   bool     `json:"should_alert" gorm:"not null"`
	MinConfidence *float64 `json:"min_confidence,omitempty"`
}

// EffectiveConfidence returns the threshold that applies to this rule:
// the rule's own MinConfidence if set, otherwise the parent config's default.
func (r DetectionRule) EffectiveConfidence(configDefault float64) float64 {
	if r.MinConfidence != nil {
		return *r.MinConfidence
	}
	return configDefault
}

func IsValidMonitorMode(mode string) bool {
	for _, m := range MonitorModes {
		if m == mode {
			return true
		}
	}
	return false
}

func IsValidThreatLevel(level string) bool {
	for _, l := range ThreatLevels {
		if l == level {
			return true
		}
	}
	return false
}

func IsSecurityRelevantClass(class string) bool {
	for _, c := range SecurityRelevantClasses {
		if c == class {
			return true
		}
	}
	return false
}
