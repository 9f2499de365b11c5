package services

import (
	"testing"

	"surveillance-center/backend/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var configColumns = []string{
	"id", "user_id", "camera_id", "monitor_mode",
	"active_hours_start", "active_hours_end", "timezone",
	"confidence_threshold", "frame_skip",
}

var ruleColumns = []string{
	"id", "config_id", "object_class", "threat_level", "should_alert", "min_confidence",
}

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestResolveCameraOverrideWins(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "detection_configs" WHERE camera_id = \$1 AND user_id IS NULL`).
		WillReturnRows(sqlmock.NewRows(configColumns).
			AddRow(7, nil, 3, "custom", "22:00:00", "06:00:00", "UTC", 0.8, 2))
	mock.ExpectQuery(`SELECT \* FROM "detection_rules" WHERE config_id = \$1`).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows(ruleColumns).
			AddRow(1, 7, "knife", "HIGH", true, 0.95).
			AddRow(2, 7, "person", "MEDIUM", true, nil))

	camera := &models.Camera{ID: 3, UserID: 9}
	effective, err := NewResolver(db).Resolve(camera)
	require.NoError(t, err)

	assert.Equal(t, OriginCameraOverride, effective.Origin)
	assert.Equal(t, models.MonitorCustom, effective.MonitorMode)
	assert.Equal(t, 0.8, effective.ConfidenceThreshold)
	assert.Equal(t, 2, effective.FrameSkip)
	require.NotNil(t, effective.ActiveHoursStart)
	assert.Equal(t, "22:00:00", effective.ActiveHoursStart.String())

	require.Len(t, effective.Rules, 2)
	// Rule-level threshold wins; otherwise the config default applies.
	assert.Equal(t, 0.95, effective.Rules[0].EffectiveConfidence)
	assert.Equal(t, 0.8, effective.Rules[1].EffectiveConfidence)

	// The user-default tier must never be consulted once the override hits.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveFallsBackToUserDefault(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "detection_configs" WHERE camera_id = \$1 AND user_id IS NULL`).
		WillReturnRows(sqlmock.NewRows(configColumns))
	mock.ExpectQuery(`SELECT \* FROM "detection_configs" WHERE user_id = \$1 AND camera_id IS NULL`).
		WillReturnRows(sqlmock.NewRows(configColumns).
			AddRow(5, 9, nil, "always", nil, nil, "Europe/Berlin", 0.7, 5))
	mock.ExpectQuery(`SELECT \* FROM "detection_rules" WHERE config_id = \$1`).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows(ruleColumns))

	camera := &models.Camera{ID: 3, UserID: 9}
	effective, err := NewResolver(db).Resolve(camera)
	require.NoError(t, err)

	assert.Equal(t, OriginUserDefault, effective.Origin)
	assert.Equal(t, 0.7, effective.ConfidenceThreshold)
	assert.Equal(t, "Europe/Berlin", effective.Timezone)
	assert.Empty(t, effective.Rules)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveSystemDefaults(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "detection_configs" WHERE camera_id = \$1 AND user_id IS NULL`).
		WillReturnRows(sqlmock.NewRows(configColumns))
	mock.ExpectQuery(`SELECT \* FROM "detection_configs" WHERE user_id = \$1 AND camera_id IS NULL`).
		WillReturnRows(sqlmock.NewRows(configColumns))

	camera := &models.Camera{ID: 3, UserID: 9}
	effective, err := NewResolver(db).Resolve(camera)
	require.NoError(t, err)

	assert.Equal(t, &EffectiveConfig{
		MonitorMode:         models.MonitorAlways,
		Timezone:            "UTC",
		ConfidenceThreshold: 0.6,
		FrameSkip:           5,
		Rules:               []EffectiveRule{},
		Origin:              OriginSystemDefault,
	}, effective)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveForCameraNotFound(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "cameras"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name", "rtsp_url", "is_active"}))

	_, err := NewResolver(db).ResolveForCamera(42)
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "camera", notFound.Resource)
}

func TestEffectiveFromConfigRuleFallback(t *testing.T) {
	cameraID := uint(3)
	config := &models.DetectionConfig{
		ID:                  7,
		CameraID:            &cameraID,
		MonitorMode:         models.MonitorAlways,
		Timezone:            "UTC",
		ConfidenceThreshold: 0.6,
		FrameSkip:           5,
		Rules: []models.DetectionRule{
			{ObjectClass: "person", ThreatLevel: models.ThreatHigh, ShouldAlert: true},
			{ObjectClass: "knife", ThreatLevel: models.ThreatHigh, ShouldAlert: true, MinConfidence: floatPtr(0.9)},
		},
	}

	effective := EffectiveFromConfig(config, OriginCameraOverride)
	require.Len(t, effective.Rules, 2)
	assert.Equal(t, 0.6, effective.Rules[0].EffectiveConfidence)
	assert.Equal(t, 0.9, effective.Rules[1].EffectiveConfidence)
	assert.Equal(t, OriginCameraOverride, effective.Origin)
}

func TestSystemDefaultConfigSchedule(t *testing.T) {
	defaults := SystemDefaultConfig()
	active, err := defaults.ActiveAt(utcClock(3, 30))
	require.NoError(t, err)
	assert.True(t, active)
}
