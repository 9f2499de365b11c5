package services

import (
	"testing"
	"time"

	"surveillance-center/backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func timeOfDay(hour, minute int) *models.TimeOfDay {
	t := models.NewTimeOfDay(hour, minute, 0)
	return &t
}

func utcClock(hour, minute int) time.Time {
	return time.Date(2024, 6, 10, hour, minute, 0, 0, time.UTC)
}

func TestMonitoringActiveAlways(t *testing.T) {
	// Window fields are ignored under "always", even when present.
	active, err := MonitoringActiveAt(models.MonitorAlways, timeOfDay(22, 0), timeOfDay(6, 0), "UTC", utcClock(12, 0))
	require.NoError(t, err)
	assert.True(t, active)

	active, err = MonitoringActiveAt(models.MonitorAlways, nil, nil, "UTC", utcClock(3, 0))
	require.NoError(t, err)
	assert.True(t, active)
}

func TestMonitoringActiveWrappedWindow(t *testing.T) {
	tests := []struct {
		name   string
		mode   string
		hour   int
		active bool
	}{
		{"custom inside wrapped window", models.MonitorCustom, 23, true},
		{"custom outside wrapped window", models.MonitorCustom, 12, false},
		{"after_hours inside wrapped window", models.MonitorAfterHours, 23, false},
		{"after_hours outside wrapped window", models.MonitorAfterHours, 12, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			active, err := MonitoringActiveAt(tt.mode, timeOfDay(22, 0), timeOfDay(6, 0), "UTC", utcClock(tt.hour, 0))
			require.NoError(t, err)
			assert.Equal(t, tt.active, active)
		})
	}
}

func TestMonitoringActiveNonWrappedWindow(t *testing.T) {
	tests := []struct {
		name   string
		mode   string
		hour   int
		minute int
		active bool
	}{
		{"custom inside", models.MonitorCustom, 10, 30, true},
		{"custom before", models.MonitorCustom, 8, 59, false},
		{"custom after", models.MonitorCustom, 17, 1, false},
		{"after_hours inside", models.MonitorAfterHours, 10, 30, false},
		{"after_hours before", models.MonitorAfterHours, 8, 59, true},
		{"after_hours after", models.MonitorAfterHours, 17, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			active, err := MonitoringActiveAt(tt.mode, timeOfDay(9, 0), timeOfDay(17, 0), "UTC", utcClock(tt.hour, tt.minute))
			require.NoError(t, err)
			assert.Equal(t, tt.active, active)
		})
	}
}

func TestMonitoringActiveWindowBoundsInclusive(t *testing.T) {
	// The window is a closed interval; both bounds count as inside.
	for _, hour := range []int{22, 6} {
		active, err := MonitoringActiveAt(models.MonitorCustom, timeOfDay(22, 0), timeOfDay(6, 0), "UTC", utcClock(hour, 0))
		require.NoError(t, err)
		assert.True(t, active, "hour %d should be inside", hour)
	}
}

func TestMonitoringActiveUsesConfigTimezone(t *testing.T) {
	// 18:00 UTC on a January date is 13:00 in New York (EST, UTC-5):
	// inside a 09:00-17:00 local window.
	now := time.Date(2024, 1, 15, 18, 0, 0, 0, time.UTC)
	active, err := MonitoringActiveAt(models.MonitorCustom, timeOfDay(9, 0), timeOfDay(17, 0), "America/New_York", now)
	require.NoError(t, err)
	assert.True(t, active)

	// 23:00 UTC is 18:00 local: outside.
	now = time.Date(2024, 1, 15, 23, 0, 0, 0, time.UTC)
	active, err = MonitoringActiveAt(models.MonitorCustom, timeOfDay(9, 0), timeOfDay(17, 0), "America/New_York", now)
	require.NoError(t, err)
	assert.False(t, active)
}

func TestMonitoringActiveCorruptWindow(t *testing.T) {
	// A windowed mode without both bounds cannot come from the write path;
	// the evaluator must refuse rather than default.
	_, err := MonitoringActiveAt(models.MonitorCustom, nil, timeOfDay(6, 0), "UTC", utcClock(12, 0))
	assert.ErrorIs(t, err, ErrCorruptWindow)

	_, err = MonitoringActiveAt(models.MonitorAfterHours, timeOfDay(22, 0), nil, "UTC", utcClock(12, 0))
	assert.ErrorIs(t, err, ErrCorruptWindow)
}

func TestMonitoringActiveBadInput(t *testing.T) {
	_, err := MonitoringActiveAt("sometimes", timeOfDay(9, 0), timeOfDay(17, 0), "UTC", utcClock(12, 0))
	assert.Error(t, err)

	_, err = MonitoringActiveAt(models.MonitorCustom, timeOfDay(9, 0), timeOfDay(17, 0), "Mars/Olympus_Mons", utcClock(12, 0))
	assert.Error(t, err)
}
