package services

import (
	"fmt"
	"time"

	"surveillance-center/backend/models"
)

// ErrCorruptWindow is returned when a windowed monitor mode reaches the
// evaluator without both bounds. The write path makes that impossible for
// persisted configs, so hitting it means the store has been corrupted.
var ErrCorruptWindow = fmt.Errorf("windowed monitor mode persisted without both bounds")

// MonitoringActiveAt reports whether detection should run at the given
// instant under the supplied schedule. The instant is converted to the
// config's declared timezone before comparison; the window is a closed
// interval of wall-clock time and may wrap past midnight (start > end).
//
//	always:      active at all times, window ignored
//	custom:      active inside [start, end]
//	after_hours: active outside [start, end]
func MonitoringActiveAt(mode string, start, end *models.TimeOfDay, tz string, now time.Time) (bool, error) {
	if mode == models.MonitorAlways {
		return true, nil
	}
	if mode != models.MonitorAfterHours && mode != models.MonitorCustom {
		return false, fmt.Errorf("unknown monitor mode %q", mode)
	}
	if start == nil || end == nil {
		return false, ErrCorruptWindow
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		return false, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}
	local := now.In(loc)
	current := local.Hour()*3600 + local.Minute()*60 + local.Second()

	within := withinWindow(current, start.SecondOfDay(), end.SecondOfDay())
	if mode == models.MonitorCustom {
		return within, nil
	}
	return !within, nil
}

func withinWindow(current, start, end int) bool {
	if start <= end {
		return current >= start && current <= end
	}
	// Wrapped past midnight, e.g. 22:00-06:00.
	return current >= start || current <= end
}
