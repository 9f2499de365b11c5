package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// TimeOfDay is a wall-clock time with no date component, stored in a
// Postgres "time" column and serialized as "HH:MM:SS".
type TimeOfDay struct {
	seconds int // seconds since midnight, 0..86399
}

func NewTimeOfDay(hour, minute, second int) TimeOfDay {
	return TimeOfDay{seconds: hour*3600 + minute*60 + second}
}

func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var layout string
	switch strings.Count(s, ":") {
	case 1:
		layout = "15:04"
	case 2:
		layout = "15:04:05"
	default:
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q", s)
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q", s)
	}
	return NewTimeOfDay(t.Hour(), t.Minute(), t.Second()), nil
}

// SecondOfDay returns the number of seconds since midnight.
func (t TimeOfDay) SecondOfDay() int {
	return t.seconds
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.seconds/3600, t.seconds/60%60, t.seconds%60)
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Value implements driver.Valuer.
func (t TimeOfDay) Value() (driver.Value, error) {
	return t.String(), nil
}

// Scan implements sql.Scanner. The postgres driver may hand back a string,
// raw bytes, or a time.Time depending on protocol mode.
func (t *TimeOfDay) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*t = TimeOfDay{}
		return nil
	case time.Time:
		*t = NewTimeOfDay(v.Hour(), v.Minute(), v.Second())
		return nil
	case string:
		return t.scanString(v)
	case []byte:
		return t.scanString(string(v))
	default:
		return fmt.Errorf("cannot scan %T into TimeOfDay", src)
	}
}

func (t *TimeOfDay) scanString(s string) error {
	// Postgres may include fractional seconds; drop them.
	if i := strings.IndexByte(s, '.'); i >= 0 {
		s = s[:i]
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// GormDataType tells gorm to create a "time" column for this type.
func (TimeOfDay) GormDataType() string {
	return "time"
}
