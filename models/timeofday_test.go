package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "22:00", want: "22:00:00"},
		{input: "06:30:15", want: "06:30:15"},
		{input: "00:00", want: "00:00:00"},
		{input: "23:59:59", want: "23:59:59"},
		{input: "25:00", wantErr: true},
		{input: "12:61", wantErr: true},
		{input: "noon", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestTimeOfDaySecondOfDay(t *testing.T) {
	assert.Equal(t, 0, NewTimeOfDay(0, 0, 0).SecondOfDay())
	assert.Equal(t, 22*3600, NewTimeOfDay(22, 0, 0).SecondOfDay())
	assert.Equal(t, 6*3600+30*60+15, NewTimeOfDay(6, 30, 15).SecondOfDay())
}

func TestTimeOfDayJSONRoundTrip(t *testing.T) {
	original := NewTimeOfDay(22, 15, 0)

	data, err := json.Marshal(original)
	require.NoError(t, err)
	assert.Equal(t, `"22:15:00"`, string(data))

	var decoded TimeOfDay
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, original, decoded)

	// Short form is accepted on input.
	require.NoError(t, json.Unmarshal([]byte(`"09:00"`), &decoded))
	assert.Equal(t, "09:00:00", decoded.String())

	assert.Error(t, json.Unmarshal([]byte(`"later"`), &decoded))
}

func TestTimeOfDayScan(t *testing.T) {
	var tod TimeOfDay

	require.NoError(t, tod.Scan("22:00:00"))
	assert.Equal(t, "22:00:00", tod.String())

	require.NoError(t, tod.Scan([]byte("06:30:00")))
	assert.Equal(t, "06:30:00", tod.String())

	// Fractional seconds from the driver are truncated.
	require.NoError(t, tod.Scan("08:45:30.123456"))
	assert.Equal(t, "08:45:30", tod.String())

	require.NoError(t, tod.Scan(time.Date(2024, 1, 1, 17, 5, 9, 0, time.UTC)))
	assert.Equal(t, "17:05:09", tod.String())

	assert.Error(t, tod.Scan(42))
}

func TestTimeOfDayValue(t *testing.T) {
	v, err := NewTimeOfDay(9, 30, 0).Value()
	require.NoError(t, err)
	assert.Equal(t, "09:30:00", v)
}
