package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCivilZoneStandardTime(t *testing.T) {
	jan := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	loc, dst := CivilZone("America/New_York", jan)

	require.NotNil(t, loc)
	assert.False(t, dst)
	_, offset := jan.In(loc).Zone()
	assert.Equal(t, -5*60*60, offset)
}

func TestCivilZoneDaylightSaving(t *testing.T) {
	jul := time.Date(2026, 7, 10, 12, 0, 0, 0, time.UTC)

	loc, dst := CivilZone("America/New_York", jul)

	require.NotNil(t, loc)
	assert.True(t, dst)
	_, offset := jul.In(loc).Zone()
	assert.Equal(t, -4*60*60, offset)
}

func TestCivilZoneSouthernHemisphere(t *testing.T) {
	// Sydney observes daylight saving in January, standard time in July.
	jan := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	_, dst := CivilZone("Australia/Sydney", jan)
	assert.True(t, dst)

	jul := time.Date(2026, 7, 10, 12, 0, 0, 0, time.UTC)
	_, dst = CivilZone("Australia/Sydney", jul)
	assert.False(t, dst)
}

func TestCivilZoneUnknownNameFallsBackToUTC(t *testing.T) {
	loc, dst := CivilZone("Neverland/Nowhere", time.Now())

	assert.Equal(t, time.UTC, loc)
	assert.False(t, dst)
}

func TestParseEventTime(t *testing.T) {
	tests := []struct {
		name       string
		value      string
		wantAllDay bool
		wantErr    bool
	}{
		{name: "rfc3339 with offset", value: "2026-03-18T14:00:00-05:00"},
		{name: "naive datetime", value: "2026-03-18T14:00:00"},
		{name: "date only is all day", value: "2026-03-18", wantAllDay: true},
		{name: "empty", value: "", wantErr: true},
		{name: "garbage", value: "half past three", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, allDay, err := ParseEventTime(tt.value, testZone)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantAllDay, allDay)
			if !tt.wantAllDay {
				assert.Equal(t, 14, got.In(testZone).Hour())
			}
			assert.Equal(t, 18, got.In(testZone).Day())
		})
	}
}

func TestValidDate(t *testing.T) {
	assert.True(t, ValidDate("2026-03-18"))
	assert.False(t, ValidDate("18-03-2026"))
	assert.False(t, ValidDate("2026-13-01"))
	assert.False(t, ValidDate("tomorrow"))
	assert.False(t, ValidDate(""))
}

func TestParseClock(t *testing.T) {
	h, m, err := ParseClock("23:30")
	require.NoError(t, err)
	assert.Equal(t, 23, h)
	assert.Equal(t, 30, m)

	h, m, err = ParseClock("09:05")
	require.NoError(t, err)
	assert.Equal(t, 9, h)
	assert.Equal(t, 5, m)

	_, _, err = ParseClock("9pm")
	assert.Error(t, err)

	_, _, err = ParseClock("24:00")
	assert.Error(t, err)
}
