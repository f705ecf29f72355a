package sheet

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestToInt(t *testing.T) {
	tests := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{"12", 12, false},
		{" 12 ", 12, false},
		{"0", 0, false},
		{"-3", -3, false},
		{"12.0", 12, false}, // spreadsheet float form
		{"", 0, true},
		{"twelve", 0, true},
	}
	for _, tt := range tests {
		got, err := ToInt(tt.raw)
		if tt.wantErr {
			assert.Error(t, err, tt.raw)
		} else {
			assert.NoError(t, err, tt.raw)
			assert.Equal(t, tt.want, got, tt.raw)
		}
	}
}

func TestToUint(t *testing.T) {
	got, err := ToUint("41")
	assert.NoError(t, err)
	assert.Equal(t, uint(41), got)

	_, err = ToUint("-1")
	assert.Error(t, err)
}

func TestToBool(t *testing.T) {
	for _, raw := range []string{"1", "true", "TRUE", "yes"} {
		got, err := ToBool(raw)
		assert.NoError(t, err, raw)
		assert.True(t, got, raw)
	}
	for _, raw := range []string{"0", "false", "no", ""} {
		got, err := ToBool(raw)
		assert.NoError(t, err, raw)
		assert.False(t, got, raw)
	}
	_, err := ToBool("maybe")
	assert.Error(t, err)
}

func TestToDecimal(t *testing.T) {
	d, err := ToDecimal(" 12.50 ")
	assert.NoError(t, err)
	assert.Equal(t, "12.50", d.StringFixed(2))

	_, err = ToDecimal("$12.50")
	assert.Error(t, err)
}

func TestToTime_Layouts(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Time
	}{
		{"2021-05-04T10:30:00Z", time.Date(2021, 5, 4, 10, 30, 0, 0, time.UTC)},
		{"2021-05-04 10:30:00", time.Date(2021, 5, 4, 10, 30, 0, 0, time.UTC)},
		{"2021-05-04", time.Date(2021, 5, 4, 0, 0, 0, 0, time.UTC)},
		{"5/4/2021", time.Date(2021, 5, 4, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, err := ToTime(tt.raw)
		assert.NoError(t, err, tt.raw)
		assert.True(t, got.Equal(tt.want), "%s parsed to %v", tt.raw, got)
	}

	_, err := ToTime("next tuesday")
	assert.Error(t, err)
}

func TestToDate_DropsTimeComponent(t *testing.T) {
	got, err := ToDate("2021-05-04T10:30:00Z")
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2021, 5, 4, 0, 0, 0, 0, time.UTC), got)
}

func TestFormatRoundTrips(t *testing.T) {
	when := time.Date(2021, 5, 4, 10, 30, 0, 0, time.UTC)

	back, err := ToTime(FormatTime(when))
	assert.NoError(t, err)
	assert.True(t, back.Equal(when))

	date, err := ToDate(FormatDate(when))
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2021, 5, 4, 0, 0, 0, 0, time.UTC), date)

	v, err := ToBool(FormatBool(true))
	assert.NoError(t, err)
	assert.True(t, v)
}
