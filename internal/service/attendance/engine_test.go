package attendance

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/teacher-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/teacher-attendance-go/internal/domain/school"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(hour, minute int) time.Time {
	return time.Date(2025, time.March, 10, hour, minute, 0, 0, time.UTC)
}

func TestEvaluateCheckIn(t *testing.T) {
	cfg := school.AttendanceConfig{TeacherCheckInTime: "07:00", GracePeriodMinutes: 15}

	tests := []struct {
		name        string
		now         time.Time
		wantStatus  attendance.Status
		wantLate    bool
		wantMinutes int
	}{
		{"early arrival clamps to on time", at(6, 30), attendance.StatusPresent, false, 0},
		{"exactly on time", at(7, 0), attendance.StatusPresent, false, 0},
		{"inside grace", at(7, 10), attendance.StatusPresent, false, 0},
		{"grace boundary is not late", at(7, 15), attendance.StatusPresent, false, 0},
		{"one minute past grace", at(7, 16), attendance.StatusLate, true, 16},
		{"late counts from expected time", at(7, 20), attendance.StatusLate, true, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := evaluateCheckIn(tt.now, cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.Equal(t, tt.wantLate, got.IsLate)
			assert.Equal(t, tt.wantMinutes, got.LateMinutes)
		})
	}
}

func TestEvaluateCheckIn_PartialMinutesFloor(t *testing.T) {
	cfg := school.AttendanceConfig{TeacherCheckInTime: "07:00", GracePeriodMinutes: 15}

	got, err := evaluateCheckIn(at(7, 15).Add(59*time.Second), cfg)
	require.NoError(t, err)
	assert.False(t, got.IsLate)

	got, err = evaluateCheckIn(at(7, 16).Add(30*time.Second), cfg)
	require.NoError(t, err)
	assert.True(t, got.IsLate)
	assert.Equal(t, 16, got.LateMinutes)
}

func TestEvaluateCheckIn_SchoolTimezone(t *testing.T) {
	cfg := school.AttendanceConfig{TeacherCheckInTime: "07:00", GracePeriodMinutes: 15, Timezone: "Asia/Jakarta"}

	// 00:30 UTC is 07:30 in Jakarta
	got, err := evaluateCheckIn(time.Date(2025, time.March, 10, 0, 30, 0, 0, time.UTC), cfg)
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusLate, got.Status)
	assert.Equal(t, 30, got.LateMinutes)
}

func TestEvaluateCheckIn_InvalidConfig(t *testing.T) {
	_, err := evaluateCheckIn(at(7, 0), school.AttendanceConfig{TeacherCheckInTime: "7am"})
	assert.ErrorIs(t, err, school.ErrInvalidConfig)

	_, err = evaluateCheckIn(at(7, 0), school.AttendanceConfig{TeacherCheckInTime: "07:00", Timezone: "Asia/Jakrta"})
	assert.ErrorIs(t, err, school.ErrInvalidConfig)
}

func TestEvaluateCheckOut(t *testing.T) {
	tests := []struct {
		name        string
		now         time.Time
		wantEarly   bool
		wantMinutes int
	}{
		{"well before expected", at(14, 40), true, 20},
		{"inside threshold", at(14, 55), false, 0},
		{"threshold boundary", at(14, 50), false, 0},
		{"on time", at(15, 0), false, 0},
		{"after expected clamps", at(16, 0), false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := evaluateCheckOut(tt.now, "15:00", 10, time.UTC)
			require.NoError(t, err)
			assert.Equal(t, tt.wantEarly, got.IsEarlyDeparture)
			assert.Equal(t, tt.wantMinutes, got.EarlyMinutes)
		})
	}
}

func TestLocalDay(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)

	// 20:00 UTC on the 9th is already the 10th in Jakarta
	day := localDay(time.Date(2025, time.March, 9, 20, 0, 0, 0, time.UTC), loc)
	assert.Equal(t, "2025-03-10", day.Format(dateLayout))
	assert.Equal(t, 0, day.Hour())
}

func TestParsePlannedCheckOut(t *testing.T) {
	now := at(13, 0)

	got, err := parsePlannedCheckOut("13:30", now, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, at(13, 30), got)

	got, err = parsePlannedCheckOut("2025-03-10T13:45:00Z", now, time.UTC)
	require.NoError(t, err)
	assert.True(t, got.Equal(at(13, 45)))

	_, err = parsePlannedCheckOut("soon", now, time.UTC)
	assert.Error(t, err)

	_, err = parsePlannedCheckOut("2025-03-09T13:45:00Z", now, time.UTC)
	assert.Error(t, err)
}
