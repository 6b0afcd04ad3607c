package school

import "context"

// ConfigRepository reads the attendance settings owned by school-profile management.
type ConfigRepository interface {
	// GetAttendanceConfig returns ErrConfigNotFound when the school has no row
	GetAttendanceConfig(ctx context.Context, schoolID string) (AttendanceConfig, error)
}
