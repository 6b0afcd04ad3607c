package postgresql

import (
	"context"
	"errors"

	"github.com/cmlabs-hris/teacher-attendance-go/internal/domain/school"
	"github.com/cmlabs-hris/teacher-attendance-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type schoolConfigRepository struct {
	db *database.DB
}

func NewSchoolConfigRepository(db *database.DB) school.ConfigRepository {
	return &schoolConfigRepository{db: db}
}

// GetAttendanceConfig implements school.ConfigRepository.
func (s *schoolConfigRepository) GetAttendanceConfig(ctx context.Context, schoolID string) (school.AttendanceConfig, error) {
	q := GetQuerier(ctx, s.db)

	query := `
		SELECT school_id, teacher_check_in_time, teacher_check_out_time,
			   grace_period_minutes, early_departure_threshold_minutes, timezone,
			   created_at, updated_at
		FROM school_attendance_configs
		WHERE school_id = $1
	`

	var cfg school.AttendanceConfig
	err := q.QueryRow(ctx, query, schoolID).Scan(
		&cfg.SchoolID, &cfg.TeacherCheckInTime, &cfg.TeacherCheckOutTime,
		&cfg.GracePeriodMinutes, &cfg.EarlyDepartureThresholdMinutes, &cfg.Timezone,
		&cfg.CreatedAt, &cfg.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return school.AttendanceConfig{}, school.ErrConfigNotFound
		}
		return school.AttendanceConfig{}, database.Wrap("failed to get school attendance config", err)
	}

	return cfg, nil
}
