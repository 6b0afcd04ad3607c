package session

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/teacher-attendance-go/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContext(t *testing.T) {
	_, err := FromContext(context.Background())
	assert.ErrorIs(t, err, ErrNoIdentity)

	ctx := NewContext(context.Background(), Identity{UserID: "u1", Role: user.RoleTeacher})
	_, err = FromContext(ctx)
	assert.ErrorIs(t, err, user.ErrSchoolIDRequired)

	ctx = NewContext(context.Background(), Identity{UserID: "u1", SchoolID: "s1", Role: user.RoleSupervisor})
	id, err := FromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "s1", id.SchoolID)
	assert.True(t, id.Can(user.PermissionAttendanceApprove))
}

func TestTeacher(t *testing.T) {
	ctx := NewContext(context.Background(), Identity{UserID: "u1", SchoolID: "s1", Role: user.RoleAdmin})
	_, err := Teacher(ctx)
	assert.ErrorIs(t, err, user.ErrTeacherProfileRequired)

	ctx = NewContext(context.Background(), Identity{UserID: "u2", TeacherID: "t2", SchoolID: "s1", Role: user.RoleTeacher})
	id, err := Teacher(ctx)
	require.NoError(t, err)
	assert.Equal(t, "t2", id.TeacherID)
}
