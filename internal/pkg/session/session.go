// Package session carries the authenticated caller through a request context.
package session

import (
	"context"
	"errors"

	"github.com/cmlabs-hris/teacher-attendance-go/internal/domain/user"
)

var ErrNoIdentity = errors.New("no authenticated identity in context")

// Identity is the caller as asserted by the access token.
type Identity struct {
	UserID    string
	TeacherID string // empty for accounts without a teacher profile
	SchoolID  string
	Role      user.Role
}

func (i Identity) IsTeacher() bool {
	return i.TeacherID != ""
}

func (i Identity) Can(p user.Permission) bool {
	return user.HasPermission(i.Role, p)
}

type ctxKey struct{}

func NewContext(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func FromContext(ctx context.Context) (Identity, error) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	if !ok {
		return Identity{}, ErrNoIdentity
	}
	if id.SchoolID == "" {
		return Identity{}, user.ErrSchoolIDRequired
	}
	return id, nil
}

// Teacher is FromContext for operations only a teacher can perform on their own day.
func Teacher(ctx context.Context) (Identity, error) {
	id, err := FromContext(ctx)
	if err != nil {
		return Identity{}, err
	}
	if !id.IsTeacher() {
		return Identity{}, user.ErrTeacherProfileRequired
	}
	return id, nil
}
