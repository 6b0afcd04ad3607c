package user

import "errors"

var (
	ErrInvalidToken            = errors.New("invalid token")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
	ErrSchoolIDRequired        = errors.New("school ID is required")
	ErrTeacherProfileRequired  = errors.New("a teacher profile is required for this action")
)
