package middleware

import (
	"fmt"
	"net/http"

	"github.com/cmlabs-hris/teacher-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/teacher-attendance-go/internal/handler/http/response"
	"github.com/cmlabs-hris/teacher-attendance-go/internal/pkg/session"
)

// RequirePermission checks if the caller has at least one of the permissions
func RequirePermission(permissions ...user.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := session.FromContext(r.Context())
			if err != nil {
				response.HandleError(w, err)
				return
			}

			for _, p := range permissions {
				if id.Can(p) {
					next.ServeHTTP(w, r)
					return
				}
			}

			response.Forbidden(w, fmt.Sprintf("Insufficient permissions: required %v, but user role is '%s'", permissions, id.Role))
		})
	}
}

// RequireTeacher rejects accounts without a teacher profile
func RequireTeacher(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := session.FromContext(r.Context())
		if err != nil {
			response.HandleError(w, err)
			return
		}
		if !id.IsTeacher() {
			response.HandleError(w, user.ErrTeacherProfileRequired)
			return
		}
		next.ServeHTTP(w, r)
	})
}
