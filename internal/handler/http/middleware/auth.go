package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/teacher-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/teacher-attendance-go/internal/handler/http/response"
	"github.com/cmlabs-hris/teacher-attendance-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/teacher-attendance-go/internal/pkg/session"
	"github.com/go-chi/jwtauth/v5"
)

// AuthRequired rejects requests without a verified access token and puts the
// caller's identity into the request context. It expects jwtauth.Verifier to
// run first.
func AuthRequired(next http.Handler) http.Handler {
	hfn := func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())

		if err != nil {
			response.Unauthorized(w, err.Error())
			return
		}

		if token == nil {
			response.HandleError(w, user.ErrInvalidToken)
			return
		}

		tokenType, ok := claims["type"].(string)
		if tokenType != jwt.TokenTypeAccess || !ok {
			response.HandleError(w, user.ErrInvalidToken)
			return
		}

		id, err := jwt.IdentityFromClaims(claims)
		if err != nil {
			response.HandleError(w, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(session.NewContext(r.Context(), id)))
	}
	return http.HandlerFunc(hfn)
}
