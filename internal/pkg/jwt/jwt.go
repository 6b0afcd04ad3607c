package jwt

import (
	"context"
	"time"

	"github.com/cmlabs-hris/teacher-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/teacher-attendance-go/internal/pkg/session"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const (
	TokenTypeAccess = "access"
	TokenTypeSSE    = "sse"

	sseTokenTTL = 5 * time.Minute
)

type Service interface {
	GenerateAccessToken(id session.Identity) (token string, expiresAt int64, err error)
	GenerateSSEToken(id session.Identity) (token string, expiresIn int, err error)
	ValidateSSEToken(tokenString string) (session.Identity, error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	accessTokenExpirationTime time.Duration
	tokenAuth                 *jwtauth.JWTAuth
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, accessTokenExpirationTime time.Duration) *JWTService {
	return &JWTService{
		accessTokenExpirationTime: accessTokenExpirationTime,
		tokenAuth:                 jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

func (j *JWTService) GenerateAccessToken(id session.Identity) (token string, expiresAt int64, err error) {
	expiresAt = time.Now().Add(j.accessTokenExpirationTime).Unix()
	token, err = j.encode(id, TokenTypeAccess, expiresAt)
	return token, expiresAt, err
}

// GenerateSSEToken issues a short-lived token for EventSource clients, which
// cannot send an Authorization header and must pass it in the query string.
func (j *JWTService) GenerateSSEToken(id session.Identity) (token string, expiresIn int, err error) {
	expiresAt := time.Now().Add(sseTokenTTL).Unix()
	token, err = j.encode(id, TokenTypeSSE, expiresAt)
	if err != nil {
		return "", 0, err
	}
	return token, int(sseTokenTTL.Seconds()), nil
}

// ValidateSSEToken verifies signature and expiry and returns the identity it carries
func (j *JWTService) ValidateSSEToken(tokenString string) (session.Identity, error) {
	token, err := jwtauth.VerifyToken(j.tokenAuth, tokenString)
	if err != nil {
		return session.Identity{}, user.ErrInvalidToken
	}

	claims, err := token.AsMap(context.Background())
	if err != nil {
		return session.Identity{}, user.ErrInvalidToken
	}
	if tokenType, _ := claims["type"].(string); tokenType != TokenTypeSSE {
		return session.Identity{}, user.ErrInvalidToken
	}

	return IdentityFromClaims(claims)
}

func (j *JWTService) encode(id session.Identity, tokenType string, expiresAt int64) (string, error) {
	claims := map[string]interface{}{
		"user_id":    id.UserID,
		"teacher_id": returnValueOrNil(id.TeacherID),
		"school_id":  id.SchoolID,
		"role":       string(id.Role),
		"type":       tokenType,
		"exp":        expiresAt,
	}
	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, err
}

// IdentityFromClaims maps verified token claims onto a session identity.
// teacher_id may be absent or null for accounts without a teacher profile.
func IdentityFromClaims(claims map[string]interface{}) (session.Identity, error) {
	userID, _ := claims["user_id"].(string)
	schoolID, _ := claims["school_id"].(string)
	role, _ := claims["role"].(string)
	teacherID, _ := claims["teacher_id"].(string)

	if userID == "" || !user.Role(role).IsValid() {
		return session.Identity{}, user.ErrInvalidToken
	}
	if schoolID == "" {
		return session.Identity{}, user.ErrSchoolIDRequired
	}

	return session.Identity{
		UserID:    userID,
		TeacherID: teacherID,
		SchoolID:  schoolID,
		Role:      user.Role(role),
	}, nil
}

func returnValueOrNil(value string) interface{} {
	if value == "" {
		return nil
	}
	return value
}
