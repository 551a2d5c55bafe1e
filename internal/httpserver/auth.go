package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RoleOperator is the only role allowed to start, cancel and resume games.
const RoleOperator = "operator"

var ErrNoSecret = errors.New("httpserver: JWT secret is not configured")

// ctxOperatorKey is the context key for the authenticated operator subject.
type ctxOperatorKey struct{}

// Operator returns the operator subject attached by requireOperator.
func Operator(ctx context.Context) string {
	sub, _ := ctx.Value(ctxOperatorKey{}).(string)
	return sub
}

// SignOperatorToken issues an HS256 token with sub and role=operator.
func SignOperatorToken(secret, subject string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", ErrNoSecret
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  subject,
		"role": RoleOperator,
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// requireOperator enforces a valid operator JWT and stores its subject in the
// request context. Without a configured secret every request is refused.
func (s *Server) requireOperator() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if s.deps.JWTSecret == "" {
				http.Error(w, `{"error":"auth_not_configured"}`, http.StatusServiceUnavailable)
				return
			}
			tokenStr := bearer(r)
			if tokenStr == "" {
				http.Error(w, `{"error":"Unauthorized"}`, http.StatusUnauthorized)
				return
			}
			claims := jwt.MapClaims{}
			token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
				return []byte(s.deps.JWTSecret), nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			if err != nil || !token.Valid {
				http.Error(w, `{"error":"Invalid token"}`, http.StatusUnauthorized)
				return
			}
			sub, _ := claims.GetSubject()
			role, _ := claims["role"].(string)
			if sub == "" {
				http.Error(w, `{"error":"Invalid token"}`, http.StatusUnauthorized)
				return
			}
			if role != RoleOperator {
				http.Error(w, `{"error":"Forbidden"}`, http.StatusForbidden)
				return
			}
			ctx := context.WithValue(r.Context(), ctxOperatorKey{}, sub)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearer extracts a bearer token from the Authorization header.
func bearer(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	return ""
}
