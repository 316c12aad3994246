package middleware

import (
	"context"
	"net/http"
	"strings"

	"triage-waitlist/pkg/jwt"
	"triage-waitlist/pkg/response"
)

type contextKey string

const StaffSubjectKey contextKey = "staff_subject"

// StaffAuthMiddleware guards staff routes with HS256 bearer tokens.
// When disabled every request passes through without a staff identity.
type StaffAuthMiddleware struct {
	jwtService *jwt.JWTService
	enabled    bool
}

func NewStaffAuthMiddleware(jwtService *jwt.JWTService, enabled bool) *StaffAuthMiddleware {
	return &StaffAuthMiddleware{
		jwtService: jwtService,
		enabled:    enabled,
	}
}

// Authenticate requires a valid staff token
func (m *StaffAuthMiddleware) Authenticate(next http.Handler) http.Handler {
	if !m.enabled {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.Unauthorized(w, "Authorization header is required")
			return
		}

		ctx, ok := m.authenticate(r.Context(), w, authHeader)
		if !ok {
			return
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Identify attaches the staff identity when a token is presented and lets
// anonymous requests through. A presented but invalid token is rejected.
func (m *StaffAuthMiddleware) Identify(next http.Handler) http.Handler {
	if !m.enabled {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			next.ServeHTTP(w, r)
			return
		}

		ctx, ok := m.authenticate(r.Context(), w, authHeader)
		if !ok {
			return
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *StaffAuthMiddleware) authenticate(ctx context.Context, w http.ResponseWriter, authHeader string) (context.Context, bool) {
	// Extract token from "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		response.Unauthorized(w, "Invalid authorization header format")
		return nil, false
	}

	claims, err := m.jwtService.ValidateToken(parts[1])
	if err != nil {
		response.Unauthorized(w, "Invalid or expired token")
		return nil, false
	}

	recordIdentity(ctx, claims.Subject, claims.TokenID)
	return WithStaffSubject(ctx, claims.Subject), true
}

// WithStaffSubject returns a copy of ctx carrying the staff identity
func WithStaffSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, StaffSubjectKey, subject)
}

// GetStaffSubjectFromContext extracts the staff identity from context
func GetStaffSubjectFromContext(ctx context.Context) (string, bool) {
	subject, ok := ctx.Value(StaffSubjectKey).(string)
	return subject, ok && subject != ""
}
