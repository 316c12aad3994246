package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"triage-waitlist/config"
	"triage-waitlist/pkg/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *jwt.JWTService {
	return jwt.NewJWTService(config.AuthConfig{
		Enabled:     true,
		Secret:      "test-secret",
		Issuer:      "triage-waitlist",
		TokenExpiry: time.Hour,
	})
}

// identityHandler writes the staff subject it sees, or "anonymous"
func identityHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject, ok := GetStaffSubjectFromContext(r.Context())
		if !ok {
			subject = "anonymous"
		}
		w.Write([]byte(subject))
	})
}

func serve(h http.Handler, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAuthenticate_ValidToken(t *testing.T) {
	jwtService := newTestJWTService()
	token, _, err := jwtService.GenerateToken("nurse.jones")
	require.NoError(t, err)

	m := NewStaffAuthMiddleware(jwtService, true)
	rec := serve(m.Authenticate(identityHandler()), "Bearer "+token)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "nurse.jones", rec.Body.String())
}

func TestAuthenticate_Rejects(t *testing.T) {
	other := jwt.NewJWTService(config.AuthConfig{Secret: "other-secret", Issuer: "triage-waitlist", TokenExpiry: time.Hour})
	forged, _, err := other.GenerateToken("intruder")
	require.NoError(t, err)

	m := NewStaffAuthMiddleware(newTestJWTService(), true)
	h := m.Authenticate(identityHandler())

	for name, header := range map[string]string{
		"missing header": "",
		"wrong scheme":   "Basic abc",
		"no token":       "Bearer",
		"garbage token":  "Bearer not-a-jwt",
		"wrong secret":   "Bearer " + forged,
	} {
		t.Run(name, func(t *testing.T) {
			rec := serve(h, header)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.NotContains(t, rec.Body.String(), "intruder")
		})
	}
}

func TestAuthenticate_DisabledPassesThrough(t *testing.T) {
	m := NewStaffAuthMiddleware(newTestJWTService(), false)

	rec := serve(m.Authenticate(identityHandler()), "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "anonymous", rec.Body.String())
}

func TestIdentify(t *testing.T) {
	jwtService := newTestJWTService()
	token, _, err := jwtService.GenerateToken("dr.who")
	require.NoError(t, err)

	m := NewStaffAuthMiddleware(jwtService, true)
	h := m.Identify(identityHandler())

	rec := serve(h, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "anonymous", rec.Body.String())

	rec = serve(h, "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "dr.who", rec.Body.String())

	rec = serve(h, "Bearer broken")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetStaffSubjectFromContext_EmptySubject(t *testing.T) {
	ctx := WithStaffSubject(httptest.NewRequest(http.MethodGet, "/", nil).Context(), "")

	_, ok := GetStaffSubjectFromContext(ctx)
	assert.False(t, ok)
}
