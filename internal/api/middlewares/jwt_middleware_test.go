package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := tok.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func protectedEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := UserID(r.Context())
		if !ok {
			http.Error(w, "no user id in context", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(id))
	})
}

func TestJWTMiddleware(t *testing.T) {
	handler := JWTMiddleware(testSecret)(protectedEcho())

	tests := []struct {
		name       string
		authHeader string
		wantCode   int
		wantBody   string
	}{
		{
			name: "valid token",
			authHeader: "Bearer " + signToken(t, testSecret, jwt.MapClaims{
				"user_id": "user-42",
				"exp":     time.Now().Add(time.Hour).Unix(),
			}),
			wantCode: http.StatusOK,
			wantBody: "user-42",
		},
		{
			name:       "missing header",
			authHeader: "",
			wantCode:   http.StatusUnauthorized,
		},
		{
			name:       "not bearer",
			authHeader: "Basic dXNlcjpwYXNz",
			wantCode:   http.StatusUnauthorized,
		},
		{
			name:       "garbage token",
			authHeader: "Bearer not.a.token",
			wantCode:   http.StatusUnauthorized,
		},
		{
			name: "wrong secret",
			authHeader: "Bearer " + signToken(t, "other-secret", jwt.MapClaims{
				"user_id": "user-42",
				"exp":     time.Now().Add(time.Hour).Unix(),
			}),
			wantCode: http.StatusUnauthorized,
		},
		{
			name: "expired token",
			authHeader: "Bearer " + signToken(t, testSecret, jwt.MapClaims{
				"user_id": "user-42",
				"exp":     time.Now().Add(-time.Hour).Unix(),
			}),
			wantCode: http.StatusUnauthorized,
		},
		{
			name: "missing user_id claim",
			authHeader: "Bearer " + signToken(t, testSecret, jwt.MapClaims{
				"exp": time.Now().Add(time.Hour).Unix(),
			}),
			wantCode: http.StatusUnauthorized,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestUserIDAbsent(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := UserID(req.Context())
	assert.False(t, ok)
}
