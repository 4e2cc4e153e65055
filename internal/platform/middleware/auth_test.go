package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "test-signing-key"

func sign(t *testing.T, key string, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	require.NoError(t, err)
	return token
}

func claims(expiresIn time.Duration, authorities ...string) Claims {
	return Claims{
		Authorities: authorities,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "indexer-admin",
			Issuer:    "hmpps-auth",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		},
	}
}

func protected(t *testing.T) (http.Handler, *bool) {
	t.Helper()
	reached := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		c, ok := ClaimsFrom(r.Context())
		assert.True(t, ok)
		assert.Equal(t, "indexer-admin", c.Subject)
		w.WriteHeader(http.StatusNoContent)
	})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := RequireRole(NewTokenValidator(testKey, "hmpps-auth"), RoleIndexAdmin, logger)(next)
	return h, &reached
}

func call(h http.Handler, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPut, "/maintain-index/build", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRequireRoleAdmitsAuthorisedCaller(t *testing.T) {
	h, reached := protected(t)
	w := call(h, "Bearer "+sign(t, testKey, claims(time.Hour, "ROLE_OTHER", RoleIndexAdmin)))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.True(t, *reached)
}

func TestRequireRoleRejections(t *testing.T) {
	tests := []struct {
		name          string
		authorization func(t *testing.T) string
		status        int
	}{
		{"missing header", func(*testing.T) string { return "" }, http.StatusUnauthorized},
		{"not bearer", func(*testing.T) string { return "Basic abc" }, http.StatusUnauthorized},
		{"wrong key", func(t *testing.T) string {
			return "Bearer " + sign(t, "other-key", claims(time.Hour, RoleIndexAdmin))
		}, http.StatusUnauthorized},
		{"expired", func(t *testing.T) string {
			return "Bearer " + sign(t, testKey, claims(-time.Minute, RoleIndexAdmin))
		}, http.StatusUnauthorized},
		{"missing authority", func(t *testing.T) string {
			return "Bearer " + sign(t, testKey, claims(time.Hour, "ROLE_OTHER"))
		}, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, reached := protected(t)
			w := call(h, tt.authorization(t))
			assert.Equal(t, tt.status, w.Code)
			assert.False(t, *reached)
		})
	}
}

func TestValidateTokenChecksIssuer(t *testing.T) {
	c := claims(time.Hour, RoleIndexAdmin)
	c.Issuer = "someone-else"
	_, err := NewTokenValidator(testKey, "hmpps-auth").ValidateToken(sign(t, testKey, c))
	assert.Error(t, err)
}
