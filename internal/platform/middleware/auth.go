package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"

	dErrors "prisonersearch/pkg/domain-errors"
	"prisonersearch/pkg/platform/httputil"
)

// RoleIndexAdmin grants access to the index administration surface.
const RoleIndexAdmin = "ROLE_PRISONER_INDEX"

// Claims are the access token claims the admin surface relies on.
type Claims struct {
	Authorities []string `json:"authorities"`
	ClientID    string   `json:"client_id,omitempty"`
	jwt.RegisteredClaims
}

// HasAuthority reports whether the token grants role.
func (c *Claims) HasAuthority(role string) bool {
	return slices.Contains(c.Authorities, role)
}

// TokenValidator checks HMAC signed access tokens.
type TokenValidator struct {
	signingKey []byte
	issuer     string
}

func NewTokenValidator(signingKey, issuer string) *TokenValidator {
	return &TokenValidator{signingKey: []byte(signingKey), issuer: issuer}
}

func (v *TokenValidator) ValidateToken(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(*jwt.Token) (any, error) {
		return v.signingKey, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	return claims, nil
}

// Validator is satisfied by TokenValidator.
type Validator interface {
	ValidateToken(tokenString string) (*Claims, error)
}

type contextKeyClaims struct{}

// ClaimsFrom returns the claims of the authenticated caller, if any.
func ClaimsFrom(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(contextKeyClaims{}).(*Claims)
	return c, ok
}

// WithClaims attaches claims to ctx. Useful for handler tests that skip the
// middleware chain.
func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, contextKeyClaims{}, c)
}

// RequireRole rejects requests without a valid bearer token granting role.
func RequireRole(validator Validator, role string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := middleware.GetReqID(ctx)

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token", "request_id", requestID)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing or invalid Authorization header"))
				return
			}
			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestID,
				)
				httputil.WriteError(w, err)
				return
			}
			if !claims.HasAuthority(role) {
				logger.WarnContext(ctx, "forbidden - missing authority",
					"subject", claims.Subject,
					"role", role,
					"request_id", requestID,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "missing authority "+role))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(ctx, claims)))
		})
	}
}
