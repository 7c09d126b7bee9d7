// Package auth provides authentication middleware for the storefront API
// server.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/craftmint/storefront-server/internal/api/common"
	"github.com/craftmint/storefront-server/internal/authz"
)

// RFC 6750 Section 3 error codes
const (
	// errorCodeInvalidToken indicates the access token provided is expired,
	// revoked, malformed, or invalid for other reasons.
	errorCodeInvalidToken = "invalid_token"
)

// defaultRealm is the default protection space identifier
const defaultRealm = "storefront"

type principalContextKey struct{}

// PrincipalFromContext returns the principal resolved by the middleware.
// Handlers on routes without the middleware get an anonymous principal.
func PrincipalFromContext(ctx context.Context) authz.Principal {
	if p, ok := ctx.Value(principalContextKey{}).(authz.Principal); ok {
		return p
	}
	return authz.Anonymous()
}

// WithPrincipal returns a context carrying the given principal. Exposed for
// handler tests.
func WithPrincipal(ctx context.Context, p authz.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// Middleware validates bearer tokens on the merchant channel.
type Middleware struct {
	secret []byte
	issuer string
	realm  string
}

// Option configures the authentication middleware.
type Option func(*Middleware)

// WithIssuer requires the token's iss claim to match.
func WithIssuer(issuer string) Option {
	return func(m *Middleware) {
		m.issuer = issuer
	}
}

// WithRealm sets the protection space identifier used in challenges.
func WithRealm(realm string) Option {
	return func(m *Middleware) {
		m.realm = realm
	}
}

// NewMiddleware creates a middleware validating HS256 tokens with the given
// secret.
func NewMiddleware(secret []byte, opts ...Option) (*Middleware, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("JWT secret is required")
	}
	m := &Middleware{
		secret: secret,
		realm:  defaultRealm,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Handler returns an HTTP middleware that resolves the acting principal.
// Requests without an Authorization header proceed as anonymous; public
// visibility still applies to them. A present but invalid token is rejected
// so that a principal is never silently downgraded.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), authz.Anonymous())))
			return
		}

		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			m.writeChallenge(w, r, "authorization header must use the Bearer scheme")
			return
		}

		principal, err := m.validate(tokenString)
		if err != nil {
			slog.DebugContext(r.Context(), "Token validation failed", "error", err)
			m.writeChallenge(w, r, "invalid or expired token")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
	})
}

func (m *Middleware) validate(tokenString string) (authz.Principal, error) {
	parseOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	}
	if m.issuer != "" {
		parseOpts = append(parseOpts, jwt.WithIssuer(m.issuer))
	}

	token, err := jwt.Parse(tokenString, func(_ *jwt.Token) (any, error) {
		return m.secret, nil
	}, parseOpts...)
	if err != nil {
		return authz.Principal{}, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return authz.Principal{}, fmt.Errorf("unexpected claims type %T", token.Claims)
	}
	return authz.PrincipalFromClaims(claims)
}

// writeChallenge writes a 401 with a WWW-Authenticate challenge per RFC 6750.
func (m *Middleware) writeChallenge(w http.ResponseWriter, _ *http.Request, message string) {
	w.Header().Set("WWW-Authenticate", fmt.Sprintf(
		`Bearer realm=%q, error=%q, error_description=%q`,
		m.realm, errorCodeInvalidToken, message,
	))
	common.WriteErrorResponse(w, message, http.StatusUnauthorized)
}
