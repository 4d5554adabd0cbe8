// Package principal authenticates the calling principal from a bearer token.
//
// Identity is an opaque handle to the ledger: the token subject becomes the
// principal and nothing else about the caller is interpreted here.
package principal

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"nomadpool/pkg/domain"
	"nomadpool/pkg/requestcontext"
)

// Validator parses and verifies bearer tokens, yielding the principal.
type Validator struct {
	signingKey []byte
}

func NewValidator(signingKey string) *Validator {
	return &Validator{signingKey: []byte(signingKey)}
}

// ValidateToken verifies an HS256 token and returns its subject as the
// principal.
func (v *Validator) ValidateToken(tokenString string) (domain.Principal, error) {
	parsed, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return v.signingKey, nil
	})
	if err != nil {
		return "", err
	}
	subject, err := parsed.Claims.GetSubject()
	if err != nil || subject == "" {
		return "", jwt.ErrTokenInvalidSubject
	}
	return domain.Principal(subject), nil
}

// Issue mints a token for a principal. Used by tests and local tooling; real
// deployments are expected to bring tokens from an external issuer sharing
// the signing key.
func (v *Validator) Issue(p domain.Principal) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: p.String()})
	return token.SignedString(v.signingKey)
}

// Require rejects requests without a valid bearer token and injects the
// authenticated principal into the request context.
func Require(validator *Validator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const bearerPrefix = "Bearer "
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), bearerPrefix)
			if !ok {
				writeUnauthorized(w)
				return
			}
			p, err := validator.ValidateToken(token)
			if err != nil {
				ctx := r.Context()
				logger.WarnContext(ctx, "bearer token rejected",
					"request_id", requestcontext.RequestID(ctx),
					"error", err.Error(),
				)
				writeUnauthorized(w)
				return
			}
			ctx := requestcontext.WithPrincipal(r.Context(), p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"bearer token required"}`))
}
