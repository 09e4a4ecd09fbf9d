package middleware

import (
	"net/http"
	"strings"

	"github.com/pkordes/tripmates/backend/internal/auth"
	"github.com/pkordes/tripmates/backend/internal/domain"
)

// Verifier turns a bearer token into the caller's identity.
type Verifier interface {
	Verify(token string) (domain.Identity, error)
}

// NewAuthenticator returns a middleware that requires an
// "Authorization: Bearer <jwt>" header. The verified identity is stored in the
// request context (see auth.IdentityFrom). Missing or invalid tokens get 401.
func NewAuthenticator(v Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			scheme, token, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				writeError(w, http.StatusUnauthorized, "unauthenticated", "missing bearer token")
				return
			}

			id, err := v.Verify(strings.TrimSpace(token))
			if err != nil {
				writeError(w, http.StatusUnauthorized, "unauthenticated", "invalid bearer token")
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
		})
	}
}
