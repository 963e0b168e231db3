package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/ahirvonen/chatserver/internal/domain"
)

type contextKey string

const principalKey contextKey = "principal"

// Verifier resolves request credentials to a principal.
type Verifier interface {
	VerifyBasic(ctx context.Context, username, password string) (domain.Principal, error)
	VerifyToken(ctx context.Context, token string) (domain.Principal, error)
}

// Auth gatekeeps every wrapped route: credentials are verified against the
// credential store before the request reaches any other component. Both
// basic credentials and bearer tokens issued by login are accepted.
func Auth(verifier Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var (
				principal domain.Principal
				err       error
			)

			if username, password, ok := r.BasicAuth(); ok {
				principal, err = verifier.VerifyBasic(r.Context(), username, password)
			} else if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
				principal, err = verifier.VerifyToken(r.Context(), strings.TrimPrefix(header, "Bearer "))
			} else {
				unauthorized(w)
				return
			}

			if err != nil {
				unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Basic realm="chat"`)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":{"code":"UNAUTHORIZED","message":"Missing or invalid credentials"}}`))
}

// GetPrincipal extracts the authenticated principal from request context.
func GetPrincipal(ctx context.Context) domain.Principal {
	return ctx.Value(principalKey).(domain.Principal)
}
