package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/trustgate/trustgate"
)

type sessionContextKey struct{}

// Session is the validated identity a guard injects into the request
// context.
type Session struct {
	Identity  trustgate.UserIdentity
	SessionID string
}

// SessionFromContext extracts the validated session injected by
// [RequireSession].
func SessionFromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionContextKey{}).(*Session)
	return s, ok
}

// RequireSession gates the wrapped handler on a valid verified-session
// bearer token. Identity-kind tokens and sessions whose marker has expired
// or been logged out are rejected.
func RequireSession(engine *trustgate.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			identity, sessionID, err := engine.ValidateSession(r.Context(), token)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), sessionContextKey{}, &Session{
				Identity:  identity,
				SessionID: sessionID,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}
