package middleware

import (
	"context"
	"net/http"
	"strings"

	notevault "github.com/notevault/notevault"
)

// Identity is the authenticated caller attached to the request context by
// [Guard].
type Identity struct {
	UserID string
}

type identityContextKey struct{}

// IdentityFromContext returns the [Identity] injected by [Guard], if any.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityContextKey{}).(Identity)
	return id, ok
}

// Guard returns middleware that rejects requests without a valid bearer
// access token. Valid requests continue with the caller's [Identity] in the
// context.
func Guard(engine *notevault.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				unauthorized(w)
				return
			}

			tokenStr, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				unauthorized(w)
				return
			}

			userID, err := engine.VerifyAccess(tokenStr)
			if err != nil {
				unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), identityContextKey{}, Identity{UserID: userID})
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

// unauthorized writes the same {err:{status,message}} envelope the handlers
// use, without importing them.
func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"err":{"status":401,"message":"Unauthorized"}}` + "\n"))
}
