package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pkordes/yelp-camp/internal/domain"
)

// TokenCookie is the cookie Authenticate reads when no Authorization header
// is present.
const TokenCookie = "token"

// TokenVerifier turns a raw identity token into the user it names.
type TokenVerifier interface {
	Verify(raw string) (domain.User, error)
}

type userKey struct{}

// WithUser returns a copy of ctx carrying u as the signed-in user.
func WithUser(ctx context.Context, u domain.User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// UserFrom returns the signed-in user, if any.
func UserFrom(ctx context.Context) (domain.User, bool) {
	u, ok := ctx.Value(userKey{}).(domain.User)
	return u, ok
}

// Authenticate attaches the user named by a valid bearer token or token
// cookie to the request context. Requests without a valid token continue
// anonymously.
func Authenticate(v TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				if c, err := r.Cookie(TokenCookie); err == nil {
					raw = c.Value
				}
			}
			if raw != "" {
				u, err := v.Verify(raw)
				if err != nil {
					zerolog.Ctx(r.Context()).Debug().Err(err).Msg("ignoring invalid identity token")
				} else {
					r = r.WithContext(WithUser(r.Context(), u))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireUser passes signed-in requests through and hands every other
// request to deny.
func RequireUser(deny http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := UserFrom(r.Context()); !ok {
				deny(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) > len(prefix) && strings.EqualFold(h[:len(prefix)], prefix) {
		return strings.TrimSpace(h[len(prefix):])
	}
	return ""
}
