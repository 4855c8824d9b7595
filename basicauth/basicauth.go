// Package basicauth provides net/http-compatible HTTP Basic Authentication
// middleware backed by an htpasswd credential store.
//
// Any store with a Check method works — both [htpasswd.File] and
// [htpasswd.Watcher] satisfy [Checker]:
//
//	file, _ := htpasswd.LoadFile(".htpasswd")
//	mux := http.NewServeMux()
//	mux.Handle("/", basicauth.Middleware(file)(appHandler))
//
// Use [UserFromRequest] in downstream handlers to retrieve the
// authenticated username.
package basicauth

import (
	"context"
	"net/http"
)

// DefaultRealm is the WWW-Authenticate realm sent when no realm is given.
const DefaultRealm = "Restricted"

// Checker verifies a username/password pair. (false, nil) means the
// credentials are wrong; a non-nil error means verification itself failed
// and must not be reported to the client as a bad password.
//
// Implementations must be safe for concurrent use.
type Checker interface {
	Check(username, password string) (bool, error)
}

// Middleware authenticates every request against c using HTTP Basic
// Authentication with [DefaultRealm]. On success the username is injected
// into the request context and the next handler runs; on bad or missing
// credentials it responds 401 with a WWW-Authenticate challenge; on a
// verification fault it responds 500 without leaking detail.
func Middleware(c Checker) func(http.Handler) http.Handler {
	return MiddlewareWithRealm(c, DefaultRealm)
}

// MiddlewareWithRealm is [Middleware] with a caller-chosen challenge realm.
func MiddlewareWithRealm(c Checker, realm string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username, password, ok := r.BasicAuth()
			if !ok {
				challenge(w, realm)
				return
			}
			matched, err := c.Check(username, password)
			if err != nil {
				http.Error(w, http.StatusText(http.StatusInternalServerError),
					http.StatusInternalServerError)
				return
			}
			if !matched {
				challenge(w, realm)
				return
			}
			next.ServeHTTP(w, r.WithContext(withUser(r.Context(), username)))
		})
	}
}

func challenge(w http.ResponseWriter, realm string) {
	w.Header().Set("WWW-Authenticate", `Basic realm="`+realm+`", charset="UTF-8"`)
	http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
}

type contextKey int

const userContextKey contextKey = iota

func withUser(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, userContextKey, username)
}

// UserFromContext retrieves the authenticated username stored in ctx.
// The second return value is false if the middleware has not run.
func UserFromContext(ctx context.Context) (string, bool) {
	u, ok := ctx.Value(userContextKey).(string)
	return u, ok
}

// UserFromRequest retrieves the authenticated username from the request's
// context. The second return value is false if the middleware has not run.
func UserFromRequest(r *http.Request) (string, bool) {
	return UserFromContext(r.Context())
}
