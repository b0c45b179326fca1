package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/api-sage/ledger-replay/src/internal/logger"
	"github.com/gorilla/mux"
)

// BasicAuth guards the account endpoints of the operational listener.
func BasicAuth(username, password string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if username == "" || password == "" {
				logger.Error("basic auth middleware missing server configuration", nil, logger.Fields{
					"method": r.Method,
					"path":   r.URL.Path,
				})
				http.Error(w, "server auth configuration is missing", http.StatusInternalServerError)
				return
			}

			user, pass, ok := r.BasicAuth()
			if !ok || !secureEqual(user, username) || !secureEqual(pass, password) {
				logger.Warn("basic auth middleware unauthorized request", logger.Fields{
					"method":      r.Method,
					"path":        r.URL.Path,
					"credentials": "invalid_or_missing",
				})
				w.Header().Set("WWW-Authenticate", `Basic realm="ledger-replay"`)
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func secureEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
