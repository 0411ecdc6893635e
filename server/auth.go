package server

import (
	"crypto/subtle"
	"net/http"
)

// BasicCredentials holds the username and password the broker expects from
// the platform on every /v2 request.
type BasicCredentials struct {
	Username string
	Password string
}

// BasicAuth rejects requests whose basic-auth credentials do not match.
// Comparison is constant time on both fields.
func BasicAuth(expected BasicCredentials) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username, password, ok := r.BasicAuth()
			if !ok || !credentialsMatch(expected, username, password) {
				w.Header().Set("WWW-Authenticate", `Basic realm="broker"`)
				writeDescription(w, http.StatusUnauthorized, "authentication required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func credentialsMatch(expected BasicCredentials, username string, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(expected.Username), []byte(username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(expected.Password), []byte(password)) == 1
	return userOK && passOK
}
