package server

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// bcryptPrefix marks a password stored as a bcrypt hash.
const bcryptPrefix = "$2a$"

// isBcrypt checks whether the given password is bcrypted.
func isBcrypt(password string) bool {
	return strings.HasPrefix(password, bcryptPrefix)
}

func (s *Server) isValidUserPass(user, password string) bool {
	if user != s.opts.User {
		return false
	}
	if isBcrypt(s.opts.Password) {
		return bcrypt.CompareHashAndPassword([]byte(s.opts.Password), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(s.opts.Password), []byte(password)) == 1
}

// authMiddleware enforces basic auth when a user is configured.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		if s.opts.User != "" {
			user, password, ok := r.BasicAuth()
			if !ok || !s.isValidUserPass(user, password) {
				rw.Header().Set("WWW-Authenticate", `Basic realm="tracehttp"`)
				http.Error(rw, "authorization failed", http.StatusUnauthorized)
				return
			}
		}
		next.ServeHTTP(rw, r)
	})
}
