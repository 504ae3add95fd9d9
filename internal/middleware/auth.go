package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// APIKey guards admin routes. keys is a comma-separated list so that a new
// key can be rolled out before the old one is retired. An empty list lets
// every request through, which is how local development runs.
func APIKey(keys string) func(http.Handler) http.Handler {
	accepted := parseKeys(keys)
	return func(next http.Handler) http.Handler {
		if len(accepted) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !matchKey(accepted, presentedKey(r)) {
				writeJSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid API key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func parseKeys(s string) [][]byte {
	var out [][]byte
	for _, k := range strings.Split(s, ",") {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, []byte(k))
		}
	}
	return out
}

// matchKey compares against every accepted key so timing does not reveal
// which one matched.
func matchKey(accepted [][]byte, presented string) bool {
	if presented == "" {
		return false
	}
	p := []byte(presented)
	ok := 0
	for _, k := range accepted {
		ok |= subtle.ConstantTimeCompare(k, p)
	}
	return ok == 1
}

func presentedKey(r *http.Request) string {
	if s := r.Header.Get("X-API-Key"); s != "" {
		return s
	}
	scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
	if found && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}
	return ""
}
