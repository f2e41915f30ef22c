package middlewarex

import (
	"net/http"
	"strings"
)

// CORS adds CORS headers and answers preflight requests. allowOrigin is a
// comma separated list; "*" allows any origin.
func CORS(allowOrigin string, allowCredentials bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			originValue, varyOrigin := resolveAllowOrigin(allowOrigin, allowCredentials, r.Header.Get("Origin"))
			if originValue != "" {
				w.Header().Set("Access-Control-Allow-Origin", originValue)
			}
			if varyOrigin {
				w.Header().Set("Vary", "Origin")
			}
			if allowCredentials {
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Max-Age", "86400")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func resolveAllowOrigin(allowOrigin string, allowCredentials bool, requestOrigin string) (value string, varyOrigin bool) {
	origins := parseOrigins(allowOrigin)
	if len(origins) == 0 {
		return "*", false
	}

	for _, o := range origins {
		if o == "*" {
			// a credentialed response may not use the wildcard
			if allowCredentials && requestOrigin != "" {
				return requestOrigin, true
			}
			return "*", false
		}
	}

	if requestOrigin == "" {
		return "", true
	}
	for _, o := range origins {
		if o == requestOrigin {
			return requestOrigin, true
		}
	}
	return "", true
}

func parseOrigins(allowOrigin string) []string {
	var res []string
	for _, p := range strings.Split(allowOrigin, ",") {
		if p = strings.TrimSpace(p); p != "" {
			res = append(res, p)
		}
	}
	return res
}
