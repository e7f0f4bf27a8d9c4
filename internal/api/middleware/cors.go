package middleware

import (
	"net/http"
	"strconv"
	"strings"
)

type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	AllowCredentials bool
	// MaxAge is how long, in seconds, browsers may cache a preflight. Zero
	// omits the header.
	MaxAge int
}

type corsPolicy struct {
	any     bool
	origins map[string]struct{}
}

func newCORSPolicy(origins []string) corsPolicy {
	p := corsPolicy{origins: make(map[string]struct{}, len(origins))}
	for _, o := range origins {
		o = strings.TrimRight(strings.ToLower(strings.TrimSpace(o)), "/")
		if o == "*" {
			p.any = true
			continue
		}
		if o != "" {
			p.origins[o] = struct{}{}
		}
	}
	return p
}

// allowedOrigin returns the value for Access-Control-Allow-Origin, or "" when
// origin may not make cross-origin calls.
func (p corsPolicy) allowedOrigin(origin string, credentials bool) string {
	if origin == "" {
		return ""
	}
	if p.any {
		if credentials {
			return origin
		}
		return "*"
	}
	if _, ok := p.origins[strings.TrimRight(strings.ToLower(origin), "/")]; ok {
		return origin
	}
	return ""
}

// CORS answers preflights itself. Requests without an Origin header are
// server-to-server calls and pass through untouched.
func CORS(config CORSConfig) Middleware {
	policy := newCORSPolicy(config.AllowedOrigins)
	methods := strings.Join(config.AllowedMethods, ", ")
	headers := strings.Join(config.AllowedHeaders, ", ")

	return func(f http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			allowed := policy.allowedOrigin(origin, config.AllowCredentials)

			h := w.Header()
			if origin != "" {
				h.Add("Vary", "Origin")
			}
			if allowed != "" {
				h.Set("Access-Control-Allow-Origin", allowed)
				if config.AllowCredentials {
					h.Set("Access-Control-Allow-Credentials", "true")
				}
				h.Set("Access-Control-Allow-Methods", methods)
				h.Set("Access-Control-Allow-Headers", headers)
				h.Set("Access-Control-Expose-Headers", "X-Request-ID")
			}

			if r.Method != http.MethodOptions {
				f(w, r)
				return
			}

			if allowed == "" {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			if config.MaxAge > 0 {
				h.Set("Access-Control-Max-Age", strconv.Itoa(config.MaxAge))
			}
			w.WriteHeader(http.StatusNoContent)
		}
	}
}
