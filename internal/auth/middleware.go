package auth

import (
	"encoding/json"
	"net/http"
	"strings"
)

// Skipper reports whether r may reach the handler without a bearer token.
type Skipper func(r *http.Request) bool

// Middleware rejects requests without a valid session token and stores the
// claims of accepted ones in the request context.
type Middleware struct {
	Config  Config
	Skipper Skipper
}

// NewMiddleware constructs a middleware that lets health and metrics probes through.
func NewMiddleware(cfg Config) Middleware {
	return Middleware{Config: cfg, Skipper: publicPaths}
}

func publicPaths(r *http.Request) bool {
	return r.URL.Path == "/healthz" || r.URL.Path == "/metrics"
}

// Wrap guards next.
func (m Middleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.Skipper != nil && m.Skipper(r) {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := bearerClaims(r.Header.Get("Authorization"), m.Config)
		if err != nil {
			unauthorized(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

func bearerClaims(header string, cfg Config) (*Claims, error) {
	if header == "" {
		return nil, ErrMissingToken
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return nil, ErrInvalidToken
	}
	return Parse(token, cfg)
}

// unauthorized answers with the same problem shape the API handlers use.
func unauthorized(w http.ResponseWriter, err error) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="motionlog"`)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"type":   "unauthorized",
		"detail": err.Error(),
	})
}
