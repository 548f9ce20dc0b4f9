package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
)

// Level is the access a route needs. The Telex routes (/tick and
// /integration.json) are not wrapped at all: Telex calls them without a key.
type Level int

const (
	Anonymous Level = iota
	// Viewer reads monitor status, history and live events.
	Viewer
	// Operator starts and stops monitoring.
	Operator
)

func (l Level) String() string {
	switch l {
	case Viewer:
		return "viewer"
	case Operator:
		return "operator"
	default:
		return "anonymous"
	}
}

// Keys holds the configured API keys. Public keys grant Viewer, admin keys
// grant Operator (and therefore Viewer too).
type Keys struct {
	Public []string
	Admin  []string
}

// LevelOf resolves a presented key. Unknown and empty keys are Anonymous.
func (k Keys) LevelOf(key string) Level {
	switch {
	case matches(key, k.Admin):
		return Operator
	case matches(key, k.Public):
		return Viewer
	default:
		return Anonymous
	}
}

// guarded reports whether any key can grant lvl. With no such key configured
// the routes at that level stay open, which is how local runs work.
func (k Keys) guarded(lvl Level) bool {
	if lvl == Operator {
		return len(k.Admin) > 0
	}
	return len(k.Admin) > 0 || len(k.Public) > 0
}

// Require rejects requests whose key grants less than lvl: 401 when no key
// was sent, 403 when the key is unknown or too weak.
func Require(keys Keys, lvl Level) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if lvl == Anonymous || !keys.guarded(lvl) {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := presentedKey(r)
			switch {
			case keys.LevelOf(key) >= lvl:
				next.ServeHTTP(w, r)
			case key == "":
				deny(w, http.StatusUnauthorized, "API key required")
			default:
				deny(w, http.StatusForbidden, "API key does not grant "+lvl.String()+" access")
			}
		})
	}
}

// presentedKey reads "Authorization: Bearer <key>" or X-API-Key.
func presentedKey(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return strings.TrimSpace(r.Header.Get("X-API-Key"))
}

func matches(given string, set []string) bool {
	if given == "" {
		return false
	}
	found := 0
	for _, k := range set {
		found |= subtle.ConstantTimeCompare([]byte(k), []byte(given))
	}
	return found == 1
}

func deny(w http.ResponseWriter, code int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}
