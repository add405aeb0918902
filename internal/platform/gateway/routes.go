package gateway

import "strings"

// Route maps a method (empty = any) and a segment pattern to a backend.
// A "*" segment matches exactly one path segment. Exact routes match only
// the pattern's own path, never deeper ones.
type Route struct {
	Method        string
	Pattern       string
	Backend       string
	RequireAPIKey bool
	Exact         bool
}

type Backends struct {
	IncidentURL string
	ActivityURL string
	EvidenceURL string
	SecretsURL  string
}

// DefaultRoutes is the static gateway table. Order does not matter: the most
// specific (longest) matching pattern wins, with a method-specific route
// beating an any-method route of the same length. Key issuance and listing
// are the only unauthenticated routes, and only at the collection path
// itself: anything deeper under /api/keys still requires a key.
func DefaultRoutes(backends Backends) []Route {
	return []Route{
		{Method: "POST", Pattern: "/api/keys", Backend: backends.SecretsURL, Exact: true},
		{Method: "GET", Pattern: "/api/keys", Backend: backends.SecretsURL, Exact: true},
		{Pattern: "/api/keys", Backend: backends.SecretsURL, RequireAPIKey: true},
		{Pattern: "/api/incidents/*/evidence", Backend: backends.EvidenceURL, RequireAPIKey: true},
		{Pattern: "/api/incidents", Backend: backends.IncidentURL, RequireAPIKey: true},
		{Pattern: "/api/evidence", Backend: backends.EvidenceURL, RequireAPIKey: true},
		{Pattern: "/api/activity", Backend: backends.ActivityURL, RequireAPIKey: true},
		{Pattern: "/api/stream", Backend: backends.ActivityURL, RequireAPIKey: true},
		{Pattern: "/internal", Backend: backends.SecretsURL, RequireAPIKey: true},
	}
}

// Match returns the winning route for a request, or false when nothing in the
// table covers the path.
func Match(routes []Route, method, path string) (Route, bool) {
	segments := splitPath(path)

	var (
		best      Route
		bestScore = -1
		found     bool
	)
	for _, route := range routes {
		if route.Method != "" && route.Method != method {
			continue
		}
		pattern := splitPath(route.Pattern)
		if route.Exact && len(pattern) != len(segments) {
			continue
		}
		if !prefixMatch(pattern, segments) {
			continue
		}
		score := len(pattern) * 2
		if route.Method != "" {
			score++
		}
		if score > bestScore {
			best = route
			bestScore = score
			found = true
		}
	}
	return best, found
}

func prefixMatch(pattern, segments []string) bool {
	if len(pattern) > len(segments) {
		return false
	}
	for i, part := range pattern {
		if part == "*" {
			continue
		}
		if part != segments[i] {
			return false
		}
	}
	return true
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}
