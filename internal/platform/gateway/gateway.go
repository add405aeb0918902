// Package gateway is the edge: a static routing table, an authentication
// filter that fails closed against the key verifier, and a correlation filter
// that guarantees every request entering the system carries an id.
package gateway

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"pulseops/internal/shared/correlation"
)

const apiKeyHeader = "X-API-Key"

type Gateway struct {
	routes   []Route
	verifier KeyVerifier
	proxies  map[string]*httputil.ReverseProxy
	logger   *slog.Logger
}

func New(routes []Route, verifier KeyVerifier, logger *slog.Logger) (*Gateway, error) {
	if logger == nil {
		logger = slog.Default()
	}

	proxies := make(map[string]*httputil.ReverseProxy)
	for _, route := range routes {
		if _, ok := proxies[route.Backend]; ok {
			continue
		}
		target, err := url.Parse(route.Backend)
		if err != nil {
			return nil, err
		}
		proxy := httputil.NewSingleHostReverseProxy(target)
		// Negative flush interval streams each frame through immediately,
		// which the live event stream depends on.
		proxy.FlushInterval = -1
		proxies[route.Backend] = proxy
	}

	return &Gateway{
		routes:   routes,
		verifier: verifier,
		proxies:  proxies,
		logger:   logger,
	}, nil
}

func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	correlationID := strings.TrimSpace(r.Header.Get(correlation.Header))
	ctx := r.Context()
	if correlationID != "" {
		ctx = correlation.WithID(ctx, correlationID)
	}
	ctx, correlationID = correlation.Ensure(ctx)
	r = r.WithContext(ctx)
	r.Header.Set(correlation.Header, correlationID)
	// Set before proxying: once the stream body starts, headers are fixed.
	w.Header().Set(correlation.Header, correlationID)

	route, ok := Match(g.routes, r.Method, r.URL.Path)
	if !ok {
		g.writeError(w, http.StatusNotFound, "Not Found", "no route for "+r.URL.Path)
		return
	}

	if route.RequireAPIKey {
		apiKey := extractAPIKey(r)
		if apiKey == "" {
			g.logger.WarnContext(ctx, "gateway_missing_api_key",
				"module", "gateway",
				"path", r.URL.Path,
				"correlation_id", correlationID,
			)
			g.writeError(w, http.StatusUnauthorized, "Unauthorized", "missing api key")
			return
		}
		if err := g.verifier.Verify(ctx, apiKey); err != nil {
			g.logger.WarnContext(ctx, "gateway_key_rejected",
				"module", "gateway",
				"path", r.URL.Path,
				"correlation_id", correlationID,
				"error", err,
			)
			g.writeError(w, http.StatusUnauthorized, "Unauthorized", "invalid api key")
			return
		}
	}

	g.proxies[route.Backend].ServeHTTP(w, r)
}

func extractAPIKey(r *http.Request) string {
	if key := strings.TrimSpace(r.Header.Get(apiKeyHeader)); key != "" {
		return key
	}
	return strings.TrimSpace(r.URL.Query().Get("apiKey"))
}

func (g *Gateway) writeError(w http.ResponseWriter, status int, kind, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   kind,
		"message": message,
	})
}
