package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"pulseops/internal/shared/correlation"
)

type stubVerifier struct {
	calls int
	err   error
}

func (v *stubVerifier) Verify(context.Context, string) error {
	v.calls++
	return v.err
}

func newTestGateway(t *testing.T, verifier KeyVerifier) (*Gateway, *httptest.Server) {
	t.Helper()
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Backend-Hit", "1")
		w.Header().Set("X-Seen-Correlation", r.Header.Get(correlation.Header))
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(backend.Close)

	routes := DefaultRoutes(Backends{
		IncidentURL: backend.URL,
		ActivityURL: backend.URL,
		EvidenceURL: backend.URL,
		SecretsURL:  backend.URL,
	})
	gw, err := New(routes, verifier, nil)
	if err != nil {
		t.Fatalf("gateway construction failed: %v", err)
	}
	return gw, backend
}

func TestMatchPicksMostSpecificRoute(t *testing.T) {
	routes := DefaultRoutes(Backends{
		IncidentURL: "http://incident",
		ActivityURL: "http://activity",
		EvidenceURL: "http://evidence",
		SecretsURL:  "http://secrets",
	})

	cases := []struct {
		method, path, backend string
		requireKey            bool
	}{
		{"POST", "/api/incidents", "http://incident", true},
		{"GET", "/api/incidents/INC_1", "http://incident", true},
		{"POST", "/api/incidents/INC_1/evidence", "http://evidence", true},
		{"GET", "/api/incidents/INC_1/evidence", "http://evidence", true},
		{"GET", "/api/evidence/EV_1/download", "http://evidence", true},
		{"GET", "/api/activity", "http://activity", true},
		{"GET", "/api/stream", "http://activity", true},
		{"POST", "/api/keys", "http://secrets", false},
		{"GET", "/api/keys", "http://secrets", false},
		{"GET", "/api/keys/KEY_1", "http://secrets", true},
		{"POST", "/api/keys/KEY_1/rotate", "http://secrets", true},
		{"DELETE", "/api/keys/KEY_1", "http://secrets", true},
		{"POST", "/internal/verify", "http://secrets", true},
	}
	for _, tc := range cases {
		route, ok := Match(routes, tc.method, tc.path)
		if !ok {
			t.Fatalf("%s %s: no route", tc.method, tc.path)
		}
		if route.Backend != tc.backend {
			t.Errorf("%s %s routed to %s, want %s", tc.method, tc.path, route.Backend, tc.backend)
		}
		if route.RequireAPIKey != tc.requireKey {
			t.Errorf("%s %s RequireAPIKey = %v, want %v", tc.method, tc.path, route.RequireAPIKey, tc.requireKey)
		}
	}

	if _, ok := Match(routes, "GET", "/healthz"); ok {
		t.Error("unlisted path must not match")
	}
}

func TestValidKeyPassesThrough(t *testing.T) {
	verifier := &stubVerifier{}
	gw, _ := newTestGateway(t, verifier)

	req := httptest.NewRequest("GET", "/api/incidents", nil)
	req.Header.Set("X-API-Key", "pk_valid")
	rec := httptest.NewRecorder()
	gw.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Header().Get("X-Backend-Hit") != "1" {
		t.Fatal("request never reached the backend")
	}
	if verifier.calls != 1 {
		t.Fatalf("verifier called %d times, want 1", verifier.calls)
	}
}

func TestMissingKeyIsRejectedBeforeAnyDownstreamCall(t *testing.T) {
	verifier := &stubVerifier{}
	gw, _ := newTestGateway(t, verifier)

	rec := httptest.NewRecorder()
	gw.ServeHTTP(rec, httptest.NewRequest("GET", "/api/incidents", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if verifier.calls != 0 {
		t.Fatal("missing key must not trigger a verification call")
	}
	if rec.Header().Get("X-Backend-Hit") != "" {
		t.Fatal("missing key must not reach the backend")
	}
}

func TestVerifierFailureFailsClosed(t *testing.T) {
	verifier := &stubVerifier{err: errors.New("verifier unreachable")}
	gw, _ := newTestGateway(t, verifier)

	req := httptest.NewRequest("GET", "/api/incidents", nil)
	req.Header.Set("X-API-Key", "pk_whatever")
	rec := httptest.NewRecorder()
	gw.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 when verification errors", rec.Code)
	}
	if rec.Header().Get("X-Backend-Hit") != "" {
		t.Fatal("unverified request must not reach the backend")
	}
}

func TestSkipRouteNeverCallsVerifier(t *testing.T) {
	verifier := &stubVerifier{err: errors.New("would reject")}
	gw, _ := newTestGateway(t, verifier)

	req := httptest.NewRequest("POST", "/api/keys", nil)
	req.Header.Set("X-API-Key", "pk_invalid_but_irrelevant")
	rec := httptest.NewRecorder()
	gw.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 on skip route", rec.Code)
	}
	if verifier.calls != 0 {
		t.Fatalf("skip route called the verifier %d times", verifier.calls)
	}
}

func TestKeySubpathsStillRequireAKey(t *testing.T) {
	verifier := &stubVerifier{}
	gw, _ := newTestGateway(t, verifier)

	// The open collection routes must not leak auth exemption onto deeper
	// key paths that happen to share the method.
	for _, method := range []string{"GET", "POST"} {
		rec := httptest.NewRecorder()
		gw.ServeHTTP(rec, httptest.NewRequest(method, "/api/keys/KEY_1", nil))

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s /api/keys/KEY_1 without a key: status = %d, want 401", method, rec.Code)
		}
		if rec.Header().Get("X-Backend-Hit") != "" {
			t.Fatalf("%s /api/keys/KEY_1 without a key reached the backend", method)
		}
	}
	if verifier.calls != 0 {
		t.Fatalf("missing key must not trigger verification, got %d calls", verifier.calls)
	}
}

func TestAPIKeyQueryParamFallback(t *testing.T) {
	verifier := &stubVerifier{}
	gw, _ := newTestGateway(t, verifier)

	rec := httptest.NewRecorder()
	gw.ServeHTTP(rec, httptest.NewRequest("GET", "/api/activity?apiKey=pk_valid", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 with query param key", rec.Code)
	}
	if verifier.calls != 1 {
		t.Fatalf("verifier calls = %d, want 1", verifier.calls)
	}
}

func TestCorrelationGeneratedAndPropagated(t *testing.T) {
	gw, _ := newTestGateway(t, &stubVerifier{})

	rec := httptest.NewRecorder()
	gw.ServeHTTP(rec, httptest.NewRequest("POST", "/api/keys", nil))

	generated := rec.Header().Get(correlation.Header)
	if generated == "" {
		t.Fatal("gateway must mint a correlation id when absent")
	}
	if rec.Header().Get("X-Seen-Correlation") != generated {
		t.Fatal("downstream request carried a different correlation id than the response")
	}
}

func TestCorrelationEchoedWhenPresent(t *testing.T) {
	gw, _ := newTestGateway(t, &stubVerifier{})

	req := httptest.NewRequest("POST", "/api/keys", nil)
	req.Header.Set(correlation.Header, "corr-supplied")
	rec := httptest.NewRecorder()
	gw.ServeHTTP(rec, req)

	if got := rec.Header().Get(correlation.Header); got != "corr-supplied" {
		t.Fatalf("response correlation = %q, want corr-supplied", got)
	}
	if got := rec.Header().Get("X-Seen-Correlation"); got != "corr-supplied" {
		t.Fatalf("downstream correlation = %q, want corr-supplied", got)
	}
}
