package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func corsTestHandler(t *testing.T) http.Handler {
	t.Helper()
	return CORS()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestCORS_AllowsConfiguredOrigin(t *testing.T) {
	t.Setenv("WEB_ALLOWED_ORIGINS", "https://rollcall.example.com, https://other.example.com")

	req := httptest.NewRequest("GET", "/api/v1/stats", nil)
	req.Header.Set("Origin", "https://rollcall.example.com")
	recorder := httptest.NewRecorder()

	corsTestHandler(t).ServeHTTP(recorder, req)

	if got := recorder.Header().Get("Access-Control-Allow-Origin"); got != "https://rollcall.example.com" {
		t.Errorf("expected origin echoed back, got '%s'", got)
	}
	if recorder.Header().Get("Vary") != "Origin" {
		t.Error("expected Vary: Origin for whitelisted origin")
	}
}

func TestCORS_RejectsUnknownOrigin(t *testing.T) {
	t.Setenv("WEB_ALLOWED_ORIGINS", "https://rollcall.example.com")

	req := httptest.NewRequest("GET", "/api/v1/stats", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	recorder := httptest.NewRecorder()

	corsTestHandler(t).ServeHTTP(recorder, req)

	if got := recorder.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("expected no allow-origin header, got '%s'", got)
	}
	if recorder.Code != http.StatusOK {
		t.Errorf("request itself should still pass through, got status %d", recorder.Code)
	}
}

func TestCORS_AlwaysAllowsLocalhost(t *testing.T) {
	origins := []string{
		"http://localhost",
		"http://localhost:3000",
		"https://localhost:8443",
	}

	for _, origin := range origins {
		t.Run(origin, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/v1/stats", nil)
			req.Header.Set("Origin", origin)
			recorder := httptest.NewRecorder()

			corsTestHandler(t).ServeHTTP(recorder, req)

			if got := recorder.Header().Get("Access-Control-Allow-Origin"); got != origin {
				t.Errorf("expected localhost origin allowed, got '%s'", got)
			}
		})
	}
}

func TestCORS_RejectsLocalhostLookalike(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/v1/stats", nil)
	req.Header.Set("Origin", "http://localhost.evil.example.com")
	recorder := httptest.NewRecorder()

	corsTestHandler(t).ServeHTTP(recorder, req)

	if got := recorder.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("expected lookalike origin rejected, got '%s'", got)
	}
}

func TestCORS_PreflightShortCircuits(t *testing.T) {
	handlerCalled := false
	h := CORS()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
	}))

	req := httptest.NewRequest("OPTIONS", "/api/v1/recognize", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	recorder := httptest.NewRecorder()

	h.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusNoContent {
		t.Errorf("expected status %d for preflight, got %d", http.StatusNoContent, recorder.Code)
	}
	if handlerCalled {
		t.Error("preflight request should not reach the handler")
	}
	if recorder.Header().Get("Access-Control-Allow-Methods") == "" {
		t.Error("expected allow-methods header on preflight response")
	}
}

func TestSecurityHeaders(t *testing.T) {
	h := SecurityHeaders()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/api/v1/health", nil)
	recorder := httptest.NewRecorder()

	h.ServeHTTP(recorder, req)

	if got := recorder.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("expected nosniff, got '%s'", got)
	}
	if got := recorder.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("expected DENY, got '%s'", got)
	}
}
