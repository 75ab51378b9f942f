package fingerprint

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func newRequest() *http.Request {
	req := httptest.NewRequest("POST", "/process", nil)
	req.Header.Set("User-Agent", "test-agent/1.0")
	req.Header.Set("Accept-Language", "en-US")
	req.Header.Set("X-Forwarded-For", "203.0.113.5")
	return req
}

func TestOwnerIsDeterministicForIdenticalRequests(t *testing.T) {
	a := Owner(newRequest())
	b := Owner(newRequest())
	if a != b {
		t.Errorf("expected identical requests to fingerprint to the same owner, got %q and %q", a, b)
	}
	if len(a) != len("anon_")+16 {
		t.Errorf("expected owner id of length %d, got %d (%q)", len("anon_")+16, len(a), a)
	}
}

func TestOwnerDiffersByIP(t *testing.T) {
	req1 := httptest.NewRequest("POST", "/process", nil)
	req1.Header.Set("X-Forwarded-For", "203.0.113.5")
	req2 := httptest.NewRequest("POST", "/process", nil)
	req2.Header.Set("X-Forwarded-For", "203.0.113.9")

	if Owner(req1) == Owner(req2) {
		t.Error("expected different client IPs to fingerprint to different owners")
	}
}

func TestClientIPPrecedence(t *testing.T) {
	req := httptest.NewRequest("POST", "/process", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1")
	req.Header.Set("X-Real-IP", "198.51.100.7")

	if got := clientIP(req); got != "203.0.113.5" {
		t.Errorf("expected X-Forwarded-For's first hop to take precedence, got %q", got)
	}

	req2 := httptest.NewRequest("POST", "/process", nil)
	req2.Header.Set("X-Real-IP", "198.51.100.7")
	if got := clientIP(req2); got != "198.51.100.7" {
		t.Errorf("expected X-Real-IP to be used when no X-Forwarded-For is set, got %q", got)
	}

	req3 := httptest.NewRequest("POST", "/process", nil)
	if got := clientIP(req3); got != "unknown" {
		t.Errorf("expected \"unknown\" when no IP headers are present, got %q", got)
	}
}
