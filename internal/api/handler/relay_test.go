package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/calen/phototagger/internal/relay"
)

func newRelayRouter(upstreamURL string, timeout time.Duration) *gin.Engine {
	gin.SetMode(gin.TestMode)
	forwarder := relay.New(&relay.Config{
		BaseURL: upstreamURL,
		APIKey:  "test-key",
		Timeout: timeout,
	})
	r := gin.New()
	r.POST("/api/generate-caption", NewRelayHandler(forwarder).Generate)
	return r
}

func postJSON(t *testing.T, router *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/generate-caption", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRelayPassesThroughSuccess(t *testing.T) {
	const upstreamBody = `{"choices":[{"message":{"content":"CAPTION: X | KEYWORDS: a"}}]}`

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("authorization header = %q, want bearer credential", auth)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(upstreamBody))
	}))
	defer upstream.Close()

	w := postJSON(t, newRelayRouter(upstream.URL, 15*time.Second), `{"model":"m","messages":[]}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if w.Body.String() != upstreamBody {
		t.Errorf("body = %q, want upstream body unchanged", w.Body.String())
	}
}

func TestRelayDelayedUpstreamErrorBecomes502(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"bad key"}}`))
	}))
	defer upstream.Close()

	w := postJSON(t, newRelayRouter(upstream.URL, 15*time.Second), `{"model":"m"}`)

	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", w.Code)
	}
	if !strings.Contains(w.Body.String(), "status 401") {
		t.Errorf("body = %q, want upstream status embedded", w.Body.String())
	}
}

func TestRelayTimeoutBecomes500(t *testing.T) {
	release := make(chan struct{})
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer upstream.Close()
	defer close(release)

	w := postJSON(t, newRelayRouter(upstream.URL, 200*time.Millisecond), `{"model":"m"}`)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if !strings.Contains(w.Body.String(), "timed out") {
		t.Errorf("body = %q, want a timeout-specific message", w.Body.String())
	}
}

func TestRelayRejectsMalformedBody(t *testing.T) {
	router := newRelayRouter("http://127.0.0.1:0", time.Second)

	for _, body := range []string{"", "{not json"} {
		w := postJSON(t, router, body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want 400", body, w.Code)
		}
	}
}
