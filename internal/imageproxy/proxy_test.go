package imageproxy

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// fakeSSRFGuard はテスト用のSSRFGuardService実装。
// 実際のガードはhttptestのループバックアドレスをブロックしてしまうため、
// 検証結果だけを差し替えられるようにする。
type fakeSSRFGuard struct {
	validateErr error
}

func (g *fakeSSRFGuard) NewSafeClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

func (g *fakeSSRFGuard) ValidateURL(rawURL string) error {
	return g.validateErr
}

func newTestHandler(maxSize int64, guard *fakeSSRFGuard) *Handler {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return NewHandler(guard, maxSize, logger)
}

func proxyRequest(imageURL string) *http.Request {
	return httptest.NewRequest(http.MethodGet, "/img?url="+imageURL, nil)
}

func TestHandler_MissingURL_NotFound(t *testing.T) {
	handler := newTestHandler(1024, &fakeSSRFGuard{})

	req := httptest.NewRequest(http.MethodGet, "/img", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestHandler_BlockedURL_NotFound(t *testing.T) {
	handler := newTestHandler(1024, &fakeSSRFGuard{validateErr: errors.New("blocked host")})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, proxyRequest("http://localhost/secret.png"))

	// 失敗理由は404に畳み込み、外部へ漏らさない
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestHandler_ValidImage_ServedWithHeaders(t *testing.T) {
	imageBytes := []byte("fake-png-bytes")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(imageBytes)
	}))
	defer server.Close()

	handler := newTestHandler(1024, &fakeSSRFGuard{})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, proxyRequest(server.URL+"/photo.png"))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := rec.Header().Get("Content-Type"); got != "image/png" {
		t.Errorf("Content-Type = %q, want image/png", got)
	}
	if got := rec.Header().Get("Cache-Control"); got != "public, max-age=3600" {
		t.Errorf("Cache-Control = %q", got)
	}
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
	if rec.Body.String() != string(imageBytes) {
		t.Error("body should be the fetched image bytes")
	}
}

func TestHandler_NonImageContentType_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html></html>"))
	}))
	defer server.Close()

	handler := newTestHandler(1024, &fakeSSRFGuard{})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, proxyRequest(server.URL+"/page"))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestHandler_SVG_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/svg+xml")
		_, _ = w.Write([]byte("<svg onload=\"alert(1)\"></svg>"))
	}))
	defer server.Close()

	handler := newTestHandler(1024, &fakeSSRFGuard{})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, proxyRequest(server.URL+"/image.svg"))

	// SVGはスクリプトを含み得るため配信しない
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestHandler_OversizedImage_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte(strings.Repeat("x", 100)))
	}))
	defer server.Close()

	handler := newTestHandler(50, &fakeSSRFGuard{})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, proxyRequest(server.URL+"/big.jpg"))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestHandler_UpstreamError_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	handler := newTestHandler(1024, &fakeSSRFGuard{})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, proxyRequest(server.URL+"/photo.png"))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestHandler_ContentTypeWithCharset_Accepted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "IMAGE/PNG; charset=binary")
		_, _ = w.Write([]byte("png"))
	}))
	defer server.Close()

	handler := newTestHandler(1024, &fakeSSRFGuard{})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, proxyRequest(server.URL+"/photo.png"))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := rec.Header().Get("Content-Type"); got != "image/png" {
		t.Errorf("Content-Type = %q, want normalized image/png", got)
	}
}
