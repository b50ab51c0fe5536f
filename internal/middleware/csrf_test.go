package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func csrfTestHandler(tokenOut *string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if tokenOut != nil {
			*tokenOut = CSRFTokenFromContext(r.Context())
		}
		w.WriteHeader(http.StatusOK)
	})
}

func postForm(target string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestCSRFMiddleware_Get_SetsCookieAndContextToken(t *testing.T) {
	var token string
	mw := NewCSRFMiddleware(CSRFConfig{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	mw(csrfTestHandler(&token)).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if token == "" {
		t.Fatal("CSRF token should be injected into the request context")
	}

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "csrf_token" {
			cookie = c
		}
	}
	if cookie == nil {
		t.Fatal("csrf_token cookie should be set on first GET")
	}
	if cookie.Value != token {
		t.Error("cookie token and context token should match")
	}
	if cookie.HttpOnly {
		t.Error("CSRF cookie must be readable by the form (not HttpOnly)")
	}
}

func TestCSRFMiddleware_Get_ExistingCookie_Reused(t *testing.T) {
	var token string
	mw := NewCSRFMiddleware(CSRFConfig{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "csrf_token", Value: "existing-token"})
	rec := httptest.NewRecorder()
	mw(csrfTestHandler(&token)).ServeHTTP(rec, req)

	if token != "existing-token" {
		t.Errorf("context token = %q, want the existing cookie value", token)
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == "csrf_token" {
			t.Error("an existing CSRF cookie must not be replaced")
		}
	}
}

func TestCSRFMiddleware_Post_MissingCookie_Forbidden(t *testing.T) {
	mw := NewCSRFMiddleware(CSRFConfig{})

	req := postForm("/reviews/v1/delete", url.Values{CSRFFieldName: {"some-token"}})
	rec := httptest.NewRecorder()
	mw(csrfTestHandler(nil)).ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestCSRFMiddleware_Post_MissingFormField_Forbidden(t *testing.T) {
	mw := NewCSRFMiddleware(CSRFConfig{})

	req := postForm("/reviews/v1/delete", url.Values{})
	req.AddCookie(&http.Cookie{Name: "csrf_token", Value: "cookie-token"})
	rec := httptest.NewRecorder()
	mw(csrfTestHandler(nil)).ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestCSRFMiddleware_Post_TokenMismatch_Forbidden(t *testing.T) {
	mw := NewCSRFMiddleware(CSRFConfig{})

	req := postForm("/reviews/v1/delete", url.Values{CSRFFieldName: {"wrong-token"}})
	req.AddCookie(&http.Cookie{Name: "csrf_token", Value: "cookie-token"})
	rec := httptest.NewRecorder()
	mw(csrfTestHandler(nil)).ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestCSRFMiddleware_Post_MatchingTokens_PassesThrough(t *testing.T) {
	var token string
	mw := NewCSRFMiddleware(CSRFConfig{})

	req := postForm("/reviews/v1/delete", url.Values{CSRFFieldName: {"matching-token"}})
	req.AddCookie(&http.Cookie{Name: "csrf_token", Value: "matching-token"})
	rec := httptest.NewRecorder()
	mw(csrfTestHandler(&token)).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if token != "matching-token" {
		t.Errorf("context token = %q, want matching-token", token)
	}
}
