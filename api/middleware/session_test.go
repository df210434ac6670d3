package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureSession(got *string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got = SessionIDFromContext(r.Context())
	})
}

func TestCartSessionIssuesNewID(t *testing.T) {
	var got string
	handler := CartSession(SessionPolicy{CookieName: "sf_cart", MaxAge: time.Hour}, nil)(captureSession(&got))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))

	require.NotEmpty(t, got)
	assert.Equal(t, got, rec.Header().Get(sessionHeader))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "sf_cart", cookies[0].Name)
	assert.Equal(t, got, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, 3600, cookies[0].MaxAge)
}

func TestCartSessionPrefersHeaderOverCookie(t *testing.T) {
	var got string
	handler := CartSession(SessionPolicy{CookieName: "sf_cart"}, nil)(captureSession(&got))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set(sessionHeader, "header-session-1")
	req.AddCookie(&http.Cookie{Name: "sf_cart", Value: "cookie-session-1"})
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "header-session-1", got)
}

func TestCartSessionFallsBackToCookie(t *testing.T) {
	var got string
	handler := CartSession(SessionPolicy{CookieName: "sf_cart"}, nil)(captureSession(&got))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.AddCookie(&http.Cookie{Name: "sf_cart", Value: "cookie-session-1"})
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "cookie-session-1", got)
}

func TestCartSessionReplacesMalformedID(t *testing.T) {
	var got string
	handler := CartSession(SessionPolicy{}, nil)(captureSession(&got))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set(sessionHeader, "bad id;")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	require.NotEmpty(t, got)
	assert.NotEqual(t, "bad id;", got)
}

func TestRequestIDEchoesOrGenerates(t *testing.T) {
	handler := RequestID(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "req-123")
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "req-123", rec.Header().Get(requestIDHeader))

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
}

func TestRecovererWritesInternalError(t *testing.T) {
	handler := Recoverer(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "INTERNAL_ERROR")
}
