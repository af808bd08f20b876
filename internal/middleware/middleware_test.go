package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	chiMid "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"acesoftware.in/marketing-web/internal/i18n"
	"acesoftware.in/marketing-web/internal/observability"
)

func TestRequestLoggerRecordsStatusAndRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	var sawLogger bool
	h := chiMid.RequestID(RequestLogger(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := RequestID(r.Context())
		require.True(t, ok)
		sawLogger = observability.FromContext(r.Context()) != nil
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("nope"))
	})))

	req := httptest.NewRequest(http.MethodGet, "/products/42", nil)
	req.Header.Set("HX-Request", "true")
	h.ServeHTTP(httptest.NewRecorder(), req)

	require.True(t, sawLogger)
	entries := logs.All()
	require.Len(t, entries, 1)
	e := entries[0]
	require.Equal(t, "request", e.Message)
	require.Equal(t, zapcore.WarnLevel, e.Level)
	fields := e.ContextMap()
	require.EqualValues(t, 404, fields["status"])
	require.EqualValues(t, 4, fields["bytes"])
	require.Equal(t, "/products/42", fields["path"])
	require.Equal(t, true, fields["htmx"])
	require.NotEmpty(t, fields["request_id"])
}

func TestResponseRecorderForwardsFlush(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := NewResponseRecorder(rec)
	var w http.ResponseWriter = rw
	f, ok := w.(http.Flusher)
	require.True(t, ok)
	f.Flush()
	require.True(t, rec.Flushed)
	require.Equal(t, http.StatusOK, rw.Status())
}

func TestHTMXMarksContext(t *testing.T) {
	var got bool
	h := HTMX(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = IsHTMX(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.True(t, got)
	require.Equal(t, "HX-Request", rec.Header().Get("Vary"))
}

func TestWriteError(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	WriteError(rec, req, http.StatusBadGateway, "upstream down")
	require.Equal(t, http.StatusBadGateway, rec.Code)
	require.JSONEq(t, `{"error":"upstream down"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	WriteError(rec, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusNotFound, "missing")
	require.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	require.Equal(t, "missing\n", rec.Body.String())
}

func newBundle(t *testing.T) *i18n.Bundle {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "en.json"), []byte(`{}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hi.json"), []byte(`{}`), 0o644))
	b, err := i18n.Load(dir, "en", []string{"en", "hi"})
	require.NoError(t, err)
	return b
}

func TestLocaleResolutionOrder(t *testing.T) {
	bundle := newBundle(t)
	var lang string
	h := Locale(bundle)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lang = Lang(r)
	}))

	// query wins and sets the cookie
	req := httptest.NewRequest(http.MethodGet, "/?hl=HI", nil)
	req.Header.Set("Accept-Language", "en")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, "hi", lang)
	require.Equal(t, "hi", rec.Header().Get("Content-Language"))
	require.Contains(t, rec.Header().Get("Set-Cookie"), "hl=hi")

	// cookie beats Accept-Language
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "hl", Value: "hi"})
	req.Header.Set("Accept-Language", "en")
	h.ServeHTTP(httptest.NewRecorder(), req)
	require.Equal(t, "hi", lang)

	// unsupported query and cookie fall through to the header
	req = httptest.NewRequest(http.MethodGet, "/?hl=fr", nil)
	req.AddCookie(&http.Cookie{Name: "hl", Value: "de"})
	req.Header.Set("Accept-Language", "hi-IN,en;q=0.5")
	h.ServeHTTP(httptest.NewRecorder(), req)
	require.Equal(t, "hi", lang)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)
	require.Equal(t, "en", lang)
}

func TestLangDefaultsWithoutMiddleware(t *testing.T) {
	require.Equal(t, "en", Lang(httptest.NewRequest(http.MethodGet, "/", nil)))
}

func TestAssetsWithCache(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "css"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "css", "site.css"), []byte("body{}"), 0o644))

	h := AssetsWithCache("/assets", dir, false)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/assets/css/site.css", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "body{}", rec.Body.String())
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)
	require.Contains(t, rec.Header().Get("Cache-Control"), "max-age=604800")

	req := httptest.NewRequest(http.MethodGet, "/assets/css/site.css", nil)
	req.Header.Set("If-None-Match", etag)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotModified, rec.Code)

	rec = httptest.NewRecorder()
	AssetsWithCache("/assets", dir, true).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/assets/css/site.css", nil))
	require.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
}
