package server

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
)

func TestHTTPServer_RoutesThroughMiddlewares(t *testing.T) {
	t.Parallel()

	var seen []string
	tag := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = append(seen, r.URL.Path)
			next.ServeHTTP(w, r)
		})
	}
	s := NewHTTPServer([]Controller{NewHealthController()}, mux.MiddlewareFunc(tag))
	h := s.Router()

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"status":"ok"}`, rr.Body.String())

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/nope", nil))
	require.Equal(t, http.StatusNotFound, rr.Code)
	require.Equal(t, []string{"/healthz", "/nope"}, seen)
}

func TestHTTPServer_GzipsWhenAccepted(t *testing.T) {
	t.Parallel()

	big := strings.Repeat("utilization ", 200)
	s := NewHTTPServer([]Controller{controllerFunc(func(r *mux.Router) {
		r.HandleFunc("/big", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, big)
		})
	})})
	srv := s.Server("localhost:0")
	require.Equal(t, "localhost:0", srv.Addr)

	req := httptest.NewRequest(http.MethodGet, "/big", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)

	require.Equal(t, "gzip", rr.Header().Get("Content-Encoding"))
	zr, err := gzip.NewReader(rr.Body)
	require.NoError(t, err)
	body, err := io.ReadAll(zr)
	require.NoError(t, err)
	require.Equal(t, big, string(body))
}

type controllerFunc func(r *mux.Router)

func (f controllerFunc) Register(r *mux.Router) { f(r) }

func (f controllerFunc) Key() string { return "test" }
