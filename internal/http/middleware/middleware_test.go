package middlewarex

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"aspataal/internal/domain/entity"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func ok(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }

func corsRecorder(allowOrigin string, credentials bool, method, origin string) *httptest.ResponseRecorder {
	h := CORS(allowOrigin, credentials)(http.HandlerFunc(ok))
	req := httptest.NewRequest(method, "/api/users", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestCORSAllowsSingleOrigin(t *testing.T) {
	w := corsRecorder("http://localhost:8080", false, http.MethodGet, "http://localhost:8080")
	require.Equal(t, "http://localhost:8080", w.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "Origin", w.Header().Get("Vary"))
}

func TestCORSAllowsFromCSVList(t *testing.T) {
	w := corsRecorder("http://192.168.0.251:8080, http://admin:8080", false, http.MethodGet, "http://admin:8080")
	require.Equal(t, "http://admin:8080", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSBlocksUnknownOrigin(t *testing.T) {
	w := corsRecorder("http://admin:8080", false, http.MethodGet, "http://evil.example")
	require.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, http.StatusOK, w.Code)
}

func TestCORSWildcardWithCredentialsEchoesOrigin(t *testing.T) {
	w := corsRecorder("*", true, http.MethodGet, "http://admin:8080")
	require.Equal(t, "http://admin:8080", w.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	w = corsRecorder("*", false, http.MethodGet, "http://admin:8080")
	require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSPreflight(t *testing.T) {
	w := corsRecorder("*", false, http.MethodOptions, "http://admin:8080")
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "DELETE")
}

func TestEntityCtx(t *testing.T) {
	reg, err := entity.Default()
	require.NoError(t, err)

	r := chi.NewRouter()
	r.With(EntityCtx(reg)).Get("/api/{entity}", func(w http.ResponseWriter, r *http.Request) {
		d, ok := Entity(r.Context())
		require.True(t, ok)
		_, _ = w.Write([]byte(d.Table))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/patient", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "patient", w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/wards", nil))
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Contains(t, w.Body.String(), `"error"`)
}

func TestMetricsLabelsByRoutePattern(t *testing.T) {
	m := NewMetrics()
	r := chi.NewRouter()
	r.Use(m.Instrument)
	r.Get("/api/{entity}/view/{recid}", ok)
	r.Handle("/metrics", m.Handler())

	for _, path := range []string{"/api/users/view/1", "/api/users/view/2"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	require.True(t, strings.Contains(body,
		`aspataal_http_requests_total{method="GET",route="/api/{entity}/view/{recid}",status="200"} 2`), body)
}
