package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"aspataal/internal/config"
	"aspataal/internal/domain/entity"
	"aspataal/internal/services/components"
	"aspataal/internal/services/data"
	"aspataal/internal/services/records"
	"aspataal/internal/store/memory"
	"aspataal/internal/store/repositories"

	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T, st *memory.Store) http.Handler {
	t.Helper()
	reg, err := entity.Default()
	require.NoError(t, err)
	cfg := config.Cfg{App: config.AppCfg{Name: "test"}, CORS: config.CORSCfg{AllowOrigin: "*"}}
	return NewRouter(RouterDependencies{
		Config:           cfg,
		Registry:         reg,
		DataService:      data.NewService(st, data.Options{DefaultLimit: 20, MaxLimit: 100, DefaultDesc: true}),
		RecordService:    records.NewService(st),
		ComponentService: components.NewService(reg, st, nil, nil, 0),
	})
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func seeded() *memory.Store {
	st := memory.New()
	st.Seed("patient",
		repositories.Record{"patient_id": int64(1), "first_name": "Asha", "status": "New", "amount": 100.0},
		repositories.Record{"patient_id": int64(2), "first_name": "Ravi", "status": "In Progress", "amount": 250.0},
		repositories.Record{"patient_id": int64(3), "first_name": "Meera", "status": "New", "amount": 75.5},
	)
	return st
}

func TestListRoutes(t *testing.T) {
	h := newTestRouter(t, seeded())

	for _, path := range []string{"/api/patient", "/api/patient/", "/api/patient/index", "/api/patient/revenue"} {
		w := do(t, h, http.MethodGet, path, "")
		require.Equal(t, http.StatusOK, w.Code, path)

		var page data.Page
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page), path)
		require.EqualValues(t, 3, page.Total, path)
		require.Equal(t, 20, page.Limit, path)
	}

	w := do(t, h, http.MethodGet, "/api/patient/index/status/New?orderby=patient_id&ordertype=asc", "")
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Total   int64            `json:"total"`
		Records []map[string]any `json:"records"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	require.EqualValues(t, 2, page.Total)
	require.EqualValues(t, 1, page.Records[0]["patient_id"])
}

func TestErrorStatuses(t *testing.T) {
	h := newTestRouter(t, seeded())

	cases := []struct {
		method, path, body string
		status             int
	}{
		{http.MethodGet, "/api/wards", "", http.StatusNotFound},
		{http.MethodGet, "/api/patient/nosuchlisting", "", http.StatusNotFound},
		{http.MethodGet, "/api/patient/index/bogus/1", "", http.StatusBadRequest},
		{http.MethodGet, "/api/patient/index/amount/lots", "", http.StatusBadRequest},
		{http.MethodGet, "/api/patient/view/99", "", http.StatusNotFound},
		{http.MethodGet, "/api/patient/view/abc", "", http.StatusBadRequest},
		{http.MethodPost, "/api/patient/add", "{not json", http.StatusBadRequest},
		{http.MethodPost, "/api/revenu_list/add", `{"amount": 1}`, http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/components_data/options/unknown", "", http.StatusNotFound},
		{http.MethodGet, "/api/components_data/dashboard/home_data_component", "", http.StatusNotFound},
	}
	for _, tc := range cases {
		w := do(t, h, tc.method, tc.path, tc.body)
		require.Equal(t, tc.status, w.Code, "%s %s: %s", tc.method, tc.path, w.Body.String())

		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), tc.path)
		require.NotEmpty(t, body["error"], tc.path)
	}
}

func TestValidationErrorCarriesFields(t *testing.T) {
	h := newTestRouter(t, memory.New())
	w := do(t, h, http.MethodPost, "/api/users/add", `{"email": "nope"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Contains(t, body.Fields, "email")
	require.Contains(t, body.Fields, "first_name")
}

func TestHealthAndMetrics(t *testing.T) {
	h := newTestRouter(t, memory.New())

	w := do(t, h, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"status":"ok"`)

	w = do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "aspataal_http_requests_total")
}
