package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"powersimdata/internal/api/models"
	"powersimdata/internal/data"
	"powersimdata/internal/grid"
	gridfixtures "powersimdata/internal/grid/testfixtures"
	"powersimdata/internal/scenario"
	"powersimdata/internal/scenario/testfixtures"
)

type fakeSource struct {
	mock *scenario.Mock
}

func (f *fakeSource) List(context.Context) (*data.ScenarioList, error) {
	return &data.ScenarioList{Records: []data.ScenarioRecord{f.mock.Rec}}, nil
}

func (f *fakeSource) Open(_ context.Context, key string) (scenario.Scenario, error) {
	if key != f.mock.Rec.ID && key != f.mock.Rec.FullName() {
		return nil, errors.Wrap(scenario.ErrNotFound, key)
	}
	return f.mock, nil
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()
	require.NoError(t, gridfixtures.WriteTAMU(dir))
	grids, err := grid.NewCache(4)
	require.NoError(t, err)
	mock, err := testfixtures.Mock()
	require.NoError(t, err)
	return NewRouter(Options{
		Grids:       grids,
		GridDataDir: dir,
		Scenarios:   &fakeSource{mock: mock},
		Infos:       data.NewMemoryCache(time.Minute),
	})
}

func get(t *testing.T, r http.Handler, url string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp models.ErrorResponse
	decode(t, w, &resp)
	return resp.Error.Code
}

func TestHealthAndMetrics(t *testing.T) {
	r := newTestRouter(t)

	w := get(t, r, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = get(t, r, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestRequestIDIsReused(t *testing.T) {
	r := newTestRouter(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc")
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc", w.Header().Get("X-Request-ID"))
}

func TestCORSPreflight(t *testing.T) {
	r := newTestRouter(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/scenarios", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	r.ServeHTTP(w, req)
	assert.Less(t, w.Code, 300)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestGridField(t *testing.T) {
	r := newTestRouter(t)

	w := get(t, r, "/api/v1/grids/Western/fields/plant")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var table models.TableResponse
	decode(t, w, &table)
	assert.Equal(t, "plant_id", table.Index)
	assert.Len(t, table.Rows, 3)

	w = get(t, r, "/api/v1/grids/Western/fields/plant?format=csv")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "plant_id")
}

func TestGridErrors(t *testing.T) {
	r := newTestRouter(t)
	tests := map[string]struct {
		url    string
		status int
		code   string
	}{
		"bad interconnect": {url: "/api/v1/grids/Quebec/fields/plant", status: http.StatusBadRequest, code: "INVALID_INTERCONNECT"},
		"unknown field":    {url: "/api/v1/grids/Western/fields/turbine", status: http.StatusNotFound, code: "UNKNOWN_FIELD"},
		"unknown xform":    {url: "/api/v1/grids/Western/transforms/plant", status: http.StatusNotFound, code: "UNKNOWN_FIELD"},
		"bad source":       {url: "/api/v1/grids/Western/fields/plant?source=pypsa", status: http.StatusBadRequest, code: "INVALID_SOURCE"},
		"engine override":  {url: "/api/v1/grids/Western?engine=REISE.jl", status: http.StatusBadRequest, code: "INVALID_SOURCE"},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			w := get(t, r, tc.url)
			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, tc.code, errorCode(t, w))
		})
	}
}

func TestGridIgnoresCaseFileSource(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, gridfixtures.WriteTAMU(dir))
	g, err := grid.New(grid.Options{Interconnect: []string{"Western"}, DataDir: dir})
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "case.mat")
	require.NoError(t, grid.WriteREISE(g, path))

	r := newTestRouter(t)
	for _, u := range []string{
		"/api/v1/grids/Western/fields/bus?source=" + url.QueryEscape(path),
		"/api/v1/grids/Western/transforms/zone2id?source=" + url.QueryEscape(path) + "&engine=REISE",
	} {
		w := get(t, r, u)
		assert.Equal(t, http.StatusBadRequest, w.Code, u)
		assert.Equal(t, "INVALID_SOURCE", errorCode(t, w))
		assert.NotContains(t, w.Body.String(), "rows")
	}
}

func TestGridTransforms(t *testing.T) {
	r := newTestRouter(t)

	w := get(t, r, "/api/v1/grids/Western/transforms/zone2id")
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Name  string           `json:"name"`
		Value map[string]int64 `json:"value"`
	}
	decode(t, w, &resp)
	assert.Equal(t, map[string]int64{"Washington": 201, "Oregon": 202}, resp.Value)

	w = get(t, r, "/api/v1/grids/Western")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"plant":3`)
}

func TestListScenarios(t *testing.T) {
	r := newTestRouter(t)

	w := get(t, r, "/api/v1/scenarios")
	require.Equal(t, http.StatusOK, w.Code)
	var resp models.ScenarioListResponse
	decode(t, w, &resp)
	require.Len(t, resp.Scenarios, 1)
	assert.Equal(t, "1", resp.Scenarios[0].ID)

	w = get(t, r, "/api/v1/scenarios?state=create")
	decode(t, w, &resp)
	assert.Empty(t, resp.Scenarios)
}

func TestGetInput(t *testing.T) {
	r := newTestRouter(t)

	w := get(t, r, "/api/v1/scenarios/1/input/solar?end=2016-01-01+02:00:00")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var p models.ProfileResponse
	decode(t, w, &p)
	assert.Equal(t, []int64{101}, p.Columns)
	assert.Equal(t, [][]float64{{0}, {2}, {4}}, p.Values)

	w = get(t, r, "/api/v1/scenarios/1/input/ct")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_FIELD", errorCode(t, w))

	w = get(t, r, "/api/v1/scenarios/1/input/demand?columns=2&format=csv")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))

	w = get(t, r, "/api/v1/scenarios/1/input/demand?columns=x")
	assert.Equal(t, "INVALID_COLUMNS", errorCode(t, w))
}

func TestGetInfo(t *testing.T) {
	r := newTestRouter(t)

	w := get(t, r, "/api/v1/scenarios/1/info?area=zone1")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp models.InfoResponse
	decode(t, w, &resp)
	assert.Equal(t, 4800.0, resp.Demand)
	require.Len(t, resp.Resources, 4)
	solar := resp.Resources[0]
	assert.Equal(t, "solar", solar.Type)
	require.NotNil(t, solar.Curtailment)
	assert.Equal(t, 0.5, *solar.Curtailment)
	require.NotNil(t, solar.CapacityFactor)
	assert.Equal(t, 0.24, *solar.CapacityFactor)
	assert.Nil(t, resp.Resources[1].Curtailment, "coal has no profile")

	w = get(t, r, "/api/v1/scenarios/1/info?resource=wind")
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &resp)
	assert.Equal(t, "all", resp.Area)
	require.Len(t, resp.Resources, 1)
	assert.Equal(t, 0.48, *resp.Resources[0].NoCongestCapacityFactor)
}

func TestInfoErrors(t *testing.T) {
	r := newTestRouter(t)
	tests := map[string]struct {
		url    string
		status int
		code   string
	}{
		"missing scenario": {url: "/api/v1/scenarios/9/info", status: http.StatusNotFound, code: "SCENARIO_NOT_FOUND"},
		"bad area":         {url: "/api/v1/scenarios/1/info?area=Quebec", status: http.StatusBadRequest, code: "INVALID_AREA"},
		"bad date":         {url: "/api/v1/scenarios/1/info?start=yesterday", status: http.StatusBadRequest, code: "INVALID_DATE"},
		"reversed window":  {url: "/api/v1/scenarios/1/rank?start=2016-01-02&end=2016-01-01", status: http.StatusBadRequest, code: "INVALID_DATE"},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			w := get(t, r, tc.url)
			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, tc.code, errorCode(t, w))
		})
	}
}

func TestRank(t *testing.T) {
	r := newTestRouter(t)

	w := get(t, r, "/api/v1/scenarios/test_mock/rank?area=zone1")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp models.RankResponse
	decode(t, w, &resp)
	require.Len(t, resp.Rankings, 4)
	assert.Equal(t, 1, resp.Rankings[0].Rank)
	assert.Equal(t, "dfo", resp.Rankings[0].Type)
	assert.Equal(t, "solar", resp.Rankings[3].Type)
}
