package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spencer-p/xbtdash/pkg/cache"
	"github.com/spencer-p/xbtdash/pkg/data"
	"github.com/spencer-p/xbtdash/pkg/instruments"
)

// linearCast cools by half a degree per meter on a half meter grid, down to
// 100m. Every value is exact in binary.
func linearCast() map[string]any {
	temps := make([]float64, 200)
	for i := range temps {
		temps[i] = 30 - 0.25*float64(i)
	}
	return map[string]any{
		"temperatures": temps,
		"coefficients": map[string]float64{"a": 1, "b": 0},
		"frequency":    2,
	}
}

func newTestServer(t *testing.T) (*mux.Router, *cache.Timed) {
	t.Helper()
	r := mux.NewRouter()
	c := Register(r, data.NewMemoryStore(), Options{})
	return r, c
}

func do(t *testing.T, h http.Handler, method, url string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, url, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func createCast(t *testing.T, h http.Handler, body any) castSummary {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/api/v1/casts", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var summary castSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, "/api/v1/casts/"+summary.ID, rec.Header().Get("Location"))
	return summary
}

func TestCreateCastWithModel(t *testing.T) {
	r, _ := newTestServer(t)
	summary := createCast(t, r, linearCast())

	_, err := uuid.Parse(summary.ID)
	assert.NoError(t, err)
	assert.Equal(t, "", summary.Probe)
	assert.Equal(t, 200, summary.Samples)
	assert.Equal(t, 100.0, summary.FinalDepth)
	assert.Equal(t, 100, summary.TailDepth)
	assert.Empty(t, summary.InflectionPoints)
}

func TestCreateCastWithCodes(t *testing.T) {
	r, _ := newTestServer(t)
	body := map[string]any{
		"temperatures":  []float64{28, 27.5, 27, 25, 20, 15, 13, 12.5},
		"probe_type":    int(instruments.SippicanT7New),
		"recorder_type": int(instruments.SippicanMK21),
	}
	summary := createCast(t, r, body)

	assert.Equal(t, "Sippican T-7 (Hanawa 1995)", summary.Probe)
	assert.Equal(t, 6.691, summary.Coefficients.A)
	assert.Equal(t, -2.25, summary.Coefficients.B)
	assert.Equal(t, 10.0, summary.Frequency)
	assert.Equal(t, 8, summary.Samples)
}

func TestCreateCastErrors(t *testing.T) {
	table := []struct {
		name string
		body any
	}{
		{"unknown probe", map[string]any{"temperatures": []float64{1, 2}, "probe_type": 999, "recorder_type": 6}},
		{"unknown recorder", map[string]any{"temperatures": []float64{1, 2}, "probe_type": 42, "recorder_type": 99}},
		{"no model", map[string]any{"temperatures": []float64{1, 2}}},
		{"no samples", map[string]any{"probe_type": 42, "recorder_type": 6}},
		{"zero frequency", map[string]any{"temperatures": []float64{1, 2}, "coefficients": map[string]float64{"a": 1}}},
		{"not json", "temperatures"},
	}

	for _, tc := range table {
		t.Run(tc.name, func(t *testing.T) {
			r, _ := newTestServer(t)
			rec := do(t, r, http.MethodPost, "/api/v1/casts", tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func TestGetCast(t *testing.T) {
	r, c := newTestServer(t)
	created := createCast(t, r, linearCast())

	rec := do(t, r, http.MethodGet, "/api/v1/casts/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got castSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, created, got)

	// The second request is served from the cache.
	assert.Equal(t, 1, c.Len())
	again := do(t, r, http.MethodGet, "/api/v1/casts/"+created.ID, nil)
	require.Equal(t, http.StatusOK, again.Code)
	assert.Equal(t, rec.Body.String(), again.Body.String())
}

func TestGetCastNotFound(t *testing.T) {
	r, c := newTestServer(t)
	for _, path := range []string{
		"/api/v1/casts/" + uuid.NewString(),
		"/api/v1/casts/" + uuid.NewString() + "/profile",
		"/api/v1/casts/" + uuid.NewString() + "/inflections",
	} {
		rec := do(t, r, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
	assert.Equal(t, 0, c.Len(), "errors should not be cached")
}

func TestGetProfile(t *testing.T) {
	r, _ := newTestServer(t)
	id := createCast(t, r, linearCast()).ID

	table := []struct {
		resolution string
		points     int
		temps      int
		firstDepth float64
	}{
		{"raw", 200, 0, 0.5},
		{"1", 100, 0, 1},
		{"", 100, 0, 1},
		{"2", 50, 0, 2},
		{"smoothed", 0, 197, 0},
	}

	for _, tc := range table {
		t.Run("resolution="+tc.resolution, func(t *testing.T) {
			rec := do(t, r, http.MethodGet, "/api/v1/casts/"+id+"/profile?resolution="+tc.resolution, nil)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var got profileResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			if tc.resolution == "smoothed" {
				require.NotNil(t, got.Temperatures)
				assert.Nil(t, got.Points)
				assert.Len(t, *got.Temperatures, tc.temps)
				return
			}
			require.NotNil(t, got.Points)
			assert.Nil(t, got.Temperatures)
			assert.Len(t, *got.Points, tc.points)
			assert.Equal(t, tc.firstDepth, (*got.Points)[0].Depth)
		})
	}

	rec := do(t, r, http.MethodGet, "/api/v1/casts/"+id+"/profile?resolution=3", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetProfileShallowCast(t *testing.T) {
	r, _ := newTestServer(t)
	// Samples at 0.25m and 0.5m never reach the first whole meter.
	id := createCast(t, r, map[string]any{
		"temperatures": []float64{20, 19.5},
		"coefficients": map[string]float64{"a": 1, "b": 0},
		"frequency":    4,
	}).ID

	for _, resolution := range []string{"1", "2"} {
		rec := do(t, r, http.MethodGet, "/api/v1/casts/"+id+"/profile?resolution="+resolution, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Contains(t, rec.Body.String(), `"points":[]`)
	}
}

func TestCacheIgnoresUnreadParameters(t *testing.T) {
	r, c := newTestServer(t)
	id := createCast(t, r, linearCast()).ID

	for i := 0; i < 5; i++ {
		rec := do(t, r, http.MethodGet, fmt.Sprintf("/api/v1/probes?x=%d", i), nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Equal(t, 1, c.Len())

	for _, query := range []string{
		"?method=envelope",
		"?method=envelope&x=1",
		"?x=2&method=envelope",
	} {
		rec := do(t, r, http.MethodGet, "/api/v1/casts/"+id+"/inflections"+query, nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Equal(t, 2, c.Len())

	rec := do(t, r, http.MethodGet, "/api/v1/casts/"+id+"/inflections?method=acceleration&x=3", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, c.Len())
}

func TestGetInflections(t *testing.T) {
	r, _ := newTestServer(t)
	id := createCast(t, r, linearCast()).ID

	for _, method := range []string{"acceleration", "envelope"} {
		rec := do(t, r, http.MethodGet, "/api/v1/casts/"+id+"/inflections?method="+method, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var got inflectionResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, method, got.Method)
		assert.LessOrEqual(t, len(got.Points), 100)
	}

	rec := do(t, r, http.MethodGet, "/api/v1/casts/"+id+"/inflections?method=guess", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetTemperature(t *testing.T) {
	r, _ := newTestServer(t)
	id := createCast(t, r, linearCast()).ID

	rec := do(t, r, http.MethodGet, "/api/v1/casts/"+id+"/temperature?depth=50", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var got temperatureResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 50, got.Depth)
	assert.Equal(t, 5.0, got.Temperature)

	rec = do(t, r, http.MethodGet, "/api/v1/casts/"+id+"/temperature?depth=500", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, r, http.MethodGet, "/api/v1/casts/"+id+"/temperature?depth=deep", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetProbes(t *testing.T) {
	r, _ := newTestServer(t)
	rec := do(t, r, http.MethodGet, "/api/v1/probes", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got []instruments.ProbeInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, instruments.Probes(), got)
}

func TestMethodNotAllowed(t *testing.T) {
	r, _ := newTestServer(t)
	rec := do(t, r, http.MethodDelete, "/api/v1/casts", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.False(t, strings.HasPrefix(rec.Body.String(), "{"))
}
