package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siteiq/siteiq/internal/model"
	"github.com/siteiq/siteiq/internal/store"
)

func newTestEnv(t *testing.T) *pipelineEnv {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"), 30*24*time.Hour)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.Migrate(context.Background()))
	return &pipelineEnv{Store: st}
}

func TestRouter_Health(t *testing.T) {
	r := newRouter(newTestEnv(t))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestRouter_Analyze_InvalidBody(t *testing.T) {
	r := newRouter(newTestEnv(t))

	req := httptest.NewRequest(http.MethodPost, "/v1/analyze", bytes.NewReader([]byte("not json")))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid request body")
}

func TestRouter_Analyze_EmptyQuery(t *testing.T) {
	r := newRouter(newTestEnv(t))

	req := httptest.NewRequest(http.MethodPost, "/v1/analyze", bytes.NewReader([]byte("{}")))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "query is required")
}

func TestRouter_ListRuns(t *testing.T) {
	env := newTestEnv(t)
	run, err := env.Store.CreateRun(context.Background(), "downtown Austin, TX")
	require.NoError(t, err)

	r := newRouter(env)
	req := httptest.NewRequest(http.MethodGet, "/v1/runs", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Runs []model.Run `json:"runs"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Len(t, body.Runs, 1)
	assert.Equal(t, run.ID, body.Runs[0].ID)
	assert.Equal(t, "downtown Austin, TX", body.Runs[0].Query)
}

func TestRouter_ListRuns_StatusFilter(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	run, err := env.Store.CreateRun(ctx, "Austin, TX")
	require.NoError(t, err)
	require.NoError(t, env.Store.UpdateRunStatus(ctx, run.ID, model.RunStatusComplete))
	_, err = env.Store.CreateRun(ctx, "Portland, OR")
	require.NoError(t, err)

	r := newRouter(env)
	req := httptest.NewRequest(http.MethodGet, "/v1/runs?status=complete", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Runs []model.Run `json:"runs"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Len(t, body.Runs, 1)
	assert.Equal(t, run.ID, body.Runs[0].ID)
}

func TestRouter_GetRun(t *testing.T) {
	env := newTestEnv(t)
	run, err := env.Store.CreateRun(context.Background(), "Boise, ID")
	require.NoError(t, err)

	r := newRouter(env)
	req := httptest.NewRequest(http.MethodGet, "/v1/runs/"+run.ID, nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var got model.Run
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, model.RunStatusQueued, got.Status)
}

func TestRouter_GetRun_NotFound(t *testing.T) {
	r := newRouter(newTestEnv(t))

	req := httptest.NewRequest(http.MethodGet, "/v1/runs/does-not-exist", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "run not found")
}
