package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tailored-agentic-units/flowgraph/engine"
	"github.com/tailored-agentic-units/flowgraph/graph"
	"github.com/tailored-agentic-units/flowgraph/observability"
	"github.com/tailored-agentic-units/flowgraph/review"
	"github.com/tailored-agentic-units/flowgraph/server"
	"github.com/tailored-agentic-units/flowgraph/state"
	"github.com/tailored-agentic-units/flowgraph/store"
	"github.com/tailored-agentic-units/flowgraph/tools"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fixture struct {
	handler http.Handler
	store   *store.Memory
}

func newFixture(t *testing.T, opts ...server.Option) *fixture {
	t.Helper()

	reg := tools.NewRegistry()
	require.NoError(t, review.Register(reg))

	st := store.NewMemory()
	g, err := review.DefaultGraph()
	require.NoError(t, err)
	require.NoError(t, st.CreateGraph(context.Background(), g))

	promReg := prometheus.NewRegistry()
	eng := engine.New(reg, engine.WithObserver(observability.NewMetrics(promReg)))

	var n int
	base := []server.Option{
		server.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		server.WithGatherer(promReg),
		server.WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		}),
	}

	return &fixture{
		handler: server.New(eng, st, reg, append(base, opts...)...).Handler(),
		store:   st,
	}
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader = http.NoBody
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestRunGraph_DefaultReviewGraph(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/graph/run", map[string]any{
		"graph_id":      review.GraphID,
		"initial_state": map[string]any{"code": "def a():\n def b():\n"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[server.RunGraphResponse](t, w)
	assert.Equal(t, "id-1", resp.RunID)
	assert.Len(t, resp.Log, 6)
	assert.Equal(t, int64(2), resp.FinalState.Int(review.KeyFunctionCount, -1))
	assert.Equal(t, int64(100), resp.FinalState.Int(review.KeyQualityScore, -1))
	assert.Equal(t, "finish", resp.FinalState.Str(review.KeyRoute, ""))
	assert.Equal(t, "completed", resp.FinalState.Str(review.KeyReviewStatus, ""))
	assert.Empty(t, resp.FinalState.StringList(review.KeySuggestions))

	w = f.do(t, http.MethodGet, "/graph/state/"+resp.RunID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	run := decode[state.RunState](t, w)
	assert.True(t, run.Done)
	assert.Empty(t, run.CurrentNode)
	assert.Equal(t, review.GraphID, run.GraphID)
	assert.Equal(t, []string{"extract", "complexity", "issues", "suggest", "decide", "end"}, run.Nodes())
}

func TestRunGraph_MaxSteps(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/graph/run", map[string]any{
		"graph_id":      review.GraphID,
		"initial_state": map[string]any{"code": strings.Repeat("def f():\n", 6)},
		"max_steps":     7,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[server.RunGraphResponse](t, w)
	assert.Len(t, resp.Log, 7)
	assert.Equal(t, engine.MaxStepsReached, resp.FinalState.Str(engine.TerminationReasonKey, ""))
}

func TestRunGraph_Errors(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		body any
		want int
	}{
		{name: "unknown graph", body: map[string]any{"graph_id": "nope"}, want: http.StatusNotFound},
		{name: "missing graph id", body: map[string]any{}, want: http.StatusBadRequest},
		{name: "malformed json", body: `{"graph_id":`, want: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(t, http.MethodPost, "/graph/run", tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
			assert.NotEmpty(t, decode[server.ErrorResponse](t, w).Error)
		})
	}
}

func TestCreateGraph(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/graph/create", map[string]any{
		"start_node": "a",
		"nodes": map[string]any{
			"a": map[string]any{"tool": review.ToolExtractFunctions, "default_next": "b"},
			"b": map[string]any{"tool": review.ToolFinalizeReview},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	created := decode[server.CreateGraphResponse](t, w)
	assert.Equal(t, "id-1", created.GraphID)

	w = f.do(t, http.MethodGet, "/graph/"+created.GraphID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	cfg := decode[graph.GraphConfig](t, w)
	assert.Equal(t, "a", cfg.StartNode)
	assert.Equal(t, "a", cfg.Nodes["a"].Name)

	w = f.do(t, http.MethodPost, "/graph/run", map[string]any{
		"graph_id":      created.GraphID,
		"initial_state": map[string]any{"code": "def x(): pass"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[server.RunGraphResponse](t, w)
	assert.Equal(t, int64(1), resp.FinalState.Int(review.KeyFunctionCount, 0))
	assert.Equal(t, "completed", resp.FinalState.Str(review.KeyReviewStatus, ""))

	w = f.do(t, http.MethodGet, "/graphs", nil)
	assert.JSONEq(t, fmt.Sprintf(`{"graphs":[%q,%q]}`, review.GraphID, created.GraphID), w.Body.String())
}

func TestCreateGraph_Rejected(t *testing.T) {
	tests := []struct {
		name     string
		validate bool
		body     any
		want     int
	}{
		{
			name:     "start node missing",
			validate: true,
			body:     map[string]any{"start_node": "x", "nodes": map[string]any{"a": map[string]any{"tool": "t"}}},
			want:     http.StatusBadRequest,
		},
		{
			name:     "dangling route with validation",
			validate: true,
			body:     map[string]any{"start_node": "a", "nodes": map[string]any{"a": map[string]any{"tool": "t", "default_next": "ghost"}}},
			want:     http.StatusBadRequest,
		},
		{
			name:     "dangling route without validation",
			validate: false,
			body:     map[string]any{"start_node": "a", "nodes": map[string]any{"a": map[string]any{"tool": "t", "default_next": "ghost"}}},
			want:     http.StatusOK,
		},
		{
			name:     "malformed body",
			validate: true,
			body:     `[1,2]`,
			want:     http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, server.WithValidateRoutes(tt.validate))
			w := f.do(t, http.MethodPost, "/graph/create", tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestRunGraph_FailureStoresPartialRun(t *testing.T) {
	f := newFixture(t, server.WithValidateRoutes(false))

	w := f.do(t, http.MethodPost, "/graph/create", map[string]any{
		"start_node": "a",
		"nodes": map[string]any{
			"a": map[string]any{"tool": review.ToolExtractFunctions, "default_next": "ghost"},
		},
	})
	require.Equal(t, http.StatusOK, w.Code)
	graphID := decode[server.CreateGraphResponse](t, w).GraphID

	w = f.do(t, http.MethodPost, "/graph/run", map[string]any{
		"graph_id":      graphID,
		"initial_state": map[string]any{"code": "def a():"},
	})
	require.Equal(t, http.StatusInternalServerError, w.Code)

	failure := decode[server.ErrorResponse](t, w)
	assert.Contains(t, failure.Error, "ghost")
	require.NotEmpty(t, failure.RunID)

	w = f.do(t, http.MethodGet, "/graph/state/"+failure.RunID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	run := decode[state.RunState](t, w)
	assert.False(t, run.Done)
	assert.Equal(t, "a", run.CurrentNode)
	require.Len(t, run.Log, 1)
	assert.Equal(t, int64(1), run.State.Int(review.KeyFunctionCount, 0))
}

func TestListRuns(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/runs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"runs":[]}`, w.Body.String())

	for range 2 {
		f.do(t, http.MethodPost, "/graph/run", map[string]any{
			"graph_id":      review.GraphID,
			"initial_state": map[string]any{"code": "def a():\n"},
		})
	}
	f.do(t, http.MethodPost, "/graph/run", map[string]any{"graph_id": "nope"})

	w = f.do(t, http.MethodGet, "/runs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"runs":["id-1","id-2"]}`, w.Body.String())
}

func TestGetters_NotFound(t *testing.T) {
	f := newFixture(t)

	for _, path := range []string{"/graph/state/missing", "/graph/missing"} {
		w := f.do(t, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusNotFound, w.Code, path)
	}
}

func TestListTools(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/tools", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode[map[string][]string](t, w)
	assert.Len(t, body["tools"], 7)
	assert.Equal(t, review.ToolAutoImproveCode, body["tools"][0])
}

func TestMetrics(t *testing.T) {
	f := newFixture(t)

	f.do(t, http.MethodPost, "/graph/run", map[string]any{
		"graph_id":      review.GraphID,
		"initial_state": map[string]any{"code": "def a():\n"},
	})

	w := f.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `flowgraph_engine_runs_total{graph_id="code_review_v1",status="completed"} 1`)
	assert.Contains(t, w.Body.String(), `flowgraph_engine_steps_total{tool="finalize_review"} 1`)
}
