package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JNickson/cluster-health-api/internal/nodes"
	"github.com/JNickson/cluster-health-api/internal/observability"
	"github.com/JNickson/cluster-health-api/internal/pods"
	"github.com/JNickson/cluster-health-api/internal/testutil"
	"github.com/JNickson/cluster-health-api/internal/usage"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestRootHandler(t *testing.T) {
	rec := httptest.NewRecorder()

	RootHandler()(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"message":"Kubernetes Cluster Health API"}`, rec.Body.String())
}

func TestNodesHandler(t *testing.T) {
	tests := []struct {
		name     string
		svc      fakeNodes
		wantCode int
		wantBody string
	}{
		{
			name: "renders records with display keys",
			svc: fakeNodes{records: []nodes.Record{{
				Name:           "node1",
				Status:         nodes.StatusReady,
				CPUCapacity:    "4",
				CPUUsage:       usage.Available("250n"),
				MemoryCapacity: "16Gi",
				MemoryUsage:    usage.Unavailable[string](),
			}}},
			wantCode: http.StatusOK,
			wantBody: `[{"Node Name":"node1","Status":"Ready","CPU Capacity":"4","CPU Usage":"250n","Memory Capacity":"16Gi","Memory Usage":"unavailable"}]`,
		},
		{
			name:     "empty cluster is an empty array",
			svc:      fakeNodes{records: []nodes.Record{}},
			wantCode: http.StatusOK,
			wantBody: `[]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()

			NodesHandler(tt.svc)(rec, httptest.NewRequest(http.MethodGet, "/nodes", nil))

			require.Equal(t, tt.wantCode, rec.Code)
			require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			require.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}

func TestPodsHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	svc := fakePods{records: []pods.Record{{
		Namespace:      "shop",
		Name:           "api",
		Status:         "Running",
		CPUUsageNanos:  usage.Available[int64](150),
		MemoryUsageKiB: usage.Available[int64](500),
	}}}

	PodsHandler(svc)(rec, httptest.NewRequest(http.MethodGet, "/pods", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t,
		`[{"Namespace":"shop","Pod Name":"api","Status":"Running","CPU Usage (nanos)":150,"Memory Usage (KiB)":500}]`,
		rec.Body.String(),
	)
}

func TestListFailureIsServerError(t *testing.T) {
	testutil.FreezeClock(t)

	handlers := map[string]http.HandlerFunc{
		"nodes": NodesHandler(fakeNodes{err: errors.New("failed to list nodes: connection refused")}),
		"pods":  PodsHandler(fakePods{err: errors.New("failed to list pods: connection refused")}),
	}

	for name, h := range handlers {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/"+name, nil)

			WithRequestID(h).ServeHTTP(rec, req)

			require.Equal(t, http.StatusInternalServerError, rec.Code)

			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			require.Equal(t, ErrCodeInternalError, body.Code)
			require.Contains(t, body.Message, "connection refused")
			require.Equal(t, rec.Header().Get(RequestIDHeader), body.RequestID)
			require.True(t, testutil.FixedNow.Equal(body.Timestamp))
		})
	}
}

func TestWithRequestID(t *testing.T) {
	var seen string
	h := WithRequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = RequestIDFrom(r.Context())
	}))

	t.Run("keeps a valid caller id", func(t *testing.T) {
		id := uuid.New().String()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, id)
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, req)

		require.Equal(t, id, seen)
		require.Equal(t, id, rec.Header().Get(RequestIDHeader))
	})

	t.Run("replaces a garbage id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "not-a-uuid")
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, req)

		require.NotEqual(t, "not-a-uuid", seen)
		_, err := uuid.Parse(seen)
		require.NoError(t, err)
		require.Equal(t, seen, rec.Header().Get(RequestIDHeader))
	})
}

func TestInstrumentRecordsStatus(t *testing.T) {
	recorder := observability.NewRecorder()
	h := Instrument("/nodes", recorder, NodesHandler(fakeNodes{err: errors.New("boom")}))

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/nodes", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	metrics := httptest.NewRecorder()
	recorder.Handler().ServeHTTP(metrics, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Contains(t, metrics.Body.String(), `cluster_health_http_requests_total{code="500",route="/nodes"} 1`)
}

func TestHealthHandlers(t *testing.T) {
	rec := httptest.NewRecorder()
	HealthHandler()(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", rec.Body.String())

	rec = httptest.NewRecorder()
	ReadyHandler(nil)(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ready", rec.Body.String())

	rec = httptest.NewRecorder()
	ReadyHandler(func(context.Context) error { return errors.New("down") })(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestWithCORS(t *testing.T) {
	var reached bool
	h := WithCORS(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		reached = true
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("preflight is answered without the wrapped handler", func(t *testing.T) {
		reached = false
		req := httptest.NewRequest(http.MethodOptions, "/nodes", nil)
		req.Header.Set("Origin", "http://dashboard.local")
		req.Header.Set("Access-Control-Request-Method", http.MethodGet)
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusNoContent, rec.Code)
		require.False(t, reached)
		require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		require.Equal(t, "GET, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
		require.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), RequestIDHeader)
	})

	t.Run("simple request carries the allow origin header", func(t *testing.T) {
		reached = false
		req := httptest.NewRequest(http.MethodGet, "/nodes", nil)
		req.Header.Set("Origin", "http://dashboard.local")
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.True(t, reached)
		require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		require.Equal(t, RequestIDHeader, rec.Header().Get("Access-Control-Expose-Headers"))
	})
}

type fakeNodes struct {
	records []nodes.Record
	err     error
}

func (f fakeNodes) FetchNodes(context.Context) ([]nodes.Record, error) {
	return f.records, f.err
}

type fakePods struct {
	records []pods.Record
	err     error
}

func (f fakePods) FetchPods(context.Context) ([]pods.Record, error) {
	return f.records, f.err
}
