package observability_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benchgrade/benchgrade/internal/observability"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := observability.NewLogger(&buf, "warn", "json")
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", "stage", "grade")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
	assert.Contains(t, out, `"stage":"grade"`)
}

func TestNewLogger_Invalid(t *testing.T) {
	_, err := observability.NewLogger(io.Discard, "loud", "text")
	assert.Error(t, err)

	_, err = observability.NewLogger(io.Discard, "info", "xml")
	assert.Error(t, err)
}

func TestMetrics_IndependentRegistries(t *testing.T) {
	a := observability.NewMetrics()
	b := observability.NewMetrics()

	a.StageErrors.WithLabelValues("grade").Inc()
	a.CoercedCells.Add(3)

	assert.InDelta(t, 1, testutil.ToFloat64(a.StageErrors.WithLabelValues("grade")), 0)
	assert.InDelta(t, 3, testutil.ToFloat64(a.CoercedCells), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(b.CoercedCells), 0)
}

func TestMetrics_Push(t *testing.T) {
	var (
		mu   sync.Mutex
		path string
		body string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		mu.Lock()
		path = r.URL.Path
		body = string(data)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	m := observability.NewMetrics()
	m.BuildingsGraded.Set(42)

	require.NoError(t, m.Push(context.Background(), srv.URL, "benchgrade"))

	mu.Lock()
	defer mu.Unlock()
	assert.True(t, strings.HasSuffix(path, "/job/benchgrade"), "unexpected push path %q", path)
	assert.NotEmpty(t, body)
}

func TestMetrics_PushError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := observability.NewMetrics().Push(context.Background(), srv.URL, "benchgrade")
	assert.Error(t, err)
}
