package metrics

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveStageDuration("normalize", 150*time.Microsecond)
	pr.ObserveRunDuration(2 * time.Millisecond)
	pr.IncStageResult("validate", ResultFailed)
	pr.IncRunOutcome(OutcomeInvalid)
	pr.AddDiagnostics("validation", 3)
	pr.AddDiagnostics("warning", 0)
	pr.SetContentPages(12)

	require.InDelta(t, 1, testutil.ToFloat64(pr.runOutcomes.WithLabelValues("invalid")), 0)
	require.InDelta(t, 3, testutil.ToFloat64(pr.diagnostics.WithLabelValues("validation")), 0)
	require.InDelta(t, 12, testutil.ToFloat64(pr.contentPages), 0)
	require.Equal(t, 1, testutil.CollectAndCount(pr.diagnostics))

	mfs, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, mfs)
}

func TestNilPrometheusRecorderIsSafe(t *testing.T) {
	var pr *PrometheusRecorder
	require.NotPanics(t, func() {
		pr.ObserveStageDuration("load", time.Second)
		pr.IncRunOutcome(OutcomeValid)
		pr.SetContentPages(1)
	})
}

func TestWriteTextfile(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.IncRunOutcome(OutcomeValid)

	path := filepath.Join(t.TempDir(), "sitecfg.prom")
	require.NoError(t, WriteTextfile(reg, path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `sitecfg_run_outcomes_total{outcome="valid"} 1`)
}

func TestHTTPHandler(t *testing.T) {
	reg := prom.NewRegistry()
	NewPrometheusRecorder(reg).SetContentPages(4)

	rec := httptest.NewRecorder()
	HTTPHandler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.Contains(rec.Body.String(), "sitecfg_content_pages 4"))
}
