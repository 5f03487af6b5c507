package metrics

import (
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mj1618/stepwright/internal/model"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollector_ObserveAndWrite(t *testing.T) {
	c := NewCollector()
	c.ObserveStep(model.StepResult{Action: model.KindClick, Status: model.StatusPassed, Elapsed: 120 * time.Millisecond, Attempts: 1})
	c.ObserveStep(model.StepResult{Action: model.KindClick, Status: model.StatusFailed, ErrorKind: model.ErrElementNotFound, Attempts: 3})
	c.ObserveStep(model.StepResult{Status: model.StatusFailed, ErrorKind: model.ErrUnresolvedStep})
	c.ObserveCase(model.CaseResult{Status: model.StatusPassed, Duration: time.Second})
	c.ObserveCase(model.CaseResult{Status: model.StatusFailed, Duration: 2 * time.Second})

	if got := testutil.ToFloat64(c.casesTotal.WithLabelValues("failed")); got != 1 {
		t.Errorf("failed cases = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.retriesTotal.WithLabelValues("click")); got != 2 {
		t.Errorf("click retries = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.stepsTotal.WithLabelValues("unresolved", "failed", "UnresolvedStep")); got != 1 {
		t.Errorf("unresolved steps = %v, want 1", got)
	}

	path := filepath.Join(t.TempDir(), "metrics.prom")
	if err := c.Write(path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"# TYPE stepwright_cases_total counter",
		`stepwright_cases_total{status="passed"} 1`,
		"stepwright_case_duration_seconds_bucket",
	} {
		if !strings.Contains(string(data), want) {
			t.Errorf("metrics file missing %q", want)
		}
	}
}

func TestCollector_WriteCreatesDir(t *testing.T) {
	c := NewCollector()
	path := filepath.Join(t.TempDir(), "nested", "metrics.prom")
	if err := c.Write(path); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("metrics file not written: %v", err)
	}
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector()
	c.ObserveCase(model.CaseResult{Status: model.StatusPassed, Duration: time.Second})

	srv := httptest.NewServer(c.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(body), `stepwright_cases_total{status="passed"} 1`) {
		t.Errorf("scrape missing case counter:\n%s", body)
	}
}
