package report

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/mj1618/stepwright/internal/model"
)

func sampleSummary() *model.RunSummary {
	start := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	s := model.NewRunSummary("20260301_093000", start)
	s.Add(model.CaseResult{
		ID: "TC001", Name: "百度搜索", Status: model.StatusPassed,
		StartedAt: start, EndedAt: start.Add(3 * time.Second), Duration: 3 * time.Second,
		Steps: []model.StepResult{
			{Index: 1, Step: "导航到 https://www.baidu.com", Action: model.KindNavigate, Detail: "navigate(https://www.baidu.com)", Status: model.StatusPassed, Attempts: 1},
		},
	})
	s.Add(model.CaseResult{
		ID: "TC002", Name: "登录", Status: model.StatusFailed,
		StartedAt: start.Add(3 * time.Second), EndedAt: start.Add(4 * time.Second), Duration: time.Second,
		Screenshot: "screenshots/TC002_20260301_093004.png",
		Error:      "ElementNotFound: no element matches \"<登录>\"",
		Steps: []model.StepResult{
			{Index: 1, Step: "点击<登录>", Action: model.KindClick, Status: model.StatusFailed, ErrorKind: model.ErrElementNotFound, Error: "no element matches \"<登录>\"", Attempts: 2},
		},
	})
	s.Finish(start.Add(4 * time.Second))
	return s
}

func TestGenerate(t *testing.T) {
	dir := t.TempDir()
	g := &Generator{OutputDir: dir}
	path, err := g.Generate(sampleSummary())
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "report_20260301_093000.html" {
		t.Errorf("path = %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	page := string(data)
	for _, want := range []string{
		"TC001", "百度搜索", "TC002",
		"<td>Total cases</td><td>2</td>",
		"50.0%",
		"data:image/png;base64,",
		`src="screenshots/TC002_20260301_093004.png"`,
		"ElementNotFound",
		"&lt;登录&gt;",
	} {
		if !strings.Contains(page, want) {
			t.Errorf("report missing %q", want)
		}
	}
	if strings.Contains(page, "<登录>") {
		t.Error("step text must be escaped")
	}
	if strings.Contains(page, "Trend") {
		t.Error("no trend section without history")
	}
	if _, err := os.Stat(filepath.Join(dir, "summary_20260301_093000.json")); err != nil {
		t.Errorf("summary json: %v", err)
	}
}

func TestGenerate_Empty(t *testing.T) {
	dir := t.TempDir()
	s := model.NewRunSummary("20260301_100000", time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	path, err := (&Generator{OutputDir: dir}).Generate(s)
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"No test cases were run.", "<td>Pass rate</td><td>0.0%</td>", "</html>"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("empty report missing %q", want)
		}
	}
}

func TestGenerate_WriteFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := (&Generator{OutputDir: filepath.Join(blocker, "reports")}).Generate(sampleSummary())
	if model.KindOf(err) != model.ErrReportWrite {
		t.Fatalf("kind = %q, want ReportWriteError (err %v)", model.KindOf(err), err)
	}
	if _, err := (&Generator{OutputDir: dir}).Generate(nil); model.KindOf(err) != model.ErrReportWrite {
		t.Errorf("nil summary: %v", err)
	}
}

func TestGenerate_WithTrend(t *testing.T) {
	g := &Generator{
		OutputDir: t.TempDir(),
		Trend: []model.RunRecord{
			{RunID: "20260228_090000", Total: 4, Passed: 2, Failed: 2, Duration: 40 * time.Second},
			{RunID: "20260301_093000", Total: 2, Passed: 1, Failed: 1, Duration: 12 * time.Second},
		},
	}
	page, err := g.Render(sampleSummary())
	if err != nil {
		t.Fatal(err)
	}
	html := string(page)
	if !strings.Contains(html, "<h2>Trend</h2>") || !strings.Contains(html, "20260228_090000") {
		t.Error("trend section missing")
	}
	for _, alt := range []string{"pass/fail trend of recent runs", "duration of recent runs", "number of cases in recent runs"} {
		if !strings.Contains(html, `alt="`+alt+`"`) {
			t.Errorf("chart %q missing", alt)
		}
	}
	if got := strings.Count(html, "data:image/png;base64,"); got != 4 {
		t.Errorf("embedded charts = %d, want 4 (pie, trend, duration, growth)", got)
	}
}

func TestRender_Deterministic(t *testing.T) {
	g := &Generator{}
	a, err := g.Render(sampleSummary())
	if err != nil {
		t.Fatal(err)
	}
	b, err := g.Render(sampleSummary())
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Error("rendering the same summary twice should produce identical output")
	}
}

func TestSummaryRoundTrip(t *testing.T) {
	dir := t.TempDir()
	want := sampleSummary()
	path, err := WriteSummary(dir, want)
	if err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), `"pass_rate": 0.5`) {
		t.Errorf("summary should carry the pass rate:\n%s", data)
	}
	got, err := LoadSummary(path)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestPieChart(t *testing.T) {
	tests := []struct {
		name           string
		passed, failed int
		probeX, probeY int
		want           [3]uint32
	}{
		// Right half is covered by the first 50% of the clockwise sweep.
		{"half", 1, 1, pieSize/2 + 60, pieSize / 2, rgb(passColor)},
		{"half left", 1, 1, pieSize/2 - 60, pieSize / 2, rgb(failColor)},
		{"all failed", 0, 3, pieSize/2 + 60, pieSize / 2, rgb(failColor)},
		{"empty", 0, 0, pieSize/2 + 60, pieSize / 2, rgb(emptyColor)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := PieChart(tt.passed, tt.failed)
			if err != nil {
				t.Fatal(err)
			}
			img, err := png.Decode(bytes.NewReader(data))
			if err != nil {
				t.Fatal(err)
			}
			if img.Bounds().Dx() != pieSize {
				t.Errorf("width = %d", img.Bounds().Dx())
			}
			r, g, b, _ := img.At(tt.probeX, tt.probeY).RGBA()
			if got := [3]uint32{r >> 8, g >> 8, b >> 8}; got != tt.want {
				t.Errorf("pixel = %v, want %v", got, tt.want)
			}
		})
	}
}

func rgb(c interface{ RGBA() (r, g, b, a uint32) }) [3]uint32 {
	r, g, b, _ := c.RGBA()
	return [3]uint32{r >> 8, g >> 8, b >> 8}
}

func TestLineCharts(t *testing.T) {
	records := []model.RunRecord{
		{Total: 2, Duration: 10 * time.Second},
		{Total: 4, Duration: 20 * time.Second},
		{Total: 4, Duration: 5 * time.Second},
	}
	tests := []struct {
		name  string
		draw  func([]model.RunRecord) ([]byte, error)
		color [3]uint32
		peak  int
	}{
		{"duration", DurationChart, rgb(timeColor), 1},
		{"growth", GrowthChart, rgb(growthColor), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.draw(nil); err == nil {
				t.Error("expected error for no runs")
			}
			data, err := tt.draw(records)
			if err != nil {
				t.Fatal(err)
			}
			img, err := png.Decode(bytes.NewReader(data))
			if err != nil {
				t.Fatal(err)
			}
			if want := 2*chartMargin + len(records)*pointGap; img.Bounds().Dx() != want {
				t.Errorf("width = %d, want %d", img.Bounds().Dx(), want)
			}
			// The largest value is plotted at the top of the chart area.
			x := chartMargin + tt.peak*pointGap + pointGap/2
			r, g, b, _ := img.At(x, chartMargin).RGBA()
			if got := [3]uint32{r >> 8, g >> 8, b >> 8}; got != tt.color {
				t.Errorf("peak pixel = %v, want %v", got, tt.color)
			}
		})
	}
}

func TestTrendChart(t *testing.T) {
	if _, err := TrendChart(nil); err == nil {
		t.Error("expected error for no runs")
	}
	data, err := TrendChart([]model.RunRecord{{Total: 3, Passed: 3}, {Total: 3, Passed: 1, Failed: 2}})
	if err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if want := 2*chartMargin + 2*(barWidth+barGap); img.Bounds().Dx() != want {
		t.Errorf("width = %d, want %d", img.Bounds().Dx(), want)
	}
}
