// Package report renders a run summary as a self-contained HTML page and a
// JSON summary file.
package report

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"github.com/mj1618/stepwright/internal/model"
)

// Generator writes report artifacts into OutputDir.
type Generator struct {
	OutputDir string
	Title     string
	// Trend holds past runs, oldest first. When non-empty the report
	// includes pass/fail, duration and case-count charts over them.
	Trend []model.RunRecord
}

// HTMLName returns the report file name for a run.
func HTMLName(runID string) string { return "report_" + runID + ".html" }

// SummaryName returns the summary file name for a run.
func SummaryName(runID string) string { return "summary_" + runID + ".json" }

// Generate writes report_<runID>.html and summary_<runID>.json and returns
// the path of the HTML report. Every failure is a ReportWriteError.
func (g *Generator) Generate(summary *model.RunSummary) (string, error) {
	if summary == nil {
		return "", model.NewError(model.ErrReportWrite, "no run summary", nil)
	}
	dir := g.OutputDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", model.NewError(model.ErrReportWrite, "create report directory", err)
	}

	page, err := g.Render(summary)
	if err != nil {
		return "", model.NewError(model.ErrReportWrite, "render report", err)
	}
	path := filepath.Join(dir, HTMLName(summary.RunID))
	if err := os.WriteFile(path, page, 0o644); err != nil {
		return "", model.NewError(model.ErrReportWrite, "write report", err)
	}

	if _, err := WriteSummary(dir, summary); err != nil {
		return "", err
	}
	return path, nil
}

// SummaryFile is the JSON document written next to the HTML report.
type SummaryFile struct {
	*model.RunSummary
	PassRate        float64       `json:"pass_rate"`
	AverageDuration time.Duration `json:"average_duration"`
}

// WriteSummary writes summary_<runID>.json into dir.
func WriteSummary(dir string, summary *model.RunSummary) (string, error) {
	data, err := json.MarshalIndent(SummaryFile{
		RunSummary:      summary,
		PassRate:        summary.PassRate(),
		AverageDuration: summary.AverageDuration(),
	}, "", "  ")
	if err != nil {
		return "", model.NewError(model.ErrReportWrite, "encode summary", err)
	}
	path := filepath.Join(dir, SummaryName(summary.RunID))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", model.NewError(model.ErrReportWrite, "write summary", err)
	}
	return path, nil
}

// LoadSummary reads a summary file written by WriteSummary.
func LoadSummary(path string) (*model.RunSummary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	file := SummaryFile{RunSummary: &model.RunSummary{}}
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if file.Cases == nil {
		file.Cases = []model.CaseResult{}
	}
	return file.RunSummary, nil
}

// pageData is the template view of a run.
type pageData struct {
	Title      string
	Summary    *model.RunSummary
	PassRate   float64
	Average    time.Duration
	PieChart   template.URL
	TrendChart    template.URL
	DurationChart template.URL
	GrowthChart   template.URL
	Trend         []model.RunRecord
}

// Render returns the HTML report for summary. It depends only on its inputs.
func (g *Generator) Render(summary *model.RunSummary) ([]byte, error) {
	title := g.Title
	if title == "" {
		title = "UI Test Report"
	}
	pie, err := PieChart(summary.Passed, summary.Failed)
	if err != nil {
		return nil, fmt.Errorf("draw pie chart: %w", err)
	}
	data := pageData{
		Title:    title,
		Summary:  summary,
		PassRate: summary.PassRate() * 100,
		Average:  summary.AverageDuration(),
		PieChart: dataURL(pie),
		Trend:    g.Trend,
	}
	if len(g.Trend) > 0 {
		trend, err := TrendChart(g.Trend)
		if err != nil {
			return nil, fmt.Errorf("draw trend chart: %w", err)
		}
		data.TrendChart = dataURL(trend)

		durations, err := DurationChart(g.Trend)
		if err != nil {
			return nil, fmt.Errorf("draw duration chart: %w", err)
		}
		data.DurationChart = dataURL(durations)

		growth, err := GrowthChart(g.Trend)
		if err != nil {
			return nil, fmt.Errorf("draw growth chart: %w", err)
		}
		data.GrowthChart = dataURL(growth)
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func dataURL(png []byte) template.URL {
	return template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(png))
}

// formatDuration rounds d for display.
func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Minute:
		return d.Round(time.Second).String()
	case d >= time.Second:
		return d.Round(10 * time.Millisecond).String()
	default:
		return d.Round(time.Millisecond).String()
	}
}
