package report

import (
	"fmt"
	"html/template"
	"time"

	"github.com/mj1618/stepwright/internal/model"
)

var pageTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"duration": formatDuration,
	"time": func(t time.Time) string {
		if t.IsZero() {
			return "-"
		}
		return t.Format("2006-01-02 15:04:05")
	},
	"pct": func(f float64) string { return fmt.Sprintf("%.1f%%", f) },
	"passed": func(s model.Status) bool { return s == model.StatusPassed },
}).Parse(pageHTML))

const pageHTML = `<!DOCTYPE html>
<html lang="zh-CN">
<head>
<meta charset="utf-8">
<title>{{.Title}} {{.Summary.RunID}}</title>
<style>
body { font-family: -apple-system, "Segoe UI", "PingFang SC", "Microsoft YaHei", sans-serif; margin: 2em; color: #222; }
h1 { margin-bottom: 0.2em; }
.meta { color: #666; margin-bottom: 1.5em; }
.overview { display: flex; gap: 2em; align-items: center; flex-wrap: wrap; }
table.totals td { padding: 0.2em 1em 0.2em 0; }
table.totals td:first-child { color: #666; }
.case { border: 1px solid #ddd; border-radius: 6px; margin: 1em 0; padding: 0.8em 1.2em; }
.case.passed { border-left: 6px solid #2ea043; }
.case.failed { border-left: 6px solid #da3633; }
.badge { display: inline-block; padding: 0.1em 0.6em; border-radius: 4px; color: #fff; font-size: 0.85em; }
.badge.passed { background: #2ea043; }
.badge.failed { background: #da3633; }
table.steps { border-collapse: collapse; width: 100%; margin-top: 0.6em; }
table.steps th, table.steps td { border-bottom: 1px solid #eee; padding: 0.3em 0.5em; text-align: left; vertical-align: top; }
td.error { color: #da3633; font-family: monospace; }
img.screenshot { max-width: 100%; border: 1px solid #ccc; margin-top: 0.8em; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<div class="meta">Run {{.Summary.RunID}} &middot; {{time .Summary.StartedAt}} &ndash; {{time .Summary.EndedAt}}{{if .Summary.Cancelled}} &middot; <strong>cancelled</strong>{{end}}</div>

<div class="overview">
  <img src="{{.PieChart}}" alt="pass/fail chart" width="260" height="260">
  <table class="totals">
    <tr><td>Total cases</td><td>{{.Summary.Total}}</td></tr>
    <tr><td>Passed</td><td>{{.Summary.Passed}}</td></tr>
    <tr><td>Failed</td><td>{{.Summary.Failed}}</td></tr>
    <tr><td>Pass rate</td><td>{{pct .PassRate}}</td></tr>
    <tr><td>Total duration</td><td>{{duration .Summary.Duration}}</td></tr>
    <tr><td>Average duration</td><td>{{duration .Average}}</td></tr>
  </table>
</div>

{{if .TrendChart}}
<h2>Trend</h2>
<img src="{{.TrendChart}}" alt="pass/fail trend of recent runs">
<h3>Duration</h3>
<img src="{{.DurationChart}}" alt="duration of recent runs">
<h3>Cases per run</h3>
<img src="{{.GrowthChart}}" alt="number of cases in recent runs">
<div class="meta">{{range $i, $r := .Trend}}{{if $i}} &middot; {{end}}{{$r.RunID}}{{end}}</div>
{{end}}

<h2>Cases</h2>
{{if not .Summary.Cases}}<p>No test cases were run.</p>{{end}}
{{range .Summary.Cases}}
<div class="case {{.Status}}">
  <h3>{{.ID}} {{.Name}} <span class="badge {{.Status}}">{{.Status}}</span></h3>
  {{if .Description}}<p>{{.Description}}</p>{{end}}
  <div class="meta">{{time .StartedAt}} &middot; {{duration .Duration}}</div>
  {{if .Steps}}
  <table class="steps">
    <tr><th>#</th><th>Step</th><th>Action</th><th>Result</th><th>Time</th><th>Attempts</th></tr>
    {{range .Steps}}
    <tr>
      <td>{{.Index}}</td>
      <td>{{.Step}}</td>
      <td>{{.Detail}}</td>
      {{if passed .Status}}<td>passed</td>{{else}}<td class="error">{{.ErrorKind}}<br>{{.Error}}</td>{{end}}
      <td>{{duration .Elapsed}}</td>
      <td>{{.Attempts}}</td>
    </tr>
    {{end}}
  </table>
  {{end}}
  {{if not (passed .Status)}}
    {{if .Error}}<p class="error">{{.Error}}</p>{{end}}
    {{if .Screenshot}}<img class="screenshot" src="{{.Screenshot}}" alt="screenshot of {{.ID}}">{{end}}
  {{end}}
</div>
{{end}}
</body>
</html>
`
