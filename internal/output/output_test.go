package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/mj1618/stepwright/internal/model"
	"gopkg.in/yaml.v3"
)

func capture(t *testing.T, format Format, pretty bool, v interface{}) string {
	t.Helper()
	var buf bytes.Buffer
	oldW, oldF, oldP := Writer, OutputFormat, PrettyOutput
	Writer, OutputFormat, PrettyOutput = &buf, format, pretty
	defer func() { Writer, OutputFormat, PrettyOutput = oldW, oldF, oldP }()

	if err := Print(v); err != nil {
		t.Fatal(err)
	}
	return buf.String()
}

func samplePage() PageResult {
	return PageResult{
		URL:   "https://www.baidu.com/",
		Title: "百度一下，你就知道",
		TS:    1707500000,
		Elements: []model.Element{
			{ID: 1, Role: "input", Tag: "input", Selector: "#kw", Name: "wd kw"},
		},
	}
}

func TestPrint_CompactJSON(t *testing.T) {
	out := capture(t, FormatJSON, false, samplePage())

	// Compact output should be a single line (plus newline from Encode)
	if bytes.Count([]byte(out), []byte("\n")) > 1 {
		t.Errorf("compact output should be single line, got:\n%s", out)
	}
	var decoded PageResult
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Title != "百度一下，你就知道" {
		t.Errorf("title: got %q", decoded.Title)
	}
	if len(decoded.Elements) != 1 {
		t.Errorf("elements: got %d, want 1", len(decoded.Elements))
	}
}

func TestPrint_PrettyJSON(t *testing.T) {
	out := capture(t, FormatJSON, true, samplePage())
	if bytes.Count([]byte(out), []byte("\n")) <= 1 {
		t.Errorf("pretty output should be multi-line, got:\n%s", out)
	}
}

func TestPrint_YAML(t *testing.T) {
	out := capture(t, FormatYAML, false, samplePage())

	var decoded PageResult
	if err := yaml.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output is not valid YAML: %v", err)
	}
	if decoded.URL != "https://www.baidu.com/" {
		t.Errorf("url: got %q", decoded.URL)
	}
}

func TestPrint_UnsupportedFormat(t *testing.T) {
	oldF := OutputFormat
	OutputFormat = "xml"
	defer func() { OutputFormat = oldF }()

	if err := Print(samplePage()); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestResolvedStep_OmitEmpty(t *testing.T) {
	data, err := json.Marshal(ResolvedStep{Step: "点击登录", ErrorKind: model.ErrUnresolvedStep, Error: "no keyword"})
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	if _, ok := m["action"]; ok {
		t.Error("nil action should be omitted")
	}
	if m["error_kind"] != "UnresolvedStep" {
		t.Errorf("error_kind = %v", m["error_kind"])
	}
}
