package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/mj1618/stepwright/internal/model"
	"github.com/mj1618/stepwright/internal/platform"
	"gopkg.in/yaml.v3"
)

// Format represents the output format.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// OutputFormat is the current output format, set by the root command's --format flag.
var OutputFormat Format = FormatYAML

// PrettyOutput enables pretty-printing for JSON output.
var PrettyOutput bool

// Writer is where Print writes. Tests swap it out.
var Writer io.Writer = os.Stdout

// PageResult is the output of the `open` and `read` commands.
type PageResult struct {
	URL      string          `yaml:"url"                json:"url"`
	Title    string          `yaml:"title"              json:"title"`
	TS       int64           `yaml:"ts"                 json:"ts"`
	Text     string          `yaml:"text,omitempty"     json:"text,omitempty"`
	Elements []model.Element `yaml:"elements,omitempty" json:"elements,omitempty"`
}

// NewPageResult copies the headline fields of a page snapshot.
func NewPageResult(state platform.PageState, ts int64) PageResult {
	return PageResult{URL: state.URL, Title: state.Title, TS: ts}
}

// ResolvedStep is one line of `resolve` output.
type ResolvedStep struct {
	Step      string          `yaml:"step"                 json:"step"`
	Action    *model.Action   `yaml:"action,omitempty"     json:"action,omitempty"`
	ErrorKind model.ErrorKind `yaml:"error_kind,omitempty" json:"error_kind,omitempty"`
	Error     string          `yaml:"error,omitempty"      json:"error,omitempty"`
}

// RunResult is the top-level output of the `run` command.
type RunResult struct {
	Summary  *model.RunSummary `yaml:"summary"           json:"summary"`
	Report   string            `yaml:"report,omitempty"  json:"report,omitempty"`
	PassRate float64           `yaml:"pass_rate"         json:"pass_rate"`
	Metrics  string            `yaml:"metrics,omitempty" json:"metrics,omitempty"`
}

// Print serializes v to Writer in the current output format.
func Print(v interface{}) error {
	switch OutputFormat {
	case FormatJSON:
		return PrintJSON(v, PrettyOutput)
	case FormatYAML:
		return PrintYAML(v)
	default:
		return fmt.Errorf("unsupported output format: %s", OutputFormat)
	}
}

// PrintJSON serializes v as JSON, indented if pretty.
func PrintJSON(v interface{}, pretty bool) error {
	enc := json.NewEncoder(Writer)
	if pretty {
		enc.SetIndent("", "  ")
	}
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("json encode: %w", err)
	}
	return nil
}

// PrintYAML serializes v as YAML.
func PrintYAML(v interface{}) error {
	enc := yaml.NewEncoder(Writer)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("yaml encode: %w", err)
	}
	return enc.Close()
}
