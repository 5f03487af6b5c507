package server

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mj1618/stepwright/internal/model"
	"github.com/mj1618/stepwright/internal/output"
	"github.com/mj1618/stepwright/internal/platform"
	"github.com/mj1618/stepwright/internal/runner"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// toText serializes v to YAML for an MCP response.
func toText(v interface{}) string {
	b, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return string(b)
}

func stringParam(params map[string]interface{}, key, def string) string {
	if v, ok := params[key].(string); ok {
		return v
	}
	return def
}

func boolParam(params map[string]interface{}, key string, def bool) bool {
	if v, ok := params[key].(bool); ok {
		return v
	}
	return def
}

func stringsParam(params map[string]interface{}, key string) ([]string, error) {
	raw, ok := params[key]
	if !ok {
		return nil, fmt.Errorf("%s parameter is required", key)
	}
	arr, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%s must be an array", key)
	}
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("each entry of %s must be a string", key)
		}
		out = append(out, s)
	}
	return out, nil
}

func (s *Server) handleResolveStep(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	step := strings.TrimSpace(stringParam(request.GetArguments(), "step", ""))
	if step == "" {
		return mcp.NewToolResultError("step parameter is required"), nil
	}

	res := output.ResolvedStep{Step: step}
	action, err := s.resolver.Resolve(ctx, step)
	if err != nil {
		res.ErrorKind = model.KindOf(err)
		res.Error = err.Error()
		return mcp.NewToolResultError(toText(res)), nil
	}
	res.Action = &action
	return mcp.NewToolResultText(toText(res)), nil
}

// caseResponse is the run_case tool result.
type caseResponse struct {
	RunID  string           `yaml:"run_id"`
	Result model.CaseResult `yaml:"result"`
}

func (s *Server) handleRunCase(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	steps, err := stringsParam(params, "steps")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	tc := model.TestCase{
		ID:    stringParam(params, "id", "MCP"),
		Name:  stringParam(params, "name", ""),
		Steps: steps,
	}
	if tc.Name == "" {
		tc.Name = tc.ID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.session(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	cfg := s.cfg.Run
	cfg.Workers = 1
	cfg.KeepSession = true
	opts := []runner.Option{runner.WithLogger(s.logger)}
	if s.observer != nil {
		opts = append(opts, runner.WithObserver(s.observer))
	}
	r := runner.New(cfg, s.resolver, s.executor, platform.NewSingleSession(b), opts...)

	summary, err := r.Run(ctx, []model.TestCase{tc})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(summary.Cases) == 0 {
		return mcp.NewToolResultError("run cancelled before the case started"), nil
	}

	resp := caseResponse{
		RunID:  summary.RunID + "_" + s.newID(),
		Result: summary.Cases[0],
	}
	s.logger.Info("mcp case finished",
		zap.String("run_id", resp.RunID),
		zap.String("case", tc.ID),
		zap.String("status", string(resp.Result.Status)))
	if !resp.Result.Passed() {
		return mcp.NewToolResultError(toText(resp)), nil
	}
	return mcp.NewToolResultText(toText(resp)), nil
}

func (s *Server) handleSnapshot(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	url := stringParam(params, "url", "")
	text := stringParam(params, "text", "")
	roles := splitRoles(stringParam(params, "roles", ""))
	pageText := boolParam(params, "page-text", false)

	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.session(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if url != "" {
		if err := s.executor.Execute(ctx, b, model.Navigate(url)); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	page, err := s.executor.Cache().Page(ctx, b)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	elements := model.FilterVisible(page.Elements)
	elements = model.FilterElements(elements, roles)
	elements = model.FilterByText(elements, text)

	res := output.NewPageResult(page.State, time.Now().Unix())
	res.Elements = elements
	if pageText {
		res.Text = page.State.Text
	}
	return mcp.NewToolResultText(toText(res)), nil
}

func (s *Server) handleScreenshot(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.session(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := b.Screenshot(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.ImageContent{
				Type:     "image",
				Data:     base64.StdEncoding.EncodeToString(data),
				MIMEType: "image/png",
			},
		},
	}, nil
}

func splitRoles(s string) []string {
	var roles []string
	for _, r := range strings.Split(s, ",") {
		if r = strings.TrimSpace(r); r != "" {
			roles = append(roles, r)
		}
	}
	return roles
}
