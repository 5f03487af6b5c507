package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mj1618/stepwright/internal/llm"
	"github.com/mj1618/stepwright/internal/model"
	"github.com/mj1618/stepwright/internal/schema"
)

// actionReply is the structured reply the model must produce.
type actionReply struct {
	Kind      string  `json:"kind" jsonschema:"enum=navigate,enum=input,enum=click,enum=verify,enum=wait,description=The browser operation"`
	URL       string  `json:"url,omitempty" jsonschema:"description=Absolute URL for navigate"`
	Target    string  `json:"target,omitempty" jsonschema:"description=Short description of the element for input or click"`
	Value     string  `json:"value,omitempty" jsonschema:"description=Text to type for input"`
	Condition string  `json:"condition,omitempty" jsonschema:"description=What must hold for verify or what to wait for"`
	Seconds   float64 `json:"seconds,omitempty" jsonschema:"minimum=0,description=Fixed wait duration in seconds"`
}

const replySchemaID = "https://stepwright.dev/schemas/action-reply.json"

var (
	replyOnce      sync.Once
	replyValidator *schema.Validator
	replyErr       error
)

func replySchema() (*schema.Validator, error) {
	replyOnce.Do(func() {
		replyValidator, replyErr = schema.New(&actionReply{}, replySchemaID, "Resolved browser action")
	})
	return replyValidator, replyErr
}

const systemPrompt = `You translate one step of a UI test into exactly one browser action.
Allowed kinds: navigate, input, click, verify, wait. No other kind is valid.
Reply with a single JSON object and nothing else. It must conform to this JSON Schema:
%s`

func (r *Resolver) resolveWithModel(ctx context.Context, step string, hint model.Kind) (model.Action, error) {
	validator, err := replySchema()
	if err != nil {
		return model.Action{}, model.NewError(model.ErrResolutionFailure, "build reply schema", err)
	}

	user := "Step: " + step
	if hint != "" {
		user += fmt.Sprintf("\nThe step looks like a %q action but its parameters are unclear.", hint)
	}

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	reply, err := r.client.Complete(callCtx, fmt.Sprintf(systemPrompt, validator.Document()), user)
	if err != nil {
		return model.Action{}, model.NewError(model.ErrResolutionFailure, "model call failed", err)
	}
	return parseReply(validator, reply)
}

// parseReply validates and converts a model reply into an action.
func parseReply(validator *schema.Validator, reply string) (model.Action, error) {
	body := llm.StripCodeFence(reply)
	if i, j := strings.Index(body, "{"), strings.LastIndex(body, "}"); i >= 0 && j > i {
		body = body[i : j+1]
	}
	if err := validator.ValidateJSON([]byte(body)); err != nil {
		return model.Action{}, model.NewError(model.ErrResolutionFailure, "malformed model reply", err)
	}

	var ar actionReply
	if err := json.Unmarshal([]byte(body), &ar); err != nil {
		return model.Action{}, model.NewError(model.ErrResolutionFailure, "malformed model reply", err)
	}
	kind, err := model.ParseKind(ar.Kind)
	if err != nil {
		return model.Action{}, model.NewError(model.ErrResolutionFailure, "model chose an unknown action", err)
	}

	action := model.Action{
		Kind:      kind,
		URL:       strings.TrimSpace(ar.URL),
		Target:    strings.TrimSpace(ar.Target),
		Value:     ar.Value,
		Condition: strings.TrimSpace(ar.Condition),
		Duration:  time.Duration(ar.Seconds * float64(time.Second)),
		Source:    model.SourceModel,
	}
	if err := action.Validate(); err != nil {
		return model.Action{}, model.NewError(model.ErrResolutionFailure, "incomplete model reply", err)
	}
	return action, nil
}
