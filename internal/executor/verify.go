package executor

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/mj1618/stepwright/internal/model"
	"github.com/mj1618/stepwright/internal/platform"
)

var quotedRe = regexp.MustCompile(`["'“‘「『《]([^"'”’」』》“‘]+)["'”’」』》]`)

var (
	titleWords    = []string{"标题", "title"}
	urlWords      = []string{"网址", "地址", "链接", "url"}
	negationWords = []string{"不包含", "不含", "不存在", "不显示", "没有", "not contain", "does not", "doesn't", "no longer"}
	containsWords = []string{"包含", "含有", "显示", "出现", "contains", "contain", "shows", "has"}
)

// Expression returns the expr-lang program a verify condition translates to.
// ok is false when the condition needs a semantic check by the model.
//
// An "expr:" prefix passes the rest through verbatim. Otherwise a quoted
// phrase, or the words after a "contains" marker, become a contains test on
// the title, url or text depending on what the condition mentions.
func Expression(condition string) (program string, ok bool) {
	cond := strings.TrimSpace(condition)
	if rest, found := strings.CutPrefix(cond, "expr:"); found {
		return strings.TrimSpace(rest), true
	}

	lower := strings.ToLower(cond)
	phrase, found := unquote(cond)
	if !found {
		phrase, found = afterContains(cond)
	}
	if !found {
		return "", false
	}

	field := "text"
	switch {
	case model.ContainsWord(lower, titleWords...):
		field = "title"
	case model.ContainsWord(lower, urlWords...):
		field = "url"
	}
	program = fmt.Sprintf("%s contains %s", field, strconv.Quote(phrase))
	if model.ContainsWord(lower, negationWords...) {
		program = "not (" + program + ")"
	}
	return program, true
}

// afterContains returns the short phrase following a contains marker, as in
// "页面包含 Playwright". English markers only count as whole words.
func afterContains(cond string) (string, bool) {
	lower := strings.ToLower(cond)
	for _, w := range containsWords {
		idx := model.IndexWord(lower, w)
		if idx < 0 {
			continue
		}
		phrase := strings.TrimSpace(cond[idx+len(w):])
		phrase = strings.Trim(phrase, ":：。.!！ ")
		if n := len([]rune(phrase)); n == 0 || n > 40 {
			return "", false
		}
		return phrase, true
	}
	return "", false
}

// Evaluate runs program against the page state. It reports whether the
// condition holds.
func Evaluate(program string, state platform.PageState) (bool, error) {
	env := map[string]interface{}{
		"title": state.Title,
		"url":   state.URL,
		"text":  state.Text,
	}
	compiled, err := expr.Compile(program, expr.Env(env), expr.AsBool())
	if err != nil {
		return false, err
	}
	out, err := expr.Run(compiled, env)
	if err != nil {
		return false, err
	}
	held, _ := out.(bool)
	return held, nil
}

const verifyPrompt = `You check assertions in a UI test against the current state of a web page.
Answer with exactly PASS if the assertion holds, otherwise FAIL followed by a short reason.`

func (e *Executor) verify(ctx context.Context, b platform.Browser, condition string) error {
	e.cache.Invalidate(b)
	page, err := e.cache.Refresh(ctx, b)
	if err != nil {
		return failure(model.ErrAssertionFailed, "read page for verification", err)
	}

	if program, ok := Expression(condition); ok {
		held, err := Evaluate(program, page.State)
		if err != nil {
			return model.NewError(model.ErrAssertionFailed, fmt.Sprintf("cannot evaluate %q", program), err)
		}
		if !held {
			return model.Errorf(model.ErrAssertionFailed, "%s (title %q, url %s)", program, page.State.Title, page.State.URL)
		}
		return nil
	}

	if e.client == nil {
		return model.Errorf(model.ErrAssertionFailed, "%q needs a semantic check and no model is configured", condition)
	}
	user := fmt.Sprintf("Assertion: %s\n\nPage title: %s\nPage URL: %s\nVisible text:\n%s",
		condition, page.State.Title, page.State.URL, truncate(page.State.Text, maxPromptRunes))
	reply, err := e.client.Complete(ctx, verifyPrompt, user)
	if err != nil {
		return model.NewError(model.ErrAssertionFailed, "semantic check failed", err)
	}
	verdict := strings.ToUpper(strings.TrimSpace(reply))
	if strings.HasPrefix(verdict, "PASS") {
		return nil
	}
	return model.Errorf(model.ErrAssertionFailed, "%q does not hold: %s", condition, truncate(strings.TrimSpace(reply), 200))
}
