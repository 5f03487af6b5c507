package cmd

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mj1618/stepwright/internal/locator"
	"github.com/mj1618/stepwright/internal/model"
)

const loginPage = `<html><body>
<form>
  <label for="user">用户名</label><input id="user" name="username" type="text">
  <input id="pwd" name="password" type="password" placeholder="密码">
  <button id="login" type="submit">登录</button>
  <button id="hidden" hidden>隐藏</button>
</form>
<a id="help" href="/help">帮助</a>
</body></html>`

func selectors(els []model.Element) []string {
	out := []string{}
	for _, el := range els {
		out = append(out, el.Selector)
	}
	return out
}

func TestFilterCandidates(t *testing.T) {
	elements, err := locator.Extract(loginPage)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		roles   []string
		text    string
		hint    string
		purpose locator.Purpose
		all     bool
		want    []string
	}{
		{name: "buttons", roles: []string{"btn"}, want: []string{"#login"}},
		{name: "buttons incl hidden", roles: []string{"btn"}, all: true, want: []string{"#login", "#hidden"}},
		{name: "text", text: "帮助", want: []string{"#help"}},
		{name: "input hint", hint: "密码输入框", purpose: locator.PurposeInput, want: []string{"#pwd"}},
		{name: "click hint", hint: "登录按钮", purpose: locator.PurposeClick, want: []string{"#login"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := filterCandidates(elements, tt.roles, tt.text, tt.hint, tt.purpose, tt.all)
			if diff := cmp.Diff(tt.want, selectors(got)); diff != "" {
				t.Errorf("selectors mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParsePurpose(t *testing.T) {
	if p, err := parsePurpose("input"); err != nil || p != locator.PurposeInput {
		t.Errorf("parsePurpose(input) = %v, %v", p, err)
	}
	if p, err := parsePurpose(""); err != nil || p != locator.PurposeClick {
		t.Errorf("parsePurpose(\"\") = %v, %v", p, err)
	}
	if _, err := parsePurpose("hover"); err == nil {
		t.Error("expected error for unknown purpose")
	}
}

func TestNormalizeURL(t *testing.T) {
	tests := map[string]string{
		"www.baidu.com":       "https://www.baidu.com",
		"https://example.com": "https://example.com",
		" http://localhost ":  "http://localhost",
		"about:blank":         "about:blank",
	}
	for in, want := range tests {
		if got := normalizeURL(in); got != want {
			t.Errorf("normalizeURL(%q) = %q, want %q", in, got, want)
		}
	}
}
