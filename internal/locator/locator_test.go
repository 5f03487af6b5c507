package locator

import (
	"errors"
	"strings"
	"testing"

	"github.com/mj1618/stepwright/internal/model"
)

// searchPageHTML mimics a search engine landing page:
//
//	form#form
//	├── input#kw name=wd          (search box, no label)
//	├── input#su type=submit      value="百度一下"
//	└── input type=hidden name=ie
//	div.login
//	├── label[for=user] 用户名
//	├── input#user name=username
//	├── input name=password type=password placeholder="请输入密码"
//	└── button[disabled] 登录
//	a 新闻 / a 地图 / span[tabindex] 新闻资讯
const searchPageHTML = `<!DOCTYPE html>
<html><head><title>百度一下，你就知道</title></head>
<body>
  <div id="head">
    <a href="/news">新闻</a>
    <a href="/map">地图</a>
    <span tabindex="-1">新闻资讯</span>
  </div>
  <form id="form" action="/s">
    <input id="kw" name="wd" class="s_ipt" maxlength="255" autocomplete="off">
    <input type="submit" id="su" value="百度一下" class="bg s_btn">
    <input type="hidden" name="ie" value="utf-8">
  </form>
  <div class="login">
    <label for="user">用户名</label>
    <input id="user" name="username">
    <input name="password" type="password" placeholder="请输入密码">
    <button disabled>登录</button>
  </div>
  <div style="display: none"><button>Secret</button></div>
</body></html>`

func mustExtract(t *testing.T, html string) []model.Element {
	t.Helper()
	els, err := Extract(html)
	if err != nil {
		t.Fatal(err)
	}
	return els
}

func TestExtract_Candidates(t *testing.T) {
	els := mustExtract(t, searchPageHTML)
	if len(els) == 0 {
		t.Fatal("expected candidates")
	}
	for i, el := range els {
		if el.ID != i+1 {
			t.Errorf("element %d has id %d, want sequential ids", i, el.ID)
		}
		if el.Selector == "" {
			t.Errorf("element %d has no selector", el.ID)
		}
	}

	kw := findBySelector(els, `[id="kw"]`)
	if kw == nil {
		t.Fatal("search input should be addressed by its unique id")
	}
	if kw.Role != "input" || !strings.Contains(kw.Name, "wd") {
		t.Errorf("unexpected search input: %+v", kw)
	}

	user := findBySelector(els, `[id="user"]`)
	if user == nil || user.Title != "用户名" {
		t.Errorf("expected label text on username input, got %+v", user)
	}
}

func TestExtract_HiddenAndDisabled(t *testing.T) {
	els := mustExtract(t, searchPageHTML)
	var sawSecret, sawHiddenInput bool
	for _, el := range els {
		switch {
		case el.Title == "Secret":
			sawSecret = true
			if !el.Hidden {
				t.Error("button inside display:none should be hidden")
			}
		case el.Type == "hidden":
			sawHiddenInput = true
			if !el.Hidden {
				t.Error("type=hidden input should be hidden")
			}
		case el.Title == "登录":
			if el.IsEnabled() {
				t.Error("disabled button should not be enabled")
			}
		}
	}
	if !sawSecret || !sawHiddenInput {
		t.Error("hidden elements should still be extracted")
	}
}

func TestExtract_PathSelectorForAnonymousElements(t *testing.T) {
	els := mustExtract(t, searchPageHTML)
	news := els[0]
	if news.Title != "新闻" {
		t.Fatalf("first element = %+v", news)
	}
	want := `[id="head"] > a:nth-of-type(1)`
	if news.Selector != want {
		t.Errorf("selector = %q, want %q", news.Selector, want)
	}
	if els[1].Selector != `[id="head"] > a:nth-of-type(2)` {
		t.Errorf("second link selector = %q", els[1].Selector)
	}
}

func TestExtract_DuplicateIDsFallBackToPath(t *testing.T) {
	els := mustExtract(t, `<html><body><div><button id="go">A</button></div><div><button id="go">B</button></div></body></html>`)
	if len(els) != 2 {
		t.Fatalf("expected 2 buttons, got %d", len(els))
	}
	if strings.Contains(els[0].Selector, `[id="go"]`) {
		t.Errorf("duplicate id must not be used as selector: %q", els[0].Selector)
	}
	if els[0].Selector == els[1].Selector {
		t.Error("selectors must be unique")
	}
	if !strings.HasPrefix(els[0].Selector, "html > body:nth-of-type(1)") {
		t.Errorf("expected path from html, got %q", els[0].Selector)
	}
}

func TestResolve_SearchBoxBySynonym(t *testing.T) {
	els := mustExtract(t, searchPageHTML)
	el, err := Resolve(els, "搜索框", PurposeInput)
	if err != nil {
		t.Fatal(err)
	}
	if el.Selector != `[id="kw"]` {
		t.Errorf("expected search input, got %+v", el)
	}
}

func TestResolve_InputByLabelAndPlaceholder(t *testing.T) {
	els := mustExtract(t, searchPageHTML)
	el, err := Resolve(els, "用户名输入框", PurposeInput)
	if err != nil {
		t.Fatal(err)
	}
	if el.Selector != `[id="user"]` {
		t.Errorf("expected username input, got %+v", el)
	}

	el, err = Resolve(els, "密码", PurposeInput)
	if err != nil {
		t.Fatal(err)
	}
	if el.Type != "password" {
		t.Errorf("expected password input, got %+v", el)
	}
}

func TestResolve_ClickSubmitByValue(t *testing.T) {
	els := mustExtract(t, searchPageHTML)
	el, err := Resolve(els, "百度一下按钮", PurposeClick)
	if err != nil {
		t.Fatal(err)
	}
	if el.Selector != `[id="su"]` {
		t.Errorf("expected submit button, got %+v", el)
	}

	el, err = Resolve(els, "搜索按钮", PurposeClick)
	if err != nil {
		t.Fatal(err)
	}
	if el.Type != "submit" {
		t.Errorf("expected submit control for 搜索, got %+v", el)
	}
}

func TestResolve_PrefersInteractiveOverStatic(t *testing.T) {
	els := mustExtract(t, searchPageHTML)
	matches := Find(els, "新闻", PurposeClick)
	if len(matches) == 0 {
		t.Fatal("expected matches")
	}
	for _, m := range matches {
		if m.Element.Tag == "span" {
			t.Errorf("static span should be dropped when a link matches: %+v", matches)
		}
	}
	if matches[0].Element.Tag != "a" {
		t.Errorf("expected link first, got %+v", matches[0])
	}
}

func TestResolve_SkipsHidden(t *testing.T) {
	els := mustExtract(t, searchPageHTML)
	if _, err := Resolve(els, "Secret", PurposeClick); !errors.Is(err, ErrNoMatch) {
		t.Errorf("hidden button must not match, got %v", err)
	}
}

func TestResolve_NoInputOnPage(t *testing.T) {
	els := mustExtract(t, `<html><body><a href="/">Home</a><p>Nothing to type into</p></body></html>`)
	_, err := Resolve(els, "搜索框", PurposeInput)
	if !errors.Is(err, ErrNoMatch) {
		t.Fatalf("expected ErrNoMatch, got %v", err)
	}
}

func TestResolve_GenericHintTakesFirstEditable(t *testing.T) {
	els := mustExtract(t, `<html><body><textarea name="comment"></textarea></body></html>`)
	el, err := Resolve(els, "输入框", PurposeInput)
	if err != nil {
		t.Fatal(err)
	}
	if el.Tag != "textarea" {
		t.Errorf("expected textarea, got %+v", el)
	}
}

func TestHintTerms(t *testing.T) {
	tests := []struct{ hint, core string }{
		{"搜索框", "搜索"},
		{"登录按钮", "登录"},
		{"“百度一下”按钮", "百度一下"},
		{"Search box", "search"},
		{"用户名输入框", "用户名"},
		{"输入框", ""},
	}
	for _, tt := range tests {
		_, core, _ := hintTerms(tt.hint)
		if core != tt.core {
			t.Errorf("hintTerms(%q) core = %q, want %q", tt.hint, core, tt.core)
		}
	}
}

func TestCatalog(t *testing.T) {
	els := mustExtract(t, searchPageHTML)
	out := Catalog(els, PurposeInput, 2)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[0], `name="wd kw"`) {
		t.Errorf("first line = %q", lines[0])
	}
}

func findBySelector(els []model.Element, sel string) *model.Element {
	for i := range els {
		if els[i].Selector == sel {
			return &els[i]
		}
	}
	return nil
}
