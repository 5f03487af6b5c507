// Package locator turns a page's HTML into candidate elements and picks the
// one a natural-language hint most plausibly refers to.
package locator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mj1618/stepwright/internal/model"
)

// candidateSelector matches everything a step could plausibly target.
const candidateSelector = "a, button, input, textarea, select, summary, label, [role], [onclick], [contenteditable], [tabindex]"

// maxTitleRunes caps visible text copied into Element.Title.
const maxTitleRunes = 80

// Extract parses html and returns candidate elements in document order, each
// carrying a CSS selector that is unique within the document.
func Extract(html string) ([]model.Element, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	idCount := make(map[string]int)
	doc.Find("[id]").Each(func(_ int, s *goquery.Selection) {
		id, _ := s.Attr("id")
		idCount[id]++
	})
	labels := make(map[string]string)
	doc.Find("label[for]").Each(func(_ int, s *goquery.Selection) {
		forID, _ := s.Attr("for")
		if forID != "" {
			labels[forID] = collapse(s.Text())
		}
	})

	var elements []model.Element
	doc.Find(candidateSelector).Each(func(_ int, s *goquery.Selection) {
		el := buildElement(s, labels)
		if el.Tag == "label" && el.Title == "" {
			return
		}
		el.ID = len(elements) + 1
		el.Selector = uniqueSelector(s, idCount)
		elements = append(elements, el)
	})
	return elements, nil
}

func buildElement(s *goquery.Selection, labels map[string]string) model.Element {
	tag := goquery.NodeName(s)
	inputType := strings.ToLower(attr(s, "type"))
	el := model.Element{
		Tag:   tag,
		Type:  inputType,
		Role:  model.MapRole(tag, inputType, attr(s, "role")),
		Value: attr(s, "value"),
	}
	if _, ok := s.Attr("contenteditable"); ok && el.Role == "other" && attr(s, "contenteditable") != "false" {
		el.Role = "input"
	}

	switch {
	case tag == "input" || tag == "textarea" || tag == "select":
		id := attr(s, "id")
		if l, ok := labels[id]; ok && id != "" {
			el.Title = l
		} else if wrap := s.Closest("label"); wrap.Length() > 0 {
			el.Title = collapse(wrap.Text())
		}
		if el.Title == "" && (inputType == "submit" || inputType == "button" || inputType == "reset") {
			el.Title = el.Value
		}
	default:
		el.Title = collapse(s.Text())
	}
	el.Title = truncateRunes(el.Title, maxTitleRunes)

	el.Description = joinNonEmpty(attr(s, "aria-label"), attr(s, "placeholder"), attr(s, "title"), attr(s, "alt"))
	el.Name = joinNonEmpty(attr(s, "name"), attr(s, "id"))

	if _, ok := s.Attr("disabled"); ok || attr(s, "aria-disabled") == "true" {
		disabled := false
		el.Enabled = &disabled
	}
	el.Hidden = isHidden(s, inputType)
	return el
}

func isHidden(s *goquery.Selection, inputType string) bool {
	if inputType == "hidden" {
		return true
	}
	for cur := s; cur.Length() > 0; cur = cur.Parent() {
		if _, ok := cur.Attr("hidden"); ok {
			return true
		}
		if attr(cur, "aria-hidden") == "true" {
			return true
		}
		style := strings.ReplaceAll(strings.ToLower(attr(cur, "style")), " ", "")
		if strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden") {
			return true
		}
	}
	return false
}

// uniqueSelector returns an id selector when the id is unique, otherwise an
// nth-of-type path anchored at the nearest uniquely identified ancestor.
func uniqueSelector(s *goquery.Selection, idCount map[string]int) string {
	var parts []string
	for cur := s; cur.Length() > 0; cur = cur.Parent() {
		tag := goquery.NodeName(cur)
		if tag == "html" || tag == "#document" {
			parts = append([]string{"html"}, parts...)
			break
		}
		if id := attr(cur, "id"); id != "" && idCount[id] == 1 {
			parts = append([]string{fmt.Sprintf(`[id=%s]`, cssString(id))}, parts...)
			break
		}
		nth := cur.PrevAllFiltered(tag).Length() + 1
		parts = append([]string{tag + ":nth-of-type(" + strconv.Itoa(nth) + ")"}, parts...)
	}
	return strings.Join(parts, " > ")
}

// cssString quotes s as a CSS string literal.
func cssString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\a `)
	return `"` + r.Replace(s) + `"`
}

func attr(s *goquery.Selection, name string) string {
	v, _ := s.Attr(name)
	return strings.TrimSpace(v)
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func joinNonEmpty(vals ...string) string {
	var out []string
	seen := make(map[string]bool)
	for _, v := range vals {
		if v != "" && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return strings.Join(out, " ")
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
