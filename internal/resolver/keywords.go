package resolver

import (
	"regexp"
	"strings"

	"github.com/mj1618/stepwright/internal/model"
	"golang.org/x/text/width"
)

// family is one keyword family of the step taxonomy.
type family struct {
	kind    model.Kind
	markers []string
}

// families are listed in tie-break order: when two families match at the
// same position the earlier one wins.
var families = []family{
	{model.KindNavigate, []string{"导航到", "导航至", "导航", "打开", "访问", "跳转到", "navigate to", "navigate", "open", "visit", "go to"}},
	{model.KindInput, []string{"输入", "填写", "填入", "type", "enter", "fill in", "fill"}},
	{model.KindClick, []string{"点击", "单击", "选择", "click", "select", "press", "tap"}},
	{model.KindVerify, []string{"验证", "检查", "确认", "断言", "verify", "check", "assert", "ensure"}},
	{model.KindWait, []string{"等待", "暂停", "wait", "pause", "sleep"}},
}

// stepNumberRe matches leading numbering such as "1.", "2、", "(3)", "步骤4：" or "第5步".
var stepNumberRe = regexp.MustCompile(`(?i)^\s*(?:步骤\s*\d+\s*[:.、]?|第\s*\d+\s*步\s*[:.、]?|\(?\d+\)?\s*[.、):]|step\s*\d+\s*[:.]?)\s*`)

// normalize folds full-width forms to their ASCII equivalents and strips
// leading step numbering. Case is preserved so values survive intact.
func normalize(step string) string {
	s := width.Fold.String(step)
	s = stepNumberRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// markerMatch is the position of the winning keyword in a normalized step.
type markerMatch struct {
	kind       model.Kind
	start, end int
}

// classify returns the family whose marker appears earliest in s, breaking
// ties by family order. ok is false when no family matches.
func classify(s string) (m markerMatch, ok bool) {
	lower := strings.ToLower(s)
	best := -1
	for _, f := range families {
		for _, marker := range f.markers {
			idx := model.IndexWord(lower, marker)
			if idx < 0 {
				continue
			}
			if best < 0 || idx < best {
				best = idx
				m = markerMatch{kind: f.kind, start: idx, end: idx + len(marker)}
			} else if idx == best && m.kind == f.kind && idx+len(marker) > m.end {
				m.end = idx + len(marker)
			}
		}
	}
	return m, best >= 0
}
