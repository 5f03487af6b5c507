package resolver

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mj1618/stepwright/internal/model"
)

// maxTargetRunes is the longest target hint matched deterministically.
// Longer descriptions are handed to the model.
const maxTargetRunes = 20

// DefaultWait is used for a bare wait step such as "等待".
const DefaultWait = 3 * time.Second

var (
	urlRe        = regexp.MustCompile(`https?://[^\s)），,。"'“”‘’]+`)
	bareHostRe   = regexp.MustCompile(`\bwww\.[A-Za-z0-9-]+(?:\.[A-Za-z0-9-]+)+[^\s)），,。"'“”‘’]*`)
	quotedRe     = regexp.MustCompile(`["'“‘「『]([^"'”’」』“‘]+)["'”’」』]`)
	durationRe   = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(毫秒|秒钟|秒|分钟|(?i:ms|milliseconds?|seconds?|secs?|s|minutes?|mins?)\b)`)
	cnDurationRe = regexp.MustCompile(`([一二两三四五六七八九十]+)\s*(秒钟|秒|分钟)`)
)

var cnDigits = map[rune]int{'一': 1, '二': 2, '两': 2, '三': 3, '四': 4, '五': 5, '六': 6, '七': 7, '八': 8, '九': 9}

// cnNumber converts a Chinese numeral up to 99 ("三", "十", "十五", "二十") to an int.
func cnNumber(s string) int {
	r := []rune(s)
	switch {
	case len(r) == 1 && r[0] == '十':
		return 10
	case len(r) == 1:
		return cnDigits[r[0]]
	case len(r) == 2 && r[0] == '十':
		return 10 + cnDigits[r[1]]
	case len(r) == 2 && r[1] == '十':
		return cnDigits[r[0]] * 10
	case len(r) == 3 && r[1] == '十':
		return cnDigits[r[0]]*10 + cnDigits[r[2]]
	}
	return 0
}

// extract pulls the parameters of m.kind out of s. ok is false when they
// cannot be found by pattern and the step should go to the model.
func extract(s string, m markerMatch) (model.Action, bool) {
	switch m.kind {
	case model.KindNavigate:
		return extractNavigate(s)
	case model.KindInput:
		return extractInput(s, m)
	case model.KindClick:
		return extractClick(s, m)
	case model.KindVerify:
		return extractVerify(s, m)
	case model.KindWait:
		return extractWait(s, m)
	}
	return model.Action{}, false
}

func extractNavigate(s string) (model.Action, bool) {
	if u := urlRe.FindString(s); u != "" {
		return model.Navigate(strings.TrimRight(u, ".")), true
	}
	if host := bareHostRe.FindString(s); host != "" {
		return model.Navigate("https://" + strings.TrimRight(host, ".")), true
	}
	return model.Action{}, false
}

func extractInput(s string, m markerMatch) (model.Action, bool) {
	before, after := s[:m.start], s[m.end:]
	loc := quotedRe.FindStringSubmatchIndex(s)

	var target, value string
	switch {
	case loc != nil && loc[0] >= m.end:
		// 输入'X'到Y / type 'X' into Y / fill Y with 'X'
		value = s[loc[2]:loc[3]]
		head := strings.TrimSpace(s[m.end:loc[0]])
		tail := strings.TrimSpace(s[loc[1]:])
		if t, ok := cutPrefixAny(tail, "到", "至", "into ", "in ", "to "); ok {
			target = t
		} else if h, ok := cutSuffixAny(head, "with", "为", "成"); ok && h != "" {
			target = h
		} else {
			target = cleanBefore(before)
		}
	case loc != nil && loc[1] <= m.start:
		// 'X' 输入到 Y
		value = s[loc[2]:loc[3]]
		target, _ = cutPrefixAny(strings.TrimSpace(after), "到", "至", "into ", "in ")
	default:
		// 在搜索框中输入Playwright / type Playwright into search box
		if v, t, ok := cutAny(strings.TrimSpace(after), " into ", "到"); ok {
			value, target = v, t
		} else {
			target = cleanBefore(before)
			value = strings.TrimSpace(after)
		}
		if value == "" {
			return model.Action{}, false
		}
	}

	target = cleanTarget(target)
	if !usableTarget(target) {
		return model.Action{}, false
	}
	return model.Input(target, strings.TrimSpace(value)), true
}

func extractClick(s string, m markerMatch) (model.Action, bool) {
	var target string
	if sub := quotedRe.FindStringSubmatch(s[m.end:]); sub != nil {
		target = sub[1]
	} else {
		target = cleanTarget(strings.TrimPrefix(strings.TrimSpace(s[m.end:]), "on "))
	}
	if !usableTarget(target) {
		return model.Action{}, false
	}
	return model.Click(target), true
}

func extractVerify(s string, m markerMatch) (model.Action, bool) {
	cond := strings.TrimSpace(s[m.end:])
	cond = strings.TrimLeft(cond, ":： ")
	cond = strings.TrimRight(cond, "。.!！ ")
	if cond == "" {
		return model.Action{}, false
	}
	return model.Verify(cond), true
}

func extractWait(s string, m markerMatch) (model.Action, bool) {
	// Numbers inside quotes belong to the awaited text, not a duration.
	bare := quotedRe.ReplaceAllString(s, " ")
	if sub := durationRe.FindStringSubmatch(bare); sub != nil {
		if d, ok := parseDuration(sub[1], sub[2]); ok {
			return model.WaitFor(d), true
		}
	}
	if sub := cnDurationRe.FindStringSubmatch(bare); sub != nil {
		if n := cnNumber(sub[1]); n > 0 {
			if d, ok := parseDuration(strconv.Itoa(n), sub[2]); ok {
				return model.WaitFor(d), true
			}
		}
	}
	cond, _ := cutPrefixAny(strings.TrimSpace(s[m.end:]), "for ", "until ")
	cond = cleanTarget(cond)
	if cond == "" {
		return model.WaitFor(DefaultWait), true
	}
	return model.WaitUntil(cond), true
}

func parseDuration(num, unit string) (time.Duration, bool) {
	n, err := strconv.ParseFloat(num, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	var base time.Duration
	switch strings.ToLower(unit) {
	case "毫秒", "ms", "millisecond", "milliseconds":
		base = time.Millisecond
	case "分钟", "minute", "minutes", "min", "mins":
		base = time.Minute
	default:
		base = time.Second
	}
	return time.Duration(n * float64(base)), true
}

// cleanBefore turns the text preceding a marker into a target hint:
// "找到搜索框并" -> "搜索框", "在用户名输入框中" -> "用户名输入框".
func cleanBefore(s string) string {
	s = strings.TrimSpace(s)
	for changed := true; changed; {
		changed = false
		for _, p := range []string{"找到", "定位到", "定位", "在", "向", "往", "in ", "into "} {
			if strings.HasPrefix(s, p) {
				s = strings.TrimSpace(strings.TrimPrefix(s, p))
				changed = true
			}
		}
		for _, suf := range []string{"中", "里", "内", "上", "处", "并", "然后", ",", "，"} {
			if strings.HasSuffix(s, suf) {
				s = strings.TrimSpace(strings.TrimSuffix(s, suf))
				changed = true
			}
		}
	}
	return s
}

// cleanTarget trims connective words and punctuation around a hint.
func cleanTarget(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimRight(s, "。.!！;；,， ")
	s = strings.TrimPrefix(s, "the ")
	for _, suf := range []string{"中", "里", "内"} {
		s = strings.TrimSuffix(s, suf)
	}
	return strings.TrimSpace(s)
}

func usableTarget(s string) bool {
	n := len([]rune(s))
	return n > 0 && n <= maxTargetRunes
}

func cutPrefixAny(s string, prefixes ...string) (string, bool) {
	for _, p := range prefixes {
		if rest, ok := strings.CutPrefix(s, p); ok {
			return strings.TrimSpace(rest), true
		}
	}
	return s, false
}

func cutSuffixAny(s string, suffixes ...string) (string, bool) {
	for _, suf := range suffixes {
		if rest, ok := strings.CutSuffix(s, suf); ok {
			return strings.TrimSpace(rest), true
		}
	}
	return s, false
}

func cutAny(s string, seps ...string) (before, after string, ok bool) {
	for _, sep := range seps {
		if b, a, found := strings.Cut(s, sep); found {
			return strings.TrimSpace(b), strings.TrimSpace(a), true
		}
	}
	return s, "", false
}
