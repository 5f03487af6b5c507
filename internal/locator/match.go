package locator

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/mj1618/stepwright/internal/model"
)

// Purpose narrows candidates to what an action can act on.
type Purpose int

const (
	PurposeClick Purpose = iota
	PurposeInput
)

// ErrNoMatch is returned when no candidate matches a hint.
var ErrNoMatch = errors.New("no matching element")

// Match is a candidate with its relevance score.
type Match struct {
	Element model.Element
	Score   int
}

const (
	scoreExact        = 100
	scoreContains     = 60
	scoreContainedBy  = 50
	scoreSynonymExact = 40
	scoreSynonym      = 30
	scoreSubmit       = 45
	scoreGeneric      = 10
	bonusRole         = 5
)

// staticRoles are display-only roles that lose to interactive elements
// carrying the same text.
var staticRoles = map[string]bool{
	"txt":   true,
	"img":   true,
	"group": true,
	"other": true,
}

// Find scores every visible candidate against hint and returns the matches,
// best first. Ties keep document order.
func Find(elements []model.Element, hint string, purpose Purpose) []Match {
	full, core, syns := hintTerms(hint)
	var matches []Match
	for _, el := range model.FilterVisible(elements) {
		if purpose == PurposeInput && el.Role != "input" {
			continue
		}
		score := scoreElement(el, full, core, syns, purpose)
		if score == 0 {
			continue
		}
		if purpose == PurposeClick && !staticRoles[el.Role] {
			score += bonusRole
		}
		matches = append(matches, Match{Element: el, Score: score})
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	return preferInteractive(matches)
}

// Resolve returns the best match for hint.
func Resolve(elements []model.Element, hint string, purpose Purpose) (*model.Element, error) {
	matches := Find(elements, hint, purpose)
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w for %q", ErrNoMatch, hint)
	}
	el := matches[0].Element
	return &el, nil
}

func scoreElement(el model.Element, full, core string, syns []string, purpose Purpose) int {
	best := 0
	bump := func(s int) {
		if s > best {
			best = s
		}
	}
	if core == "" {
		// A bare "输入框" or "button" names no control: any candidate will do.
		bump(scoreGeneric)
	}
	for _, term := range []string{full, core} {
		if term == "" {
			continue
		}
		if model.TextMatchesElement(el, term, true) {
			bump(scoreExact)
		} else if model.TextMatchesElement(el, term, false) {
			bump(scoreContains)
		}
	}
	if core != "" {
		for _, f := range []string{el.Title, el.Value, el.Description} {
			fl := strings.ToLower(f)
			if len([]rune(fl)) >= 2 && strings.Contains(core, fl) {
				bump(scoreContainedBy)
			}
		}
	}
	for _, syn := range syns {
		if nameHas(el.Name, syn) {
			bump(scoreSynonymExact)
		} else if model.TextMatchesElement(el, syn, false) {
			bump(scoreSynonym)
		}
	}
	if purpose == PurposeClick && el.Type == "submit" && (submitHints[core] || submitHints[full]) {
		bump(scoreSubmit)
	}
	return best
}

// nameHas reports whether one of the space-separated name/id tokens equals syn.
func nameHas(name, syn string) bool {
	for _, tok := range strings.Fields(strings.ToLower(name)) {
		if tok == syn {
			return true
		}
	}
	return false
}

// preferInteractive drops static matches when at least one interactive
// element scored as well as the best static one.
func preferInteractive(matches []Match) []Match {
	var interactive []Match
	bestStatic := -1
	for _, m := range matches {
		if staticRoles[m.Element.Role] {
			if m.Score > bestStatic {
				bestStatic = m.Score
			}
			continue
		}
		interactive = append(interactive, m)
	}
	if len(interactive) > 0 && len(interactive) < len(matches) && interactive[0].Score >= bestStatic {
		return interactive
	}
	return matches
}

// Catalog renders candidates as numbered lines for a model prompt. At most
// limit visible elements are listed.
func Catalog(elements []model.Element, purpose Purpose, limit int) string {
	var b strings.Builder
	n := 0
	for _, el := range model.FilterVisible(elements) {
		if purpose == PurposeInput && el.Role != "input" {
			continue
		}
		if n == limit {
			break
		}
		n++
		fmt.Fprintf(&b, "[%d] %s <%s>", el.ID, el.Role, el.Tag)
		if el.Title != "" {
			fmt.Fprintf(&b, " text=%q", el.Title)
		}
		if el.Description != "" {
			fmt.Fprintf(&b, " desc=%q", el.Description)
		}
		if el.Name != "" {
			fmt.Fprintf(&b, " name=%q", el.Name)
		}
		if el.Type != "" {
			fmt.Fprintf(&b, " type=%s", el.Type)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// FindByID returns the element with the given snapshot ID.
func FindByID(elements []model.Element, id int) *model.Element {
	for i := range elements {
		if elements[i].ID == id {
			return &elements[i]
		}
	}
	return nil
}
