package model

import "strings"

// FilterElements returns only elements whose role is in roles. Meta-roles are
// expanded. An empty role list returns elements unchanged.
func FilterElements(elements []Element, roles []string) []Element {
	if len(roles) == 0 {
		return elements
	}
	roleSet := make(map[string]bool, len(roles))
	for _, r := range ExpandRoles(roles) {
		roleSet[r] = true
	}
	var result []Element
	for _, el := range elements {
		if roleSet[el.Role] {
			result = append(result, el)
		}
	}
	return result
}

// FilterByText filters elements to those whose title, value, description or
// name contains text (case-insensitive).
func FilterByText(elements []Element, text string) []Element {
	if text == "" {
		return elements
	}
	textLower := strings.ToLower(text)
	var result []Element
	for _, el := range elements {
		if TextMatchesElement(el, textLower, false) {
			result = append(result, el)
		}
	}
	return result
}

// FilterVisible drops hidden elements.
func FilterVisible(elements []Element) []Element {
	var result []Element
	for _, el := range elements {
		if !el.Hidden {
			result = append(result, el)
		}
	}
	return result
}

// TextMatchesElement reports whether textLower matches any text-bearing field
// of el. With exact, a field must equal the text (case-insensitive) after
// trimming a trailing colon or asterisk, as in "Username:" or "Email *".
func TextMatchesElement(el Element, textLower string, exact bool) bool {
	fields := [...]string{el.Title, el.Value, el.Description, el.Name}
	for _, f := range fields {
		if f == "" {
			continue
		}
		if exact {
			if exactFieldMatch(f, textLower) {
				return true
			}
			continue
		}
		if strings.Contains(strings.ToLower(f), textLower) {
			return true
		}
	}
	return false
}

func exactFieldMatch(field, textLower string) bool {
	if strings.EqualFold(field, textLower) {
		return true
	}
	trimmed := strings.TrimRight(strings.TrimSpace(field), ":：* ")
	return trimmed != field && strings.EqualFold(trimmed, textLower)
}
