package model

import "strings"

// RoleMap maps HTML tag names (or "input:<type>") to compact role codes.
var RoleMap = map[string]string{
	"a":              "lnk",
	"button":         "btn",
	"summary":        "btn",
	"input:submit":   "btn",
	"input:button":   "btn",
	"input:reset":    "btn",
	"input:image":    "btn",
	"input:checkbox": "chk",
	"input:radio":    "radio",
	"input:range":    "slider",
	"input:file":     "file",
	"input":          "input",
	"textarea":       "input",
	"select":         "list",
	"option":         "option",
	"img":            "img",
	"label":          "txt",
	"span":           "txt",
	"p":              "txt",
	"h1":             "txt",
	"h2":             "txt",
	"h3":             "txt",
	"h4":             "txt",
	"li":             "row",
	"td":             "cell",
	"div":            "group",
	"form":           "group",
	"nav":            "toolbar",
}

// AriaRoleMap maps explicit ARIA role attributes to compact role codes.
// An ARIA role takes precedence over the tag.
var AriaRoleMap = map[string]string{
	"button":           "btn",
	"link":             "lnk",
	"textbox":          "input",
	"searchbox":        "input",
	"combobox":         "input",
	"checkbox":         "chk",
	"radio":            "radio",
	"switch":           "toggle",
	"tab":              "tab",
	"menuitem":         "menuitem",
	"menuitemcheckbox": "menuitem",
	"option":           "option",
}

// MetaRoles maps meta-role names to the concrete roles they expand to.
// "editable" covers elements that accept typed text; "clickable" covers
// everything a user would plausibly press.
var MetaRoles = map[string][]string{
	"editable":  {"input"},
	"clickable": {"btn", "lnk", "chk", "radio", "toggle", "tab", "menuitem", "option", "list", "input", "file"},
}

// ExpandRoles expands any meta-roles in the given list to their concrete roles.
// Non-meta roles are passed through unchanged. Duplicates are removed.
func ExpandRoles(roles []string) []string {
	seen := make(map[string]bool, len(roles))
	var expanded []string
	for _, r := range roles {
		if concrete, ok := MetaRoles[r]; ok {
			for _, c := range concrete {
				if !seen[c] {
					seen[c] = true
					expanded = append(expanded, c)
				}
			}
		} else if !seen[r] {
			seen[r] = true
			expanded = append(expanded, r)
		}
	}
	return expanded
}

// MapRole converts an HTML tag, its input type and ARIA role to a compact code.
func MapRole(tag, inputType, ariaRole string) string {
	if short, ok := AriaRoleMap[strings.ToLower(ariaRole)]; ok {
		return short
	}
	tag = strings.ToLower(tag)
	if tag == "input" && inputType != "" {
		if short, ok := RoleMap["input:"+strings.ToLower(inputType)]; ok {
			return short
		}
	}
	if short, ok := RoleMap[tag]; ok {
		return short
	}
	return "other"
}
