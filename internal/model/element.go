package model

// Element is a candidate target on a web page, extracted from a DOM snapshot.
type Element struct {
	ID          int    `yaml:"i"              json:"i"`              // Sequential integer ID within one snapshot
	Role        string `yaml:"r"              json:"r"`              // Abbreviated role code
	Tag         string `yaml:"tag"            json:"tag"`            // Lowercase HTML tag name
	Type        string `yaml:"type,omitempty" json:"type,omitempty"` // input type attribute
	Selector    string `yaml:"sel"            json:"sel"`            // CSS selector unique within the snapshot
	Title       string `yaml:"t,omitempty"    json:"t,omitempty"`    // Visible text or associated label
	Value       string `yaml:"v,omitempty"    json:"v,omitempty"`    // Current value attribute
	Description string `yaml:"d,omitempty"    json:"d,omitempty"`    // placeholder, aria-label, title attribute
	Name        string `yaml:"n,omitempty"    json:"n,omitempty"`    // name and id attributes
	Enabled     *bool  `yaml:"e,omitempty"    json:"e,omitempty"`    // nil or true = enabled (omit); false = disabled (include)
	Hidden      bool   `yaml:"h,omitempty"    json:"h,omitempty"`    // hidden attribute, type=hidden or inline display:none
}

// IsEnabled reports whether the element accepts interaction.
func (e Element) IsEnabled() bool { return e.Enabled == nil || *e.Enabled }
