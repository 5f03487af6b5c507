package model

// TestCase is a named, ordered list of natural-language steps.
type TestCase struct {
	ID          string   `yaml:"id"                    json:"id"                    jsonschema:"minLength=1,description=Unique case identifier such as TC001"`
	Name        string   `yaml:"name"                  json:"name"                  jsonschema:"description=Human-readable case name"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty" jsonschema:"description=What the case checks"`
	Steps       []string `yaml:"steps"                 json:"steps"                 jsonschema:"description=Natural-language steps run in order"`
}
