// Package schema derives JSON Schemas from Go types and validates documents
// against them.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
	sjsonschema "github.com/santhosh-tekuri/jsonschema/v6"
)

// Validator checks JSON documents against one compiled schema.
type Validator struct {
	name   string
	doc    []byte
	schema *sjsonschema.Schema
}

// Generate reflects v into an indented JSON Schema document.
func Generate(v interface{}, id, title string) ([]byte, error) {
	r := new(jsonschema.Reflector)
	r.DoNotReference = true
	r.AllowAdditionalProperties = true

	s := r.Reflect(v)
	s.ID = jsonschema.ID(id)
	s.Title = title

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	return data, nil
}

// New reflects v and compiles the result.
func New(v interface{}, id, title string) (*Validator, error) {
	data, err := Generate(v, id, title)
	if err != nil {
		return nil, err
	}
	return Compile(id, data)
}

// Compile compiles a JSON Schema document registered under name.
func Compile(name string, data []byte) (*Validator, error) {
	var schemaDoc interface{}
	if err := json.Unmarshal(data, &schemaDoc); err != nil {
		return nil, fmt.Errorf("unmarshal schema: %w", err)
	}
	c := sjsonschema.NewCompiler()
	if err := c.AddResource(name, schemaDoc); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	sch, err := c.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Validator{name: name, doc: data, schema: sch}, nil
}

// Document returns the schema source.
func (v *Validator) Document() []byte { return v.doc }

// ValidateJSON parses data and validates it.
func (v *Validator) ValidateJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("parse json: %w", err)
	}
	return v.Validate(doc)
}

// Validate checks an already-decoded document (maps, slices, json.Number or
// float64 numbers). The error lists every leaf violation with its location.
func (v *Validator) Validate(doc interface{}) error {
	err := v.schema.Validate(doc)
	if err == nil {
		return nil
	}
	ve, ok := err.(*sjsonschema.ValidationError)
	if !ok {
		return err
	}
	var msgs []string
	for _, cause := range flattenValidationErrors(ve) {
		loc := "/" + strings.Join(cause.InstanceLocation, "/")
		msgs = append(msgs, fmt.Sprintf("%s: %v", loc, cause.ErrorKind))
	}
	return fmt.Errorf("%s: %s", v.name, strings.Join(msgs, "; "))
}

func flattenValidationErrors(ve *sjsonschema.ValidationError) []*sjsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return []*sjsonschema.ValidationError{ve}
	}
	var out []*sjsonschema.ValidationError
	for _, c := range ve.Causes {
		out = append(out, flattenValidationErrors(c)...)
	}
	return out
}
