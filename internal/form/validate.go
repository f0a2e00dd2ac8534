// Package form checks user input before anything is sent to the backend.
package form

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"trackflow/internal/model"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

// ValidationError lists the fields of a form that failed validation.
type ValidationError struct {
	Form   string
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		names = append(names, f)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, f := range names {
		parts = append(parts, f+" "+e.Fields[f])
	}
	return fmt.Sprintf("invalid %s: %s", e.Form, strings.Join(parts, "; "))
}

// Validator holds the compiled schemas for the lead, order and reminder forms.
type Validator struct {
	schemas map[string]*jsonschema.Schema
}

// NewValidator compiles the embedded form schemas.
func NewValidator() (*Validator, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020

	v := &Validator{schemas: make(map[string]*jsonschema.Schema)}
	for _, name := range []string{"lead", "order", "reminder"} {
		raw, err := schemaFS.ReadFile("schemas/" + name + ".schema.json")
		if err != nil {
			return nil, err
		}
		url := fmt.Sprintf("https://trackflow.local/forms/%s.schema.json", name)
		if err := c.AddResource(url, strings.NewReader(string(raw))); err != nil {
			return nil, fmt.Errorf("load %s schema: %w", name, err)
		}
		s, err := c.Compile(url)
		if err != nil {
			return nil, fmt.Errorf("compile %s schema: %w", name, err)
		}
		v.schemas[name] = s
	}
	return v, nil
}

func (v *Validator) Lead(p model.LeadPayload) error         { return v.validate("lead", p) }
func (v *Validator) Order(p model.OrderPayload) error       { return v.validate("order", p) }
func (v *Validator) Reminder(p model.ReminderPayload) error { return v.validate("reminder", p) }

func (v *Validator) validate(form string, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s form: %w", form, err)
	}
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return fmt.Errorf("decode %s form: %w", form, err)
	}

	err = v.schemas[form].Validate(doc)
	if err == nil {
		return nil
	}
	verr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return err
	}
	out := &ValidationError{Form: form, Fields: make(map[string]string)}
	collect(verr, out.Fields)
	return out
}

// collect walks to the leaf causes, which carry the field-level failures.
func collect(e *jsonschema.ValidationError, fields map[string]string) {
	if len(e.Causes) > 0 {
		for _, c := range e.Causes {
			collect(c, fields)
		}
		return
	}
	field := strings.TrimPrefix(e.InstanceLocation, "/")
	if field == "" {
		field = "form"
	}
	if _, seen := fields[field]; !seen {
		fields[field] = describe(e)
	}
}

func describe(e *jsonschema.ValidationError) string {
	switch {
	case strings.HasSuffix(e.KeywordLocation, "/pattern"),
		strings.HasSuffix(e.Message, "but got null"):
		return "is required"
	case strings.HasSuffix(e.KeywordLocation, "/enum"):
		return "is not a known stage"
	case strings.HasSuffix(e.KeywordLocation, "/minimum"):
		return "must reference a saved record"
	default:
		return e.Message
	}
}
