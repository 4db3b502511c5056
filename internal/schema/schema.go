// Package schema describes the record shape each task must return and
// validates generated output against it.
package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// FieldType is the declared type of one output field
type FieldType int

const (
	String FieldType = iota
	OptionalString
	StringList
	OptionalStringList
	OptionalBool
)

// Optional reports whether the field may be null or absent.
func (t FieldType) Optional() bool {
	switch t {
	case OptionalString, OptionalStringList, OptionalBool:
		return true
	default:
		return false
	}
}

func (t FieldType) String() string {
	switch t {
	case String:
		return "string"
	case OptionalString:
		return "optional string"
	case StringList:
		return "list of string"
	case OptionalStringList:
		return "optional list of string"
	case OptionalBool:
		return "optional boolean"
	default:
		return "unknown"
	}
}

// Field is one named, typed attribute of an output entry
type Field struct {
	Name        string
	Type        FieldType
	Description string
}

// Schema is the immutable output contract of one task: an object holding
// Key mapped to a list of entries with the declared fields.
type Schema struct {
	name   string
	key    string
	fields []Field

	once       sync.Once
	compiled   *jsonschema.Schema
	compileErr error
}

// New builds a schema. Field order is preserved for prompts and JSON Schema.
func New(name, key string, fields ...Field) *Schema {
	fs := make([]Field, len(fields))
	copy(fs, fields)
	return &Schema{name: name, key: key, fields: fs}
}

// Name returns the schema's display name (e.g. "ActivityOutputSchema").
func (s *Schema) Name() string { return s.name }

// Key returns the top-level list key (e.g. "activities").
func (s *Schema) Key() string { return s.key }

// Fields returns a copy of the field list.
func (s *Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// ValidationError lists every way a document failed its schema
type ValidationError struct {
	Schema   string
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("output does not match %s: %d problem(s): %s",
		e.Schema, len(e.Problems), strings.Join(e.Problems, "; "))
}

// Validate parses raw JSON and checks it against the schema. Only declared
// fields are kept in the returned entries; values are never coerced.
func (s *Schema) Validate(raw []byte) ([]map[string]any, error) {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, &ValidationError{Schema: s.name, Problems: []string{fmt.Sprintf("invalid JSON: %v", err)}}
	}
	return s.ValidateValue(doc)
}

// ValidateValue checks an already decoded document.
func (s *Schema) ValidateValue(doc any) ([]map[string]any, error) {
	compiled, err := s.validator()
	if err != nil {
		return nil, err
	}

	if err := compiled.Validate(doc); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return nil, &ValidationError{Schema: s.name, Problems: problems(verr)}
		}
		return nil, &ValidationError{Schema: s.name, Problems: []string{err.Error()}}
	}

	return s.project(doc.(map[string]any)), nil
}

// project keeps the declared fields of each entry; absent optional fields
// become null.
func (s *Schema) project(obj map[string]any) []map[string]any {
	list := obj[s.key].([]any)
	entries := make([]map[string]any, 0, len(list))
	for _, item := range list {
		src := item.(map[string]any)
		entry := make(map[string]any, len(s.fields))
		for _, f := range s.fields {
			entry[f.Name] = src[f.Name]
		}
		entries = append(entries, entry)
	}
	return entries
}

func (s *Schema) validator() (*jsonschema.Schema, error) {
	s.once.Do(func() {
		url := "https://basir.local/schemas/" + s.name + ".json"
		c := jsonschema.NewCompiler()
		c.Draft = jsonschema.Draft2020
		if err := c.AddResource(url, bytes.NewReader(s.validationDocument())); err != nil {
			s.compileErr = fmt.Errorf("load schema %s: %w", s.name, err)
			return
		}
		s.compiled, s.compileErr = c.Compile(url)
		if s.compileErr != nil {
			s.compileErr = fmt.Errorf("compile schema %s: %w", s.name, s.compileErr)
		}
	})
	return s.compiled, s.compileErr
}

// validationDocument is the accepting form of the schema: only required
// fields are listed as required and undeclared fields are allowed, since
// they are dropped after validation.
func (s *Schema) validationDocument() []byte {
	props := make(map[string]any, len(s.fields))
	required := make([]string, 0, len(s.fields))
	for _, f := range s.fields {
		props[f.Name] = fieldJSONSchema(f)
		if !f.Type.Optional() {
			required = append(required, f.Name)
		}
	}

	doc := map[string]any{
		"type": "object",
		"properties": map[string]any{
			s.key: map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":       "object",
					"properties": props,
					"required":   required,
				},
			},
		},
		"required": []string{s.key},
	}

	out, _ := json.Marshal(doc)
	return out
}

const missingPrefix = "missing properties: "

// problems flattens the validator's error tree into one line per failed
// check, e.g. "visas[1].Question: expected string, got number".
func problems(verr *jsonschema.ValidationError) []string {
	var out []string
	var walk func(*jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) > 0 {
			for _, cause := range e.Causes {
				walk(cause)
			}
			return
		}

		path := instancePath(e.InstanceLocation)
		if strings.HasPrefix(e.Message, missingPrefix) {
			for _, name := range strings.Split(strings.TrimPrefix(e.Message, missingPrefix), ", ") {
				out = append(out, joinPath(path, strings.Trim(name, "'"))+": required field missing")
			}
			return
		}

		if path == "" {
			path = "top level"
		}
		msg := strings.Replace(e.Message, ", but got ", ", got ", 1)
		out = append(out, path+": "+msg)
	}
	walk(verr)

	sort.Strings(out)
	return out
}

// instancePath turns a JSON pointer ("/visas/1/Question") into
// "visas[1].Question".
func instancePath(ptr string) string {
	var b strings.Builder
	for _, seg := range strings.Split(strings.TrimPrefix(ptr, "/"), "/") {
		if seg == "" {
			continue
		}
		seg = strings.NewReplacer("~1", "/", "~0", "~").Replace(seg)
		if _, err := strconv.Atoi(seg); err == nil {
			b.WriteString("[" + seg + "]")
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(seg)
	}
	return b.String()
}

func joinPath(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

// JSONSchema renders the schema as a strict JSON Schema document: every
// field is listed as required and optional fields are nullable, which is
// the form structured-output APIs accept.
func (s *Schema) JSONSchema() json.RawMessage {
	props := make(map[string]any, len(s.fields))
	required := make([]string, 0, len(s.fields))
	for _, f := range s.fields {
		props[f.Name] = fieldJSONSchema(f)
		required = append(required, f.Name)
	}

	doc := map[string]any{
		"type": "object",
		"properties": map[string]any{
			s.key: map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":                 "object",
					"properties":           props,
					"required":             required,
					"additionalProperties": false,
				},
			},
		},
		"required":             []string{s.key},
		"additionalProperties": false,
	}

	out, _ := json.Marshal(doc)
	return out
}

func fieldJSONSchema(f Field) map[string]any {
	var m map[string]any
	switch f.Type {
	case String:
		m = map[string]any{"type": "string"}
	case OptionalString:
		m = map[string]any{"type": []string{"string", "null"}}
	case StringList:
		m = map[string]any{"type": "array", "items": map[string]any{"type": "string"}}
	case OptionalStringList:
		m = map[string]any{"type": []string{"array", "null"}, "items": map[string]any{"type": "string"}}
	case OptionalBool:
		m = map[string]any{"type": []string{"boolean", "null"}}
	}
	if f.Description != "" {
		m["description"] = f.Description
	}
	return m
}

// Describe renders a compact, human-readable field list for prompts.
func (s *Schema) Describe() string {
	var b strings.Builder
	fmt.Fprintf(&b, "{\"%s\": [ {\n", s.key)
	for _, f := range s.fields {
		fmt.Fprintf(&b, "  %q: %s  // %s\n", f.Name, f.Type, f.Description)
	}
	b.WriteString("} ]}")
	return b.String()
}
