// Package forms validates flat text forms submitted from live views.
//
// A Schema lists fields in display order, each with rules checked in turn;
// the first failing rule sets that field's message. Errors are keyed by
// field name, so a view can clear one field's message when it is edited.
package forms

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Rule checks one value and returns a message when it fails.
type Rule func(value string) (message string, ok bool)

// Required fails on empty or whitespace-only values.
func Required(message string) Rule {
	return func(value string) (string, bool) {
		if strings.TrimSpace(value) == "" {
			return message, false
		}
		return "", true
	}
}

// Matches fails when the value does not match re. The value is not
// trimmed, so surrounding spaces count against patterns that forbid them.
func Matches(re *regexp.Regexp, message string) Rule {
	return func(value string) (string, bool) {
		if !re.MatchString(value) {
			return message, false
		}
		return "", true
	}
}

// MaxLength fails when the value is longer than n runes.
func MaxLength(n int, message string) Rule {
	return func(value string) (string, bool) {
		if len([]rune(value)) > n {
			return message, false
		}
		return "", true
	}
}

// Field pairs a name with its rules.
type Field struct {
	Name  string
	Rules []Rule
}

// Schema is an ordered set of fields.
type Schema []Field

// Has reports whether the schema declares name.
func (s Schema) Has(name string) bool {
	for _, f := range s {
		if f.Name == name {
			return true
		}
	}
	return false
}

// Validate runs every field's rules against values. Missing values count
// as empty.
func (s Schema) Validate(values map[string]string) Errors {
	errs := make(Errors)
	for _, f := range s {
		v := values[f.Name]
		for _, rule := range f.Rules {
			if msg, ok := rule(v); !ok {
				errs[f.Name] = msg
				break
			}
		}
	}
	return errs
}

// Bind copies the schema's string fields out of an event payload. Non-string
// payload values are formatted; absent ones are skipped.
func (s Schema) Bind(payload map[string]any) map[string]string {
	values := make(map[string]string, len(s))
	for _, f := range s {
		raw, ok := payload[f.Name]
		if !ok || raw == nil {
			continue
		}
		switch v := raw.(type) {
		case string:
			values[f.Name] = v
		default:
			values[f.Name] = fmt.Sprint(v)
		}
	}
	return values
}

// Errors maps a field name to its message. An empty map means valid.
type Errors map[string]string

// Valid reports whether no field failed.
func (e Errors) Valid() bool {
	return len(e) == 0
}

// Get returns the message for field, or "".
func (e Errors) Get(field string) string {
	return e[field]
}

// Clear removes field's message and reports whether one was present.
func (e Errors) Clear(field string) bool {
	if _, ok := e[field]; !ok {
		return false
	}
	delete(e, field)
	return true
}

// Fields returns the failing field names, sorted.
func (e Errors) Fields() []string {
	out := make([]string, 0, len(e))
	for f := range e {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}
