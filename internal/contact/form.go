// Package contact implements the contact form: field validation, the
// submission status banner and the backend the message is handed to.
package contact

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"

	"github.com/gabrielmiguelok/pakheritage/pkg/forms"
)

// Field names, as used in event payloads and error maps.
const (
	FieldName    = "name"
	FieldEmail   = "email"
	FieldSubject = "subject"
	FieldMessage = "message"
)

// EmailPattern is a shape check (local@domain.tld), not RFC validation.
var EmailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Length caps, in runes.
const (
	MaxNameLength    = 100
	MaxEmailLength   = 254
	MaxSubjectLength = 200
	MaxMessageLength = 5000
)

// Schema lists the fields in display order with their rules.
var Schema = forms.Schema{
	{Name: FieldName, Rules: []forms.Rule{
		forms.Required("Name is required"),
		forms.MaxLength(MaxNameLength, "Name is too long"),
	}},
	{Name: FieldEmail, Rules: []forms.Rule{
		forms.Required("Email is required"),
		forms.MaxLength(MaxEmailLength, "Email is too long"),
		forms.Matches(EmailPattern, "Invalid email format"),
	}},
	{Name: FieldSubject, Rules: []forms.Rule{
		forms.Required("Subject is required"),
		forms.MaxLength(MaxSubjectLength, "Subject is too long"),
	}},
	{Name: FieldMessage, Rules: []forms.Rule{
		forms.Required("Message is required"),
		forms.MaxLength(MaxMessageLength, "Message is too long"),
	}},
}

// Fields is the form's text.
type Fields struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Values returns the fields keyed by name.
func (f Fields) Values() map[string]string {
	return map[string]string{
		FieldName:    f.Name,
		FieldEmail:   f.Email,
		FieldSubject: f.Subject,
		FieldMessage: f.Message,
	}
}

// Get returns the value of field, or "".
func (f Fields) Get(field string) string {
	return f.Values()[field]
}

func (f *Fields) set(field, value string) {
	switch field {
	case FieldName:
		f.Name = value
	case FieldEmail:
		f.Email = value
	case FieldSubject:
		f.Subject = value
	case FieldMessage:
		f.Message = value
	}
}

// Validate checks every field. An empty map means the form is valid.
func Validate(f Fields) forms.Errors {
	return Schema.Validate(f.Values())
}

var strict = bluemonday.StrictPolicy()

// Sanitize strips markup from every field.
func Sanitize(f Fields) Fields {
	return Fields{
		Name:    strict.Sanitize(f.Name),
		Email:   strict.Sanitize(f.Email),
		Subject: strict.Sanitize(f.Subject),
		Message: strict.Sanitize(f.Message),
	}
}

// Status drives the banner under the form.
type Status int

const (
	StatusIdle Status = iota
	StatusSubmitting
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusSubmitting:
		return "submitting"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Form is one connection's contact form. Timers are the caller's job: Form
// only records transitions and hands out a generation number per
// submission so late timer messages can be recognised and dropped.
type Form struct {
	fields  Fields
	errors  forms.Errors
	status  Status
	pending Fields
	gen     uint64
}

// NewForm returns an empty, idle form.
func NewForm() *Form {
	return &Form{errors: forms.Errors{}}
}

// Fields returns the current text.
func (f *Form) Fields() Fields { return f.fields }

// Errors returns a copy of the field errors.
func (f *Form) Errors() forms.Errors {
	out := make(forms.Errors, len(f.errors))
	for k, v := range f.errors {
		out[k] = v
	}
	return out
}

// Error returns field's message, or "".
func (f *Form) Error(field string) string { return f.errors.Get(field) }

// Status returns the banner status.
func (f *Form) Status() Status { return f.status }

// Generation identifies the latest submission.
func (f *Form) Generation() uint64 { return f.gen }

// Change sets field to value and clears that field's error only. Unknown
// fields are ignored and return false.
func (f *Form) Change(field, value string) bool {
	if !Schema.Has(field) {
		return false
	}
	f.fields.set(field, value)
	f.errors.Clear(field)
	return true
}

// BeginSubmit validates the form. With errors it records them and returns
// false; while a submission is in flight it returns false and changes
// nothing. Otherwise the status becomes submitting, a sanitised copy of
// the fields is held for the submitter and the generation advances.
func (f *Form) BeginSubmit() bool {
	if f.status == StatusSubmitting {
		return false
	}
	errs := Validate(f.fields)
	if !errs.Valid() {
		f.errors = errs
		return false
	}
	f.errors = forms.Errors{}
	f.status = StatusSubmitting
	f.pending = Sanitize(f.fields)
	f.gen++
	return true
}

// Pending returns the sanitised fields of the in-flight submission.
func (f *Form) Pending() Fields { return f.pending }

// Complete records the submitter's result for generation gen. Success
// clears the fields; failure keeps them so the visitor can retry. A stale
// gen or a form that is not submitting is ignored and returns false.
func (f *Form) Complete(gen uint64, err error) bool {
	if gen != f.gen || f.status != StatusSubmitting {
		return false
	}
	f.pending = Fields{}
	if err != nil {
		f.status = StatusError
		return true
	}
	f.status = StatusSuccess
	f.fields = Fields{}
	return true
}

// ResetStatus hides the banner for generation gen.
func (f *Form) ResetStatus(gen uint64) bool {
	if gen != f.gen || (f.status != StatusSuccess && f.status != StatusError) {
		return false
	}
	f.status = StatusIdle
	return true
}
