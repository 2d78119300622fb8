// Package newsletter is the footer signup: an email box and a
// "Subscribed" flag that shows for a while after submitting.
package newsletter

import "strings"

// Signup is one connection's newsletter form.
type Signup struct {
	email     string
	submitted bool
	gen       uint64
	emails    []string
}

// New returns an empty signup.
func New() *Signup {
	return &Signup{}
}

// Email returns the current input.
func (s *Signup) Email() string { return s.email }

// Submitted reports whether the confirmation is showing.
func (s *Signup) Submitted() bool { return s.submitted }

// Generation identifies the latest submission, for matching reset timers.
func (s *Signup) Generation() uint64 { return s.gen }

// Subscribed returns the addresses submitted on this connection.
func (s *Signup) Subscribed() []string {
	return append([]string(nil), s.emails...)
}

// Change sets the input and reports whether it changed.
func (s *Signup) Change(email string) bool {
	if s.email == email {
		return false
	}
	s.email = email
	return true
}

// Submit accepts a non-blank email: the flag turns on, the input clears
// and the generation advances. Blank input and submits while the flag is
// showing do nothing and return false.
func (s *Signup) Submit() bool {
	email := strings.TrimSpace(s.email)
	if email == "" || s.submitted {
		return false
	}
	s.emails = append(s.emails, email)
	s.email = ""
	s.submitted = true
	s.gen++
	return true
}

// Reset hides the confirmation for generation gen. Stale generations are
// ignored.
func (s *Signup) Reset(gen uint64) bool {
	if gen != s.gen || !s.submitted {
		return false
	}
	s.submitted = false
	return true
}
