package newsletter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignup_SubmitAndReset(t *testing.T) {
	s := New()
	assert.True(t, s.Change("reader@example.pk"))
	assert.False(t, s.Change("reader@example.pk"))

	assert.True(t, s.Submit())
	assert.True(t, s.Submitted())
	assert.Equal(t, "", s.Email())
	assert.Equal(t, []string{"reader@example.pk"}, s.Subscribed())

	assert.True(t, s.Reset(s.Generation()))
	assert.False(t, s.Submitted())
}

func TestSignup_BlankIgnored(t *testing.T) {
	s := New()
	assert.False(t, s.Submit())

	s.Change("   ")
	assert.False(t, s.Submit())
	assert.False(t, s.Submitted())
	assert.Equal(t, uint64(0), s.Generation())
}

func TestSignup_NoValidationBeyondNonEmpty(t *testing.T) {
	s := New()
	s.Change("not-an-email")
	assert.True(t, s.Submit())
}

func TestSignup_WhileShowing(t *testing.T) {
	s := New()
	s.Change("a@b.pk")
	s.Submit()
	gen := s.Generation()

	s.Change("c@d.pk")
	assert.False(t, s.Submit(), "the button is disabled while the confirmation shows")
	assert.Equal(t, "c@d.pk", s.Email())

	assert.False(t, s.Reset(gen+1))
	assert.True(t, s.Submitted())
	assert.True(t, s.Reset(gen))
	assert.False(t, s.Reset(gen))
}
