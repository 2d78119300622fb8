// Package viewport derives UI flags from the page scroll position and
// latches sections as they scroll into view.
package viewport

// Scroll thresholds in CSS pixels.
const (
	NavScrolledAfter = 50
	BackToTopAfter   = 300
	RevealRatio      = 0.1
)

// Flags are the scroll-dependent bits of the page.
type Flags struct {
	NavScrolled   bool
	ShowBackToTop bool
}

// Derive computes the flags for a vertical scroll offset.
func Derive(scrollY float64) Flags {
	return Flags{
		NavScrolled:   scrollY > NavScrolledAfter,
		ShowBackToTop: scrollY > BackToTopAfter,
	}
}

// Tracker remembers the last flags so scroll reports that change nothing
// can be skipped.
type Tracker struct {
	flags Flags
}

// Update applies a scroll offset and reports whether any flag changed.
// Negative offsets (overscroll) count as zero.
func (t *Tracker) Update(scrollY float64) bool {
	if scrollY < 0 {
		scrollY = 0
	}
	next := Derive(scrollY)
	if next == t.flags {
		return false
	}
	t.flags = next
	return true
}

// Flags returns the current flags.
func (t *Tracker) Flags() Flags { return t.flags }

// Reveal latches sections once they are at least RevealRatio visible.
// A revealed section stays revealed. Only the ids given to NewReveal are
// tracked.
type Reveal struct {
	known map[string]struct{}
	seen  map[string]bool
}

// NewReveal creates a tracker for ids with nothing revealed.
func NewReveal(ids ...string) *Reveal {
	known := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		known[id] = struct{}{}
	}
	return &Reveal{known: known, seen: make(map[string]bool, len(ids))}
}

// Observe records an intersection ratio for id and reports whether id
// became revealed by it. Unknown ids are ignored.
func (r *Reveal) Observe(id string, ratio float64) bool {
	if _, ok := r.known[id]; !ok || r.seen[id] || ratio < RevealRatio {
		return false
	}
	r.seen[id] = true
	return true
}

// Visible reports whether id has been revealed.
func (r *Reveal) Visible(id string) bool {
	return r.seen[id]
}
