// Package lightbox is the enlarged-image viewer state machine. It walks the
// image catalog cyclically: next after the last image is the first, prev
// before the first is the last.
package lightbox

import (
	"github.com/gabrielmiguelok/pakheritage/internal/content"
)

// State is what the viewer shows. The zero value is closed.
type State struct {
	IsOpen  bool   `json:"is_open"`
	ImageID string `json:"image_id"`
}

// Closed reports whether s is the closed state {false, ""}.
func (s State) Closed() bool {
	return !s.IsOpen && s.ImageID == ""
}

// Catalog is the ordered image list the controller walks.
type Catalog interface {
	Len() int
	At(i int) content.ImageRecord
	IndexOf(id string) int
	Find(id string) (content.ImageRecord, bool)
}

// Controller owns one connection's lightbox state. It is not safe for
// concurrent use; the owning view's message loop serialises access.
type Controller struct {
	catalog Catalog
	state   State
}

// New creates a closed controller over catalog.
func New(catalog Catalog) *Controller {
	return &Controller{catalog: catalog}
}

// State returns the current state.
func (c *Controller) State() State {
	return c.state
}

// Open shows id. The id is not checked; an unknown id renders nothing.
func (c *Controller) Open(id string) {
	c.state = State{IsOpen: true, ImageID: id}
}

// Close hides the viewer and forgets the image.
func (c *Controller) Close() {
	c.state = State{}
}

// Next moves to the following image, wrapping to the first. It does
// nothing while closed. An unknown current id has index -1, so Next lands
// on the first image.
func (c *Controller) Next() {
	c.step(1)
}

// Prev moves to the preceding image, wrapping to the last. An unknown
// current id lands on the last image.
func (c *Controller) Prev() {
	c.step(-1)
}

func (c *Controller) step(delta int) {
	n := c.catalog.Len()
	if !c.state.IsOpen || n == 0 {
		return
	}

	i := c.catalog.IndexOf(c.state.ImageID)
	var next int
	switch {
	case i < 0 && delta < 0:
		next = n - 1
	case i < 0:
		next = 0
	default:
		next = ((i+delta)%n + n) % n
	}
	c.state.ImageID = c.catalog.At(next).ID
}

// Current returns the image to display. ok is false when closed or when
// the id is not in the catalog.
func (c *Controller) Current() (img content.ImageRecord, ok bool) {
	if !c.state.IsOpen {
		return content.ImageRecord{}, false
	}
	return c.catalog.Find(c.state.ImageID)
}

// Position returns the 1-based position of the current image and the
// catalog size, for a "3 / 8" counter. It returns 0 when nothing shows.
func (c *Controller) Position() (pos, total int) {
	total = c.catalog.Len()
	if _, ok := c.Current(); !ok {
		return 0, total
	}
	return c.catalog.IndexOf(c.state.ImageID) + 1, total
}

// Key applies a keyboard key and reports whether the state changed.
// Escape closes; ArrowRight and ArrowLeft navigate. Keys are ignored while
// closed.
func (c *Controller) Key(key string) bool {
	if !c.state.IsOpen {
		return false
	}
	before := c.state
	switch key {
	case "Escape", "Esc":
		c.Close()
	case "ArrowRight", "Right":
		c.Next()
	case "ArrowLeft", "Left":
		c.Prev()
	default:
		return false
	}
	return c.state != before
}
