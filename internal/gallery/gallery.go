// Package gallery tracks the per-card state of the image grid.
package gallery

import (
	"github.com/gabrielmiguelok/pakheritage/internal/content"
)

// Card is one grid cell. Loaded flips to true once, when the browser
// reports the image finished loading. Hidden is set on cards outside the
// active filter.
type Card struct {
	Image  content.ImageRecord
	Loaded bool
	Hidden bool
}

// Grid holds one card per catalog image, in catalog order, plus the
// active category filter.
type Grid struct {
	cards  []Card
	index  map[string]int
	filter content.Category
}

// NewGrid creates a grid with every card unloaded and no filter.
func NewGrid(catalog *content.Catalog) *Grid {
	g := &Grid{
		cards: make([]Card, catalog.Len()),
		index: make(map[string]int, catalog.Len()),
	}
	for i := 0; i < catalog.Len(); i++ {
		img := catalog.At(i)
		g.cards[i] = Card{Image: img}
		g.index[img.ID] = i
	}
	return g
}

// MarkLoaded records that id finished loading. It reports whether the flag
// changed; repeated and unknown ids return false.
func (g *Grid) MarkLoaded(id string) bool {
	i, ok := g.index[id]
	if !ok || g.cards[i].Loaded {
		return false
	}
	g.cards[i].Loaded = true
	return true
}

// SetFilter shows only cards in category; "" shows all. It reports whether
// the filter changed. Unknown categories are rejected.
func (g *Grid) SetFilter(category content.Category) bool {
	if category != "" && !category.Valid() {
		return false
	}
	if g.filter == category {
		return false
	}
	g.filter = category
	return true
}

// Filter returns the active category, or "".
func (g *Grid) Filter() content.Category {
	return g.filter
}

// Cards returns all cards in catalog order, with Hidden set from the
// active filter.
func (g *Grid) Cards() []Card {
	out := make([]Card, len(g.cards))
	for i, c := range g.cards {
		c.Hidden = g.filter != "" && c.Image.Category != g.filter
		out[i] = c
	}
	return out
}
