package content

import (
	"fmt"
	"net/url"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Category groups gallery images.
type Category string

const (
	Festivals          Category = "festivals"
	CategoryTraditions Category = "traditions"
	Art                Category = "art"
	Architecture       Category = "architecture"
)

// Categories lists every category in display order.
var Categories = []Category{Festivals, CategoryTraditions, Art, Architecture}

var titleCaser = cases.Title(language.English)

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case Festivals, CategoryTraditions, Art, Architecture:
		return true
	}
	return false
}

// Label is the display form, e.g. "Architecture".
func (c Category) Label() string {
	return titleCaser.String(string(c))
}

// ImageRecord is one gallery image.
type ImageRecord struct {
	ID       string   `yaml:"id" json:"id"`
	Src      string   `yaml:"src" json:"src"`
	Alt      string   `yaml:"alt" json:"alt"`
	Caption  string   `yaml:"caption" json:"caption"`
	Category Category `yaml:"category" json:"category"`
}

// Catalog is the ordered, immutable image list. The order defines lightbox
// navigation.
type Catalog struct {
	images []ImageRecord
	index  map[string]int
}

// NewCatalog validates images and builds a catalog. Ids must be unique and
// non-empty, categories known and sources absolute URLs.
func NewCatalog(images []ImageRecord) (*Catalog, error) {
	if len(images) == 0 {
		return nil, ErrEmptyCatalog
	}

	c := &Catalog{
		images: make([]ImageRecord, len(images)),
		index:  make(map[string]int, len(images)),
	}
	copy(c.images, images)

	for i, img := range c.images {
		if img.ID == "" {
			return nil, fmt.Errorf("image %d id: %w", i, ErrMissingField)
		}
		if _, dup := c.index[img.ID]; dup {
			return nil, fmt.Errorf("image %q: %w", img.ID, ErrDuplicateID)
		}
		if !img.Category.Valid() {
			return nil, fmt.Errorf("image %q: %w: %q", img.ID, ErrUnknownCategory, img.Category)
		}
		if u, err := url.Parse(img.Src); err != nil || !u.IsAbs() {
			return nil, fmt.Errorf("image %q src %q: not an absolute url", img.ID, img.Src)
		}
		c.index[img.ID] = i
	}
	return c, nil
}

// Len returns the number of images.
func (c *Catalog) Len() int { return len(c.images) }

// At returns the image at position i. It panics when i is out of range.
func (c *Catalog) At(i int) ImageRecord { return c.images[i] }

// IndexOf returns the position of id, or -1.
func (c *Catalog) IndexOf(id string) int {
	if i, ok := c.index[id]; ok {
		return i
	}
	return -1
}

// Find returns the image with id.
func (c *Catalog) Find(id string) (ImageRecord, bool) {
	i := c.IndexOf(id)
	if i < 0 {
		return ImageRecord{}, false
	}
	return c.images[i], true
}

// All returns a copy of the images in catalog order.
func (c *Catalog) All() []ImageRecord {
	out := make([]ImageRecord, len(c.images))
	copy(out, c.images)
	return out
}

// IDs returns the ids in catalog order.
func (c *Catalog) IDs() []string {
	ids := make([]string, len(c.images))
	for i, img := range c.images {
		ids[i] = img.ID
	}
	return ids
}

// Filter returns the images in category, in catalog order. An empty
// category returns everything.
func (c *Catalog) Filter(category Category) []ImageRecord {
	if category == "" {
		return c.All()
	}
	var out []ImageRecord
	for _, img := range c.images {
		if img.Category == category {
			out = append(out, img)
		}
	}
	return out
}

// Counts returns how many images each category holds.
func (c *Catalog) Counts() map[Category]int {
	counts := make(map[Category]int, len(Categories))
	for _, img := range c.images {
		counts[img.Category]++
	}
	return counts
}
