// Package content holds the site copy and the image catalog. Everything is
// read once from an embedded YAML file and never mutated afterwards.
package content

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"net/url"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed content.yaml
var embedded []byte

// Content errors.
var (
	ErrEmptyCatalog    = errors.New("image catalog is empty")
	ErrDuplicateID     = errors.New("duplicate id")
	ErrUnknownCategory = errors.New("unknown category")
	ErrMissingField    = errors.New("missing field")
)

// Link is a labelled href.
type Link struct {
	Label string `yaml:"label"`
	Href  string `yaml:"href"`
}

// NavItem is a section anchor in the navbar.
type NavItem struct {
	ID    string `yaml:"id"`
	Label string `yaml:"label"`
}

// Href returns the in-page anchor.
func (n NavItem) Href() string { return "#" + n.ID }

// Site is document-wide metadata.
type Site struct {
	Title           string   `yaml:"title"`
	Brand           string   `yaml:"brand"`
	FooterBrand     string   `yaml:"footer_brand"`
	Description     string   `yaml:"description"`
	Keywords        []string `yaml:"keywords"`
	ThemeColor      string   `yaml:"theme_color"`
	CopyrightHolder string   `yaml:"copyright_holder"`
}

// Hero is the banner copy.
type Hero struct {
	Headline     string `yaml:"headline"`
	Highlight    string `yaml:"highlight"`
	Subtitle     string `yaml:"subtitle"`
	PrimaryCTA   Link   `yaml:"primary_cta"`
	SecondaryCTA Link   `yaml:"secondary_cta"`
}

// Stat is one figure in the about section.
type Stat struct {
	Number string `yaml:"number"`
	Label  string `yaml:"label"`
}

// About is the about section. Description is Markdown.
type About struct {
	Title       string   `yaml:"title"`
	Subtitle    string   `yaml:"subtitle"`
	Image       string   `yaml:"image"`
	ImageAlt    string   `yaml:"image_alt"`
	Description string   `yaml:"description"`
	Highlights  []string `yaml:"highlights"`
	Stats       []Stat   `yaml:"stats"`
}

// Tradition is one card in the traditions section. Details is Markdown.
type Tradition struct {
	ID       string `yaml:"id"`
	Title    string `yaml:"title"`
	Category string `yaml:"category"`
	Icon     string `yaml:"icon"`
	Image    string `yaml:"image"`
	Summary  string `yaml:"summary"`
	Details  string `yaml:"details"`
}

// Traditions is the traditions section.
type Traditions struct {
	Title string      `yaml:"title"`
	Intro string      `yaml:"intro"`
	CTA   string      `yaml:"cta"`
	Items []Tradition `yaml:"items"`
}

// Find returns the tradition with id.
func (t Traditions) Find(id string) (Tradition, bool) {
	for _, item := range t.Items {
		if item.ID == id {
			return item, true
		}
	}
	return Tradition{}, false
}

// GallerySection is the gallery copy plus its images.
type GallerySection struct {
	Title       string        `yaml:"title"`
	Description string        `yaml:"description"`
	CTA         string        `yaml:"cta"`
	Images      []ImageRecord `yaml:"images"`
}

// InfoCard is a contact detail. Href may be empty.
type InfoCard struct {
	Title string `yaml:"title"`
	Value string `yaml:"value"`
	Href  string `yaml:"href"`
}

// Contact is the contact section copy.
type Contact struct {
	Title    string     `yaml:"title"`
	Intro    string     `yaml:"intro"`
	Info     []InfoCard `yaml:"info"`
	MapTitle string     `yaml:"map_title"`
	MapEmbed string     `yaml:"map_embed"`
}

// Footer is the footer copy.
type Footer struct {
	Blurb      string     `yaml:"blurb"`
	Contact    []InfoCard `yaml:"contact"`
	Newsletter string     `yaml:"newsletter"`
}

// Content is the whole site. Catalog is built from Gallery.Images.
type Content struct {
	Site       Site           `yaml:"site"`
	Nav        []NavItem      `yaml:"nav"`
	Hero       Hero           `yaml:"hero"`
	About      About          `yaml:"about"`
	Traditions Traditions     `yaml:"traditions"`
	Gallery    GallerySection `yaml:"gallery"`
	Contact    Contact        `yaml:"contact"`
	Footer     Footer         `yaml:"footer"`
	Socials    []Link         `yaml:"socials"`

	Catalog *Catalog `yaml:"-"`
}

// Decode reads content YAML from r. Unknown keys are rejected.
func Decode(r io.Reader) (*Content, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var c Content
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("decode content: %w", err)
	}

	catalog, err := NewCatalog(c.Gallery.Images)
	if err != nil {
		return nil, err
	}
	c.Catalog = catalog

	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Content) validate() error {
	if c.Site.Title == "" {
		return fmt.Errorf("site title: %w", ErrMissingField)
	}
	seen := make(map[string]bool, len(c.Traditions.Items))
	for i, t := range c.Traditions.Items {
		if t.ID == "" || t.Title == "" {
			return fmt.Errorf("tradition %d: %w", i, ErrMissingField)
		}
		if seen[t.ID] {
			return fmt.Errorf("tradition %q: %w", t.ID, ErrDuplicateID)
		}
		seen[t.ID] = true
	}
	return nil
}

var (
	defaultOnce    sync.Once
	defaultContent *Content
	defaultErr     error
)

// Default returns the embedded content, decoded once.
func Default() (*Content, error) {
	defaultOnce.Do(func() {
		defaultContent, defaultErr = Decode(bytes.NewReader(embedded))
	})
	return defaultContent, defaultErr
}

// MustDefault is Default for program start-up.
func MustDefault() *Content {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

// ImageOrigins returns the sorted scheme://host origins of every remote
// image, for the Content-Security-Policy.
func (c *Content) ImageOrigins() []string {
	urls := []string{c.About.Image}
	for _, t := range c.Traditions.Items {
		urls = append(urls, t.Image)
	}
	for _, img := range c.Catalog.All() {
		urls = append(urls, img.Src)
	}
	return origins(urls)
}

// FrameOrigins returns the origins of embedded frames.
func (c *Content) FrameOrigins() []string {
	return origins([]string{c.Contact.MapEmbed})
}

func origins(urls []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, raw := range urls {
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" || (u.Scheme != "https" && u.Scheme != "http") {
			continue
		}
		o := u.Scheme + "://" + u.Host
		if !seen[o] {
			seen[o] = true
			out = append(out, o)
		}
	}
	sort.Strings(out)
	return out
}
