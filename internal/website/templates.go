// Package website renders the heritage page as plain HTML strings: the
// document head, the inline stylesheet and, in components, one function per
// page section. It has no state of its own; live components pass in
// whatever the sections should show.
package website

import "github.com/gabrielmiguelok/pakheritage/internal/content"

// PageConfig defines the document metadata for a page.
type PageConfig struct {
	// Title is the page title (shown in browser tab and search results)
	Title string
	// Description is the meta description for SEO
	Description string
	// URL is the canonical URL of the page
	URL string
	// Keywords are SEO keywords for the page
	Keywords []string
	// Author is the author meta tag
	Author string
	// OGImage is the Open Graph image URL (for social sharing)
	OGImage string
	// Language is the page language (default: "en")
	Language string
	// ThemeColor is the mobile browser theme color
	ThemeColor string
	// Favicon is the path to the favicon
	Favicon string

	// Nonce is the CSP nonce put on the inline style and script tags.
	Nonce string
	// ClientScript is the URL of the live client. Empty renders a page
	// that never connects, as in static export.
	ClientScript string
	// SameAs lists the organisation's social profiles for JSON-LD.
	SameAs []string
}

// NavLink represents a navigation link.
type NavLink struct {
	// Label is the link text
	Label string
	// URL is the link destination
	URL string
	// External indicates if the link opens in a new tab
	External bool
}

// DefaultPageConfig returns a PageConfig with sensible defaults.
func DefaultPageConfig() PageConfig {
	return PageConfig{
		Language:   "en",
		ThemeColor: Colors["primary"],
	}
}

// PageConfigFor fills a PageConfig from the site copy. The page title is
// prefixed with section when one is given.
func PageConfigFor(c *content.Content, section string) PageConfig {
	cfg := DefaultPageConfig()
	cfg.Title = c.Site.Title
	if section != "" {
		cfg.Title = section + " | " + c.Site.Title
	}
	cfg.Description = c.Site.Description
	cfg.Keywords = c.Site.Keywords
	cfg.Author = c.Site.CopyrightHolder
	if c.Site.ThemeColor != "" {
		cfg.ThemeColor = c.Site.ThemeColor
	}
	if c.Catalog != nil && c.Catalog.Len() > 0 {
		cfg.OGImage = c.Catalog.At(0).Src
	}
	for _, s := range c.Socials {
		cfg.SameAs = append(cfg.SameAs, s.Href)
	}
	return cfg
}
