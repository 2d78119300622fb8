package components

import (
	"fmt"
	"html"
	"strings"

	"github.com/gabrielmiguelok/pakheritage/internal/content"
)

// NavbarOptions configures the navbar component.
type NavbarOptions struct {
	// Brand is the logo text
	Brand string
	// Items are the section anchors
	Items []content.NavItem
	// Active is the id of the highlighted item
	Active string
	// Scrolled switches to the solid background
	Scrolled bool
	// MenuOpen expands the mobile menu
	MenuOpen bool
}

// RenderNavbar generates the fixed navigation bar. Everything inside the
// navbar slot is re-sent when the active item, the scroll flag or the menu
// changes.
func RenderNavbar(opts NavbarOptions) string {
	var sb strings.Builder

	sb.WriteString(`<a href="#main-content" class="skip-link">Skip to main content</a>`)
	sb.WriteString("\n")
	sb.WriteString(`<header data-slot="navbar">`)
	sb.WriteString(fmt.Sprintf(`<nav class="%s" aria-label="Main navigation">`, classes("nav", when(opts.Scrolled, "scrolled"))))
	sb.WriteString(`<div class="container nav-inner">`)

	sb.WriteString(fmt.Sprintf(`<a href="#home" class="logo"%s>%s</a>`,
		click("nav:select", "id", "home"), html.EscapeString(opts.Brand)))

	sb.WriteString(`<div class="nav-links">`)
	sb.WriteString(renderNavItems(opts))
	sb.WriteString(`</div>`)

	sb.WriteString(fmt.Sprintf(`<button type="button" class="%s" aria-label="Toggle menu" aria-expanded="%t" aria-controls="mobile-menu"%s><span></span><span></span><span></span></button>`,
		classes("nav-toggle", when(opts.MenuOpen, "open")), opts.MenuOpen, click("nav:toggle")))

	sb.WriteString(`</div>`)
	sb.WriteString(fmt.Sprintf(`<div id="mobile-menu" class="%s">`, classes("mobile-menu", when(opts.MenuOpen, "open"))))
	sb.WriteString(renderNavItems(opts))
	sb.WriteString(`</div>`)
	sb.WriteString(`</nav>`)
	sb.WriteString(`</header>`)
	sb.WriteString("\n")

	return sb.String()
}

func renderNavItems(opts NavbarOptions) string {
	var sb strings.Builder
	for _, item := range opts.Items {
		active := item.ID == opts.Active
		current := ""
		if active {
			current = ` aria-current="true"`
		}
		sb.WriteString(fmt.Sprintf(`<a href="%s" class="%s"%s%s>%s</a>`,
			html.EscapeString(item.Href()),
			classes("nav-link", when(active, "active")),
			current,
			click("nav:select", "id", item.ID),
			html.EscapeString(item.Label)))
	}
	return sb.String()
}
