package components

import (
	"fmt"
	"html"
	"strings"

	"github.com/gabrielmiguelok/pakheritage/internal/content"
)

// FooterOptions configures the footer component.
type FooterOptions struct {
	Brand   string
	Footer  content.Footer
	Nav     []content.NavItem
	Socials []content.Link
	// Copyright is the holder shown after the year.
	Copyright string
	Year      int

	// Newsletter state.
	Email      string
	Subscribed bool

	ShowBackToTop bool
}

// RenderFooter generates the page footer with quick links, contact
// details, the newsletter form and the back-to-top button.
func RenderFooter(opts FooterOptions) string {
	var sb strings.Builder

	sb.WriteString(`<footer id="footer" class="footer" role="contentinfo">`)
	sb.WriteString("\n")
	sb.WriteString(`<div class="container">`)
	sb.WriteString("\n")
	sb.WriteString(`<div class="footer-grid">`)
	sb.WriteString("\n")

	// Brand and socials
	sb.WriteString(`<div>`)
	sb.WriteString(fmt.Sprintf(`<div class="footer-brand" lang="ur" dir="rtl">%s</div>`, html.EscapeString(opts.Brand)))
	sb.WriteString(fmt.Sprintf(`<p>%s</p>`, html.EscapeString(opts.Footer.Blurb)))
	if len(opts.Socials) > 0 {
		sb.WriteString(`<div class="socials">`)
		for _, s := range opts.Socials {
			sb.WriteString(fmt.Sprintf(`<a href="%s" aria-label="Follow us on %s"%s>%s</a>`,
				html.EscapeString(s.Href), html.EscapeString(s.Label), externalLink(s.Href), html.EscapeString(s.Label)))
		}
		sb.WriteString(`</div>`)
	}
	sb.WriteString(`</div>`)
	sb.WriteString("\n")

	// Quick links
	sb.WriteString(`<nav aria-label="Footer navigation"><h3>Quick Links</h3><ul>`)
	for _, item := range opts.Nav {
		sb.WriteString(fmt.Sprintf(`<li><a href="%s"%s>%s</a></li>`,
			html.EscapeString(item.Href()), click("nav:select", "id", item.ID), html.EscapeString(item.Label)))
	}
	sb.WriteString(`</ul></nav>`)
	sb.WriteString("\n")

	// Contact
	sb.WriteString(`<div><h3>Contact Us</h3><ul>`)
	for _, c := range opts.Footer.Contact {
		sb.WriteString(fmt.Sprintf(`<li><span class="sr-only">%s: </span>%s</li>`,
			html.EscapeString(c.Title), html.EscapeString(c.Value)))
	}
	sb.WriteString(`</ul></div>`)
	sb.WriteString("\n")

	// Newsletter
	sb.WriteString(`<div><h3>Newsletter</h3>`)
	sb.WriteString(fmt.Sprintf(`<p>%s</p>`, html.EscapeString(opts.Footer.Newsletter)))
	sb.WriteString(RenderNewsletter(opts.Email, opts.Subscribed))
	sb.WriteString(`</div>`)
	sb.WriteString("\n")

	sb.WriteString(`</div>`)
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf(`<p class="copyright">&copy; %d %s. All rights reserved.</p>`, opts.Year, html.EscapeString(opts.Copyright)))
	sb.WriteString("\n")
	sb.WriteString(`</div>`)
	sb.WriteString("\n")

	sb.WriteString(RenderBackToTop(opts.ShowBackToTop))
	sb.WriteString("\n")
	sb.WriteString(`</footer>`)
	sb.WriteString("\n")

	return sb.String()
}

// RenderNewsletter renders the signup form; its content is the newsletter
// slot. The button stays disabled while the confirmation shows.
func RenderNewsletter(email string, subscribed bool) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<form data-slot="newsletter" aria-label="Newsletter"%s>`, lvEvent("submit", "newsletter:submit")))
	sb.WriteString(`<div class="newsletter">`)
	sb.WriteString(fmt.Sprintf(`<input id="newsletter-email" type="email" name="email" placeholder="Your email" value="%s" aria-label="Email for newsletter subscription" required%s>`,
		html.EscapeString(email), lvEvent("change", "newsletter:change")))
	if subscribed {
		sb.WriteString(`<button type="submit" class="btn btn-primary" disabled>&#10003; Subscribed</button>`)
	} else {
		sb.WriteString(`<button type="submit" class="btn btn-primary" aria-label="Subscribe to newsletter">Subscribe</button>`)
	}
	sb.WriteString(`</div>`)
	if subscribed {
		sb.WriteString(`<p class="newsletter-done" role="status">Thanks for subscribing!</p>`)
	}
	sb.WriteString(`</form>`)

	return sb.String()
}

// RenderBackToTop renders the floating button in its back-to-top slot.
// Scrolling itself happens in the browser.
func RenderBackToTop(visible bool) string {
	return fmt.Sprintf(`<div data-slot="back-to-top"><button type="button" class="%s" aria-label="Back to top" data-scroll-top%s>&#8593;</button></div>`,
		classes("back-to-top", when(visible, "visible")), when(!visible, ` tabindex="-1" aria-hidden="true"`))
}
