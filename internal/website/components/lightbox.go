package components

import (
	"fmt"
	"html"
	"strings"

	"github.com/gabrielmiguelok/pakheritage/internal/content"
)

// LightboxOptions configures the lightbox overlay.
type LightboxOptions struct {
	// Open is false when the lightbox is closed or its id is unknown.
	Open     bool
	Image    content.ImageRecord
	Position int
	Total    int
}

// RenderLightbox renders the lightbox slot. A closed lightbox leaves the
// slot empty.
func RenderLightbox(opts LightboxOptions) string {
	var sb strings.Builder

	sb.WriteString(`<div data-slot="lightbox">`)
	if opts.Open {
		img := opts.Image
		sb.WriteString(fmt.Sprintf(`<div class="lightbox" role="dialog" aria-modal="true" aria-label="%s"%s>`,
			html.EscapeString(img.Alt), lvEvent("window-keydown", "lightbox:key")))
		sb.WriteString(fmt.Sprintf(`<button type="button" class="lightbox-backdrop" aria-label="Close"%s></button>`, click("lightbox:close")))
		sb.WriteString(`<figure class="lightbox-frame">`)
		sb.WriteString(fmt.Sprintf(`<img src="%s" alt="%s">`, html.EscapeString(img.Src), html.EscapeString(img.Alt)))
		sb.WriteString(`<figcaption class="lightbox-caption">`)
		sb.WriteString(fmt.Sprintf(`<h3>%s</h3>`, html.EscapeString(img.Caption)))
		sb.WriteString(fmt.Sprintf(`<p>%s</p>`, html.EscapeString(img.Category.Label())))
		if opts.Total > 0 {
			sb.WriteString(fmt.Sprintf(`<span class="lightbox-counter">%d / %d</span>`, opts.Position, opts.Total))
		}
		sb.WriteString(`</figcaption>`)
		sb.WriteString(`</figure>`)
		sb.WriteString(fmt.Sprintf(`<button type="button" class="lightbox-btn lightbox-close" aria-label="Close lightbox"%s>&times;</button>`, click("lightbox:close")))
		sb.WriteString(fmt.Sprintf(`<button type="button" class="lightbox-btn lightbox-prev" aria-label="Previous image"%s>&#8249;</button>`, click("lightbox:prev")))
		sb.WriteString(fmt.Sprintf(`<button type="button" class="lightbox-btn lightbox-next" aria-label="Next image"%s>&#8250;</button>`, click("lightbox:next")))
		sb.WriteString(`</div>`)
	}
	sb.WriteString(`</div>`)
	sb.WriteString("\n")

	return sb.String()
}
