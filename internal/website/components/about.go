package components

import (
	"fmt"
	"html"
	"strings"

	"github.com/gabrielmiguelok/pakheritage/internal/content"
)

// AboutOptions configures the about section.
type AboutOptions struct {
	About content.About
	// DescriptionHTML is the rendered, sanitised Markdown description.
	DescriptionHTML string
	Revealed        bool
}

// RenderAbout generates the about section: image, copy, highlights and the
// stats row.
func RenderAbout(opts AboutOptions) string {
	a := opts.About
	var sb strings.Builder

	sb.WriteString(sectionOpen("about", "", "about-title", opts.Revealed))
	sb.WriteString("\n")
	sb.WriteString(`<div class="container">`)
	sb.WriteString("\n")
	sb.WriteString(sectionHead("about-title", a.Title, ""))

	sb.WriteString(`<div class="about-grid">`)
	if a.Image != "" {
		sb.WriteString(fmt.Sprintf(`<div class="about-image"><img src="%s" alt="%s" loading="lazy" width="600" height="450"></div>`,
			html.EscapeString(a.Image), html.EscapeString(a.ImageAlt)))
	}

	sb.WriteString(`<div>`)
	if a.Subtitle != "" {
		sb.WriteString(fmt.Sprintf(`<h3 class="about-subtitle">%s</h3>`, html.EscapeString(a.Subtitle)))
	}
	sb.WriteString(`<div class="prose">`)
	sb.WriteString(opts.DescriptionHTML)
	sb.WriteString(`</div>`)
	if len(a.Highlights) > 0 {
		sb.WriteString(`<ul class="highlights">`)
		for _, h := range a.Highlights {
			sb.WriteString(fmt.Sprintf(`<li>%s</li>`, html.EscapeString(h)))
		}
		sb.WriteString(`</ul>`)
	}
	sb.WriteString(`</div>`)
	sb.WriteString(`</div>`)
	sb.WriteString("\n")

	if len(a.Stats) > 0 {
		sb.WriteString(`<dl class="stats">`)
		for _, s := range a.Stats {
			sb.WriteString(fmt.Sprintf(`<div class="stat"><dt class="stat-label">%s</dt><dd class="stat-number">%s</dd></div>`,
				html.EscapeString(s.Label), html.EscapeString(s.Number)))
		}
		sb.WriteString(`</dl>`)
		sb.WriteString("\n")
	}

	sb.WriteString(`</div>`)
	sb.WriteString("\n")
	sb.WriteString(`</section>`)
	sb.WriteString("\n")

	return sb.String()
}
