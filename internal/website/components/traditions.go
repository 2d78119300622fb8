package components

import (
	"fmt"
	"html"
	"strings"

	"github.com/gabrielmiguelok/pakheritage/internal/content"
)

// TraditionsOptions configures the traditions section.
type TraditionsOptions struct {
	Section content.Traditions
	// Expanded holds the ids of cards showing their details.
	Expanded map[string]bool
	// DetailsHTML maps tradition id to rendered Markdown details.
	DetailsHTML map[string]string
	Revealed    bool
}

// RenderTraditions generates the tradition cards. Each card's toggle area
// is its own slot, tradition-<id>.
func RenderTraditions(opts TraditionsOptions) string {
	var sb strings.Builder

	sb.WriteString(sectionOpen("traditions", "section-tint", "traditions-title", opts.Revealed))
	sb.WriteString("\n")
	sb.WriteString(`<div class="container">`)
	sb.WriteString("\n")
	sb.WriteString(sectionHead("traditions-title", opts.Section.Title, opts.Section.Intro))

	sb.WriteString(`<div class="grid grid-3">`)
	sb.WriteString("\n")
	for _, t := range opts.Section.Items {
		sb.WriteString(renderTradition(t, opts.Expanded[t.ID], opts.DetailsHTML[t.ID]))
		sb.WriteString("\n")
	}
	sb.WriteString(`</div>`)
	sb.WriteString("\n")

	if opts.Section.CTA != "" {
		sb.WriteString(fmt.Sprintf(`<div class="center"><a href="#gallery" class="btn btn-primary">%s</a></div>`,
			html.EscapeString(opts.Section.CTA)))
		sb.WriteString("\n")
	}

	sb.WriteString(`</div>`)
	sb.WriteString("\n")
	sb.WriteString(`</section>`)
	sb.WriteString("\n")

	return sb.String()
}

func renderTradition(t content.Tradition, expanded bool, details string) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<article class="tradition" id="tradition-%s">`, html.EscapeString(t.ID)))
	if t.Image != "" {
		sb.WriteString(fmt.Sprintf(`<img class="tradition-image" src="%s" alt="%s" loading="lazy" width="400" height="250">`,
			html.EscapeString(t.Image), html.EscapeString(t.Title)))
	}
	sb.WriteString(`<div class="tradition-body">`)
	if t.Icon != "" {
		sb.WriteString(fmt.Sprintf(`<span class="tradition-icon" aria-hidden="true">%s</span>`, html.EscapeString(t.Icon)))
	}
	if t.Category != "" {
		sb.WriteString(fmt.Sprintf(`<span class="tradition-category">%s</span>`, html.EscapeString(t.Category)))
	}
	sb.WriteString(fmt.Sprintf(`<h3>%s</h3>`, html.EscapeString(t.Title)))
	sb.WriteString(fmt.Sprintf(`<p>%s</p>`, html.EscapeString(t.Summary)))

	detailsID := "tradition-details-" + t.ID
	sb.WriteString(fmt.Sprintf(`<div data-slot="tradition-%s">`, html.EscapeString(t.ID)))
	if expanded && details != "" {
		sb.WriteString(fmt.Sprintf(`<div id="%s" class="tradition-details prose">%s</div>`, html.EscapeString(detailsID), details))
	}
	label := "Read More"
	if expanded {
		label = "Show Less"
	}
	sb.WriteString(fmt.Sprintf(`<button type="button" class="btn-link" aria-expanded="%t" aria-controls="%s"%s>%s</button>`,
		expanded, html.EscapeString(detailsID), click("tradition:toggle", "id", t.ID), label))
	sb.WriteString(`</div>`)

	sb.WriteString(`</div>`)
	sb.WriteString(`</article>`)

	return sb.String()
}
