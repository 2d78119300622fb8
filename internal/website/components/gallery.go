package components

import (
	"fmt"
	"html"
	"strings"

	"github.com/gabrielmiguelok/pakheritage/internal/content"
	"github.com/gabrielmiguelok/pakheritage/internal/gallery"
)

// GalleryOptions configures the gallery section.
type GalleryOptions struct {
	Section content.GallerySection
	// Cards are all cards in catalog order, filtered ones marked Hidden.
	Cards  []gallery.Card
	Filter content.Category
	Counts map[content.Category]int
	// Total is the number of images across every category.
	Total    int
	Revealed bool
}

// RenderGallery generates the filter chips and the image grid. Cards
// outside the active filter are rendered hidden so the grid keeps one slot
// per image.
func RenderGallery(opts GalleryOptions) string {
	var sb strings.Builder

	sb.WriteString(sectionOpen("gallery", "", "gallery-title", opts.Revealed))
	sb.WriteString("\n")
	sb.WriteString(`<div class="container">`)
	sb.WriteString("\n")
	sb.WriteString(sectionHead("gallery-title", opts.Section.Title, opts.Section.Description))

	sb.WriteString(`<div class="filters" role="toolbar" aria-label="Filter by category" data-slot="gallery-filters">`)
	sb.WriteString(renderChip("All", "", opts.Total, opts.Filter == ""))
	for _, cat := range content.Categories {
		if opts.Counts[cat] == 0 {
			continue
		}
		sb.WriteString(renderChip(cat.Label(), string(cat), opts.Counts[cat], opts.Filter == cat))
	}
	sb.WriteString(`</div>`)
	sb.WriteString("\n")

	sb.WriteString(`<div class="gallery-grid">`)
	sb.WriteString("\n")
	for _, card := range opts.Cards {
		sb.WriteString(RenderGalleryCard(card))
		sb.WriteString("\n")
	}
	sb.WriteString(`</div>`)
	sb.WriteString("\n")

	if opts.Section.CTA != "" {
		sb.WriteString(fmt.Sprintf(`<div class="center"><a href="#gallery" class="btn btn-primary"%s>%s</a></div>`,
			click("gallery:filter", "category", ""), html.EscapeString(opts.Section.CTA)))
		sb.WriteString("\n")
	}

	sb.WriteString(`</div>`)
	sb.WriteString("\n")
	sb.WriteString(`</section>`)
	sb.WriteString("\n")

	return sb.String()
}

func renderChip(label, category string, count int, active bool) string {
	return fmt.Sprintf(`<button type="button" class="%s" aria-pressed="%t"%s>%s <span class="chip-count">(%d)</span></button>`,
		classes("chip", when(active, "active")), active, click("gallery:filter", "category", category),
		html.EscapeString(label), count)
}

// RenderGalleryCard renders one card inside its card-<id> slot. An unloaded
// card shows a shimmering skeleton over the still-transparent image.
func RenderGalleryCard(card gallery.Card) string {
	img := card.Image
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<div data-slot="card-%s">`, html.EscapeString(img.ID)))
	sb.WriteString(fmt.Sprintf(`<button type="button" class="%s" aria-label="Open %s"%s%s>`,
		classes("gallery-card", when(card.Loaded, "loaded")),
		html.EscapeString(img.Alt),
		when(card.Hidden, " hidden"),
		click("gallery:open", "id", img.ID)))
	if !card.Loaded {
		sb.WriteString(`<span class="skeleton" aria-hidden="true"></span>`)
	}
	sb.WriteString(fmt.Sprintf(`<img src="%s" alt="%s" loading="lazy"%s>`,
		html.EscapeString(img.Src), html.EscapeString(img.Alt), lvEvent("loaded", "gallery:loaded", "id", img.ID)))
	sb.WriteString(fmt.Sprintf(`<span class="caption"><span class="caption-title">%s</span><span class="caption-category">%s</span></span>`,
		html.EscapeString(img.Caption), html.EscapeString(img.Category.Label())))
	sb.WriteString(`</button>`)
	sb.WriteString(`</div>`)

	return sb.String()
}
