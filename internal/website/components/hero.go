package components

import (
	"fmt"
	"html"
	"strings"

	"github.com/gabrielmiguelok/pakheritage/internal/content"
)

// RenderHero generates the full-height banner with headline and CTAs.
// It has no live state.
func RenderHero(hero content.Hero) string {
	var sb strings.Builder

	sb.WriteString(`<section id="home" class="hero" aria-labelledby="hero-title">`)
	sb.WriteString("\n")
	sb.WriteString(`<div class="container hero-inner">`)
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf(`<h1 id="hero-title" class="hero-title">%s <span class="highlight">%s</span></h1>`,
		html.EscapeString(hero.Headline), html.EscapeString(hero.Highlight)))
	sb.WriteString("\n")

	if hero.Subtitle != "" {
		sb.WriteString(fmt.Sprintf(`<p class="hero-subtitle">%s</p>`, html.EscapeString(hero.Subtitle)))
		sb.WriteString("\n")
	}

	sb.WriteString(`<div class="hero-actions">`)
	for _, cta := range []struct {
		link  content.Link
		class string
	}{
		{hero.PrimaryCTA, "btn btn-primary"},
		{hero.SecondaryCTA, "btn btn-outline"},
	} {
		if cta.link.Label == "" {
			continue
		}
		sb.WriteString(fmt.Sprintf(`<a href="%s" class="%s"%s>%s</a>`,
			html.EscapeString(cta.link.Href), cta.class, externalLink(cta.link.Href), html.EscapeString(cta.link.Label)))
	}
	sb.WriteString(`</div>`)
	sb.WriteString("\n")

	sb.WriteString(`<a href="#about" class="scroll-cue" aria-label="Scroll to about"></a>`)
	sb.WriteString("\n")
	sb.WriteString(`</div>`)
	sb.WriteString("\n")
	sb.WriteString(`</section>`)
	sb.WriteString("\n")

	return sb.String()
}
