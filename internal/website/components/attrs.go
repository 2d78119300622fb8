// Package components renders the sections of the heritage page.
//
// Regions that change while a visitor is connected carry data-slot ids so
// the live client can patch them in place. Interactive elements carry lv-*
// attributes naming the event the client sends:
//
//	lv-click="event"      click, payload from lv-value-* attributes
//	lv-change="event"     input, payload {field, value}
//	lv-submit="event"     form submit, payload is the form's named fields
//	lv-loaded="event"     image load, payload from lv-value-*
//	lv-visible="event"    section intersection, payload {id, ratio}
//	lv-window-keydown     keydown anywhere while the element exists, payload {key}
package components

import (
	"fmt"
	"html"
	"strings"
)

// lvEvent renders an lv-<kind> attribute plus lv-value-* pairs.
// values alternate key, value.
func lvEvent(kind, event string, values ...string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(` lv-%s="%s"`, kind, html.EscapeString(event)))
	for i := 0; i+1 < len(values); i += 2 {
		sb.WriteString(fmt.Sprintf(` lv-value-%s="%s"`, values[i], html.EscapeString(values[i+1])))
	}
	return sb.String()
}

func click(event string, values ...string) string {
	return lvEvent("click", event, values...)
}

// classes joins the non-empty names.
func classes(names ...string) string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n != "" {
			out = append(out, n)
		}
	}
	return strings.Join(out, " ")
}

func when(cond bool, s string) string {
	if cond {
		return s
	}
	return ""
}

func externalLink(href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return ` target="_blank" rel="noopener noreferrer"`
	}
	return ""
}

// sectionOpen starts a page section that reports its visibility.
func sectionOpen(id, class, labelledBy string, revealed bool) string {
	return fmt.Sprintf(`<section id="%s" class="%s" aria-labelledby="%s"%s>`,
		html.EscapeString(id),
		classes("section", class, "reveal", when(revealed, "is-visible")),
		html.EscapeString(labelledBy),
		lvEvent("visible", "section:visible"))
}

func sectionHead(id, title, intro string) string {
	var sb strings.Builder
	sb.WriteString(`<div class="section-head">`)
	sb.WriteString(fmt.Sprintf(`<h2 id="%s">%s</h2>`, html.EscapeString(id), html.EscapeString(title)))
	sb.WriteString(`<div class="divider" aria-hidden="true"></div>`)
	if intro != "" {
		sb.WriteString(fmt.Sprintf(`<p>%s</p>`, html.EscapeString(intro)))
	}
	sb.WriteString(`</div>`)
	sb.WriteString("\n")
	return sb.String()
}
