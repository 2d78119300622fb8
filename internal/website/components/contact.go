package components

import (
	"fmt"
	"html"
	"strings"

	"github.com/gabrielmiguelok/pakheritage/internal/contact"
	"github.com/gabrielmiguelok/pakheritage/internal/content"
	"github.com/gabrielmiguelok/pakheritage/pkg/forms"
)

// Banner copy for the contact form.
const (
	ContactSuccessText = "Message sent successfully! We'll get back to you soon."
	ContactErrorText   = "Error sending message. Please try again."
)

// ContactOptions configures the contact section.
type ContactOptions struct {
	Section  content.Contact
	Fields   contact.Fields
	Errors   forms.Errors
	Status   contact.Status
	Revealed bool
}

type formField struct {
	name, label, kind, placeholder string
}

var contactFields = []formField{
	{contact.FieldName, "Name", "text", "Enter your full name"},
	{contact.FieldEmail, "Email", "email", "your@email.com"},
	{contact.FieldSubject, "Subject", "text", "What is this about?"},
	{contact.FieldMessage, "Message", "textarea", "Tell us more about your inquiry..."},
}

// RenderContact generates the contact section: the form, the info cards
// and the map embed.
func RenderContact(opts ContactOptions) string {
	var sb strings.Builder

	sb.WriteString(sectionOpen("contact", "section-tint", "contact-title", opts.Revealed))
	sb.WriteString("\n")
	sb.WriteString(`<div class="container">`)
	sb.WriteString("\n")
	sb.WriteString(sectionHead("contact-title", opts.Section.Title, opts.Section.Intro))

	sb.WriteString(`<div class="contact-grid">`)
	sb.WriteString("\n")
	sb.WriteString(RenderContactForm(opts.Fields, opts.Errors, opts.Status))
	sb.WriteString("\n")

	sb.WriteString(`<div>`)
	sb.WriteString(`<div class="info-cards">`)
	for _, card := range opts.Section.Info {
		sb.WriteString(`<div class="info-card"><div>`)
		sb.WriteString(fmt.Sprintf(`<h3>%s</h3>`, html.EscapeString(card.Title)))
		if card.Href != "" && card.Href != "#" {
			sb.WriteString(fmt.Sprintf(`<a href="%s">%s</a>`, html.EscapeString(card.Href), html.EscapeString(card.Value)))
		} else {
			sb.WriteString(fmt.Sprintf(`<p>%s</p>`, html.EscapeString(card.Value)))
		}
		sb.WriteString(`</div></div>`)
	}
	sb.WriteString(`</div>`)

	if opts.Section.MapEmbed != "" {
		sb.WriteString(`<div class="map">`)
		sb.WriteString(fmt.Sprintf(`<h3>%s</h3>`, html.EscapeString(opts.Section.MapTitle)))
		sb.WriteString(fmt.Sprintf(`<iframe src="%s" title="%s" loading="lazy" referrerpolicy="no-referrer-when-downgrade" allowfullscreen></iframe>`,
			html.EscapeString(opts.Section.MapEmbed), html.EscapeString(opts.Section.MapTitle)))
		sb.WriteString(`</div>`)
	}
	sb.WriteString(`</div>`)
	sb.WriteString("\n")

	sb.WriteString(`</div>`)
	sb.WriteString("\n")
	sb.WriteString(`</div>`)
	sb.WriteString("\n")
	sb.WriteString(`</section>`)
	sb.WriteString("\n")

	return sb.String()
}

// RenderContactForm renders the form element. Its content is the
// contact-form slot, so an error, a status change or a cleared form
// replaces the whole body.
func RenderContactForm(fields contact.Fields, errs forms.Errors, status contact.Status) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<form class="form" data-slot="contact-form" novalidate aria-label="Contact form"%s>`,
		lvEvent("submit", "contact:submit")))

	sb.WriteString(`<div class="form-row">`)
	for i, f := range contactFields {
		if i == 2 {
			sb.WriteString(`</div>`)
		}
		sb.WriteString(renderField(f, fields.Get(f.name), errs.Get(f.name)))
	}

	switch status {
	case contact.StatusSuccess:
		sb.WriteString(fmt.Sprintf(`<div class="banner banner-success" role="status">%s</div>`, html.EscapeString(ContactSuccessText)))
	case contact.StatusError:
		sb.WriteString(fmt.Sprintf(`<div class="banner banner-error" role="alert">%s</div>`, html.EscapeString(ContactErrorText)))
	}

	if status == contact.StatusSubmitting {
		sb.WriteString(`<button type="submit" class="btn btn-primary" disabled aria-busy="true">Sending...</button>`)
	} else {
		sb.WriteString(`<button type="submit" class="btn btn-primary">Send Message</button>`)
	}
	sb.WriteString(`</form>`)

	return sb.String()
}

func renderField(f formField, value, errMsg string) string {
	var sb strings.Builder

	id := "contact-" + f.name
	errID := id + "-error"
	invalid := errMsg != ""

	aria := ""
	if invalid {
		aria = fmt.Sprintf(` aria-invalid="true" aria-describedby="%s"`, errID)
	}
	change := lvEvent("change", "contact:change")

	sb.WriteString(fmt.Sprintf(`<div class="%s">`, classes("field", when(invalid, "invalid"))))
	sb.WriteString(fmt.Sprintf(`<label for="%s">%s</label>`, id, html.EscapeString(f.label)))
	if f.kind == "textarea" {
		sb.WriteString(fmt.Sprintf(`<textarea id="%s" name="%s" rows="5" placeholder="%s"%s%s>%s</textarea>`,
			id, f.name, html.EscapeString(f.placeholder), aria, change, html.EscapeString(value)))
	} else {
		sb.WriteString(fmt.Sprintf(`<input id="%s" name="%s" type="%s" placeholder="%s" value="%s"%s%s>`,
			id, f.name, f.kind, html.EscapeString(f.placeholder), html.EscapeString(value), aria, change))
	}
	sb.WriteString(fmt.Sprintf(`<span id="%s" class="field-error">%s</span>`, errID, html.EscapeString(errMsg)))
	sb.WriteString(`</div>`)

	return sb.String()
}
