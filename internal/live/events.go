package live

import (
	"context"
	"fmt"

	"github.com/gabrielmiguelok/pakheritage/internal/contact"
	"github.com/gabrielmiguelok/pakheritage/internal/content"
	"github.com/gabrielmiguelok/pakheritage/pkg/core"
	"github.com/gabrielmiguelok/pakheritage/pkg/logging"
)

// Event names sent by the client.
const (
	EventNavSelect       = "nav:select"
	EventNavToggle       = "nav:toggle"
	EventTraditionToggle = "tradition:toggle"
	EventGalleryOpen     = "gallery:open"
	EventGalleryLoaded   = "gallery:loaded"
	EventGalleryFilter   = "gallery:filter"
	EventLightboxNext    = "lightbox:next"
	EventLightboxPrev    = "lightbox:prev"
	EventLightboxClose   = "lightbox:close"
	EventLightboxKey     = "lightbox:key"
	EventContactChange   = "contact:change"
	EventContactSubmit   = "contact:submit"
	EventNewsletterInput = "newsletter:change"
	EventNewsletterSend  = "newsletter:submit"
	EventScroll          = "scroll"
	EventSectionVisible  = "section:visible"
)

// HandleEvent applies a client event. Events that leave the rendered page
// unchanged, malformed payloads and unknown names return core.ErrNoChange.
func (p *Page) HandleEvent(ctx context.Context, event string, payload map[string]any) error {
	var changed bool

	switch event {
	case EventNavSelect:
		changed = p.selectNav(payload)
	case EventNavToggle:
		changed = p.Assigns().Set(keyMenuOpen, !p.Assigns().GetBool(keyMenuOpen))
	case EventTraditionToggle:
		changed = p.toggleTradition(payload)

	case EventGalleryOpen:
		id, ok := stringArg(payload, "id")
		if !ok || id == "" {
			break
		}
		// Any id is accepted; one missing from the catalog renders nothing.
		p.lightbox.Open(id)
		changed = true
	case EventGalleryLoaded:
		if id, ok := stringArg(payload, "id"); ok {
			changed = p.grid.MarkLoaded(id)
		}
	case EventGalleryFilter:
		if category, ok := stringArg(payload, "category"); ok {
			changed = p.grid.SetFilter(content.Category(category))
		}

	case EventLightboxNext:
		changed = p.lightboxStep(p.lightbox.Next)
	case EventLightboxPrev:
		changed = p.lightboxStep(p.lightbox.Prev)
	case EventLightboxClose:
		changed = p.lightboxStep(p.lightbox.Close)
	case EventLightboxKey:
		if key, ok := stringArg(payload, "key"); ok {
			changed = p.lightbox.Key(key)
		}

	case EventContactChange:
		field, ok1 := stringArg(payload, "field")
		value, ok2 := stringArg(payload, "value")
		if ok1 && ok2 {
			changed = p.form.Change(field, value)
		}
	case EventContactSubmit:
		p.deps.Metrics.Event(event)
		return p.submitContact(payload)

	case EventNewsletterInput:
		if value, ok := stringArg(payload, "value"); ok {
			changed = p.signup.Change(value)
		}
	case EventNewsletterSend:
		p.deps.Metrics.Event(event)
		return p.submitNewsletter(payload)

	case EventScroll:
		if y, ok := floatArg(payload, "y"); ok {
			changed = p.scroll.Update(y)
		}
	case EventSectionVisible:
		id, _ := stringArg(payload, "id")
		ratio, _ := floatArg(payload, "ratio")
		if p.reveal.Observe(id, ratio) {
			p.log.Debug("section revealed", logging.String("section", id))
		}
		// The reveal class sits outside every slot and the client has
		// already applied it, so there is nothing to send.

	default:
		logging.L(ctx).Debug("unknown event", logging.String("event", event))
		return core.ErrNoChange
	}
	p.deps.Metrics.Event(event)

	if !changed {
		return core.ErrNoChange
	}
	return nil
}

func (p *Page) selectNav(payload map[string]any) bool {
	id, ok := stringArg(payload, "id")
	if !ok {
		return false
	}
	known := false
	for _, item := range p.deps.Content.Nav {
		if item.ID == id {
			known = true
			break
		}
	}
	if !known {
		return false
	}
	return p.Assigns().SetAll(map[string]any{keyActive: id, keyMenuOpen: false})
}

func (p *Page) toggleTradition(payload map[string]any) bool {
	id, ok := stringArg(payload, "id")
	if !ok {
		return false
	}
	if _, ok := p.deps.Content.Traditions.Find(id); !ok {
		return false
	}
	if p.expanded[id] {
		delete(p.expanded, id)
	} else {
		p.expanded[id] = true
	}
	return true
}

// lightboxStep runs op and reports whether the state moved.
func (p *Page) lightboxStep(op func()) bool {
	before := p.lightbox.State()
	op()
	return p.lightbox.State() != before
}

// submitContact copies any field values carried by the submit payload,
// validates and, when valid, schedules the delivery.
func (p *Page) submitContact(payload map[string]any) error {
	if p.form.Status() == contact.StatusSubmitting {
		return core.ErrNoChange
	}
	for name, v := range contact.Schema.Bind(payload) {
		p.form.Change(name, v)
	}

	if !p.form.BeginSubmit() {
		p.log.Debug("contact form rejected", logging.Any("fields", p.form.Errors().Fields()))
		return nil
	}

	gen := p.form.Generation()
	if _, err := p.SendAfter(p.deps.Timings.ContactDelay, contactDeliver{gen: gen}); err != nil {
		return fmt.Errorf("schedule contact delivery: %w", err)
	}
	return nil
}

func (p *Page) submitNewsletter(payload map[string]any) error {
	if v, ok := stringArg(payload, "email"); ok {
		p.signup.Change(v)
	}
	if !p.signup.Submit() {
		return core.ErrNoChange
	}

	p.deps.Metrics.NewsletterSignup()
	p.log.Info("newsletter signup", logging.Int("count", len(p.signup.Subscribed())))
	if _, err := p.SendAfter(p.deps.Timings.NewsletterBanner, newsletterReset{gen: p.signup.Generation()}); err != nil {
		return fmt.Errorf("schedule newsletter reset: %w", err)
	}
	return nil
}
