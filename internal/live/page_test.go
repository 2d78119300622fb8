package live

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gabrielmiguelok/pakheritage/internal/contact"
	"github.com/gabrielmiguelok/pakheritage/internal/content"
	"github.com/gabrielmiguelok/pakheritage/internal/website/components"
	"github.com/gabrielmiguelok/pakheritage/pkg/core"
	"github.com/gabrielmiguelok/pakheritage/pkg/livetest"
	"github.com/gabrielmiguelok/pakheritage/pkg/metrics"
)

const wait = time.Second

func testDeps(t *testing.T) Deps {
	t.Helper()
	c, err := content.Default()
	require.NoError(t, err)
	return Deps{
		Content: c,
		Timings: Timings{
			ContactDelay:     5 * time.Millisecond,
			ContactBanner:    10 * time.Millisecond,
			NewsletterBanner: 10 * time.Millisecond,
		},
		ClientScript: "/_live/heritage.js",
		Now:          func() time.Time { return time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC) },
	}
}

func mountPage(t *testing.T, deps Deps, opts ...livetest.Option) *livetest.View {
	t.Helper()
	return livetest.Mount(t, NewPage(deps)(), opts...)
}

func fillContact(v *livetest.View) {
	v.Push(EventContactChange, map[string]any{"field": "name", "value": "Ayesha Khan"})
	v.Push(EventContactChange, map[string]any{"field": "email", "value": "ayesha@example.pk"})
	v.Push(EventContactChange, map[string]any{"field": "subject", "value": "Truck art"})
	v.Push(EventContactChange, map[string]any{"field": "message", "value": "Do you run workshops?"})
}

func TestPage_LiveRenderIsRootOnly(t *testing.T) {
	v := mountPage(t, testDeps(t))

	assert.False(t, strings.Contains(v.HTML(), "<!DOCTYPE"))
	v.AssertHas(`#lv-root[data-lv-path="/"]`).
		AssertHas(`[data-slot="navbar"] nav.nav`).
		AssertHas("#home.hero").
		AssertHas("#about").
		AssertHas("#traditions").
		AssertHas("#gallery").
		AssertHas("#contact").
		AssertHas("footer#footer").
		AssertMissing(".lightbox")

	assert.Equal(t, 8, v.Count(".gallery-card"))
	assert.Equal(t, 8, v.Count(".gallery-card .skeleton"))
	assert.Equal(t, 6, v.Count("article.tradition"))
	v.AssertText(".copyright", "© 2026 Pakistani Heritage. All rights reserved.")
}

func TestPage_StaticRenderIsFullDocument(t *testing.T) {
	v := mountPage(t, testDeps(t), livetest.Static())

	html := v.HTML()
	assert.True(t, strings.HasPrefix(html, "<!DOCTYPE html>"))
	v.AssertText("title", "Pakistani Heritage")
	src, ok := v.Attr("script[src]", "src")
	require.True(t, ok)
	assert.Equal(t, "/_live/heritage.js", src)
	v.AssertHas(`script[type="application/ld+json"]`)
	v.AssertHas("#lv-root")
}

func TestPage_SectionRoutes(t *testing.T) {
	deps := testDeps(t)
	for _, section := range Sections {
		t.Run(section, func(t *testing.T) {
			v := livetest.Mount(t, NewSection(deps, section)(), livetest.Static())

			v.AssertMissing(".hero").AssertMissing(`[data-slot="navbar"]`)
			for _, other := range Sections {
				sel := "#" + other
				if other == section {
					v.AssertHas(sel)
				} else {
					v.AssertMissing(sel)
				}
			}
			assert.Contains(t, v.Text("title"), "Pakistani Heritage")
			assert.Equal(t, section == SectionGallery, v.Count(`[data-slot="lightbox"]`) == 1)
		})
	}
}

func TestPage_UnknownSectionFailsMount(t *testing.T) {
	p := NewSection(testDeps(t), "blog")()
	err := p.Mount(context.Background(), core.Params{}, core.Session{})
	assert.Error(t, err)
}

func TestPage_LightboxNavigation(t *testing.T) {
	v := mountPage(t, testDeps(t))

	v.Push(EventGalleryOpen, map[string]any{"id": "1"})
	v.AssertHas(".lightbox").AssertText(".lightbox-counter", "1 / 8")

	v.Push(EventLightboxNext, nil)
	v.AssertText(".lightbox-counter", "2 / 8")

	v.Push(EventLightboxPrev, nil).Push(EventLightboxPrev, nil)
	v.AssertText(".lightbox-counter", "8 / 8")

	v.Push(EventLightboxKey, map[string]any{"key": "ArrowRight"})
	v.AssertText(".lightbox-counter", "1 / 8")

	v.Push(EventLightboxKey, map[string]any{"key": "Escape"})
	v.AssertMissing(".lightbox")

	skipped := v.Skipped()
	v.Push(EventLightboxNext, nil).Push(EventLightboxClose, nil).Push(EventLightboxKey, map[string]any{"key": "Escape"})
	assert.Equal(t, skipped+3, v.Skipped(), "navigation while closed changes nothing")
}

func TestPage_LightboxUnknownIDRendersNothing(t *testing.T) {
	v := mountPage(t, testDeps(t))

	v.Push(EventGalleryOpen, map[string]any{"id": "missing"})
	v.AssertMissing(".lightbox")

	v.Push(EventLightboxNext, nil)
	v.AssertText(".lightbox-counter", "1 / 8")
}

func TestPage_MalformedPayloadsIgnored(t *testing.T) {
	v := mountPage(t, testDeps(t))
	renders := v.Renders()

	v.Push(EventGalleryOpen, map[string]any{"id": 7})
	v.Push(EventGalleryOpen, nil)
	v.Push(EventScroll, map[string]any{"y": "far"})
	v.Push(EventContactChange, map[string]any{"field": "name"})
	v.Push("no-such-event", map[string]any{"x": 1})

	assert.Equal(t, renders, v.Renders())
	assert.Equal(t, 5, v.Skipped())
}

func TestPage_GalleryLoadedOnce(t *testing.T) {
	v := mountPage(t, testDeps(t))

	v.Push(EventGalleryLoaded, map[string]any{"id": "3"})
	v.AssertHas(`[data-slot="card-3"] .gallery-card.loaded`).
		AssertMissing(`[data-slot="card-3"] .skeleton`)
	assert.Equal(t, 7, v.Count(".gallery-card .skeleton"))

	skipped := v.Skipped()
	v.Push(EventGalleryLoaded, map[string]any{"id": "3"})
	v.Push(EventGalleryLoaded, map[string]any{"id": "99"})
	assert.Equal(t, skipped+2, v.Skipped())
}

func TestPage_FilterKeepsLightboxOrder(t *testing.T) {
	deps := testDeps(t)
	v := mountPage(t, deps)

	v.Push(EventGalleryFilter, map[string]any{"category": "art"})
	assert.Equal(t, deps.Content.Catalog.Counts()[content.Art], v.Count(".gallery-card:not([hidden])"))
	v.AssertHas(`[data-slot="gallery-filters"] .chip.active`)
	assert.Contains(t, v.Text(".chip.active"), "Art")

	v.Push(EventGalleryOpen, map[string]any{"id": "1"}).Push(EventLightboxNext, nil)
	v.AssertText(".lightbox-counter", "2 / 8")

	skipped := v.Skipped()
	v.Push(EventGalleryFilter, map[string]any{"category": "cuisine"})
	assert.Equal(t, skipped+1, v.Skipped())

	v.Push(EventGalleryFilter, map[string]any{"category": ""})
	assert.Equal(t, 0, v.Count(".gallery-card[hidden]"))
}

func TestPage_ContactValidation(t *testing.T) {
	var calls atomic.Int32
	deps := testDeps(t)
	deps.Submitter = contact.SubmitterFunc(func(ctx context.Context, f contact.Fields) (contact.Submission, error) {
		calls.Add(1)
		return contact.Submission{ID: "x"}, nil
	})
	v := mountPage(t, deps)

	v.Push(EventContactSubmit, nil)
	assert.Equal(t, 4, v.Count(".field.invalid"))
	v.AssertText("#contact-name-error", "Name is required")
	assert.Equal(t, 0, v.Pending())

	v.Push(EventContactChange, map[string]any{"field": "email", "value": "abc"})
	assert.Equal(t, 3, v.Count(".field.invalid"))
	v.AssertText("#contact-email-error", "")

	v.Push(EventContactSubmit, map[string]any{"name": "Ali", "subject": "Hi", "message": "Salam"})
	assert.Equal(t, 1, v.Count(".field.invalid"))
	v.AssertText("#contact-email-error", "Invalid email format")

	assert.Zero(t, calls.Load())
}

func TestPage_ContactSuccessCycle(t *testing.T) {
	deps := testDeps(t)
	mock := contact.NewMockSubmitter()
	deps.Submitter = mock
	v := mountPage(t, deps)

	fillContact(v)
	v.Push(EventContactSubmit, nil)
	v.AssertText(`[data-slot="contact-form"] button[type="submit"]`, "Sending...")
	_, disabled := v.Attr(`[data-slot="contact-form"] button[type="submit"]`, "disabled")
	assert.True(t, disabled)

	skipped := v.Skipped()
	v.Push(EventContactSubmit, nil)
	assert.Equal(t, skipped+1, v.Skipped(), "duplicate submit ignored")

	v.MustAwait(wait)
	v.AssertText(".banner-success", components.ContactSuccessText)
	value, _ := v.Attr("#contact-name", "value")
	assert.Empty(t, value)
	require.Len(t, mock.Recent(), 1)
	assert.Equal(t, "Truck art", mock.Recent()[0].Fields.Subject)

	v.MustAwait(wait)
	v.AssertMissing(".banner")
	v.AssertText(`[data-slot="contact-form"] button[type="submit"]`, "Send Message")
}

func TestPage_ContactErrorKeepsFields(t *testing.T) {
	deps := testDeps(t)
	deps.Submitter = contact.SubmitterFunc(func(ctx context.Context, f contact.Fields) (contact.Submission, error) {
		return contact.Submission{}, errors.New("relay down")
	})
	v := mountPage(t, deps)

	fillContact(v)
	v.Push(EventContactSubmit, nil)
	v.MustAwait(wait)

	v.AssertText(".banner-error", components.ContactErrorText)
	value, _ := v.Attr("#contact-name", "value")
	assert.Equal(t, "Ayesha Khan", value)

	v.MustAwait(wait)
	v.AssertMissing(".banner")
}

func TestPage_StaleContactTimerIgnored(t *testing.T) {
	v := mountPage(t, testDeps(t))

	fillContact(v)
	v.Push(EventContactSubmit, nil)
	v.Info(contactDeliver{gen: 42})
	v.Info(contactReset{gen: 42})
	v.AssertText(`[data-slot="contact-form"] button[type="submit"]`, "Sending...")
}

func TestPage_Newsletter(t *testing.T) {
	v := mountPage(t, testDeps(t))

	v.Push(EventNewsletterSend, nil)
	v.AssertMissing(".newsletter-done")

	v.Push(EventNewsletterInput, map[string]any{"value": "reader@example.pk"})
	v.Push(EventNewsletterSend, nil)
	v.AssertHas(".newsletter-done")
	value, _ := v.Attr("#newsletter-email", "value")
	assert.Empty(t, value)
	_, disabled := v.Attr(`[data-slot="newsletter"] button`, "disabled")
	assert.True(t, disabled)

	v.MustAwait(wait)
	v.AssertMissing(".newsletter-done")
}

func TestPage_ScrollFlags(t *testing.T) {
	v := mountPage(t, testDeps(t))
	v.AssertMissing("nav.scrolled").AssertMissing(".back-to-top.visible")

	v.Push(EventScroll, map[string]any{"y": 60.0})
	v.AssertHas("nav.nav.scrolled").AssertMissing(".back-to-top.visible")

	skipped := v.Skipped()
	v.Push(EventScroll, map[string]any{"y": int64(120)})
	assert.Equal(t, skipped+1, v.Skipped())

	v.Push(EventScroll, map[string]any{"y": uint16(450)})
	v.AssertHas(".back-to-top.visible")

	v.Push(EventScroll, map[string]any{"y": 0})
	v.AssertMissing("nav.scrolled")
}

func TestPage_SectionVisibleLatches(t *testing.T) {
	v := mountPage(t, testDeps(t))

	require.NoError(t, v.PushErr(EventSectionVisible, map[string]any{"id": "gallery", "ratio": 0.5}))
	v.Push(EventNavToggle, nil)
	v.AssertHas("#gallery.is-visible").AssertMissing("#about.is-visible")
}

func TestPage_SectionVisibleIgnoresUnknownIDs(t *testing.T) {
	page := NewPage(testDeps(t))().(*Page)
	v := livetest.Mount(t, page)

	skipped := v.Skipped()
	for i := 0; i < 50; i++ {
		v.Push(EventSectionVisible, map[string]any{"id": fmt.Sprintf("bogus-%d", i), "ratio": 1.0})
	}
	v.Push(EventSectionVisible, map[string]any{"id": "home", "ratio": 1.0})
	assert.Equal(t, skipped+51, v.Skipped())
	assert.True(t, page.reveal.Visible("home"))
	assert.False(t, page.reveal.Visible("bogus-0"))
}

func TestPage_Navbar(t *testing.T) {
	v := mountPage(t, testDeps(t))
	v.AssertText(".nav-links .nav-link.active", "Home")

	v.Push(EventNavToggle, nil)
	v.AssertHas(".nav-toggle.open").AssertHas(".mobile-menu.open")

	v.Push(EventNavSelect, map[string]any{"id": "gallery"})
	v.AssertText(".nav-links .nav-link.active", "Gallery").AssertMissing(".mobile-menu.open")

	skipped := v.Skipped()
	v.Push(EventNavSelect, map[string]any{"id": "gallery"})
	v.Push(EventNavSelect, map[string]any{"id": "blog"})
	assert.Equal(t, skipped+2, v.Skipped())
}

func TestPage_TraditionToggle(t *testing.T) {
	v := mountPage(t, testDeps(t))
	v.AssertMissing(".tradition-details")

	v.Push(EventTraditionToggle, map[string]any{"id": "qawwali"})
	v.AssertHas(`[data-slot="tradition-qawwali"] .tradition-details`).
		AssertText(`[data-slot="tradition-qawwali"] button`, "Show Less")
	assert.Equal(t, 1, v.Count(".tradition-details"))

	v.Push(EventTraditionToggle, map[string]any{"id": "qawwali"})
	v.AssertMissing(".tradition-details")

	skipped := v.Skipped()
	v.Push(EventTraditionToggle, map[string]any{"id": "polo"})
	assert.Equal(t, skipped+1, v.Skipped())
}

func TestPage_TerminateCancelsTimers(t *testing.T) {
	deps := testDeps(t)
	deps.Timings = Timings{ContactDelay: time.Hour, ContactBanner: time.Hour, NewsletterBanner: time.Hour}
	v := mountPage(t, deps)

	v.Push(EventNewsletterInput, map[string]any{"value": "reader@example.pk"})
	v.Push(EventNewsletterSend, nil)
	fillContact(v)
	v.Push(EventContactSubmit, nil)
	assert.Equal(t, 2, v.Pending())

	v.Close(core.TerminateClosed)
	assert.Equal(t, 0, v.Pending())
	assert.False(t, v.Await(30*time.Millisecond), "nothing is delivered after terminate")
}

func TestPage_MetricsRecorded(t *testing.T) {
	deps := testDeps(t)
	site := metrics.New("heritage")
	deps.Metrics = site
	v := mountPage(t, deps)

	v.Push(EventGalleryOpen, map[string]any{"id": "3"})
	v.Push(EventLightboxNext, nil)
	_ = v.PushErr("no:such:event", nil)
	fillContact(v)
	v.Push(EventContactSubmit, nil)
	v.MustAwait(wait)

	v.Push(EventNewsletterInput, map[string]any{"value": "reader@example.pk"})
	v.Push(EventNewsletterSend, nil)

	events := site.Events.Values()
	assert.Equal(t, int64(1), events[EventGalleryOpen])
	assert.Equal(t, int64(1), events[EventLightboxNext])
	assert.Equal(t, int64(4), events[EventContactChange])
	assert.NotContains(t, events, "no:such:event")
	assert.Equal(t, int64(1), site.Contact.Values()["sent"])
	assert.Equal(t, int64(1), site.Newsletter.Value())
	assert.Positive(t, site.Renders.Count())
}
