// Package live holds the page component: the per-connection state of the
// heritage site and the events that change it.
package live

import (
	"context"
	"fmt"
	"html"
	"io"
	"strings"
	"time"

	"github.com/gabrielmiguelok/pakheritage/internal/contact"
	"github.com/gabrielmiguelok/pakheritage/internal/content"
	"github.com/gabrielmiguelok/pakheritage/internal/gallery"
	"github.com/gabrielmiguelok/pakheritage/internal/lightbox"
	"github.com/gabrielmiguelok/pakheritage/internal/newsletter"
	"github.com/gabrielmiguelok/pakheritage/internal/viewport"
	"github.com/gabrielmiguelok/pakheritage/internal/website"
	"github.com/gabrielmiguelok/pakheritage/internal/website/components"
	"github.com/gabrielmiguelok/pakheritage/pkg/core"
	"github.com/gabrielmiguelok/pakheritage/pkg/logging"
	"github.com/gabrielmiguelok/pakheritage/pkg/router"
)

// Sections that can be served on their own route.
const (
	SectionAbout      = "about"
	SectionTraditions = "traditions"
	SectionGallery    = "gallery"
	SectionContact    = "contact"
	SectionFooter     = "footer"
)

// Sections lists the standalone sections in page order.
var Sections = []string{SectionAbout, SectionTraditions, SectionGallery, SectionContact, SectionFooter}

// Timings are the simulated delays of the page.
type Timings struct {
	// ContactDelay is how long a contact submission "takes".
	ContactDelay time.Duration
	// ContactBanner is how long the success or error banner stays.
	ContactBanner time.Duration
	// NewsletterBanner is how long "Subscribed" stays.
	NewsletterBanner time.Duration
}

// DefaultTimings returns the delays of the original site.
func DefaultTimings() Timings {
	return Timings{
		ContactDelay:     1500 * time.Millisecond,
		ContactBanner:    5 * time.Second,
		NewsletterBanner: 3 * time.Second,
	}
}

// Deps are shared by every page instance. Content and Markdown are
// read-only; Submitter must be safe for concurrent use.
type Deps struct {
	Content   *content.Content
	Markdown  *content.Markdown
	Submitter contact.Submitter
	Timings   Timings
	Logger    logging.Logger
	// Metrics defaults to a recorder that drops everything.
	Metrics Recorder

	// ClientScript is the live client URL; empty renders pages that never
	// connect.
	ClientScript string
	// BaseURL is the public origin used for canonical links.
	BaseURL string
	// Now defaults to time.Now.
	Now func() time.Time
}

// Recorder receives page activity. *metrics.Site implements it.
type Recorder interface {
	Event(name string)
	ContactSubmitted(outcome string)
	NewsletterSignup()
	Rendered(d time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) Event(string)            {}
func (nopRecorder) ContactSubmitted(string) {}
func (nopRecorder) NewsletterSignup()       {}
func (nopRecorder) Rendered(time.Duration)  {}

// Navbar state kept in the component's assigns.
const (
	keyActive   = "active"
	keyMenuOpen = "menu_open"
)

// Page is the live component behind every route. With an empty section
// it renders the whole site; otherwise only that section.
type Page struct {
	core.BaseComponent

	deps    Deps
	section string
	log     logging.Logger

	lightbox *lightbox.Controller
	grid     *gallery.Grid
	form     *contact.Form
	signup   *newsletter.Signup
	scroll   viewport.Tracker
	reveal   *viewport.Reveal
	expanded map[string]bool
}

// NewPage returns a factory for the full page.
func NewPage(deps Deps) func() core.Component {
	return NewSection(deps, "")
}

// NewSection returns a factory for a single-section page.
func NewSection(deps Deps, section string) func() core.Component {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = logging.NopLogger{}
	}
	if deps.Metrics == nil {
		deps.Metrics = nopRecorder{}
	}
	if deps.Submitter == nil {
		deps.Submitter = contact.NewMockSubmitter(contact.WithLogger(deps.Logger))
	}
	if deps.Markdown == nil {
		md, err := content.NewMarkdown(64)
		if err != nil {
			panic(err)
		}
		deps.Markdown = md
	}
	return func() core.Component {
		return &Page{deps: deps, section: section}
	}
}

// Name implements core.Component.
func (p *Page) Name() string {
	if p.section == "" {
		return "page"
	}
	return "page:" + p.section
}

// Mount resets the per-connection state.
func (p *Page) Mount(ctx context.Context, params core.Params, session core.Session) error {
	c := p.deps.Content
	if c == nil || c.Catalog == nil {
		return fmt.Errorf("mount %s: %w", p.Name(), content.ErrEmptyCatalog)
	}
	if p.section != "" && !knownSection(p.section) {
		return fmt.Errorf("mount: unknown section %q", p.section)
	}

	p.log = p.deps.Logger.With(logging.String("component", p.Name()))
	if s := core.SocketFromContext(ctx); s != nil {
		p.log = p.log.With(logging.String("socket_id", s.ID()))
	}

	p.lightbox = lightbox.New(c.Catalog)
	p.grid = gallery.NewGrid(c.Catalog)
	p.form = contact.NewForm()
	p.signup = newsletter.New()
	p.scroll = viewport.Tracker{}
	p.reveal = viewport.NewReveal(append([]string{"home"}, Sections...)...)
	p.expanded = make(map[string]bool)
	active := "home"
	if p.section != "" {
		active = p.section
	}
	p.Assigns().SetAll(map[string]any{keyActive: active, keyMenuOpen: false})
	p.Assigns().Changed()
	return nil
}

func knownSection(s string) bool {
	for _, known := range Sections {
		if s == known {
			return true
		}
	}
	return false
}

// Render writes the page. HTTP renders get the whole document; live
// renders only the root element, which is what slot diffs are taken from.
func (p *Page) Render(ctx context.Context) core.Renderer {
	return core.RendererFunc(func(ctx context.Context, w io.Writer) error {
		start := time.Now()
		body, err := p.renderRoot()
		if err != nil {
			return err
		}
		if core.IsLive(ctx) {
			p.deps.Metrics.Rendered(time.Since(start))
			_, err = io.WriteString(w, body)
			return err
		}

		cfg := website.PageConfigFor(p.deps.Content, sectionTitle(p.section))
		cfg.Nonce = router.CSPNonce(ctx)
		cfg.ClientScript = p.deps.ClientScript
		if p.deps.BaseURL != "" {
			cfg.URL = strings.TrimSuffix(p.deps.BaseURL, "/") + p.path()
		}
		_, err = io.WriteString(w, website.RenderDocument(cfg, body))
		return err
	})
}

func (p *Page) path() string {
	return "/" + p.section
}

func sectionTitle(section string) string {
	if section == "" {
		return ""
	}
	return strings.ToUpper(section[:1]) + section[1:]
}

func (p *Page) renderRoot() (string, error) {
	c := p.deps.Content
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<div id="lv-root" data-lv-path="%s"%s>`, html.EscapeString(p.path()), scrollAttr))
	sb.WriteString("\n")

	full := p.section == ""
	if full {
		sb.WriteString(components.RenderNavbar(components.NavbarOptions{
			Brand:    c.Site.Brand,
			Items:    c.Nav,
			Active:   p.Assigns().GetString(keyActive),
			Scrolled: p.scroll.Flags().NavScrolled,
			MenuOpen: p.Assigns().GetBool(keyMenuOpen),
		}))
	}

	sb.WriteString(`<main id="main-content">`)
	sb.WriteString("\n")
	if full {
		sb.WriteString(components.RenderHero(c.Hero))
	}
	if full || p.section == SectionAbout {
		about, err := p.deps.Markdown.Render(c.About.Description)
		if err != nil {
			return "", err
		}
		sb.WriteString(components.RenderAbout(components.AboutOptions{
			About:           c.About,
			DescriptionHTML: about,
			Revealed:        p.reveal.Visible(SectionAbout),
		}))
	}
	if full || p.section == SectionTraditions {
		details := make(map[string]string, len(p.expanded))
		for id := range p.expanded {
			t, ok := c.Traditions.Find(id)
			if !ok {
				continue
			}
			out, err := p.deps.Markdown.Render(t.Details)
			if err != nil {
				return "", err
			}
			details[id] = out
		}
		sb.WriteString(components.RenderTraditions(components.TraditionsOptions{
			Section:     c.Traditions,
			Expanded:    p.expanded,
			DetailsHTML: details,
			Revealed:    p.reveal.Visible(SectionTraditions),
		}))
	}
	if full || p.section == SectionGallery {
		sb.WriteString(components.RenderGallery(components.GalleryOptions{
			Section:  c.Gallery,
			Cards:    p.grid.Cards(),
			Filter:   p.grid.Filter(),
			Counts:   c.Catalog.Counts(),
			Total:    c.Catalog.Len(),
			Revealed: p.reveal.Visible(SectionGallery),
		}))
	}
	if full || p.section == SectionContact {
		sb.WriteString(components.RenderContact(components.ContactOptions{
			Section:  c.Contact,
			Fields:   p.form.Fields(),
			Errors:   p.form.Errors(),
			Status:   p.form.Status(),
			Revealed: p.reveal.Visible(SectionContact),
		}))
	}
	sb.WriteString(`</main>`)
	sb.WriteString("\n")

	if full || p.section == SectionFooter {
		sb.WriteString(components.RenderFooter(components.FooterOptions{
			Brand:         c.Site.FooterBrand,
			Footer:        c.Footer,
			Nav:           c.Nav,
			Socials:       c.Socials,
			Copyright:     c.Site.CopyrightHolder,
			Year:          p.deps.Now().Year(),
			Email:         p.signup.Email(),
			Subscribed:    p.signup.Submitted(),
			ShowBackToTop: p.scroll.Flags().ShowBackToTop,
		}))
	}

	if full || p.section == SectionGallery {
		sb.WriteString(p.renderLightbox())
	}

	sb.WriteString(`</div>`)
	return sb.String(), nil
}

// scrollAttr asks the client to report the scroll offset.
const scrollAttr = ` lv-scroll="scroll"`

func (p *Page) renderLightbox() string {
	img, ok := p.lightbox.Current()
	pos, total := p.lightbox.Position()
	return components.RenderLightbox(components.LightboxOptions{
		Open:     ok,
		Image:    img,
		Position: pos,
		Total:    total,
	})
}

// Terminate logs an abandoned submission. Pending timers die with the
// socket's scheduler.
func (p *Page) Terminate(ctx context.Context, reason core.TerminateReason) error {
	if p.log == nil {
		// Never mounted: the socket closed before joining.
		return nil
	}
	if p.form.Status() == contact.StatusSubmitting {
		p.log.Info("contact submission abandoned", logging.String("reason", reason.String()))
	}
	p.log.Debug("page terminated", logging.String("reason", reason.String()))
	return nil
}
