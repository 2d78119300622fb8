package main

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/gabrielmiguelok/pakheritage/client"
	"github.com/gabrielmiguelok/pakheritage/internal/config"
	"github.com/gabrielmiguelok/pakheritage/internal/contact"
	"github.com/gabrielmiguelok/pakheritage/internal/content"
	"github.com/gabrielmiguelok/pakheritage/internal/live"
	"github.com/gabrielmiguelok/pakheritage/pkg/core"
	"github.com/gabrielmiguelok/pakheritage/pkg/limits"
	"github.com/gabrielmiguelok/pakheritage/pkg/logging"
	"github.com/gabrielmiguelok/pakheritage/pkg/metrics"
	"github.com/gabrielmiguelok/pakheritage/pkg/router"
)

// scriptPath is where the live client is served.
const scriptPath = "/_live/" + client.ScriptName

func newLogger(cfg config.Config) *logging.ZapLogger {
	opts := logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format}
	if cfg.Log.File != "" {
		opts.File = logging.DefaultFileConfig(cfg.Log.File)
	}
	return logging.NewZapLogger(opts)
}

func loadContent(cfg config.Config) (*content.Content, error) {
	if cfg.Content == "" {
		return content.Default()
	}
	f, err := os.Open(cfg.Content)
	if err != nil {
		return nil, fmt.Errorf("open content: %w", err)
	}
	defer f.Close()
	return content.Decode(f)
}

// site is everything serve and export share.
type site struct {
	content *content.Content
	router  *router.Router
	metrics *metrics.Site
}

// siteOptions vary between the live server and the static export.
type siteOptions struct {
	// live mounts the client script, the socket limits and the
	// operational endpoints.
	live bool
}

func buildSite(cfg config.Config, logger logging.Logger, opts siteOptions) (*site, error) {
	c, err := loadContent(cfg)
	if err != nil {
		return nil, err
	}
	md, err := content.NewMarkdown(128)
	if err != nil {
		return nil, err
	}

	m := metrics.New("heritage")
	deps := live.Deps{
		Content:  c,
		Markdown: md,
		Submitter: contact.NewMockSubmitter(
			contact.WithFailureRate(cfg.Contact.FailureRate),
			contact.WithLogger(logger),
		),
		Timings: live.Timings{
			ContactDelay:     cfg.Contact.Delay,
			ContactBanner:    cfg.Contact.Banner,
			NewsletterBanner: cfg.Newsletter.Banner,
		},
		Logger:  logger,
		Metrics: m,
		BaseURL: cfg.BaseURL,
	}
	if opts.live {
		deps.ClientScript = scriptPath
	}

	coreCfg := core.DefaultConfig()
	coreCfg.Codec = cfg.Codec
	coreCfg.AllowedOrigins = cfg.AllowedOrigins
	coreCfg.MaxConnections = cfg.MaxConnections
	coreCfg.Debug = cfg.Development()

	secure := router.DefaultSecureHeadersConfig()
	secure.ImageSources = c.ImageOrigins()
	secure.FrameSources = c.FrameOrigins()
	if cfg.Development() {
		secure.HSTSMaxAge = 0
	}

	mws := []router.Middleware{router.SecureHeaders(secure)}
	if opts.live {
		mws = append(mws,
			limits.NewTokenBucket(20, 60, 0).Middleware,
			limits.NewConnections(20).Middleware,
		)
	}
	r := router.New(coreCfg, logger, mws...)

	r.Live("/", live.NewPage(deps))
	for _, section := range live.Sections {
		r.Live("/"+section, live.NewSection(deps, section))
	}

	if opts.live {
		m.Connections = r.Sockets().Count
		r.Handle("/_live/*", http.StripPrefix("/_live/", client.Handler()))
		r.Handle("/metrics", m.Handler())
	}
	r.HandleFunc("/robots.txt", serveBytes("text/plain; charset=utf-8", robots(cfg.BaseURL)))

	// Sitemap entries must be absolute, so there is none without a base URL.
	if cfg.BaseURL != "" {
		body, err := sitemap(cfg.BaseURL, sitePaths())
		if err != nil {
			return nil, fmt.Errorf("build sitemap: %w", err)
		}
		r.HandleFunc("/sitemap.xml", serveBytes("application/xml; charset=utf-8", body))
	}

	return &site{content: c, router: r, metrics: m}, nil
}

func robots(baseURL string) []byte {
	body := "User-agent: *\nAllow: /\n"
	if baseURL != "" {
		body += "\nSitemap: " + strings.TrimSuffix(baseURL, "/") + "/sitemap.xml\n"
	}
	return []byte(body)
}
