package content

import (
	"bytes"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// Markdown renders the Markdown fields of the content file to sanitised
// HTML. Results are cached by source text; the copy is fixed, so the cache
// only ever holds a handful of entries.
type Markdown struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
	cache  *lru.Cache[string, string]
}

// NewMarkdown creates a renderer caching up to size results.
func NewMarkdown(size int) (*Markdown, error) {
	cache, err := lru.New[string, string](size)
	if err != nil {
		return nil, fmt.Errorf("markdown cache: %w", err)
	}

	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").OnElements("p", "span")
	policy.RequireNoFollowOnLinks(true)
	policy.AddTargetBlankToFullyQualifiedLinks(true)

	return &Markdown{
		md: goldmark.New(
			goldmark.WithExtensions(extension.Typographer, extension.Linkify),
			goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
		),
		policy: policy,
		cache:  cache,
	}, nil
}

// Render converts src to HTML. Raw HTML in src survives goldmark and is
// then filtered by the sanitiser.
func (m *Markdown) Render(src string) (string, error) {
	if out, ok := m.cache.Get(src); ok {
		return out, nil
	}

	var buf bytes.Buffer
	if err := m.md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	out := string(bytes.TrimSpace(m.policy.SanitizeBytes(buf.Bytes())))

	m.cache.Add(src, out)
	return out, nil
}

// MustRender is Render for the embedded copy, which is known to convert.
func (m *Markdown) MustRender(src string) string {
	out, err := m.Render(src)
	if err != nil {
		panic(err)
	}
	return out
}

// Cached returns the number of cached renders.
func (m *Markdown) Cached() int {
	return m.cache.Len()
}
