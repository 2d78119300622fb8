package main

import (
	"encoding/xml"
	"net/http"
	"strings"
)

const sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

type urlset struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc string `xml:"loc"`
}

// sitePaths lists every page route, full page first.
func sitePaths() []string {
	return append([]string{"/"}, sectionPaths()...)
}

// sitemap renders paths as absolute URLs under baseURL.
func sitemap(baseURL string, paths []string) ([]byte, error) {
	base := strings.TrimSuffix(baseURL, "/")
	set := urlset{Xmlns: sitemapNS, URLs: make([]sitemapURL, len(paths))}
	for i, p := range paths {
		set.URLs[i] = sitemapURL{Loc: base + p}
	}
	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), append(out, '\n')...), nil
}

func serveBytes(contentType string, body []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write(body)
	}
}
