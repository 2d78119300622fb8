package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gabrielmiguelok/pakheritage/internal/live"
	"github.com/gabrielmiguelok/pakheritage/pkg/logging"
)

func newExportCmd(opts *rootOptions) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every route as static HTML",
		Long: `Export renders the full page and each section route without the live
client, so the result can be hosted by any static file server. robots.txt is
always written; sitemap.xml only when a base URL is configured.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := buildSite(opts.cfg, logging.NopLogger{}, siteOptions{})
			if err != nil {
				return err
			}
			for _, p := range sitePaths() {
				var buf bytes.Buffer
				if err := s.router.RenderRoute(cmd.Context(), p, nil, &buf); err != nil {
					return fmt.Errorf("render %s: %w", p, err)
				}
				file := filepath.Join(out, strings.TrimPrefix(p, "/"), "index.html")
				if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
					return err
				}
				if err := os.WriteFile(file, buf.Bytes(), 0o644); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", p, file)
			}

			files := map[string][]byte{"robots.txt": robots(opts.cfg.BaseURL)}
			if opts.cfg.BaseURL != "" {
				body, err := sitemap(opts.cfg.BaseURL, sitePaths())
				if err != nil {
					return err
				}
				files["sitemap.xml"] = body
			}
			for name, body := range files {
				if err := os.WriteFile(filepath.Join(out, name), body, 0o644); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "public", "output directory")
	return cmd
}

func sectionPaths() []string {
	paths := make([]string, len(live.Sections))
	for i, s := range live.Sections {
		paths[i] = "/" + s
	}
	return paths
}
