package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gabrielmiguelok/pakheritage/internal/content"
)

func newCatalogCmd(opts *rootOptions) *cobra.Command {
	var (
		category string
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List the gallery images",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadContent(opts.cfg)
			if err != nil {
				return err
			}

			images := c.Catalog.All()
			if category != "" {
				cat := content.Category(category)
				if !cat.Valid() {
					return fmt.Errorf("unknown category %q", category)
				}
				images = c.Catalog.Filter(cat)
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(images)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCATEGORY\tCAPTION")
			for _, img := range images {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", img.ID, img.Category.Label(), img.Caption)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "", "only this category")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}
