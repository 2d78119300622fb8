package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gabrielmiguelok/pakheritage/internal/config"
)

type rootOptions struct {
	configFile string
	cfg        config.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "heritage",
		Short:         "Pakistani heritage site",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags(), opts.configFile)
			if err != nil {
				return err
			}
			opts.cfg = cfg
			return nil
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.configFile, "config", "", "config file (default ./heritage.yaml if present)")
	config.BindFlags(pf)

	cmd.AddCommand(
		newServeCmd(opts),
		newExportCmd(opts),
		newCatalogCmd(opts),
		&cobra.Command{
			Use:   "version",
			Short: "Print the version",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintln(cmd.OutOrStdout(), "heritage", version)
			},
		},
	)
	return cmd
}
