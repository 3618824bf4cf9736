package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dgallion1/manview/internal/fetch"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <topic>",
	Short: "Render a man page with man -Thtml and store it in the cache",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		res, err := fetch.New(cfg.CacheDir, cliLogger()).Fetch(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "HTML saved to: %s\n", res.HTMLPath)
		fmt.Fprintf(cmd.OutOrStdout(), "Markdown saved to: %s\n", res.MarkdownPath)
		return nil
	},
}
