package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dgallion1/manview/internal/document"
	"github.com/dgallion1/manview/internal/manstore"
)

var filterCmd = &cobra.Command{
	Use:   "filter <id> <term>",
	Short: "Print the lines of a cached page containing term (case-insensitive)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		doc, err := manstore.New(cfg.CacheDir, cfg.MaxDocumentBytes, cliLogger()).Load(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		for _, line := range document.FilterByTerm(doc, args[1]).Lines() {
			fmt.Fprintln(cmd.OutOrStdout(), line)
		}
		return nil
	},
}
