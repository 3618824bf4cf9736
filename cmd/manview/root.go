package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dgallion1/manview/internal/config"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "manview",
	Short: "Browse cached man pages with an outline and live section tracking",
	Long: `manview renders cached man pages (markdown, HTML, text, PDF or DOCX)
as HTML with a linked outline of their headings, line filtering and
scroll-driven active-section highlighting.

Pages are read from the cache directory (MANVIEW_CACHE_DIR); populate it
with "manview fetch <topic>".`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "YAML config file overlaid on environment settings",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&verbose, "verbose", "v", false, "log progress to stderr",
	)

	rootCmd.AddCommand(serveCmd, fetchCmd, outlineCmd, filterCmd, versionCmd)
}

// loadConfig reads the environment, overlays --config and validates.
func loadConfig() (config.Config, error) {
	cfg := config.Load()
	if cfgFile != "" {
		if err := cfg.LoadFile(cfgFile); err != nil {
			return cfg, err
		}
	}
	return cfg, cfg.Validate()
}

// cliLogger logs as text to stderr with --verbose and discards otherwise.
func cliLogger() *slog.Logger {
	if !verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
