package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/dgallion1/manview/internal/document"
	"github.com/dgallion1/manview/internal/manstore"
)

// outputFormat is a validated --output value.
type outputFormat string

const (
	formatText outputFormat = "text"
	formatJSON outputFormat = "json"
	formatYAML outputFormat = "yaml"
)

var _ pflag.Value = (*outputFormat)(nil)

func (f *outputFormat) String() string { return string(*f) }

func (f *outputFormat) Set(s string) error {
	switch v := outputFormat(strings.ToLower(s)); v {
	case formatText, formatJSON, formatYAML:
		*f = v
		return nil
	}
	return fmt.Errorf("must be text, json or yaml")
}

func (f *outputFormat) Type() string { return "format" }

var (
	outlineFormat       = formatText
	outlineDisambiguate bool
)

var outlineCmd = &cobra.Command{
	Use:   "outline <id>",
	Short: "Print the heading outline of a cached page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		doc, err := manstore.New(cfg.CacheDir, cfg.MaxDocumentBytes, cliLogger()).Load(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		outline := document.ExtractOutline(doc)
		if outlineDisambiguate || cfg.DisambiguateAnchors {
			outline = document.ExtractUniqueOutline(doc)
		}
		return writeOutline(cmd.OutOrStdout(), outlineFormat, outline)
	},
}

func init() {
	outlineCmd.Flags().VarP(&outlineFormat, "output", "o", "output format: text, json or yaml")
	outlineCmd.Flags().BoolVar(&outlineDisambiguate, "disambiguate", false, "suffix repeated anchors with the heading ordinal")
}

type outlineRow struct {
	Level    int    `json:"level" yaml:"level"`
	Text     string `json:"text" yaml:"text"`
	AnchorID string `json:"anchor_id" yaml:"anchor_id"`
	Ordinal  int    `json:"ordinal" yaml:"ordinal"`
	Linkable bool   `json:"linkable" yaml:"linkable"`
}

func writeOutline(w io.Writer, format outputFormat, outline document.Outline) error {
	if format == formatText {
		for _, h := range outline {
			fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", h.Indent()), h.Text)
		}
		return nil
	}

	rows := make([]outlineRow, len(outline))
	for i, h := range outline {
		rows[i] = outlineRow{Level: h.Level, Text: h.Text, AnchorID: h.AnchorID, Ordinal: h.Ordinal, Linkable: h.Linkable()}
	}
	if format == formatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}
	data, err := yaml.Marshal(rows)
	if err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	_, err = w.Write(data)
	return err
}
