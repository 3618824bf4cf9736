// Package parser decodes cached manual page files into markdown text, the
// single format the outline, filter and render passes work on.
package parser

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"
)

// ErrUnsupported is returned for file extensions without a decoder.
var ErrUnsupported = errors.New("unsupported file extension")

// Parser converts raw file bytes into markdown text.
type Parser interface {
	Parse(r io.Reader, filename string) (string, error)
}

// Extensions lists supported cache file extensions in lookup preference
// order: a page cached as both .md and .html is served from the .md file.
var Extensions = []string{".md", ".markdown", ".html", ".htm", ".txt", ".pdf", ".docx"}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".txt":
		return &TextParser{}, nil
	case ".pdf":
		return &PDFParser{}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	return slices.Contains(Extensions, strings.ToLower(filepath.Ext(filename)))
}
