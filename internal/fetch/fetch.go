// Package fetch populates the page cache from the local man installation.
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/dgallion1/manview/internal/manstore"
	"github.com/dgallion1/manview/internal/parser"
)

var (
	ErrManMissing = errors.New("'man' command not found in PATH")
	ErrNoPage     = errors.New("man page unavailable")
)

// Runner executes a command and returns its stdout.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Result reports where a fetched page was written.
type Result struct {
	Topic        string `json:"topic"`
	HTMLPath     string `json:"html_path"`
	MarkdownPath string `json:"markdown_path"`
}

// Fetcher renders man pages to HTML with `man -Thtml` and stores the HTML
// and its markdown conversion in the cache directory.
type Fetcher struct {
	dir      string
	log      *slog.Logger
	run      Runner
	lookPath func(string) (string, error)
}

func New(dir string, log *slog.Logger) *Fetcher {
	return &Fetcher{
		dir:      dir,
		log:      log,
		run:      execRunner,
		lookPath: exec.LookPath,
	}
}

// WithRunner replaces command execution, for tests and sandboxes.
func (f *Fetcher) WithRunner(run Runner, lookPath func(string) (string, error)) *Fetcher {
	f.run = run
	f.lookPath = lookPath
	return f
}

// Fetch writes <topic>.html and <topic>.md under the cache directory.
func (f *Fetcher) Fetch(ctx context.Context, topic string) (Result, error) {
	if err := manstore.ValidateID(topic); err != nil {
		return Result{}, err
	}
	if _, err := f.lookPath("man"); err != nil {
		return Result{}, ErrManMissing
	}
	if err := os.MkdirAll(f.dir, 0o755); err != nil { // rwxr-xr-x
		return Result{}, fmt.Errorf("create cache dir: %w", err)
	}

	html, err := f.run(ctx, "man", "-Thtml", topic)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %s: %v", ErrNoPage, topic, err)
	}
	if len(bytes.TrimSpace(html)) == 0 {
		return Result{}, fmt.Errorf("%w: %s: empty output", ErrNoPage, topic)
	}

	res := Result{
		Topic:        topic,
		HTMLPath:     filepath.Join(f.dir, topic+".html"),
		MarkdownPath: filepath.Join(f.dir, topic+".md"),
	}
	if err := os.WriteFile(res.HTMLPath, html, 0o644); err != nil { // rw-r--r--
		return Result{}, fmt.Errorf("write html: %w", err)
	}

	md, err := (&parser.HTMLParser{}).Parse(bytes.NewReader(html), topic+".html")
	if err != nil {
		return Result{}, fmt.Errorf("convert %s: %w", topic, err)
	}
	if err := os.WriteFile(res.MarkdownPath, []byte(md), 0o644); err != nil {
		return Result{}, fmt.Errorf("write markdown: %w", err)
	}

	f.log.Info("fetched man page", "topic", topic, "html_bytes", len(html), "markdown_bytes", len(md))
	return res, nil
}

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%w: %s", err, msg)
		}
		return nil, err
	}
	return out, nil
}
