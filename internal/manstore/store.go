// Package manstore loads cached manual pages from the cache directory.
//
// A page with id "ls" lives at <dir>/ls.md (or .html, .txt, .pdf, .docx).
// Loaded documents are memoised until the file changes on disk.
package manstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/dgallion1/manview/internal/document"
	"github.com/dgallion1/manview/internal/parser"
)

var (
	ErrNotFound  = errors.New("man page not found")
	ErrInvalidID = errors.New("invalid man page id")
	ErrTooLarge  = errors.New("man page exceeds size limit")
)

// Store reads and memoises cached pages.
type Store struct {
	dir      string
	maxBytes int64
	log      *slog.Logger

	mu   sync.Mutex
	docs map[string]*document.Document
}

func New(dir string, maxBytes int64, log *slog.Logger) *Store {
	return &Store{
		dir:      dir,
		maxBytes: maxBytes,
		log:      log,
		docs:     make(map[string]*document.Document),
	}
}

// Dir returns the cache directory.
func (s *Store) Dir() string { return s.dir }

// ValidateID rejects ids that are empty or could escape the cache directory.
func ValidateID(id string) error {
	switch {
	case id == "":
		return fmt.Errorf("%w: empty", ErrInvalidID)
	case strings.ContainsAny(id, `/\`+"\x00"):
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidID, id)
	case strings.HasPrefix(id, "."):
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

// Load returns the document for id. Missing pages yield ErrNotFound; the
// caller treats that as terminal for the load attempt.
func (s *Store) Load(ctx context.Context, id string) (*document.Document, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	doc, ok := s.docs[id]
	s.mu.Unlock()
	if ok {
		return doc, nil
	}

	path, err := s.locate(id)
	if err != nil {
		return nil, err
	}
	doc, err = s.read(id, path)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.docs[id] = doc
	s.mu.Unlock()
	s.log.Debug("loaded man page", "id", id, "path", path, "lines", doc.Len())
	return doc, nil
}

func (s *Store) locate(id string) (string, error) {
	for _, ext := range parser.Extensions {
		path := filepath.Join(s.dir, id+ext)
		info, err := os.Stat(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return "", fmt.Errorf("stat %s: %w", path, err)
		}
		if info.IsDir() {
			continue
		}
		if s.maxBytes > 0 && info.Size() > s.maxBytes {
			return "", fmt.Errorf("%w: %s is %d bytes (max %d)", ErrTooLarge, filepath.Base(path), info.Size(), s.maxBytes)
		}
		return path, nil
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, id)
}

func (s *Store) read(id, path string) (*document.Document, error) {
	p, err := parser.ForFile(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	md, err := p.Parse(f, filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return document.New(id, md), nil
}

// List returns the ids of cached pages, sorted. A non-empty pattern filters
// ids with doublestar glob syntax (e.g. "git-*").
func (s *Store) List(pattern string) ([]string, error) {
	if pattern != "" && !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid pattern %q", pattern)
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("read cache dir: %w", err)
	}

	seen := make(map[string]bool)
	ids := []string{}
	for _, e := range entries {
		if e.IsDir() || !parser.IsSupportedExtension(e.Name()) {
			continue
		}
		id := idFromName(e.Name())
		if seen[id] || ValidateID(id) != nil {
			continue
		}
		if pattern != "" {
			ok, err := doublestar.Match(pattern, id)
			if err != nil {
				return nil, fmt.Errorf("match %q: %w", pattern, err)
			}
			if !ok {
				continue
			}
		}
		seen[id] = true
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Invalidate drops the memoised document for id.
func (s *Store) Invalidate(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, id)
}

// Cached reports whether id is memoised.
func (s *Store) Cached(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.docs[id]
	return ok
}

// Watch evicts memoised documents when their files change. It blocks until
// ctx is cancelled.
func (s *Store) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	if err := w.Add(s.dir); err != nil {
		return fmt.Errorf("watch %s: %w", s.dir, err)
	}
	s.log.Info("watching cache dir", "dir", s.dir)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			s.handleEvent(ev)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.log.Warn("cache watcher error", "error", err)
		}
	}
}

func (s *Store) handleEvent(ev fsnotify.Event) {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return
	}
	name := filepath.Base(ev.Name)
	if !parser.IsSupportedExtension(name) {
		return
	}
	id := idFromName(name)
	if s.Cached(id) {
		s.Invalidate(id)
		s.log.Debug("evicted man page", "id", id, "op", ev.Op.String())
	}
}

func idFromName(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}
