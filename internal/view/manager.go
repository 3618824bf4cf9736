package view

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/manview/internal/document"
	"github.com/dgallion1/manview/internal/render"
	"github.com/dgallion1/manview/internal/tracker"
)

// ErrNotFound is returned for unknown or expired view ids.
var ErrNotFound = errors.New("view not found")

// Loader supplies documents by id.
type Loader interface {
	Load(ctx context.Context, id string) (*document.Document, error)
}

// Renderer converts a document to HTML.
type Renderer interface {
	Render(ctx context.Context, doc *document.Document, theme render.Theme) (*render.Page, error)
}

// Options configures a Manager.
type Options struct {
	TTL             time.Duration
	ScrollOffset    float64
	Disambiguate    bool
	CleanupInterval time.Duration
}

// Manager opens views and routes search and scroll events to them.
type Manager struct {
	views    *Store
	loader   Loader
	renderer Renderer
	log      *slog.Logger
	opts     Options

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewManager(loader Loader, renderer Renderer, log *slog.Logger, opts Options) *Manager {
	if opts.TTL <= 0 {
		opts.TTL = 30 * time.Minute
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = time.Minute
	}
	return &Manager{
		views:    NewStore(opts.TTL),
		loader:   loader,
		renderer: renderer,
		log:      log,
		opts:     opts,
	}
}

// Start launches the idle-view sweeper.
func (m *Manager) Start(ctx context.Context) {
	sweepCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(m.opts.CleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-sweepCtx.Done():
				return
			case <-ticker.C:
				m.sweep()
			}
		}
	}()
}

// Stop halts the sweeper.
func (m *Manager) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
}

func (m *Manager) sweep() {
	for _, v := range m.views.Cleanup() {
		v.mu.Lock()
		v.tracker.Detach()
		v.mu.Unlock()
		m.log.Info("view expired", "view_id", v.ID, "doc_id", v.DocID)
	}
}

// Outline extracts the outline the way views do, honouring the
// disambiguation setting.
func (m *Manager) Outline(doc *document.Document) document.Outline {
	if m.opts.Disambiguate {
		return document.ExtractUniqueOutline(doc)
	}
	return document.ExtractOutline(doc)
}

// Open loads docID, builds its outline, renders it and registers a view.
func (m *Manager) Open(ctx context.Context, docID string, theme render.Theme) (*View, error) {
	doc, err := m.loader.Load(ctx, docID)
	if err != nil {
		return nil, err
	}
	page, err := m.renderer.Render(ctx, doc, theme)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	v := &View{
		ID:        uuid.NewString(),
		DocID:     docID,
		Theme:     theme,
		CreatedAt: now,
		UpdatedAt: now,
		doc:       doc,
		outline:   m.Outline(doc),
		tracker:   tracker.New(m.opts.ScrollOffset),
	}
	v.setPage(doc, page)
	m.views.Put(v)

	m.log.Info("view opened", "view_id", v.ID, "doc_id", docID, "headings", len(v.outline), "anchors", len(page.Anchors))
	return v, nil
}

// Get returns the view with id.
func (m *Manager) Get(id string) (*View, error) {
	v := m.views.Get(id)
	if v == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return v, nil
}

// Search sets the view's search term and re-renders the filtered document.
// Concurrent searches on one view apply in arrival order.
func (m *Manager) Search(ctx context.Context, id, term string) (*View, error) {
	return m.SearchSeq(ctx, id, term, 0)
}

// SearchSeq is Search for a sequenced event stream: a search whose seq is
// not newer than the last one applied leaves the view unchanged.
func (m *Manager) SearchSeq(ctx context.Context, id, term string, seq uint64) (*View, error) {
	v, err := m.Get(id)
	if err != nil {
		return nil, err
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if stale(&v.searchSeq, seq) {
		m.log.Debug("stale search dropped", "view_id", id, "seq", seq, "last", v.searchSeq)
		return v, nil
	}
	if term == v.term && v.page != nil {
		v.UpdatedAt = time.Now()
		return v, nil
	}
	filtered := document.FilterByTerm(v.doc, term)
	page, err := m.renderer.Render(ctx, filtered, v.Theme)
	if err != nil {
		return nil, err
	}
	v.term = term
	v.setPage(filtered, page)

	m.log.Debug("view searched", "view_id", id, "term", term, "lines", filtered.Len(), "anchors", len(page.Anchors))
	return v, nil
}

// Scroll handles one scroll event and returns the active anchor id.
func (m *Manager) Scroll(id string, headings []tracker.Position, scrollY float64) (string, error) {
	return m.ScrollSeq(id, headings, scrollY, 0)
}

// ScrollSeq is Scroll for a sequenced event stream. Stale events return
// the current active id without touching the tracker.
func (m *Manager) ScrollSeq(id string, headings []tracker.Position, scrollY float64, seq uint64) (string, error) {
	v, err := m.Get(id)
	if err != nil {
		return "", err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if stale(&v.scrollSeq, seq) {
		return v.tracker.Current(), nil
	}
	return v.scroll(headings, scrollY), nil
}

// Close tears a view down.
func (m *Manager) Close(id string) error {
	v := m.views.Remove(id)
	if v == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	v.mu.Lock()
	v.tracker.Detach()
	v.mu.Unlock()
	m.log.Info("view closed", "view_id", id, "doc_id", v.DocID)
	return nil
}

// Count returns the number of open views.
func (m *Manager) Count() int {
	return m.views.Len()
}
