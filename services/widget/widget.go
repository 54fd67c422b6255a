package widget

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/meghashyamc/sitesearch/db/searchdb"
	"github.com/meghashyamc/sitesearch/logger"
	"github.com/meghashyamc/sitesearch/services/search"
)

const DefaultDebounceDelay = 150 * time.Millisecond

type State int

const (
	StateCollapsed State = iota
	StateExpanded
)

func (s State) String() string {
	switch s {
	case StateCollapsed:
		return "collapsed"
	case StateExpanded:
		return "expanded"
	default:
		return "unknown"
	}
}

type Key string

const KeyEnter Key = "Enter"

// Input is the search box the widget reads queries from.
type Input interface {
	Value() string
}

// View receives every presentation change. It is called with the widget's
// lock held and must not call back into the widget.
type View interface {
	SetExpanded(expanded bool)
	SetPanelVisible(visible bool)
	RenderOverlay(overlay *Overlay)
	RemoveOverlay()
}

type Loader interface {
	EnsureLoaded(ctx context.Context) error
	Document(id string) (searchdb.Document, bool)
}

type Searcher interface {
	Search(query string) []searchdb.Result
}

type Option func(*Widget)

func WithDebounceDelay(delay time.Duration) Option {
	return func(w *Widget) {
		if delay > 0 {
			w.debounceDelay = delay
		}
	}
}

// Widget is the search box state machine: collapsed/expanded on blur/focus,
// and an overlay of results rendered on Enter until dismissed.
type Widget struct {
	logger   logger.Logger
	input    Input
	view     View
	loader   Loader
	searcher Searcher

	debounceDelay time.Duration
	disabled      bool

	mu            sync.Mutex
	state         State
	panelVisible  bool
	overlay       *Overlay
	overlaySeq    uint64
	collapseTimer *time.Timer
	// bumped whenever a pending collapse is scheduled or cancelled
	collapseGeneration uint64
}

// New creates a widget. Without an input there is nothing to attach to, and
// the returned widget ignores every event.
func New(logger logger.Logger, input Input, view View, loader Loader, searcher Searcher, opts ...Option) *Widget {
	w := &Widget{
		logger:        logger,
		input:         input,
		view:          view,
		loader:        loader,
		searcher:      searcher,
		debounceDelay: DefaultDebounceDelay,
		state:         StateCollapsed,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.view == nil {
		w.view = noopView{}
	}
	if input == nil {
		logger.Debug("no search input, search widget disabled")
		w.disabled = true
	}
	return w
}

func (w *Widget) Enabled() bool {
	return !w.disabled
}

// Focus cancels a pending collapse, expands the input and starts loading
// the corpus in the background.
func (w *Widget) Focus(ctx context.Context) {
	if w.disabled {
		return
	}

	w.mu.Lock()
	w.cancelCollapseLocked()
	if w.state != StateExpanded {
		w.state = StateExpanded
		w.view.SetExpanded(true)
	}
	w.mu.Unlock()

	go func() {
		if err := w.loader.EnsureLoaded(ctx); err != nil {
			w.logger.Warn("search corpus not loaded on focus", "err", err.Error())
		}
	}()
}

// Blur collapses the widget after the debounce delay, leaving time for a
// click on a result link to land first.
func (w *Widget) Blur() {
	if w.disabled {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.cancelCollapseLocked()
	generation := w.collapseGeneration
	w.collapseTimer = time.AfterFunc(w.debounceDelay, func() {
		w.collapse(generation)
	})
}

func (w *Widget) cancelCollapseLocked() {
	if w.collapseTimer != nil {
		w.collapseTimer.Stop()
		w.collapseTimer = nil
	}
	// a timer that already fired may still be waiting for the lock
	w.collapseGeneration++
}

func (w *Widget) collapse(generation uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if generation != w.collapseGeneration {
		return
	}
	w.collapseTimer = nil

	if w.state != StateCollapsed {
		w.state = StateCollapsed
		w.view.SetExpanded(false)
	}
	if w.panelVisible {
		w.panelVisible = false
		w.view.SetPanelVisible(false)
	}
}

// KeyDown runs a search when Enter is pressed with a long enough query and
// renders a fresh overlay with the outcome. Every other key is ignored.
func (w *Widget) KeyDown(ctx context.Context, key Key) {
	if w.disabled || key != KeyEnter {
		return
	}

	query := strings.TrimSpace(w.input.Value())
	if !search.IsRunnable(query) {
		return
	}

	// Joins a load started by Focus; on failure the index is simply empty.
	if err := w.loader.EnsureLoaded(ctx); err != nil {
		w.logger.Warn("searching without a loaded corpus", "query", query, "err", err.Error())
	}

	results := w.searcher.Search(query)
	items := make([]OverlayItem, 0, len(results))
	for _, result := range results {
		doc, ok := w.loader.Document(result.ID)
		if !ok {
			w.logger.Warn("search result not found in corpus", "id", result.ID)
			continue
		}
		items = append(items, OverlayItem{Title: doc.Title, URL: doc.URL})
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.overlaySeq++
	w.overlay = &Overlay{Seq: w.overlaySeq, Query: query, Items: items}
	w.view.RenderOverlay(w.overlay)
	if !w.panelVisible {
		w.panelVisible = true
		w.view.SetPanelVisible(true)
	}
}

// Dismiss removes the results overlay.
func (w *Widget) Dismiss() {
	if w.disabled {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.overlay == nil {
		return
	}
	w.overlay = nil
	w.view.RemoveOverlay()
}

func (w *Widget) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

func (w *Widget) PanelVisible() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.panelVisible
}

// Overlay returns the overlay currently shown, or nil.
func (w *Widget) Overlay() *Overlay {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.overlay
}

type noopView struct{}

func (noopView) SetExpanded(bool)       {}
func (noopView) SetPanelVisible(bool)   {}
func (noopView) RenderOverlay(*Overlay) {}
func (noopView) RemoveOverlay()         {}
