package corpus

import (
	"context"
	"sync"

	"github.com/meghashyamc/sitesearch/db/searchdb"
	"github.com/meghashyamc/sitesearch/logger"
	"golang.org/x/sync/singleflight"
)

const loadKey = "corpus"

type Fetcher interface {
	Fetch(ctx context.Context) ([]searchdb.Document, error)
	// Source names where documents come from, for logs and errors.
	Source() string
}

// Indexer is the build side of the search index.
type Indexer interface {
	BuildIndex(documents []searchdb.Document) error
}

// Loader fetches the corpus once, lazily, and hands it to the indexer.
type Loader struct {
	logger  logger.Logger
	fetcher Fetcher
	indexer Indexer

	group singleflight.Group

	mu        sync.RWMutex
	loaded    bool
	documents []searchdb.Document
	byID      map[string]int
}

func NewLoader(logger logger.Logger, fetcher Fetcher, indexer Indexer) *Loader {
	return &Loader{
		logger:  logger,
		fetcher: fetcher,
		indexer: indexer,
	}
}

// EnsureLoaded loads and indexes the corpus unless that already happened.
// Concurrent callers share a single fetch. A failed load is reported as a
// *LoadError and retried by the next call.
func (l *Loader) EnsureLoaded(ctx context.Context) error {
	if l.Loaded() {
		return nil
	}

	// The shared fetch must not die with whichever caller happened to start it.
	loadCtx := context.WithoutCancel(ctx)
	resultC := l.group.DoChan(loadKey, func() (interface{}, error) {
		return nil, l.load(loadCtx)
	})

	select {
	case result := <-resultC:
		return result.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Loader) load(ctx context.Context) error {
	if l.Loaded() {
		return nil
	}

	l.logger.Info("loading search corpus", "source", l.fetcher.Source())

	documents, err := l.fetcher.Fetch(ctx)
	if err != nil {
		l.logger.Error("failed to load search corpus", "source", l.fetcher.Source(), "err", err.Error())
		return &LoadError{Source: l.fetcher.Source(), Err: err}
	}

	if err := l.indexer.BuildIndex(documents); err != nil {
		l.logger.Error("failed to index search corpus", "source", l.fetcher.Source(), "err", err.Error())
		return &LoadError{Source: l.fetcher.Source(), Err: err}
	}

	byID := make(map[string]int, len(documents))
	for i, doc := range documents {
		if _, ok := byID[doc.ID]; !ok {
			byID[doc.ID] = i
		}
	}

	l.mu.Lock()
	l.documents = documents
	l.byID = byID
	l.loaded = true
	l.mu.Unlock()

	l.logger.Info("loaded search corpus", "source", l.fetcher.Source(), "documents", len(documents))
	return nil
}

func (l *Loader) Loaded() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.loaded
}

// Documents returns the corpus in the order it was served. It is empty until loaded.
func (l *Loader) Documents() []searchdb.Document {
	l.mu.RLock()
	defer l.mu.RUnlock()
	documents := make([]searchdb.Document, len(l.documents))
	copy(documents, l.documents)
	return documents
}

func (l *Loader) Document(id string) (searchdb.Document, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	i, ok := l.byID[id]
	if !ok {
		return searchdb.Document{}, false
	}
	return l.documents[i], true
}
