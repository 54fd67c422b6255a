package imports

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/meghashyamc/sitesearch/db/kvdb"
	"github.com/meghashyamc/sitesearch/logger"
	"github.com/meghashyamc/sitesearch/services/content"
	"golang.org/x/sync/errgroup"
)

// Importer reads a content directory into the content store.
type Importer interface {
	Discover(rootPath string) ([]content.SourceFile, error)
	Import(file content.SourceFile) error
}

const (
	ProgressStatusQueued     = 0
	ProgressStatusDiscovered = 10
	ProgressStatusComplete   = 100
	ProgressStatusFailed     = -1

	maxGoRoutinesForFileImport = 8
	maxImportTime              = 30 * time.Minute
	// how many files between two progress updates
	progressEvery = 25
)

var (
	ErrImportInProgress = errors.New("import already in progress")
	ErrRequestNotFound  = errors.New("import request not found")
)

type Summary struct {
	Imported int
	Failed   int
}

type Service struct {
	logger      logger.Logger
	importer    Importer
	store       kvdb.DB
	importC     chan importRequest
	busy        atomic.Bool
	onCompleted func(Summary)
}

type importRequest struct {
	rootPath  string
	requestID string
}

type Option func(*Service)

// WithOnCompleted registers a callback run after every background import
// that did not fail outright.
func WithOnCompleted(onCompleted func(Summary)) Option {
	return func(s *Service) {
		s.onCompleted = onCompleted
	}
}

// New starts the background import worker, which stops with ctx.
func New(ctx context.Context, logger logger.Logger, importer Importer, store kvdb.DB, opts ...Option) *Service {
	s := &Service{
		logger:   logger,
		importer: importer,
		store:    store,
		importC:  make(chan importRequest, 1),
	}
	for _, opt := range opts {
		opt(s)
	}

	go s.work(ctx)
	return s
}

// Start hands rootPath to the background worker. Only one import runs at a time.
func (s *Service) Start(rootPath string, requestID string) error {
	if !s.busy.CompareAndSwap(false, true) {
		s.logger.Warn("request to import while an import is already in progress", "request_id", requestID)
		return ErrImportInProgress
	}

	s.setRequestStatus(requestID, ProgressStatusQueued)
	// never blocks: the buffer holds the single request allowed in flight
	s.importC <- importRequest{rootPath: rootPath, requestID: requestID}
	return nil
}

// GetStatus returns the progress of a request: 0 to 100, or -1 if it failed.
func (s *Service) GetStatus(requestID string) (int, error) {
	value, err := s.store.Get(kvdb.RequestsBucket, requestID)
	if err != nil {
		if errors.Is(err, kvdb.ErrNotFound) || errors.Is(err, kvdb.ErrInvalidKey) {
			return 0, fmt.Errorf("%w: %s", ErrRequestNotFound, requestID)
		}
		return 0, err
	}

	status, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid status value: %w", err)
	}
	return status, nil
}

func (s *Service) work(ctx context.Context) {
	for {
		select {
		case req := <-s.importC:
			importCtx, cancel := context.WithTimeout(ctx, maxImportTime)
			summary, err := s.run(importCtx, req.rootPath, req.requestID)
			cancel()
			s.busy.Store(false)
			if err == nil && s.onCompleted != nil {
				s.onCompleted(summary)
			}
		case <-ctx.Done():
			s.logger.Info("import service stopped", "reason", ctx.Err())
			return
		}
	}
}

// Run imports rootPath in the foreground.
func (s *Service) Run(ctx context.Context, rootPath string) (Summary, error) {
	return s.run(ctx, rootPath, "")
}

func (s *Service) run(ctx context.Context, rootPath string, requestID string) (Summary, error) {
	s.logger.Info("importing content", "root", rootPath, "request_id", requestID)

	files, err := s.importer.Discover(rootPath)
	if err != nil {
		s.logger.Error("failed to discover content", "request_id", requestID, "err", err.Error())
		s.setRequestStatus(requestID, ProgressStatusFailed)
		return Summary{}, err
	}
	s.setRequestStatus(requestID, ProgressStatusDiscovered)
	s.logger.Info("discovered content files", "num_of_files", len(files))

	var imported, failed atomic.Int64
	progress := &progressReporter{
		last: ProgressStatusDiscovered,
		set:  func(status int) { s.setRequestStatus(requestID, status) },
	}
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(maxGoRoutinesForFileImport)

	for _, file := range files {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			if err := s.importer.Import(file); err != nil {
				s.logger.Warn("could not import file", "path", file.Path, "err", err.Error())
				failed.Add(1)
			} else {
				imported.Add(1)
			}

			if done := int(imported.Load() + failed.Load()); done%progressEvery == 0 {
				progress.report(getProgressPercentage(done, len(files), ProgressStatusDiscovered, ProgressStatusComplete))
			}
			return nil
		})
	}

	summary := func() Summary {
		return Summary{Imported: int(imported.Load()), Failed: int(failed.Load())}
	}
	if err := group.Wait(); err != nil {
		s.logger.Error("import cancelled", "request_id", requestID, "err", err.Error())
		s.setRequestStatus(requestID, ProgressStatusFailed)
		return summary(), err
	}

	s.setRequestStatus(requestID, ProgressStatusComplete)
	s.logger.Info("finished importing content", "request_id", requestID, "imported", imported.Load(), "failed", failed.Load())
	return summary(), nil
}

func (s *Service) setRequestStatus(requestID string, status int) {
	if requestID == "" {
		return
	}
	if err := s.store.Set(kvdb.RequestsBucket, requestID, strconv.Itoa(status)); err != nil {
		s.logger.Error("failed to update request status", "request_id", requestID, "progress", status, "err", err.Error())
	}
}

// progressReporter stores progress updates that move forward. Workers finish
// out of order, so a late lower value is dropped.
type progressReporter struct {
	mu   sync.Mutex
	last int
	set  func(status int)
}

func (p *progressReporter) report(status int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if status <= p.last {
		return
	}
	p.last = status
	p.set(status)
}

func getProgressPercentage(done int, total int, initial int, final int) int {
	if done == 0 || total == 0 {
		return initial
	}

	if done >= total {
		return final
	}

	progress := float64(done) / float64(total)
	result := float64(initial) + progress*float64(final-initial)

	return int(result)
}
