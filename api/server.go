package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/sitesearch/config"
	"github.com/meghashyamc/sitesearch/db/kvdb"
	"github.com/meghashyamc/sitesearch/db/migrations"
	"github.com/meghashyamc/sitesearch/logger"
	"github.com/meghashyamc/sitesearch/metrics"
	"github.com/meghashyamc/sitesearch/services/content"
	"github.com/meghashyamc/sitesearch/services/imports"
	"github.com/meghashyamc/sitesearch/services/shortcode"
	"github.com/meghashyamc/sitesearch/services/theme"
	"github.com/meghashyamc/sitesearch/validation"
)

const shutdownTimeout = 10 * time.Second

type server struct {
	cfg        *config.Config
	logger     logger.Logger
	router     *gin.Engine
	httpServer *http.Server
	kvdb       kvdb.DB
	validator  *validation.Validator
	services   services
}

// Run serves the API until ctx is done or the process is interrupted.
func Run(ctx context.Context, cfg *config.Config, logger logger.Logger) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	s := &server{
		cfg:    cfg,
		logger: logger,
	}
	if err := s.setupDependencies(ctx); err != nil {
		return err
	}
	s.setupRouter()
	s.setupHTTPServer()

	return s.serve(ctx)
}

func (s *server) setupDependencies(ctx context.Context) error {
	var err error
	s.kvdb, err = kvdb.New(s.logger, s.cfg.GetKVDBPath())
	if err != nil {
		s.logger.Error("error creating kvDB", "err", err.Error())
		return err
	}

	if _, err := migrations.NewMigrator(s.logger, s.kvdb, migrations.All()).Up(); err != nil {
		s.logger.Error("error applying migrations", "err", err.Error())
		s.kvdb.Close()
		return err
	}

	s.validator, err = validation.New(s.logger)
	if err != nil {
		s.logger.Error("error creating validator", "err", err.Error())
		s.kvdb.Close()
		return err
	}

	shortcodes, err := shortcode.Load()
	if err != nil {
		s.logger.Error("error loading shortcodes", "err", err.Error())
		s.kvdb.Close()
		return err
	}

	contentService := content.New(s.logger, s.kvdb, s.validator, shortcodes)
	s.services = services{
		content: contentService,
		imports: imports.New(ctx, s.logger, content.NewImporter(s.logger, contentService), s.kvdb,
			imports.WithOnCompleted(func(summary imports.Summary) {
				metrics.ObserveImport(summary.Imported, summary.Failed)
			}),
		),
		theme: theme.New(s.logger, s.kvdb),
	}

	return nil
}

func (s *server) setupRouter() {
	router := newRouter()

	router.Use(loggingMiddleware(s.logger))

	setupRoutes(router, s.logger, s.services, s.validator)

	s.router = router
}

func (s *server) setupHTTPServer() {
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%s", s.cfg.GetPort()),
		Handler:           s.router.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func (s *server) serve(ctx context.Context) error {
	errC := make(chan error, 1)
	go func() {
		s.logger.Info("starting http server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errC <- err
		}
		close(errC)
	}()

	select {
	case err := <-errC:
		s.logger.Error("http server failed", "err", err.Error())
		s.kvdb.Close()
		return err
	case <-ctx.Done():
	}

	s.logger.Info("starting to shut down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := s.httpServer.Shutdown(shutdownCtx)
	if closeErr := s.kvdb.Close(); closeErr != nil {
		s.logger.Error("error closing kvDB", "err", closeErr.Error())
	}
	if err != nil {
		s.logger.Error("error shutting down http server", "err", err.Error())
		return err
	}
	s.logger.Info("shut down http server successfully")
	return nil
}
