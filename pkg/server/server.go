// Package server wires the drawboard router into an HTTP server.
package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	stdlog "log"
	"net"
	"net/http"
	"os"
	"time"

	cronlib "github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"go.mau.fi/util/exhttp"
	"go.mau.fi/util/exzerolog"
	"go.mau.fi/util/requestlog"

	"github.com/beeper/drawboard/pkg/assets"
	"github.com/beeper/drawboard/pkg/cachestore"
	"github.com/beeper/drawboard/pkg/compose"
	"github.com/beeper/drawboard/pkg/config"
	"github.com/beeper/drawboard/pkg/documents"
	"github.com/beeper/drawboard/pkg/importmap"
	"github.com/beeper/drawboard/pkg/logutil"
	"github.com/beeper/drawboard/pkg/modulecompile"
	"github.com/beeper/drawboard/pkg/route"
)

type Server struct {
	Config *config.Config
	Log    zerolog.Logger

	Assets   *assets.Resolver
	Cache    cachestore.Store
	Compiler *modulecompile.Compiler
	Decider  *route.Decider

	rootFS    fs.FS
	closeDB   func() error
	scheduler *cronlib.Cron
	now       func() time.Time
}

type Option func(*options)

type options struct {
	emitter modulecompile.Emitter
	cache   cachestore.Store
	rootFS  fs.FS
	docFS   fs.FS
}

// WithEmitter replaces the esbuild emitter, mainly for tests.
func WithEmitter(emitter modulecompile.Emitter) Option {
	return func(o *options) { o.emitter = emitter }
}

// WithCache uses store instead of opening the configured cache database.
func WithCache(store cachestore.Store) Option {
	return func(o *options) { o.cache = store }
}

// WithFS serves assets and saved drawings from the given filesystems instead of
// the configured directories.
func WithFS(root, docs fs.FS) Option {
	return func(o *options) {
		o.rootFS = root
		o.docFS = docs
	}
}

// New builds a server from cfg. The cache database is opened and upgraded here.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger, opts ...Option) (*Server, error) {
	cfg = cfg.WithDefaults()
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.rootFS == nil {
		o.rootFS = os.DirFS(cfg.Server.Root)
	}
	if o.docFS == nil {
		o.docFS = os.DirFS(cfg.Server.Documents)
	}

	s := &Server{
		Config:  cfg,
		Log:     log,
		rootFS:  o.rootFS,
		closeDB: func() error { return nil },
		now:     time.Now,
	}

	resolver, err := assets.New(o.rootFS, cfg.Assets.Table)
	if err != nil {
		return nil, err
	}
	s.Assets = resolver

	if err := s.openCache(ctx, o.cache); err != nil {
		return nil, err
	}

	if o.emitter == nil {
		if o.emitter, err = esbuildEmitter(cfg.Compiler); err != nil {
			_ = s.closeDB()
			return nil, err
		}
	}
	s.Compiler, err = modulecompile.New(o.emitter, cfg.Server.Root, logutil.Component(log, modulecompile.LogComponent))
	if err != nil {
		_ = s.closeDB()
		return nil, err
	}

	composer := &compose.Composer{
		Generator: s.importMapGenerator(),
		Marker:    cfg.Assets.Marker,
	}
	s.Decider = &route.Decider{
		Cache:     s.Cache,
		Assets:    resolver,
		Composer:  composer,
		Compiler:  s.Compiler,
		Documents: documents.NewLoader(o.docFS),
		Log:       logutil.Component(log, route.LogComponent),
	}

	if *cfg.Assets.CheckDocuments {
		s.checkDocuments()
	}
	return s, nil
}

func (s *Server) openCache(ctx context.Context, store cachestore.Store) error {
	switch {
	case store != nil:
		s.Cache = store
	case s.Config.Cache.InMemory():
		s.Log.Info().Msg("No cache database configured, using in-memory cache")
		s.Cache = cachestore.NewMemoryStore()
	default:
		sqlStore, err := cachestore.Open(ctx, s.Config.Cache.Database, s.Log)
		if err != nil {
			return err
		}
		s.Cache = sqlStore
		s.closeDB = sqlStore.Close
	}
	return nil
}

func esbuildEmitter(cfg config.CompilerConfig) (*modulecompile.EsbuildEmitter, error) {
	jsx, err := modulecompile.ParseJSX(cfg.JSX)
	if err != nil {
		return nil, err
	}
	target, err := modulecompile.ParseTarget(cfg.Target)
	if err != nil {
		return nil, err
	}
	sourcemap, err := modulecompile.ParseSourcemap(cfg.Sourcemap)
	if err != nil {
		return nil, err
	}
	return &modulecompile.EsbuildEmitter{
		JSX:         jsx,
		JSXFactory:  cfg.JSXFactory,
		JSXFragment: cfg.JSXFragment,
		Target:      target,
		Sourcemap:   sourcemap,
		Minify:      cfg.Minify,
	}, nil
}

func (s *Server) importMapGenerator() *importmap.Generator {
	cfg := s.Config.ImportMap
	gen := &importmap.Generator{
		FS:   s.rootFS,
		File: cfg.File,
		Overrides: importmap.Map{
			Imports: cfg.Imports,
			Scopes:  cfg.Scopes,
		},
	}
	if cfg.Pretty {
		gen.Indent = "  "
	}
	if gen.File != "" {
		if _, err := fs.Stat(s.rootFS, gen.File); errors.Is(err, fs.ErrNotExist) {
			s.Log.Warn().Str("file", gen.File).Msg("Import map file not found, using configured entries only")
			gen.File = ""
		}
	}
	return gen
}

// checkDocuments warns about HTML assets whose import map marker is missing,
// duplicated or outside an import map script.
func (s *Server) checkDocuments() {
	for _, desc := range s.Assets.Documents() {
		file, err := s.Assets.Read(desc)
		if err != nil {
			s.Log.Warn().Err(err).Str("file", desc.FilePath).Msg("Failed to read HTML asset")
			continue
		}
		if err = assets.CheckDocument(file.Content, s.Config.Assets.Marker); err != nil {
			s.Log.Warn().Err(err).Str("file", desc.FilePath).Msg("HTML asset failed import map check")
		}
	}
}

// Handler returns the full HTTP handler including logging middleware.
func (s *Server) Handler() http.Handler {
	return exhttp.ApplyMiddleware(
		route.NewHandler(s.Decider),
		hlog.NewHandler(s.Log),
		hlog.RequestIDHandler("request_id", "X-Request-Id"),
		requestlog.AccessLogger(requestlog.Options{Recover: true}),
	)
}

// StartPruning schedules cache pruning if the store supports it.
func (s *Server) StartPruning() error {
	pruner, ok := s.Cache.(cachestore.Pruner)
	if !ok || s.Config.Cache.MaxAge <= 0 {
		return nil
	}
	job := &pruneJob{
		store:  pruner,
		maxAge: s.Config.Cache.MaxAge,
		log:    logutil.Component(s.Log, "cache_pruner"),
	}
	scheduler, err := newPruneScheduler(s.Config.Cache.PruneSchedule, job, job.log)
	if err != nil {
		return err
	}
	s.scheduler = scheduler
	scheduler.Start()
	return nil
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.Config.Server.Address())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.Config.Server.Address(), err)
	}
	return s.Serve(ctx, listener)
}

func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	if err := s.StartPruning(); err != nil {
		_ = listener.Close()
		return err
	}
	httpServer := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: s.Config.Server.ReadHeaderTimeout,
		ErrorLog:          stdlog.New(exzerolog.NewLogWriter(logutil.Component(s.Log, "http")).WithLevel(zerolog.WarnLevel), "", 0),
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	s.Log.Info().
		Str("current_date", s.now().Format(time.DateTime)).
		Str("url", s.Config.Server.PublicURL()).
		Str("address", listener.Addr().String()).
		Msg("Server listening")

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Serve(listener)
	}()

	select {
	case err := <-errCh:
		s.stop()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.Log.Info().Msg("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.Config.Server.ShutdownTimeout)
	defer cancel()
	err := httpServer.Shutdown(shutdownCtx)
	s.stop()
	if err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

func (s *Server) stop() {
	if s.scheduler != nil {
		<-s.scheduler.Stop().Done()
		s.scheduler = nil
	}
	if err := s.closeDB(); err != nil {
		s.Log.Warn().Err(err).Msg("Failed to close cache database")
	}
	s.closeDB = func() error { return nil }
}

// Close releases resources held by a server that was never started.
func (s *Server) Close() {
	s.stop()
}
