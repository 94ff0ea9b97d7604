package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"picstash/internal/blob"
	"picstash/internal/config"
	"picstash/internal/httpapi"
	"picstash/internal/metadata"
	"picstash/internal/picstash"
	"picstash/internal/thumbnail"
)

// App is the application layer between the CLI and the Library.
// It constructs all dependencies from config and manages their lifecycle
// on Close.
type App struct {
	cfg     *config.Config
	lib     *picstash.Library
	server  *http.Server
	logger  picstash.Logger
	logFile *os.File
}

// NewApp creates a fully wired App from the given config.
// The caller must call Close when done.
func NewApp(cfg *config.Config) (*App, error) {
	logger, logFile, err := newLogger(cfg.LogDir)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	openBlobs, err := blob.OpenerFromConfig(cfg.Blob)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating blob store opener: %w", err)
	}

	gen := thumbnail.NewGenerator()
	if cfg.Thumbnail.MaxDimension > 0 {
		gen.MaxDimension = cfg.Thumbnail.MaxDimension
	}
	if cfg.Thumbnail.Quality > 0 {
		gen.Quality = cfg.Thumbnail.Quality
	}

	log := &slogAdapter{l: logger}
	lib, err := picstash.NewLibrary(cfg.DataDir, picstash.Options{
		OpenMetadata: func(collectionID, dir string) (picstash.MetadataStore, error) {
			return metadata.Open(collectionID, dir)
		},
		OpenBlobs:   openBlobs,
		Thumbnailer: gen,
		Logger:      log,
		Clock:       picstash.RealClock{},
		IDGenerator: picstash.UUIDGenerator{},
	})
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating library: %w", err)
	}

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           httpapi.NewServer(lib, log, cfg.API),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:     cfg,
		lib:     lib,
		server:  srv,
		logger:  log,
		logFile: logFile,
	}, nil
}

// Library exposes the wired domain engine for CLI commands that operate
// on the store directly, without going through HTTP.
func (a *App) Library() *picstash.Library {
	return a.lib
}

// Serve runs the HTTP API until ctx is cancelled, then shuts down
// gracefully with a bounded drain period.
func (a *App) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("listening", "addr", a.cfg.Listen)
		errCh <- a.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving http: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	<-errCh
	return nil
}

// Close releases all resources.
func (a *App) Close() error {
	var firstErr error

	if err := a.lib.Close(); err != nil {
		firstErr = fmt.Errorf("closing library: %w", err)
	}

	if a.logFile != nil {
		a.logFile.Close()
	}

	return firstErr
}
