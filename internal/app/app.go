// Package app builds the medvault object graph from a Config: record
// repository, object store, materializer, services and the viewer server.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/medvault/internal/auth"
	"github.com/dmitrijs2005/medvault/internal/config"
	"github.com/dmitrijs2005/medvault/internal/cryptox"
	"github.com/dmitrijs2005/medvault/internal/filex"
	"github.com/dmitrijs2005/medvault/internal/logging"
	"github.com/dmitrijs2005/medvault/internal/materialize"
	"github.com/dmitrijs2005/medvault/internal/objectstore"
	"github.com/dmitrijs2005/medvault/internal/repositories/records"
	"github.com/dmitrijs2005/medvault/internal/services"
	"github.com/dmitrijs2005/medvault/internal/viewer"
)

const shutdownTimeout = 10 * time.Second

// App holds the wired collaborators. Close releases the storage handles.
type App struct {
	Config   *config.Config
	Logger   logging.Logger
	Platform materialize.Platform
	Registry *materialize.BlobRegistry
	Tokens   *auth.Provider
	Upload   services.UploadOrchestrator
	View     services.ViewService
	Records  services.RecordService

	closers []func() error
}

type options struct {
	store     objectstore.Store
	logOutput io.Writer
}

// Option customizes New.
type Option func(*options)

// WithObjectStore replaces the configured object store.
func WithObjectStore(s objectstore.Store) Option {
	return func(o *options) { o.store = s }
}

// WithLogOutput sends logs to w instead of stderr.
func WithLogOutput(w io.Writer) Option {
	return func(o *options) { o.logOutput = w }
}

// New wires an App from cfg.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	o := &options{logOutput: os.Stderr}
	for _, opt := range opts {
		opt(o)
	}

	logger, err := logging.New(cfg.LogFormat, o.logOutput)
	if err != nil {
		return nil, err
	}

	platform, err := materialize.ParsePlatform(cfg.Platform)
	if err != nil {
		return nil, err
	}

	tokens, err := auth.NewProvider(cfg.TokenSecret)
	if err != nil {
		return nil, err
	}

	a := &App{Config: cfg, Logger: logger, Platform: platform, Tokens: tokens}

	repo, err := a.openRecords(ctx)
	if err != nil {
		return nil, err
	}

	store := o.store
	if store == nil {
		if store, err = a.openObjectStore(ctx); err != nil {
			_ = a.Close()
			return nil, err
		}
	}

	a.Registry = materialize.NewBlobRegistry(strings.TrimRight(cfg.ViewerBaseURL, "/") + viewer.BlobsPath)
	m, err := materialize.New(platform, a.Registry)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	cipher := cryptox.NewCipher()
	deriver := cryptox.NewKeyDeriver()
	policy := services.NewSensitivePolicy(cfg.SensitiveMIMETypes)

	a.Upload = services.NewUploadOrchestrator(deriver, cipher, store, repo, policy, logger)
	a.View = services.NewViewService(deriver, cipher, store, repo, m, logger)
	a.Records = services.NewRecordService(store, repo, logger)

	return a, nil
}

func (a *App) openRecords(ctx context.Context) (records.Repository, error) {
	switch a.Config.RecordStore {
	case config.RecordStorePostgres:
		db, err := records.OpenPostgres(ctx, a.Config.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		return records.NewPostgresRepository(db), nil

	case config.RecordStoreBolt:
		if _, err := filex.EnsureDir(filepath.Dir(a.Config.BoltPath)); err != nil {
			return nil, err
		}
		repo, err := records.OpenBolt(a.Config.BoltPath)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, repo.Close)
		return repo, nil

	default:
		return nil, fmt.Errorf("%w: unknown record store %q", config.ErrInvalidConfig, a.Config.RecordStore)
	}
}

func (a *App) openObjectStore(ctx context.Context) (objectstore.Store, error) {
	switch a.Config.ObjectStore {
	case config.ObjectStoreS3:
		return objectstore.NewS3Store(ctx, objectstore.S3Config{
			Region:        a.Config.S3Region,
			AccessKey:     a.Config.S3RootUser,
			SecretKey:     a.Config.S3RootPassword,
			Bucket:        a.Config.S3Bucket,
			BaseEndpoint:  a.Config.S3BaseEndpoint,
			PresignExpiry: a.Config.PresignExpiry,
		})
	case config.ObjectStoreMemory:
		a.Logger.Warn(ctx, "using in-memory object store; blobs are lost on exit")
		return objectstore.NewMemoryStore(a.Config.S3Bucket), nil
	default:
		return nil, fmt.Errorf("%w: unknown object store %q", config.ErrInvalidConfig, a.Config.ObjectStore)
	}
}

// Handler returns the viewer HTTP handler. Object URLs are only mounted on
// the web platform.
func (a *App) Handler() http.Handler {
	var registry *materialize.BlobRegistry
	if a.Platform == materialize.PlatformWeb {
		registry = a.Registry
	}
	return viewer.NewHandler(a.Upload, a.View, a.Records, registry, a.Tokens, a.Logger).Router()
}

// Serve runs the viewer server on Config.ViewerAddr until ctx is done.
func (a *App) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.Config.ViewerAddr,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	done := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			done <- fmt.Errorf("viewer server failed: %w", err)
			return
		}
		done <- nil
	}()

	a.Logger.Info(ctx, "viewer listening", "addr", a.Config.ViewerAddr, "platform", a.Platform)

	select {
	case <-ctx.Done():
		a.Logger.Info(ctx, "shutting down viewer")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("viewer shutdown failed: %w", err)
		}
		return nil
	case err := <-done:
		return err
	}
}

// Close releases storage handles in reverse order of opening.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
