// Package server wires the store, the image store, the services and the
// HTTP server together and runs them until a shutdown signal arrives.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/scribblenest/internal/logging"
	"github.com/dmitrijs2005/scribblenest/internal/server/config"
	"github.com/dmitrijs2005/scribblenest/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/scribblenest/internal/server/services"
	"github.com/dmitrijs2005/scribblenest/internal/server/storage"
	"github.com/dmitrijs2005/scribblenest/internal/server/web"
	"golang.org/x/sync/errgroup"
)

type App struct {
	config     *config.Config
	logger     logging.Logger
	store      repomanager.RepositoryManager
	web        *web.Server
	reconciler *services.Reconciler
}

// openStore is a seam for tests.
var openStore = repomanager.Open

// NewApp connects to the store and builds every component. The returned
// error wraps common.ErrStoreUnavailable when the store could not be
// reached.
func NewApp(ctx context.Context, cfg *config.Config, logger logging.Logger) (*App, error) {
	store, err := openStore(ctx, cfg, logger.With("module", "repomanager"))
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	images, uploadsDir, err := newImageStore(ctx, cfg)
	if err != nil {
		_ = store.Close(ctx)
		return nil, fmt.Errorf("image store init error: %w", err)
	}

	us := services.NewUserService(store, images, cfg, logger)
	ps := services.NewPostService(store, cfg, logger)
	ups := services.NewUploadService(store, images, cfg, logger)

	srv, err := web.NewServer(cfg, logger, web.Services{Users: us, Posts: ps, Uploads: ups}, store, uploadsDir)
	if err != nil {
		_ = store.Close(ctx)
		return nil, err
	}

	return &App{
		config:     cfg,
		logger:     logger,
		store:      store,
		web:        srv,
		reconciler: services.NewReconciler(store, cfg.ReconcileInterval, cfg.StoreTimeout, logger),
	}, nil
}

// newImageStore returns the configured image store and, for the local
// store, the directory the web server should serve.
func newImageStore(ctx context.Context, cfg *config.Config) (storage.ImageStore, string, error) {
	switch cfg.ImageStore {
	case config.ImageStoreS3:
		s, err := storage.NewS3Store(ctx, cfg)
		if err != nil {
			return nil, "", err
		}
		return s, "", nil
	case config.ImageStoreLocal, "":
		s, err := storage.NewLocalStore(cfg.UploadDir)
		if err != nil {
			return nil, "", err
		}
		return s, s.Dir(), nil
	default:
		return nil, "", fmt.Errorf("unknown image store %q", cfg.ImageStore)
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) func() {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	done := make(chan struct{})
	go func() {
		select {
		case <-sigs:
			cancelFunc()
		case <-done:
		}
	}()

	return func() {
		signal.Stop(sigs)
		close(done)
	}
}

// defaultCloseTimeout bounds store shutdown when StoreTimeout is unset.
const defaultCloseTimeout = 5 * time.Second

// Run serves HTTP and runs the reconciler until ctx is cancelled or a
// signal arrives, then closes the store.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	stop := app.initSignalHandler(cancelFunc)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return app.web.Run(gctx) })
	g.Go(func() error { return app.reconciler.Run(gctx) })

	err := g.Wait()

	timeout := app.config.StoreTimeout
	if timeout <= 0 {
		timeout = defaultCloseTimeout
	}
	cctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if cerr := app.store.Close(cctx); cerr != nil {
		app.logger.Error(cctx, "store close", "error", cerr)
	}

	app.logger.Info(cctx, "app stopped")
	return err
}
