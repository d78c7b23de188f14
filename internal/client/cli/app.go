package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophmarket/internal/client/batch"
	"github.com/dmitrijs2005/gophmarket/internal/client/client"
	"github.com/dmitrijs2005/gophmarket/internal/client/config"
	"github.com/dmitrijs2005/gophmarket/internal/client/listings"
	"github.com/dmitrijs2005/gophmarket/internal/client/services"
	"github.com/dmitrijs2005/gophmarket/internal/filex"
	"github.com/dmitrijs2005/gophmarket/internal/logging"
)

// App holds the services behind every command.
type App struct {
	images   services.ImageService
	log      logging.Logger
	out      io.Writer
	renderer *renderer

	maxImages      int
	publishTimeout time.Duration

	// bg tracks uploads started by the shell.
	bg      sync.WaitGroup
	closers []func() error
}

// syncWriter serialises writes from command output and the renderer.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

// NewApp opens the local database and builds the upload stack described by
// cfg. live selects in-place progress bars over transition lines.
func NewApp(ctx context.Context, cfg *config.Config, out io.Writer, live bool) (*App, error) {
	log, err := logging.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	if _, err := filex.EnsureDir(cfg.DataDir); err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}

	db, err := client.InitDatabase(ctx, cfg.DatabaseFile())
	if err != nil {
		log.Error(ctx, "error initializing database", "path", cfg.DatabaseFile(), "error", err)
		return nil, err
	}
	a := &App{
		log:            log,
		maxImages:      cfg.MaxImages,
		publishTimeout: cfg.PublishTimeout,
		closers:        []func() error{db.Close},
	}

	uploader, err := client.NewUploader(ctx, cfg)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	deps := services.Deps{
		DB:       db,
		Uploader: uploader,
		Logger:   log,
		Options: batch.Options{
			MaxImages:         cfg.MaxImages,
			Compress:          cfg.Compress,
			CompressThreshold: cfg.CompressThreshold,
			KeepFailed:        cfg.KeepFailed,
		},
	}

	compressor, err := client.NewCompressor(cfg)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("init compressor: %w", err)
	}
	if compressor != nil {
		deps.Compressor = compressor
	}

	store, err := listings.Open(cfg.ListingsDSN)
	switch {
	case errors.Is(err, listings.ErrPublishingDisabled):
		log.Debug(ctx, "listings publishing disabled")
	case err != nil:
		_ = a.Close()
		return nil, err
	default:
		deps.Listings = store
		a.closers = append(a.closers, store.Close)
	}

	a.out = &syncWriter{w: out}
	a.renderer = newRenderer(a.out, live, terminalWidth(out))
	deps.Observer = a.renderer
	a.images = services.NewImageService(deps)
	return a, nil
}

// Wait blocks until background uploads have finished.
func (a *App) Wait() {
	a.bg.Wait()
}

// Close releases the database and the listings connection.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}
