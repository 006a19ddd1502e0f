package fixtures

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/learninghub/learninghub/internal/watcher"
)

// Reloader re-applies a fixture file whenever it changes on disk. A file
// that fails to parse leaves the previous data in place.
type Reloader struct {
	path    string
	target  Target
	logger  *slog.Logger
	opts    watcher.Options
	applied func(*File, error)
}

// ReloaderOption configures a Reloader.
type ReloaderOption func(*Reloader)

// WithWatcherOptions overrides the file watcher settings.
func WithWatcherOptions(opts watcher.Options) ReloaderOption {
	return func(r *Reloader) { r.opts = opts }
}

// OnApply registers fn to run after every reload attempt.
func OnApply(fn func(*File, error)) ReloaderOption {
	return func(r *Reloader) { r.applied = fn }
}

// NewReloader creates a reloader for the fixture file at path.
func NewReloader(path string, target Target, logger *slog.Logger, opts ...ReloaderOption) *Reloader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	r := &Reloader{
		path:    path,
		target:  target,
		logger:  logger.With("fixtures", path),
		applied: func(*File, error) {},
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Reload loads and applies the file once.
func (r *Reloader) Reload(ctx context.Context) error {
	f, err := Load(r.path)
	if err == nil {
		err = Apply(ctx, r.target, f)
	}
	r.applied(f, err)
	if err != nil {
		return err
	}
	r.logger.Info("fixtures applied", "resources", f.Count())
	return nil
}

// Run applies the file and then re-applies it on every change until ctx
// is done. The watch is registered before the first load so no edit is
// missed in between.
func (r *Reloader) Run(ctx context.Context) error {
	w, err := watcher.New(r.logger, r.opts)
	if err != nil {
		return err
	}
	defer w.Stop()

	if err := w.Watch(r.path); err != nil {
		return fmt.Errorf("watch fixtures: %w", err)
	}
	go func() { _ = w.Start(ctx) }()

	if err := r.Reload(ctx); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-w.Events():
			if ev.Type != watcher.EventModified {
				r.logger.Warn("fixtures file removed, keeping current data")
				continue
			}
			if err := r.Reload(ctx); err != nil {
				r.logger.Error("fixtures reload failed", "error", err)
			}
		case err := <-w.Errors():
			r.logger.Warn("fixtures watcher error", "error", err)
		}
	}
}
