package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/learninghub/learninghub/internal/config"
	"github.com/learninghub/learninghub/internal/fixtures"
	"github.com/learninghub/learninghub/internal/logger"
	"github.com/learninghub/learninghub/internal/store"
)

// StoreHandle wraps the mock store with shutdown capability.
type StoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the mock backend store. A configured fixtures file
// replaces the stored data; an in-memory store without one gets the
// built-in sample set. An on-disk store without fixtures keeps what
// a previous seed wrote.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	db, err := store.Open(cfg.Mock.DataPath, log.Logger)
	if err != nil {
		return nil, err
	}

	var file *fixtures.File
	switch {
	case cfg.Mock.FixturesPath != "":
		if file, err = fixtures.Load(cfg.Mock.FixturesPath); err != nil {
			_ = db.Close()
			return nil, err
		}
	case cfg.Mock.DataPath == "":
		file = fixtures.Default()
	}

	if file != nil {
		if err := fixtures.Apply(context.Background(), db, file); err != nil {
			_ = db.Close()
			return nil, err
		}
		log.Info("Fixtures loaded", "resources", file.Count(), "path", cfg.Mock.FixturesPath)
	}

	if cfg.Mock.DataPath != "" {
		log.Info("Database initialized", "path", cfg.Mock.DataPath)
	}

	return &StoreHandle{Store: db}, nil
}

// FixtureReloaderHandle runs the fixtures hot-reload loop.
type FixtureReloaderHandle struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Shutdown implements do.Shutdownable.
func (h *FixtureReloaderHandle) Shutdown() error {
	if h.cancel != nil {
		h.cancel()
		<-h.done
	}
	return nil
}

// ProvideFixtureReloader watches the fixtures file when MOCK_WATCH_FIXTURES
// is set. Without it the handle is inert.
func ProvideFixtureReloader(i do.Injector) (*FixtureReloaderHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)

	if !cfg.Mock.WatchFixtures || cfg.Mock.FixturesPath == "" {
		return &FixtureReloaderHandle{}, nil
	}

	reloader := fixtures.NewReloader(cfg.Mock.FixturesPath, storeHandle.Store, log.Logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := reloader.Run(ctx); err != nil {
			log.Error("Fixture reloader stopped", "error", err)
		}
	}()

	log.Info("Watching fixtures", "path", cfg.Mock.FixturesPath)
	return &FixtureReloaderHandle{cancel: cancel, done: done}, nil
}
