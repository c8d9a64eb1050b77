package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/bookhavenapp/bookhaven-server/internal/config"
	"github.com/bookhavenapp/bookhaven-server/internal/logger"
	"github.com/bookhavenapp/bookhaven-server/internal/service"
	"github.com/bookhavenapp/bookhaven-server/internal/watcher"
)

// ImportWatcherHandle wraps the import watcher with shutdown capability.
// Watcher is nil when no import path is configured.
type ImportWatcherHandle struct {
	*watcher.ImportWatcher
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *ImportWatcherHandle) Shutdown() error {
	if h.ImportWatcher == nil {
		return nil
	}
	h.cancel()
	return h.ImportWatcher.Stop()
}

// ProvideImportWatcher provides the catalog import drop-folder watcher.
func ProvideImportWatcher(i do.Injector) (*ImportWatcherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	catalogService := do.MustInvoke[*service.CatalogService](i)

	if cfg.Catalog.ImportPath == "" {
		log.Info("Catalog import watcher disabled - no import path configured")
		return &ImportWatcherHandle{}, nil
	}

	w, err := watcher.New(cfg.Catalog.ImportPath, catalogService, log.Logger)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := w.Start(ctx); err != nil {
			log.Error("Import watcher stopped", "error", err)
		}
	}()

	log.Info("Catalog import watcher started", "path", cfg.Catalog.ImportPath)

	return &ImportWatcherHandle{ImportWatcher: w, cancel: cancel}, nil
}
