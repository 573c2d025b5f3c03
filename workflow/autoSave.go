package workflow

import (
	"context"
	"sync"
	"time"

	"bitbucket.org/mmdatafocus/invoiceflow_backend/config"
	"bitbucket.org/mmdatafocus/invoiceflow_backend/models"
	"bitbucket.org/mmdatafocus/invoiceflow_backend/utils"
)

// AutoSaver flushes dirty configurations to the repository on a fixed
// interval. Writes are best effort and serialized through the same
// per-id lock as user-triggered saves, so an auto-save never races one.
type AutoSaver struct {
	repo     models.ConfigurationRepository
	interval time.Duration

	mu    sync.Mutex
	dirty map[string]*models.Configuration
}

func NewAutoSaver(repo models.ConfigurationRepository) *AutoSaver {
	return &AutoSaver{
		repo:     repo,
		interval: config.AutoSaveInterval(),
		dirty:    make(map[string]*models.Configuration),
	}
}

// Queue marks a configuration dirty. A later Queue for the same id
// replaces the earlier snapshot.
func (a *AutoSaver) Queue(cfg *models.Configuration) {
	if cfg == nil || !cfg.Metadata.AutoSaveEnabled {
		return
	}
	a.mu.Lock()
	a.dirty[cfg.ID] = cfg.Clone()
	a.mu.Unlock()
}

// Start runs the flush loop until ctx is cancelled.
func (a *AutoSaver) Start(ctx context.Context) {
	if !config.AutoSaveEnabled() {
		return
	}
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.Flush(ctx)
		}
	}
}

// Flush persists every queued configuration. Stale writes are dropped
// silently: the user-triggered save already won.
func (a *AutoSaver) Flush(ctx context.Context) {
	a.mu.Lock()
	pending := a.dirty
	a.dirty = make(map[string]*models.Configuration)
	a.mu.Unlock()

	logger := config.GetLogger()
	for id, cfg := range pending {
		now := time.Now().UTC()
		cfg.Metadata.LastAutoSave = &now

		err := WithConfigurationLock(ctx, id, func() error {
			_, saveErr := a.repo.Save(ctx, cfg)
			return saveErr
		})
		if err == utils.ErrorStaleWrite || err == utils.ErrorDispatched {
			continue
		}
		if err != nil {
			config.LogError(logger, "workflow", "AutoSaverFlush", id, nil, err)
		}
	}
}
