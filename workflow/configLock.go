package workflow

import (
	"context"
	"sync"
	"time"

	"github.com/bsm/redislock"

	"bitbucket.org/mmdatafocus/invoiceflow_backend/config"
	"bitbucket.org/mmdatafocus/invoiceflow_backend/utils"
)

// configLocks serializes writes per configuration id within this process.
// A best-effort redislock extends the guarantee across instances when
// Redis is available.
var configLocks sync.Map // configId -> *sync.Mutex

func lockFor(configId string) *sync.Mutex {
	mu, _ := configLocks.LoadOrStore(configId, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// WithConfigurationLock runs fn while holding the per-id write lock.
// Saves for one configuration never interleave.
func WithConfigurationLock(ctx context.Context, configId string, fn func() error) error {
	mu := lockFor(configId)
	mu.Lock()
	defer mu.Unlock()

	if locker := config.GetRedisLock(); locker != nil {
		lock, err := locker.Obtain(ctx, "invoice-save:"+configId, 30*time.Second, nil)
		if err == nil {
			defer func() {
				_ = lock.Release(ctx)
			}()
		} else if err != redislock.ErrNotObtained {
			logger := config.GetLogger()
			config.LogWarn(logger, "workflow", "WithConfigurationLock", configId, "redis lock unavailable")
		}
	}

	return fn()
}

// generating tracks in-flight PDF generations per configuration id.
var generating sync.Map // configId -> struct{}

// TryBeginGeneration claims the per-id generation slot. A second caller
// gets ErrorAlreadyGenerating instead of double-submitting.
func TryBeginGeneration(configId string) error {
	if _, loaded := generating.LoadOrStore(configId, struct{}{}); loaded {
		return utils.ErrorAlreadyGenerating
	}
	return nil
}

func EndGeneration(configId string) {
	generating.Delete(configId)
}
