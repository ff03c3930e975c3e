package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nguyencaobach123/automated-email-esi/internal/core/ports/driven"
	"github.com/nguyencaobach123/automated-email-esi/internal/logger"
)

// WatchKeeperConfig holds watch renewal settings.
type WatchKeeperConfig struct {
	// CheckInterval is how often the keeper inspects the watch state.
	CheckInterval time.Duration
	// RenewalMargin is how long before expiration the watch is renewed.
	// Gmail watches lapse after about seven days.
	RenewalMargin time.Duration
}

// DefaultWatchKeeperConfig returns conservative defaults.
func DefaultWatchKeeperConfig() WatchKeeperConfig {
	return WatchKeeperConfig{
		CheckInterval: time.Hour,
		RenewalMargin: 24 * time.Hour,
	}
}

// WatchKeeper keeps the Gmail push notification watch alive.
// It persists watch state so restarts do not re-register needlessly.
type WatchKeeper struct {
	config  WatchKeeperConfig
	watcher driven.MailboxWatcher
	store   driven.WatchStateStore

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewWatchKeeper creates a watch keeper.
func NewWatchKeeper(
	config WatchKeeperConfig,
	watcher driven.MailboxWatcher,
	store driven.WatchStateStore,
) *WatchKeeper {
	if config.CheckInterval <= 0 {
		config.CheckInterval = DefaultWatchKeeperConfig().CheckInterval
	}
	if config.RenewalMargin <= 0 {
		config.RenewalMargin = DefaultWatchKeeperConfig().RenewalMargin
	}
	return &WatchKeeper{
		config:  config,
		watcher: watcher,
		store:   store,
	}
}

// Start begins the renewal loop. It renews immediately if needed, then
// checks on the configured interval. Blocks until Stop is called or the
// context is cancelled.
func (k *WatchKeeper) Start(ctx context.Context) error {
	k.mu.Lock()
	if k.running {
		k.mu.Unlock()
		return nil // Already running
	}
	k.running = true
	k.stopCh = make(chan struct{})
	k.mu.Unlock()

	if err := k.RenewIfNeeded(ctx); err != nil {
		logger.Error("watch renewal failed: %v", err)
	}

	ticker := time.NewTicker(k.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-k.stopCh:
			return nil
		case <-ticker.C:
			k.wg.Add(1)
			if err := k.RenewIfNeeded(ctx); err != nil {
				logger.Error("watch renewal failed: %v", err)
			}
			k.wg.Done()
		}
	}
}

// Stop gracefully shuts down the renewal loop.
func (k *WatchKeeper) Stop() error {
	k.mu.Lock()
	if !k.running {
		k.mu.Unlock()
		return nil
	}
	k.running = false
	close(k.stopCh)
	k.mu.Unlock()

	k.wg.Wait()
	return nil
}

// RenewIfNeeded re-registers the watch when it is missing or inside the
// renewal margin, and persists the new state.
func (k *WatchKeeper) RenewIfNeeded(ctx context.Context) error {
	state, err := k.store.GetWatchState(ctx)
	if err != nil {
		return fmt.Errorf("load watch state: %w", err)
	}

	if !state.NeedsRenewal(time.Now(), k.config.RenewalMargin) {
		logger.Debug("watch valid until %s, no renewal needed", state.Expiration.Format(time.RFC3339))
		return nil
	}

	newState, err := k.watcher.Watch(ctx)
	if err != nil {
		return fmt.Errorf("register watch: %w", err)
	}

	if err := k.store.SaveWatchState(ctx, newState); err != nil {
		return fmt.Errorf("save watch state: %w", err)
	}

	logger.Info("mailbox watch renewed, expires %s (history ID %d)",
		newState.Expiration.Format(time.RFC3339), newState.HistoryID)
	return nil
}
