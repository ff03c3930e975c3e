package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nguyencaobach123/automated-email-esi/internal/core/domain"
)

type mockWatcher struct {
	mu       sync.Mutex
	watches  int
	state    *domain.WatchState
	watchErr error
}

func (m *mockWatcher) Watch(_ context.Context) (*domain.WatchState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.watchErr != nil {
		return nil, m.watchErr
	}
	m.watches++
	return m.state, nil
}

func (m *mockWatcher) StopWatch(_ context.Context) error { return nil }

func (m *mockWatcher) watchCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.watches
}

type mockWatchStore struct {
	mu      sync.Mutex
	state   *domain.WatchState
	getErr  error
	saveErr error
}

func (m *mockWatchStore) GetWatchState(_ context.Context) (*domain.WatchState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	if m.state == nil {
		return nil, nil
	}
	stateCopy := *m.state
	return &stateCopy, nil
}

func (m *mockWatchStore) SaveWatchState(_ context.Context, state *domain.WatchState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	stateCopy := *state
	m.state = &stateCopy
	return nil
}

func TestRenewIfNeededRegistersWhenNoState(t *testing.T) {
	watcher := &mockWatcher{state: &domain.WatchState{
		HistoryID:  99,
		Expiration: time.Now().Add(7 * 24 * time.Hour),
		RenewedAt:  time.Now(),
	}}
	store := &mockWatchStore{}
	keeper := NewWatchKeeper(DefaultWatchKeeperConfig(), watcher, store)

	err := keeper.RenewIfNeeded(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, watcher.watchCount())
	require.NotNil(t, store.state)
	assert.Equal(t, uint64(99), store.state.HistoryID)
}

func TestRenewIfNeededSkipsValidWatch(t *testing.T) {
	watcher := &mockWatcher{}
	store := &mockWatchStore{state: &domain.WatchState{
		HistoryID:  7,
		Expiration: time.Now().Add(6 * 24 * time.Hour),
	}}
	keeper := NewWatchKeeper(DefaultWatchKeeperConfig(), watcher, store)

	err := keeper.RenewIfNeeded(context.Background())
	require.NoError(t, err)
	assert.Zero(t, watcher.watchCount())
}

func TestRenewIfNeededRenewsInsideMargin(t *testing.T) {
	watcher := &mockWatcher{state: &domain.WatchState{
		HistoryID:  100,
		Expiration: time.Now().Add(7 * 24 * time.Hour),
	}}
	store := &mockWatchStore{state: &domain.WatchState{
		HistoryID:  7,
		Expiration: time.Now().Add(2 * time.Hour), // inside the 24h margin
	}}
	keeper := NewWatchKeeper(DefaultWatchKeeperConfig(), watcher, store)

	err := keeper.RenewIfNeeded(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, watcher.watchCount())
	assert.Equal(t, uint64(100), store.state.HistoryID)
}

func TestRenewIfNeededPropagatesWatchError(t *testing.T) {
	watcher := &mockWatcher{watchErr: errors.New("topic missing")}
	store := &mockWatchStore{}
	keeper := NewWatchKeeper(DefaultWatchKeeperConfig(), watcher, store)

	err := keeper.RenewIfNeeded(context.Background())
	require.Error(t, err)
	assert.Nil(t, store.state)
}

func TestWatchKeeperStartStop(t *testing.T) {
	watcher := &mockWatcher{state: &domain.WatchState{
		HistoryID:  1,
		Expiration: time.Now().Add(7 * 24 * time.Hour),
	}}
	store := &mockWatchStore{}
	keeper := NewWatchKeeper(WatchKeeperConfig{
		CheckInterval: 10 * time.Millisecond,
		RenewalMargin: time.Hour,
	}, watcher, store)

	done := make(chan error, 1)
	go func() {
		done <- keeper.Start(context.Background())
	}()

	// Give the loop time to run the initial renewal.
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, keeper.Stop())

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("keeper did not stop")
	}

	assert.GreaterOrEqual(t, watcher.watchCount(), 1)
}
