package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nguyencaobach123/automated-email-esi/internal/core/ports/driven"
)

func TestPromptStoreLoadsDefaults(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{
		driven.PromptClassify,
		driven.PromptIntent,
		driven.PromptPlanSearch,
		driven.PromptEvaluate,
		driven.PromptReply,
	} {
		prompt, err := store.Load(name)
		require.NoError(t, err, name)
		assert.NotEmpty(t, prompt, name)
	}
}

func TestPromptStoreCreatesFilesLazily(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "prompts")
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	// No I/O before first Load.
	_, statErr := os.Stat(dir)
	assert.True(t, os.IsNotExist(statErr))

	_, err = store.Load(driven.PromptClassify)
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, len(defaultPrompts))
}

func TestPromptStorePrefersUserFile(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	custom := "custom classify prompt %s %s"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "classify.txt"), []byte(custom), 0600))

	prompt, err := store.Load(driven.PromptClassify)
	require.NoError(t, err)
	assert.Equal(t, custom, prompt)
}

func TestPromptStoreReload(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	first, err := store.Load(driven.PromptIntent)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "intent.txt"), []byte("updated %s"), 0600))

	// Cached value survives until Reload.
	cached, err := store.Load(driven.PromptIntent)
	require.NoError(t, err)
	assert.Equal(t, first, cached)

	store.Reload()
	updated, err := store.Load(driven.PromptIntent)
	require.NoError(t, err)
	assert.Equal(t, "updated %s", updated)
}

func TestPromptStoreWatchReloads(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	_, err = store.Load(driven.PromptIntent)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- store.Watch(ctx) }()

	// Give the watcher a moment to register before writing.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "intent.txt"), []byte("watched %s"), 0600))

	assert.Eventually(t, func() bool {
		prompt, err := store.Load(driven.PromptIntent)
		return err == nil && prompt == "watched %s"
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestDefaultPromptPlaceholders(t *testing.T) {
	// Each template must keep its positional placeholders so the
	// assistant can fill them.
	counts := map[string]int{
		driven.PromptClassify:   2,
		driven.PromptIntent:     1,
		driven.PromptPlanSearch: 1,
		driven.PromptEvaluate:   2,
		driven.PromptReply:      3,
	}
	for name, want := range counts {
		assert.Equal(t, want, strings.Count(defaultPrompts[name], "%s"), name)

		// No stray verbs that would garble Sprintf output.
		args := make([]any, want)
		for i := range args {
			args[i] = "x"
		}
		filled := fmt.Sprintf(defaultPrompts[name], args...)
		assert.NotContains(t, filled, "%!", name)
	}
}
