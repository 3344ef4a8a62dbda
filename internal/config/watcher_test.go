package config

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchWeightFile(t *testing.T) {
	dir := t.TempDir()
	path := writeWeightFile(t, dir, backsHeavy)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loaded := make(chan *WeightFile, 4)
	done := make(chan error, 1)
	go func() {
		done <- WatchWeightFile(ctx, path, WatchOptions{PollInterval: 20 * time.Millisecond}, func(wf *WeightFile) error {
			loaded <- wf
			return nil
		})
	}()

	select {
	case wf := <-loaded:
		assert.Equal(t, "backs-heavy", wf.Name)
	case <-time.After(5 * time.Second):
		t.Fatal("initial load not delivered")
	}

	updated := "name = \"forwards-heavy\"\n[weights.tackles]\n\"1\" = 3.0\n"
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o600))
	future := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, future, future))

	select {
	case wf := <-loaded:
		assert.Equal(t, "forwards-heavy", wf.Name)
	case <-time.After(5 * time.Second):
		t.Fatal("change not delivered")
	}

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatchWeightFile_SkipsInvalidContent(t *testing.T) {
	dir := t.TempDir()
	path := writeWeightFile(t, dir, "name = \"broken\"\n[weights.scrum]\n\"1\" = 1.0\n")

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	calls := 0
	err := WatchWeightFile(ctx, path, WatchOptions{PollInterval: 20 * time.Millisecond}, func(*WeightFile) error {
		calls++
		return nil
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Zero(t, calls)
}
