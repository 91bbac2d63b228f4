package gap_test

import (
	"context"
	"testing"
	"time"

	"github.com/plumeworks/plume/internal/gap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchRescansAfterCorpusChange(t *testing.T) {
	t.Parallel()
	w, dir := newCorpus(t, map[string]string{
		"CompoundInterest": "!!!Compound Interest\n\nInterest earned on interest.",
	})
	d := gap.NewDetector(w)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scans := make(chan []gap.Concept, 8)
	done := make(chan error, 1)
	go func() {
		done <- d.Watch(ctx, dir, 50*time.Millisecond, func(concepts []gap.Concept, err error) {
			assert.NoError(t, err)
			scans <- concepts
		})
	}()

	// Give the watcher time to register before touching the corpus.
	time.Sleep(200 * time.Millisecond)
	_, err := w.WritePage("Investing", "Start from [Present Value] thinking.")
	require.NoError(t, err)

	select {
	case concepts := <-scans:
		require.Len(t, concepts, 1)
		assert.Equal(t, "Present Value", concepts[0].Name)
	case <-time.After(10 * time.Second):
		t.Fatal("no rescan after corpus change")
	}

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestWatchRejectsMissingDirectory(t *testing.T) {
	t.Parallel()
	w, dir := newCorpus(t, nil)
	d := gap.NewDetector(w)

	err := d.Watch(context.Background(), dir+"/missing", time.Second, func([]gap.Concept, error) {})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "watching")
}
