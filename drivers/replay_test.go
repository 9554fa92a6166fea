package drivers

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paneplot/config"
	"paneplot/export"
)

func writeExport(t *testing.T, path string, columns ...[]float32) {
	t.Helper()
	require.NoError(t, export.Write(path, columns))
}

func TestReplayPublishesColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.csv")
	writeExport(t, path, []float32{1, 2, 3}, []float32{10, 20})

	r := NewReplayer(&config.ReplayFlags{Path: path, Column: 1}, "")
	require.NoError(t, r.Init())
	defer r.Close()

	var got []float32
	require.NoError(t, r.Run(context.Background(), collect(&got)))
	assert.Equal(t, []float32{10, 20}, got)
}

func TestReplaySkipsRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.csv")
	writeExport(t, path, []float32{1, 2, 3, 4})

	r := NewReplayer(&config.ReplayFlags{SkipRows: 2}, path)
	require.NoError(t, r.Init())

	var got []float32
	require.NoError(t, r.Run(context.Background(), collect(&got)))
	assert.Equal(t, []float32{3, 4}, got)
}

func TestReplayMissingFile(t *testing.T) {
	r := NewReplayer(&config.ReplayFlags{}, filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, r.Init())
}

func TestReplayColumnOutOfRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.csv")
	writeExport(t, path, []float32{1})

	r := NewReplayer(&config.ReplayFlags{Column: 3}, path)
	require.NoError(t, r.Init())
	var got []float32
	assert.Error(t, r.Run(context.Background(), collect(&got)))
	assert.Empty(t, got)
}

func TestReplayLoops(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.csv")
	writeExport(t, path, []float32{1, 2})

	r := NewReplayer(&config.ReplayFlags{Loop: true}, path)
	require.NoError(t, r.Init())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var got []float32
	err := r.Run(ctx, func(sample float32) {
		got = append(got, sample)
		if len(got) == 5 {
			cancel()
		}
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []float32{1, 2, 1, 2, 1}, got)
}

func TestReplayFollowsRewrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.csv")
	writeExport(t, path, []float32{1, 2, 3})

	r := NewReplayer(&config.ReplayFlags{Follow: true}, path)
	require.NoError(t, r.Init())
	defer r.Close()

	ctx, cancel := context.WithCancel(context.Background())
	var mu sync.Mutex
	var got []float32
	done := make(chan error, 1)
	go func() {
		done <- r.Run(ctx, func(sample float32) {
			mu.Lock()
			got = append(got, sample)
			mu.Unlock()
		})
	}()
	received := func(n int) func() bool {
		return func() bool {
			mu.Lock()
			defer mu.Unlock()
			return len(got) == n
		}
	}

	require.Eventually(t, received(3), time.Second, 5*time.Millisecond)
	writeExport(t, path, []float32{1, 2, 3, 4, 5})
	require.Eventually(t, received(5), time.Second, 5*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	mu.Lock()
	assert.Equal(t, []float32{1, 2, 3, 4, 5}, got)
	mu.Unlock()
}
