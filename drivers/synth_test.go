package drivers

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paneplot/config"
)

func TestSynthRejectsZeroRate(t *testing.T) {
	assert.ErrorIs(t, NewSynth(&config.SynthFlags{}).Init(), errBadRate)
}

func TestSynthWaveform(t *testing.T) {
	s := NewSynth(&config.SynthFlags{Rate: 4, Frequency: 1})
	assert.InDelta(t, 1, s.sample(0), 1e-6)
	assert.InDelta(t, 2, s.sample(1), 1e-6)
	assert.InDelta(t, 0, s.sample(3), 1e-6)
}

func TestSynthRunStopsOnCancel(t *testing.T) {
	s := NewSynth(&config.SynthFlags{Rate: 1000, Frequency: 1})
	require.NoError(t, s.Init())

	ctx, cancel := context.WithCancel(context.Background())
	var mu sync.Mutex
	count := 0
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx, func(float32) {
			mu.Lock()
			count++
			mu.Unlock()
		})
	}()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return count >= 5
	}, time.Second, time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
