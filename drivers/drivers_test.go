package drivers

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paneplot/config"
	"paneplot/models"
)

type fakeDriver struct {
	samples []float32
	initErr error
	start   chan struct{}
	forever bool
	closed  atomic.Bool
}

func newFakeDriver(samples ...float32) *fakeDriver {
	return &fakeDriver{samples: samples, start: make(chan struct{})}
}

func (d *fakeDriver) Init() error { return d.initErr }

func (d *fakeDriver) Run(ctx context.Context, publish Publish) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-d.start:
	}
	for _, s := range d.samples {
		publish(s)
	}
	if d.forever {
		<-ctx.Done()
		return ctx.Err()
	}
	return nil
}

func (d *fakeDriver) Close() error {
	d.closed.Store(true)
	return nil
}

func fakeManager(d *fakeDriver, opened *atomic.Int32) *Manager {
	return newManager(func(string) Driver {
		if opened != nil {
			opened.Add(1)
		}
		return d
	}, func() ([]string, error) { return []string{"fake"}, nil })
}

func drain(t *testing.T, source models.Source) ([]float32, error) {
	t.Helper()
	var got []float32
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		sample, ok, err := source.TryReceive()
		if err != nil {
			return got, err
		}
		if ok {
			got = append(got, sample)
			continue
		}
		time.Sleep(time.Millisecond)
	}
	return got, nil
}

func TestManagerStreamsUntilDriverEnds(t *testing.T) {
	d := newFakeDriver(1, 2, 3)
	m := fakeManager(d, nil)

	require.NoError(t, m.Open("fake"))
	source, ok := m.Subscribe("fake")
	require.True(t, ok)
	close(d.start)

	got, err := drain(t, source)
	assert.ErrorIs(t, err, models.ErrSourceDisconnected)
	assert.Equal(t, []float32{1, 2, 3}, got)

	require.Eventually(t, func() bool {
		_, ok := m.Subscribe("fake")
		return !ok
	}, time.Second, time.Millisecond)
	assert.True(t, d.closed.Load())
}

func TestManagerOpensPortOnce(t *testing.T) {
	d := newFakeDriver()
	d.forever = true
	var opened atomic.Int32
	m := fakeManager(d, &opened)

	require.NoError(t, m.Open("fake"))
	require.NoError(t, m.Open("fake"))
	assert.Equal(t, int32(1), opened.Load())
	m.Shutdown()
}

func TestManagerOpenErrors(t *testing.T) {
	d := newFakeDriver()
	d.initErr = errors.New("no such device")
	m := fakeManager(d, nil)

	assert.ErrorIs(t, m.Open(""), errNoPort)
	assert.ErrorIs(t, m.Open("fake"), d.initErr)
	_, ok := m.Subscribe("fake")
	assert.False(t, ok)
}

func TestManagerShutdownDisconnectsSources(t *testing.T) {
	d := newFakeDriver(5)
	d.forever = true
	m := fakeManager(d, nil)

	require.NoError(t, m.Open("fake"))
	source, ok := m.Subscribe("fake")
	require.True(t, ok)
	close(d.start)

	require.Eventually(t, func() bool {
		sample, ok, err := source.TryReceive()
		return err == nil && ok && sample == 5
	}, time.Second, time.Millisecond)

	m.Shutdown()
	got, err := drain(t, source)
	assert.ErrorIs(t, err, models.ErrSourceDisconnected)
	assert.Empty(t, got)
}

func TestNewManagerSynthPorts(t *testing.T) {
	m := NewManager(&config.Options{Flags: &config.Flags{Driver: config.Synth}, Synth: &config.SynthFlags{Rate: 10}})
	ports, err := m.Ports()
	require.NoError(t, err)
	assert.Equal(t, []string{SYNTH_PORT}, ports)
}
