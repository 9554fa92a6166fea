package drivers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"paneplot/config"
	"paneplot/events"
	"paneplot/models"
)

// SUBSCRIPTION_BUFFER is how many samples a graph can fall behind before the hub starts dropping for it.
const SUBSCRIPTION_BUFFER = 4096

var errNoPort = errors.New("no port selected")

// Publish hands one sample to every graph subscribed to the driver's port.
type Publish func(sample float32)

// Driver produces samples from one port. Init opens the port, Run reads until the port closes or ctx is cancelled.
type Driver interface {
	Init() error
	Run(ctx context.Context, publish Publish) error
	Close() error
}

type (
	factory func(port string) Driver
	lister  func() ([]string, error)
)

type stream struct {
	hub    *events.Hub[float32]
	cancel context.CancelFunc
}

// Manager owns the running drivers, one per opened port, and hands out sources for graphs.
type Manager struct {
	newDriver factory
	listPorts lister

	mu      sync.Mutex
	streams map[string]*stream
	wg      sync.WaitGroup
}

func NewManager(options *config.Options) *Manager {
	switch options.Driver {
	case config.Serial:
		return newManager(func(port string) Driver { return NewSerial(options.Serial, port) }, ListSerialPorts)
	case config.SocketCAN:
		return newManager(func(port string) Driver { return NewSocketCAN(options.SocketCAN, port) }, ListCANInterfaces)
	case config.Replay:
		return newManager(func(port string) Driver { return NewReplayer(options.Replay, port) }, func() ([]string, error) {
			if options.Replay.Path == "" {
				return nil, nil
			}
			return []string{options.Replay.Path}, nil
		})
	default:
		return newManager(func(port string) Driver { return NewSynth(options.Synth) }, func() ([]string, error) {
			return []string{SYNTH_PORT}, nil
		})
	}
}

func newManager(newDriver factory, listPorts lister) *Manager {
	return &Manager{
		newDriver: newDriver,
		listPorts: listPorts,
		streams:   map[string]*stream{},
	}
}

func (m *Manager) Ports() ([]string, error) {
	return m.listPorts()
}

// Open starts a driver for port unless one is already running.
func (m *Manager) Open(port string) error {
	if port == "" {
		return errNoPort
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.streams[port]; ok {
		return nil
	}

	driver := m.newDriver(port)
	if err := driver.Init(); err != nil {
		return fmt.Errorf("open %s: %w", port, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &stream{events.NewHub[float32](SUBSCRIPTION_BUFFER, false), cancel}
	m.streams[port] = s

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		err := driver.Run(ctx, s.hub.Broadcast)
		if err != nil && !errors.Is(err, context.Canceled) {
			slog.Warn("driver stopped", "port", port, "err", err)
		} else {
			slog.Info("driver stopped", "port", port)
		}
		if err := driver.Close(); err != nil {
			slog.Debug("close driver", "port", port, "err", err)
		}
		s.hub.Close()

		m.mu.Lock()
		if m.streams[port] == s {
			delete(m.streams, port)
		}
		m.mu.Unlock()
	}()
	slog.Info("driver started", "port", port)
	return nil
}

// Subscribe returns a source fed by the driver running on port.
func (m *Manager) Subscribe(port string) (models.Source, bool) {
	m.mu.Lock()
	s, ok := m.streams[port]
	m.mu.Unlock()
	if !ok {
		return nil, false
	}
	_, samples, cancel := s.hub.Subscribe()
	return models.NewChannelSource(samples, cancel), true
}

// Shutdown stops every driver and waits for them to exit.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	for _, s := range m.streams {
		s.cancel()
	}
	m.mu.Unlock()
	m.wg.Wait()
}
