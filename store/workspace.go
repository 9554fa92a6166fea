// Package store owns the workspace state: the pane tree, the graphs in it and the process-wide controls. Every
// mutation goes through Workspace.Update, called from the single goroutine running Workspace.Run.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"paneplot/export"
	"paneplot/layout"
	"paneplot/models"
)

const DASHBOARD_FRAMERATE = 30

// Bounds is the coordinate space panes are laid out in, in percent of the window.
var Bounds = layout.Rect{Width: 100, Height: 100}

var (
	errNoPath         = errors.New("no export path")
	errPortNotRunning = errors.New("port is not running")
)

// SourceProvider opens ports and hands out one source per subscribing graph.
type SourceProvider interface {
	Open(port string) error
	Subscribe(port string) (models.Source, bool)
}

type PortLister interface {
	Ports() ([]string, error)
}

// Status is the line shown under the controls.
type Status struct {
	Text string
	Err  bool
}

type Workspace struct {
	panes *layout.Tree[models.Pane]

	path     string
	port     string
	ports    []string
	portsErr error
	status   Status

	sources SourceProvider
	lister  PortLister
}

// NewWorkspace starts with a single controls pane and the given export path.
func NewWorkspace(path string, sources SourceProvider, lister PortLister) *Workspace {
	w := &Workspace{
		panes:   layout.New[models.Pane](models.ControlsPane{}),
		path:    path,
		sources: sources,
		lister:  lister,
	}
	w.refreshPorts()
	return w
}

// Update applies one message and then pulls new samples into every graph.
func (w *Workspace) Update(msg Message) {
	switch m := msg.(type) {
	case Resize:
		w.structural("resize", w.panes.Resize(m.Split, m.Ratio))
	case Drop:
		w.structural("drop", w.panes.Drop(m.Source, m.Target, m.Region))
	case DropAt:
		w.structural("drop", w.panes.DropAt(m.Source, Bounds, m.Point))
	case Split:
		w.split(m.Target, m.Axis)
	case Close:
		w.close(m.Pane)
	case Save:
		if m.Path != "" {
			w.path = m.Path
		}
		w.save()
	case PathChanged:
		w.path = m.Path
	case PortChanged:
		w.changePort(m.Port)
	case RefreshPorts:
		w.refreshPorts()
	case Pan:
		if g, ok := w.Graph(m.Pane); ok {
			g.Viewport().PanByFraction(m.DX, m.DY, g.Len())
		}
	case Zoom:
		if g, ok := w.Graph(m.Pane); ok {
			g.Viewport().ZoomBy(m.Factor)
		}
	case ToggleFreeze:
		w.toggleFreeze(m.Pane)
	case Tick:
	}
	w.tick()
}

// Run handles messages from inbox and ticks at framerate until ctx is done. observe sees the workspace after every
// step, on the same goroutine.
func (w *Workspace) Run(ctx context.Context, inbox <-chan Message, framerate int, observe func(*Workspace)) error {
	if framerate <= 0 {
		framerate = DASHBOARD_FRAMERATE
	}
	ticker := time.NewTicker(time.Second / time.Duration(framerate))
	defer ticker.Stop()
	defer w.Close()

	observe(w)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg := <-inbox:
			w.Update(msg)
		case <-ticker.C:
			w.Update(Tick{})
		}
		observe(w)
	}
}

// Close releases the sources of every graph.
func (w *Workspace) Close() {
	for _, g := range w.Graphs() {
		g.Close()
	}
}

func (w *Workspace) Panes() *layout.Tree[models.Pane] {
	return w.panes
}

func (w *Workspace) Path() string {
	return w.path
}

func (w *Workspace) Port() string {
	return w.port
}

func (w *Workspace) Ports() ([]string, error) {
	return w.ports, w.portsErr
}

func (w *Workspace) Status() Status {
	return w.status
}

// Graph returns the graph held by pane, if it is a graph pane.
func (w *Workspace) Graph(pane layout.PaneHandle) (*models.FloatingGraph, bool) {
	p, ok := w.panes.Pane(pane)
	if !ok {
		return nil, false
	}
	g, ok := p.(models.GraphPane)
	if !ok {
		return nil, false
	}
	return g.Graph, true
}

// Graphs lists every graph in pane order.
func (w *Workspace) Graphs() []*models.FloatingGraph {
	var graphs []*models.FloatingGraph
	for _, p := range w.panes.All() {
		if g, ok := p.(models.GraphPane); ok {
			graphs = append(graphs, g.Graph)
		}
	}
	return graphs
}

func (w *Workspace) structural(op string, err error) {
	if err != nil {
		slog.Debug("ignored layout change", "op", op, "err", err)
	}
}

func (w *Workspace) split(target layout.PaneHandle, axis layout.Axis) {
	g := models.NewFloatingGraph(models.DefaultWaveform(models.WAVEFORM_SAMPLES), 0, 0, w.path)
	pane, err := w.panes.Split(target, axis, models.GraphPane{Graph: g})
	if err != nil {
		w.structural("split", err)
		return
	}
	w.attach(g)
	slog.Debug("graph added", "pane", pane, "samples", g.Len())
}

func (w *Workspace) close(h layout.PaneHandle) {
	pane, err := w.panes.Close(h)
	if err != nil {
		w.structural("close", err)
		return
	}
	if g, ok := pane.(models.GraphPane); ok {
		g.Graph.Close()
	}
}

func (w *Workspace) save() {
	if w.path == "" {
		w.fail("save failed", errNoPath)
		return
	}
	graphs := w.Graphs()
	columns := make([][]float32, len(graphs))
	for i, g := range graphs {
		columns[i] = g.Values()
	}
	if err := export.Write(w.path, columns); err != nil {
		w.fail("save failed", err)
		return
	}
	slog.Info("saved", "path", w.path, "graphs", len(columns))
	w.status = Status{Text: fmt.Sprintf("saved %d graphs to %s", len(columns), w.path)}
}

func (w *Workspace) changePort(port string) {
	w.port = port
	if port == "" {
		return
	}
	if err := w.sources.Open(port); err != nil {
		w.fail("port failed", err)
		return
	}
	for _, g := range w.Graphs() {
		w.attach(g)
	}
	w.status = Status{Text: "reading " + port}
}

// attach subscribes g to the selected port. Without a port, or when the port isn't running, g keeps its samples.
func (w *Workspace) attach(g *models.FloatingGraph) {
	if w.port == "" {
		return
	}
	source, ok := w.sources.Subscribe(w.port)
	if !ok {
		return
	}
	g.Attach(source)
}

func (w *Workspace) toggleFreeze(pane layout.PaneHandle) {
	g, ok := w.Graph(pane)
	if !ok {
		return
	}
	if g.State() == models.Live {
		g.Freeze()
		return
	}
	if !g.Attached() {
		w.attach(g)
		if w.port != "" && !g.Attached() {
			w.fail("couldn't resume", fmt.Errorf("%s: %w", w.port, errPortNotRunning))
			return
		}
	}
	g.Resume()
}

func (w *Workspace) refreshPorts() {
	w.ports, w.portsErr = w.lister.Ports()
	if w.portsErr != nil {
		w.fail("couldn't list ports", w.portsErr)
	}
}

func (w *Workspace) tick() {
	for h, p := range w.panes.All() {
		g, ok := p.(models.GraphPane)
		if !ok {
			continue
		}
		if g.Graph.Update() == models.SignalDisconnected {
			slog.Warn("source disconnected", "pane", h, "port", w.port)
			w.status = Status{Text: fmt.Sprintf("%s disconnected", w.port), Err: true}
		}
	}
}

func (w *Workspace) fail(msg string, err error) {
	slog.Warn(msg, "err", err)
	w.status = Status{Text: fmt.Sprintf("%s: %v", msg, err), Err: true}
}
