package models

import (
	"io"
	"log/slog"
	"math"

	"paneplot/export"
)

type State uint8

const (
	Live State = iota
	// Frozen graphs stop ingesting but can still be panned and zoomed.
	Frozen
)

func (s State) String() string {
	if s == Frozen {
		return "frozen"
	}
	return "live"
}

// Signal reports an exceptional condition from FloatingGraph.Update.
type Signal uint8

const (
	SignalNone Signal = iota
	SignalDisconnected
)

// MaxPollsPerTick bounds the work one Update does so a chatty producer cannot stall a redraw.
const MaxPollsPerTick = 512

const WAVEFORM_SAMPLES = 1000

// Polyline is a run of finite points to stroke.
type Polyline []Point

type FloatingGraph struct {
	buffer   *GraphBuffer
	viewport Viewport
	source   Source
	state    State
}

// NewFloatingGraph seeds a graph from the first column of the export at importPath, or from initial when importPath
// is empty or does not hold a usable export.
func NewFloatingGraph(initial []float32, panX, panY float32, importPath string) *FloatingGraph {
	samples := initial
	if importPath != "" {
		columns, err := export.ReadColumns(importPath)
		switch {
		case err != nil:
			slog.Debug("import failed, using default samples", "path", importPath, "err", err)
		case len(columns) == 0 || len(columns[0]) == 0:
			slog.Debug("import has no samples, using default samples", "path", importPath)
		default:
			samples = columns[0]
		}
	}
	return &FloatingGraph{
		buffer:   NewGraphBuffer(samples),
		viewport: NewViewport(panX, panY),
	}
}

// Attach binds the graph to a source, replacing and closing any previous one. A graph frozen by a disconnect goes
// live again.
func (g *FloatingGraph) Attach(source Source) {
	g.closeSource()
	g.source = source
	g.state = Live
}

func (g *FloatingGraph) Attached() bool {
	return g.source != nil
}

// Update pulls whatever the source has ready into the buffer. It is the only place samples are appended.
func (g *FloatingGraph) Update() Signal {
	if g.state == Frozen || g.source == nil {
		return SignalNone
	}
	for range MaxPollsPerTick {
		sample, ok, err := g.source.TryReceive()
		if err != nil {
			g.closeSource()
			g.state = Frozen
			return SignalDisconnected
		}
		if !ok {
			break
		}
		g.buffer.Append(sample)
	}
	return SignalNone
}

func (g *FloatingGraph) Freeze() {
	g.state = Frozen
}

func (g *FloatingGraph) Resume() {
	g.state = Live
}

func (g *FloatingGraph) State() State {
	return g.state
}

// Values is the read-only sample view used for export.
func (g *FloatingGraph) Values() []float32 {
	return g.buffer.Snapshot()
}

func (g *FloatingGraph) Len() int {
	return g.buffer.Len()
}

func (g *FloatingGraph) Latest() (float32, bool) {
	return g.buffer.Latest()
}

func (g *FloatingGraph) Viewport() *Viewport {
	return &g.viewport
}

// Draw returns the polylines to stroke for a width x height canvas. Non-finite samples break the line.
func (g *FloatingGraph) Draw(width, height float32) []Polyline {
	points := g.viewport.Project(g.buffer.Snapshot(), width, height)
	var lines []Polyline
	var current Polyline
	for _, p := range points {
		if !finite(p.X) || !finite(p.Y) {
			if len(current) > 0 {
				lines = append(lines, current)
				current = nil
			}
			continue
		}
		current = append(current, p)
	}
	if len(current) > 0 {
		lines = append(lines, current)
	}
	return lines
}

// Close releases the source when the owning pane goes away.
func (g *FloatingGraph) Close() {
	g.closeSource()
}

func (g *FloatingGraph) closeSource() {
	if closer, ok := g.source.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			slog.Debug("close source", "err", err)
		}
	}
	g.source = nil
}

// DefaultWaveform is the sample set a new graph starts with when nothing is imported.
func DefaultWaveform(n int) []float32 {
	samples := make([]float32, n)
	for i := range samples {
		samples[i] = float32(math.Sin(float64(i)*0.01) + 1)
	}
	return samples
}

func finite(f float32) bool {
	return !math.IsNaN(float64(f)) && !math.IsInf(float64(f), 0)
}
