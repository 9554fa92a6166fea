package handlers

import (
	"fmt"
	"html/template"
	"math"
	"strconv"

	"paneplot/layout"
	"paneplot/models"
	"paneplot/store"
	"paneplot/utils"
)

// Plots are drawn in a fixed viewBox and stretched to the pane.
const (
	CANVAS_WIDTH  = 1000
	CANVAS_HEIGHT = 400
)

type workspaceView struct {
	Panes     []paneView
	Splits    []splitView
	PaneCount int
	Path      string
	Port      string
	Ports     []string
	Status    store.Status
}

type paneView struct {
	Handle string
	Title  string
	Style  template.CSS
	Graph  bool

	// graph panes only
	Frozen  bool
	Latest  string
	Samples int
	Lines   []string
	ViewBox string
	Width   int
	Zero    string
}

type splitView struct {
	Handle string
	Axis   string
	Bounds string
	Style  template.CSS
}

func newWorkspaceView(ws *store.Workspace) workspaceView {
	ports, _ := ws.Ports()
	view := workspaceView{
		PaneCount: ws.Panes().Len(),
		Path:      ws.Path(),
		Port:      ws.Port(),
		Ports:     ports,
		Status:    ws.Status(),
	}

	l := ws.Panes().Layout(store.Bounds)
	for _, p := range l.Panes {
		pane, _ := ws.Panes().Pane(p.Handle)
		pv := paneView{
			Handle: p.Handle.String(),
			Title:  models.Title(pane),
			Style:  rectStyle(p.Bounds),
		}
		if g, ok := pane.(models.GraphPane); ok {
			fillGraphView(&pv, g.Graph)
		}
		view.Panes = append(view.Panes, pv)
	}

	for _, s := range l.Splits {
		view.Splits = append(view.Splits, newSplitView(s))
	}
	return view
}

func fillGraphView(pv *paneView, g *models.FloatingGraph) {
	pv.Graph = true
	pv.Frozen = g.State() == models.Frozen
	pv.Samples = g.Len()
	if latest, ok := g.Latest(); ok {
		pv.Latest = strconv.FormatFloat(utils.RoundToXDp(float64(latest), 3), 'f', -1, 64)
	}
	pv.ViewBox = fmt.Sprintf("0 0 %d %d", CANVAS_WIDTH, CANVAS_HEIGHT)
	pv.Width = CANVAS_WIDTH
	zero := g.Viewport().Project([]float32{0}, CANVAS_WIDTH, CANVAS_HEIGHT)[0].Y
	pv.Zero = strconv.FormatFloat(float64(zero), 'f', 1, 32)

	for _, line := range g.Draw(CANVAS_WIDTH, CANVAS_HEIGHT) {
		pv.Lines = append(pv.Lines, polylinePoints(decimate(line, CANVAS_WIDTH)))
	}
}

// decimate keeps the lowest and highest point of every pixel column in drawing order. Points left or right of the
// canvas are dropped except the two the line crosses its edges with.
func decimate(line models.Polyline, width float32) models.Polyline {
	if len(line) <= 2*int(width) {
		return line
	}
	start, end := 0, len(line)
	for start < end-1 && line[start+1].X < 0 {
		start++
	}
	for end > start+1 && line[end-2].X > width {
		end--
	}
	line = line[start:end]

	out := make(models.Polyline, 0, 2*int(width)+4)
	for i := 0; i < len(line); {
		column := math.Floor(float64(line[i].X))
		lo, hi := line[i], line[i]
		j := i + 1
		for ; j < len(line) && math.Floor(float64(line[j].X)) == column; j++ {
			if line[j].Y < lo.Y {
				lo = line[j]
			}
			if line[j].Y > hi.Y {
				hi = line[j]
			}
		}
		if hi.X < lo.X {
			lo, hi = hi, lo
		}
		out = append(out, lo)
		if hi != lo {
			out = append(out, hi)
		}
		i = j
	}
	return out
}

// polylinePoints formats a line as an SVG points attribute.
func polylinePoints(line models.Polyline) string {
	buf := make([]byte, 0, len(line)*14)
	for i, p := range line {
		if i > 0 {
			buf = append(buf, ' ')
		}
		buf = strconv.AppendFloat(buf, float64(p.X), 'f', 1, 32)
		buf = append(buf, ',')
		buf = strconv.AppendFloat(buf, float64(p.Y), 'f', 1, 32)
	}
	return string(buf)
}

// newSplitView places the divider of a split on the boundary between its two children. Its thickness comes from
// the stylesheet.
func newSplitView(s layout.SplitRect) splitView {
	b := s.Bounds
	var style string
	if s.Axis == layout.Horizontal {
		style = fmt.Sprintf("left:%.3f%%;top:%.3f%%;width:%.3f%%", b.X, b.Y+b.Height*s.Ratio, b.Width)
	} else {
		style = fmt.Sprintf("left:%.3f%%;top:%.3f%%;height:%.3f%%", b.X+b.Width*s.Ratio, b.Y, b.Height)
	}
	return splitView{
		Handle: s.Handle.String(),
		Axis:   s.Axis.String(),
		Bounds: fmt.Sprintf("%g %g %g %g", b.X, b.Y, b.Width, b.Height),
		Style:  template.CSS(style),
	}
}

func rectStyle(r layout.Rect) template.CSS {
	return template.CSS(fmt.Sprintf("left:%.3f%%;top:%.3f%%;width:%.3f%%;height:%.3f%%", r.X, r.Y, r.Width, r.Height))
}
