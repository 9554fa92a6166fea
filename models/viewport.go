package models

const (
	// MinZoom is the smallest zoom a viewport accepts, zoom is never zero or negative.
	MinZoom              = 1e-3
	MaxZoom              = 1e3
	DefaultVerticalScale = 0.5
)

// Point is a position on the canvas in pixels, origin top left.
type Point struct {
	X, Y float32
}

// Viewport is the pan/zoom transform of a graph.
type Viewport struct {
	// PanX shifts the graph horizontally in samples.
	PanX float32
	// PanY shifts the graph vertically in data units.
	PanY float32
	// VerticalScale is how many half canvas heights one data unit spans at zoom 1.
	VerticalScale float32

	zoom float32
}

func NewViewport(panX, panY float32) Viewport {
	return Viewport{
		PanX:          panX,
		PanY:          panY,
		VerticalScale: DefaultVerticalScale,
		zoom:          1,
	}
}

// Zoom returns the scale factor. A zero Viewport has zoom 1.
func (v *Viewport) Zoom() float32 {
	if v.zoom <= 0 {
		return 1
	}
	return v.zoom
}

func (v *Viewport) SetZoom(zoom float32) {
	switch {
	case !(zoom >= MinZoom):
		zoom = MinZoom
	case zoom > MaxZoom:
		zoom = MaxZoom
	}
	v.zoom = zoom
}

func (v *Viewport) ZoomBy(factor float32) {
	v.SetZoom(v.Zoom() * factor)
}

func (v *Viewport) PanBy(dx, dy float32) {
	v.PanX += dx
	v.PanY += dy
}

// PanByFraction pans by a drag measured as a fraction of the canvas. Dragging right or down moves the data with
// the pointer.
func (v *Viewport) PanByFraction(fx, fy float32, samples int) {
	zoom := v.Zoom()
	span := float32(max(samples-1, 1))
	v.PanX += fx * span / zoom
	if vs := v.verticalScale(); vs != 0 {
		v.PanY -= fy * 2 / (zoom * vs)
	}
}

// Project maps samples onto a width x height canvas. At zoom 1 with no pan the first sample sits on the left edge and
// the last on the right edge; value 0 sits on the vertical centre and positive values go up.
func (v *Viewport) Project(samples []float32, width, height float32) []Point {
	if len(samples) == 0 {
		return nil
	}
	zoom := v.Zoom()
	step := width / float32(max(len(samples)-1, 1))
	halfHeight := height / 2
	yScale := zoom * v.verticalScale() * halfHeight

	points := make([]Point, len(samples))
	for i, value := range samples {
		points[i] = Point{
			X: (float32(i) + v.PanX) * zoom * step,
			Y: halfHeight - (value+v.PanY)*yScale,
		}
	}
	return points
}

func (v *Viewport) verticalScale() float32 {
	if v.VerticalScale == 0 {
		return DefaultVerticalScale
	}
	return v.VerticalScale
}
