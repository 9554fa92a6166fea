package models

// GraphBuffer holds the samples received for one graph, in arrival order. It only grows.
type GraphBuffer struct {
	// samples are never validated, NaN and Inf are kept as received.
	samples []float32
}

func NewGraphBuffer(initial []float32) *GraphBuffer {
	samples := make([]float32, len(initial), max(len(initial), 64))
	copy(samples, initial)
	return &GraphBuffer{samples}
}

func (b *GraphBuffer) Append(value float32) {
	b.samples = append(b.samples, value)
}

func (b *GraphBuffer) Len() int {
	return len(b.samples)
}

// Snapshot returns the current samples without copying. The slice is capped so appending to it never touches the
// buffer; callers must not write to its elements.
func (b *GraphBuffer) Snapshot() []float32 {
	return b.samples[:len(b.samples):len(b.samples)]
}

func (b *GraphBuffer) Latest() (float32, bool) {
	if len(b.samples) == 0 {
		return 0, false
	}
	return b.samples[len(b.samples)-1], true
}
