package models

// Pane is the content of one leaf of the workspace tree. It is closed: GraphPane and ControlsPane are the only kinds.
type Pane interface {
	isPane()
}

type GraphPane struct {
	Graph *FloatingGraph
}

// ControlsPane holds the port picker, export path and save button. It carries no state of its own.
type ControlsPane struct{}

func (GraphPane) isPane()    {}
func (ControlsPane) isPane() {}

func Title(p Pane) string {
	switch p.(type) {
	case GraphPane:
		return "Graph"
	case ControlsPane:
		return "App Controls"
	default:
		return ""
	}
}
