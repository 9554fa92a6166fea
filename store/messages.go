package store

import (
	"paneplot/layout"
)

// Message is one discrete UI action for the workspace. The set is closed: only the types below implement it.
type Message interface {
	isMessage()
}

// Resize moves the divider of a split.
type Resize struct {
	Split layout.SplitHandle
	Ratio float32
}

// Drop moves a dragged pane onto a region of a target pane.
type Drop struct {
	Source layout.PaneHandle
	Target layout.PaneHandle
	Region layout.Region
}

// DropAt moves a dragged pane to wherever Point lands, in Bounds coordinates.
type DropAt struct {
	Source layout.PaneHandle
	Point  layout.Point
}

// Save exports every graph. A non-empty Path replaces the current path first.
type Save struct {
	Path string
}

type PathChanged struct {
	Path string
}

type PortChanged struct {
	Port string
}

type RefreshPorts struct{}

// Split adds a new graph pane next to Target.
type Split struct {
	Target layout.PaneHandle
	Axis   layout.Axis
}

type Close struct {
	Pane layout.PaneHandle
}

// Pan drags a graph by a fraction of its canvas.
type Pan struct {
	Pane   layout.PaneHandle
	DX, DY float32
}

type Zoom struct {
	Pane   layout.PaneHandle
	Factor float32
}

type ToggleFreeze struct {
	Pane layout.PaneHandle
}

// Tick pulls new samples into every graph.
type Tick struct{}

func (Resize) isMessage()       {}
func (Drop) isMessage()         {}
func (DropAt) isMessage()       {}
func (Save) isMessage()         {}
func (PathChanged) isMessage()  {}
func (PortChanged) isMessage()  {}
func (RefreshPorts) isMessage() {}
func (Split) isMessage()        {}
func (Close) isMessage()        {}
func (Pan) isMessage()          {}
func (Zoom) isMessage()         {}
func (ToggleFreeze) isMessage() {}
func (Tick) isMessage()         {}
