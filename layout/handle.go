package layout

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownPane  = errors.New("unknown pane")
	ErrUnknownSplit = errors.New("unknown split")
	ErrSamePane     = errors.New("source and target are the same pane")
	ErrLastPane     = errors.New("cannot close the last pane")
	errBadHandle    = errors.New("malformed handle")
)

// PaneHandle addresses a leaf of a Tree. It stays valid while the pane lives, wherever the pane moves.
// The zero value never matches a pane.
type PaneHandle struct {
	index      uint32
	generation uint32
}

// SplitHandle addresses an internal node of a Tree.
type SplitHandle struct {
	index      uint32
	generation uint32
}

func (h PaneHandle) String() string {
	return fmt.Sprintf("p%d.%d", h.index, h.generation)
}

func (h SplitHandle) String() string {
	return fmt.Sprintf("s%d.%d", h.index, h.generation)
}

// IsZero reports whether h was never issued by a tree.
func (h PaneHandle) IsZero() bool {
	return h.generation == 0
}

func ParsePaneHandle(s string) (PaneHandle, error) {
	index, generation, err := parseHandle('p', s)
	return PaneHandle{index, generation}, err
}

func ParseSplitHandle(s string) (SplitHandle, error) {
	index, generation, err := parseHandle('s', s)
	return SplitHandle{index, generation}, err
}

func parseHandle(prefix byte, s string) (index, generation uint32, err error) {
	if len(s) < 4 || s[0] != prefix {
		return 0, 0, fmt.Errorf("parse %q: %w", s, errBadHandle)
	}
	if _, err = fmt.Sscanf(s[1:], "%d.%d", &index, &generation); err != nil {
		return 0, 0, fmt.Errorf("parse %q: %w", s, errBadHandle)
	}
	if generation == 0 {
		return 0, 0, fmt.Errorf("parse %q: %w", s, errBadHandle)
	}
	return index, generation, nil
}
