package geom

import (
	"errors"
	"fmt"
	"strings"
)

// Edges is a set of the sides of a rectangle. Its bit values match
// the anchor bits of the layer-shell protocol.
type Edges uint32

const (
	EdgeTop Edges = 1 << iota
	EdgeBottom
	EdgeLeft
	EdgeRight

	EdgeNone Edges = 0
	EdgeAll        = EdgeTop | EdgeBottom | EdgeLeft | EdgeRight
)

var ErrUnknownEdge = errors.New("unknown edge")

var edgeNames = []struct {
	edge Edges
	name string
}{
	{EdgeTop, "top"},
	{EdgeBottom, "bottom"},
	{EdgeLeft, "left"},
	{EdgeRight, "right"},
}

// ParseEdges combines the named edges into a single set. Names are
// case-insensitive.
func ParseEdges(names []string) (Edges, error) {
	var edges Edges
outer:
	for _, name := range names {
		for _, en := range edgeNames {
			if strings.EqualFold(strings.TrimSpace(name), en.name) {
				edges |= en.edge
				continue outer
			}
		}
		return 0, fmt.Errorf("%w: %q", ErrUnknownEdge, name)
	}
	return edges, nil
}

func (e Edges) Has(edges Edges) bool {
	return e&edges == edges
}

func (e Edges) String() string {
	if e == EdgeNone {
		return "none"
	}

	var names []string
	for _, en := range edgeNames {
		if e&en.edge != 0 {
			names = append(names, en.name)
		}
	}
	return strings.Join(names, "|")
}
