// Package layer describes layer-shell surfaces: the panels, bars,
// overlays, and backgrounds that are stacked in fixed layers on an
// output instead of being managed as windows.
package layer

import (
	"errors"
	"fmt"
	"strings"

	"deedles.dev/strata/geom"
)

var (
	ErrUnknownLayer       = errors.New("unknown layer")
	ErrUnknownInteraction = errors.New("unknown keyboard interactivity")
)

// Layer is one of the four fixed desktop layers. The numeric values
// match the layer-shell protocol and increase from the bottom up.
type Layer int

const (
	Background Layer = iota
	Bottom
	Top
	Overlay
)

// Count is the number of layers.
const Count = int(Overlay) + 1

var layerNames = [Count]string{"background", "bottom", "top", "overlay"}

// TopDown lists all of the layers from the topmost to the lowest.
var TopDown = [Count]Layer{Overlay, Top, Bottom, Background}

func ParseLayer(name string) (Layer, error) {
	for i, n := range layerNames {
		if strings.EqualFold(name, n) {
			return Layer(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownLayer, name)
}

func (l Layer) Valid() bool {
	return (l >= Background) && (l <= Overlay)
}

func (l Layer) String() string {
	if !l.Valid() {
		return fmt.Sprintf("Layer(%d)", int(l))
	}
	return layerNames[l]
}

// KeyboardInteractivity is a surface's request for keyboard focus.
type KeyboardInteractivity int

const (
	KeyboardNone KeyboardInteractivity = iota
	KeyboardExclusive
	KeyboardOnDemand
)

func ParseKeyboardInteractivity(name string) (KeyboardInteractivity, error) {
	switch strings.ToLower(strings.ReplaceAll(name, "-", "_")) {
	case "", "none":
		return KeyboardNone, nil
	case "exclusive":
		return KeyboardExclusive, nil
	case "on_demand", "ondemand":
		return KeyboardOnDemand, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownInteraction, name)
	}
}

func (k KeyboardInteractivity) String() string {
	switch k {
	case KeyboardNone:
		return "none"
	case KeyboardExclusive:
		return "exclusive"
	case KeyboardOnDemand:
		return "on_demand"
	default:
		return fmt.Sprintf("KeyboardInteractivity(%d)", int(k))
	}
}

// State is a snapshot of the double-buffered state of a layer
// surface. Once committed it is never modified in place.
type State struct {
	Layer         Layer
	Anchor        geom.Edges
	ExclusiveZone int
	Margin        geom.Margins

	DesiredWidth  int
	DesiredHeight int

	KeyboardInteractivity KeyboardInteractivity
}

// Exclusive reports whether the surface reserves space from the
// usable area of its output.
func (s State) Exclusive() bool {
	return s.ExclusiveZone > 0
}

// States is the pending and current state of a surface. Clients
// modify Pending and the compositor only ever reads Current.
type States struct {
	Current State
	Pending State
}

// Commit makes the pending state current and reports whether anything
// changed.
func (s *States) Commit() bool {
	changed := s.Current != s.Pending
	s.Current = s.Pending
	return changed
}

// Surface is a layer surface as seen by the output that it belongs
// to.
type Surface interface {
	// Layer is the bucket that the surface currently belongs to.
	Layer() Layer

	// Current returns the last committed state.
	Current() State

	// Configure positions the surface against the full area of its
	// output and the area that is still usable. Exclusive surfaces
	// also shrink usable along their anchored edge.
	Configure(full geom.Rect[int], usable *geom.Rect[int])
}
