package layer

import "deedles.dev/strata/geom"

// Place computes the box that a surface with the given state should
// occupy and, if the surface is exclusive, reserves its zone from
// usable. A zone of -1 asks to be placed against the full area
// ignoring any space reserved by other surfaces.
//
// The returned box is in the same coordinate space as full.
func Place(state State, full geom.Rect[int], usable *geom.Rect[int]) geom.Rect[int] {
	bounds := *usable
	if state.ExclusiveZone == -1 {
		bounds = full
	}

	edges := alignEdges(state)
	bounds = marginsOn(state.Margin, edges).Shrink(bounds)
	size := geom.Box(0, 0, max(state.DesiredWidth, 0), max(state.DesiredHeight, 0))
	box := geom.Align(bounds, size, edges)

	reserve(state, usable)
	return box
}

const (
	horiz = geom.EdgeLeft | geom.EdgeRight
	vert  = geom.EdgeTop | geom.EdgeBottom
)

// alignEdges returns the edges that a surface is aligned to. An axis
// with no desired size stretches between both of its edges, while a
// sized surface anchored to both edges of an axis is centered along
// it instead.
func alignEdges(state State) geom.Edges {
	edges := state.Anchor & geom.EdgeAll
	axes := [...]struct {
		edges geom.Edges
		size  int
	}{
		{horiz, state.DesiredWidth},
		{vert, state.DesiredHeight},
	}
	for _, axis := range axes {
		switch {
		case axis.size == 0:
			edges |= axis.edges
		case edges.Has(axis.edges):
			edges &^= axis.edges
		}
	}
	return edges
}

// marginsOn returns the parts of m that apply to the given edges.
// Margins on edges that a surface is not aligned to are ignored.
func marginsOn(m geom.Margins, edges geom.Edges) (r geom.Margins) {
	if edges.Has(geom.EdgeLeft) {
		r.Left = m.Left
	}
	if edges.Has(geom.EdgeRight) {
		r.Right = m.Right
	}
	if edges.Has(geom.EdgeTop) {
		r.Top = m.Top
	}
	if edges.Has(geom.EdgeBottom) {
		r.Bottom = m.Bottom
	}
	return r
}

// reserve shrinks usable by the exclusive zone of state. Only surfaces
// anchored to a single edge, optionally stretched along it, reserve
// anything. usable is never shrunk past zero size, so it always stays
// inside of the area it started as.
func reserve(state State, usable *geom.Rect[int]) {
	if !state.Exclusive() {
		return
	}

	edge := exclusiveEdge(state.Anchor)
	if edge == geom.EdgeNone {
		return
	}

	n := max(state.ExclusiveZone+state.Margin.Edge(edge), 0)
	r := usable.Canon()
	switch edge {
	case geom.EdgeTop:
		n = min(n, r.Dy())
		r.Min.Y += n
	case geom.EdgeBottom:
		n = min(n, r.Dy())
		r.Max.Y -= n
	case geom.EdgeLeft:
		n = min(n, r.Dx())
		r.Min.X += n
	case geom.EdgeRight:
		n = min(n, r.Dx())
		r.Max.X -= n
	}
	*usable = r
}

// exclusiveEdge returns the edge along which a surface with the given
// anchor reserves space, or EdgeNone if the anchor is ambiguous.
func exclusiveEdge(anchor geom.Edges) geom.Edges {
	switch anchor {
	case geom.EdgeTop, geom.EdgeTop | horiz:
		return geom.EdgeTop
	case geom.EdgeBottom, geom.EdgeBottom | horiz:
		return geom.EdgeBottom
	case geom.EdgeLeft, geom.EdgeLeft | vert:
		return geom.EdgeLeft
	case geom.EdgeRight, geom.EdgeRight | vert:
		return geom.EdgeRight
	default:
		return geom.EdgeNone
	}
}
