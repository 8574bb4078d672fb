package geom

import "fmt"

// Margins is an amount of space taken from each side of a rectangle.
type Margins struct {
	Left, Right, Top, Bottom int
}

// MarginsOf returns the space between the sides of full and the sides
// of usable, which is expected to lie inside of it.
func MarginsOf(full, usable Rect[int]) Margins {
	return Margins{
		Left:   usable.Min.X - full.Min.X,
		Right:  full.Max.X - usable.Max.X,
		Top:    usable.Min.Y - full.Min.Y,
		Bottom: full.Max.Y - usable.Max.Y,
	}
}

func (m Margins) Add(o Margins) Margins {
	return Margins{
		Left:   m.Left + o.Left,
		Right:  m.Right + o.Right,
		Top:    m.Top + o.Top,
		Bottom: m.Bottom + o.Bottom,
	}
}

func (m Margins) Sub(o Margins) Margins {
	return Margins{
		Left:   m.Left - o.Left,
		Right:  m.Right - o.Right,
		Top:    m.Top - o.Top,
		Bottom: m.Bottom - o.Bottom,
	}
}

// Clamp returns m with every negative side replaced by zero.
func (m Margins) Clamp() Margins {
	return Margins{
		Left:   max(m.Left, 0),
		Right:  max(m.Right, 0),
		Top:    max(m.Top, 0),
		Bottom: max(m.Bottom, 0),
	}
}

func (m Margins) IsZero() bool {
	return m == Margins{}
}

// Edge returns the margin on the given side. It returns zero unless
// edge is exactly one side.
func (m Margins) Edge(edge Edges) int {
	switch edge {
	case EdgeLeft:
		return m.Left
	case EdgeRight:
		return m.Right
	case EdgeTop:
		return m.Top
	case EdgeBottom:
		return m.Bottom
	default:
		return 0
	}
}

// Shrink returns r with the margins removed from its sides. If the
// margins would overlap, the affected dimension collapses to zero
// instead of inverting.
func (m Margins) Shrink(r Rect[int]) Rect[int] {
	r = r.Canon()
	r.Min.X += m.Left
	r.Max.X -= m.Right
	r.Min.Y += m.Top
	r.Max.Y -= m.Bottom
	if r.Dx() < 0 {
		r.Max.X = r.Min.X
	}
	if r.Dy() < 0 {
		r.Max.Y = r.Min.Y
	}
	return r
}

func (m Margins) String() string {
	return fmt.Sprintf("(l=%d r=%d t=%d b=%d)", m.Left, m.Right, m.Top, m.Bottom)
}
