package geom

import (
	"fmt"
	"image"
)

// A Rect contains the points with Min.X <= X < Max.X, Min.Y <= Y < Max.Y. It
// is well-formed if Min.X <= Max.X and likewise for Y. Points are always
// well-formed. A rectangle's methods always return well-formed outputs for
// well-formed inputs.
type Rect[T Scalar] struct {
	Min, Max Point[T]
}

// Rt is shorthand for Rect{Pt(x0, y0), Pt(x1, y1)}. The returned
// rectangle has minimum and maximum coordinates swapped if necessary
// so that it is well-formed.
func Rt[T Scalar](x0, y0, x1, y1 T) Rect[T] {
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	return Rect[T]{Point[T]{x0, y0}, Point[T]{x1, y1}}
}

// Box returns the rectangle with its top-left corner at (x, y) and the
// given size. It is the x, y, width, height form that compositors
// usually pass around.
func Box[T Scalar](x, y, w, h T) Rect[T] {
	return Rt(x, y, x+w, y+h)
}

func (r Rect[T]) Dx() T {
	return r.Max.X - r.Min.X
}

func (r Rect[T]) Dy() T {
	return r.Max.Y - r.Min.Y
}

func (r Rect[T]) Size() Point[T] {
	return Point[T]{
		r.Max.X - r.Min.X,
		r.Max.Y - r.Min.Y,
	}
}

// Touches reports whether r and s intersect. Rectangles that share
// only an edge, or that have no area, still count, so a zero-width
// rectangle lying on r's border touches r.
func (r Rect[T]) Touches(s Rect[T]) bool {
	return s.Max.X >= r.Min.X && s.Min.X <= r.Max.X &&
		s.Max.Y >= r.Min.Y && s.Min.Y <= r.Max.Y
}

func (r Rect[T]) Canon() Rect[T] {
	if r.Max.X < r.Min.X {
		r.Min.X, r.Max.X = r.Max.X, r.Min.X
	}
	if r.Max.Y < r.Min.Y {
		r.Min.Y, r.Max.Y = r.Max.Y, r.Min.Y
	}
	return r
}

// Center returns the point at the middle of r.
func (r Rect[T]) Center() Point[T] {
	return r.Min.Add(r.Max).Div(2)
}

// CenterAt returns a new rectangle with the same dimensions as r but
// with a center point at p.
func (r Rect[T]) CenterAt(p Point[T]) Rect[T] {
	hs := r.Size().Div(2)
	return Rect[T]{
		Min: p.Sub(hs),
		Max: p.Sub(hs).Add(r.Size()),
	}
}

func (r Rect[T]) ImageRect() image.Rectangle {
	return image.Rectangle{
		Min: r.Min.ImagePoint(),
		Max: r.Max.ImagePoint(),
	}
}

func (r Rect[T]) String() string {
	return fmt.Sprintf("%vx%v+%v+%v", r.Dx(), r.Dy(), r.Min.X, r.Min.Y)
}
