// Package geom provides the rectangles, points, edges, and margins
// that output and layer arrangement is expressed in.
package geom

import "golang.org/x/exp/constraints"

// Scalar is a constraint for the types that geom types and functions
// can handle.
type Scalar interface {
	constraints.Integer | constraints.Float
}
