package layer

import (
	"time"

	"deedles.dev/strata/geom"
)

// Static is a layer surface owned by the compositor itself rather
// than by a client, such as a configured panel or a strip of screen
// that should always be kept free. It behaves exactly like a client
// surface as far as arrangement is concerned.
type Static struct {
	name   string
	states States
	box    geom.Rect[int]

	lastFrame time.Time
}

// NewStatic returns a surface whose pending and current state are both
// st.
func NewStatic(name string, st State) *Static {
	return &Static{
		name:   name,
		states: States{Current: st, Pending: st},
	}
}

func (s *Static) Name() string {
	return s.name
}

func (s *Static) Layer() Layer {
	return s.states.Current.Layer
}

func (s *Static) Current() State {
	return s.states.Current
}

// SetPending replaces the pending state. It has no effect until the
// next call to Commit.
func (s *Static) SetPending(st State) {
	s.states.Pending = st
}

// Commit makes the pending state current. It reports whether the
// state changed, in which case the owning output needs to rearrange
// its layers.
func (s *Static) Commit() bool {
	return s.states.Commit()
}

func (s *Static) Configure(full geom.Rect[int], usable *geom.Rect[int]) {
	s.box = Place(s.states.Current, full, usable)
}

// Box is the area that the surface was last configured to, relative
// to the output it is on.
func (s *Static) Box() geom.Rect[int] {
	return s.box
}

// SendFrameDone records that a frame containing the surface has been
// presented.
func (s *Static) SendFrameDone(t time.Time) {
	s.lastFrame = t
}

func (s *Static) LastFrame() time.Time {
	return s.lastFrame
}
