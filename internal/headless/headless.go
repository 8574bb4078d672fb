// Package headless is an in-memory backend with no display attached.
// Outputs have a fixed resolution and their signals are emitted by
// hand, which makes it useful both for dry runs of an arrangement and
// for tests.
package headless

import (
	"errors"
	"slices"
	"time"

	"deedles.dev/strata/output"
)

var ErrCommit = errors.New("headless: commit rejected")

type signal struct {
	listeners []*listener
}

type listener struct {
	sig *signal
	f   func()
}

func (sig *signal) add(f func()) output.Listener {
	lis := &listener{sig: sig, f: f}
	sig.listeners = append(sig.listeners, lis)
	return lis
}

func (sig *signal) emit() {
	for _, lis := range slices.Clone(sig.listeners) {
		lis.f()
	}
}

func (lis *listener) Destroy() {
	if lis.sig == nil {
		return
	}

	i := slices.Index(lis.sig.listeners, lis)
	if i >= 0 {
		lis.sig.listeners = slices.Delete(lis.sig.listeners, i, i+1)
	}
	lis.sig = nil
}

// Output is a headless output. The zero value is not usable; create
// one with NewOutput.
type Output struct {
	name          string
	width, height int

	// FailInit and FailCommit make the corresponding backend calls
	// fail.
	FailInit   bool
	FailCommit bool

	Enabled bool
	Commits int

	destroy signal
	frame   signal
}

func NewOutput(name string, width, height int) *Output {
	return &Output{name: name, width: width, height: height}
}

func (o *Output) Name() string {
	return o.name
}

func (o *Output) InitRender() error {
	if o.FailInit {
		return errors.New("headless: no renderer")
	}
	return nil
}

func (o *Output) SetPreferredMode() {}

func (o *Output) Enable() {
	o.Enabled = true
}

func (o *Output) Commit() error {
	if o.FailCommit {
		return ErrCommit
	}
	o.Commits++
	return nil
}

func (o *Output) EffectiveResolution() (int, int) {
	return o.width, o.height
}

// Resize changes the effective resolution, as if the mode, scale, or
// transform of the output had changed.
func (o *Output) Resize(width, height int) {
	o.width, o.height = width, height
}

func (o *Output) OnDestroy(f func()) output.Listener {
	return o.destroy.add(f)
}

func (o *Output) OnFrame(f func()) output.Listener {
	return o.frame.add(f)
}

// Destroy emits the destroy signal.
func (o *Output) Destroy() {
	o.destroy.emit()
}

// Frame emits the frame signal.
func (o *Output) Frame() {
	o.frame.emit()
}

// Listeners returns the number of live subscriptions to the output's
// signals.
func (o *Output) Listeners() int {
	return len(o.destroy.listeners) + len(o.frame.listeners)
}

// Layout places outputs in a single row and keeps track of the total
// width.
type Layout struct {
	width     int
	Positions map[output.Handle][2]int
}

func (l *Layout) Width() int {
	return l.width
}

func (l *Layout) Add(h output.Handle, x, y int) {
	if l.Positions == nil {
		l.Positions = make(map[output.Handle][2]int)
	}
	l.Positions[h] = [2]int{x, y}

	w, _ := h.EffectiveResolution()
	l.width = max(l.width, x+w)
}

// Scene hands out headless scene outputs.
type Scene struct {
	// Fail makes CreateSceneOutput fail.
	Fail bool

	outputs map[output.Handle]*SceneOutput
}

func (s *Scene) CreateSceneOutput(h output.Handle) (output.SceneOutput, error) {
	if s.Fail {
		return nil, errors.New("headless: no scene")
	}
	if s.outputs == nil {
		s.outputs = make(map[output.Handle]*SceneOutput)
	}

	so := &SceneOutput{}
	s.outputs[h] = so
	return so, nil
}

// SceneOutput returns the scene output created for h.
func (s *Scene) SceneOutput(h output.Handle) *SceneOutput {
	return s.outputs[h]
}

type SceneOutput struct {
	// Reject makes Commit fail.
	Reject bool

	Commits    int
	FrameTimes []time.Time
}

func (so *SceneOutput) Commit() error {
	if so.Reject {
		return ErrCommit
	}
	so.Commits++
	return nil
}

func (so *SceneOutput) SendFrameDone(t time.Time) {
	so.FrameTimes = append(so.FrameTimes, t)
}
