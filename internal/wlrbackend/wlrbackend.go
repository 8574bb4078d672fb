// Package wlrbackend adapts wlroots objects to the interfaces that
// the output package consumes.
package wlrbackend

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"time"

	"deedles.dev/strata/layer"
	"deedles.dev/strata/output"
	"deedles.dev/wlr"
)

var ErrForeignHandle = errors.New("handle was not created by wlrbackend")

// Output wraps a wlroots output. Create exactly one per wlr.Output so
// that it can be used as a map key.
type Output struct {
	wout      wlr.Output
	allocator wlr.Allocator
	renderer  wlr.Renderer
}

func NewOutput(wout wlr.Output, allocator wlr.Allocator, renderer wlr.Renderer) *Output {
	return &Output{
		wout:      wout,
		allocator: allocator,
		renderer:  renderer,
	}
}

func (o *Output) WLR() wlr.Output {
	return o.wout
}

func (o *Output) Name() string {
	return o.wout.Name()
}

func (o *Output) InitRender() error {
	o.wout.InitRender(o.allocator, o.renderer)
	return nil
}

func (o *Output) SetPreferredMode() {
	mode := o.wout.PreferredMode()
	if mode.Valid() {
		o.wout.SetMode(mode)
	}
}

func (o *Output) Enable() {
	o.wout.Enable(true)
}

func (o *Output) Commit() error {
	o.wout.Commit()
	return nil
}

func (o *Output) EffectiveResolution() (int, int) {
	return o.wout.EffectiveResolution()
}

func (o *Output) OnDestroy(f func()) output.Listener {
	return o.wout.OnDestroy(func(wlr.Output) { f() })
}

func (o *Output) OnFrame(f func()) output.Listener {
	return o.wout.OnFrame(func(wlr.Output) { f() })
}

func unwrap(h output.Handle) (*Output, error) {
	o, ok := h.(*Output)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrForeignHandle, h)
	}
	return o, nil
}

// Layout adds outputs to a wlroots output layout and keeps track of
// the right edge of the layout.
type Layout struct {
	layout wlr.OutputLayout
	width  int
}

func NewLayout(layout wlr.OutputLayout) *Layout {
	return &Layout{layout: layout}
}

func (l *Layout) Width() int {
	return l.width
}

func (l *Layout) Add(h output.Handle, x, y int) {
	o, err := unwrap(h)
	if err != nil {
		wlr.Log(wlr.Error, "layout add: %v", err)
		return
	}

	l.layout.Add(o.wout, x, y)
	w, _ := h.EffectiveResolution()
	l.width = max(l.width, x+w)
}

// Scene draws each output's compositor-owned layer surfaces over a
// solid background.
type Scene struct {
	renderer   wlr.Renderer
	background color.NRGBA

	outputs map[*Output]*SceneOutput
}

func NewScene(renderer wlr.Renderer, background color.NRGBA) *Scene {
	return &Scene{
		renderer:   renderer,
		background: background,
		outputs:    make(map[*Output]*SceneOutput),
	}
}

func (s *Scene) CreateSceneOutput(h output.Handle) (output.SceneOutput, error) {
	o, err := unwrap(h)
	if err != nil {
		return nil, err
	}

	so := &SceneOutput{scene: s, out: o}
	s.outputs[o] = so
	return so, nil
}

// SceneOutput returns the scene output that was created for h.
func (s *Scene) SceneOutput(h output.Handle) (*SceneOutput, bool) {
	o, err := unwrap(h)
	if err != nil {
		return nil, false
	}
	so, ok := s.outputs[o]
	return so, ok
}

// Remove forgets the scene output of h.
func (s *Scene) Remove(h output.Handle) {
	if o, err := unwrap(h); err == nil {
		delete(s.outputs, o)
	}
}

type SceneOutput struct {
	scene  *Scene
	out    *Output
	panels []panel
}

type panel struct {
	s *layer.Static
	c color.NRGBA
}

// AddPanel adds a surface to be drawn on the output as a solid block
// of c.
func (so *SceneOutput) AddPanel(s *layer.Static, c color.NRGBA) {
	so.panels = append(so.panels, panel{s: s, c: c})
}

func (so *SceneOutput) Commit() error {
	wout := so.out.wout
	_, err := wout.AttachRender()
	if err != nil {
		return fmt.Errorf("output attach render: %w", err)
	}
	defer wout.Commit()

	r := so.scene.renderer
	r.Begin(wout, wout.Width(), wout.Height())
	defer r.End()

	r.Clear(so.scene.background)
	for l := layer.Background; l <= layer.Overlay; l++ {
		for _, p := range so.panels {
			if p.s.Layer() != l {
				continue
			}
			r.RenderRect(p.s.Box().ImageRect(), p.c, wout.TransformMatrix())
		}
	}
	wout.RenderSoftwareCursors(image.ZR)

	return nil
}

func (so *SceneOutput) SendFrameDone(t time.Time) {
	for _, p := range so.panels {
		p.s.SendFrameDone(t)
	}
}
