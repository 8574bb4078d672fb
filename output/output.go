// Package output manages the lifecycle of display outputs and the
// arrangement of the layer surfaces shown on them.
//
// Everything in this package is driven by signal handlers dispatched
// one at a time from the compositor's event loop. None of it is safe
// for concurrent use.
package output

import (
	"fmt"
	"slices"

	"deedles.dev/strata/geom"
	"deedles.dev/strata/internal/util"
	"deedles.dev/strata/layer"
	"github.com/charmbracelet/log"
)

// Output is a single display output.
type Output struct {
	reg    *Registry
	handle Handle
	scene  SceneOutput
	logger *log.Logger

	pos      geom.Point[int]
	reserved geom.Margins

	layers    [layer.Count][]layer.Surface
	exclusive layer.Surface

	arranging bool
	pending   bool

	listeners []Listener
	finalized bool
}

func (out *Output) init() error {
	h := out.handle

	err := h.InitRender()
	if err != nil {
		return fmt.Errorf("init render: %w", err)
	}
	h.SetPreferredMode()
	h.Enable()
	err = h.Commit()
	if err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	out.scene, err = out.reg.deps.Scene.CreateSceneOutput(h)
	if err != nil {
		return fmt.Errorf("create scene output: %w", err)
	}

	// Nothing may fail past this point, or the output would be left
	// behind in the layout.
	layout := out.reg.deps.Layout
	out.pos = geom.Pt(layout.Width(), 0)
	layout.Add(h, out.pos.X, out.pos.Y)

	out.listeners = append(
		out.listeners,
		h.OnDestroy(out.onDestroy),
		h.OnFrame(out.onFrame),
	)

	return nil
}

// Finalize releases the output's signal subscriptions and removes it
// from its registry. Only the first call has any effect.
func (out *Output) Finalize() {
	if out.finalized {
		return
	}
	out.finalized = true

	out.releaseListeners()
	out.reg.remove(out)
}

func (out *Output) releaseListeners() {
	for _, lis := range out.listeners {
		lis.Destroy()
	}
	out.listeners = nil
}

func (out *Output) onDestroy() {
	out.logger.Debug("signal: output destroy")
	out.Finalize()
}

func (out *Output) onFrame() {
	err := out.scene.Commit()
	if err != nil {
		// The next frame signal will try again.
		out.logger.Debug("skipping frame", "err", err)
		return
	}

	out.scene.SendFrameDone(out.reg.deps.Clock.Now())
}

func (out *Output) Name() string {
	return out.handle.Name()
}

func (out *Output) Handle() Handle {
	return out.handle
}

// Position is the top-left corner of the output in the global layout.
func (out *Output) Position() geom.Point[int] {
	return out.pos
}

// Geometry returns the area that the output covers in the global
// layout. The size is read from the backend every time so that
// changes to scale and transform are always reflected.
func (out *Output) Geometry() geom.Rect[int] {
	w, h := out.handle.EffectiveResolution()
	return geom.Box(out.pos.X, out.pos.Y, w, h)
}

// Contains reports whether any part of r, in global layout
// coordinates, is visible on the output. Rectangles that only touch
// its border count.
func (out *Output) Contains(r geom.Rect[int]) bool {
	return out.Geometry().Touches(r)
}

// ReservedMargins is the space currently reserved on each side of the
// output by exclusive layer surfaces.
func (out *Output) ReservedMargins() geom.Margins {
	return out.reserved
}

// ExclusiveFocus returns the surface that currently holds exclusive
// keyboard focus on this output, if any.
func (out *Output) ExclusiveFocus() (layer.Surface, bool) {
	return out.exclusive, out.exclusive != nil
}

// Screen returns the desktop screen that corresponds to the output.
// If there is more than one screen, the first one with exactly the
// output's geometry is returned. Otherwise, or if none match, it is
// the current screen.
func (out *Output) Screen() Screen {
	d := out.reg.deps.Desktop
	screens := d.Screens()
	if len(screens) > 1 {
		g := out.Geometry()
		if s, ok := util.FindFunc(screens, func(s Screen) bool { return s.Bounds() == g }); ok {
			return s
		}
	}
	return d.CurrentScreen()
}

// AddLayerSurface appends s to the stack of the layer that it
// currently belongs to.
func (out *Output) AddLayerSurface(s layer.Surface) {
	l := s.Layer()
	out.layers[l] = append(out.layers[l], s)
}

// RemoveLayerSurface removes s from whichever layer it is in. If s
// held exclusive focus, it no longer does.
func (out *Output) RemoveLayerSurface(s layer.Surface) bool {
	if out.exclusive == s {
		out.exclusive = nil
	}

	for l, surfaces := range out.layers {
		i := slices.Index(surfaces, s)
		if i >= 0 {
			out.layers[l] = slices.Delete(surfaces, i, i+1)
			return true
		}
	}
	return false
}

// Relayer moves s into the layer that it now reports, appending it to
// that layer's stack. If s held exclusive focus, it keeps it only if
// it is still in the overlay or top layer.
func (out *Output) Relayer(s layer.Surface) {
	holder := out.exclusive == s
	out.RemoveLayerSurface(s)
	out.AddLayerSurface(s)
	if holder && canHoldFocus(s.Layer()) {
		out.exclusive = s
	}
}

func canHoldFocus(l layer.Layer) bool {
	return (l == layer.Overlay) || (l == layer.Top)
}

// LayerSurfaces returns the surfaces in l in stacking order, earliest
// added first.
func (out *Output) LayerSurfaces(l layer.Layer) []layer.Surface {
	return slices.Clone(out.layers[l])
}
