package output

import (
	"iter"
	"slices"

	"deedles.dev/strata/geom"
	"deedles.dev/strata/layer"
	"deedles.dev/xiter"
)

// topDown yields the surfaces of the given layers in the order given,
// each layer's surfaces in stacking order.
func (out *Output) topDown(layers ...layer.Layer) iter.Seq[layer.Surface] {
	seqs := make([]iter.Seq[layer.Surface], 0, len(layers))
	for _, l := range layers {
		seqs = append(seqs, slices.Values(out.layers[l]))
	}
	return xiter.Concat(seqs...)
}

func exclusive(exclusive bool) func(layer.Surface) bool {
	return func(s layer.Surface) bool {
		return s.Current().Exclusive() == exclusive
	}
}

// OrganiseLayers positions every layer surface on the output and
// updates the space reserved on the output's screen.
//
// Exclusive surfaces from every layer are placed first, so a reserved
// strip in the background layer still shrinks the area available to
// non-exclusive overlays. Calls made while layers are already being
// organised are folded into a single extra pass once the current one
// completes.
func (out *Output) OrganiseLayers() {
	if out.arranging {
		out.pending = true
		return
	}

	out.arranging = true
	defer func() { out.arranging = false }()

	for {
		out.pending = false
		out.organiseLayers()
		if !out.pending {
			return
		}
	}
}

func (out *Output) organiseLayers() {
	out.logger.Debug("organising layers")

	w, h := out.handle.EffectiveResolution()
	full := geom.Box(0, 0, w, h)
	usable := full

	for s := range xiter.Filter(out.topDown(layer.TopDown[:]...), exclusive(true)) {
		s.Configure(full, &usable)
	}

	reserved := geom.MarginsOf(full, usable)
	delta := reserved.Sub(out.reserved)
	out.reg.deps.Desktop.ReserveSpace(delta, out.Screen())
	out.reserved = reserved

	for s := range xiter.Filter(out.topDown(layer.TopDown[:]...), exclusive(false)) {
		s.Configure(full, &usable)
	}

	out.updateExclusiveFocus()
}

// updateExclusiveFocus gives keyboard focus to the topmost surface
// in the overlay or top layers that wants it exclusively.
func (out *Output) updateExclusiveFocus() {
	for s := range out.topDown(layer.Overlay, layer.Top) {
		if s.Current().KeyboardInteractivity == layer.KeyboardExclusive {
			out.exclusive = s
			out.reg.deps.Focus.FocusWindow(s)
			return
		}
	}

	// Either the holder released its grab or it left the scanned
	// layers without ever committing a non-exclusive state.
	out.exclusive = nil
}
