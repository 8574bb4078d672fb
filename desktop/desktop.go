// Package desktop tracks the logical screens of the desktop, the
// space that layer surfaces have reserved on them, and which surface
// has been given keyboard focus.
package desktop

import (
	"slices"

	"deedles.dev/strata/geom"
	"deedles.dev/strata/layer"
	"deedles.dev/strata/output"
	"github.com/charmbracelet/log"
)

type Screen struct {
	name     string
	bounds   geom.Rect[int]
	reserved geom.Margins
}

func (s *Screen) Name() string {
	return s.name
}

func (s *Screen) Bounds() geom.Rect[int] {
	return s.bounds
}

// Reserved is the total space reserved on each side of the screen.
func (s *Screen) Reserved() geom.Margins {
	return s.reserved
}

// Usable is the part of the screen that is left for windows.
func (s *Screen) Usable() geom.Rect[int] {
	return s.reserved.Shrink(s.bounds)
}

type Desktop struct {
	screens []*Screen
	current int
	focused layer.Surface

	// OnFocus, if not nil, is called whenever a surface is given
	// focus.
	OnFocus func(layer.Surface)

	logger *log.Logger
}

func New(logger *log.Logger) *Desktop {
	if logger == nil {
		logger = log.Default()
	}
	return &Desktop{logger: logger}
}

// AddScreen adds a screen covering bounds. If a screen with the same
// name already exists, its bounds are updated instead.
func (d *Desktop) AddScreen(name string, bounds geom.Rect[int]) *Screen {
	if s, ok := d.Screen(name); ok {
		s.bounds = bounds
		return s
	}

	s := &Screen{name: name, bounds: bounds}
	d.screens = append(d.screens, s)
	return s
}

func (d *Desktop) RemoveScreen(name string) bool {
	i := slices.IndexFunc(d.screens, func(s *Screen) bool { return s.name == name })
	if i < 0 {
		return false
	}

	d.screens = slices.Delete(d.screens, i, i+1)
	if d.current >= len(d.screens) {
		d.current = max(len(d.screens)-1, 0)
	}
	return true
}

func (d *Desktop) Screen(name string) (*Screen, bool) {
	i := slices.IndexFunc(d.screens, func(s *Screen) bool { return s.name == name })
	if i < 0 {
		return nil, false
	}
	return d.screens[i], true
}

func (d *Desktop) Screens() []output.Screen {
	screens := make([]output.Screen, 0, len(d.screens))
	for _, s := range d.screens {
		screens = append(screens, s)
	}
	return screens
}

func (d *Desktop) SetCurrent(i int) {
	if (i < 0) || (i >= len(d.screens)) {
		return
	}
	d.current = i
}

// CurrentScreen returns the screen that currently has focus, or nil
// if there are no screens.
func (d *Desktop) CurrentScreen() output.Screen {
	if len(d.screens) == 0 {
		return nil
	}
	return d.screens[d.current]
}

func (d *Desktop) ReserveSpace(delta geom.Margins, s output.Screen) {
	screen, ok := s.(*Screen)
	if !ok || (screen == nil) {
		d.logger.Warn("reserve space on unknown screen", "delta", delta)
		return
	}
	if delta.IsZero() {
		return
	}

	screen.reserved = screen.reserved.Add(delta).Clamp()
	d.logger.Debug("reserved space", "screen", screen.name, "reserved", screen.reserved)
}

func (d *Desktop) FocusWindow(s layer.Surface) {
	d.focused = s
	if d.OnFocus != nil {
		d.OnFocus(s)
	}
}

// Focused returns the surface that was last given focus.
func (d *Desktop) Focused() layer.Surface {
	return d.focused
}
