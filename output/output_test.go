package output_test

import (
	"io"
	"math/rand"
	"testing"
	"time"

	"deedles.dev/strata/desktop"
	"deedles.dev/strata/geom"
	"deedles.dev/strata/internal/headless"
	"deedles.dev/strata/layer"
	"deedles.dev/strata/output"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClock time.Time

func (c fixedClock) Now() time.Time {
	return time.Time(c)
}

type recordingDesktop struct {
	*desktop.Desktop
	deltas []geom.Margins
}

func (d *recordingDesktop) ReserveSpace(delta geom.Margins, s output.Screen) {
	d.deltas = append(d.deltas, delta)
	d.Desktop.ReserveSpace(delta, s)
}

func (d *recordingDesktop) lastDelta() geom.Margins {
	return d.deltas[len(d.deltas)-1]
}

type env struct {
	reg     *output.Registry
	layout  *headless.Layout
	scene   *headless.Scene
	desktop *recordingDesktop
	clock   fixedClock
}

func newEnv(t *testing.T) *env {
	t.Helper()

	e := env{
		layout:  new(headless.Layout),
		scene:   new(headless.Scene),
		desktop: &recordingDesktop{Desktop: desktop.New(log.New(io.Discard))},
		clock:   fixedClock(time.Date(2024, 8, 22, 15, 59, 53, 0, time.UTC)),
	}
	e.reg = output.NewRegistry(output.Deps{
		Layout:  e.layout,
		Scene:   e.scene,
		Clock:   e.clock,
		Focus:   e.desktop,
		Desktop: e.desktop,
		Logger:  log.New(io.Discard),
	})
	return &e
}

func (e *env) addOutput(t *testing.T, name string, w, h int) (*output.Output, *headless.Output) {
	t.Helper()

	ho := headless.NewOutput(name, w, h)
	out, err := e.reg.Add(ho)
	require.NoError(t, err)
	e.desktop.AddScreen(name, out.Geometry())
	return out, ho
}

// recorder is a static surface that logs the order in which it is
// configured.
type recorder struct {
	*layer.Static
	log *[]string
}

func (r recorder) Configure(full geom.Rect[int], usable *geom.Rect[int]) {
	*r.log = append(*r.log, r.Name())
	r.Static.Configure(full, usable)
}

func TestAddPlacesOutputsLeftToRight(t *testing.T) {
	e := newEnv(t)

	first, fh := e.addOutput(t, "DP-1", 1920, 1080)
	second, sh := e.addOutput(t, "DP-2", 1280, 1024)

	assert.Equal(t, geom.Pt(0, 0), first.Position())
	assert.Equal(t, geom.Pt(1920, 0), second.Position())
	assert.Equal(t, geom.Box(1920, 0, 1280, 1024), second.Geometry())
	assert.Equal(t, 3200, e.layout.Width())

	assert.True(t, fh.Enabled)
	assert.Equal(t, 1, fh.Commits)
	assert.Equal(t, 2, sh.Listeners())

	out, ok := e.reg.Lookup(sh)
	assert.True(t, ok)
	assert.Same(t, second, out)
	assert.Equal(t, []*output.Output{first, second}, e.reg.Outputs())

	at, ok := e.reg.OutputAt(geom.Pt(2000, 10))
	assert.True(t, ok)
	assert.Same(t, second, at)
	_, ok = e.reg.OutputAt(geom.Pt(5000, 10))
	assert.False(t, ok)
}

func TestAddFailures(t *testing.T) {
	t.Run("init", func(t *testing.T) {
		e := newEnv(t)
		ho := headless.NewOutput("DP-1", 1920, 1080)
		ho.FailInit = true

		_, err := e.reg.Add(ho)
		assert.Error(t, err)
		assert.Zero(t, e.reg.Len())
		assert.Zero(t, e.layout.Width())
	})

	t.Run("commit", func(t *testing.T) {
		e := newEnv(t)
		ho := headless.NewOutput("DP-1", 1920, 1080)
		ho.FailCommit = true

		_, err := e.reg.Add(ho)
		assert.ErrorIs(t, err, headless.ErrCommit)
		assert.Zero(t, e.reg.Len())
	})

	t.Run("scene", func(t *testing.T) {
		e := newEnv(t)
		e.scene.Fail = true
		ho := headless.NewOutput("DP-1", 1920, 1080)

		_, err := e.reg.Add(ho)
		assert.Error(t, err)
		assert.Zero(t, e.reg.Len())
		assert.Zero(t, ho.Listeners())
		assert.Zero(t, e.layout.Width())

		e.scene.Fail = false
		out, _ := e.addOutput(t, "DP-2", 1280, 720)
		assert.Equal(t, geom.Pt(0, 0), out.Position())
	})

	t.Run("duplicate", func(t *testing.T) {
		e := newEnv(t)
		_, ho := e.addOutput(t, "DP-1", 1920, 1080)

		_, err := e.reg.Add(ho)
		assert.ErrorIs(t, err, output.ErrDuplicate)
		assert.Equal(t, 1, e.reg.Len())
	})
}

func TestDestroySignal(t *testing.T) {
	e := newEnv(t)
	out, ho := e.addOutput(t, "DP-1", 1920, 1080)
	_, other := e.addOutput(t, "DP-2", 1920, 1080)

	ho.Destroy()
	assert.Zero(t, ho.Listeners())
	assert.Equal(t, 1, e.reg.Len())
	_, ok := e.reg.Lookup(ho)
	assert.False(t, ok)

	// Nothing is listening anymore, and finalizing again is harmless.
	ho.Destroy()
	ho.Frame()
	out.Finalize()
	assert.Equal(t, 1, e.reg.Len())
	assert.Empty(t, e.scene.SceneOutput(ho).FrameTimes)
	assert.Equal(t, 2, other.Listeners())
}

func TestFrame(t *testing.T) {
	e := newEnv(t)
	_, ho := e.addOutput(t, "DP-1", 1920, 1080)
	so := e.scene.SceneOutput(ho)

	ho.Frame()
	assert.Equal(t, 1, so.Commits)
	assert.Equal(t, []time.Time{e.clock.Now()}, so.FrameTimes)

	so.Reject = true
	ho.Frame()
	assert.Len(t, so.FrameTimes, 1, "rejected frames are skipped")

	so.Reject = false
	ho.Frame()
	assert.Len(t, so.FrameTimes, 2)
}

func TestContains(t *testing.T) {
	e := newEnv(t)
	out, _ := e.addOutput(t, "DP-1", 1920, 1080)

	assert.False(t, out.Contains(geom.Box(2000, 0, 100, 100)))
	assert.True(t, out.Contains(geom.Box(1800, 0, 300, 100)))
	assert.True(t, out.Contains(geom.Box(100, 100, 10, 10)))
	assert.False(t, out.Contains(geom.Box(0, 1200, 10, 10)))
	assert.False(t, out.Contains(geom.Box(-300, 0, 100, 100)))
}

func TestGeometryFollowsResolution(t *testing.T) {
	e := newEnv(t)
	out, ho := e.addOutput(t, "DP-1", 3840, 2160)

	ho.Resize(1920, 1080)
	assert.Equal(t, geom.Box(0, 0, 1920, 1080), out.Geometry())
}

func TestScreen(t *testing.T) {
	e := newEnv(t)
	first, _ := e.addOutput(t, "DP-1", 1920, 1080)
	second, _ := e.addOutput(t, "DP-2", 1280, 1024)

	s, ok := second.Screen().(*desktop.Screen)
	require.True(t, ok)
	assert.Equal(t, "DP-2", s.Name())

	s, ok = first.Screen().(*desktop.Screen)
	require.True(t, ok)
	assert.Equal(t, "DP-1", s.Name())

	// No exact match falls back to the current screen.
	e.desktop.AddScreen("DP-2", geom.Box(1920, 0, 1000, 1000))
	e.desktop.SetCurrent(1)
	s, ok = second.Screen().(*desktop.Screen)
	require.True(t, ok)
	assert.Equal(t, "DP-2", s.Name())
	e.desktop.SetCurrent(0)
	s, ok = second.Screen().(*desktop.Screen)
	require.True(t, ok)
	assert.Equal(t, "DP-1", s.Name())
}

func TestOrganiseLayersEmpty(t *testing.T) {
	e := newEnv(t)
	out, _ := e.addOutput(t, "DP-1", 1920, 1080)

	out.OrganiseLayers()
	assert.Equal(t, geom.Margins{}, out.ReservedMargins())
	assert.Equal(t, geom.Margins{}, e.desktop.lastDelta())
	_, ok := out.ExclusiveFocus()
	assert.False(t, ok)
}

func TestOrganiseLayersTopBar(t *testing.T) {
	e := newEnv(t)
	out, _ := e.addOutput(t, "DP-1", 1920, 1080)

	bar := layer.NewStatic("bar", layer.State{
		Layer:         layer.Top,
		Anchor:        geom.EdgeTop,
		ExclusiveZone: 32,
		DesiredHeight: 32,
	})
	bg := layer.NewStatic("wallpaper", layer.State{Layer: layer.Background})
	out.AddLayerSurface(bar)
	out.AddLayerSurface(bg)

	out.OrganiseLayers()
	assert.Equal(t, geom.Margins{Top: 32}, out.ReservedMargins())
	assert.Equal(t, geom.Margins{Top: 32}, e.desktop.lastDelta())
	assert.Equal(t, geom.Box(0, 32, 1920, 1048), bg.Box(), "non-exclusive surfaces see the shrunk area")

	screen, _ := e.desktop.Screen("DP-1")
	assert.Equal(t, geom.Box(0, 32, 1920, 1048), screen.Usable())

	out.OrganiseLayers()
	assert.Equal(t, geom.Margins{}, e.desktop.lastDelta(), "rearranging without changes reserves nothing new")
	assert.Equal(t, geom.Margins{Top: 32}, screen.Reserved())

	out.RemoveLayerSurface(bar)
	out.OrganiseLayers()
	assert.Equal(t, geom.Margins{Top: -32}, e.desktop.lastDelta())
	assert.Equal(t, geom.Margins{}, screen.Reserved())
	assert.Equal(t, geom.Box(0, 0, 1920, 1080), bg.Box())
}

func TestOrganiseLayersOrder(t *testing.T) {
	e := newEnv(t)
	out, _ := e.addOutput(t, "DP-1", 1920, 1080)

	var order []string
	add := func(name string, l layer.Layer, zone int) {
		out.AddLayerSurface(recorder{
			Static: layer.NewStatic(name, layer.State{Layer: l, Anchor: geom.EdgeLeft, ExclusiveZone: zone, DesiredWidth: 10}),
			log:    &order,
		})
	}
	add("bg-strip", layer.Background, 10)
	add("bg", layer.Background, 0)
	add("overlay", layer.Overlay, 0)
	add("top-1", layer.Top, 10)
	add("top-2", layer.Top, 10)
	add("bottom", layer.Bottom, 0)

	out.OrganiseLayers()
	assert.Equal(t, []string{
		"top-1", "top-2", "bg-strip",
		"overlay", "bottom", "bg",
	}, order)
	assert.Equal(t, geom.Margins{Left: 30}, out.ReservedMargins())
}

func TestLowerExclusiveShrinksHigherNonExclusive(t *testing.T) {
	e := newEnv(t)
	out, _ := e.addOutput(t, "DP-1", 1920, 1080)

	strip := layer.NewStatic("strip", layer.State{
		Layer:         layer.Background,
		Anchor:        geom.EdgeBottom | geom.EdgeLeft | geom.EdgeRight,
		ExclusiveZone: 40,
		DesiredHeight: 40,
	})
	osd := layer.NewStatic("osd", layer.State{Layer: layer.Overlay})
	out.AddLayerSurface(osd)
	out.AddLayerSurface(strip)

	out.OrganiseLayers()
	assert.Equal(t, geom.Box(0, 0, 1920, 1040), osd.Box())
	assert.Equal(t, geom.Box(0, 1040, 1920, 40), strip.Box())
}

func TestExclusiveFocus(t *testing.T) {
	e := newEnv(t)
	out, _ := e.addOutput(t, "DP-1", 1920, 1080)

	grab := layer.State{KeyboardInteractivity: layer.KeyboardExclusive}
	s2 := layer.NewStatic("s2", layer.State{Layer: layer.Top, KeyboardInteractivity: layer.KeyboardExclusive})
	s1 := layer.NewStatic("s1", layer.State{Layer: layer.Overlay, KeyboardInteractivity: layer.KeyboardExclusive})
	out.AddLayerSurface(s2)
	out.AddLayerSurface(s1)

	out.OrganiseLayers()
	holder, ok := out.ExclusiveFocus()
	require.True(t, ok)
	assert.Same(t, s1, holder)
	assert.Same(t, s1, e.desktop.Focused())

	// s1 releases its grab, so s2 gets it.
	s1.SetPending(layer.State{Layer: layer.Overlay})
	s1.Commit()
	out.OrganiseLayers()
	holder, _ = out.ExclusiveFocus()
	assert.Same(t, s2, holder)
	assert.Same(t, s2, e.desktop.Focused())

	// s2 moves to the bottom layer while still asking for exclusive
	// focus. It must not keep holding it.
	s2.SetPending(layer.State{Layer: layer.Bottom, KeyboardInteractivity: grab.KeyboardInteractivity})
	s2.Commit()
	out.Relayer(s2)
	_, ok = out.ExclusiveFocus()
	assert.False(t, ok, "holder outside of the overlay and top layers")
	out.OrganiseLayers()
	_, ok = out.ExclusiveFocus()
	assert.False(t, ok)
	assert.Empty(t, out.LayerSurfaces(layer.Top))
	assert.Equal(t, []layer.Surface{s2}, out.LayerSurfaces(layer.Bottom))
}

func TestRelayerKeepsFocus(t *testing.T) {
	tests := []struct {
		to   layer.Layer
		keep bool
	}{
		{layer.Top, true},
		{layer.Overlay, true},
		{layer.Bottom, false},
		{layer.Background, false},
	}

	for _, test := range tests {
		t.Run(test.to.String(), func(t *testing.T) {
			e := newEnv(t)
			out, _ := e.addOutput(t, "DP-1", 1920, 1080)

			lock := layer.NewStatic("lock", layer.State{Layer: layer.Overlay, KeyboardInteractivity: layer.KeyboardExclusive})
			out.AddLayerSurface(lock)
			out.OrganiseLayers()

			lock.SetPending(layer.State{Layer: test.to, KeyboardInteractivity: layer.KeyboardExclusive})
			lock.Commit()
			out.Relayer(lock)

			holder, ok := out.ExclusiveFocus()
			assert.Equal(t, test.keep, ok)
			if test.keep {
				assert.Same(t, lock, holder)
			}
			assert.Equal(t, []layer.Surface{lock}, out.LayerSurfaces(test.to))
		})
	}
}

func TestExclusiveFocusRemoved(t *testing.T) {
	e := newEnv(t)
	out, _ := e.addOutput(t, "DP-1", 1920, 1080)

	lock := layer.NewStatic("lock", layer.State{Layer: layer.Overlay, KeyboardInteractivity: layer.KeyboardExclusive})
	out.AddLayerSurface(lock)
	out.OrganiseLayers()
	_, ok := out.ExclusiveFocus()
	require.True(t, ok)

	assert.True(t, out.RemoveLayerSurface(lock))
	_, ok = out.ExclusiveFocus()
	assert.False(t, ok)
	assert.False(t, out.RemoveLayerSurface(lock))
}

func TestOnDemandIsNotExclusive(t *testing.T) {
	e := newEnv(t)
	out, _ := e.addOutput(t, "DP-1", 1920, 1080)

	out.AddLayerSurface(layer.NewStatic("launcher", layer.State{Layer: layer.Overlay, KeyboardInteractivity: layer.KeyboardOnDemand}))
	out.OrganiseLayers()
	_, ok := out.ExclusiveFocus()
	assert.False(t, ok)
	assert.Nil(t, e.desktop.Focused())
}

// reflowing asks its output to rearrange while being configured, the
// way a client committing new state in response to a configure would.
type reflowing struct {
	*layer.Static
	out    *output.Output
	passes *int
}

func (r reflowing) Configure(full geom.Rect[int], usable *geom.Rect[int]) {
	*r.passes++
	if *r.passes == 1 {
		r.out.OrganiseLayers()
		r.out.OrganiseLayers()
	}
	r.Static.Configure(full, usable)
}

func TestOrganiseLayersCoalesces(t *testing.T) {
	e := newEnv(t)
	out, _ := e.addOutput(t, "DP-1", 1920, 1080)

	var passes int
	out.AddLayerSurface(reflowing{
		Static: layer.NewStatic("panel", layer.State{Layer: layer.Top, Anchor: geom.EdgeTop, ExclusiveZone: 20}),
		out:    out,
		passes: &passes,
	})

	out.OrganiseLayers()
	assert.Equal(t, 2, passes, "nested requests collapse into one follow-up pass")
	assert.Len(t, e.desktop.deltas, 2)
	assert.Equal(t, geom.Margins{}, e.desktop.lastDelta())
	assert.Equal(t, geom.Margins{Top: 20}, out.ReservedMargins())
}

func TestReservedMarginsBounded(t *testing.T) {
	anchors := []geom.Edges{
		geom.EdgeTop,
		geom.EdgeBottom,
		geom.EdgeLeft,
		geom.EdgeRight,
		geom.EdgeTop | geom.EdgeLeft | geom.EdgeRight,
		geom.EdgeLeft | geom.EdgeTop | geom.EdgeBottom,
		geom.EdgeTop | geom.EdgeLeft,
		geom.EdgeAll,
	}

	r := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		e := newEnv(t)
		w, h := 100+r.Intn(2000), 100+r.Intn(2000)
		out, _ := e.addOutput(t, "DP-1", w, h)

		for n := r.Intn(8); n > 0; n-- {
			out.AddLayerSurface(layer.NewStatic("s", layer.State{
				Layer:         layer.Layer(r.Intn(layer.Count)),
				Anchor:        anchors[r.Intn(len(anchors))],
				ExclusiveZone: r.Intn(1500) - 100,
				Margin:        geom.Margins{Top: r.Intn(50), Left: r.Intn(50)},
			}))
		}

		out.OrganiseLayers()
		m := out.ReservedMargins()
		assert.GreaterOrEqual(t, m.Left, 0)
		assert.GreaterOrEqual(t, m.Right, 0)
		assert.GreaterOrEqual(t, m.Top, 0)
		assert.GreaterOrEqual(t, m.Bottom, 0)
		assert.LessOrEqual(t, m.Left+m.Right, w)
		assert.LessOrEqual(t, m.Top+m.Bottom, h)

		out.OrganiseLayers()
		assert.Equal(t, geom.Margins{}, e.desktop.lastDelta())
	}
}
