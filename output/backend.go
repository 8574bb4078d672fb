package output

import (
	"time"

	"deedles.dev/strata/geom"
	"deedles.dev/strata/layer"
)

// Handle is a display output as provided by the backend.
type Handle interface {
	Name() string

	InitRender() error
	SetPreferredMode()
	Enable()
	Commit() error

	// EffectiveResolution is the size of the output after its
	// transform and scale have been applied.
	EffectiveResolution() (width, height int)

	OnDestroy(func()) Listener
	OnFrame(func()) Listener
}

// Listener is a subscription to a backend signal.
type Listener interface {
	Destroy()
}

// Layout is the global arrangement of outputs.
type Layout interface {
	// Width is the current total width of the layout.
	Width() int

	Add(h Handle, x, y int)
}

type Scene interface {
	CreateSceneOutput(h Handle) (SceneOutput, error)
}

// SceneOutput is the part of the scene graph that is displayed on a
// single output.
type SceneOutput interface {
	// Commit attempts to present the current scene. An error means
	// that the frame could not be committed this time around.
	Commit() error

	// SendFrameDone notifies clients waiting for a frame callback.
	SendFrameDone(t time.Time)
}

type Clock interface {
	Now() time.Time
}

// MonotonicClock is a Clock backed by time.Now, the result of which
// carries a monotonic reading.
type MonotonicClock struct{}

func (MonotonicClock) Now() time.Time {
	return time.Now()
}

// FocusRouter moves keyboard focus.
type FocusRouter interface {
	FocusWindow(s layer.Surface)
}

// Screen is a logical desktop screen.
type Screen interface {
	Bounds() geom.Rect[int]
}

// Desktop is the window manager's view of the screens and the space
// reserved on them.
type Desktop interface {
	Screens() []Screen
	CurrentScreen() Screen

	// ReserveSpace adjusts the space reserved on s by delta, which
	// may be negative.
	ReserveSpace(delta geom.Margins, s Screen)
}
