package output

import (
	"errors"
	"fmt"
	"slices"

	"deedles.dev/strata/geom"
	"deedles.dev/strata/internal/util"
	"github.com/charmbracelet/log"
)

var ErrDuplicate = errors.New("output already registered")

// Deps are the collaborators shared by every output in a Registry.
type Deps struct {
	Layout  Layout
	Scene   Scene
	Clock   Clock
	Focus   FocusRouter
	Desktop Desktop
	Logger  *log.Logger
}

// Registry owns the outputs of a compositor and maps backend handles
// back to them.
type Registry struct {
	deps Deps

	outputs  []*Output
	byHandle map[Handle]*Output
}

func NewRegistry(deps Deps) *Registry {
	if deps.Clock == nil {
		deps.Clock = MonotonicClock{}
	}
	if deps.Logger == nil {
		deps.Logger = log.Default()
	}

	return &Registry{
		deps:     deps,
		byHandle: make(map[Handle]*Output),
	}
}

// Add brings up a newly reported backend output, places it at the
// right edge of the layout, and registers it. Backend failures are
// returned and leave nothing registered.
func (r *Registry) Add(h Handle) (*Output, error) {
	if _, ok := r.byHandle[h]; ok {
		return nil, fmt.Errorf("%w: %v", ErrDuplicate, h.Name())
	}

	out := &Output{
		reg:    r,
		handle: h,
		logger: r.deps.Logger.With("output", h.Name()),
	}
	err := out.init()
	if err != nil {
		out.releaseListeners()
		return nil, fmt.Errorf("create output %v: %w", h.Name(), err)
	}

	r.outputs = append(r.outputs, out)
	r.byHandle[h] = out

	out.logger.Info("output added", "geometry", out.Geometry())
	return out, nil
}

func (r *Registry) remove(out *Output) {
	i := slices.Index(r.outputs, out)
	if i < 0 {
		return
	}

	r.outputs = slices.Delete(r.outputs, i, i+1)
	delete(r.byHandle, out.handle)
}

// Lookup returns the output that was created for h.
func (r *Registry) Lookup(h Handle) (*Output, bool) {
	out, ok := r.byHandle[h]
	return out, ok
}

// Outputs returns the registered outputs in the order that they were
// added.
func (r *Registry) Outputs() []*Output {
	return slices.Clone(r.outputs)
}

func (r *Registry) Len() int {
	return len(r.outputs)
}

// OutputAt returns the output whose geometry contains p in global
// layout coordinates.
func (r *Registry) OutputAt(p geom.Point[int]) (*Output, bool) {
	return util.FindFunc(r.outputs, func(out *Output) bool {
		return p.In(out.Geometry())
	})
}
