// Package panels installs the layer surfaces described in the
// configuration onto outputs.
package panels

import (
	"fmt"
	"image/color"
	"io"

	"deedles.dev/strata/desktop"
	"deedles.dev/strata/geom"
	"deedles.dev/strata/internal/config"
	"deedles.dev/strata/internal/headless"
	"deedles.dev/strata/layer"
	"deedles.dev/strata/output"
	"github.com/charmbracelet/log"
)

// Panel is a configured surface that has been added to an output.
type Panel struct {
	Surface *layer.Static
	Color   color.NRGBA
}

// Install adds every panel in cfgs that applies to out. The output's
// layers are not rearranged.
func Install(out *output.Output, cfgs []config.PanelConfig) ([]Panel, error) {
	var panels []Panel
	for i, cfg := range cfgs {
		if !cfg.AppliesTo(out.Name()) {
			continue
		}

		st, err := cfg.State()
		if err != nil {
			return nil, fmt.Errorf("panel %d (%q): %w", i, cfg.Name, err)
		}
		c, err := cfg.PanelColor()
		if err != nil {
			return nil, fmt.Errorf("panel %d (%q): %w", i, cfg.Name, err)
		}

		name := cfg.Name
		if name == "" {
			name = fmt.Sprintf("panel-%d", i)
		}

		s := layer.NewStatic(name, st)
		out.AddLayerSurface(s)
		panels = append(panels, Panel{Surface: s, Color: c})
	}
	return panels, nil
}

// Result is the outcome of arranging a single headless output.
type Result struct {
	Output   geom.Rect[int]
	Reserved geom.Margins
	Usable   geom.Rect[int]
	Panels   []Panel
	Focus    string
}

// DryRun arranges the configured panels on a headless output of the
// given size without touching any real display.
func DryRun(cfg *config.Config, name string, width, height int, logger *log.Logger) (*Result, error) {
	d := desktop.New(logger)
	reg := output.NewRegistry(output.Deps{
		Layout:  new(headless.Layout),
		Scene:   new(headless.Scene),
		Focus:   d,
		Desktop: d,
		Logger:  logger,
	})

	out, err := reg.Add(headless.NewOutput(name, width, height))
	if err != nil {
		return nil, err
	}
	screen := d.AddScreen(name, out.Geometry())

	panels, err := Install(out, cfg.Panels)
	if err != nil {
		return nil, err
	}
	out.OrganiseLayers()

	r := Result{
		Output:   out.Geometry(),
		Reserved: out.ReservedMargins(),
		Usable:   screen.Usable(),
		Panels:   panels,
	}
	if s, ok := out.ExclusiveFocus(); ok {
		if st, ok := s.(*layer.Static); ok {
			r.Focus = st.Name()
		}
	}
	return &r, nil
}

func (r *Result) Print(w io.Writer) {
	fmt.Fprintf(w, "output    %v\n", r.Output)
	fmt.Fprintf(w, "reserved  %v\n", r.Reserved)
	fmt.Fprintf(w, "usable    %v\n", r.Usable)
	for _, p := range r.Panels {
		fmt.Fprintf(w, "panel     %-12s %-10v %v\n", p.Surface.Name(), p.Surface.Layer(), p.Surface.Box())
	}
	if r.Focus != "" {
		fmt.Fprintf(w, "focus     %v\n", r.Focus)
	}
}
