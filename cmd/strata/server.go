package main

import (
	"fmt"
	"os"

	"deedles.dev/strata/desktop"
	"deedles.dev/strata/internal/config"
	"deedles.dev/strata/internal/panels"
	"deedles.dev/strata/internal/wlrbackend"
	"deedles.dev/strata/layer"
	"deedles.dev/strata/output"
	"deedles.dev/wlr"
	"github.com/charmbracelet/log"
)

// compositorVersion is the wl_compositor version advertised to
// clients.
const compositorVersion = 5

type Server struct {
	cfg    *config.Config
	logger *log.Logger

	display      wlr.Display
	backend      wlr.Backend
	renderer     wlr.Renderer
	allocator    wlr.Allocator
	outputLayout wlr.OutputLayout

	scene   *wlrbackend.Scene
	desktop *desktop.Desktop
	outputs *output.Registry

	newOutput wlr.Listener
}

func NewServer(cfg *config.Config, logger *log.Logger, verbose bool) (*Server, error) {
	bg, err := config.ParseColor(cfg.Output.Background)
	if err != nil {
		return nil, fmt.Errorf("output background: %w", err)
	}

	wlrLogger := logger.WithPrefix("wlroots")
	onLog := func(importance wlr.LogImportance, msg string) {
		switch importance {
		case wlr.Error:
			wlrLogger.Error(msg)
		case wlr.Info:
			wlrLogger.Info(msg)
		default:
			wlrLogger.Debug(msg)
		}
	}
	if verbose {
		wlr.InitLog(wlr.Debug, onLog)
	} else {
		wlr.InitLog(wlr.Error, onLog)
	}

	server := Server{
		cfg:    cfg,
		logger: logger,
	}

	server.display = wlr.CreateDisplay()
	server.backend = wlr.AutocreateBackend(server.display)
	server.renderer = wlr.AutocreateRenderer(server.backend)
	server.renderer.InitWLDisplay(server.display)
	server.allocator = wlr.AutocreateAllocator(server.backend, server.renderer)
	wlr.CreateCompositor(server.display, compositorVersion, server.renderer)
	server.outputLayout = wlr.CreateOutputLayout()

	server.scene = wlrbackend.NewScene(server.renderer, bg)
	server.desktop = desktop.New(logger.With("component", "desktop"))
	server.desktop.OnFocus = server.onFocus
	server.outputs = output.NewRegistry(output.Deps{
		Layout:  wlrbackend.NewLayout(server.outputLayout),
		Scene:   server.scene,
		Focus:   server.desktop,
		Desktop: server.desktop,
		Logger:  logger,
	})

	server.newOutput = server.backend.OnNewOutput(server.onNewOutput)

	return &server, nil
}

func (server *Server) Run() error {
	err := server.backend.Start()
	if err != nil {
		return fmt.Errorf("start backend: %w", err)
	}

	socket, err := server.display.AddSocketAuto()
	if err != nil {
		return fmt.Errorf("add socket: %w", err)
	}
	err = os.Setenv("WAYLAND_DISPLAY", socket)
	if err != nil {
		return err
	}

	server.logger.Info("running", "WAYLAND_DISPLAY", socket)
	server.display.Run()

	server.newOutput.Destroy()
	server.display.Destroy()
	return nil
}

func (server *Server) onNewOutput(wout wlr.Output) {
	h := wlrbackend.NewOutput(wout, server.allocator, server.renderer)
	out, err := server.outputs.Add(h)
	if err != nil {
		server.logger.Error("new output", "name", wout.Name(), "err", err)
		return
	}
	wout.CreateGlobal()
	server.desktop.AddScreen(out.Name(), out.Geometry())

	// The registry's own destroy listener runs first, so by now the
	// output is already gone from it.
	var destroy output.Listener
	destroy = h.OnDestroy(func() {
		destroy.Destroy()
		server.scene.Remove(h)
		server.desktop.RemoveScreen(out.Name())
	})

	installed, err := panels.Install(out, server.cfg.Panels)
	if err != nil {
		server.logger.Error("install panels", "output", out.Name(), "err", err)
		return
	}
	if so, ok := server.scene.SceneOutput(h); ok {
		for _, p := range installed {
			so.AddPanel(p.Surface, p.Color)
		}
	}

	out.OrganiseLayers()
}

func (server *Server) onFocus(s layer.Surface) {
	if st, ok := s.(*layer.Static); ok {
		server.logger.Debug("exclusive focus", "surface", st.Name())
	}
}
