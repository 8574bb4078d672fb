package main

import (
	"os"

	"deedles.dev/strata/internal/config"
	"deedles.dev/strata/internal/logging"
	"deedles.dev/strata/internal/panels"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

type options struct {
	configPath string
	verbose    bool
}

func (opts *options) load() (*config.Config, *log.Logger, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, nil, err
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, nil, err
	}
	if opts.verbose {
		level = log.DebugLevel
	}

	return cfg, logging.New(os.Stderr, level), nil
}

func newRootCmd() *cobra.Command {
	var opts options

	root := &cobra.Command{
		Use:          "strata",
		Short:        "A Wayland compositor that arranges layer-shell surfaces",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}

			server, err := NewServer(cfg, logger, opts.verbose)
			if err != nil {
				return err
			}
			return server.Run()
		},
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to the configuration file")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newArrangeCmd(&opts))
	return root
}

func newArrangeCmd(opts *options) *cobra.Command {
	var (
		name          string
		width, height int
	)

	cmd := &cobra.Command{
		Use:   "arrange",
		Short: "Arrange the configured panels on a headless output and print the result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}

			r, err := panels.DryRun(cfg, name, width, height, logger)
			if err != nil {
				return err
			}
			r.Print(cmd.OutOrStdout())
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "HEADLESS-1", "name of the output")
	cmd.Flags().IntVar(&width, "width", 1920, "effective width of the output")
	cmd.Flags().IntVar(&height, "height", 1080, "effective height of the output")

	return cmd
}
