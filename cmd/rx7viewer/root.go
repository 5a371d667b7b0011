package main

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-viewer/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// options holds the command line flags. Flags override the config file.
type options struct {
	configPath string
	stock      string
	edit       string
	initial    string
	logLevel   string
	watch      bool
	profile    bool
	software   bool
}

func newRootCommand() *cobra.Command {
	return newCommand(&options{})
}

func newCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "rx7viewer",
		Short:        "Interactive viewer for the RX-7 stock and edited models",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, opts)
		},
	}
	opts.bind(cmd.Flags())
	return cmd
}

func (o *options) bind(f *pflag.FlagSet) {
	f.StringVarP(&o.configPath, "config", "c", "", "path to a TOML config file")
	f.StringVar(&o.stock, "stock", "", "stock model asset (.glb or .gltf)")
	f.StringVar(&o.edit, "edit", "", "edited model asset (.glb or .gltf)")
	f.StringVar(&o.initial, "initial", "", `model shown first: "stock" or "edit"`)
	f.StringVar(&o.logLevel, "log-level", "", "debug, info, warn or error")
	f.BoolVar(&o.watch, "watch", false, "reload the shown model when its file changes")
	f.BoolVar(&o.profile, "profile", false, "log frame statistics every second (needs --log-level debug)")
	f.BoolVar(&o.software, "software", false, "force the software (fallback) GPU adapter")
}

// load reads the config file and applies the flags that were set on the command line.
func (o *options) load(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}

	if o.stock != "" {
		cfg.Assets.Stock = o.stock
	}
	if o.edit != "" {
		cfg.Assets.Edit = o.edit
	}
	if o.initial != "" {
		cfg.Assets.Initial = o.initial
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if cmd.Flags().Changed("watch") {
		cfg.Watch.Enabled = o.watch
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("flags: %w", err)
	}
	return cfg, nil
}
