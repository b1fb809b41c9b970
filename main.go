// Command geoshell renders head-model scripts into geodesic shell meshes.
//
//	geoshell [flags] script.shells
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/chazu/geoshell/pkg/config"
	"github.com/chazu/geoshell/pkg/logging"
	"github.com/chazu/geoshell/pkg/watch"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stderr))
}

// options are the command line overrides applied on top of the config file.
type options struct {
	configPath string
	outputDir  string
	formats    string
	kernel     string
	frequency  int
	watch      bool
	verbose    bool
	script     string
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("geoshell", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.configPath, "config", "", "TOML configuration file")
	fs.StringVar(&o.outputDir, "out", "", "output directory (overrides output_dir)")
	fs.StringVar(&o.formats, "format", "", "comma-separated output formats: 3mf, stl, json")
	fs.StringVar(&o.kernel, "kernel", "", "sphere kernel: geodesic or sdfx")
	fs.IntVar(&o.frequency, "frequency", 0, "default subdivision frequency")
	fs.BoolVar(&o.watch, "watch", false, "re-render whenever the script changes")
	fs.BoolVar(&o.verbose, "v", false, "debug logging")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: geoshell [flags] script.shells")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return o, errors.New("expected exactly one script")
	}
	o.script = fs.Arg(0)
	return o, nil
}

// loadConfig reads the config file, if any, and applies flag overrides.
func loadConfig(o options) (config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		if cfg, err = config.Load(o.configPath); err != nil {
			return cfg, err
		}
	}
	if o.outputDir != "" {
		cfg.OutputDir = o.outputDir
	}
	if o.formats != "" {
		cfg.Formats = strings.Split(o.formats, ",")
		for i, f := range cfg.Formats {
			cfg.Formats[i] = strings.ToLower(strings.TrimSpace(f))
		}
	}
	if o.kernel != "" {
		cfg.Kernel = o.kernel
	}
	if o.frequency != 0 {
		cfg.DefaultFrequency = o.frequency
	}
	if o.verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, cfg.Validate()
}

func run(ctx context.Context, args []string, stderr io.Writer) int {
	o, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, err := loadConfig(o)
	if err != nil {
		fmt.Fprintf(stderr, "geoshell: %v\n", err)
		return 2
	}
	if err := logging.SetLevel(cfg.LogLevel); err != nil {
		fmt.Fprintf(stderr, "geoshell: %v\n", err)
		return 2
	}

	app := NewApp(cfg)
	err = app.RunFile(ctx, o.script)
	if !o.watch {
		if err != nil {
			logging.Error("%v", err)
			return 1
		}
		return 0
	}
	if err != nil {
		logging.Warn("%v", err)
	}

	logging.Info("watching %s", o.script)
	w := &watch.Watcher{
		Path: o.script,
		OnChange: func(path string) {
			if err := app.RunFile(ctx, path); err != nil {
				logging.Warn("%v", err)
			}
		},
	}
	if err := w.Run(ctx); err != nil {
		logging.Error("%v", err)
		return 1
	}
	return 0
}
