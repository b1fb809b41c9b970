package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chazu/geoshell/pkg/config"
	"github.com/chazu/geoshell/pkg/engine"
	"github.com/chazu/geoshell/pkg/kernel"
	"github.com/chazu/geoshell/pkg/kernel/geodesic"
	"github.com/chazu/geoshell/pkg/kernel/sdfx"
	"github.com/chazu/geoshell/pkg/logging"
	"github.com/chazu/geoshell/pkg/quality"
	"github.com/chazu/geoshell/pkg/scene"
	"github.com/chazu/geoshell/pkg/sink"
	"github.com/chazu/geoshell/pkg/tessellate"
	"github.com/google/uuid"
)

// ErrScript is returned by RunFile when a script fails to evaluate,
// validate or tessellate.
var ErrScript = errors.New("script failed")

// App ties the script engine, a geometry kernel and the output sinks
// together.
type App struct {
	cfg    config.Config
	engine *engine.Engine
	kernel kernel.Kernel
}

// EvalErrorData is a JSON-serializable eval error.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result of evaluating one script.
type EvalResult struct {
	Meshes   []sink.MeshData `json:"meshes"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`

	// Surfaces are the tessellated meshes behind Meshes, in the same order.
	Surfaces []*kernel.Mesh `json:"-"`
}

// OK reports whether evaluation produced no errors.
func (r EvalResult) OK() bool {
	return len(r.Errors) == 0
}

// NewApp creates an App for cfg.
func NewApp(cfg config.Config) *App {
	eng := engine.NewEngine()
	eng.SetDefaultFrequency(cfg.DefaultFrequency)
	return &App{
		cfg:    cfg,
		engine: eng,
		kernel: newKernel(cfg),
	}
}

func newKernel(cfg config.Config) kernel.Kernel {
	if cfg.Kernel == config.KernelSdfx {
		return sdfx.New(cfg.SdfxCells, cfg.WeldPrecision)
	}
	return &geodesic.Kernel{WeldPrecision: cfg.WeldPrecision}
}

// Evaluate takes script source and returns mesh data + errors.
func (a *App) Evaluate(source string) EvalResult {
	result := EvalResult{
		Meshes:   []sink.MeshData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}

	// Step 1: Evaluate the script into a scene.
	s, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		logging.Error("evaluate fatal error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}

	// Step 2: Convert eval errors.
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return result
	}

	// Step 3: Validate the scene. Warnings are reported but do not stop the run.
	vr := scene.ValidateAll(s)
	for _, w := range vr.Warnings {
		result.Warnings = append(result.Warnings, EvalErrorData{Message: w.Message})
	}
	if !vr.OK() {
		for _, e := range vr.Errors {
			result.Errors = append(result.Errors, EvalErrorData{Message: e.Message})
		}
		return result
	}

	// Step 4: Tessellate the scene into triangle meshes.
	meshes, err := tessellate.Tessellate(s, a.kernel)
	if err != nil {
		logging.Error("tessellate error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{
			Message: "tessellation failed: " + err.Error(),
		})
		return result
	}

	// Step 5: Flatten into the viewer format.
	js := sink.NewJSON("")
	for _, m := range meshes {
		if err := sink.Emit(js, m); err != nil {
			result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
			return result
		}
	}
	result.Meshes = js.Meshes
	result.Surfaces = meshes

	return result
}

// closer is implemented by sinks that write their output on Close.
type closer interface {
	Close() error
}

// Export writes meshes in every configured format under the output
// directory, naming the files after base. It returns the written paths.
func (a *App) Export(meshes []*kernel.Mesh, base string) ([]string, error) {
	var written []string
	for _, format := range a.cfg.Formats {
		var (
			s    sink.Sink
			path string
		)
		switch format {
		case config.Format3MF:
			path = filepath.Join(a.cfg.OutputDir, base+".3mf")
			s = sink.NewThreeMF(path)
		case config.FormatJSON:
			path = filepath.Join(a.cfg.OutputDir, base+".json")
			s = sink.NewJSON(path)
		case config.FormatSTL:
			stl, err := sink.NewSTL(filepath.Join(a.cfg.OutputDir, base))
			if err != nil {
				return written, fmt.Errorf("export: %w", err)
			}
			s = stl
		default:
			return written, fmt.Errorf("export: unknown format %q", format)
		}

		for _, m := range meshes {
			if err := sink.Emit(s, m); err != nil {
				return written, fmt.Errorf("export %s: %w", format, err)
			}
		}
		if c, ok := s.(closer); ok {
			if err := c.Close(); err != nil {
				return written, fmt.Errorf("export %s: %w", format, err)
			}
		}

		switch v := s.(type) {
		case *sink.STL:
			written = append(written, v.Paths...)
		case *sink.ThreeMF:
			if v.Objects() > 0 {
				written = append(written, path)
			}
		default:
			written = append(written, path)
		}
	}
	return written, nil
}

// RunFile evaluates the script at path, logs a quality report for every
// surface and exports the result.
func (a *App) RunFile(ctx context.Context, path string) error {
	log := logging.With("run", uuid.NewString()[:8], "script", filepath.Base(path))

	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read script: %w", err)
	}

	res := a.Evaluate(string(source))
	for _, w := range res.Warnings {
		log.Warn(w.Message)
	}
	if !res.OK() {
		for _, e := range res.Errors {
			if e.Line > 0 {
				log.Error(e.Message, "line", e.Line)
			} else {
				log.Error(e.Message)
			}
		}
		return fmt.Errorf("%s: %d error(s): %w", path, len(res.Errors), ErrScript)
	}

	for _, m := range res.Surfaces {
		report, err := quality.Analyze(m)
		if err != nil {
			log.Warn("quality report failed", "surface", m.Name, "err", err)
			continue
		}
		log.Info(report.String())
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	written, err := a.Export(res.Surfaces, base)
	if err != nil {
		return err
	}
	for _, p := range written {
		log.Info("wrote", "path", p)
	}
	return nil
}
