// Package background re-runs a notebook's code, up to the invoking cell,
// in a separate process.
//
// The notebook is read from disk, its code cells are concatenated into a
// script placed next to the notebook, and an interpreter is started on
// that script without waiting for it.
package background

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/deixis/nbtools/internal/identity"
	"github.com/deixis/nbtools/internal/notebook"
	"github.com/deixis/nbtools/internal/report"
	"github.com/deixis/nbtools/internal/runner"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ScriptPattern is the os.CreateTemp pattern for the handoff script.
const ScriptPattern = "nbtools-*.py"

// DefaultInterpreter is used when Runner.Interpreter is empty.
var DefaultInterpreter = []string{"python"}

// Launcher starts a process without waiting for it.
// Implemented by runner.Launcher.
type Launcher interface {
	Launch(argv []string, dir string) (*runner.Process, error)
}

// Runner holds the dependencies of a background run.
type Runner struct {
	Resolver    identity.Resolver // used when Run is given no notebook path
	Launcher    Launcher
	Store       report.Store // optional; receives one record per launch attempt
	Directives  Directives
	Interpreter []string      // argv prefix; the script path is appended
	GracePeriod time.Duration // delay between launch and script removal
	Logger      *zerolog.Logger
}

// Result describes a started background run.
type Result struct {
	RunID    string
	Notebook string
	Script   string // removed by the time Run returns
	PID      int
	Argv     []string
	Reconstruction
}

// Preview is the code a run would execute.
type Preview struct {
	Notebook string
	Reconstruction
}

// Run rebuilds the notebook's code and starts it in a detached process.
// An empty notebookPath is resolved through r.Resolver.
//
// Errors are *IdentityResolutionError, *DocumentReadError or *LaunchError,
// possibly wrapped; failures creating the script are returned as-is.
func (r *Runner) Run(ctx context.Context, notebookPath string) (*Result, error) {
	p, err := r.Preview(ctx, notebookPath)
	if err != nil {
		return nil, err
	}
	log := r.logger().With().Str("notebook", p.Notebook).Logger()
	if !p.Terminated {
		log.Warn().Msgf("no %s%s cell in the saved notebook; running every code cell", r.directives().CellPrefix, r.directives().Terminal)
	}

	// Relative paths in the notebook's code resolve against its directory,
	// so the script is written, and run, there.
	dir := filepath.Dir(p.Notebook)
	script, err := writeScript(dir, p.Source)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := os.Remove(script); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Warn().Err(err).Str("script", script).Msg("removing script")
		}
	}()

	argv := append(append([]string(nil), r.interpreter()...), script)
	launch := &report.Launch{
		Notebook:    p.Notebook,
		Script:      script,
		Interpreter: argv,
		Dir:         dir,
		Cells:       p.Cells,
		Terminated:  p.Terminated,
		SourceBytes: len(p.Source),
	}

	proc, err := r.Launcher.Launch(argv, dir)
	if err != nil {
		launch.ID = uuid.New().String()
		launch.StartedAt = time.Now()
		launch.Error = err.Error()
		r.record(log, launch)
		return nil, &LaunchError{Argv: argv, Err: err}
	}
	launch.ID = proc.RunID
	launch.PID = proc.PID
	launch.StartedAt = proc.StartedAt
	r.record(log, launch)

	log.Info().
		Str("run_id", proc.RunID).
		Int("pid", proc.PID).
		Int("cells", p.Cells).
		Msg("background run started")

	// Known race: the child opens the script by path at some point after
	// Start returns. Waiting makes it unlikely that the deferred removal
	// wins, but nothing guarantees the child has opened the file by then.
	if r.GracePeriod > 0 {
		time.Sleep(r.GracePeriod)
	}

	return &Result{
		RunID:          proc.RunID,
		Notebook:       p.Notebook,
		Script:         script,
		PID:            proc.PID,
		Argv:           argv,
		Reconstruction: p.Reconstruction,
	}, nil
}

// Preview resolves and reads the notebook and returns the code Run would
// execute, without writing or starting anything.
func (r *Runner) Preview(ctx context.Context, notebookPath string) (*Preview, error) {
	path, err := r.resolve(ctx, notebookPath)
	if err != nil {
		return nil, err
	}
	doc, err := notebook.Load(path)
	if err != nil {
		return nil, err
	}
	return &Preview{
		Notebook:       path,
		Reconstruction: Reconstruct(doc, r.directives()),
	}, nil
}

func (r *Runner) resolve(ctx context.Context, notebookPath string) (string, error) {
	if notebookPath != "" {
		return filepath.Abs(notebookPath)
	}
	if r.Resolver == nil {
		return "", &IdentityResolutionError{Err: identity.ErrUnknown}
	}
	path, err := r.Resolver.Resolve(ctx)
	if err != nil {
		return "", &IdentityResolutionError{Err: err}
	}
	return path, nil
}

func writeScript(dir, source string) (string, error) {
	f, err := os.CreateTemp(dir, ScriptPattern)
	if err != nil {
		return "", fmt.Errorf("creating script: %w", err)
	}
	_, werr := f.WriteString(source)
	cerr := f.Close()
	if err := errors.Join(werr, cerr); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("writing script: %w", err)
	}
	return f.Name(), nil
}

func (r *Runner) record(log zerolog.Logger, launch *report.Launch) {
	if r.Store == nil {
		return
	}
	if err := r.Store.Save(launch); err != nil {
		log.Warn().Err(err).Str("run_id", launch.ID).Msg("recording launch")
	}
}

func (r *Runner) directives() Directives {
	if r.Directives == (Directives{}) {
		return DefaultDirectives
	}
	return r.Directives
}

func (r *Runner) interpreter() []string {
	if len(r.Interpreter) == 0 {
		return DefaultInterpreter
	}
	return r.Interpreter
}

func (r *Runner) logger() *zerolog.Logger {
	if r.Logger == nil {
		nop := zerolog.Nop()
		return &nop
	}
	return r.Logger
}
