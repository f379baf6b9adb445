// Package runner launches detached child processes and locates the
// interpreter used to run them.
package runner

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Launcher starts commands without waiting for them. Output is not
// captured: Stdout and Stderr are handed to the child as-is, and nil
// connects the stream to the null device.
type Launcher struct {
	Stdout io.Writer
	Stderr io.Writer
}

// Launch starts argv in dir and returns as soon as the process exists.
// The first element of argv is resolved via PATH. The child is reaped in
// the background; its exit status is discarded.
func (l *Launcher) Launch(argv []string, dir string) (*Process, error) {
	if len(argv) == 0 {
		return nil, fmt.Errorf("empty argv")
	}
	if dir != "" {
		info, err := os.Stat(dir)
		if err != nil {
			return nil, fmt.Errorf("working directory: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("working directory %q is not a directory", dir)
		}
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = dir
	cmd.Stdout = l.Stdout
	cmd.Stderr = l.Stderr
	detach(cmd)

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting %s: %w", argv[0], err)
	}

	go func() {
		_ = cmd.Wait()
	}()

	return &Process{
		RunID:     uuid.New().String(),
		PID:       cmd.Process.Pid,
		Argv:      append([]string(nil), argv...),
		Dir:       dir,
		StartedAt: time.Now(),
	}, nil
}

// ErrInterpreterNotFound is returned when none of the candidate
// interpreters can be found.
var ErrInterpreterNotFound = errors.New("no interpreter found")

// ResolveInterpreter returns the path of the first candidate that exists.
// Bare names are looked up on PATH; paths containing a separator are
// checked directly.
func ResolveInterpreter(candidates ...string) (string, error) {
	for _, name := range candidates {
		if name == "" {
			continue
		}
		if filepath.Base(name) != name {
			if info, err := os.Stat(name); err == nil && !info.IsDir() {
				return name, nil
			}
			continue
		}
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w (tried %v)", ErrInterpreterNotFound, candidates)
}
