// Package identity determines which notebook document the caller is
// running in.
package identity

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnknown is returned when a resolver has no information about the
// active notebook.
var ErrUnknown = errors.New("active notebook unknown")

// Resolver maps the live session to the absolute path of its notebook.
type Resolver interface {
	Resolve(ctx context.Context) (string, error)
}

// Path always resolves to a fixed notebook path.
type Path string

// Resolve returns the absolute form of p.
func (p Path) Resolve(context.Context) (string, error) {
	if p == "" {
		return "", ErrUnknown
	}
	return filepath.Abs(string(p))
}

// Env reads the notebook path from an environment variable. jupyter_server
// sets JPY_SESSION_NAME for every kernel it starts.
type Env struct {
	Var     string
	RootDir string // joined with relative values; defaults to the working directory
}

// Resolve reads e.Var.
func (e Env) Resolve(context.Context) (string, error) {
	v := strings.TrimSpace(os.Getenv(e.Var))
	if v == "" {
		return "", fmt.Errorf("%s not set: %w", e.Var, ErrUnknown)
	}
	if !filepath.IsAbs(v) && e.RootDir != "" {
		v = filepath.Join(e.RootDir, v)
	}
	return filepath.Abs(v)
}

// Chain tries each resolver in order and returns the first success.
type Chain []Resolver

// Resolve returns the first path found, or an error joining every failure.
func (c Chain) Resolve(ctx context.Context) (string, error) {
	if len(c) == 0 {
		return "", ErrUnknown
	}
	var errs []error
	for _, r := range c {
		path, err := r.Resolve(ctx)
		if err == nil {
			return path, nil
		}
		errs = append(errs, err)
	}
	return "", errors.Join(errs...)
}
