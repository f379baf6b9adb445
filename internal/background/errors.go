package background

import (
	"fmt"
	"strings"

	"github.com/deixis/nbtools/internal/notebook"
)

// DocumentReadError reports a notebook that could not be read or decoded.
// Nothing has been written or started when it is returned.
type DocumentReadError = notebook.DocumentReadError

// IdentityResolutionError reports that the active notebook could not be
// determined.
type IdentityResolutionError struct {
	Err error
}

func (e *IdentityResolutionError) Error() string {
	return fmt.Sprintf("cannot determine the active notebook: %v", e.Err)
}

func (e *IdentityResolutionError) Unwrap() error { return e.Err }

// LaunchError reports that the interpreter process could not be started.
type LaunchError struct {
	Argv []string
	Err  error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("launching %s: %v", strings.Join(e.Argv, " "), e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }
