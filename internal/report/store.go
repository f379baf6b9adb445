// Package report records background launches so they can be looked up
// after the invoking command has returned.
package report

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNotFound is returned when no launch exists for a run ID.
var ErrNotFound = errors.New("launch not found")

// Store persists and retrieves launch records.
type Store interface {
	Save(launch *Launch) error
	Load(runID string) (*Launch, error)
	// List returns up to limit launches, newest first. A limit <= 0
	// returns all of them.
	List(limit int) ([]*Launch, error)
}

// Launch is the record of one background run.
type Launch struct {
	ID          string    `json:"id"`
	Notebook    string    `json:"notebook"`
	Script      string    `json:"script"`
	Interpreter []string  `json:"interpreter"`
	Dir         string    `json:"dir"`
	PID         int       `json:"pid,omitempty"`
	Cells       int       `json:"cells"`
	Terminated  bool      `json:"terminated"` // the invoking directive was found
	SourceBytes int       `json:"source_bytes"`
	StartedAt   time.Time `json:"started_at"`
	Error       string    `json:"error,omitempty"`
}

// Failed reports whether the launch did not start a process.
func (l *Launch) Failed() bool {
	return l.Error != ""
}

// Summary renders a one-line description of the launch.
func (l *Launch) Summary() string {
	status := fmt.Sprintf("pid %d", l.PID)
	if l.Failed() {
		status = "failed: " + l.Error
	}
	return fmt.Sprintf("%s  %s  %s  (%s)", l.ID, l.StartedAt.Format(time.DateTime), l.Notebook, status)
}

// Describe renders a multi-line view of the launch.
func (l *Launch) Describe() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Run: %s\n", l.ID)
	fmt.Fprintf(&b, "Notebook: %s\n", l.Notebook)
	fmt.Fprintf(&b, "Started: %s\n", l.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "Command: %s\n", strings.Join(l.Interpreter, " "))
	fmt.Fprintf(&b, "Directory: %s\n", l.Dir)
	fmt.Fprintf(&b, "Cells: %d (%d bytes)\n", l.Cells, l.SourceBytes)
	if !l.Terminated {
		fmt.Fprintln(&b, "Note: directive cell not found in the saved notebook; all code cells were included.")
	}
	if l.Failed() {
		fmt.Fprintf(&b, "Status: failed: %s\n", l.Error)
	} else {
		fmt.Fprintf(&b, "Status: started (pid %d)\n", l.PID)
	}
	return b.String()
}
