package runner

import "time"

// Process describes a launched child process.
type Process struct {
	RunID     string    // unique identifier for this launch
	PID       int       // OS process ID
	Argv      []string  // interpreter argv, script path last
	Dir       string    // working directory of the child
	StartedAt time.Time // when the process was started
}
