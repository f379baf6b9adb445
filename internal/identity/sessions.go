package identity

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"resty.dev/v3"
)

// EnvConnectionFile names the variable the sessions resolver reads the
// kernel connection file from when no kernel ID is configured.
const EnvConnectionFile = "JPY_CONNECTION_FILE"

var kernelFilePattern = regexp.MustCompile(`kernel-([0-9A-Za-z-]+)\.json$`)

// KernelIDFromConnectionFile extracts the kernel ID from a connection file
// path such as /run/user/1000/jupyter/runtime/kernel-<id>.json.
func KernelIDFromConnectionFile(path string) (string, bool) {
	m := kernelFilePattern.FindStringSubmatch(filepath.Base(path))
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Sessions asks a running Jupyter server which notebook owns a kernel.
type Sessions struct {
	URL      string // server base URL, e.g. http://localhost:8888
	Token    string
	RootDir  string // server root; session paths are relative to it
	KernelID string // when empty, parsed from $JPY_CONNECTION_FILE
	Timeout  time.Duration
}

type session struct {
	ID     string `json:"id"`
	Path   string `json:"path"`
	Type   string `json:"type"`
	Kernel struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"kernel"`
	Notebook struct {
		Path string `json:"path"`
	} `json:"notebook"`
}

// Resolve lists the server's sessions and returns the notebook path of
// the one running s.KernelID.
func (s *Sessions) Resolve(ctx context.Context) (string, error) {
	if s.URL == "" {
		return "", fmt.Errorf("jupyter url not configured: %w", ErrUnknown)
	}
	kernelID := s.KernelID
	if kernelID == "" {
		id, ok := KernelIDFromConnectionFile(os.Getenv(EnvConnectionFile))
		if !ok {
			return "", fmt.Errorf("kernel id not known: %w", ErrUnknown)
		}
		kernelID = id
	}

	timeout := s.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(s.URL, "/")).
		SetTimeout(timeout)
	defer client.Close()

	var sessions []session
	req := client.R().
		SetContext(ctx).
		SetResult(&sessions)
	if s.Token != "" {
		req.SetHeader("Authorization", "token "+s.Token)
	}
	res, err := req.Get("/api/sessions")
	if err != nil {
		return "", fmt.Errorf("listing jupyter sessions: %w", err)
	}
	if res.IsError() {
		return "", fmt.Errorf("listing jupyter sessions: %s", res.Status())
	}

	for _, sess := range sessions {
		if sess.Kernel.ID != kernelID {
			continue
		}
		path := sess.Path
		if path == "" {
			path = sess.Notebook.Path
		}
		if path == "" {
			break
		}
		if !filepath.IsAbs(path) {
			path = filepath.Join(s.RootDir, filepath.FromSlash(path))
		}
		return filepath.Abs(path)
	}
	return "", fmt.Errorf("no session for kernel %s: %w", kernelID, ErrUnknown)
}
