package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/deixis/nbtools/internal/background"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type notebookParams struct {
	Notebook string `json:"notebook,omitempty" jsonschema:"path of the .ipynb file, absolute or relative to the client root. Defaults to the active notebook."`
}

func (h *handler) backgroundHandler(ctx context.Context, req *mcp.CallToolRequest, params notebookParams) (*mcp.CallToolResult, any, error) {
	res, err := h.runner.Run(ctx, h.notebookPath(params.Notebook))
	if err != nil {
		return errorResult(describeError(err))
	}
	return textResult(formatStarted(res))
}

func (h *handler) sourceHandler(ctx context.Context, req *mcp.CallToolRequest, params notebookParams) (*mcp.CallToolResult, any, error) {
	p, err := h.runner.Preview(ctx, h.notebookPath(params.Notebook))
	if err != nil {
		return errorResult(describeError(err))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Notebook: %s\n", p.Notebook)
	fmt.Fprintf(&b, "Cells: %d\n", p.Cells)
	if !p.Terminated {
		b.WriteString("Note: no %%background cell found; every code cell is included.\n")
	}
	fmt.Fprintln(&b)
	b.WriteString(p.Source)
	return textResult(b.String())
}

func formatStarted(res *background.Result) string {
	var b strings.Builder
	fmt.Fprintln(&b, "Status: started")
	fmt.Fprintf(&b, "Run: %s\n", res.RunID)
	fmt.Fprintf(&b, "PID: %d\n", res.PID)
	fmt.Fprintf(&b, "Notebook: %s\n", res.Notebook)
	fmt.Fprintf(&b, "Cells: %d\n", res.Cells)
	if !res.Terminated {
		b.WriteString("Note: no %%background cell found in the saved notebook; every code cell was run. Save the notebook before invoking.\n")
	}
	fmt.Fprintln(&b)
	fmt.Fprintf(&b, "The process is not monitored. Inspect the launch with nb_inspect(run_id=%q).\n", res.RunID)
	return b.String()
}

// describeError turns runner errors into an actionable message.
func describeError(err error) string {
	var (
		idErr     *background.IdentityResolutionError
		readErr   *background.DocumentReadError
		launchErr *background.LaunchError
	)
	switch {
	case errors.As(err, &idErr):
		return fmt.Sprintf("%v\n\nAction: pass the notebook path in the \"notebook\" argument.", err)
	case errors.As(err, &readErr):
		return fmt.Sprintf("%v\n\nAction: check that the notebook exists and is saved as valid JSON.", err)
	case errors.As(err, &launchErr):
		return fmt.Sprintf("%v\n\nAction: check the configured interpreter.", err)
	default:
		return err.Error()
	}
}
