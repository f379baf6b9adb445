package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type inspectParams struct {
	RunID string `json:"run_id" jsonschema:"the run ID returned by nb_background"`
}

func (h *handler) inspectHandler(ctx context.Context, req *mcp.CallToolRequest, params inspectParams) (*mcp.CallToolResult, any, error) {
	if params.RunID == "" {
		return errorResult("run_id is required")
	}
	launch, err := h.store.Load(params.RunID)
	if err != nil {
		return errorResult(fmt.Sprintf("Failed to load run %s: %v", params.RunID, err))
	}
	return textResult(launch.Describe())
}

type historyParams struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of runs to list. Default: 10."`
}

func (h *handler) historyHandler(ctx context.Context, req *mcp.CallToolRequest, params historyParams) (*mcp.CallToolResult, any, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 10
	}
	launches, err := h.store.List(limit)
	if err != nil {
		return errorResult(fmt.Sprintf("Failed to list runs: %v", err))
	}
	if len(launches) == 0 {
		return textResult("No background runs recorded.")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Runs (%d):\n", len(launches))
	for _, l := range launches {
		fmt.Fprintf(&b, "  %s\n", l.Summary())
	}
	return textResult(b.String())
}
