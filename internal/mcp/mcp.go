// Package mcp provides the nbtools MCP server, registering the background
// tools and publishing model instructions.
package mcp

import (
	"context"
	_ "embed"
	"net/url"
	"path/filepath"
	"sync"
	"time"

	"github.com/deixis/nbtools"
	"github.com/deixis/nbtools/internal/background"
	"github.com/deixis/nbtools/internal/report"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

//go:embed instructions.md
var Instructions string

// handler holds shared dependencies for all tool handlers.
type handler struct {
	runner *background.Runner
	store  report.Store

	mu   sync.Mutex
	root string // relative notebook paths resolve against this directory
}

// NewServer creates an MCP server with all nbtools tools registered.
// The composition root calls it once per process.
func NewServer(r *background.Runner, store report.Store, root string) *mcp.Server {
	h := &handler{
		runner: r,
		store:  store,
		root:   root,
	}

	opts := &mcp.ServerOptions{
		Instructions: Instructions,
		Capabilities: &mcp.ServerCapabilities{
			Tools: &mcp.ToolCapabilities{ListChanged: false},
		},
		InitializedHandler: func(ctx context.Context, req *mcp.InitializedRequest) {
			h.updateRootFromClient(ctx, req.Session)
		},
	}
	s := mcp.NewServer(&mcp.Implementation{Name: "nbtools", Version: nbtools.Version}, opts)

	mcp.AddTool(s, &mcp.Tool{
		Name: "nb_background",
		Description: `Run the notebook's code, up to the %%background cell, in a detached process.

The saved notebook is read from disk, so save it first. Returns the run ID and PID.
Output of the process is not captured; use nb_inspect with the run ID to see the launch record.`,
	}, h.backgroundHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "nb_source",
		Description: "Show the code nb_background would run for a notebook, without starting anything.",
	}, h.sourceHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "nb_inspect",
		Description: "Show the launch record of a background run by run ID.",
	}, h.inspectHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "nb_history",
		Description: "List recent background runs, newest first.",
	}, h.historyHandler)

	return s
}

// updateRootFromClient asks the client for its roots and uses the first
// file root to resolve relative notebook paths. This runs during session
// initialization, before any tool calls.
func (h *handler) updateRootFromClient(ctx context.Context, session *mcp.ServerSession) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	roots, err := session.ListRoots(ctx, &mcp.ListRootsParams{})
	if err != nil || len(roots.Roots) == 0 {
		return
	}
	u, err := url.Parse(roots.Roots[0].URI)
	if err != nil || u.Scheme != "file" {
		return
	}

	h.mu.Lock()
	h.root = u.Path
	h.mu.Unlock()
}

// notebookPath makes p absolute against the client root. Empty stays
// empty so the runner falls back to its resolver.
func (h *handler) notebookPath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	h.mu.Lock()
	root := h.root
	h.mu.Unlock()
	return filepath.Join(root, p)
}

// textResult is a helper to build a text-only tool result.
func textResult(text string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}, nil, nil
}

// errorResult is a helper to build an error tool result.
func errorResult(text string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}, nil, nil
}
