package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"

	nbmcp "github.com/deixis/nbtools/internal/mcp"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func newMCPCmd(g *globalFlags) *cobra.Command {
	var (
		httpAddr     string
		instructions bool
	)
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if instructions {
				fmt.Fprint(cmd.OutOrStdout(), nbmcp.Instructions)
				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			// Over stdio, stdout carries the protocol, so children get
			// no stdout of their own.
			opts := appOptions{stderr: os.Stderr}
			if httpAddr != "" {
				opts.stdout = os.Stdout
			}
			a, err := newApp(g, opts)
			if err != nil {
				return err
			}

			wd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("determining workspace: %w", err)
			}
			server := nbmcp.NewServer(a.runner, a.store, wd)

			if httpAddr != "" {
				return serveHTTP(ctx, a.log, server, httpAddr)
			}
			return server.Run(ctx, &mcpsdk.StdioTransport{})
		},
	}
	cmd.Flags().StringVar(&httpAddr, "http", "", "serve over streamable HTTP on this address (e.g. :9090)")
	cmd.Flags().BoolVar(&instructions, "instructions", false, "print model instructions and exit")
	return cmd
}

func serveHTTP(ctx context.Context, log zerolog.Logger, server *mcpsdk.Server, addr string) error {
	handler := mcpsdk.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcpsdk.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	go func() {
		<-ctx.Done()
		_ = httpServer.Close()
	}()

	log.Info().Str("addr", addr).Msg("listening")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}
