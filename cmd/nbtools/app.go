package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/deixis/nbtools/internal/background"
	"github.com/deixis/nbtools/internal/config"
	"github.com/deixis/nbtools/internal/identity"
	"github.com/deixis/nbtools/internal/logging"
	"github.com/deixis/nbtools/internal/report"
	"github.com/deixis/nbtools/internal/runner"
	"github.com/rs/zerolog"
)

// app holds the wired components for one command invocation.
type app struct {
	cfg    *config.Config
	log    zerolog.Logger
	store  report.Store
	runner *background.Runner
}

// appOptions override configuration from command-line flags.
type appOptions struct {
	kernelID string
	stdout   io.Writer // handed to the child; nil discards
	stderr   io.Writer
}

func newApp(g *globalFlags, opts appOptions) (*app, error) {
	log := logging.ConfigureRuntime(g.debug)

	var (
		loaded *config.LoadResult
		err    error
	)
	if g.config != "" {
		loaded, err = config.LoadFile(g.config)
	} else {
		var wd string
		wd, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("determining working directory: %w", err)
		}
		loaded, err = config.Load(wd)
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	cfg := loaded.Config
	if loaded.Path != "" {
		log.Debug().Str("path", loaded.Path).Msg("config loaded")
	}

	if opts.kernelID != "" {
		cfg.Jupyter.KernelID = opts.kernelID
	}

	interp := cfg.Interpreter
	if len(interp) == 0 {
		path, err := runner.ResolveInterpreter(config.DefaultInterpreters...)
		if err != nil {
			// Left to fail at launch time so that dry runs still work.
			log.Debug().Err(err).Msg("interpreter lookup")
			path = config.DefaultInterpreters[0]
		}
		interp = []string{path}
	}

	store := report.NewLRUStore(cfg.CacheSize(), report.NewDiskStore(cfg.StoreDir()))

	return &app{
		cfg:   cfg,
		log:   log,
		store: store,
		runner: &background.Runner{
			Resolver: newResolver(cfg),
			Launcher: &runner.Launcher{Stdout: opts.stdout, Stderr: opts.stderr},
			Store:    store,
			Directives: background.Directives{
				CellPrefix: cfg.CellPrefix(),
				LinePrefix: cfg.LinePrefix(),
				Terminal:   cfg.TerminalDirective(),
			},
			Interpreter: interp,
			GracePeriod: cfg.GracePeriod(),
			Logger:      &log,
		},
	}, nil
}

// newResolver tries the session environment variable first, then the
// Jupyter server's sessions API when a server URL is configured.
func newResolver(cfg *config.Config) identity.Resolver {
	chain := identity.Chain{
		identity.Env{Var: cfg.SessionEnv(), RootDir: cfg.Jupyter.RootDir},
	}
	if cfg.Jupyter.URL != "" {
		token := cfg.Jupyter.Token
		if token == "" {
			token = os.Getenv("JUPYTER_TOKEN")
		}
		chain = append(chain, &identity.Sessions{
			URL:      cfg.Jupyter.URL,
			Token:    token,
			RootDir:  cfg.Jupyter.RootDir,
			KernelID: cfg.Jupyter.KernelID,
			Timeout:  5 * time.Second,
		})
	}
	return chain
}
