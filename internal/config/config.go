// Package config loads and validates the optional .nbtools YAML file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"gopkg.in/yaml.v3"
)

// FileName is the name of the configuration file looked up by Load.
const FileName = ".nbtools"

// EnvPrefix prefixes environment overrides, e.g. NBTOOLS_GRACE_PERIOD.
const EnvPrefix = "NBTOOLS_"

// Default values for the background runner.
const (
	DefaultGracePeriod = 500 * time.Millisecond
	DefaultCellPrefix  = "%%"
	DefaultLinePrefix  = "%"
	DefaultTerminal    = "background"
	DefaultSessionEnv  = "JPY_SESSION_NAME"
	DefaultCacheSize   = 16
)

// DefaultInterpreters are tried in order when no interpreter is configured.
var DefaultInterpreters = []string{"python", "python3"}

// Config holds the parsed .nbtools configuration.
// All fields are optional; zero values represent defaults.
type Config struct {
	Version        int              `yaml:"version" koanf:"version" validate:"omitempty,eq=1"`
	Interpreter    []string         `yaml:"interpreter" koanf:"interpreter"` // argv prefix, e.g. [python3, -u]
	RawGracePeriod string           `yaml:"grace_period" koanf:"grace_period"`
	Directives     DirectivesConfig `yaml:"directives" koanf:"directives"`
	Jupyter        JupyterConfig    `yaml:"jupyter" koanf:"jupyter"`
	Store          StoreConfig      `yaml:"store" koanf:"store"`
}

// DirectivesConfig controls which source lines are treated as runtime
// directives rather than code.
type DirectivesConfig struct {
	CellPrefix string `yaml:"cell_prefix" koanf:"cell_prefix" validate:"omitempty,printascii,max=8"`
	LinePrefix string `yaml:"line_prefix" koanf:"line_prefix" validate:"omitempty,printascii,max=8"`
	Terminal   string `yaml:"terminal" koanf:"terminal" validate:"omitempty,printascii,max=64"`
}

// JupyterConfig locates the active notebook through a running Jupyter server.
type JupyterConfig struct {
	URL        string `yaml:"url" koanf:"url" validate:"omitempty,url"`
	Token      string `yaml:"token" koanf:"token"`
	RootDir    string `yaml:"root_dir" koanf:"root_dir"`
	KernelID   string `yaml:"kernel_id" koanf:"kernel_id"`
	SessionEnv string `yaml:"session_env" koanf:"session_env"` // default: JPY_SESSION_NAME
}

// StoreConfig controls where launch records are kept.
type StoreConfig struct {
	Dir       string `yaml:"dir" koanf:"dir"`
	CacheSize int    `yaml:"cache_size" koanf:"cache_size" validate:"omitempty,min=1,max=1024"`
}

// GracePeriod returns the configured delay before the handoff file is
// removed, or the default. "0" disables the delay.
func (c *Config) GracePeriod() time.Duration {
	if c.RawGracePeriod != "" {
		d, err := time.ParseDuration(c.RawGracePeriod)
		if err == nil && d >= 0 {
			return d
		}
	}
	return DefaultGracePeriod
}

// CellPrefix returns the prefix that marks a cell-level directive.
func (c *Config) CellPrefix() string {
	if c.Directives.CellPrefix != "" {
		return c.Directives.CellPrefix
	}
	return DefaultCellPrefix
}

// LinePrefix returns the prefix that marks a single-line directive.
func (c *Config) LinePrefix() string {
	if c.Directives.LinePrefix != "" {
		return c.Directives.LinePrefix
	}
	return DefaultLinePrefix
}

// TerminalDirective returns the name of the directive that ends reconstruction.
func (c *Config) TerminalDirective() string {
	if c.Directives.Terminal != "" {
		return c.Directives.Terminal
	}
	return DefaultTerminal
}

// SessionEnv returns the environment variable holding the notebook path.
func (c *Config) SessionEnv() string {
	if c.Jupyter.SessionEnv != "" {
		return c.Jupyter.SessionEnv
	}
	return DefaultSessionEnv
}

// CacheSize returns the in-memory launch record cache size.
func (c *Config) CacheSize() int {
	if c.Store.CacheSize > 0 {
		return c.Store.CacheSize
	}
	return DefaultCacheSize
}

// StoreDir returns the launch record directory, expanding a leading "~/".
// The default is nbtools/launches under the user cache directory, falling
// back to the system temp directory.
func (c *Config) StoreDir() string {
	if c.Store.Dir != "" {
		return expandHome(c.Store.Dir)
	}
	base, err := os.UserCacheDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, "nbtools", "launches")
}

// LoadResult holds the parsed config and where it was found.
type LoadResult struct {
	Config *Config
	Path   string // path of the .nbtools file; empty when none was found
}

// Load reads the .nbtools file found by walking upward from workspace,
// applies NBTOOLS_* environment overrides, and validates the result.
// If no .nbtools file exists, a default Config is returned.
func Load(workspace string) (*LoadResult, error) {
	path, err := find(workspace)
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile reads the configuration at path. An empty path, or a path that
// does not exist, yields the defaults plus environment overrides.
func LoadFile(path string) (*LoadResult, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			path = ""
		case err != nil:
			return nil, fmt.Errorf("reading %s: %w", FileName, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing %s: %w", path, err)
			}
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	d := cfg.Directives
	if strings.ContainsAny(d.CellPrefix+d.LinePrefix+d.Terminal, " \t") {
		return nil, fmt.Errorf("config validation failed: directives must not contain whitespace")
	}
	return &LoadResult{Config: cfg, Path: path}, nil
}

// applyEnv overlays NBTOOLS_* variables onto cfg. Nested keys use a double
// underscore: NBTOOLS_JUPYTER__URL sets jupyter.url.
func applyEnv(cfg *Config) error {
	k := koanf.New(".")
	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return fmt.Errorf("loading environment: %w", err)
	}
	// Comma-separated values feed list fields such as interpreter.
	if v := k.String("interpreter"); v != "" {
		_ = k.Set("interpreter", strings.Fields(strings.ReplaceAll(v, ",", " ")))
	}
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return fmt.Errorf("applying environment: %w", err)
	}
	return nil
}

// envTransform maps NBTOOLS_JUPYTER__ROOT_DIR to jupyter.root_dir.
// Logging variables (NBTOOLS_LOG_*) belong to the logging package.
func envTransform(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	if strings.HasPrefix(key, "log_") {
		return ""
	}
	return strings.ReplaceAll(key, "__", ".")
}

// find walks upward from dir looking for a .nbtools file. It returns an
// empty path when none exists.
func find(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
