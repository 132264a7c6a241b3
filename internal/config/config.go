package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/flarebyte/smfish-pipeline/internal/shell"
	"github.com/flarebyte/smfish-pipeline/internal/stage"
	"github.com/flarebyte/smfish-pipeline/internal/verify"
)

// Config is the declarative description of the pipeline: its stages, the
// canonical order, the executor template and the verification checklist.
type Config struct {
	ConfigVersion string
	Title         string
	// Root is the pipeline directory as declared; see BaseDir.
	Root       string
	ResultsDir string
	Stages     []stage.Stage
	Order      []string
	Shell      Shell
	Verify     Verify
	// Dir is the directory of the loaded file, empty for Default.
	Dir string
}

// Shell configures the external executor.
type Shell struct {
	Program          string
	ArgsTemplate     []string
	Env              map[string]string
	TimeoutMs        int
	CaptureMaxBytes  int
	KillProcessGroup bool
	TermGraceMs      int
}

// Verify configures `smfish verify`.
type Verify struct {
	Required     []verify.Item
	Dirs         []verify.Item
	MinNotebooks int
}

var errUnsupportedFormat = errors.New("unsupported config format: expected .cue, .yaml or .yml")

// Load reads a .cue or .yaml config, applies it over Default and validates
// the resulting registry and executor settings.
func Load(path string) (Config, error) {
	var (
		raw rawConfig
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cue":
		raw, err = parseCUE(path)
	case ".yaml", ".yml":
		raw, err = parseYAML(path)
	default:
		return Config{}, errUnsupportedFormat
	}
	if err != nil {
		return Config{}, err
	}
	cfg, err := raw.apply(Default())
	if err != nil {
		return Config{}, err
	}
	cfg.Dir = filepath.Dir(path)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the stage/order invariant and the executor template.
func (c Config) Validate() error {
	if _, err := c.Registry(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := c.ShellOptions("").Validate(); err != nil {
		return fmt.Errorf("invalid config: shell: %w", err)
	}
	if c.Verify.MinNotebooks < 0 {
		return errors.New("invalid config: verify.minNotebooks must be >= 0")
	}
	return nil
}

// Registry builds the immutable stage registry.
func (c Config) Registry() (*stage.Registry, error) {
	return stage.NewRegistry(c.Stages, c.Order)
}

// BaseDir resolves Root against the config file directory.
func (c Config) BaseDir() string {
	root := c.Root
	if root == "" {
		root = "."
	}
	if filepath.IsAbs(root) {
		return root
	}
	dir := c.Dir
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, root)
}

// ShellOptions returns executor options running in workingDir.
func (c Config) ShellOptions(workingDir string) shell.Options {
	env := make(map[string]string, len(c.Shell.Env))
	for k, v := range c.Shell.Env {
		env[k] = v
	}
	return shell.Options{
		Program:          c.Shell.Program,
		ArgsTemplate:     append([]string(nil), c.Shell.ArgsTemplate...),
		WorkingDir:       workingDir,
		Env:              env,
		TimeoutMs:        c.Shell.TimeoutMs,
		CaptureMaxBytes:  c.Shell.CaptureMaxBytes,
		KillProcessGroup: c.Shell.KillProcessGroup,
		TermGraceMs:      c.Shell.TermGraceMs,
	}
}
