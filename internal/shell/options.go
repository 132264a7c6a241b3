package shell

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// UnitPlaceholder is replaced by the work unit path in the args template.
const UnitPlaceholder = "{unit}"

// Defaults for the notebook executor.
const (
	DefaultProgram         = "jupyter"
	DefaultCaptureMaxBytes = 1 << 20
	DefaultTermGraceMs     = 2000
)

// DefaultArgsTemplate executes a notebook in place with nbconvert.
var DefaultArgsTemplate = []string{"nbconvert", "--to", "notebook", "--execute", "--inplace", UnitPlaceholder}

var (
	ErrMissingProgram     = errors.New("missing program")
	ErrMissingPlaceholder = errors.New("argsTemplate must reference " + UnitPlaceholder)
	ErrInvalidPlaceholder = errors.New("strict templating: invalid placeholder")
)

var placeholderPattern = regexp.MustCompile(`\{[^{}]+\}`)

// Options configures how a work unit is turned into a process.
type Options struct {
	Program      string
	ArgsTemplate []string
	// WorkingDir is the directory the process runs in; unit paths are
	// passed as declared, relative to it.
	WorkingDir string
	Env        map[string]string
	// TimeoutMs bounds each unit; 0 waits forever.
	TimeoutMs        int
	CaptureMaxBytes  int
	KillProcessGroup bool
	TermGraceMs      int
}

// DefaultOptions returns the nbconvert template with no timeout.
func DefaultOptions() Options {
	return Options{
		Program:          DefaultProgram,
		ArgsTemplate:     append([]string(nil), DefaultArgsTemplate...),
		WorkingDir:       ".",
		Env:              map[string]string{},
		CaptureMaxBytes:  DefaultCaptureMaxBytes,
		KillProcessGroup: true,
		TermGraceMs:      DefaultTermGraceMs,
	}
}

// Validate checks the program and the args template.
func (o Options) Validate() error {
	if strings.TrimSpace(o.Program) == "" {
		return ErrMissingProgram
	}
	found := false
	for _, a := range o.ArgsTemplate {
		for _, m := range placeholderPattern.FindAllString(a, -1) {
			if m != UnitPlaceholder {
				return fmt.Errorf("%w %s", ErrInvalidPlaceholder, m)
			}
			found = true
		}
	}
	if !found {
		return ErrMissingPlaceholder
	}
	if o.TimeoutMs < 0 || o.TermGraceMs < 0 || o.CaptureMaxBytes < 0 {
		return errors.New("timeoutMs, termGraceMs and captureMaxBytes must be >= 0")
	}
	return nil
}

// renderArgs substitutes the unit path into the template.
func renderArgs(argsT []string, unit string) []string {
	rendered := make([]string, len(argsT))
	for i, a := range argsT {
		rendered[i] = strings.ReplaceAll(a, UnitPlaceholder, unit)
	}
	return rendered
}

// applyEnvOverlay returns base with overlay values set, overlay winning.
func applyEnvOverlay(base []string, overlay map[string]string) []string {
	if len(overlay) == 0 {
		return append([]string(nil), base...)
	}
	out := make([]string, 0, len(base)+len(overlay))
	for _, kv := range base {
		k, _, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		if _, replaced := overlay[k]; replaced {
			continue
		}
		out = append(out, kv)
	}
	for k, v := range overlay {
		out = append(out, k+"="+v)
	}
	return out
}
