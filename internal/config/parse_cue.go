package config

import (
	"cuelang.org/go/cue"

	"github.com/flarebyte/smfish-pipeline/internal/stage"
	"github.com/flarebyte/smfish-pipeline/internal/verify"
)

// parseCUE compiles a .cue config and extracts the known fields.
func parseCUE(path string) (rawConfig, error) {
	v, err := compileCUE(path)
	if err != nil {
		return rawConfig{}, err
	}
	var r rawConfig
	if r.ConfigVersion, err = optionalString(v, "configVersion"); err != nil {
		return rawConfig{}, err
	}
	if r.Title, err = optionalString(v, "title"); err != nil {
		return rawConfig{}, err
	}
	if r.Root, err = optionalString(v, "root"); err != nil {
		return rawConfig{}, err
	}
	if r.ResultsDir, err = optionalString(v, "resultsDir"); err != nil {
		return rawConfig{}, err
	}
	if r.Stages, err = optionalList[stage.Stage](v, "stages"); err != nil {
		return rawConfig{}, err
	}
	if r.Pipeline, err = optionalList[string](v, "pipeline"); err != nil {
		return rawConfig{}, err
	}
	if r.Shell, err = parseShellSection(v); err != nil {
		return rawConfig{}, err
	}
	if r.Verify, err = parseVerifySection(v); err != nil {
		return rawConfig{}, err
	}
	return r, nil
}

// parseShellSection extracts optional shell.* fields.
func parseShellSection(v cue.Value) (*rawShell, error) {
	sv, ok, err := lookup(v, "shell", cue.StructKind, "struct")
	if err != nil || !ok {
		return nil, err
	}
	var s rawShell
	if s.Program, err = optionalString(sv, "program"); err != nil {
		return nil, err
	}
	if s.ArgsTemplate, err = optionalList[string](sv, "argsTemplate"); err != nil {
		return nil, err
	}
	env, err := decodeField[map[string]string](sv, "env", cue.StructKind, "struct")
	if err != nil {
		return nil, err
	}
	if env != nil {
		s.Env = *env
	}
	if s.TimeoutMs, err = optionalInt(sv, "timeoutMs"); err != nil {
		return nil, err
	}
	if s.CaptureMaxBytes, err = optionalInt(sv, "captureMaxBytes"); err != nil {
		return nil, err
	}
	if s.KillProcessGroup, err = optionalBool(sv, "killProcessGroup"); err != nil {
		return nil, err
	}
	if s.TermGraceMs, err = optionalInt(sv, "termGraceMs"); err != nil {
		return nil, err
	}
	return &s, nil
}

// parseVerifySection extracts optional verify.* fields.
func parseVerifySection(v cue.Value) (*rawVerify, error) {
	vv, ok, err := lookup(v, "verify", cue.StructKind, "struct")
	if err != nil || !ok {
		return nil, err
	}
	var out rawVerify
	if out.Required, err = optionalList[verify.Item](vv, "required"); err != nil {
		return nil, err
	}
	if out.Dirs, err = optionalList[verify.Item](vv, "dirs"); err != nil {
		return nil, err
	}
	if out.MinNotebooks, err = optionalInt(vv, "minNotebooks"); err != nil {
		return nil, err
	}
	return &out, nil
}
