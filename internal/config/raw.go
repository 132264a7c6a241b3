package config

import (
	"errors"

	"github.com/flarebyte/smfish-pipeline/internal/stage"
	"github.com/flarebyte/smfish-pipeline/internal/verify"
)

// rawConfig holds decoded fields; nil means absent in the source file.
type rawConfig struct {
	ConfigVersion *string        `yaml:"configVersion"`
	Title         *string        `yaml:"title"`
	Root          *string        `yaml:"root"`
	ResultsDir    *string        `yaml:"resultsDir"`
	Stages        *[]stage.Stage `yaml:"stages"`
	Pipeline      *[]string      `yaml:"pipeline"`
	Shell         *rawShell      `yaml:"shell"`
	Verify        *rawVerify     `yaml:"verify"`
}

type rawShell struct {
	Program          *string           `yaml:"program"`
	ArgsTemplate     *[]string         `yaml:"argsTemplate"`
	Env              map[string]string `yaml:"env"`
	TimeoutMs        *int              `yaml:"timeoutMs"`
	CaptureMaxBytes  *int              `yaml:"captureMaxBytes"`
	KillProcessGroup *bool             `yaml:"killProcessGroup"`
	TermGraceMs      *int              `yaml:"termGraceMs"`
}

type rawVerify struct {
	Required     *[]verify.Item `yaml:"required"`
	Dirs         *[]verify.Item `yaml:"dirs"`
	MinNotebooks *int           `yaml:"minNotebooks"`
}

// apply overlays the present fields on base. When stages are declared
// without a pipeline, the declared stage order becomes the pipeline.
func (r rawConfig) apply(base Config) (Config, error) {
	if r.ConfigVersion == nil {
		return Config{}, errors.New("missing required field: configVersion")
	}
	if err := checkConfigVersion(*r.ConfigVersion); err != nil {
		return Config{}, err
	}
	cfg := base
	cfg.ConfigVersion = *r.ConfigVersion
	if r.Title != nil {
		cfg.Title = *r.Title
	}
	if r.Root != nil {
		cfg.Root = *r.Root
	}
	if r.ResultsDir != nil {
		cfg.ResultsDir = *r.ResultsDir
	}
	if r.Stages != nil {
		cfg.Stages = append([]stage.Stage(nil), (*r.Stages)...)
		if r.Pipeline == nil {
			cfg.Order = make([]string, 0, len(cfg.Stages))
			for _, s := range cfg.Stages {
				cfg.Order = append(cfg.Order, s.Name)
			}
		}
	}
	if r.Pipeline != nil {
		cfg.Order = append([]string(nil), (*r.Pipeline)...)
	}
	if r.Shell != nil {
		r.Shell.applyTo(&cfg.Shell)
	}
	if r.Verify != nil {
		r.Verify.applyTo(&cfg.Verify)
	}
	return cfg, nil
}

func (s rawShell) applyTo(out *Shell) {
	if s.Program != nil {
		out.Program = *s.Program
	}
	if s.ArgsTemplate != nil {
		out.ArgsTemplate = append([]string(nil), (*s.ArgsTemplate)...)
	}
	if s.Env != nil {
		out.Env = make(map[string]string, len(s.Env))
		for k, v := range s.Env {
			out.Env[k] = v
		}
	}
	if s.TimeoutMs != nil {
		out.TimeoutMs = *s.TimeoutMs
	}
	if s.CaptureMaxBytes != nil {
		out.CaptureMaxBytes = *s.CaptureMaxBytes
	}
	if s.KillProcessGroup != nil {
		out.KillProcessGroup = *s.KillProcessGroup
	}
	if s.TermGraceMs != nil {
		out.TermGraceMs = *s.TermGraceMs
	}
}

func (v rawVerify) applyTo(out *Verify) {
	if v.Required != nil {
		out.Required = append([]verify.Item(nil), (*v.Required)...)
	}
	if v.Dirs != nil {
		out.Dirs = append([]verify.Item(nil), (*v.Dirs)...)
	}
	if v.MinNotebooks != nil {
		out.MinNotebooks = *v.MinNotebooks
	}
}
