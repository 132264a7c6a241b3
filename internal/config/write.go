package config

import (
	"bytes"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/flarebyte/smfish-pipeline/internal/verify"
)

// MarshalYAML returns canonical YAML for cfg. Stage, unit and pipeline
// order are kept as declared; env keys are sorted.
func MarshalYAML(cfg Config) ([]byte, error) {
	top := mapping(
		"configVersion", scalarFrom(cfg.ConfigVersion),
		"title", scalarFrom(cfg.Title),
		"root", scalarFrom(cfg.Root),
		"resultsDir", scalarFrom(cfg.ResultsDir),
		"stages", stagesNode(cfg),
		"pipeline", stringsNode(cfg.Order),
		"shell", shellNode(cfg.Shell),
		"verify", mapping(
			"minNotebooks", scalarFrom(cfg.Verify.MinNotebooks),
			"required", itemsNode(cfg.Verify.Required),
			"dirs", itemsNode(cfg.Verify.Dirs),
		),
	)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(top); err != nil {
		_ = enc.Close()
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	out := bytes.TrimRight(buf.Bytes(), "\n")
	out = append(out, '\n')
	return out, nil
}

func stagesNode(cfg Config) *yaml.Node {
	n := &yaml.Node{Kind: yaml.SequenceNode}
	for _, s := range cfg.Stages {
		n.Content = append(n.Content, mapping(
			"name", scalarFrom(s.Name),
			"units", stringsNode(s.Units),
		))
	}
	return n
}

func shellNode(s Shell) *yaml.Node {
	env := &yaml.Node{Kind: yaml.MappingNode}
	keys := make([]string, 0, len(s.Env))
	for k := range s.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env.Content = append(env.Content, scalarNode(k), scalarFrom(s.Env[k]))
	}
	return mapping(
		"program", scalarFrom(s.Program),
		"argsTemplate", stringsNode(s.ArgsTemplate),
		"env", env,
		"timeoutMs", scalarFrom(s.TimeoutMs),
		"captureMaxBytes", scalarFrom(s.CaptureMaxBytes),
		"killProcessGroup", scalarFrom(s.KillProcessGroup),
		"termGraceMs", scalarFrom(s.TermGraceMs),
	)
}

func itemsNode(items []verify.Item) *yaml.Node {
	n := &yaml.Node{Kind: yaml.SequenceNode}
	for _, it := range items {
		n.Content = append(n.Content, mapping(
			"path", scalarFrom(it.Path),
			"description", scalarFrom(it.Description),
		))
	}
	return n
}

func stringsNode(items []string) *yaml.Node {
	n := &yaml.Node{Kind: yaml.SequenceNode}
	for _, it := range items {
		n.Content = append(n.Content, scalarFrom(it))
	}
	return n
}

// mapping builds a mapping node from alternating key, value arguments.
func mapping(kv ...any) *yaml.Node {
	n := &yaml.Node{Kind: yaml.MappingNode}
	for i := 0; i+1 < len(kv); i += 2 {
		n.Content = append(n.Content, scalarNode(kv[i].(string)), kv[i+1].(*yaml.Node))
	}
	return n
}

func scalarNode(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}

func scalarFrom(v any) *yaml.Node {
	n := &yaml.Node{}
	_ = n.Encode(v)
	return n
}
