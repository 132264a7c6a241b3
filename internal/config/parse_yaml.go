package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// parseYAML decodes a .yaml config, rejecting unknown fields.
func parseYAML(path string) (rawConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return rawConfig{}, fmt.Errorf("failed to read config: %w", err)
	}
	var r rawConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&r); err != nil {
		if errors.Is(err, io.EOF) {
			return rawConfig{}, errors.New("invalid config: empty document")
		}
		return rawConfig{}, fmt.Errorf("invalid config: %v", err)
	}
	return r, nil
}
