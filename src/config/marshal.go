package config

import (
	"bytes"
	"fmt"

	gotoml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Marshal encodes cfg as "yaml" or "toml".
func Marshal(cfg *Config, syntax string) ([]byte, error) {
	switch syntax {
	case "yaml", "yml", "":
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return nil, fmt.Errorf("encoding yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case "toml":
		data, err := gotoml.Marshal(cfg)
		if err != nil {
			return nil, fmt.Errorf("encoding toml: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unknown config syntax %q (want yaml or toml)", syntax)
	}
}
