package config

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"
)

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// Marshal encodes config as YAML when path has a YAML extension and as indented JSON otherwise.
func Marshal(path string, config Config) ([]byte, error) {
	if isYAML(path) {
		return yaml.Marshal(config)
	}
	return json.MarshalIndent(config, "", "  ")
}

func Unmarshal(path string, bz []byte, config *Config) error {
	if isYAML(path) {
		return yaml.Unmarshal(bz, config)
	}
	return json.Unmarshal(bz, config)
}
