package process

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LauncherConfig represents one entry in the launcher registry file.
type LauncherConfig struct {
	Name        string            `yaml:"name" json:"name"`
	Command     string            `yaml:"command" json:"command"`
	Args        []string          `yaml:"args" json:"args"`
	Environment map[string]string `yaml:"env" json:"env"`
	Description string            `yaml:"description" json:"description"`
}

// ConfigFile represents the structure of launchers.yaml.
type ConfigFile struct {
	Launchers []LauncherConfig `yaml:"launchers" json:"launchers"`
}

// LoadLaunchers reads a registry file (YAML or JSON) and returns a map of
// launcher names to configs. A missing file is not an error; it means no
// launchers are configured.
func LoadLaunchers(path string) (map[string]LauncherConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]LauncherConfig{}, nil
		}
		return nil, fmt.Errorf("failed to read launchers config: %w", err)
	}

	var cfg ConfigFile
	ext := strings.ToLower(filepath.Ext(path))

	if ext == ".json" {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse launchers.json: %w", err)
		}
	} else {
		// Default to YAML
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse launchers.yaml: %w", err)
		}
	}

	launcherMap := make(map[string]LauncherConfig)
	for _, l := range cfg.Launchers {
		if l.Name == "" {
			continue
		}
		launcherMap[l.Name] = l
	}

	return launcherMap, nil
}
