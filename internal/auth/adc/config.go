package adc

import (
	"os"
	"path/filepath"
	"strings"
)

// ReadProject reads core.project from the active gcloud configuration.
// Returns empty string if the config or key is missing.
func ReadProject() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	configPath := filepath.Join(home, ".config/gcloud/configurations", "config_"+readActiveConfig(home))
	data, err := os.ReadFile(configPath) // #nosec G304 -- reading well-known gcloud config file
	if err != nil {
		return ""
	}

	return parseINIValue(string(data), "core", "project")
}

// readActiveConfig returns the active gcloud configuration name.
func readActiveConfig(homeDir string) string {
	data, err := os.ReadFile(filepath.Join(homeDir, ".config/gcloud/active_config")) // #nosec G304
	if err != nil {
		return "default"
	}
	return strings.TrimSpace(string(data))
}

// parseINIValue extracts key from section in INI-style content.
func parseINIValue(content, section, key string) string {
	var current string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			current = strings.Trim(line, "[]")
			continue
		}
		if current != section {
			continue
		}
		name, value, ok := strings.Cut(line, "=")
		if ok && strings.TrimSpace(name) == key {
			return strings.TrimSpace(value)
		}
	}
	return ""
}
