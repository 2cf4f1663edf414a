// Package adc inspects Google credential files locally, without network calls.
package adc

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/agentstation/catalogsync/pkg/constants"
)

const (
	// TypeAuthorizedUser represents user credentials from gcloud auth.
	TypeAuthorizedUser = "authorized_user"
	// TypeServiceAccount represents service account credentials.
	TypeServiceAccount = "service_account"
)

// File represents a credentials JSON file.
type File struct {
	Type           string `json:"type"`
	QuotaProjectID string `json:"quota_project_id"`
	ProjectID      string `json:"project_id"`
	ClientEmail    string `json:"client_email"`
	Account        string `json:"account"`
	ClientID       string `json:"client_id"`
	UniverseDomain string `json:"universe_domain"`
}

// FindFile locates the credentials file. Returns empty string if not found.
//
// Search order:
//  1. explicit path (the --credentials flag or config key)
//  2. GOOGLE_APPLICATION_CREDENTIALS environment variable
//  3. Default location: ~/.config/gcloud/application_default_credentials.json
func FindFile(explicit string) string {
	for _, path := range []string{explicit, os.Getenv(constants.EnvCredentials)} {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	defaultPath := filepath.Join(home, ".config/gcloud/application_default_credentials.json")
	if _, err := os.Stat(defaultPath); err == nil {
		return defaultPath
	}

	return ""
}

// ParseFile reads and validates a credentials JSON file.
func ParseFile(path string) (*File, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- reading the configured credential file
	if err != nil {
		return nil, fmt.Errorf("cannot read file: %w", err)
	}

	var file File
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	switch file.Type {
	case "":
		return nil, fmt.Errorf("missing 'type' field")
	case TypeAuthorizedUser, TypeServiceAccount:
		return &file, nil
	default:
		return nil, fmt.Errorf("unknown type: %s", file.Type)
	}
}
