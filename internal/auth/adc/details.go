package adc

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// State represents the local credential state.
type State int

const (
	// StateConfigured means a readable credential file was found.
	StateConfigured State = iota
	// StateMissing means no credential file was found.
	StateMissing
	// StateInvalid means a file was found but is malformed.
	StateInvalid
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateConfigured:
		return "configured"
	case StateMissing:
		return "missing"
	default:
		return "invalid"
	}
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Details describes the credentials a sync would use.
type Details struct {
	State         State     `json:"state" yaml:"state"`
	Type          string    `json:"type,omitempty" yaml:"type,omitempty"`
	Account       string    `json:"account,omitempty" yaml:"account,omitempty"`
	Project       string    `json:"project,omitempty" yaml:"project,omitempty"`
	ProjectSource string    `json:"project_source,omitempty" yaml:"project_source,omitempty"`
	Path          string    `json:"path,omitempty" yaml:"path,omitempty"`
	LastModified  time.Time `json:"last_modified,omitempty" yaml:"last_modified,omitempty"`
	ErrorMessage  string    `json:"error,omitempty" yaml:"error,omitempty"`
}

// BuildDetails inspects the credential file that explicit or the
// environment points at.
func BuildDetails(explicit string) *Details {
	path := FindFile(explicit)
	if path == "" {
		return &Details{
			State:        StateMissing,
			Path:         explicit,
			ErrorMessage: "no credentials found; set GOOGLE_APPLICATION_CREDENTIALS or --credentials",
		}
	}

	file, err := ParseFile(path)
	if err != nil {
		return &Details{
			State:        StateInvalid,
			Path:         path,
			ErrorMessage: fmt.Sprintf("credentials file invalid: %v", err),
		}
	}

	d := &Details{
		State:        StateConfigured,
		Type:         credentialType(file.Type),
		Account:      accountIdentifier(file),
		Path:         path,
		LastModified: fileModTime(path),
	}
	d.Project, d.ProjectSource = resolveProject(file)
	return d
}

func credentialType(t string) string {
	if t == TypeServiceAccount {
		return "Service Account"
	}
	return "User Credentials"
}

func accountIdentifier(file *File) string {
	switch {
	case file.ClientEmail != "":
		return file.ClientEmail
	case file.Account != "":
		return file.Account
	case file.ClientID != "":
		return "(client ID: " + file.ClientID + ")"
	}
	return ""
}

func fileModTime(path string) time.Time {
	if stat, err := os.Stat(path); err == nil {
		return stat.ModTime()
	}
	return time.Time{}
}

// resolveProject picks the project named by the credentials, falling back
// to the gcloud configuration.
func resolveProject(file *File) (project, source string) {
	if file.ProjectID != "" {
		return file.ProjectID, "credentials (project_id)"
	}
	if file.QuotaProjectID != "" {
		return file.QuotaProjectID, "credentials (quota_project_id)"
	}
	if p := ReadProject(); p != "" {
		return p, "gcloud config"
	}
	return "", "not set"
}

// FormatBrief creates a one-line summary of the credential state.
func FormatBrief(d *Details) string {
	if d.State != StateConfigured {
		return d.ErrorMessage
	}

	parts := []string{d.Type}
	if d.Account != "" {
		parts = append(parts, d.Account)
	}
	if d.Project != "" {
		parts = append(parts, "Project: "+d.Project)
	}
	return strings.Join(parts, ", ")
}
