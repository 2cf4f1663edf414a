// Package emoji provides symbol constants for CLI output.
// These symbols create a consistent visual language across all command-line commands.
package emoji

const (
	// Success marks an applied change or configured credentials.
	Success = "✓"

	// Error marks a failed table, worksheet or dataset.
	Error = "✗"

	// Warning marks a contained problem that did not stop the run.
	Warning = "!"

	// Unchanged marks a table whose metadata already matched the spreadsheet.
	Unchanged = "="

	// Planned marks a change computed by a dry run.
	Planned = "~"

	// Info represents informational messages.
	Info = "i"
)
