// Package constants provides shared constants used throughout the catalogsync codebase.
// This includes the spreadsheet layout contract, scopes, timeouts and file
// permissions that should be consistent across the application.
package constants

import "time"

// Spreadsheet layout constants describe the worksheets the sync reads.
const (
	// DefaultTableWorksheetID is the numeric sheet id of the table list worksheet
	DefaultTableWorksheetID int64 = 16282389

	// DefaultColumnSheetPrefix marks worksheets that hold column descriptions.
	// The rest of the title is the table name.
	DefaultColumnSheetPrefix = "sem."

	// CompositeKeySeparator splits "dataset.table" keys
	CompositeKeySeparator = "."
)

// Header names of the spreadsheet columns read by the extractors.
const (
	// HeaderTableKey holds the "<dataset>.<table>" composite key
	HeaderTableKey = "BQ Table"

	// HeaderTableDescription holds the table description text
	HeaderTableDescription = "Table 說明"

	// HeaderTableStatus holds the table status text
	HeaderTableStatus = "狀態"

	// HeaderColumnName holds the column name on column worksheets
	HeaderColumnName = "BQ 欄位"

	// HeaderColumnDescription holds the column description on column worksheets
	HeaderColumnDescription = "說明"
)

// StatusLabel is the label used when a status is appended to a table description.
const StatusLabel = "狀態"

// OAuth scopes requested for the service account.
const (
	// ScopeSheetsReadOnly grants read access to spreadsheets
	ScopeSheetsReadOnly = "https://www.googleapis.com/auth/spreadsheets.readonly"

	// ScopeBigQuery grants catalog read and metadata update on BigQuery
	ScopeBigQuery = "https://www.googleapis.com/auth/bigquery"
)

// Timeout constants
const (
	// CredentialsTimeout bounds credential discovery
	CredentialsTimeout = 10 * time.Second

	// ShutdownTimeout is how long main waits for cleanup after an error
	ShutdownTimeout = 5 * time.Second
)

// File permission constants define standard Unix file permissions
const (
	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Environment variable names read by the configuration layer.
const (
	EnvProject     = "BIGQUERY_PROJECT"
	EnvSheetID     = "GOOGLE_SHEET_ID"
	EnvCredentials = "GOOGLE_APPLICATION_CREDENTIALS"
	EnvDatasets    = "TARGET_DATASETS"
)
