package reconciler

import (
	"fmt"
	"time"

	"github.com/agentstation/catalogsync/pkg/errors"
	"github.com/agentstation/catalogsync/pkg/schema"
	"github.com/agentstation/catalogsync/pkg/sheets"
)

// TableStatus is the outcome of processing one table.
type TableStatus string

const (
	// StatusUpdated means the update was applied and changed something.
	StatusUpdated TableStatus = "updated"
	// StatusUnchanged means the update was applied and nothing differed.
	StatusUnchanged TableStatus = "unchanged"
	// StatusPlanned means a dry run computed the update without applying it.
	StatusPlanned TableStatus = "planned"
	// StatusFailed means fetching or updating the table failed.
	StatusFailed TableStatus = "failed"
)

// TableResult reports what happened to one table.
type TableResult struct {
	Dataset            string               `json:"dataset" yaml:"dataset"`
	Table              string               `json:"table" yaml:"table"`
	Status             TableStatus          `json:"status" yaml:"status"`
	Description        string               `json:"description,omitempty" yaml:"description,omitempty"`
	DescriptionChanged bool                 `json:"description_changed" yaml:"description_changed"`
	ChangedFields      int                  `json:"changed_fields" yaml:"changed_fields"`
	Changes            []schema.FieldChange `json:"changes,omitempty" yaml:"changes,omitempty"`
	Error              string               `json:"error,omitempty" yaml:"error,omitempty"`
	Err                error                `json:"-" yaml:"-"`
}

// DatasetFailure records a dataset whose tables could not be listed.
type DatasetFailure struct {
	Dataset string `json:"dataset" yaml:"dataset"`
	Error   string `json:"error" yaml:"error"`
	Err     error  `json:"-" yaml:"-"`
}

// Result represents the outcome of a sync run.
type Result struct {
	RunID      string                   `json:"run_id" yaml:"run_id"`
	Tables     []TableResult            `json:"tables" yaml:"tables"`
	Datasets   []DatasetFailure         `json:"dataset_failures,omitempty" yaml:"dataset_failures,omitempty"`
	Worksheets []sheets.WorksheetResult `json:"worksheets,omitempty" yaml:"worksheets,omitempty"`
	Metadata   ResultMetadata           `json:"metadata" yaml:"metadata"`
}

// ResultMetadata contains metadata about the run.
type ResultMetadata struct {
	StartTime time.Time        `json:"start_time" yaml:"start_time"`
	EndTime   time.Time        `json:"end_time" yaml:"end_time"`
	Duration  time.Duration    `json:"duration" yaml:"duration"`
	DryRun    bool             `json:"dry_run" yaml:"dry_run"`
	Stats     ResultStatistics `json:"stats" yaml:"stats"`
}

// ResultStatistics contains counts over the run.
type ResultStatistics struct {
	Datasets      int `json:"datasets" yaml:"datasets"`
	Tables        int `json:"tables" yaml:"tables"`
	Updated       int `json:"updated" yaml:"updated"`
	Unchanged     int `json:"unchanged" yaml:"unchanged"`
	Planned       int `json:"planned" yaml:"planned"`
	Failed        int `json:"failed" yaml:"failed"`
	FieldsChanged int `json:"fields_changed" yaml:"fields_changed"`
}

// NewResult creates a new result with defaults.
func NewResult(runID string, dryRun bool) *Result {
	return &Result{
		RunID:  runID,
		Tables: []TableResult{},
		Metadata: ResultMetadata{
			StartTime: time.Now(),
			DryRun:    dryRun,
		},
	}
}

func (r *Result) addTable(tr TableResult) {
	if tr.Err != nil {
		tr.Error = tr.Err.Error()
	}
	r.Tables = append(r.Tables, tr)

	stats := &r.Metadata.Stats
	stats.Tables++
	stats.FieldsChanged += tr.ChangedFields
	switch tr.Status {
	case StatusUpdated:
		stats.Updated++
	case StatusUnchanged:
		stats.Unchanged++
	case StatusPlanned:
		stats.Planned++
	case StatusFailed:
		stats.Failed++
	}
}

func (r *Result) addDatasetFailure(dataset string, err error) {
	r.Datasets = append(r.Datasets, DatasetFailure{Dataset: dataset, Error: err.Error(), Err: err})
}

func (r *Result) finish() {
	r.Metadata.EndTime = time.Now()
	r.Metadata.Duration = r.Metadata.EndTime.Sub(r.Metadata.StartTime)
}

// Table returns the result for dataset.table, if it was processed.
func (r *Result) Table(dataset, table string) (TableResult, bool) {
	for _, tr := range r.Tables {
		if tr.Dataset == dataset && tr.Table == table {
			return tr, true
		}
	}
	return TableResult{}, false
}

// IsSuccess returns true if no table or dataset failed.
func (r *Result) IsSuccess() bool {
	return r.Metadata.Stats.Failed == 0 && len(r.Datasets) == 0
}

// Err joins every contained failure of the run, or returns nil.
func (r *Result) Err() error {
	var errs []error
	for _, d := range r.Datasets {
		errs = append(errs, d.Err)
	}
	for _, tr := range r.Tables {
		if tr.Err != nil {
			errs = append(errs, tr.Err)
		}
	}
	return errors.Join(errs...)
}

// Summary returns a human-readable summary of the result.
func (r *Result) Summary() string {
	s := r.Metadata.Stats
	if r.Metadata.DryRun {
		return fmt.Sprintf("Dry run: %d tables planned, %d field descriptions would change, %d failed",
			s.Planned, s.FieldsChanged, s.Failed)
	}
	return fmt.Sprintf("%d tables updated, %d unchanged, %d failed, %d field descriptions changed",
		s.Updated, s.Unchanged, s.Failed, s.FieldsChanged)
}
