// Package sources holds the Google API adapters behind the sheets.Spreadsheet
// and reconciler.Catalog interfaces, and the error mapping they share.
package sources

import (
	"context"

	"google.golang.org/api/googleapi"

	"github.com/agentstation/catalogsync/pkg/errors"
)

// Service names used in APIError.
const (
	ServiceSheets   = "sheets"
	ServiceBigQuery = "bigquery"
)

// APIError converts a Google API error into an errors.APIError carrying the
// HTTP status, so callers can test it with errors.IsNotFound and friends.
// Context errors and non-API errors are returned unchanged.
func APIError(service string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return err
	}

	message := gerr.Message
	if message == "" {
		message = gerr.Error()
	}
	return &errors.APIError{
		Service:    service,
		StatusCode: gerr.Code,
		Message:    message,
		Err:        err,
	}
}
