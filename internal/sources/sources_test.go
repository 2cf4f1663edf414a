package sources_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"github.com/agentstation/catalogsync/internal/sources"
	"github.com/agentstation/catalogsync/pkg/errors"
)

func TestAPIError(t *testing.T) {
	assert.NoError(t, sources.APIError(sources.ServiceBigQuery, nil))
	assert.Equal(t, context.Canceled, sources.APIError(sources.ServiceBigQuery, context.Canceled))

	plain := errors.New("boom")
	assert.Equal(t, plain, sources.APIError(sources.ServiceSheets, plain))

	tests := []struct {
		code  int
		check func(error) bool
	}{
		{http.StatusNotFound, errors.IsNotFound},
		{http.StatusForbidden, errors.IsPermissionDenied},
		{http.StatusPreconditionFailed, errors.IsPrecondition},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.code), func(t *testing.T) {
			gerr := &googleapi.Error{Code: tt.code, Message: "nope"}
			err := sources.APIError(sources.ServiceBigQuery, fmt.Errorf("wrapped: %w", gerr))

			var apiErr *errors.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.code, apiErr.StatusCode)
			assert.Equal(t, "nope", apiErr.Message)
			assert.True(t, tt.check(err))
		})
	}

	err := sources.APIError(sources.ServiceSheets, &googleapi.Error{Code: 503})
	assert.ErrorIs(t, err, errors.ErrUnavailable)
}
