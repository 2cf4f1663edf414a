// Package auth loads the Google credentials shared by the Sheets and
// BigQuery clients.
package auth

import (
	"context"
	"time"

	"cloud.google.com/go/auth"
	"cloud.google.com/go/auth/credentials"

	"github.com/agentstation/catalogsync/internal/auth/adc"
	"github.com/agentstation/catalogsync/pkg/constants"
	"github.com/agentstation/catalogsync/pkg/errors"
)

// DefaultScopes are the scopes a sync run needs.
var DefaultScopes = []string{constants.ScopeSheetsReadOnly, constants.ScopeBigQuery}

// Options configures credential loading.
type Options struct {
	// CredentialsFile is a service account key file. Empty means ADC.
	CredentialsFile string
	Scopes          []string
	Timeout         time.Duration
}

// Load detects credentials. DetectDefault does not take a context, so it
// runs in a goroutine bounded by ctx and Options.Timeout.
func Load(ctx context.Context, opts Options) (*auth.Credentials, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	method := "adc"
	if opts.CredentialsFile != "" {
		method = adc.TypeServiceAccount
	}
	if len(opts.Scopes) == 0 {
		opts.Scopes = DefaultScopes
	}
	if opts.Timeout <= 0 {
		opts.Timeout = constants.CredentialsTimeout
	}

	type result struct {
		creds *auth.Credentials
		err   error
	}
	resultChan := make(chan result, 1)
	go func() {
		creds, err := credentials.DetectDefault(&credentials.DetectOptions{
			Scopes:          opts.Scopes,
			CredentialsFile: opts.CredentialsFile,
		})
		resultChan <- result{creds: creds, err: err}
	}()

	select {
	case res := <-resultChan:
		if res.err != nil {
			return nil, errors.NewAuthenticationError(method, opts.CredentialsFile,
				"no valid credentials found", res.err)
		}
		return res.creds, nil
	case <-time.After(opts.Timeout):
		return nil, errors.NewAuthenticationError(method, opts.CredentialsFile,
			"credential detection timed out", nil)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Check inspects credentials locally without network calls.
func Check(credentialsFile string) *adc.Details {
	return adc.BuildDetails(credentialsFile)
}
