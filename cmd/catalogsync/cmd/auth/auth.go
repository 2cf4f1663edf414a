// Package auth provides the auth command.
package auth

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/catalogsync/cmd/application"
	"github.com/agentstation/catalogsync/internal/auth/adc"
	"github.com/agentstation/catalogsync/internal/cmd/output"
	"github.com/agentstation/catalogsync/pkg/errors"
)

// NewCommand creates the auth command group.
func NewCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "auth",
		GroupID: "management",
		Short:   "Inspect Google credentials",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(NewStatusCommand(app))
	return cmd
}

// NewStatusCommand creates the auth status command. It inspects the
// credential file locally and makes no network calls.
func NewStatusCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show which credentials a sync would use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			details := app.Credentials()
			format := output.DetectFormat(app.OutputFormat())
			if err := output.FormatCredentials(cmd.OutOrStdout(), details, format); err != nil {
				return err
			}
			if details.State != adc.StateConfigured {
				return errors.NewAuthenticationError("adc", details.Path, details.ErrorMessage, errors.ErrCredentials)
			}
			return nil
		},
	}
}
