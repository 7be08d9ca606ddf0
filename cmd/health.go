package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/north-cloud/civic-classifier/internal/config"
)

var errUnhealthy = errors.New("one or more collaborators are unreachable")

func newHealthCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the configured captioning and transcription backends",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			comps, err := a.setup(cmd.Context())
			if err != nil {
				return err
			}

			results := comps.Health(cmd.Context())
			if err = writeJSON(cmd.OutOrStdout(), results); err != nil {
				return err
			}
			for _, r := range results {
				if r.Provider == config.ProviderSidecar && !r.Reachable {
					return errUnhealthy
				}
			}
			return nil
		},
	}
}
