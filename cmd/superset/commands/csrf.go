package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// NewCSRFCommand creates the csrf command.
func NewCSRFCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "csrf",
		Short: "Fetch a CSRF token",
		Long:  "Initialize the client against the configured Superset host and print its CSRF token",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			client, err := newClient()
			if err != nil {
				return err
			}

			start := time.Now()

			token, err := client.Initialize(ctx, force)
			if err != nil {
				printFailure(cmd, "fetching CSRF token from %s", client.ResolveURL("", "", ""))

				return fmt.Errorf("failed to fetch CSRF token: %w", err)
			}

			printSuccess(cmd, "CSRF token ready (%s, %s)", client.State(), elapsed(start))

			return renderValue(cmd.OutOrStdout(), map[string]interface{}{
				"csrf_token":    token,
				"authenticated": client.IsAuthenticated(),
			})
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "fetch a new token even if one is configured")

	return cmd
}
