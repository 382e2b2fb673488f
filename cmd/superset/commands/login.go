package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fivetwenty-io/superset-client/internal/config"
)

// NewLoginCommand creates the login command.
func NewLoginCommand() *cobra.Command {
	var (
		username string
		password string
		save     bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to Superset",
		Long: `Authenticate against the Superset login form and fetch the CSRF token bound
to the new session. The password is read from --password, SUPERSET_PASSWORD
or an interactive prompt.

The session cookie is kept in memory only, so this command verifies the
credentials but does not leave a session behind. Pass --login to get or post
to run a request inside a logged-in session.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			client, err := newClient()
			if err != nil {
				return err
			}

			username = readUsername(cmd, username)

			if password == "" {
				password, err = readPassword(cmd)
				if err != nil {
					return err
				}
			}

			start := time.Now()

			err = client.Login(ctx, username, password)
			if err != nil {
				printFailure(cmd, "login as %s", username)

				return err
			}

			printSuccess(cmd, "logged in as %s (%s)", username, elapsed(start))

			if save {
				err = saveUsername(username)
				if err != nil {
					return err
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password")
	cmd.Flags().BoolVar(&save, "save", false, "remember the username in the config file")

	return cmd
}

func saveUsername(username string) error {
	path, err := config.Path(viper.GetViper())
	if err != nil {
		return err
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	err = cfg.Set("username", username)
	if err != nil {
		return err
	}

	err = config.Save(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to save username: %w", err)
	}

	return nil
}
