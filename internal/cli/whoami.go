package cli

import (
	"errors"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func newWhoamiCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Ask the backend who the session belongs to",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, release, err := opts.manager()
			if err != nil {
				return err
			}
			defer release()

			if !m.Store().IsAuthenticated() {
				return errors.New("not signed in")
			}

			user, err := m.Client().Profile(cmd.Context())
			if err != nil {
				return errors.New(describeError(err))
			}

			pterm.Info.Printf("%s <%s> role=%s\n", user.Name, user.Email, user.Role)
			return nil
		},
	}
}
