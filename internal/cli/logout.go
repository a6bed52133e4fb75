package cli

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func newLogoutCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the local session",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, release, err := opts.manager()
			if err != nil {
				return err
			}
			defer release()

			if !m.Logout() {
				pterm.Info.Println("No active session")
				return nil
			}

			pterm.Success.Println("Signed out")
			return nil
		},
	}
}
