package cli

import (
	"errors"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func newAccountCmd(opts *options) *cobra.Command {
	accountCmd := &cobra.Command{
		Use:   "account",
		Short: "Manage the signed in account",
	}

	var yes bool
	deleteCmd := &cobra.Command{
		Use:   "delete",
		Short: "Permanently delete the signed in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, release, err := opts.manager()
			if err != nil {
				return err
			}
			defer release()

			st := m.Store().State()
			if !st.Authenticated {
				return errors.New("not signed in")
			}

			if !yes {
				confirmed, err := pterm.DefaultInteractiveConfirm.Show("Delete the account for " + st.User.Email + "?")
				if err != nil {
					return err
				}
				if !confirmed {
					pterm.Info.Println("Account kept")
					return nil
				}
			}

			if err := m.Client().DeleteAccount(cmd.Context(), st.User.ID); err != nil {
				return errors.New(describeError(err))
			}

			pterm.Success.Println("Account deleted and signed out")
			return nil
		},
	}
	deleteCmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	accountCmd.AddCommand(deleteCmd)
	return accountCmd
}
