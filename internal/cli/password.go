package cli

import (
	"errors"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func newPasswordCmd(opts *options) *cobra.Command {
	passwordCmd := &cobra.Command{
		Use:   "password",
		Short: "Reset an account password",
	}

	forgotCmd := &cobra.Command{
		Use:   "forgot <email>",
		Short: "Email a password reset link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, release, err := opts.manager()
			if err != nil {
				return err
			}
			defer release()

			message, err := m.Client().ForgotPassword(cmd.Context(), args[0])
			if err != nil {
				return errors.New(describeError(err))
			}

			pterm.Success.Println(message)
			return nil
		},
	}

	var newPassword string
	resetCmd := &cobra.Command{
		Use:   "reset <token>",
		Short: "Set a new password with a reset token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, release, err := opts.manager()
			if err != nil {
				return err
			}
			defer release()

			password := newPassword
			if password == "" {
				password, err = pterm.DefaultInteractiveTextInput.WithMask("*").Show("New password")
				if err != nil {
					return err
				}
			}
			if password == "" {
				return errors.New("a new password is required")
			}

			message, err := m.Client().ResetPassword(cmd.Context(), args[0], password)
			if err != nil {
				return errors.New(describeError(err))
			}

			pterm.Success.Println(message)
			return nil
		},
	}
	resetCmd.Flags().StringVar(&newPassword, "password", "", "New password (prompted for when omitted)")

	checkCmd := &cobra.Command{
		Use:   "check <token>",
		Short: "Check whether a reset token is still usable",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, release, err := opts.manager()
			if err != nil {
				return err
			}
			defer release()

			status, err := m.Client().CheckResetToken(cmd.Context(), args[0])
			if err != nil {
				return errors.New(describeError(err))
			}

			if !status.Valid {
				pterm.Warning.Println(status.Message)
				return nil
			}

			pterm.Success.Println("Reset token is valid")
			return nil
		},
	}

	passwordCmd.AddCommand(forgotCmd, resetCmd, checkCmd)
	return passwordCmd
}
