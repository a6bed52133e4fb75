package cli

import (
	"errors"
	"os"
	"os/signal"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func newLoginCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Sign in with Google",
		Long: `Opens the Google sign in page in your browser and waits for it to hand the
identity token back to a short lived callback server on the loopback interface.
The backend then exchanges it for a session.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, release, err := opts.manager()
			if err != nil {
				return err
			}
			defer release()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			m.OnAuthURL = func(url string) {
				pterm.Info.Printf("If your browser does not open, visit:\n%s\n", url)
			}

			spinner, _ := pterm.DefaultSpinner.Start("Waiting for Google sign in...")

			user, err := m.LoginWithGoogle(ctx)
			if err != nil {
				if spinner != nil {
					spinner.Fail("Sign in failed")
				}
				return errors.New(describeError(err))
			}

			if spinner != nil {
				spinner.Success("Signed in")
			}
			pterm.Success.Printf("Welcome, %s (%s)\n", user.Name, user.Email)
			return nil
		},
	}
}
