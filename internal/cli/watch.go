package cli

import (
	"errors"
	"ggarquitectos-site/internal/events"
	"ggarquitectos-site/internal/session"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func newWatchCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Stay attached to the session and report when it is about to end",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, release, err := opts.manager()
			if err != nil {
				return err
			}
			defer release()

			if !m.Store().IsAuthenticated() {
				return errors.New("not signed in")
			}

			ended := make(chan struct{})
			unsubscribe := m.Store().Subscribe(func(st session.State) {
				if !st.Authenticated {
					select {
					case <-ended:
					default:
						close(ended)
					}
				}
			})
			defer unsubscribe()

			defer events.Subscribe(m.Bus(), events.SessionExpiring, printExpiryWarning)()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			pterm.Info.Println("Watching session, press Ctrl+C to stop")

			select {
			case <-ended:
				pterm.Warning.Println("Session ended. " + reloadHint)
			case <-ctx.Done():
			}

			return nil
		},
	}
}
