package cli

import (
	"ggarquitectos-site/internal/session"
	"ggarquitectos-site/internal/token"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func newStatusCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Display the local session",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, release, err := opts.manager()
			if err != nil {
				return err
			}
			defer release()

			pterm.DefaultSection.Println("Session Status")

			st := m.Store().State()
			if !st.Authenticated {
				pterm.Info.Println("Not signed in. " + reloadHint)
				return nil
			}

			return pterm.DefaultTable.WithHasHeader().WithData(statusTable(st, time.Now())).Render()
		},
	}
}

func statusTable(st session.State, now time.Time) pterm.TableData {
	data := pterm.TableData{
		{"FIELD", "VALUE"},
		{"User", st.User.Name},
		{"Email", st.User.Email},
		{"Role", st.User.Role},
	}

	expiresAt, ok := token.ExpiresAt(st.Token)
	switch {
	case !ok:
		data = append(data, []string{"Expires", "unknown"})
	case !expiresAt.After(now):
		data = append(data, []string{"Expires", "expired at " + expiresAt.Local().Format(time.RFC1123)})
	default:
		data = append(data, []string{"Expires", expiresAt.Local().Format(time.RFC1123) + " (in " + expiresAt.Sub(now).Round(time.Second).String() + ")"})
	}

	return data
}
