// Package cli implements the archsite command line.
package cli

import (
	"fmt"
	"ggarquitectos-site/internal/auth"
	"ggarquitectos-site/internal/config"
	"ggarquitectos-site/internal/events"
	"ggarquitectos-site/internal/logging"
	"ggarquitectos-site/internal/version"
	"log/slog"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

const (
	EnvConfigPath = "ARCHSITE_CONFIG"
	defaultConfig = "config.yaml"
)

type options struct {
	configPath string
}

// NewRootCmd builds the archsite command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "archsite",
		Short: "G&G Arquitectos site server and session client",
		Long: `archsite serves the G&G Arquitectos site and manages the client session used
against its backend: Google sign in, session status, expiry watching and account
maintenance.`,
		Version:      version.GetFullVersion(),
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if !cmd.Flags().Changed("config") {
				if path := os.Getenv(EnvConfigPath); path != "" {
					opts.configPath = path
				}
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", defaultConfig, "Path to the config file (also set via "+EnvConfigPath+")")

	rootCmd.AddCommand(
		newServeCmd(opts),
		newLoginCmd(opts),
		newLogoutCmd(opts),
		newStatusCmd(opts),
		newWhoamiCmd(opts),
		newWatchCmd(opts),
		newPasswordCmd(opts),
		newAccountCmd(opts),
		newVersionCmd(),
	)

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

func (o *options) load() (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadConfig(o.configPath)
	if err != nil {
		return nil, nil, err
	}

	return cfg, logging.New(cfg.Log, os.Stderr), nil
}

// manager loads config and builds a session manager that prints forced logout
// notices as they happen. The returned func releases it.
func (o *options) manager() (*auth.Manager, func(), error) {
	cfg, logger, err := o.load()
	if err != nil {
		return nil, nil, err
	}

	m, err := auth.NewManager(cfg, logger, auth.ManagerOptions{})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to start session: %w", err)
	}

	unsubscribe := events.Subscribe(m.Bus(), events.ForcedLogout, printForcedLogout)

	return m, func() {
		unsubscribe()
		m.Close()
	}, nil
}
