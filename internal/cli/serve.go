package cli

import (
	"ggarquitectos-site/internal/server"

	"github.com/spf13/cobra"
)

func newServeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the site and its API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}

			srv, err := server.New(cfg, logger)
			if err != nil {
				return err
			}

			return srv.Start()
		},
	}
}
