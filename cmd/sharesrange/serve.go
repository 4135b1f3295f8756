package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seenimoa/sharesrange/api"
	"github.com/seenimoa/sharesrange/internal/providers"
)

// --- Serve Command (HTTP Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("port") {
			cfg.API.Port, _ = cmd.Flags().GetInt("port")
		}

		p, err := providers.NewSEC(cfg, logger)
		if err != nil {
			logger.Error().Err(err).Msg("sec provider setup failed")
			return err
		}

		srv := api.NewServer(cfg, p, logger, version)
		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		return srv.ListenAndServe(cmd.Context(), addr)
	},
}

func init() {
	serveCmd.Flags().Int("port", 0, "listen port (default from api.port)")
}
