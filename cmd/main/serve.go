package main

import (
	"fmt"

	"dogceo/dashboard/internal/container"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newServeCmd(a *rootOptions) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the dashboard web server",
		Example: `  # Start server on the configured port
  dogdash serve

  # Start server on a custom port
  dogdash serve --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("port") {
				a.cfg.Server.Port = port
			}

			log.Info("Starting dog breed dashboard...")

			// Initialize container with all dependencies
			c, err := container.New(cmd.Context(), a.cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize container: %w", err)
			}
			defer c.Close()

			if err := c.Run(cmd.Context()); err != nil {
				return fmt.Errorf("application exited with error: %w", err)
			}

			log.Info("Application finished successfully")
			return nil
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8080, "Port to listen on")

	return cmd
}
