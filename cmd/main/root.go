package main

import (
	"fmt"
	"os"

	"dogceo/dashboard/internal/config"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	a := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "dogdash",
		Short: "Dog breed image dashboard",
		Long: `Dogdash browses the dog.ceo breed catalog.

It serves a live dashboard with a random image and the full image list for the
selected breed and sub breed, or browses the same views from the terminal.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			cfg, err := config.Load(a.configPath)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if err := setupLogging(cfg.Log); err != nil {
				return err
			}
			a.cfg = cfg

			log.Debug("Configuration loaded successfully")
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Path to a config file (default ./config.yaml if present)")

	cmd.AddCommand(newServeCmd(a))
	cmd.AddCommand(newBrowseCmd(a))

	return cmd
}

func setupLogging(cfg config.LogConfig) error {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	log.SetLevel(level)
	log.SetOutput(os.Stderr)

	switch cfg.Format {
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	case "text", "":
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	default:
		return fmt.Errorf("unknown log format %q", cfg.Format)
	}
	return nil
}
