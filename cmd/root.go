package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/siteiq/siteiq/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "siteiq",
	Short: "Location intelligence pipeline",
	Long:  "Geocodes free-text locations, runs concurrent demographic, competition, and market-gap analyses against the warehouse, and synthesizes a go/no-go site report.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
