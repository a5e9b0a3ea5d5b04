package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/votascan/votascan/app/indexer"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

var (
	cfgPath string
	rootCmd = &cobra.Command{
		Use:   "votascan-indexer",
		Short: "Ingests voting-round contract activity into the entity store",
	}

	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run the ingestion pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			app := indexer.Initialize(ctx, cfgPath)
			app.Start(ctx)
			return nil
		},
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(Version)
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "Path to config file")
	rootCmd.AddCommand(runCmd, versionCmd)
}

// Execute runs the root command tree.
func Execute() error {
	rootCmd.SilenceUsage = true

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	return nil
}
