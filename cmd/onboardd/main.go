package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/velora-hq/onboardai/internal/cli"
	"github.com/velora-hq/onboardai/internal/cli/admin"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "onboardd",
		Short: "OnboardAI daemon and admin CLI",
		Long:  "OnboardAI daemon for running the API server, syncing knowledge, and seeding the knowledge base",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd())
	rootCmd.AddCommand(admin.SyncCmd())
	rootCmd.AddCommand(admin.SeedCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
