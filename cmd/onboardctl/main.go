package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/velora-hq/onboardai/internal/cli"
	"github.com/velora-hq/onboardai/internal/cli/client"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "onboardctl",
		Short: "OnboardAI CLI - Employee onboarding assistant",
		Long: `OnboardAI CLI talks to a running onboardai server.

Environment variables:
  ONBOARD_API_URL   API base URL (default: http://localhost:8080)`,
		Version: version,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env)")
	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(client.AskCmd())
	rootCmd.AddCommand(client.BriefCmd())
	rootCmd.AddCommand(client.StatusCmd())
	rootCmd.AddCommand(client.SyncCmd())
	rootCmd.AddCommand(client.FeedCmd())
	rootCmd.AddCommand(client.IntelSearchCmd())
	rootCmd.AddCommand(client.RefreshCmd())
	rootCmd.AddCommand(client.UsageCmd())

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
