package client

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/velora-hq/onboardai/internal/domain"
)

// BriefArchiveResponse represents the brief archive API response.
type BriefArchiveResponse struct {
	Date string `json:"date"`
	URL  string `json:"url"`
}

// BriefCmd creates the brief command and its archive subcommand.
func BriefCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "brief",
		Short: "Generate today's product brief",
		Long:  "Generates the daily product brief from recent knowledge and competitor intel.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runBrief(cmd, outputJSON)
		},
	}

	cmd.AddCommand(briefArchiveCmd())

	return cmd
}

func briefArchiveCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Get a download link for an archived brief",
		Long:  "Prints a presigned download link for the archived brief of a given day (defaults to today).",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBriefArchive(cmd, date)
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Brief date in YYYY-MM-DD format (defaults to today)")

	return cmd
}

func runBrief(cmd *cobra.Command, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Post("/api/brief", nil)
	if err != nil {
		return fmt.Errorf("brief generation failed: %w", err)
	}

	var brief domain.DailyBrief
	if err := json.Unmarshal(resp.Data, &brief); err != nil {
		return fmt.Errorf("failed to parse brief: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(brief, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	printBrief(&brief)
	return nil
}

func runBriefArchive(cmd *cobra.Command, date string) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	path := "/api/brief/archive"
	if date != "" {
		path += "?date=" + url.QueryEscape(date)
	}

	resp, err := api.Get(path)
	if err != nil {
		return fmt.Errorf("archive lookup failed: %w", err)
	}

	var archive BriefArchiveResponse
	if err := json.Unmarshal(resp.Data, &archive); err != nil {
		return fmt.Errorf("failed to parse archive response: %w", err)
	}

	fmt.Printf("Brief for %s:\n%s\n", archive.Date, archive.URL)
	return nil
}

func printBrief(brief *domain.DailyBrief) {
	sections := []struct {
		name    string
		entries []string
	}{
		{"Summary", brief.Summary},
		{"Product", brief.Product},
		{"Sales", brief.Sales},
		{"Company", brief.Company},
		{"Onboarding", brief.Onboarding},
		{"Risks", brief.Risks},
	}

	printed := 0
	for _, section := range sections {
		if len(section.entries) == 0 {
			continue
		}
		if printed > 0 {
			fmt.Println()
		}
		fmt.Println(section.name)
		fmt.Println(strings.Repeat("-", len(section.name)))
		for _, entry := range section.entries {
			fmt.Printf("- %s\n", entry)
		}
		printed++
	}
	if printed == 0 {
		fmt.Println("Brief is empty.")
	}
}
