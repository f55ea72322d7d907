package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// UsageOwner represents one hosting workspace owner.
type UsageOwner struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// UsageService represents one hosted service.
type UsageService struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
	URL  string `json:"url,omitempty"`
}

// UsageBandwidth represents bandwidth metrics for one service.
type UsageBandwidth struct {
	ServiceID   string         `json:"serviceId"`
	ServiceName string         `json:"serviceName"`
	Type        string         `json:"type,omitempty"`
	Metrics     map[string]any `json:"metrics,omitempty"`
	Error       string         `json:"error,omitempty"`
}

// UsageResponse represents the hosting usage API response.
type UsageResponse struct {
	OK        bool             `json:"ok"`
	Error     string           `json:"error,omitempty"`
	Owners    []UsageOwner     `json:"owners"`
	Services  []UsageService   `json:"services"`
	Bandwidth []UsageBandwidth `json:"bandwidth"`
}

// UsageCmd creates the usage command.
func UsageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "usage",
		Short: "Show hosting usage metrics",
		Long:  "Lists the Render workspace services and their bandwidth usage.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runUsage(cmd, outputJSON)
		},
	}

	return cmd
}

func runUsage(cmd *cobra.Command, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Get("/api/usage")
	if err != nil {
		return fmt.Errorf("usage lookup failed: %w", err)
	}

	var usage UsageResponse
	if err := json.Unmarshal(resp.Data, &usage); err != nil {
		return fmt.Errorf("failed to parse usage: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(usage, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if !usage.OK {
		fmt.Printf("Usage unavailable: %s\n", usage.Error)
		return nil
	}

	for _, owner := range usage.Owners {
		fmt.Printf("Workspace: %s (%s)\n", owner.Name, owner.ID)
	}
	if len(usage.Services) == 0 {
		fmt.Println("No services found.")
		return nil
	}

	fmt.Printf("\nServices (%d):\n", len(usage.Services))
	for i, svc := range usage.Services {
		fmt.Printf("%d. %s", i+1, svc.Name)
		if svc.Type != "" {
			fmt.Printf(" [%s]", svc.Type)
		}
		fmt.Println()
		if svc.URL != "" {
			fmt.Printf("   %s\n", svc.URL)
		}
	}

	if len(usage.Bandwidth) > 0 {
		fmt.Printf("\nBandwidth:\n")
		for _, bw := range usage.Bandwidth {
			if bw.Error != "" {
				fmt.Printf("- %s: %s\n", bw.ServiceName, bw.Error)
				continue
			}
			fmt.Printf("- %s: %d metric series\n", bw.ServiceName, len(bw.Metrics))
		}
	}

	return nil
}
