package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// SyncStatusResponse represents the sync status API response.
type SyncStatusResponse struct {
	LastSyncAt *string `json:"last_sync_at"`
	NextSyncAt string  `json:"next_sync_at"`
}

// SyncTriggerResponse represents the sync trigger API response.
type SyncTriggerResponse struct {
	Status     string `json:"status"`
	Notion     int    `json:"notion"`
	GitHub     int    `json:"github"`
	Slack      int    `json:"slack"`
	Total      int    `json:"total"`
	LastSyncAt string `json:"last_sync_at"`
	NextSyncAt string `json:"next_sync_at"`
}

// StatusCmd creates the status command.
func StatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the knowledge sync schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd)
		},
	}
}

// SyncCmd creates the sync command.
func SyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Trigger a knowledge sync now",
		Long:  "Triggers an immediate sync of the connected integrations and prints per-source document counts.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSyncTrigger(cmd)
		},
	}
}

func runStatus(cmd *cobra.Command) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Get("/api/sync/status")
	if err != nil {
		return fmt.Errorf("status lookup failed: %w", err)
	}

	var status SyncStatusResponse
	if err := json.Unmarshal(resp.Data, &status); err != nil {
		return fmt.Errorf("failed to parse status: %w", err)
	}

	if status.LastSyncAt == nil {
		fmt.Println("Last sync: never")
	} else {
		fmt.Printf("Last sync: %s\n", *status.LastSyncAt)
	}
	fmt.Printf("Next sync: %s\n", status.NextSyncAt)
	return nil
}

func runSyncTrigger(cmd *cobra.Command) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Post("/api/sync/trigger", nil)
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	var result SyncTriggerResponse
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return fmt.Errorf("failed to parse sync result: %w", err)
	}

	fmt.Printf("Synced %d documents (notion=%d github=%d slack=%d)\n",
		result.Total, result.Notion, result.GitHub, result.Slack)
	fmt.Printf("Next sync: %s\n", result.NextSyncAt)
	return nil
}
