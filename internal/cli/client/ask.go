package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/velora-hq/onboardai/internal/domain"
)

// AskRequest represents the ask API request.
type AskRequest struct {
	Question string `json:"question"`
}

// AskResponse represents the ask API response.
type AskResponse struct {
	Answer    string             `json:"answer"`
	Citations []domain.Citation  `json:"citations"`
	Brief     *domain.DailyBrief `json:"brief,omitempty"`
}

// AskCmd creates the ask command.
func AskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask the onboarding assistant a question",
		Long:  "Asks a natural-language question over the synced company knowledge and prints the answer with its citations.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runAsk(cmd, args[0], outputJSON)
		},
	}

	return cmd
}

func runAsk(cmd *cobra.Command, question string, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Post("/api/ask", AskRequest{Question: question})
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	var askResp AskResponse
	if err := json.Unmarshal(resp.Data, &askResp); err != nil {
		return fmt.Errorf("failed to parse answer: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(askResp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if askResp.Brief != nil {
		printBrief(askResp.Brief)
		return nil
	}

	fmt.Println(askResp.Answer)
	if len(askResp.Citations) > 0 {
		fmt.Printf("\nSources:\n")
		for i, citation := range askResp.Citations {
			title := citation.Title
			if title == "" {
				title = "(untitled)"
			}
			fmt.Printf("%d. %s [%s]\n", i+1, title, citation.Source)
			if citation.Snippet != "" {
				fmt.Printf("   %s\n", citation.Snippet)
			}
		}
	}

	return nil
}
