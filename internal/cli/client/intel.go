package client

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// IntelItem represents one cached competitor-intel entry.
type IntelItem struct {
	ID         string `json:"id"`
	Competitor string `json:"competitor"`
	Type       string `json:"type"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	SourceURL  string `json:"source_url,omitempty"`
	CreatedAt  string `json:"created_at"`
}

// IntelFeedResponse represents the intel feed API response.
type IntelFeedResponse struct {
	Items   []IntelItem `json:"items"`
	Cursor  string      `json:"cursor,omitempty"`
	HasMore bool        `json:"has_more"`
}

// IntelSearchHit represents one live search hit.
type IntelSearchHit struct {
	Title      string `json:"title"`
	Content    string `json:"content"`
	URL        string `json:"url,omitempty"`
	SourceName string `json:"source_name,omitempty"`
	PageAge    string `json:"page_age,omitempty"`
}

// IntelSearchResponse represents the live search API response.
type IntelSearchResponse struct {
	Web   []IntelSearchHit `json:"web"`
	News  []IntelSearchHit `json:"news"`
	Query string           `json:"query"`
}

// IntelRefreshResponse represents the intel refresh API response.
type IntelRefreshResponse struct {
	Status string `json:"status"`
	Added  int    `json:"added"`
}

// FeedCmd creates the feed command.
func FeedCmd() *cobra.Command {
	var (
		limit  int
		cursor string
	)

	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Show the competitor intel feed",
		Long:  "Lists cached competitor intel, newest first.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runFeed(cmd, limit, cursor, outputJSON)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of items")
	cmd.Flags().StringVar(&cursor, "cursor", "", "Pagination cursor from previous response")

	return cmd
}

// IntelSearchCmd creates the intel search command.
func IntelSearchCmd() *cobra.Command {
	var (
		count     int
		freshness string
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Run a live competitor search",
		Long:  "Runs an uncached web and news search via the intel provider.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runIntelSearch(cmd, args[0], count, freshness, outputJSON)
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 10, "Maximum number of hits")
	cmd.Flags().StringVar(&freshness, "freshness", "", "Result freshness window (day, week, month, year)")

	return cmd
}

// RefreshCmd creates the refresh command.
func RefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Refresh the competitor intel cache",
		Long:  "Searches for each tracked competitor and caches the new findings.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRefresh(cmd)
		},
	}
}

func runFeed(cmd *cobra.Command, limit int, cursor string, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	if cursor != "" {
		params.Set("cursor", cursor)
	}
	path := "/api/intel/feed"
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}

	resp, err := api.Get(path)
	if err != nil {
		return fmt.Errorf("feed lookup failed: %w", err)
	}

	var feed IntelFeedResponse
	if err := json.Unmarshal(resp.Data, &feed); err != nil {
		return fmt.Errorf("failed to parse feed: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(feed, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(feed.Items) == 0 {
		fmt.Println("No intel cached yet. Run 'refresh' first.")
		return nil
	}

	for i, item := range feed.Items {
		fmt.Printf("%d. %s\n", i+1, item.Title)
		fmt.Printf("   %s\n", truncateLine(item.Content, 120))
		if item.SourceURL != "" {
			fmt.Printf("   %s\n", item.SourceURL)
		}
		fmt.Printf("   %s\n", item.CreatedAt)
		if i < len(feed.Items)-1 {
			fmt.Println(strings.Repeat("-", 40))
		}
	}
	if feed.HasMore && feed.Cursor != "" {
		fmt.Printf("\nMore items available. Use --cursor %s\n", feed.Cursor)
	}

	return nil
}

func runIntelSearch(cmd *cobra.Command, query string, count int, freshness string, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	params := url.Values{}
	params.Set("q", query)
	if count > 0 {
		params.Set("count", strconv.Itoa(count))
	}
	if freshness != "" {
		params.Set("freshness", freshness)
	}

	resp, err := api.Get("/api/intel/search?" + params.Encode())
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	var result IntelSearchResponse
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return fmt.Errorf("failed to parse search results: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(result.Web) == 0 && len(result.News) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	if len(result.Web) > 0 {
		fmt.Printf("Web (%d):\n", len(result.Web))
		printSearchHits(result.Web)
	}
	if len(result.News) > 0 {
		if len(result.Web) > 0 {
			fmt.Println()
		}
		fmt.Printf("News (%d):\n", len(result.News))
		printSearchHits(result.News)
	}

	return nil
}

func runRefresh(cmd *cobra.Command) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Post("/api/intel/refresh", nil)
	if err != nil {
		return fmt.Errorf("refresh failed: %w", err)
	}

	var result IntelRefreshResponse
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return fmt.Errorf("failed to parse refresh result: %w", err)
	}

	fmt.Printf("Refreshed intel: %d new items\n", result.Added)
	return nil
}

func printSearchHits(hits []IntelSearchHit) {
	for i, hit := range hits {
		title := hit.Title
		if title == "" {
			title = "(untitled)"
		}
		if hit.SourceName != "" {
			fmt.Printf("%d. %s (%s)\n", i+1, title, hit.SourceName)
		} else {
			fmt.Printf("%d. %s\n", i+1, title)
		}
		if hit.Content != "" {
			fmt.Printf("   %s\n", truncateLine(hit.Content, 120))
		}
		if hit.URL != "" {
			fmt.Printf("   %s\n", hit.URL)
		}
	}
}

func truncateLine(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
