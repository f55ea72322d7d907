// Package youcom is a thin client for the You.com search APIs: the
// unified web+news search, plus the news-only Live News endpoint used
// as a fallback.
package youcom

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/velora-hq/onboardai/internal/service"
)

const (
	DefaultBaseURL     = "https://ydc-index.io/v1"
	DefaultNewsBaseURL = "https://api.ydc-index.io"

	requestTimeout = 15 * time.Second

	contentMax = 1500
	urlMax     = 512
)

type Client struct {
	baseURL     string
	newsBaseURL string
	apiKey      string
	http        *http.Client
}

func NewClient(apiKey, baseURL, newsBaseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if newsBaseURL == "" {
		newsBaseURL = DefaultNewsBaseURL
	}
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		newsBaseURL: strings.TrimRight(newsBaseURL, "/"),
		apiKey:      apiKey,
		http:        &http.Client{Timeout: requestTimeout},
	}
}

// Search runs the unified search and returns normalized web and news
// hits.
func (c *Client) Search(ctx context.Context, query string, count int, freshness string) (*service.LiveSearchResult, error) {
	if count > 20 {
		count = 20
	}
	params := url.Values{}
	params.Set("query", query)
	params.Set("count", strconv.Itoa(count))
	params.Set("freshness", freshness)

	data, err := c.get(ctx, c.baseURL+"/search", params)
	if err != nil {
		return nil, err
	}

	result := &service.LiveSearchResult{Web: []service.WebHit{}, News: []service.NewsHit{}, Query: query}
	results := asMap(data["results"])

	for i, entry := range asList(results["web"]) {
		if i >= count {
			break
		}
		hit := asMap(entry)
		if hit == nil || (asString(hit["title"]) == "" && asString(hit["description"]) == "" && len(asList(hit["snippets"])) == 0) {
			continue
		}
		result.Web = append(result.Web, normalizeWebHit(hit))
	}
	for i, entry := range asList(results["news"]) {
		if i >= count {
			break
		}
		hit := asMap(entry)
		if hit == nil || (asString(hit["title"]) == "" && asString(hit["description"]) == "") {
			continue
		}
		result.News = append(result.News, normalizeNewsHit(hit))
	}

	return result, nil
}

// SearchNews queries the Live News API. It may fail without early
// access; callers treat that as no news.
func (c *Client) SearchNews(ctx context.Context, query string, count int) ([]service.NewsHit, error) {
	if count > 40 {
		count = 40
	}
	params := url.Values{}
	params.Set("q", query)
	params.Set("count", strconv.Itoa(count))

	data, err := c.get(ctx, c.newsBaseURL+"/livenews", params)
	if err != nil {
		return nil, err
	}

	hits := make([]service.NewsHit, 0, count)
	news := asMap(data["news"])
	for i, entry := range asList(news["results"]) {
		if i >= count {
			break
		}
		hit := asMap(entry)
		if hit == nil || (asString(hit["title"]) == "" && asString(hit["description"]) == "") {
			continue
		}
		hits = append(hits, normalizeNewsHit(hit))
	}
	return hits, nil
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("you.com API returned %d", resp.StatusCode)
	}

	var data map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode you.com response: %w", err)
	}
	return data, nil
}

func normalizeWebHit(hit map[string]any) service.WebHit {
	content := asString(hit["description"])
	if content == "" {
		if snippets := asList(hit["snippets"]); len(snippets) > 0 {
			content = asString(snippets[0])
		}
	}
	if content == "" {
		content = asString(hit["title"])
	}
	if content == "" {
		content = asString(hit["url"])
	}

	return service.WebHit{
		Title:        strings.TrimSpace(asString(hit["title"])),
		Content:      clampContent(content),
		URL:          clampURL(asString(hit["url"])),
		ThumbnailURL: strings.TrimSpace(asString(hit["thumbnail_url"])),
	}
}

func normalizeNewsHit(hit map[string]any) service.NewsHit {
	content := asString(hit["description"])
	if content == "" {
		content = asString(hit["title"])
	}
	if content == "" {
		content = asString(hit["url"])
	}

	thumbnail := asString(hit["thumbnail_url"])
	if thumbnail == "" {
		thumbnail = asString(asMap(hit["thumbnail"])["src"])
	}

	age := asString(hit["page_age"])
	if age == "" {
		age = asString(hit["age"])
	}

	return service.NewsHit{
		Title:        strings.TrimSpace(asString(hit["title"])),
		Content:      clampContent(content),
		URL:          clampURL(asString(hit["url"])),
		ThumbnailURL: strings.TrimSpace(thumbnail),
		SourceName:   strings.TrimSpace(asString(hit["source_name"])),
		PageAge:      age,
	}
}

func clampContent(content string) string {
	if len(content) > contentMax {
		content = content[:contentMax] + "..."
	}
	return strings.TrimSpace(content)
}

func clampURL(u string) string {
	if len(u) > urlMax {
		return u[:urlMax]
	}
	return u
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func asList(v any) []any {
	l, _ := v.([]any)
	return l
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}
