// Package composio is a thin client for the Composio tool-execution
// API, used to pull Notion pages, GitHub READMEs, and Slack history
// into the knowledge base. Tool responses vary in shape across
// versions, so every extractor probes several keys.
package composio

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/velora-hq/onboardai/internal/domain"
	"github.com/velora-hq/onboardai/internal/service"
)

const (
	DefaultBaseURL = "https://backend.composio.dev/api/v3"

	requestTimeout = 45 * time.Second

	notionPageLimit   = 20
	githubRepoLimit   = 15
	slackChannelLimit = 50
	slackMessageLimit = 30
)

var slackTrackedChannels = map[string]struct{}{
	"general":     {},
	"product":     {},
	"engineering": {},
}

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: requestTimeout},
	}
}

// Connections returns the first connected account ID per toolkit slug.
func (c *Client) Connections(ctx context.Context, toolkits []string) (map[string]string, error) {
	params := url.Values{}
	if len(toolkits) > 0 {
		params.Set("toolkit_slugs", strings.Join(toolkits, ","))
	}

	data, err := c.get(ctx, "/connected_accounts", params)
	if err != nil {
		return nil, err
	}

	accounts := make(map[string]string)
	for _, entry := range asList(data["items"]) {
		item := asMap(entry)
		if item == nil {
			continue
		}
		slug := asString(asMap(item["toolkit"])["slug"])
		if slug == "" {
			slug = asString(item["toolkit"])
		}
		id := asString(item["id"])
		if slug == "" || id == "" {
			continue
		}
		if _, ok := accounts[slug]; !ok {
			accounts[slug] = id
		}
	}
	return accounts, nil
}

// NotionDocuments searches all pages and fetches each one's blocks.
func (c *Client) NotionDocuments(ctx context.Context, accountID string) ([]service.SyncedDocument, error) {
	out, err := c.executeTool(ctx, "NOTION_SEARCH_NOTION_PAGE", accountID, map[string]any{"query": ""})
	if err != nil {
		return nil, err
	}

	var pageIDs []string
	for _, entry := range asList(out["results"]) {
		if page := asMap(entry); page != nil {
			if id := asString(page["id"]); id != "" {
				pageIDs = append(pageIDs, id)
			}
		}
		if len(pageIDs) >= notionPageLimit {
			break
		}
	}

	docs := make([]service.SyncedDocument, 0, len(pageIDs))
	for _, pageID := range pageIDs {
		fetch, err := c.executeTool(ctx, "NOTION_FETCH_BLOCK_CONTENTS", accountID, map[string]any{"block_id": pageID})
		if err != nil || len(fetch) == 0 {
			fetch, _ = c.executeTool(ctx, "NOTION_FETCH_DATA", accountID, map[string]any{"resource_id": pageID})
		}

		content := notionExtractText(fetch, 0)
		if content == "" {
			content = fmt.Sprintf("Page %s", pageID)
		}
		title := content
		if len(title) > 200 {
			title = title[:200]
		}

		docs = append(docs, service.SyncedDocument{
			Source:  domain.KnowledgeSourceNotion,
			Content: content,
			Metadata: map[string]string{
				"page_id": pageID,
				"title":   title,
				"created": time.Now().UTC().Format(time.RFC3339),
			},
		})
	}
	return docs, nil
}

// GitHubDocuments lists repositories and fetches each README.
func (c *Client) GitHubDocuments(ctx context.Context, accountID string) ([]service.SyncedDocument, error) {
	var repos []any
	for _, slug := range []string{"GITHUB_REPOS_LIST_FOR_AUTHENTICATED_USER", "GITHUB_LIST_REPOS", "GITHUB_REPOS_LIST"} {
		out, err := c.executeTool(ctx, slug, accountID, map[string]any{"per_page": githubRepoLimit})
		if err != nil {
			continue
		}
		repos = normalizeRepoList(out)
		if len(repos) > 0 {
			break
		}
	}

	var docs []service.SyncedDocument
	for i, entry := range repos {
		if i >= githubRepoLimit {
			break
		}
		repo := asMap(entry)
		if repo == nil {
			continue
		}

		owner := asString(asMap(repo["owner"])["login"])
		if owner == "" {
			owner = asString(repo["owner_login"])
		}
		if owner == "" {
			owner = asString(repo["owner"])
		}
		name := asString(repo["name"])
		if name == "" {
			name = asString(repo["repo"])
		}
		if owner == "" || name == "" {
			continue
		}
		fullName := owner + "/" + name

		title := asString(repo["full_name"])
		if title == "" {
			title = fullName
		}

		var readme string
		for _, readmeSlug := range []string{"GITHUB_REPOS_GET_README", "GITHUB_GET_README"} {
			out, err := c.executeTool(ctx, readmeSlug, accountID, map[string]any{"owner": owner, "repo": name})
			if err != nil {
				continue
			}
			readme = decodeReadmeContent(out)
			if readme != "" {
				break
			}
		}

		var parts []string
		if description := strings.TrimSpace(asString(repo["description"])); description != "" {
			parts = append(parts, description)
		}
		if readme != "" {
			parts = append(parts, readme)
		} else {
			parts = append(parts, "Repository: "+fullName)
		}

		docs = append(docs, service.SyncedDocument{
			Source:  domain.KnowledgeSourceGitHub,
			Content: strings.Join(parts, "\n\n"),
			Metadata: map[string]string{
				"repo_name": name,
				"owner":     owner,
				"full_name": fullName,
				"title":     title,
				"created":   time.Now().UTC().Format(time.RFC3339),
			},
		})
	}
	return docs, nil
}

// SlackMessages fetches history for the tracked channels.
func (c *Client) SlackMessages(ctx context.Context, accountID string) ([]service.SyncedDocument, error) {
	var docs []service.SyncedDocument

	for _, listSlug := range []string{"SLACK_CONVERSATIONS_LIST", "SLACK_CHANNELS_LIST"} {
		out, err := c.executeTool(ctx, listSlug, accountID, map[string]any{"limit": slackChannelLimit})
		if err != nil {
			continue
		}

		channels := make(map[string]string)
		for _, entry := range slackList(out, "channels") {
			ch := asMap(entry)
			if ch == nil {
				continue
			}
			name := strings.ToLower(asString(ch["name"]))
			if name == "" {
				name = strings.ToLower(asString(ch["channel"]))
			}
			id := asString(ch["id"])
			if id == "" {
				id = asString(ch["channel_id"])
			}
			if _, tracked := slackTrackedChannels[name]; tracked && id != "" {
				channels[name] = id
			}
		}
		if len(channels) == 0 {
			continue
		}

		for name, id := range channels {
			docs = append(docs, c.channelMessages(ctx, accountID, name, id)...)
		}
		break
	}
	return docs, nil
}

func (c *Client) channelMessages(ctx context.Context, accountID, channelName, channelID string) []service.SyncedDocument {
	var docs []service.SyncedDocument
	for _, histSlug := range []string{"SLACK_CONVERSATIONS_HISTORY", "SLACK_CHANNEL_HISTORY"} {
		out, err := c.executeTool(ctx, histSlug, accountID, map[string]any{"channel": channelID, "limit": slackMessageLimit})
		if err != nil {
			continue
		}
		messages := slackList(out, "messages")
		for i, entry := range messages {
			if i >= slackMessageLimit {
				break
			}
			msg := asMap(entry)
			if msg == nil {
				continue
			}
			text := strings.TrimSpace(firstString(msg, "text", "content", "message"))
			if text == "" {
				continue
			}
			author := firstString(msg, "user", "username", "user_id")
			if author == "" {
				author = "unknown"
			}
			ts := firstString(msg, "ts", "timestamp")
			if ts == "" {
				ts = time.Now().UTC().Format(time.RFC3339)
			}

			docs = append(docs, service.SyncedDocument{
				Source:  domain.KnowledgeSourceSlack,
				Content: text,
				Metadata: map[string]string{
					"channel":   "#" + channelName,
					"author":    author,
					"timestamp": ts,
					"created":   time.Now().UTC().Format(time.RFC3339),
				},
			})
		}
		if len(messages) > 0 {
			break
		}
	}
	return docs
}

func (c *Client) get(ctx context.Context, path string, params url.Values) (map[string]any, error) {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

// executeTool runs a Composio tool and unwraps its data envelope.
func (c *Client) executeTool(ctx context.Context, toolSlug, accountID string, arguments map[string]any) (map[string]any, error) {
	body := map[string]any{"connected_account_id": accountID}
	if len(arguments) > 0 {
		body["arguments"] = arguments
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/tools/execute/"+toolSlug, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	data, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if inner := asMap(data["data"]); inner != nil {
		return inner, nil
	}
	return data, nil
}

func (c *Client) do(req *http.Request) (map[string]any, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("composio API returned %d", resp.StatusCode)
	}

	var data map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode composio response: %w", err)
	}
	return data, nil
}

// notionExtractText pulls readable text out of a Notion block/page
// response, recursing into children.
func notionExtractText(fetch map[string]any, depth int) string {
	if fetch == nil || depth > 4 {
		return ""
	}
	var parts []string

	if content := asString(fetch["content"]); content != "" {
		parts = append(parts, content)
	}
	for _, key := range []string{"title", "plain_text", "name"} {
		switch v := fetch[key].(type) {
		case string:
			if v != "" {
				parts = append(parts, v)
			}
		case []any:
			var joined []string
			for _, x := range v {
				joined = append(joined, asString(x))
			}
			parts = append(parts, strings.Join(joined, " "))
		}
	}
	if rt := fetch["rich_text"]; rt != nil {
		parts = append(parts, richTextString(rt))
	}

	for _, childrenKey := range []string{"children", "blocks", "results"} {
		for i, entry := range asList(fetch[childrenKey]) {
			if i >= 80 {
				break
			}
			child := asMap(entry)
			if child == nil {
				continue
			}
			if pt := asString(child["plain_text"]); pt != "" {
				parts = append(parts, pt)
			}
			if rt := child["rich_text"]; rt != nil {
				parts = append(parts, richTextString(rt))
			}
			childType := asString(child["type"])
			if childType != "" && childType != "divider" && childType != "breadcrumb" {
				parts = append(parts, notionExtractText(child, depth+1))
			}
		}
	}

	var nonEmpty []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, " ")
}

func richTextString(rt any) string {
	list, ok := rt.([]any)
	if !ok {
		return asString(rt)
	}
	var parts []string
	for _, entry := range list {
		if m := asMap(entry); m != nil {
			parts = append(parts, asString(m["plain_text"]))
		} else {
			parts = append(parts, asString(entry))
		}
	}
	return strings.Join(parts, " ")
}

// normalizeRepoList extracts the repository list from the response
// shapes different GitHub tool versions return.
func normalizeRepoList(out map[string]any) []any {
	for _, key := range []string{"repos", "data", "items", "repositories"} {
		if list := asList(out[key]); len(list) > 0 {
			return list
		}
	}
	if out["total_count"] != nil {
		return asList(out["items"])
	}
	return nil
}

// decodeReadmeContent unwraps a README payload, base64-decoding
// data-URI content.
func decodeReadmeContent(out map[string]any) string {
	raw := firstString(out, "content", "body", "text")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(raw, "data:") {
		encoded := raw
		if i := strings.Index(raw, ","); i != -1 {
			encoded = raw[i+1:]
		}
		if decoded, err := base64.StdEncoding.DecodeString(encoded); err == nil {
			return string(decoded)
		}
	}
	return raw
}

func slackList(out map[string]any, primary string) []any {
	for _, key := range []string{primary, "data", "items"} {
		if list := asList(out[key]); len(list) > 0 {
			return list
		}
	}
	return nil
}

func firstString(m map[string]any, keys ...string) string {
	for _, key := range keys {
		if s := asString(m[key]); s != "" {
			return s
		}
	}
	return ""
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
