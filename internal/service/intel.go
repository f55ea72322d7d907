package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/velora-hq/onboardai/internal/domain"
	"github.com/velora-hq/onboardai/internal/pagination"
	"github.com/velora-hq/onboardai/internal/telemetry"
)

const (
	refreshHitsPerCompetitor = 5
	intelContentMax          = 2000
	intelMinContentLen       = 20
	liveSearchDefaultCount   = 8
)

// WebHit is a normalized web search result.
type WebHit struct {
	Title        string `json:"title"`
	Content      string `json:"content"`
	URL          string `json:"url,omitempty"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
}

// NewsHit is a normalized news search result.
type NewsHit struct {
	Title        string `json:"title"`
	Content      string `json:"content"`
	URL          string `json:"url,omitempty"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	SourceName   string `json:"source_name,omitempty"`
	PageAge      string `json:"page_age,omitempty"`
}

// LiveSearchResult bundles web and news hits for one query.
type LiveSearchResult struct {
	Web   []WebHit  `json:"web"`
	News  []NewsHit `json:"news"`
	Query string    `json:"query"`
}

// YouGateway runs web/news searches. The concrete client lives in
// internal/youcom; nil means the integration is not configured and
// every search degrades to an empty result.
type YouGateway interface {
	Search(ctx context.Context, query string, count int, freshness string) (*LiveSearchResult, error)
	SearchNews(ctx context.Context, query string, count int) ([]NewsHit, error)
}

// IntelRepositoryStore defines the repository interface for intel persistence
type IntelRepositoryStore interface {
	Insert(ctx context.Context, intel *domain.CompetitorIntel) (bool, error)
	ListRecent(ctx context.Context, limit int) ([]*domain.CompetitorIntel, error)
	ListWithCursor(ctx context.Context, cursor *pagination.Cursor, limit int) (*pagination.PageResult[*domain.CompetitorIntel], error)
}

// trackedCompetitor pairs a competitor with the query used to refresh
// its intel and the type the results are filed under.
type trackedCompetitor struct {
	Name  string
	Type  domain.IntelType
	Query string
}

var trackedCompetitors = []trackedCompetitor{
	{"Intercom", domain.IntelTypePricing, "Intercom customer support software pricing news"},
	{"Zendesk", domain.IntelTypeProduct, "Zendesk AI customer service product updates"},
	{"Gorgias", domain.IntelTypeMarket, "Gorgias e-commerce support growth funding"},
}

// IntelService maintains the competitor-intelligence cache and serves
// the feed and live search.
type IntelService struct {
	gateway YouGateway
	repo    IntelRepositoryStore
	now     func() time.Time
}

func NewIntelService(gateway YouGateway, repo IntelRepositoryStore) *IntelService {
	return &IntelService{
		gateway: gateway,
		repo:    repo,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Refresh searches the web for each tracked competitor and caches the
// results. Duplicate findings are skipped via the content digest, so
// repeated refreshes only add what the source newly returns. Returns
// the number of rows stored.
func (s *IntelService) Refresh(ctx context.Context) (int, error) {
	if s.gateway == nil {
		return 0, nil
	}

	ctx, span := telemetry.StartSpan(ctx, "IntelService.Refresh", telemetry.SpanAttributes{
		Operation: "refresh",
	})
	defer span.End()

	added := 0
	for _, competitor := range trackedCompetitors {
		result, err := s.gateway.Search(ctx, competitor.Query, refreshHitsPerCompetitor, "month")
		if err != nil {
			log.Printf("intel search for %s failed: %v", competitor.Name, err)
			continue
		}
		for _, hit := range result.Web {
			content := strings.TrimSpace(hit.Content)
			if len(content) < intelMinContentLen {
				continue
			}
			if len(content) > intelContentMax {
				content = content[:intelContentMax] + "..."
			}

			intel := domain.NewCompetitorIntel(
				uuid.NewString(),
				competitor.Name,
				competitor.Type,
				content,
				hit.URL,
				s.now(),
			)
			inserted, err := s.repo.Insert(ctx, intel)
			if err != nil {
				return added, fmt.Errorf("failed to store intel: %w", err)
			}
			if inserted {
				added++
			}
		}
	}
	return added, nil
}

// Feed returns a page of cached intel, newest first.
func (s *IntelService) Feed(ctx context.Context, cursor *pagination.Cursor, limit int) (*pagination.PageResult[*domain.CompetitorIntel], error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.ListWithCursor(ctx, cursor, limit)
}

// ListRecent exposes the newest cached rows for answer context.
func (s *IntelService) ListRecent(ctx context.Context, limit int) ([]*domain.CompetitorIntel, error) {
	return s.repo.ListRecent(ctx, limit)
}

// LiveSearch runs an uncached web+news search. When the unified search
// returns no news, the dedicated news endpoint is tried as a fallback.
func (s *IntelService) LiveSearch(ctx context.Context, query string, count int, freshness string) (*LiveSearchResult, error) {
	query = strings.TrimSpace(query)
	result := &LiveSearchResult{Web: []WebHit{}, News: []NewsHit{}, Query: query}
	if query == "" || s.gateway == nil {
		return result, nil
	}
	if count < 1 {
		count = liveSearchDefaultCount
	} else if count > 20 {
		count = 20
	}
	if freshness == "" {
		freshness = "month"
	}

	searched, err := s.gateway.Search(ctx, query, count, freshness)
	if err != nil {
		return result, err
	}
	result.Web = searched.Web
	result.News = searched.News

	if len(result.News) == 0 {
		newsCount := count
		if newsCount > 15 {
			newsCount = 15
		}
		news, err := s.gateway.SearchNews(ctx, query, newsCount)
		if err != nil {
			log.Printf("news fallback search failed: %v", err)
		} else {
			result.News = news
		}
	}
	if result.Web == nil {
		result.Web = []WebHit{}
	}
	if result.News == nil {
		result.News = []NewsHit{}
	}

	return result, nil
}

// SearchForContext runs a live search and shapes the hits as context
// items for answer synthesis. Errors degrade to no items.
func (s *IntelService) SearchForContext(ctx context.Context, query string, maxItems int) []domain.ContextItem {
	if s.gateway == nil || strings.TrimSpace(query) == "" {
		return nil
	}
	if maxItems <= 0 {
		maxItems = 5
	}

	result, err := s.LiveSearch(ctx, query, maxItems, "month")
	if err != nil {
		log.Printf("live context search failed: %v", err)
		return nil
	}

	items := make([]domain.ContextItem, 0, maxItems)
	appendHit := func(title, content, sourceName string) bool {
		content = strings.TrimSpace(content)
		if content == "" {
			return len(items) < maxItems
		}
		source := "you_com_live"
		if sourceName != "" {
			source = fmt.Sprintf("you_com_live (%s)", sourceName)
		}
		if title == "" {
			title = "You.com result"
		}
		items = append(items, domain.ContextItem{
			Source:  source,
			Title:   title,
			Snippet: truncateSnippet(content, intelSnippetLen),
			Content: content,
		})
		return len(items) < maxItems
	}

	for _, hit := range result.Web {
		if !appendHit(strings.TrimSpace(hit.Title), hit.Content, "") {
			return items
		}
	}
	for _, hit := range result.News {
		if !appendHit(strings.TrimSpace(hit.Title), hit.Content, hit.SourceName) {
			return items
		}
	}
	return items
}
