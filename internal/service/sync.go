package service

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/velora-hq/onboardai/internal/domain"
	"github.com/velora-hq/onboardai/internal/telemetry"
)

const syncContentMax = 100000

// SyncedDocument is one document fetched from an integration before
// normalization and persistence.
type SyncedDocument struct {
	Source   domain.KnowledgeSource
	Content  string
	Metadata map[string]string
}

// ComposioGateway fetches documents from connected tools. The concrete
// client lives in internal/composio; nil means the integration is not
// configured and sync runs as a no-op that still advances the schedule.
type ComposioGateway interface {
	// Connections returns the first connected account ID per toolkit slug.
	Connections(ctx context.Context, toolkits []string) (map[string]string, error)
	NotionDocuments(ctx context.Context, accountID string) ([]SyncedDocument, error)
	GitHubDocuments(ctx context.Context, accountID string) ([]SyncedDocument, error)
	SlackMessages(ctx context.Context, accountID string) ([]SyncedDocument, error)
}

// SyncKnowledgeRepository defines the repository interface for ingestion
type SyncKnowledgeRepository interface {
	Create(ctx context.Context, item *domain.KnowledgeItem) error
	DeleteBySource(ctx context.Context, source domain.KnowledgeSource) (int64, error)
}

// SyncStateStore defines the repository interface for sync scheduling
type SyncStateStore interface {
	Get(ctx context.Context, sourceKey string) (*domain.SyncState, error)
	Upsert(ctx context.Context, state *domain.SyncState) error
}

// SyncService ingests documents from Notion, GitHub, and Slack via
// Composio. A source's documents are superseded wholesale on re-sync,
// not merged.
type SyncService struct {
	gateway    ComposioGateway
	knowledge  SyncKnowledgeRepository
	state      SyncStateStore
	embeddings *EmbeddingService
	interval   time.Duration
	now        func() time.Time
}

func NewSyncService(gateway ComposioGateway, knowledge SyncKnowledgeRepository, state SyncStateStore, embeddings *EmbeddingService, interval time.Duration) *SyncService {
	if interval <= 0 {
		interval = 6 * time.Hour
	}
	return &SyncService{
		gateway:    gateway,
		knowledge:  knowledge,
		state:      state,
		embeddings: embeddings,
		interval:   interval,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Run executes a full sync and advances the schedule. The schedule
// advances even when the integration is unconfigured or every fetch
// fails, so next_sync_at always moves forward.
func (s *SyncService) Run(ctx context.Context) (*domain.SyncResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "SyncService.Run", telemetry.SpanAttributes{
		Operation: "sync",
	})
	defer span.End()

	result := &domain.SyncResult{}

	if s.gateway != nil {
		accounts, err := s.gateway.Connections(ctx, []string{"notion", "github", "slack"})
		if err != nil {
			log.Printf("failed to list composio connections: %v", err)
		}

		if accountID, ok := accounts["notion"]; ok {
			result.Notion = s.syncSource(ctx, domain.KnowledgeSourceNotion, func() ([]SyncedDocument, error) {
				return s.gateway.NotionDocuments(ctx, accountID)
			})
		}
		if accountID, ok := accounts["github"]; ok {
			result.GitHub = s.syncSource(ctx, domain.KnowledgeSourceGitHub, func() ([]SyncedDocument, error) {
				return s.gateway.GitHubDocuments(ctx, accountID)
			})
		}
		if accountID, ok := accounts["slack"]; ok {
			result.Slack = s.syncSource(ctx, domain.KnowledgeSourceSlack, func() ([]SyncedDocument, error) {
				return s.gateway.SlackMessages(ctx, accountID)
			})
		}
	}

	now := s.now()
	result.LastSyncAt = now
	result.NextSyncAt = now.Add(s.interval)

	state := &domain.SyncState{
		SourceKey:  domain.SyncSourceComposio,
		LastSyncAt: &now,
		NextSyncAt: result.NextSyncAt,
		UpdatedAt:  now,
	}
	if err := s.state.Upsert(ctx, state); err != nil {
		return nil, fmt.Errorf("failed to record sync state: %w", err)
	}

	return result, nil
}

// syncSource replaces a source's documents with freshly fetched ones.
// Returns the number of items stored.
func (s *SyncService) syncSource(ctx context.Context, source domain.KnowledgeSource, fetch func() ([]SyncedDocument, error)) int {
	docs, err := fetch()
	if err != nil {
		log.Printf("failed to fetch %s documents: %v", source, err)
		return 0
	}
	if len(docs) == 0 {
		return 0
	}

	if _, err := s.knowledge.DeleteBySource(ctx, source); err != nil {
		log.Printf("failed to clear %s documents before sync: %v", source, err)
		return 0
	}

	added := 0
	for _, doc := range docs {
		content := NormalizeRawText(doc.Content)
		if len(content) < 3 {
			continue
		}
		if len(content) > syncContentMax {
			content = content[:syncContentMax]
		}

		item := domain.NewKnowledgeItem(
			uuid.NewString(),
			source,
			content,
			s.embeddings.EmbedDocument(ctx, content),
			doc.Metadata,
			s.now(),
		)
		if err := s.knowledge.Create(ctx, item); err != nil {
			log.Printf("failed to store %s document: %v", source, err)
			continue
		}
		added++
	}
	return added
}

// Status returns the sync schedule. Before the first sync it reports a
// synthesized next_sync_at one interval from now, so the dashboard
// always shows something.
func (s *SyncService) Status(ctx context.Context) (*domain.SyncState, error) {
	state, err := s.state.Get(ctx, domain.SyncSourceComposio)
	if err != nil {
		if err == domain.ErrSyncStateNotFound {
			now := s.now()
			return &domain.SyncState{
				SourceKey:  domain.SyncSourceComposio,
				NextSyncAt: now.Add(s.interval),
				UpdatedAt:  now,
			}, nil
		}
		return nil, err
	}
	return state, nil
}

var (
	spacesPattern   = regexp.MustCompile(`[ \t]+`)
	newlinesPattern = regexp.MustCompile(`\n{3,}`)
	noisePattern    = regexp.MustCompile(`(?im)^\s*(id|type|created_at|updated_at)\s*:\s*[^\n]+\s*$`)
)

// NormalizeRawText cleans raw tool output before storage: collapse
// whitespace, strip standalone API noise lines, dedupe lines by
// case-insensitive prefix.
func NormalizeRawText(text string) string {
	s := strings.TrimSpace(text)
	if s == "" {
		return ""
	}
	s = spacesPattern.ReplaceAllString(s, " ")
	s = newlinesPattern.ReplaceAllString(s, "\n\n")
	s = noisePattern.ReplaceAllString(s, " ")

	seen := make(map[string]struct{})
	var unique []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if len(line) <= 2 {
			continue
		}
		key := strings.ToLower(line)
		if len(key) > 200 {
			key = key[:200]
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, line)
	}
	return strings.TrimSpace(strings.Join(unique, "\n"))
}
