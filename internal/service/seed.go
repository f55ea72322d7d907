package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/velora-hq/onboardai/internal/domain"
)

// seedDocument is one entry in a seed file.
type seedDocument struct {
	Source   string            `json:"source"`
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata"`
}

// SeedService loads synthetic company documents into the knowledge
// store, embedding each when a provider is configured.
type SeedService struct {
	knowledge  SyncKnowledgeRepository
	embeddings *EmbeddingService
	now        func() time.Time
}

func NewSeedService(knowledge SyncKnowledgeRepository, embeddings *EmbeddingService) *SeedService {
	return &SeedService{
		knowledge:  knowledge,
		embeddings: embeddings,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// LoadFile reads a JSON array of documents and stores each one.
// Returns the number of items created.
func (s *SeedService) LoadFile(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read seed file: %w", err)
	}
	return s.Load(ctx, data)
}

// Load stores documents from raw seed JSON.
func (s *SeedService) Load(ctx context.Context, data []byte) (int, error) {
	var docs []seedDocument
	if err := json.Unmarshal(data, &docs); err != nil {
		return 0, fmt.Errorf("failed to parse seed file: %w", err)
	}

	added := 0
	for i, doc := range docs {
		content := NormalizeRawText(doc.Content)
		if len(content) < 3 {
			continue
		}

		item := domain.NewKnowledgeItem(
			uuid.NewString(),
			domain.KnowledgeSource(doc.Source),
			content,
			s.embeddings.EmbedDocument(ctx, content),
			doc.Metadata,
			s.now(),
		)
		if err := domain.ValidateKnowledgeItem(item); err != nil {
			return added, fmt.Errorf("seed document %d: %w", i, err)
		}
		if err := s.knowledge.Create(ctx, item); err != nil {
			return added, fmt.Errorf("failed to store seed document %d: %w", i, err)
		}
		added++
	}
	return added, nil
}
