package domain

import (
	"fmt"
	"time"
)

// KnowledgeSource identifies the system a knowledge item was ingested from.
type KnowledgeSource string

const (
	KnowledgeSourceNotion KnowledgeSource = "notion"
	KnowledgeSourceGitHub KnowledgeSource = "github"
	KnowledgeSourceSlack  KnowledgeSource = "slack"
)

// KnowledgeItem is a synced document fragment with an optional embedding.
// Items are append-only: an embedding, once present, always corresponds to
// the content stored alongside it. Re-syncs insert superseding rows rather
// than mutating existing ones.
type KnowledgeItem struct {
	ID        string
	Source    KnowledgeSource
	Content   string
	Embedding []float32 // nil when the embedding provider was unavailable at ingest time
	Metadata  map[string]string
	CreatedAt time.Time
}

// NewKnowledgeItem creates a new KnowledgeItem instance
func NewKnowledgeItem(id string, source KnowledgeSource, content string, embedding []float32, metadata map[string]string, createdAt time.Time) *KnowledgeItem {
	if metadata == nil {
		metadata = map[string]string{}
	}
	return &KnowledgeItem{
		ID:        id,
		Source:    source,
		Content:   content,
		Embedding: embedding,
		Metadata:  metadata,
		CreatedAt: createdAt,
	}
}

// Title derives a display title for citations from item metadata.
// Preference order matches the sync pipeline: title, repo_name, channel,
// then the source name; an author suffix is appended when known.
func (k *KnowledgeItem) Title() string {
	title := ""
	for _, key := range []string{"title", "repo_name", "channel"} {
		if v := k.Metadata[key]; v != "" {
			title = v
			break
		}
	}
	if title == "" {
		title = string(k.Source)
	}
	if author := k.Metadata["author"]; author != "" {
		title = fmt.Sprintf("%s (%s)", title, author)
	}
	return title
}

// ValidateKnowledgeItem validates a KnowledgeItem instance
func ValidateKnowledgeItem(k *KnowledgeItem) error {
	if k == nil {
		return fmt.Errorf("knowledge item cannot be nil")
	}

	if k.ID == "" {
		return fmt.Errorf("knowledge item ID is required")
	}

	if k.Content == "" {
		return fmt.Errorf("knowledge item Content is required")
	}

	if !isValidKnowledgeSource(k.Source) {
		return fmt.Errorf("knowledge item Source is invalid: %s", k.Source)
	}

	return nil
}

// isValidKnowledgeSource checks if a KnowledgeSource is valid
func isValidKnowledgeSource(s KnowledgeSource) bool {
	switch s {
	case KnowledgeSourceNotion, KnowledgeSourceGitHub, KnowledgeSourceSlack:
		return true
	}
	return false
}
