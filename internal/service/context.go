package service

import (
	"fmt"
	"strings"

	"github.com/velora-hq/onboardai/internal/domain"
)

const (
	knowledgeSnippetLen = 400
	intelSnippetLen     = 300
	firstSentenceLen    = 200
)

// KnowledgeContextItem formats a knowledge item for answer synthesis.
func KnowledgeContextItem(item *domain.KnowledgeItem) domain.ContextItem {
	return domain.ContextItem{
		Source:  string(item.Source),
		Title:   item.Title(),
		Snippet: truncateSnippet(item.Content, knowledgeSnippetLen),
		Content: item.Content,
	}
}

// IntelContextItem formats a cached competitor-intel row for synthesis.
func IntelContextItem(intel *domain.CompetitorIntel) domain.ContextItem {
	return domain.ContextItem{
		Source:  "you_com",
		Title:   intel.FeedTitle(),
		Snippet: clampString(intel.Content, intelSnippetLen),
		Content: intel.Content,
	}
}

// BuildContextBlob concatenates context items into the labeled block
// fed to the generation provider.
func BuildContextBlob(items []domain.ContextItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, fmt.Sprintf("[Source: %s - %s]\n%s", item.Source, item.Title, item.Content))
	}
	return strings.Join(parts, "\n\n---\n\n")
}

// Citations projects context items into citation records.
func Citations(items []domain.ContextItem) []domain.Citation {
	citations := make([]domain.Citation, 0, len(items))
	for _, item := range items {
		citations = append(citations, item.Citation())
	}
	return citations
}

// truncateSnippet trims content to max characters, appending an
// ellipsis when it was cut.
func truncateSnippet(content string, max int) string {
	trimmed := strings.TrimSpace(content)
	if len(trimmed) <= max {
		return trimmed
	}
	return strings.TrimSpace(trimmed[:max]) + "..."
}

func clampString(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

// firstSentence returns the first sentence of text, or its first
// firstSentenceLen characters when no sentence boundary is found.
func firstSentence(text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ""
	}
	for _, end := range []string{". ", ".\n", "! ", "? "} {
		if i := strings.Index(trimmed, end); i != -1 {
			return strings.TrimSpace(trimmed[:i+1])
		}
	}
	if len(trimmed) > firstSentenceLen {
		return strings.TrimSpace(trimmed[:firstSentenceLen]) + "..."
	}
	return trimmed
}
