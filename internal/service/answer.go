package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/velora-hq/onboardai/internal/domain"
	"github.com/velora-hq/onboardai/internal/telemetry"
)

const (
	answerMaxTokens = 1024

	emptyQuestionAnswer = "Please ask a question about Velora."
	noInformationAnswer = "I couldn't find relevant information in the knowledge base. Try rephrasing or ask about Velora's product, team, or competitors."
	emptyAnswerNotice   = "I couldn't generate an answer. Please try rephrasing."
)

// CompletionClient defines the interface for text generation
type CompletionClient interface {
	GenerateCompletion(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// AnswerKnowledgeRepository defines the repository interface for retrieval
type AnswerKnowledgeRepository interface {
	SearchByEmbedding(ctx context.Context, embedding []float32, limit int) ([]*domain.KnowledgeItem, error)
}

// AnswerIntelRepository defines the repository interface for cached intel
type AnswerIntelRepository interface {
	ListRecent(ctx context.Context, limit int) ([]*domain.CompetitorIntel, error)
}

// LiveIntelSearcher augments answers with current web results. Optional.
type LiveIntelSearcher interface {
	SearchForContext(ctx context.Context, query string, maxItems int) []domain.ContextItem
}

// BriefGenerator produces the daily brief when a question asks for it.
type BriefGenerator interface {
	Generate(ctx context.Context) *domain.DailyBrief
}

// AnswerService runs the RAG pipeline: embed the question, retrieve
// nearby knowledge plus recent intel, assemble context, and synthesize
// an answer with citations. Synthesis has exactly two branches: the
// provider, or a deterministic concatenation fallback. No retries.
type AnswerService struct {
	completion CompletionClient
	embeddings *EmbeddingService
	knowledge  AnswerKnowledgeRepository
	intel      AnswerIntelRepository
	liveSearch LiveIntelSearcher
	briefs     BriefGenerator
	topK       int
	intelLimit int
}

func NewAnswerService(
	completion CompletionClient,
	embeddings *EmbeddingService,
	knowledge AnswerKnowledgeRepository,
	intel AnswerIntelRepository,
	liveSearch LiveIntelSearcher,
	briefs BriefGenerator,
	topK, intelLimit int,
) *AnswerService {
	if topK <= 0 {
		topK = 5
	}
	if intelLimit <= 0 {
		intelLimit = 5
	}
	return &AnswerService{
		completion: completion,
		embeddings: embeddings,
		knowledge:  knowledge,
		intel:      intel,
		liveSearch: liveSearch,
		briefs:     briefs,
		topK:       topK,
		intelLimit: intelLimit,
	}
}

var briefTriggers = []string{
	"today's brief", "todays brief", "daily brief", "give me the brief",
	"product brief", "generate brief", "create brief", "brief me",
}

func isBriefRequest(question string) bool {
	q := strings.ToLower(strings.TrimSpace(question))
	for _, trigger := range briefTriggers {
		if strings.Contains(q, trigger) {
			return true
		}
	}
	return false
}

// Ask answers a question over the knowledge base. The answer always
// comes back with citations for every context item that grounded it;
// degraded branches return fixed text rather than errors.
func (s *AnswerService) Ask(ctx context.Context, question string) (*domain.Answer, error) {
	ctx, span := telemetry.StartSpan(ctx, "AnswerService.Ask", telemetry.SpanAttributes{
		Operation: "ask",
	})
	defer span.End()

	q := strings.TrimSpace(question)
	if q == "" {
		return &domain.Answer{Text: emptyQuestionAnswer, Citations: []domain.Citation{}}, nil
	}

	if s.briefs != nil && isBriefRequest(q) {
		return &domain.Answer{Citations: []domain.Citation{}, Brief: s.briefs.Generate(ctx)}, nil
	}

	embedding := s.embeddings.EmbedQuery(ctx, q)

	items, err := s.knowledge.SearchByEmbedding(ctx, embedding, s.topK)
	if err != nil {
		return nil, fmt.Errorf("failed to search knowledge: %w", err)
	}

	contexts := make([]domain.ContextItem, 0, len(items)+s.intelLimit)
	for _, item := range items {
		contexts = append(contexts, KnowledgeContextItem(item))
	}
	contexts = append(contexts, s.competitorContext(ctx, q)...)

	citations := Citations(contexts)

	if len(contexts) == 0 {
		return &domain.Answer{Text: noInformationAnswer, Citations: []domain.Citation{}}, nil
	}

	if s.completion == nil {
		return &domain.Answer{Text: fallbackAnswer(contexts), Citations: citations}, nil
	}

	text, err := s.completion.GenerateCompletion(ctx, buildAnswerPrompt(q, contexts), answerMaxTokens)
	if err != nil {
		log.Printf("answer synthesis failed, using fallback: %v", err)
		return &domain.Answer{Text: fallbackAnswer(contexts), Citations: citations}, nil
	}
	text = strings.TrimSpace(text)
	if text == "" {
		text = emptyAnswerNotice
	}

	return &domain.Answer{Text: text, Citations: citations}, nil
}

// competitorContext gathers cached intel plus live web results. The
// live search runs for every question so answers stay current; its
// query is rewritten into competitive/market terms first.
func (s *AnswerService) competitorContext(ctx context.Context, question string) []domain.ContextItem {
	contexts := make([]domain.ContextItem, 0, s.intelLimit*2)

	rows, err := s.intel.ListRecent(ctx, s.intelLimit)
	if err != nil {
		log.Printf("failed to load cached intel for context: %v", err)
	}
	for _, row := range rows {
		contexts = append(contexts, IntelContextItem(row))
	}

	if s.liveSearch != nil {
		live := s.liveSearch.SearchForContext(ctx, EnhanceCompetitiveQuery(question), s.intelLimit)
		if len(live) > s.intelLimit {
			live = live[:s.intelLimit]
		}
		contexts = append(contexts, live...)
	}

	return contexts
}

// EnhanceCompetitiveQuery rewrites a user question into a market-focused
// search query, e.g. "What is Velora's main product?" becomes
// "AI customer support main product competition market alternatives".
func EnhanceCompetitiveQuery(question string) string {
	q := strings.ToLower(strings.TrimSpace(question))

	for _, filler := range []string{"what is", "what are", "who is", "velora's", "velora", "our", "the", "?"} {
		q = strings.ReplaceAll(q, filler, "")
	}
	q = strings.TrimSpace(q)

	switch {
	case strings.Contains(q, "product"):
		q = fmt.Sprintf("AI customer support %s competition market alternatives", q)
	case strings.Contains(q, "pricing") || strings.Contains(q, "cost") || strings.Contains(q, "price"):
		q = fmt.Sprintf("customer support software %s pricing comparison competitors", q)
	case strings.Contains(q, "feature"):
		q = fmt.Sprintf("AI customer support %s competitive analysis market", q)
	default:
		q = fmt.Sprintf("AI customer support %s market competition alternatives", q)
	}

	return strings.Join(strings.Fields(q), " ")
}

func buildAnswerPrompt(question string, contexts []domain.ContextItem) string {
	return fmt.Sprintf(`You are an onboarding assistant for Velora, an AI customer support startup.

Rules:
- Use ONLY the provided context. Do NOT list or dump raw sources.
- Write a concise answer that directly addresses the question in 5-10 lines (short paragraphs or 3-5 bullet points).
- Synthesize the information: summarize, compare, and answer the question. Do not repeat long snippets.
- Cite sources inline where relevant, e.g. [Notion: Product Strategy] or [Slack: #general].
- Answer the question asked; do not just repeat the context.

Context:
%s

Question: %s

Answer (5-10 lines, synthesized, with inline source citations):`, BuildContextBlob(contexts), question)
}

// fallbackAnswer builds a short deterministic synthesis from the top
// one or two context items when the provider is unavailable.
func fallbackAnswer(contexts []domain.ContextItem) string {
	c0 := contexts[0]
	answer := fmt.Sprintf("According to [%s: %s], %s", c0.Source, c0.Title, firstSentence(pickText(c0)))
	if len(contexts) > 1 {
		c1 := contexts[1]
		if s1 := firstSentence(pickText(c1)); s1 != "" {
			answer += fmt.Sprintf(" Additionally, [%s: %s] notes that %s", c1.Source, c1.Title, s1)
		}
	}
	return answer + "."
}

func pickText(c domain.ContextItem) string {
	if c.Snippet != "" {
		return c.Snippet
	}
	return c.Content
}
