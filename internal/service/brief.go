package service

import (
	"context"
	"encoding/json"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/velora-hq/onboardai/internal/domain"
	"github.com/velora-hq/onboardai/internal/telemetry"
)

const (
	briefKnowledgeLimit = 25
	briefIntelLimit     = 10
	briefContextMax     = 120000
	briefMaxTokens      = 2048
)

const (
	briefNoDataNotice     = "No recent data available. Run a Composio sync and refresh intel to generate a brief."
	briefNoProviderNotice = "Brief generation requires an OpenAI API key."
	briefEmptyNotice      = "Could not generate brief. Try again or check API key."
	briefInvalidNotice    = "Brief response was not valid. Try again."
	briefFailedNotice     = "Brief generation failed. Ensure the OpenAI API key is set and try again."
)

// BriefKnowledgeRepository defines the repository interface for brief input
type BriefKnowledgeRepository interface {
	ListRecent(ctx context.Context, limit int) ([]*domain.KnowledgeItem, error)
}

// BriefArchiver persists generated briefs to object storage. Optional.
type BriefArchiver interface {
	Store(ctx context.Context, day time.Time, payload []byte) error
	PresignedURL(ctx context.Context, day time.Time) (string, error)
}

// BriefService generates the structured daily product brief from recent
// knowledge and competitor intel. Every failure branch degrades to a
// notice brief instead of an error.
type BriefService struct {
	completion CompletionClient
	knowledge  BriefKnowledgeRepository
	intel      AnswerIntelRepository
	archive    BriefArchiver
	now        func() time.Time
}

func NewBriefService(completion CompletionClient, knowledge BriefKnowledgeRepository, intel AnswerIntelRepository, archive BriefArchiver) *BriefService {
	return &BriefService{
		completion: completion,
		knowledge:  knowledge,
		intel:      intel,
		archive:    archive,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Generate builds the daily brief. Raw knowledge and intel content is
// concatenated unlabeled; the provider normalizes and structures it.
func (s *BriefService) Generate(ctx context.Context) *domain.DailyBrief {
	ctx, span := telemetry.StartSpan(ctx, "BriefService.Generate", telemetry.SpanAttributes{
		Operation: "brief",
	})
	defer span.End()

	items, err := s.knowledge.ListRecent(ctx, briefKnowledgeLimit)
	if err != nil {
		log.Printf("failed to load knowledge for brief: %v", err)
	}
	intel, err := s.intel.ListRecent(ctx, briefIntelLimit)
	if err != nil {
		log.Printf("failed to load intel for brief: %v", err)
	}

	blob := rawBriefContext(items, intel)
	if blob == "" {
		return domain.NoticeBrief(briefNoDataNotice)
	}
	if s.completion == nil {
		return domain.NoticeBrief(briefNoProviderNotice)
	}
	if len(blob) > briefContextMax {
		blob = blob[:briefContextMax]
	}

	text, err := s.completion.GenerateCompletion(ctx, buildBriefPrompt(blob), briefMaxTokens)
	if err != nil {
		log.Printf("brief synthesis failed: %v", err)
		return domain.NoticeBrief(briefFailedNotice)
	}
	if strings.TrimSpace(text) == "" {
		return domain.NoticeBrief(briefEmptyNotice)
	}

	brief, ok := parseBriefJSON(text)
	if !ok {
		return domain.NoticeBrief(briefInvalidNotice)
	}

	s.archiveBrief(ctx, brief)
	return brief
}

// ArchiveURL returns a presigned link to the archived brief for a day.
func (s *BriefService) ArchiveURL(ctx context.Context, day time.Time) (string, error) {
	if s.archive == nil {
		return "", domain.ErrBriefNotArchived
	}
	url, err := s.archive.PresignedURL(ctx, day)
	if err != nil {
		return "", domain.ErrBriefNotArchived
	}
	return url, nil
}

func (s *BriefService) archiveBrief(ctx context.Context, brief *domain.DailyBrief) {
	if s.archive == nil {
		return
	}
	payload, err := json.Marshal(brief)
	if err != nil {
		return
	}
	// Best effort: a failed archive never degrades the brief itself.
	if err := s.archive.Store(ctx, s.now(), payload); err != nil {
		log.Printf("failed to archive brief: %v", err)
	}
}

func rawBriefContext(items []*domain.KnowledgeItem, intel []*domain.CompetitorIntel) string {
	parts := make([]string, 0, len(items)+len(intel))
	for _, item := range items {
		if content := strings.TrimSpace(item.Content); content != "" {
			parts = append(parts, content)
		}
	}
	for _, row := range intel {
		if content := strings.TrimSpace(row.Content); content != "" {
			parts = append(parts, content)
		}
	}
	return strings.Join(parts, "\n\n---\n\n")
}

func buildBriefPrompt(blob string) string {
	return `You are an AI that generates a clean daily product brief from raw, unstructured tool outputs (e.g., Composio extractions, internal tools, Slack, Notion, web results).

The input will change every time and may be messy, incomplete, duplicated, or partially cut off.

Your job is to:
1. Normalize and clean the raw text (fix fragments, remove noise, deduplicate).
2. Extract only factual, decision-relevant updates.
3. Infer structure when the input is unstructured.
4. Rewrite everything in clear, concise, professional product-brief language.
5. Group related facts and merge overlapping points.

Output the final brief as a single JSON object with exactly these keys (use empty arrays for missing sections):
- summary: array of 3-5 strings (most important leadership-level takeaways)
- product: array of strings (shipping updates; performance/reliability; bugs/incidents; max ~5)
- sales: array of strings (pipeline; customer objections; GTM/revenue; max ~5)
- company: array of strings (strategy; positioning; competitive landscape; max ~5)
- onboarding: array of strings (onboarding process; success metrics; common issues; max ~5)
- risks: array of strings (product; market/competitive; execution/operational; max ~5)

Rules:
- Do NOT mention sources (e.g., Slack, Notion, web).
- Do NOT quote raw text; rewrite in your own words.
- If information is missing for a section, use an empty array [] for that section.
- If multiple items conflict, surface the conflict clearly in one bullet.
- Keep each section scannable and concise (max ~5 bullets per section).
- Prioritize what leadership would care about today.
- Return ONLY valid JSON, no markdown code fence or extra text.

Raw context (do not mention these sources in the brief):

` + blob + `

Respond with a single JSON object only (keys: summary, product, sales, company, onboarding, risks).`
}

var briefFencePattern = regexp.MustCompile("(?s)^```(?:json)?\\s*\n?(.*?)\n?```\\s*$")

// parseBriefJSON parses the model output, tolerating a markdown code
// fence. Non-list section values are dropped, entries are trimmed.
func parseBriefJSON(text string) (*domain.DailyBrief, bool) {
	raw := strings.TrimSpace(text)
	if raw == "" {
		return nil, false
	}
	if m := briefFencePattern.FindStringSubmatch(raw); m != nil {
		raw = strings.TrimSpace(m[1])
	}

	var parsed map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, false
	}

	brief := domain.NewDailyBrief()
	brief.Summary = briefSection(parsed, "summary")
	brief.Product = briefSection(parsed, "product")
	brief.Sales = briefSection(parsed, "sales")
	brief.Company = briefSection(parsed, "company")
	brief.Onboarding = briefSection(parsed, "onboarding")
	brief.Risks = briefSection(parsed, "risks")
	return brief, true
}

func briefSection(parsed map[string]json.RawMessage, key string) []string {
	raw, ok := parsed[key]
	if !ok {
		return []string{}
	}
	var entries []string
	if err := json.Unmarshal(raw, &entries); err != nil {
		return []string{}
	}
	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		if trimmed := strings.TrimSpace(entry); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
