package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// IntelType categorizes a competitor-intelligence row.
type IntelType string

const (
	IntelTypePricing IntelType = "pricing"
	IntelTypeProduct IntelType = "product"
	IntelTypeMarket  IntelType = "market"
)

// CompetitorIntel is an append-only row from the web-search refresh.
// Rows are read by the intel feed and blended into RAG context.
type CompetitorIntel struct {
	ID             string
	CompetitorName string
	IntelType      IntelType
	Content        string
	SourceURL      string
	CreatedAt      time.Time
}

// NewCompetitorIntel creates a new CompetitorIntel instance
func NewCompetitorIntel(id, competitorName string, intelType IntelType, content, sourceURL string, createdAt time.Time) *CompetitorIntel {
	return &CompetitorIntel{
		ID:             id,
		CompetitorName: competitorName,
		IntelType:      intelType,
		Content:        content,
		SourceURL:      sourceURL,
		CreatedAt:      createdAt,
	}
}

// ContentDigest returns a stable digest of the row content. Refresh
// inserts use it to keep identical results from duplicating rows.
func (c *CompetitorIntel) ContentDigest() string {
	sum := sha256.Sum256([]byte(c.Content))
	return hex.EncodeToString(sum[:])
}

// FeedTitle renders the display title used by the feed and citations.
func (c *CompetitorIntel) FeedTitle() string {
	return fmt.Sprintf("%s (%s)", c.CompetitorName, c.IntelType)
}

// ValidateCompetitorIntel validates a CompetitorIntel instance
func ValidateCompetitorIntel(c *CompetitorIntel) error {
	if c == nil {
		return fmt.Errorf("competitor intel cannot be nil")
	}

	if c.ID == "" {
		return fmt.Errorf("competitor intel ID is required")
	}

	if c.CompetitorName == "" {
		return fmt.Errorf("competitor intel CompetitorName is required")
	}

	if c.Content == "" {
		return fmt.Errorf("competitor intel Content is required")
	}

	if !isValidIntelType(c.IntelType) {
		return fmt.Errorf("competitor intel IntelType is invalid: %s", c.IntelType)
	}

	return nil
}

// isValidIntelType checks if an IntelType is valid
func isValidIntelType(t IntelType) bool {
	switch t {
	case IntelTypePricing, IntelTypeProduct, IntelTypeMarket:
		return true
	}
	return false
}
