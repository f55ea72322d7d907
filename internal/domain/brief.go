package domain

// DailyBrief is the structured product brief generated from recent
// knowledge and competitor intel. Sections are plain-text bullets;
// missing sections are empty slices, never nil, so the JSON shape is
// stable for the frontend.
type DailyBrief struct {
	Summary    []string `json:"summary"`
	Product    []string `json:"product"`
	Sales      []string `json:"sales"`
	Company    []string `json:"company"`
	Onboarding []string `json:"onboarding"`
	Risks      []string `json:"risks"`
}

// NewDailyBrief returns a brief with all sections initialized.
func NewDailyBrief() *DailyBrief {
	return &DailyBrief{
		Summary:    []string{},
		Product:    []string{},
		Sales:      []string{},
		Company:    []string{},
		Onboarding: []string{},
		Risks:      []string{},
	}
}

// NoticeBrief returns a brief whose summary carries a single status
// line, with all other sections empty. Used for the degraded branches
// (no data, no provider, invalid model output).
func NoticeBrief(notice string) *DailyBrief {
	b := NewDailyBrief()
	b.Summary = []string{notice}
	return b
}

// Empty reports whether the brief has no content in any section.
func (b *DailyBrief) Empty() bool {
	return len(b.Summary) == 0 && len(b.Product) == 0 && len(b.Sales) == 0 &&
		len(b.Company) == 0 && len(b.Onboarding) == 0 && len(b.Risks) == 0
}
