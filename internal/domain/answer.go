package domain

// Citation points a reader at the material an answer was grounded on.
// A pure projection of a context item: no policy decisions here.
type Citation struct {
	Source  string `json:"source"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// Answer is the result of the RAG pipeline for a single question.
type Answer struct {
	Text      string
	Citations []Citation
	Brief     *DailyBrief // set only when the question asked for the daily brief
}

// ContextItem is one retrieved piece of grounding for answer synthesis:
// either a knowledge item or a competitor-intel row.
type ContextItem struct {
	Source  string
	Title   string
	Snippet string
	Content string
}

// Citation projects the context item into its citation record.
func (c ContextItem) Citation() Citation {
	return Citation{
		Source:  c.Source,
		Title:   c.Title,
		Snippet: c.Snippet,
	}
}
