package domain

// RetrievedDoc is one knowledge-base passage with a score relative to a
// specific query. The score is query-scoped, not intrinsic to the doc.
type RetrievedDoc struct {
	DocumentID string  `json:"document_id"`
	Title      string  `json:"title"`
	Section    string  `json:"section,omitempty"`
	Text       string  `json:"text"`
	Score      float64 `json:"score"`
}

// RetrievedSet is the ordered result of multi-variant retrieval after
// merge and MMR selection. Ordered by selection order, no duplicate ids.
type RetrievedSet struct {
	Docs []RetrievedDoc `json:"docs"`
}

func (s RetrievedSet) Empty() bool { return len(s.Docs) == 0 }

// DocumentIDs returns ids in selection order.
func (s RetrievedSet) DocumentIDs() []string {
	ids := make([]string, 0, len(s.Docs))
	for _, d := range s.Docs {
		ids = append(ids, d.DocumentID)
	}
	return ids
}

// JoinedText concatenates passage texts with a separator, for grounding
// checks and prompt assembly.
func (s RetrievedSet) JoinedText(sep string) string {
	out := ""
	for i, d := range s.Docs {
		if i > 0 {
			out += sep
		}
		out += d.Text
	}
	return out
}
