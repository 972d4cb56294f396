package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/dmorozov/french-tutor-assistant/internal/core/domain"
	"github.com/dmorozov/french-tutor-assistant/internal/core/ports"
)

// Retriever runs multi-variant nearest-neighbor lookups, merges the
// candidate pool by document id and applies MMR selection.
type Retriever struct {
	embedder ports.Embedder
	index    ports.VectorIndex

	k              int
	finalCount     int
	mmrLambda      float64
	dedupThreshold float64
}

type RetrieverConfig struct {
	RetrievalK     int
	FinalDocCount  int
	MMRLambda      float64
	DedupThreshold float64
}

func NewRetriever(embedder ports.Embedder, index ports.VectorIndex, cfg RetrieverConfig) *Retriever {
	if cfg.RetrievalK <= 0 {
		cfg.RetrievalK = 10
	}
	if cfg.FinalDocCount <= 0 {
		cfg.FinalDocCount = 5
	}
	if cfg.MMRLambda <= 0 || cfg.MMRLambda > 1 {
		cfg.MMRLambda = 0.7
	}
	return &Retriever{
		embedder:       embedder,
		index:          index,
		k:              cfg.RetrievalK,
		finalCount:     cfg.FinalDocCount,
		mmrLambda:      cfg.MMRLambda,
		dedupThreshold: cfg.DedupThreshold,
	}
}

// Retrieve queries the index once per variant, keeps the maximum score
// when a document surfaces under several variants, and selects the
// final set greedily by MMR. An empty pool is a valid empty result, not
// an error.
func (r *Retriever) Retrieve(ctx context.Context, variants []string) (domain.RetrievedSet, error) {
	pool := make(map[string]domain.RetrievedDoc)
	for _, variant := range variants {
		vector, err := r.embedder.EmbedQuery(ctx, variant)
		if err != nil {
			return domain.RetrievedSet{}, domain.WrapError(domain.ErrRetrieval, "embed query variant", err)
		}

		docs, err := r.index.Search(ctx, vector, r.k)
		if err != nil {
			return domain.RetrievedSet{}, domain.WrapError(domain.ErrRetrieval, "index search", err)
		}
		for _, doc := range docs {
			if current, ok := pool[doc.DocumentID]; !ok || doc.Score > current.Score {
				pool[doc.DocumentID] = doc
			}
		}
	}

	candidates := make([]domain.RetrievedDoc, 0, len(pool))
	for _, doc := range pool {
		candidates = append(candidates, doc)
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].DocumentID < candidates[j].DocumentID
	})

	if r.dedupThreshold > 0 {
		candidates = dropNearDuplicates(candidates, r.dedupThreshold)
	}

	selected := selectMMR(candidates, r.mmrLambda, r.finalCount)
	return domain.RetrievedSet{Docs: selected}, nil
}

// dropNearDuplicates removes overlapping chunk windows of the same
// source: a candidate whose token Jaccard with an already-kept
// candidate reaches the threshold is discarded. Candidates arrive
// sorted by score, so the better-scored window survives.
func dropNearDuplicates(candidates []domain.RetrievedDoc, threshold float64) []domain.RetrievedDoc {
	kept := make([]domain.RetrievedDoc, 0, len(candidates))
	keptTokens := make([]map[string]struct{}, 0, len(candidates))

	for _, candidate := range candidates {
		tokens := toTokenSet(candidate.Text)
		duplicate := false
		for _, existing := range keptTokens {
			if tokenJaccard(tokens, existing) >= threshold {
				duplicate = true
				break
			}
		}
		if duplicate {
			continue
		}
		kept = append(kept, candidate)
		keptTokens = append(keptTokens, tokens)
	}
	return kept
}

// selectMMR greedily picks up to n documents maximizing
// lambda*relevance - (1-lambda)*max similarity to the already-selected
// set. With lambda=1 this degenerates to plain top-n relevance ranking.
// Document-document similarity is token Jaccard since the index returns
// payloads, not vectors.
func selectMMR(candidates []domain.RetrievedDoc, lambda float64, n int) []domain.RetrievedDoc {
	if len(candidates) == 0 || n <= 0 {
		return nil
	}
	if n > len(candidates) {
		n = len(candidates)
	}

	tokens := make([]map[string]struct{}, len(candidates))
	for i, c := range candidates {
		tokens[i] = toTokenSet(c.Text)
	}

	selected := make([]domain.RetrievedDoc, 0, n)
	selectedIdx := make([]int, 0, n)
	used := make([]bool, len(candidates))

	for len(selected) < n {
		bestIdx := -1
		bestScore := 0.0
		for i, candidate := range candidates {
			if used[i] {
				continue
			}
			diversityPenalty := 0.0
			for _, j := range selectedIdx {
				if sim := tokenJaccard(tokens[i], tokens[j]); sim > diversityPenalty {
					diversityPenalty = sim
				}
			}
			score := lambda*candidate.Score - (1-lambda)*diversityPenalty
			if bestIdx == -1 || score > bestScore {
				bestIdx = i
				bestScore = score
			}
		}
		if bestIdx == -1 {
			break
		}
		used[bestIdx] = true
		selectedIdx = append(selectedIdx, bestIdx)
		selected = append(selected, candidates[bestIdx])
	}
	return selected
}

func summarizeDocs(set domain.RetrievedSet) string {
	return fmt.Sprintf("%d documents", len(set.Docs))
}
