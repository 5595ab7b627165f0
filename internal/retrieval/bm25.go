package retrieval

import "math"

// BM25 parameters. k1 controls term-frequency saturation, b the degree
// of document-length normalization.
const (
	bm25K1 = 1.5
	bm25B  = 0.75
)

// bm25Rank scores every token list in docsTokens against the query
// tokens. Scores are computed over the given collection only: document
// frequencies and the average length come from docsTokens itself.
func bm25Rank(queryTokens []string, docsTokens [][]string) []float64 {
	n := len(docsTokens)
	if n == 0 {
		return nil
	}

	df := make(map[string]int)
	totalLen := 0
	for _, dt := range docsTokens {
		totalLen += len(dt)
		seen := make(map[string]struct{}, len(dt))
		for _, w := range dt {
			if _, ok := seen[w]; ok {
				continue
			}
			seen[w] = struct{}{}
			df[w]++
		}
	}

	avgdl := float64(totalLen) / float64(n)
	if avgdl == 0 {
		avgdl = 1.0
	}

	idf := func(w string) float64 {
		d := float64(df[w])
		return math.Log(1 + (float64(n)-d+0.5)/(d+0.5))
	}

	scores := make([]float64, n)
	for i, dt := range docsTokens {
		dl := len(dt)
		if dl == 0 {
			dl = 1
		}
		tf := make(map[string]int, len(dt))
		for _, w := range dt {
			tf[w]++
		}

		s := 0.0
		for _, w := range queryTokens {
			f := float64(tf[w])
			if f == 0 {
				continue
			}
			denom := f + bm25K1*(1-bm25B+bm25B*(float64(dl)/avgdl))
			s += idf(w) * (f * (bm25K1 + 1) / denom)
		}
		scores[i] = s
	}
	return scores
}
