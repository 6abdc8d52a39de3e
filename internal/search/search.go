// Package search tokenises a query, scores every indexed page against it
// by cosine similarity over TF-IDF vectors (optionally boosted by
// PageRank), and produces a totally ordered result list (spec.md 4.H,
// 4.I).
package search

import (
	"fmt"
	"math"
	"sort"

	"gophersearch/internal/index"
	"gophersearch/internal/tokenize"
)

// Result is the public SearchResult shape from spec.md 6.
type Result struct {
	Title string
	Score float64
}

// ResultPlus is SearchResult plus the fields spec.md 6's SearchResultPlus
// adds.
type ResultPlus struct {
	Result
	URL      string
	PageRank float64
	Boosted  bool
}

// queryTerm is one token's ephemeral statistics within the query
// document. It mirrors index.DocTermStat's shape but owns no global
// entry and is discarded after a single search.
type queryTerm struct {
	count int
	idf   float64
}

// Search scores idx's pages against query and returns the top-k results
// per the §4.I total order. k is clamped to [0, total results].
func Search(idx *index.Index, query string, boost bool, k int) []Result {
	scored := scoreAll(idx, query, boost)
	sortScored(scored)
	scored = clamp(scored, k)

	out := make([]Result, len(scored))
	for i, s := range scored {
		out[i] = Result{Title: s.title, Score: s.score}
	}
	return out
}

// SearchPlus is Search with the richer per-result fields spec.md 6
// names.
func SearchPlus(idx *index.Index, query string, boost bool, k int) []ResultPlus {
	scored := scoreAll(idx, query, boost)
	sortScored(scored)
	scored = clamp(scored, k)

	out := make([]ResultPlus, len(scored))
	for i, s := range scored {
		out[i] = ResultPlus{
			Result:   Result{Title: s.title, Score: s.score},
			URL:      s.url,
			PageRank: s.pageRank,
			Boosted:  boost,
		}
	}
	return out
}

type scoredPage struct {
	title    string
	url      string
	pageRank float64
	score    float64
}

func scoreAll(idx *index.Index, query string, boost bool) []scoredPage {
	qTerms, qSize := buildQueryDocument(idx, query)

	pages := idx.PagesInOrder()
	out := make([]scoredPage, len(pages))
	for i, p := range pages {
		cos := cosineSimilarity(idx, qTerms, qSize, p)
		score := cos
		if boost {
			score *= p.PageRank
		}
		out[i] = scoredPage{title: p.Title, url: p.URL.String(), pageRank: p.PageRank, score: score}
	}
	return out
}

// buildQueryDocument tokenises query and attaches every token known to
// idx to an ephemeral term map, each carrying its occurrence count and
// the index's cached IDF for that word. Unknown tokens contribute
// nothing, per spec.md 4.H step 1.
func buildQueryDocument(idx *index.Index, query string) (map[string]queryTerm, int) {
	tokens := tokenize.Tokenize(query)
	counts := make(map[string]int)
	for _, t := range tokens {
		counts[t]++
	}

	terms := make(map[string]queryTerm, len(counts))
	for word, count := range counts {
		if !idx.HasWord(word) {
			continue // unknown token: contributes nothing
		}
		terms[word] = queryTerm{count: count, idf: idx.IDF(word)}
	}
	return terms, len(tokens)
}

func (q queryTerm) tf(querySize int) float64 {
	if querySize == 0 {
		return 0
	}
	return float64(q.count) / float64(querySize)
}

func (q queryTerm) tfidf(querySize int) float64 {
	return math.Log2(1+q.tf(querySize)) * q.idf
}

// cosineSimilarity implements spec.md 4.H step 2: both denominator sums
// range over the query's term universe only, with the right-hand sum
// further restricted to terms also present in the page.
func cosineSimilarity(idx *index.Index, qTerms map[string]queryTerm, qSize int, p *index.IndexedPage) float64 {
	var dot, qNormSq, dNormSq float64
	for word, qt := range qTerms {
		qWeight := qt.tfidf(qSize)
		qNormSq += qWeight * qWeight

		if _, ok := p.WordMap[word]; !ok {
			continue
		}
		dWeight := idx.TFIDF(p.URL, word)
		dNormSq += dWeight * dWeight
		dot += qWeight * dWeight
	}

	if qNormSq == 0 || dNormSq == 0 {
		return 0
	}
	return dot / (math.Sqrt(qNormSq) * math.Sqrt(dNormSq))
}

// sortScored applies spec.md 4.I's total order: score rounded to 3
// decimals (formatted "%.3f", compared as strings) descending, then
// title ascending.
func sortScored(scored []scoredPage) {
	sort.SliceStable(scored, func(i, j int) bool {
		si, sj := roundedScore(scored[i].score), roundedScore(scored[j].score)
		if si != sj {
			return si > sj
		}
		return scored[i].title < scored[j].title
	})
}

func roundedScore(score float64) string {
	return fmt.Sprintf("%.3f", score)
}

func clamp(scored []scoredPage, k int) []scoredPage {
	if k < 0 {
		k = 0
	}
	if k > len(scored) {
		k = len(scored)
	}
	return scored[:k]
}
