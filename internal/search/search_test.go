package search_test

import (
	"testing"
	"time"

	"gophersearch/internal/index"
	"gophersearch/internal/search"
	"gophersearch/internal/urlnorm"
)

func buildTestIndex(t *testing.T, pages map[string]string) *index.Index {
	t.Helper()
	var unprocessed []index.UnprocessedPage
	for rawURL, html := range pages {
		u, err := urlnorm.Parse(rawURL)
		if err != nil {
			t.Fatalf("parse %s: %v", rawURL, err)
		}
		unprocessed = append(unprocessed, index.UnprocessedPage{URL: u, RawText: html})
	}
	return index.Build("http://seed.test/", time.Time{}, unprocessed, index.Options{}, nil)
}

func TestSearchEmptyQueryReturnsAllByTitle(t *testing.T) {
	idx := buildTestIndex(t, map[string]string{
		"http://a.com/": `<title>Zebra</title><p>hello world</p>`,
		"http://b.com/": `<title>Apple</title><p>hello there</p>`,
		"http://c.com/": `<title>Mango</title><p>nothing special</p>`,
	})

	results := search.Search(idx, "", true, 10)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	want := []string{"Apple", "Mango", "Zebra"}
	for i, w := range want {
		if results[i].Title != w {
			t.Errorf("result[%d].Title = %q, want %q", i, results[i].Title, w)
		}
		if results[i].Score != 0 {
			t.Errorf("result[%d].Score = %v, want 0", i, results[i].Score)
		}
	}
}

func TestSearchTopKClamping(t *testing.T) {
	idx := buildTestIndex(t, map[string]string{
		"http://a.com/": `<title>A</title><p>dog</p>`,
		"http://b.com/": `<title>B</title><p>cat</p>`,
	})

	if got := len(search.Search(idx, "dog", false, 1)); got != 1 {
		t.Errorf("k=1: got %d results", got)
	}
	if got := len(search.Search(idx, "dog", false, 100)); got != 2 {
		t.Errorf("k=100: got %d results, want clamped to 2", got)
	}
	if got := len(search.Search(idx, "dog", false, 0)); got != 0 {
		t.Errorf("k=0: got %d results", got)
	}
}

func TestSearchBoostMonotonicityOnUniformRanks(t *testing.T) {
	idx := buildTestIndex(t, map[string]string{
		"http://a.com/": `<title>A</title><p>dog dog cat</p>`,
		"http://b.com/": `<title>B</title><p>dog cat cat</p>`,
	})
	// Uniform PageRank: force both pages to the same rank.
	for _, p := range idx.PagesInOrder() {
		p.PageRank = 0.5
	}

	unboosted := search.Search(idx, "dog cat", false, 10)
	boosted := search.Search(idx, "dog cat", true, 10)

	if len(unboosted) != len(boosted) {
		t.Fatalf("result count mismatch")
	}
	for i := range unboosted {
		if unboosted[i].Title != boosted[i].Title {
			t.Errorf("ordering differs at %d: %q vs %q", i, unboosted[i].Title, boosted[i].Title)
		}
	}
}

func TestSearchBoostReorder(t *testing.T) {
	// A and B both contain "dog" and "unique" with different term
	// ratios, so a two-term query gives B (evenly balanced, matching
	// the query's own even balance) a higher cosine than A. A is given
	// a much higher PageRank than B, chosen so that
	// cos(A)*rank(A) > cos(B)*rank(B) while cos(A) < cos(B).
	idx := buildTestIndex(t, map[string]string{
		"http://a.com/": `<title>A</title><p>unique dog dog dog</p>`,
		"http://b.com/": `<title>B</title><p>unique dog</p>`,
	})
	pages := idx.PagesInOrder()
	var a, b *index.IndexedPage
	for _, p := range pages {
		if p.Title == "A" {
			a = p
		} else {
			b = p
		}
	}
	a.PageRank = 0.9
	b.PageRank = 0.1

	unboosted := search.Search(idx, "dog unique", false, 10)
	if unboosted[0].Title != "B" {
		t.Fatalf("unboosted: expected B first (higher cosine), got %v", unboosted)
	}

	boosted := search.Search(idx, "dog unique", true, 10)
	if boosted[0].Title != "A" {
		t.Fatalf("boosted: expected A first (PageRank flips order), got %v", boosted)
	}
}

func TestSearchPlusIncludesURLAndPageRank(t *testing.T) {
	idx := buildTestIndex(t, map[string]string{
		"http://a.com/": `<title>A</title><p>dog</p>`,
	})
	results := search.SearchPlus(idx, "dog", true, 10)
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].URL != "http://a.com/" {
		t.Errorf("URL = %q", results[0].URL)
	}
	if !results[0].Boosted {
		t.Errorf("expected Boosted = true")
	}
}
