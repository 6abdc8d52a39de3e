package search

import "testing"

func TestSortScoredRoundingTieBreak(t *testing.T) {
	// spec.md 8 seed scenario 5: 0.12345 and 0.12350 both round to
	// "0.123"; title order decides, Apple before Banana.
	scored := []scoredPage{
		{title: "Banana", score: 0.12345},
		{title: "Apple", score: 0.12350},
	}
	sortScored(scored)
	if scored[0].title != "Apple" || scored[1].title != "Banana" {
		t.Errorf("got order %v, want Apple then Banana", titles(scored))
	}
}

func TestSortScoredDescendingByScore(t *testing.T) {
	scored := []scoredPage{
		{title: "Low", score: 0.1},
		{title: "High", score: 0.9},
	}
	sortScored(scored)
	if scored[0].title != "High" {
		t.Errorf("expected High first, got %v", titles(scored))
	}
}

func TestClampBounds(t *testing.T) {
	scored := []scoredPage{{title: "a"}, {title: "b"}, {title: "c"}}
	if got := len(clamp(scored, -1)); got != 0 {
		t.Errorf("negative k: got %d, want 0", got)
	}
	if got := len(clamp(scored, 100)); got != 3 {
		t.Errorf("k beyond length: got %d, want 3", got)
	}
	if got := len(clamp(scored, 2)); got != 2 {
		t.Errorf("k=2: got %d, want 2", got)
	}
}

func titles(scored []scoredPage) []string {
	out := make([]string, len(scored))
	for i, s := range scored {
		out[i] = s.title
	}
	return out
}
