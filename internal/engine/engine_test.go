package engine_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"gophersearch/internal/crawl"
	"gophersearch/internal/engine"
	"gophersearch/internal/urlnorm"
)

type fakeFetcher struct {
	pages map[string]string
}

func (f *fakeFetcher) Fetch(_ context.Context, u urlnorm.NormalURL) (string, error) {
	body, ok := f.pages[u.String()]
	if !ok {
		return "", errors.New("404")
	}
	return body, nil
}

func newTestEngine(t *testing.T, pages map[string]string) *engine.Engine {
	t.Helper()
	var stages []string
	e := engine.New(&fakeFetcher{pages: pages}, engine.Config{
		Crawl:        crawl.Config{PageCap: 10, MaxRetries: 1},
		SnapshotPath: filepath.Join(t.TempDir(), "crawl.dat"),
	}, func(stage string) { stages = append(stages, stage) })
	return e
}

func TestEngineCrawlThenSearch(t *testing.T) {
	e := newTestEngine(t, map[string]string{
		"http://a.com/": `<title>Dogs</title><p>dog dog cat</p><a href="http://a.com/b">B</a>`,
		"http://a.com/b": `<title>Cats</title><p>cat cat dog</p>`,
	})

	if err := e.Crawl(context.Background(), "http://a.com/"); err != nil {
		t.Fatalf("Crawl: %v", err)
	}

	// Cosine similarity is restricted to the query's own terms, so a
	// one-term query scores every page that contains it at 1.000; the
	// tie is broken by title ascending, putting Cats ahead of Dogs.
	results := e.Search("dog", false, 10)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Title != "Cats" {
		t.Errorf("expected Cats to rank first for query 'dog' (title tie-break), got %v", results)
	}
}

func TestEngineStatLookupsOnUnknownURL(t *testing.T) {
	e := newTestEngine(t, map[string]string{
		"http://a.com/": `<title>A</title><p>alpha</p>`,
	})
	if err := e.Crawl(context.Background(), "http://a.com/"); err != nil {
		t.Fatalf("Crawl: %v", err)
	}

	if got := e.PageRank("http://unknown.com/"); got != -1 {
		t.Errorf("PageRank(unknown) = %v, want -1", got)
	}
	if got := e.Outgoing("http://unknown.com/"); got != nil {
		t.Errorf("Outgoing(unknown) = %v, want nil", got)
	}
	if got := e.IDF("nonexistent-word"); got != 0 {
		t.Errorf("IDF(unknown word) = %v, want 0", got)
	}
}

func TestEngineQueriesBeforeAnyCrawlReturnEmpty(t *testing.T) {
	e := newTestEngine(t, nil)
	if got := e.Search("anything", false, 10); got != nil {
		t.Errorf("Search before crawl = %v, want nil", got)
	}
	if got := e.PageRank("http://a.com/"); got != -1 {
		t.Errorf("PageRank before crawl = %v, want -1", got)
	}
}

func TestEngineCrawlRejectsMalformedSeed(t *testing.T) {
	e := newTestEngine(t, nil)
	if err := e.Crawl(context.Background(), "not a url"); err == nil {
		t.Fatal("expected error for malformed seed")
	}
}

func TestEngineInitializeClearsIndexAndSnapshot(t *testing.T) {
	e := newTestEngine(t, map[string]string{
		"http://a.com/": `<title>A</title><p>alpha</p>`,
	})
	if err := e.Crawl(context.Background(), "http://a.com/"); err != nil {
		t.Fatalf("Crawl: %v", err)
	}
	if err := e.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if got := e.Search("alpha", false, 10); got != nil {
		t.Errorf("Search after Initialize = %v, want nil", got)
	}
}

func TestEngineSnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crawl.dat")
	e := engine.New(&fakeFetcher{pages: map[string]string{
		"http://a.com/": `<title>A</title><p>alpha beta</p>`,
	}}, engine.Config{SnapshotPath: path}, nil)
	if err := e.Crawl(context.Background(), "http://a.com/"); err != nil {
		t.Fatalf("Crawl: %v", err)
	}
	before := e.Search("alpha", false, 10)

	fresh := engine.New(&fakeFetcher{}, engine.Config{SnapshotPath: path}, nil)
	if err := fresh.LoadSnapshot(); err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	after := fresh.Search("alpha", false, 10)

	if len(before) != len(after) || len(before) == 0 {
		t.Fatalf("result count mismatch: before=%v after=%v", before, after)
	}
	if before[0].Title != after[0].Title {
		t.Errorf("title mismatch after reload: before=%q after=%q", before[0].Title, after[0].Title)
	}
}
