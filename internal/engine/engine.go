// Package engine is the public facade spec.md 4.J names: it owns the
// current Index and exposes crawl/search/stat-lookup operations over
// it, replacing the held Index atomically whenever a fresh crawl
// completes (spec.md 9's "global mutable state in the engine facade").
package engine

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"gophersearch/internal/crawl"
	"gophersearch/internal/fetch"
	"gophersearch/internal/index"
	"gophersearch/internal/search"
	"gophersearch/internal/store"
	"gophersearch/internal/urlnorm"
)

const (
	StageRetrieving = crawl.StageRetrieving
	StageParsing    = index.StageParsing
	StageLinking    = index.StageLinking
	StageRanking    = index.StageRanking
	StageDone       = "DONE"
)

// ProgressFunc reports the five named stage transitions a crawl+build
// passes through. It is advisory only.
type ProgressFunc func(stage string)

// Config bounds both the crawl and the index build a call to Crawl
// performs. Zero fields fall back to spec.md 6's documented constants.
type Config struct {
	Crawl        crawl.Config
	Index        index.Options
	SnapshotPath string
}

func (c Config) withDefaults() Config {
	if c.SnapshotPath == "" {
		c.SnapshotPath = store.DefaultPath
	}
	return c
}

// Engine holds the current Index and the Fetcher/Config used to build
// the next one.
type Engine struct {
	fetcher  crawl.Fetcher
	cfg      Config
	progress ProgressFunc

	mu  sync.RWMutex
	idx *index.Index
}

// New returns an Engine with no index loaded yet. fetcher is typically
// fetch.New(); a caller may substitute a test double.
func New(fetcher crawl.Fetcher, cfg Config, progress ProgressFunc) *Engine {
	return &Engine{fetcher: fetcher, cfg: cfg.withDefaults(), progress: progress}
}

// NewDefault builds an Engine wired to a real fetch.Fetcher.
func NewDefault(cfg Config, progress ProgressFunc) *Engine {
	return New(fetch.New(), cfg, progress)
}

func (e *Engine) report(stage string) {
	if e.progress != nil {
		e.progress(stage)
	}
}

// Initialize clears any persisted snapshot and drops the held Index,
// per spec.md 4.J.
func (e *Engine) Initialize() error {
	if err := store.Clear(e.cfg.SnapshotPath); err != nil {
		return fmt.Errorf("engine: initialize: %w", err)
	}
	e.mu.Lock()
	e.idx = nil
	e.mu.Unlock()
	return nil
}

// Crawl performs a fresh crawl from seed, builds a new Index off to the
// side, and swaps it in under a single pointer write — queries in
// flight against the old Index are unaffected.
func (e *Engine) Crawl(ctx context.Context, seed string) error {
	seedURL, err := urlnorm.Parse(seed)
	if err != nil {
		return fmt.Errorf("engine: crawl: %w", err)
	}

	coordinator := crawl.New(e.fetcher, e.cfg.Crawl)
	pages := coordinator.Crawl(ctx, seedURL, crawl.ProgressFunc(e.report))

	built := index.Build(seed, time.Now(), pages, e.cfg.Index, index.ProgressFunc(e.report))

	e.mu.Lock()
	e.idx = built
	e.mu.Unlock()

	if err := store.Save(built, e.cfg.SnapshotPath); err != nil {
		log.Printf("engine: snapshot save failed, continuing with in-memory index only: %v", err)
	}

	e.report(StageDone)
	return nil
}

// LoadSnapshot restores a previously saved Index without crawling,
// replacing the held Index atomically.
func (e *Engine) LoadSnapshot() error {
	idx, err := store.Load(e.cfg.SnapshotPath)
	if err != nil {
		return fmt.Errorf("engine: load snapshot: %w", err)
	}
	e.mu.Lock()
	e.idx = idx
	e.mu.Unlock()
	return nil
}

func (e *Engine) snapshot() *index.Index {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.idx
}

// Search returns the top-k results for query. k is clamped to
// [0, |results|] per spec.md 4.I; callers wanting the documented
// default of 10 should pass 10 explicitly (the CLI's --k flag does).
func (e *Engine) Search(query string, boost bool, k int) []search.Result {
	idx := e.snapshot()
	if idx == nil {
		return nil
	}
	return search.Search(idx, query, boost, k)
}

// SearchPlus is Search with the richer per-result fields.
func (e *Engine) SearchPlus(query string, boost bool, k int) []search.ResultPlus {
	idx := e.snapshot()
	if idx == nil {
		return nil
	}
	return search.SearchPlus(idx, query, boost, k)
}

// IDF returns word's inverse document frequency, or 0 if no index is
// loaded or the word is unknown.
func (e *Engine) IDF(word string) float64 {
	idx := e.snapshot()
	if idx == nil {
		return 0
	}
	return idx.IDF(word)
}

// TF returns word's term frequency within the page at rawURL, or 0 if
// either is unknown.
func (e *Engine) TF(rawURL, word string) float64 {
	idx := e.snapshot()
	if idx == nil {
		return 0
	}
	u, err := urlnorm.Parse(rawURL)
	if err != nil {
		return 0
	}
	return idx.TF(u, word)
}

// TFIDF returns word's TF-IDF within the page at rawURL, or 0 if either
// is unknown.
func (e *Engine) TFIDF(rawURL, word string) float64 {
	idx := e.snapshot()
	if idx == nil {
		return 0
	}
	u, err := urlnorm.Parse(rawURL)
	if err != nil {
		return 0
	}
	return idx.TFIDF(u, word)
}

// PageRank returns the page's rank, or -1 if no index is loaded or
// rawURL is unknown, per spec.md 4.J's sentinel.
func (e *Engine) PageRank(rawURL string) float64 {
	idx := e.snapshot()
	if idx == nil {
		return -1
	}
	u, err := urlnorm.Parse(rawURL)
	if err != nil {
		return -1
	}
	return idx.PageRank(u)
}

// Outgoing returns the page's outlinks, or nil if no index is loaded or
// rawURL is unknown.
func (e *Engine) Outgoing(rawURL string) []string {
	idx := e.snapshot()
	if idx == nil {
		return nil
	}
	u, err := urlnorm.Parse(rawURL)
	if err != nil {
		return nil
	}
	return idx.Outgoing(u)
}

// Incoming returns the page's inlinks, or nil if no index is loaded or
// rawURL is unknown.
func (e *Engine) Incoming(rawURL string) []string {
	idx := e.snapshot()
	if idx == nil {
		return nil
	}
	u, err := urlnorm.Parse(rawURL)
	if err != nil {
		return nil
	}
	return idx.Incoming(u)
}
