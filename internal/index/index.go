// Package index owns every indexed page and the global term table: it
// builds the inverted index from crawled pages, maintains reciprocal
// in-link sets, and computes/caches TF, IDF, and TF-IDF lazily and at
// most once per entity (spec.md 3, 5).
package index

import (
	"math"
	"sync"
	"time"

	"gophersearch/internal/htmlx"
	"gophersearch/internal/pagerank"
	"gophersearch/internal/tokenize"
	"gophersearch/internal/urlnorm"
)

// UnprocessedPage is the Crawler's output: a fetched page's raw text and
// its outbound links, before tokenisation. It is discarded once the
// Index is built.
type UnprocessedPage struct {
	URL      urlnorm.NormalURL
	RawText  string
	Outlinks []urlnorm.NormalURL
}

// DocTermStat is a single word's statistics within one page. Count is
// the exact occurrence count; TF and TF-IDF are computed lazily and
// cached on first read, per spec.md's "unset or value" variant strategy
// (spec.md 9) realised here with sync.Once rather than a sentinel.
type DocTermStat struct {
	Word   string
	Count  int
	Global *GlobalTermStat

	tfOnce    sync.Once
	tfVal     float64
	tfidfOnce sync.Once
	tfidfVal  float64
}

func (d *DocTermStat) tf(pageSize int) float64 {
	d.tfOnce.Do(func() {
		if pageSize > 0 {
			d.tfVal = float64(d.Count) / float64(pageSize)
		}
	})
	return d.tfVal
}

func (d *DocTermStat) tfidf(pageSize, totalDocs int) float64 {
	d.tfidfOnce.Do(func() {
		tf := d.tf(pageSize)
		d.tfidfVal = math.Log2(1+tf) * d.Global.idf(totalDocs)
	})
	return d.tfidfVal
}

// GlobalTermStat is a word's statistics across the whole index: how many
// documents it occurs in, and which ones.
type GlobalTermStat struct {
	Word          string
	DocOccurrence int
	Pages         []*IndexedPage

	pageSet map[urlnorm.NormalURL]struct{}

	idfOnce sync.Once
	idfVal  float64
}

func (g *GlobalTermStat) idf(totalDocs int) float64 {
	g.idfOnce.Do(func() {
		g.idfVal = math.Log2(float64(totalDocs) / float64(1+g.DocOccurrence))
	})
	return g.idfVal
}

// IndexedPage is one crawled, tokenised page. Identity is URL.
// PageRank is the only field written after build completes, and is
// written exactly once by the PageRank engine.
type IndexedPage struct {
	URL         urlnorm.NormalURL
	Title       string
	Size        int // total tokens, including duplicates
	UniqueWords int
	WordMap     map[string]*DocTermStat
	Outlinks    []urlnorm.NormalURL
	Inlinks     []urlnorm.NormalURL
	PageRank    float64

	outlinkSet map[urlnorm.NormalURL]struct{}
	inlinkSet  map[urlnorm.NormalURL]struct{}
}

// HasOutlink reports whether the page links to v (indexed or not).
func (p *IndexedPage) HasOutlink(v urlnorm.NormalURL) bool {
	_, ok := p.outlinkSet[v]
	return ok
}

// HasInlink reports whether w links to the page.
func (p *IndexedPage) HasInlink(w urlnorm.NormalURL) bool {
	_, ok := p.inlinkSet[w]
	return ok
}

// Index owns all IndexedPages and GlobalTermStats for one crawl.
type Index struct {
	TotalDocs        int
	TotalUniqueWords int
	SeedURL          string
	CrawlTime        time.Time

	Pages map[urlnorm.NormalURL]*IndexedPage
	Words map[string]*GlobalTermStat

	pageOrder []urlnorm.NormalURL
	wordOrder []string
}

// Options configures the build, overriding spec.md 6's default PageRank
// constants.
type Options struct {
	Alpha   float64 // default 0.1
	Epsilon float64 // default 1e-4
}

func (o Options) withDefaults() Options {
	if o.Alpha == 0 {
		o.Alpha = 0.1
	}
	if o.Epsilon == 0 {
		o.Epsilon = 1e-4
	}
	return o
}

// ProgressFunc reports build stage transitions; it is advisory, never
// part of correctness.
type ProgressFunc func(stage string)

const (
	StageParsing = "PARSING"
	StageLinking = "LINKING"
	StageRanking = "RANKING"
)

// Build constructs an Index from the Crawler's fetched pages, in the
// four stages spec.md 4.F names: parse, TF-IDF prime, reciprocal
// in-links, PageRank.
func Build(seedURL string, crawlTime time.Time, pages []UnprocessedPage, opts Options, progress ProgressFunc) *Index {
	idx := newIndex(seedURL, crawlTime)
	report := reportFunc(progress)

	report(StageParsing)
	for _, u := range pages {
		title := htmlx.ExtractTitle(u.RawText)
		tokens := tokenize.Tokenize(htmlx.ExtractParagraphs(u.RawText))
		counts := make(map[string]int, len(tokens))
		for _, tok := range tokens {
			counts[tok]++
		}
		idx.addPageFromCounts(u.URL, title, len(tokens), counts, u.Outlinks)
	}

	idx.finish(opts, report)
	return idx
}

// DocSnapshot is one page's persisted state, re-derived from a store
// snapshot rather than raw HTML. Losing the original token order is
// harmless: TF, IDF, TF-IDF, and PageRank all depend only on counts,
// page size, and the link graph (spec.md 9).
type DocSnapshot struct {
	URL      urlnorm.NormalURL
	Title    string
	Counts   map[string]int
	Outlinks []urlnorm.NormalURL
}

// BuildFromSnapshot reconstructs an Index from a prior snapshot without
// re-tokenising HTML. PageRank is recomputed rather than restored
// verbatim: power iteration is deterministic, so the same link graph
// always converges to the same ranks.
func BuildFromSnapshot(seedURL string, crawlTime time.Time, docs []DocSnapshot, opts Options, progress ProgressFunc) *Index {
	idx := newIndex(seedURL, crawlTime)
	report := reportFunc(progress)

	report(StageParsing)
	for _, d := range docs {
		size := 0
		for _, c := range d.Counts {
			size += c
		}
		idx.addPageFromCounts(d.URL, d.Title, size, d.Counts, d.Outlinks)
	}

	idx.finish(opts, report)
	return idx
}

func newIndex(seedURL string, crawlTime time.Time) *Index {
	return &Index{
		SeedURL:   seedURL,
		CrawlTime: crawlTime,
		Pages:     make(map[urlnorm.NormalURL]*IndexedPage),
		Words:     make(map[string]*GlobalTermStat),
	}
}

func reportFunc(progress ProgressFunc) ProgressFunc {
	if progress == nil {
		return func(string) {}
	}
	return progress
}

// finish runs stages 2-4 shared by Build and BuildFromSnapshot: prime
// every DocTermStat's TF-IDF cache, link reciprocal in-links, then rank.
func (idx *Index) finish(opts Options, report ProgressFunc) {
	opts = opts.withDefaults()
	idx.TotalDocs = len(idx.pageOrder)
	idx.TotalUniqueWords = len(idx.wordOrder)

	for _, url := range idx.pageOrder {
		p := idx.Pages[url]
		for _, term := range p.WordMap {
			term.tfidf(p.Size, idx.TotalDocs)
		}
	}

	report(StageLinking)
	idx.buildReciprocalInlinks()

	report(StageRanking)
	idx.computePageRank(opts)
}

func (idx *Index) addPageFromCounts(url urlnorm.NormalURL, title string, size int, counts map[string]int, outlinks []urlnorm.NormalURL) {
	outSet := make(map[urlnorm.NormalURL]struct{}, len(outlinks))
	for _, v := range outlinks {
		outSet[v] = struct{}{}
	}

	p := &IndexedPage{
		URL:        url,
		Title:      title,
		Size:       size,
		WordMap:    make(map[string]*DocTermStat, len(counts)),
		Outlinks:   outlinks,
		outlinkSet: outSet,
		inlinkSet:  make(map[urlnorm.NormalURL]struct{}),
	}

	for tok, count := range counts {
		g, ok := idx.Words[tok]
		if !ok {
			g = &GlobalTermStat{Word: tok, pageSet: make(map[urlnorm.NormalURL]struct{})}
			idx.Words[tok] = g
			idx.wordOrder = append(idx.wordOrder, tok)
		}
		stat := &DocTermStat{Word: tok, Count: count, Global: g}
		p.WordMap[tok] = stat

		if _, already := g.pageSet[p.URL]; !already {
			g.pageSet[p.URL] = struct{}{}
			g.Pages = append(g.Pages, p)
			g.DocOccurrence++
		}
	}
	p.UniqueWords = len(p.WordMap)

	idx.Pages[p.URL] = p
	idx.pageOrder = append(idx.pageOrder, p.URL)
}

func (idx *Index) buildReciprocalInlinks() {
	for _, url := range idx.pageOrder {
		p := idx.Pages[url]
		for _, v := range p.Outlinks {
			target, ok := idx.Pages[v]
			if !ok {
				continue
			}
			if _, already := target.inlinkSet[p.URL]; already {
				continue
			}
			target.inlinkSet[p.URL] = struct{}{}
			target.Inlinks = append(target.Inlinks, p.URL)
		}
	}
}

func (idx *Index) computePageRank(opts Options) {
	n := len(idx.pageOrder)
	if n == 0 {
		return
	}
	indexOf := make(map[urlnorm.NormalURL]int, n)
	for i, url := range idx.pageOrder {
		indexOf[url] = i
	}

	adjacency := make([][]int, n)
	for i, url := range idx.pageOrder {
		p := idx.Pages[url]
		targets := make([]int, 0, len(p.Outlinks))
		for _, v := range p.Outlinks {
			if j, ok := indexOf[v]; ok {
				targets = append(targets, j)
			}
		}
		adjacency[i] = targets
	}

	ranks := pagerank.Rank(n, adjacency, opts.Alpha, opts.Epsilon)
	for i, url := range idx.pageOrder {
		idx.Pages[url].PageRank = ranks[i]
	}
}

// IDF returns the inverse document frequency of word, or 0 if unknown.
func (idx *Index) IDF(word string) float64 {
	g, ok := idx.Words[word]
	if !ok {
		return 0
	}
	return g.idf(idx.TotalDocs)
}

// TF returns the term frequency of word in the page at u, or 0 if
// either is unknown.
func (idx *Index) TF(u urlnorm.NormalURL, word string) float64 {
	p, ok := idx.Pages[u]
	if !ok {
		return 0
	}
	d, ok := p.WordMap[word]
	if !ok {
		return 0
	}
	return d.tf(p.Size)
}

// TFIDF returns the TF-IDF of word in the page at u, or 0 if either is
// unknown.
func (idx *Index) TFIDF(u urlnorm.NormalURL, word string) float64 {
	p, ok := idx.Pages[u]
	if !ok {
		return 0
	}
	d, ok := p.WordMap[word]
	if !ok {
		return 0
	}
	return d.tfidf(p.Size, idx.TotalDocs)
}

// HasWord reports whether word occurs anywhere in the index.
func (idx *Index) HasWord(word string) bool {
	_, ok := idx.Words[word]
	return ok
}

// PageRank returns the page's rank, or -1 if u is unknown.
func (idx *Index) PageRank(u urlnorm.NormalURL) float64 {
	p, ok := idx.Pages[u]
	if !ok {
		return -1
	}
	return p.PageRank
}

// Outgoing returns the page's outlinks as strings, or nil if u is
// unknown.
func (idx *Index) Outgoing(u urlnorm.NormalURL) []string {
	p, ok := idx.Pages[u]
	if !ok {
		return nil
	}
	return urlsToStrings(p.Outlinks)
}

// Incoming returns the page's inlinks as strings, or nil if u is
// unknown.
func (idx *Index) Incoming(u urlnorm.NormalURL) []string {
	p, ok := idx.Pages[u]
	if !ok {
		return nil
	}
	return urlsToStrings(p.Inlinks)
}

// PagesInOrder returns every indexed page in the order they were first
// fetched (spec.md 5's iteration-order guarantee).
func (idx *Index) PagesInOrder() []*IndexedPage {
	out := make([]*IndexedPage, len(idx.pageOrder))
	for i, url := range idx.pageOrder {
		out[i] = idx.Pages[url]
	}
	return out
}

func urlsToStrings(urls []urlnorm.NormalURL) []string {
	out := make([]string, len(urls))
	for i, u := range urls {
		out[i] = u.String()
	}
	return out
}
