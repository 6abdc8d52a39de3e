// Package crawl performs a breadth-first crawl over the hyperlink graph
// starting from a seed URL, bounded by a page cap and a per-URL retry
// budget (spec.md 4.E).
//
// The Coordinator owns every piece of mutable state — frontier, seen
// set, retry counters, and the fetched-page list — mirroring
// cametumbling-web-crawler's rule that a single coordinator goroutine
// makes every scheduling decision and workers never touch shared state.
// fetchOne is the stateless "worker": it only fetches and extracts
// outlinks, and never mutates the Coordinator.
package crawl

import (
	"context"
	"log"

	"gophersearch/internal/htmlx"
	"gophersearch/internal/index"
	"gophersearch/internal/urlnorm"
)

// Fetcher retrieves a page's raw text. Satisfied by *fetch.Fetcher.
type Fetcher interface {
	Fetch(ctx context.Context, u urlnorm.NormalURL) (string, error)
}

// Config bounds a crawl. Zero values fall back to spec.md 6's defaults.
type Config struct {
	PageCap    int // default 10000
	MaxRetries int // default 3
}

func (c Config) withDefaults() Config {
	if c.PageCap == 0 {
		c.PageCap = 10000
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	return c
}

// ProgressFunc reports crawl stage transitions; advisory only.
type ProgressFunc func(stage string)

const StageRetrieving = "RETRIEVING"

// Coordinator runs one crawl. It is not safe for concurrent use.
type Coordinator struct {
	fetcher Fetcher
	cfg     Config
}

// New returns a Coordinator that fetches pages with fetcher.
func New(fetcher Fetcher, cfg Config) *Coordinator {
	return &Coordinator{fetcher: fetcher, cfg: cfg.withDefaults()}
}

// Crawl runs the BFS protocol from spec.md 4.E and returns the fetched
// pages in completion order (here, since fetches are sequential, also
// frontier-pop order).
func (c *Coordinator) Crawl(ctx context.Context, seed urlnorm.NormalURL, progress ProgressFunc) []index.UnprocessedPage {
	report := progress
	if report == nil {
		report = func(string) {}
	}
	report(StageRetrieving)

	frontier := []urlnorm.NormalURL{seed}
	seen := map[urlnorm.NormalURL]bool{seed: true}
	failCount := map[urlnorm.NormalURL]int{}
	var fetched []index.UnprocessedPage

	for len(frontier) > 0 && len(fetched) < c.cfg.PageCap {
		u := frontier[0]
		frontier = frontier[1:]

		rawText, outlinks, err := fetchOne(ctx, c.fetcher, u)
		if err != nil {
			if failCount[u] < c.cfg.MaxRetries {
				failCount[u]++
				log.Printf("crawl: retrying %s after fetch error (%d/%d): %v", u, failCount[u], c.cfg.MaxRetries, err)
				frontier = append(frontier, u)
				continue
			}
			log.Printf("crawl: giving up on %s after %d retries, admitting blank page", u, c.cfg.MaxRetries)
			fetched = append(fetched, index.UnprocessedPage{URL: u})
			continue
		}

		page := index.UnprocessedPage{URL: u, RawText: rawText, Outlinks: outlinks}
		fetched = append(fetched, page)

		for _, v := range outlinks {
			if seen[v] {
				continue
			}
			seen[v] = true
			frontier = append(frontier, v)
		}
	}

	log.Printf("crawl: finished with %d pages fetched, %d urls still queued", len(fetched), len(frontier))
	return fetched
}

// fetchOne retrieves u and extracts its outbound links, resolved to
// NormalURLs against u. Malformed hrefs are dropped silently; hrefs
// whose prefix shape is unrecognised resolve back to u itself and are
// therefore naturally absorbed by the seen-set (spec.md 4.A, 9).
func fetchOne(ctx context.Context, fetcher Fetcher, u urlnorm.NormalURL) (string, []urlnorm.NormalURL, error) {
	raw, err := fetcher.Fetch(ctx, u)
	if err != nil {
		return "", nil, err
	}

	hrefs := htmlx.ExtractHrefs(raw)
	outSeen := make(map[urlnorm.NormalURL]struct{}, len(hrefs))
	outlinks := make([]urlnorm.NormalURL, 0, len(hrefs))
	for _, href := range hrefs {
		v, err := u.ResolveAgainst(href)
		if err != nil {
			continue // MalformedURL: drop silently
		}
		if _, dup := outSeen[v]; dup {
			continue
		}
		outSeen[v] = struct{}{}
		outlinks = append(outlinks, v)
	}

	return raw, outlinks, nil
}
