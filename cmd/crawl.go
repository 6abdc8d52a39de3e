package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"gophersearch/internal/crawl"
	"gophersearch/internal/engine"
	"gophersearch/internal/index"
)

type crawlOptions struct {
	pageCap      int
	maxRetries   int
	alpha        float64
	epsilon      float64
	snapshotPath string
}

func init() {
	opts := &crawlOptions{}

	crawlCmd := &cobra.Command{
		Use:   "crawl <seed-url>",
		Short: "Crawl a web subgraph from a seed URL and build its search index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seed := strings.TrimSpace(args[0])

			e := engine.NewDefault(engine.Config{
				Crawl:        crawl.Config{PageCap: opts.pageCap, MaxRetries: opts.maxRetries},
				Index:        index.Options{Alpha: opts.alpha, Epsilon: opts.epsilon},
				SnapshotPath: opts.snapshotPath,
			}, func(stage string) {
				fmt.Fprintf(cmd.OutOrStdout(), "[%s]\n", stage)
			})

			if err := e.Crawl(context.Background(), seed); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "crawl complete, snapshot written to %s\n", opts.snapshotPath)
			return nil
		},
	}

	crawlCmd.Flags().IntVar(&opts.pageCap, "page-cap", 10000, "Maximum number of pages to fetch")
	crawlCmd.Flags().IntVar(&opts.maxRetries, "max-retries", 3, "Per-URL fetch retry budget before admitting a blank page")
	crawlCmd.Flags().Float64Var(&opts.alpha, "alpha", 0.1, "PageRank teleport probability")
	crawlCmd.Flags().Float64Var(&opts.epsilon, "epsilon", 1e-4, "PageRank convergence threshold (L2 distance)")
	crawlCmd.Flags().StringVar(&opts.snapshotPath, "snapshot", "./data/crawl.dat", "Path to write the index snapshot")

	rootCmd.AddCommand(crawlCmd)
}
