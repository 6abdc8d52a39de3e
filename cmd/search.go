package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"gophersearch/internal/engine"
)

type searchOptions struct {
	boost        bool
	topK         int
	snapshotPath string
}

func init() {
	opts := &searchOptions{}

	searchCmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Query the most recently crawled index",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")

			e := engine.NewDefault(engine.Config{SnapshotPath: opts.snapshotPath}, nil)
			if err := e.LoadSnapshot(); err != nil {
				return fmt.Errorf("no index available, run `gophersearch crawl <seed-url>` first: %w", err)
			}

			results := e.SearchPlus(query, opts.boost, opts.topK)
			if len(results) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no results")
				return nil
			}
			for i, r := range results {
				fmt.Fprintf(cmd.OutOrStdout(), "%2d. %-40s score=%.3f  pagerank=%.4f  %s\n",
					i+1, r.Title, r.Score, r.PageRank, r.URL)
			}
			return nil
		},
	}

	searchCmd.Flags().BoolVar(&opts.boost, "boost", false, "Multiply cosine similarity by PageRank")
	searchCmd.Flags().IntVar(&opts.topK, "k", 10, "Number of results to return")
	searchCmd.Flags().StringVar(&opts.snapshotPath, "snapshot", "./data/crawl.dat", "Path to the index snapshot to load")

	rootCmd.AddCommand(searchCmd)
}
