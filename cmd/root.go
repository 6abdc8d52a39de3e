// Package cmd implements the GopherSearch CLI commands.
package cmd

import "github.com/spf13/cobra"

// Version is set at build time via -ldflags.
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:           "gophersearch",
	Short:         "GopherSearch — crawl a web subgraph and answer keyword queries against it",
	SilenceErrors: true,
	SilenceUsage:  true,
	Long: `GopherSearch crawls a web subgraph from a seed URL, builds an
in-memory inverted index with TF-IDF statistics, ranks pages by
PageRank, and answers free-text queries by cosine similarity.`,
}

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version of GopherSearch",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println("gophersearch", Version)
		},
	})
}

// Execute runs the root command. It is the single entry point called by main.
func Execute() error {
	return rootCmd.Execute()
}
