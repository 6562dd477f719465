package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docent-labs/docent-cli/internal/core/domain"
)

var (
	searchLimit int
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the configured channels",
	Long: `Searches every configured channel concurrently and fuses the ranked
lists with reciprocal rank fusion, so results agree across sources
instead of competing on incomparable scores.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	if searchService == nil {
		return errors.New("search service not configured")
	}

	hits, err := searchService.Search(cmd.Context(), query, searchLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, hits)
	}

	return outputSearchTable(cmd, hits)
}

func outputSearchJSON(cmd *cobra.Command, hits []domain.FusedHit) error {
	data, err := json.MarshalIndent(hits, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, hits []domain.FusedHit) error {
	if len(hits) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range hits {
		hit := &hits[i]
		cmd.Printf("  [%d] %s (%.4f)\n", i+1, displayPath(&hit.SearchHit), hit.FusedScore)
		cmd.Printf("      Channel: %s\n", hit.Channel)
		if hit.Snippet != "" {
			cmd.Printf("      %s\n", hit.Snippet)
		}
		cmd.Println()
	}

	return nil
}
