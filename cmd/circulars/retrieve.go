package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var retrieveTopK int

var retrieveCmd = &cobra.Command{
	Use:   "retrieve [question]",
	Short: "Show the chunks nearest to a question without generating an answer",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRetrieve,
}

func init() {
	retrieveCmd.Flags().IntVarP(&retrieveTopK, "top-k", "k", 0, "number of chunks (default retrieval.top_k)")
	rootCmd.AddCommand(retrieveCmd)
}

func runRetrieve(cmd *cobra.Command, args []string) error {
	a, err := bootstrap(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer a.close()

	p, err := a.pipeline()
	if err != nil {
		return err
	}

	results, err := p.retrieval.Retrieve(a.context(cmd.Context()), strings.Join(args, " "), retrieveTopK)
	if err != nil {
		return fmt.Errorf("retrieve failed: %w", err)
	}
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}
	for i, r := range results {
		cmd.Printf("[%d] %s (distance %.4f)\n%s\n\n", i+1, r.ChunkID, r.Distance, r.Text)
	}
	return nil
}
