package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/circulars/internal/domain"
)

var askShowSources bool

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a single question with citations",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askShowSources, "sources", false, "also print the retrieved chunks")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	a, err := bootstrap(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer a.close()

	p, err := a.pipeline()
	if err != nil {
		return err
	}

	ans, err := p.answers.Answer(a.context(cmd.Context()), strings.Join(args, " "), nil)
	if err != nil {
		return fmt.Errorf("answer failed: %w", err)
	}

	cmd.Println(ans.Render())
	if askShowSources {
		printSources(cmd, ans.Sources)
	}
	return nil
}

func printSources(cmd *cobra.Command, sources []domain.RetrievalResult) {
	if len(sources) == 0 {
		cmd.Println("\nNo matching excerpts.")
		return
	}
	cmd.Println("\nRetrieved excerpts:")
	for i, s := range sources {
		cmd.Printf("[%d] %s/%s (distance %.4f)\n", i+1, s.DocID, s.ChunkID, s.Distance)
	}
}
