package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/circulars/internal/repository/chunkstore"
	"github.com/kailas-cloud/circulars/internal/usecase/ingest"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Embed all chunks and build the vector index",
	Long: `Reads the chunk files in corpus.chunks_dir, embeds them in batches and
writes a fresh index bundle (vectors.idx + meta.jsonl) to corpus.index_dir.`,
	Args: cobra.NoArgs,
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, _ []string) error {
	a, err := bootstrap(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer a.close()

	emb, err := a.embedder()
	if err != nil {
		return err
	}

	job := ingest.NewIndexer(chunkstore.Dir(a.cfg.Corpus.ChunksDir), emb, a.cfg.Corpus.IndexDir)
	rep, err := job.Run(a.context(cmd.Context()))
	if err != nil {
		return fmt.Errorf("index build failed: %w", err)
	}

	cmd.Printf("Indexed %d chunks (dim %d) in %s -> %s\n",
		rep.Rows, rep.Dim, rep.Duration.Round(time.Millisecond), a.cfg.Corpus.IndexDir)
	return nil
}
