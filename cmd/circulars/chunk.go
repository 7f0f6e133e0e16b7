package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/circulars/internal/chunker"
	"github.com/kailas-cloud/circulars/internal/repository/chunkstore"
	"github.com/kailas-cloud/circulars/internal/repository/textdir"
	"github.com/kailas-cloud/circulars/internal/usecase/ingest"
)

var chunkCmd = &cobra.Command{
	Use:   "chunk",
	Short: "Split extracted circular texts into overlapping chunks",
	Long: `Reads every *.txt file in corpus.texts_dir and writes one {doc_id}.jsonl
file of chunks per document to corpus.chunks_dir. Empty documents are skipped.`,
	Args: cobra.NoArgs,
	RunE: runChunk,
}

func init() {
	rootCmd.AddCommand(chunkCmd)
}

func runChunk(cmd *cobra.Command, _ []string) error {
	a, err := bootstrap(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer a.close()

	splitter, err := chunker.New(a.cfg.Chunking.MaxTokens, a.cfg.Chunking.Overlap)
	if err != nil {
		return fmt.Errorf("chunker: %w", err)
	}

	job := ingest.NewChunker(splitter,
		textdir.Dir(a.cfg.Corpus.TextsDir),
		chunkstore.Dir(a.cfg.Corpus.ChunksDir),
	)
	rep, err := job.Run(a.context(cmd.Context()))
	if err != nil {
		return fmt.Errorf("chunking failed: %w", err)
	}

	a.logger.Info("Chunking finished",
		zap.Int("documents", rep.Documents),
		zap.Int("skipped", rep.Skipped),
		zap.Int("chunks", rep.Chunks),
	)
	cmd.Printf("Chunked %d documents into %d chunks (%d skipped) -> %s\n",
		rep.Documents, rep.Chunks, rep.Skipped, a.cfg.Corpus.ChunksDir)
	return nil
}
